package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"rolepeek/internal/models/db_models"
	"rolepeek/internal/models/request_models"
	"rolepeek/internal/models/response_models"
	"rolepeek/internal/repositories"
	"rolepeek/pkg/utils"
)

type InterviewServiceInterface interface {
	Generate(ctx context.Context, accountID uuid.UUID, req request_models.GenerateInterviewRequest, maxQuestions int) (*response_models.GenerateInterviewResponse, error)
	GetQuestions(ctx context.Context, accountID uuid.UUID, interviewID string) (*response_models.GenerateInterviewResponse, error)
	SubmitAnswersAndEvaluate(ctx context.Context, accountID uuid.UUID, interviewID string, req request_models.SubmitAnswersRequest) (*response_models.InterviewFeedbackResponse, error)
}

type InterviewService struct {
	repo          repositories.IInterviewRepository
	dayInRoleRepo repositories.IDayInRoleRepository
	generator     utils.TextGeneratorInterface
}

func NewInterviewService(
	repo repositories.IInterviewRepository,
	dayInRoleRepo repositories.IDayInRoleRepository,
	generator utils.TextGeneratorInterface,
) InterviewServiceInterface {
	return &InterviewService{
		repo:          repo,
		dayInRoleRepo: dayInRoleRepo,
		generator:     generator,
	}
}

const interviewSystemPrompt = `You are an experienced hiring manager preparing a mock interview.
Return ONLY valid JSON, no extra text, in this exact format:
{"questions": ["question 1", "question 2"]}
Questions must be specific to the role described, mixing behavioral and technical angles.`

const feedbackSystemPrompt = `You are an experienced interview coach reviewing a candidate's answers.
Write constructive feedback in plain text: what was strong, what to improve, and one concrete tip per answer.
Keep it under 400 words and address the candidate directly.`

func (s *InterviewService) Generate(ctx context.Context, accountID uuid.UUID, req request_models.GenerateInterviewRequest, maxQuestions int) (*response_models.GenerateInterviewResponse, error) {
	dayInRole, err := s.dayInRoleRepo.FindById(ctx, req.DayInRoleID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if dayInRole == nil || dayInRole.AccountID != accountID {
		return nil, utils.ErrRecordNotFound
	}

	count := req.NumberOfQuestions
	if count <= 0 || count > maxQuestions {
		count = maxQuestions
	}
	if count <= 0 {
		return nil, utils.ErrInvalidInput
	}

	userPrompt := fmt.Sprintf(
		"Generate exactly %d interview questions for this role.\n\nRole: %s\nCompany: %s\nOverview: %s",
		count, dayInRole.Title, dayInRole.Company, dayInRole.Summary,
	)

	raw, err := s.generator.GenerateText(ctx, interviewSystemPrompt, userPrompt)
	if err != nil {
		log.Printf("interview generation failed: %v", err)
		return nil, utils.ErrUnexpectedAIOutput
	}

	questions, err := parseQuestions(raw, count)
	if err != nil {
		log.Printf("interview parse failed: %v", err)
		return nil, utils.ErrUnexpectedAIOutput
	}

	interview := db_models.Interview{
		AccountID:     accountID,
		DayInRoleID:   dayInRole.ID,
		QuestionSetID: uuid.New(),
		Status:        db_models.InterviewStatusPending,
	}

	records := make([]db_models.InterviewQuestion, 0, len(questions))
	for idx, question := range questions {
		records = append(records, db_models.InterviewQuestion{
			Position: idx + 1,
			Question: question,
		})
	}

	if err := s.repo.InsertWithQuestions(ctx, &interview, records); err != nil {
		return nil, utils.ErrDatabaseError
	}

	return toInterviewResponse(&interview, records), nil
}

func parseQuestions(raw string, limit int) ([]string, error) {
	var parsed struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &parsed); err != nil {
		return nil, err
	}

	questions := make([]string, 0, limit)
	for _, question := range parsed.Questions {
		question = strings.TrimSpace(question)
		if question == "" {
			continue
		}
		questions = append(questions, question)
		if len(questions) == limit {
			break
		}
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("model returned no usable questions")
	}
	return questions, nil
}

func (s *InterviewService) GetQuestions(ctx context.Context, accountID uuid.UUID, interviewID string) (*response_models.GenerateInterviewResponse, error) {
	interview, err := s.loadOwnInterview(ctx, accountID, interviewID)
	if err != nil {
		return nil, err
	}

	questions, err := s.repo.ListQuestions(ctx, interview.ID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	return toInterviewResponse(interview, questions), nil
}

func (s *InterviewService) SubmitAnswersAndEvaluate(ctx context.Context, accountID uuid.UUID, interviewID string, req request_models.SubmitAnswersRequest) (*response_models.InterviewFeedbackResponse, error) {
	interview, err := s.loadOwnInterview(ctx, accountID, interviewID)
	if err != nil {
		return nil, err
	}

	questions, err := s.repo.ListQuestions(ctx, interview.ID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	known := make(map[uuid.UUID]string, len(questions))
	for _, question := range questions {
		known[question.ID] = question.Question
	}

	answers := make(map[uuid.UUID]string, len(req.Answers))
	for _, answer := range req.Answers {
		questionID, parseErr := uuid.Parse(answer.QuestionID)
		if parseErr != nil {
			return nil, utils.ErrInvalidInput
		}
		if _, ok := known[questionID]; !ok {
			return nil, utils.ErrInvalidInput
		}
		answers[questionID] = answer.Answer
	}

	if err := s.repo.SaveAnswers(ctx, interview.ID, answers); err != nil {
		return nil, utils.ErrDatabaseError
	}

	var sb strings.Builder
	for _, question := range questions {
		answer, ok := answers[question.ID]
		if !ok {
			if question.Answer != nil {
				answer = *question.Answer
			} else {
				answer = "(not answered)"
			}
		}
		fmt.Fprintf(&sb, "Q%d: %s\nA%d: %s\n\n", question.Position, question.Question, question.Position, answer)
	}

	feedback, err := s.generator.GenerateText(ctx, feedbackSystemPrompt, sb.String())
	if err != nil {
		log.Printf("interview feedback generation failed: %v", err)
		return nil, utils.ErrUnexpectedAIOutput
	}
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return nil, utils.ErrUnexpectedAIOutput
	}

	if err := s.repo.SetFeedback(ctx, interview.ID, feedback); err != nil {
		return nil, utils.ErrDatabaseError
	}

	return &response_models.InterviewFeedbackResponse{
		InterviewID: interview.ID.String(),
		Feedback:    feedback,
	}, nil
}

func (s *InterviewService) loadOwnInterview(ctx context.Context, accountID uuid.UUID, interviewID string) (*db_models.Interview, error) {
	interview, err := s.repo.FindById(ctx, interviewID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if interview == nil || interview.AccountID != accountID {
		return nil, utils.ErrRecordNotFound
	}
	return interview, nil
}

func toInterviewResponse(interview *db_models.Interview, questions []db_models.InterviewQuestion) *response_models.GenerateInterviewResponse {
	out := make([]response_models.InterviewQuestionResponse, 0, len(questions))
	for _, question := range questions {
		out = append(out, response_models.InterviewQuestionResponse{
			ID:       question.ID.String(),
			Position: question.Position,
			Question: question.Question,
		})
	}
	return &response_models.GenerateInterviewResponse{
		InterviewID:   interview.ID.String(),
		QuestionSetID: interview.QuestionSetID.String(),
		Questions:     out,
	}
}
