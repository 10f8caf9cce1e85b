package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"rolepeek/internal/models/db_models"
	"rolepeek/internal/models/request_models"
	"rolepeek/internal/models/response_models"
	"rolepeek/internal/repositories"
	"rolepeek/pkg/utils"
)

type DayInRoleServiceInterface interface {
	Generate(ctx context.Context, accountID uuid.UUID, req request_models.GenerateDayInRoleRequest) (*response_models.DayInRoleResponse, error)
	GetById(ctx context.Context, accountID uuid.UUID, id string) (*response_models.DayInRoleResponse, error)
	ListOwn(ctx context.Context, accountID uuid.UUID) ([]response_models.DayInRoleResponse, error)
	SearchSamples(ctx context.Context, query string) ([]response_models.SampleDayInRoleResponse, error)
}

type DayInRoleService struct {
	repo       repositories.IDayInRoleRepository
	sampleRepo repositories.ISampleRepository
	generator  utils.TextGeneratorInterface
	embedder   utils.EmbeddingClientInterface
	fetcher    utils.JobPostingFetcherInterface
}

func NewDayInRoleService(
	repo repositories.IDayInRoleRepository,
	sampleRepo repositories.ISampleRepository,
	generator utils.TextGeneratorInterface,
	embedder utils.EmbeddingClientInterface,
	fetcher utils.JobPostingFetcherInterface,
) DayInRoleServiceInterface {
	return &DayInRoleService{
		repo:       repo,
		sampleRepo: sampleRepo,
		generator:  generator,
		embedder:   embedder,
		fetcher:    fetcher,
	}
}

// generatedDayInRole is the shape the model is instructed to return.
type generatedDayInRole struct {
	Title    string                          `json:"title"`
	Company  string                          `json:"company"`
	Summary  string                          `json:"summary"`
	Schedule []response_models.ScheduleBlock `json:"schedule"`
	Skills   []string                        `json:"skills"`
}

const dayInRoleSystemPrompt = `You are a career coach writing realistic "a day in this role" previews from job postings.
Return ONLY valid JSON, no extra text, in this exact format:
{
  "title": "role title from the posting",
  "company": "company name or empty string",
  "summary": "2-3 sentence overview of a typical day",
  "schedule": [
    {"start_time": "09:00", "end_time": "10:30", "activity": "short name", "details": "what happens"}
  ],
  "skills": ["skill 1", "skill 2"]
}
The schedule must cover a full workday in 5-8 blocks.`

func (s *DayInRoleService) Generate(ctx context.Context, accountID uuid.UUID, req request_models.GenerateDayInRoleRequest) (*response_models.DayInRoleResponse, error) {
	language := req.Language
	if language == "" {
		language = "en"
	}

	sourceText := strings.TrimSpace(req.JobOfferText)
	inputType := db_models.DayInRoleInputText
	if req.InputType == string(db_models.DayInRoleInputURL) {
		inputType = db_models.DayInRoleInputURL
		if req.SourceURL == "" {
			return nil, utils.ErrInvalidInput
		}
		fetched, err := s.fetcher.FetchPosting(ctx, req.SourceURL)
		if err != nil {
			return nil, err
		}
		sourceText = fetched
	}
	if sourceText == "" {
		return nil, utils.ErrInvalidInput
	}

	userPrompt := fmt.Sprintf("Write the preview in language %q.\n\nJob posting:\n%s", language, sourceText)

	content, isFallback := s.generateContent(ctx, userPrompt)

	scheduleJSON, _ := json.Marshal(content.Schedule)
	skillsJSON, _ := json.Marshal(content.Skills)

	record := db_models.DayInRole{
		AccountID:  accountID,
		Title:      content.Title,
		Company:    content.Company,
		Language:   language,
		Summary:    content.Summary,
		Schedule:   datatypes.JSON(scheduleJSON),
		Skills:     datatypes.JSON(skillsJSON),
		InputType:  inputType,
		SourceURL:  req.SourceURL,
		IsFallback: isFallback,
	}

	if err := s.repo.Insert(ctx, &record); err != nil {
		return nil, utils.ErrDatabaseError
	}

	resp := toDayInRoleResponse(&record)
	return &resp, nil
}

// generateContent calls the model and parses its output. Upstream failures
// and unparseable output both degrade to the placeholder so the caller
// always gets a persisted record; the fallback flag keeps the distinction
// visible instead of hiding it behind a swallowed error.
func (s *DayInRoleService) generateContent(ctx context.Context, userPrompt string) (generatedDayInRole, bool) {
	raw, err := s.generator.GenerateText(ctx, dayInRoleSystemPrompt, userPrompt)
	if err != nil {
		log.Printf("day-in-role generation failed, using fallback: %v", err)
		return fallbackDayInRole(), true
	}

	var content generatedDayInRole
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &content); err != nil {
		log.Printf("day-in-role parse failed, using fallback: %v", err)
		return fallbackDayInRole(), true
	}
	if content.Title == "" || content.Summary == "" || len(content.Schedule) == 0 {
		log.Printf("day-in-role output incomplete, using fallback")
		return fallbackDayInRole(), true
	}

	return content, false
}

// extractJSONObject strips markdown fences and any chatter around the
// outermost JSON object. Models wrap output in ```json blocks often enough
// that parsing the raw string directly is not an option.
func extractJSONObject(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

func fallbackDayInRole() generatedDayInRole {
	return generatedDayInRole{
		Title:   "Your day in this role",
		Summary: "We could not build a tailored preview for this posting right now. Here is a general outline of a typical workday; try again in a few minutes for a tailored one.",
		Schedule: []response_models.ScheduleBlock{
			{StartTime: "09:00", EndTime: "09:30", Activity: "Morning sync", Details: "Stand-up with the team, plan the day"},
			{StartTime: "09:30", EndTime: "12:00", Activity: "Focused work", Details: "Core tasks of the role"},
			{StartTime: "12:00", EndTime: "13:00", Activity: "Lunch", Details: "Break with colleagues"},
			{StartTime: "13:00", EndTime: "15:30", Activity: "Collaboration", Details: "Meetings, reviews and pairing"},
			{StartTime: "15:30", EndTime: "17:30", Activity: "Deep work", Details: "Finishing the day's deliverables"},
		},
	}
}

func (s *DayInRoleService) GetById(ctx context.Context, accountID uuid.UUID, id string) (*response_models.DayInRoleResponse, error) {
	record, err := s.repo.FindById(ctx, id)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if record == nil || record.AccountID != accountID {
		return nil, utils.ErrRecordNotFound
	}

	resp := toDayInRoleResponse(record)
	return &resp, nil
}

func (s *DayInRoleService) ListOwn(ctx context.Context, accountID uuid.UUID) ([]response_models.DayInRoleResponse, error) {
	records, err := s.repo.ListByAccount(ctx, accountID, 20)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	out := make([]response_models.DayInRoleResponse, 0, len(records))
	for i := range records {
		out = append(out, toDayInRoleResponse(&records[i]))
	}
	return out, nil
}

func (s *DayInRoleService) SearchSamples(ctx context.Context, query string) ([]response_models.SampleDayInRoleResponse, error) {
	var (
		samples []db_models.SampleDayInRole
		err     error
	)

	query = strings.TrimSpace(query)
	if query == "" {
		samples, err = s.sampleRepo.ListRecent(ctx, 10)
	} else {
		vector, embedErr := s.embedder.GetEmbedding(ctx, query)
		if embedErr != nil {
			log.Printf("sample search embedding failed, listing recent: %v", embedErr)
			samples, err = s.sampleRepo.ListRecent(ctx, 10)
		} else {
			samples, err = s.sampleRepo.ListByVector(ctx, vector, 10)
		}
	}
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	out := make([]response_models.SampleDayInRoleResponse, 0, len(samples))
	for _, sample := range samples {
		out = append(out, response_models.SampleDayInRoleResponse{
			ID:       sample.ID,
			Title:    sample.Title,
			Company:  sample.Company,
			Language: sample.Language,
			Summary:  sample.Summary,
			Tags:     sample.Tags,
		})
	}
	return out, nil
}

func toDayInRoleResponse(record *db_models.DayInRole) response_models.DayInRoleResponse {
	var schedule []response_models.ScheduleBlock
	_ = json.Unmarshal(record.Schedule, &schedule)

	var skills []string
	_ = json.Unmarshal(record.Skills, &skills)

	return response_models.DayInRoleResponse{
		ID:         record.ID.String(),
		Title:      record.Title,
		Company:    record.Company,
		Language:   record.Language,
		Summary:    record.Summary,
		Schedule:   schedule,
		Skills:     skills,
		IsFallback: record.IsFallback,
		CreatedAt:  record.CreatedAt,
	}
}
