package response_models

type InterviewQuestionResponse struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	Question string `json:"question"`
}

type GenerateInterviewResponse struct {
	InterviewID   string                      `json:"interview_id"`
	QuestionSetID string                      `json:"question_set_id"`
	Questions     []InterviewQuestionResponse `json:"questions"`
}

type InterviewFeedbackResponse struct {
	InterviewID string `json:"interview_id"`
	Feedback    string `json:"feedback"`
}
