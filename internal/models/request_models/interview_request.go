package request_models

type GenerateInterviewRequest struct {
	DayInRoleID       string `json:"day_in_role_id" binding:"required,uuid4"`
	NumberOfQuestions int    `json:"number_of_questions"`
}

type AnswerInput struct {
	QuestionID string `json:"question_id" binding:"required,uuid4"`
	Answer     string `json:"answer" binding:"required"`
}

type SubmitAnswersRequest struct {
	Answers []AnswerInput `json:"answers" binding:"required,min=1,dive"`
}
