package request_models

type GenerateDayInRoleRequest struct {
	JobOfferText string `json:"job_offer_text"`
	SourceURL    string `json:"source_url"`
	InputType    string `json:"input_type" binding:"required,oneof=text url"`
	Language     string `json:"language"`
}

type SampleSearchRequest struct {
	Query string `form:"query" binding:"omitempty,min=2"`
}
