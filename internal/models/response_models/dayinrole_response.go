package response_models

type ScheduleBlock struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Activity  string `json:"activity"`
	Details   string `json:"details,omitempty"`
}

type DayInRoleResponse struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Company    string          `json:"company,omitempty"`
	Language   string          `json:"language"`
	Summary    string          `json:"summary"`
	Schedule   []ScheduleBlock `json:"schedule"`
	Skills     []string        `json:"skills,omitempty"`
	IsFallback bool            `json:"is_fallback"`
	CreatedAt  int64           `json:"created_at"`
}

type SampleDayInRoleResponse struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Company  string   `json:"company,omitempty"`
	Language string   `json:"language"`
	Summary  string   `json:"summary"`
	Tags     []string `json:"tags,omitempty"`
}
