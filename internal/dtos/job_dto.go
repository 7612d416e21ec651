package dtos

type JobExtractionRequest struct {
	RawHTML string `json:"raw_html" binding:"required"`
	URL     string `json:"url"`
}

type JobCreationRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	Title       string `json:"role_title" binding:"required"`
	JobLink     string `json:"job_link" binding:"required,url"`
	Description string `json:"description" binding:"required"`

	// Optional Fields
	Location    string   `json:"location"`
	Remote      bool     `json:"remote"`
	SalaryRange string   `json:"salary_range"`
	TechStack   []string `json:"tech_stack" binding:"omitempty,dive,required"`
	ResumeLink  string   `json:"resume_link"`
	Status      string   `json:"status" binding:"omitempty,jobstatus"` // Defaults to "SAVED" if empty
}

type JobStatusRequest struct {
	Status string `json:"status" binding:"required,jobstatus"`
	Note   string `json:"note"`
}

// JobSearchQuery is bound from the query string of GET /jobs.
type JobSearchQuery struct {
	Text     string   `form:"q"`
	Location string   `form:"location"`
	Skills   []string `form:"skill"`
	Remote   *bool    `form:"remote"`
	Status   string   `form:"status" binding:"omitempty,jobstatus"`
	Source   string   `form:"source" binding:"omitempty,oneof=local remote"`
	Limit    int      `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset   int      `form:"offset" binding:"omitempty,min=0"`
}
