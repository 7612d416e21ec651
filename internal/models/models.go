package models

import (
	"time"

	"gorm.io/gorm"
)

// Job statuses. A job is tracked from SAVED through to a terminal OFFER or REJECTED.
const (
	StatusSaved     = "SAVED"
	StatusApplied   = "APPLIED"
	StatusInterview = "INTERVIEW"
	StatusOffer     = "OFFER"
	StatusRejected  = "REJECTED"
)

var JobStatuses = []string{StatusSaved, StatusApplied, StatusInterview, StatusOffer, StatusRejected}

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Email         string `gorm:"uniqueIndex;not null" json:"email"`
	Name          string `json:"name"`
	PasswordHash  string `json:"-"`
	GoogleSubject string `gorm:"index" json:"-"`
}

type Session struct {
	Token     string    `gorm:"primaryKey" json:"token"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type Company struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// unique regardless of case; the first spelling is kept
	Name string `gorm:"not null;uniqueIndex:idx_companies_name_lower,expression:lower(name)" json:"company_name"`

	// 'omitempty' prevents infinite loops when fetching a Job -> Company -> Jobs -> ...
	Jobs []Job `json:"jobs,omitempty"`
}

type Job struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// UserID is the user tracking this application.
	UserID    uint `gorm:"index;not null" json:"user_id"`
	CompanyID uint `json:"company_id"`
	// Association: GORM needs Preload() to fill this
	Company Company `json:"company"`

	Title       string   `gorm:"not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	Location    string   `json:"location"`
	Remote      bool     `json:"remote"`
	JobLink     string   `json:"job_link"`
	SalaryRange string   `json:"salary_range"`
	Skills      []string `gorm:"serializer:json" json:"skills"`
	Status      string   `gorm:"default:'SAVED'" json:"status"`
	ResumeLink  string   `json:"resume_link"`
}

type JobEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	JobID     uint      `gorm:"index" json:"job_id"`
	EventType string    `json:"event_type"`
	Details   string    `gorm:"type:text" json:"details"`
}

type Experience struct {
	Company     string `json:"company"`
	Role        string `json:"role"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Description string `json:"description"`
}

type Education struct {
	School string `json:"school"`
	Degree string `json:"degree"`
	Year   string `json:"year"`
}

type CV struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID     uint         `gorm:"index;not null" json:"user_id"`
	Title      string       `gorm:"not null" json:"title"`
	Headline   string       `json:"headline"`
	Summary    string       `gorm:"type:text" json:"summary"`
	Location   string       `json:"location"`
	Skills     []string     `gorm:"serializer:json" json:"skills"`
	Experience []Experience `gorm:"serializer:json" json:"experience"`
	Education  []Education  `gorm:"serializer:json" json:"education"`
}

// Onboarding steps, submitted in order.
const (
	StepProfile     = 1
	StepSkills      = 2
	StepPreferences = 3
)

type Onboarding struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID       uint     `gorm:"uniqueIndex;not null" json:"user_id"`
	Step         int      `json:"step"`
	Completed    bool     `json:"completed"`
	Headline     string   `json:"headline"`
	Location     string   `json:"location"`
	Skills       []string `gorm:"serializer:json" json:"skills"`
	DesiredRoles []string `gorm:"serializer:json" json:"desired_roles"`
	Remote       bool     `json:"remote"`
	MinSalary    int      `json:"min_salary"`
}
