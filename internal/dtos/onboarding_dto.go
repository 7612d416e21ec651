package dtos

import "github.com/justsurfingit/careerhub/internal/models"

// OnboardingStepRequest carries the answers of one step; only the fields of the
// submitted step are read.
type OnboardingStepRequest struct {
	Headline     string   `json:"headline"`
	Location     string   `json:"location"`
	Skills       []string `json:"skills"`
	DesiredRoles []string `json:"desired_roles"`
	Remote       bool     `json:"remote"`
	MinSalary    int      `json:"min_salary" binding:"min=0"`
}

type BootstrapResponse struct {
	User         *models.User       `json:"user"`
	Onboarding   *models.Onboarding `json:"onboarding"`
	CVCount      int                `json:"cv_count"`
	Autocomplete AutocompleteInfo   `json:"autocomplete"`
}

type AutocompleteInfo struct {
	Kinds  []string `json:"kinds"`
	WaitMS int64    `json:"wait_ms"`
}
