package dtos

import "github.com/justsurfingit/careerhub/internal/models"

type CVRequest struct {
	Title      string              `json:"title" binding:"required"`
	Headline   string              `json:"headline"`
	Summary    string              `json:"summary"`
	Location   string              `json:"location"`
	Skills     []string            `json:"skills"`
	Experience []models.Experience `json:"experience" binding:"omitempty,dive"`
	Education  []models.Education  `json:"education" binding:"omitempty,dive"`
}

type CVExtractionRequest struct {
	RawText string `json:"raw_text" binding:"required"`
}

// MatchResult scores one job against one CV.
type MatchResult struct {
	JobID         uint     `json:"job_id"`
	Title         string   `json:"title"`
	CompanyName   string   `json:"company_name"`
	Location      string   `json:"location"`
	MatchScore    int      `json:"match_score"`
	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`
}
