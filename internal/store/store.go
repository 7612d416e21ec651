// Package store persists users, sessions, jobs, CVs and onboarding state.
//
// GormStore backs the service with Postgres; MemStore keeps everything in
// go-memdb tables for local runs and tests.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/justsurfingit/careerhub/internal/models"
)

var (
	ErrNotFound  = errors.New("store: record not found")
	ErrDuplicate = errors.New("store: duplicate record")
)

// JobQuery filters job listings. Zero fields do not filter.
type JobQuery struct {
	UserID   uint
	Text     string
	Location string
	Skills   []string
	Remote   *bool
	Status   string
	Limit    int
	Offset   int
}

// Matches applies every filter except paging to job. job.Company must be loaded
// for text search on the company name.
func (q JobQuery) Matches(job *models.Job) bool {
	if q.UserID != 0 && job.UserID != q.UserID {
		return false
	}
	if q.Text != "" {
		text := strings.ToLower(q.Text)
		if !strings.Contains(strings.ToLower(job.Title), text) &&
			!strings.Contains(strings.ToLower(job.Description), text) &&
			!strings.Contains(strings.ToLower(job.Company.Name), text) {
			return false
		}
	}
	if q.Location != "" && !strings.Contains(strings.ToLower(job.Location), strings.ToLower(q.Location)) {
		return false
	}
	if q.Remote != nil && job.Remote != *q.Remote {
		return false
	}
	if q.Status != "" && job.Status != q.Status {
		return false
	}
	return q.matchesSkills(job)
}

func (q JobQuery) matchesSkills(job *models.Job) bool {
	for _, want := range q.Skills {
		found := false
		for _, have := range job.Skills {
			if strings.EqualFold(strings.TrimSpace(want), have) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// filterSkills keeps the jobs having every skill of q and pages the result.
// The skills filter cannot be pushed into SQL, so paging has to follow it.
func filterSkills(jobs []models.Job, q JobQuery) []models.Job {
	filtered := make([]models.Job, 0, len(jobs))
	for i := range jobs {
		if q.matchesSkills(&jobs[i]) {
			filtered = append(filtered, jobs[i])
		}
	}
	return page(filtered, q.Offset, q.Limit)
}

func page[T any](items []T, offset, limit int) []T {
	if offset > len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, u *models.User) error
	UserByID(ctx context.Context, id uint) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateSession(ctx context.Context, s *models.Session) error
	SessionByToken(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error

	// FirstOrCreateCompany returns the company with the given name, creating it if missing.
	FirstOrCreateCompany(ctx context.Context, name string) (*models.Company, error)
	CreateJob(ctx context.Context, j *models.Job) error
	JobByID(ctx context.Context, id uint) (*models.Job, error)
	ListJobs(ctx context.Context, q JobQuery) ([]models.Job, error)
	UpdateJobStatus(ctx context.Context, id uint, status string) error
	CreateJobEvent(ctx context.Context, e *models.JobEvent) error
	JobEvents(ctx context.Context, jobID uint) ([]models.JobEvent, error)

	CreateCV(ctx context.Context, cv *models.CV) error
	UpdateCV(ctx context.Context, cv *models.CV) error
	CVByID(ctx context.Context, id uint) (*models.CV, error)
	CVsByUser(ctx context.Context, userID uint) ([]models.CV, error)
	DeleteCV(ctx context.Context, id uint) error

	OnboardingByUser(ctx context.Context, userID uint) (*models.Onboarding, error)
	SaveOnboarding(ctx context.Context, o *models.Onboarding) error
}
