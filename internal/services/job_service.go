package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/justsurfingit/careerhub/internal/dtos"
	"github.com/justsurfingit/careerhub/internal/models"
	"github.com/justsurfingit/careerhub/internal/store"
	"github.com/justsurfingit/careerhub/internal/upstream"
	"go.uber.org/zap"
)

const defaultPageSize = 20

// RemoteJobSearcher is the external job catalogue.
type RemoteJobSearcher interface {
	SearchJobs(ctx context.Context, q upstream.SearchQuery) ([]upstream.RemoteJob, error)
}

type JobService struct {
	Store  store.Store
	Remote RemoteJobSearcher
	Log    *zap.Logger
}

func NewJobService(s store.Store, remote RemoteJobSearcher, log *zap.Logger) *JobService {
	return &JobService{Store: s, Remote: remote, Log: log}
}

// CreateJob starts tracking an application for userID.
func (s *JobService) CreateJob(ctx context.Context, userID uint, req *dtos.JobCreationRequest) (*models.Job, error) {
	company, err := s.Store.FirstOrCreateCompany(ctx, strings.TrimSpace(req.CompanyName))
	if err != nil {
		return nil, err
	}
	job := &models.Job{
		UserID:      userID,
		CompanyID:   company.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Location:    req.Location,
		Remote:      req.Remote,
		JobLink:     req.JobLink,
		SalaryRange: req.SalaryRange,
		Skills:      normalizeSkills(req.TechStack),
		Status:      req.Status,
		ResumeLink:  req.ResumeLink,
	}
	if err := s.Store.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	job.Company = *company

	event := &models.JobEvent{JobID: job.ID, EventType: "CREATED", Details: "Tracked with status " + job.Status}
	if err := s.Store.CreateJobEvent(ctx, event); err != nil {
		s.Log.Warn("recording job event", zap.Uint("job_id", job.ID), zap.Error(err))
	}
	return job, nil
}

// GetJob returns the job if userID tracks it. Another user's job is reported
// as not found.
func (s *JobService) GetJob(ctx context.Context, userID, id uint) (*models.Job, error) {
	job, err := s.Store.JobByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && job.UserID != userID) {
		return nil, fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	return job, err
}

func (s *JobService) Search(ctx context.Context, userID uint, q *dtos.JobSearchQuery) ([]models.Job, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	return s.Store.ListJobs(ctx, store.JobQuery{
		UserID:   userID,
		Text:     strings.TrimSpace(q.Text),
		Location: strings.TrimSpace(q.Location),
		Skills:   q.Skills,
		Remote:   q.Remote,
		Status:   q.Status,
		Limit:    limit,
		Offset:   q.Offset,
	})
}

// SearchRemote queries the external catalogue instead of tracked jobs.
func (s *JobService) SearchRemote(ctx context.Context, q *dtos.JobSearchQuery) ([]upstream.RemoteJob, error) {
	if s.Remote == nil {
		return nil, upstream.ErrNotConfigured
	}
	page := 0
	if q.Limit > 0 {
		page = q.Offset/q.Limit + 1
	}
	return s.Remote.SearchJobs(ctx, upstream.SearchQuery{
		Text:     strings.TrimSpace(q.Text),
		Location: strings.TrimSpace(q.Location),
		Remote:   q.Remote,
		Page:     page,
	})
}

// UpdateStatus moves a job to status and logs the change. Setting the current
// status again records nothing.
func (s *JobService) UpdateStatus(ctx context.Context, userID, id uint, req *dtos.JobStatusRequest) (*models.Job, error) {
	job, err := s.GetJob(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if job.Status == req.Status {
		return job, nil
	}
	if err := s.Store.UpdateJobStatus(ctx, id, req.Status); err != nil {
		return nil, err
	}

	details := fmt.Sprintf("Status changed from %s to %s", job.Status, req.Status)
	if req.Note != "" {
		details += ". Note: " + req.Note
	}
	if err := s.Store.CreateJobEvent(ctx, &models.JobEvent{JobID: id, EventType: "STATUS_CHANGE", Details: details}); err != nil {
		return nil, err
	}
	s.Log.Info("job status updated", zap.Uint("job_id", id), zap.String("from", job.Status), zap.String("to", req.Status))

	job.Status = req.Status
	return job, nil
}

func (s *JobService) Events(ctx context.Context, userID, id uint) ([]models.JobEvent, error) {
	if _, err := s.GetJob(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.Store.JobEvents(ctx, id)
}
