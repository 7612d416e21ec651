package services

import (
	"context"
	"testing"

	"github.com/justsurfingit/careerhub/internal/dtos"
	"github.com/justsurfingit/careerhub/internal/models"
	"github.com/justsurfingit/careerhub/internal/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	got  upstream.SearchQuery
	jobs []upstream.RemoteJob
}

func (f *fakeRemote) SearchJobs(_ context.Context, q upstream.SearchQuery) ([]upstream.RemoteJob, error) {
	f.got = q
	return f.jobs, nil
}

// owner tracks every job createJob makes.
const owner uint = 1

func createJob(t *testing.T, svc *JobService, company, title string, skills ...string) *models.Job {
	t.Helper()
	job, err := svc.CreateJob(context.Background(), owner, &dtos.JobCreationRequest{
		CompanyName: company,
		Title:       title,
		JobLink:     "https://jobs.example.com/" + title,
		Description: title + " role",
		TechStack:   skills,
	})
	require.NoError(t, err)
	return job
}

func TestJobService_CreateAndGet(t *testing.T) {
	svc := NewJobService(newMemStore(t), nil, nop)
	ctx := context.Background()

	job := createJob(t, svc, " Stripe ", "Backend Engineer", "Go", "go", " Postgres ")
	assert.Equal(t, "Stripe", job.Company.Name)
	assert.Equal(t, []string{"Go", "Postgres"}, job.Skills)
	assert.Equal(t, models.StatusSaved, job.Status)

	got, err := svc.GetJob(ctx, owner, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", got.Title)

	_, err = svc.GetJob(ctx, owner, 404)
	assert.ErrorIs(t, err, ErrNotFound)

	events, err := svc.Events(ctx, owner, job.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "CREATED", events[0].EventType)
}

func TestJobService_UpdateStatus(t *testing.T) {
	svc := NewJobService(newMemStore(t), nil, nop)
	ctx := context.Background()
	job := createJob(t, svc, "Acme", "SRE")

	updated, err := svc.UpdateStatus(ctx, owner, job.ID, &dtos.JobStatusRequest{Status: models.StatusApplied, Note: "via referral"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApplied, updated.Status)

	// same status again records nothing
	_, err = svc.UpdateStatus(ctx, owner, job.ID, &dtos.JobStatusRequest{Status: models.StatusApplied})
	require.NoError(t, err)

	events, err := svc.Events(ctx, owner, job.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "STATUS_CHANGE", events[1].EventType)
	assert.Equal(t, "Status changed from SAVED to APPLIED. Note: via referral", events[1].Details)

	_, err = svc.UpdateStatus(ctx, owner, 99, &dtos.JobStatusRequest{Status: models.StatusOffer})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJobService_Search(t *testing.T) {
	svc := NewJobService(newMemStore(t), nil, nop)
	createJob(t, svc, "Stripe", "Backend Engineer", "Go")
	createJob(t, svc, "Acme", "Frontend Engineer", "React")

	jobs, err := svc.Search(context.Background(), owner, &dtos.JobSearchQuery{Text: " backend "})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Stripe", jobs[0].Company.Name)

	jobs, err = svc.Search(context.Background(), owner, &dtos.JobSearchQuery{Skills: []string{"react"}})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Frontend Engineer", jobs[0].Title)
}

func TestJobService_OtherUsersJobsAreHidden(t *testing.T) {
	svc := NewJobService(newMemStore(t), nil, nop)
	ctx := context.Background()
	job := createJob(t, svc, "Acme", "SRE", "Go")
	const stranger uint = 2

	_, err := svc.GetJob(ctx, stranger, job.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.UpdateStatus(ctx, stranger, job.ID, &dtos.JobStatusRequest{Status: models.StatusRejected})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Events(ctx, stranger, job.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	jobs, err := svc.Search(ctx, stranger, &dtos.JobSearchQuery{})
	require.NoError(t, err)
	assert.Empty(t, jobs)

	got, err := svc.GetJob(ctx, owner, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSaved, got.Status, "status untouched by the stranger")
}

func TestJobService_SearchRemote(t *testing.T) {
	remote := &fakeRemote{jobs: []upstream.RemoteJob{{Title: "Go Developer"}}}
	svc := NewJobService(newMemStore(t), remote, nop)

	jobs, err := svc.SearchRemote(context.Background(), &dtos.JobSearchQuery{Text: "go", Limit: 20, Offset: 40})
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.Equal(t, 3, remote.got.Page)

	svc.Remote = nil
	_, err = svc.SearchRemote(context.Background(), &dtos.JobSearchQuery{})
	assert.ErrorIs(t, err, upstream.ErrNotConfigured)
}
