package store

import (
	"context"
	"testing"
	"time"

	"github.com/justsurfingit/careerhub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *MemStore {
	t.Helper()
	s, err := NewMemStore()
	require.NoError(t, err)
	return s
}

func TestMemStore_Users(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &models.User{Email: "Ada@Example.com", Name: "Ada"}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.NotZero(t, u.ID)
	assert.Equal(t, "ada@example.com", u.Email)

	err := s.CreateUser(ctx, &models.User{Email: "ADA@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := s.UserByEmail(ctx, "ada@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got.Name = "Ada L."
	require.NoError(t, s.UpdateUser(ctx, got))
	again, err := s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", again.Name)

	_, err = s.UserByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_Sessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess := &models.Session{Token: "tok", UserID: 1, ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, s.CreateSession(ctx, sess))

	got, err := s.SessionByToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.UserID)

	require.NoError(t, s.DeleteSession(ctx, "tok"))
	_, err = s.SessionByToken(ctx, "tok")
	assert.ErrorIs(t, err, ErrNotFound)
}

func seedJobs(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	stripe, err := s.FirstOrCreateCompany(ctx, "Stripe")
	require.NoError(t, err)
	again, err := s.FirstOrCreateCompany(ctx, "stripe")
	require.NoError(t, err)
	require.Equal(t, stripe.ID, again.ID)
	acme, err := s.FirstOrCreateCompany(ctx, "Acme")
	require.NoError(t, err)

	jobs := []models.Job{
		{UserID: 1, CompanyID: stripe.ID, Title: "Backend Engineer", Location: "Dublin", Skills: []string{"Go", "Postgres"}},
		{UserID: 1, CompanyID: stripe.ID, Title: "Frontend Engineer", Location: "Remote", Remote: true, Skills: []string{"React"}},
		{UserID: 2, CompanyID: acme.ID, Title: "Data Analyst", Location: "Berlin", Description: "SQL and dashboards", Skills: []string{"SQL"}},
	}
	for i := range jobs {
		require.NoError(t, s.CreateJob(ctx, &jobs[i]))
	}
}

func TestMemStore_ListJobs(t *testing.T) {
	s := newTestStore(t)
	seedJobs(t, s)
	testListJobs(t, s)
}

// testListJobs runs the listing cases every Store must agree on against the
// jobs of seedJobs.
func testListJobs(t *testing.T, s Store) {
	ctx := context.Background()
	remote := true

	tests := []struct {
		name  string
		query JobQuery
		want  []string
	}{
		{"all", JobQuery{}, []string{"Backend Engineer", "Frontend Engineer", "Data Analyst"}},
		{"text on title", JobQuery{Text: "engineer"}, []string{"Backend Engineer", "Frontend Engineer"}},
		{"text on company", JobQuery{Text: "acme"}, []string{"Data Analyst"}},
		{"text on description", JobQuery{Text: "dashboards"}, []string{"Data Analyst"}},
		{"location", JobQuery{Location: "dub"}, []string{"Backend Engineer"}},
		{"remote", JobQuery{Remote: &remote}, []string{"Frontend Engineer"}},
		{"skills", JobQuery{Skills: []string{"go", " postgres "}}, []string{"Backend Engineer"}},
		{"paging", JobQuery{Limit: 1, Offset: 1}, []string{"Frontend Engineer"}},
		{"owner", JobQuery{UserID: 2}, []string{"Data Analyst"}},
		{"skills then paging", JobQuery{Skills: []string{"sql"}, Limit: 1}, []string{"Data Analyst"}},
		{"skills past end", JobQuery{Skills: []string{"go"}, Offset: 1}, []string{}},
		{"offset past end", JobQuery{Offset: 10}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs, err := s.ListJobs(ctx, tt.query)
			require.NoError(t, err)
			titles := []string{}
			for _, j := range jobs {
				titles = append(titles, j.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestFilterSkills(t *testing.T) {
	jobs := []models.Job{
		{ID: 1, Skills: []string{"Go"}},
		{ID: 2, Skills: []string{"Python"}},
		{ID: 3, Skills: []string{"go", "SQL"}},
		{ID: 4, Skills: []string{"Go", "sql"}},
	}

	ids := func(js []models.Job) []uint {
		out := []uint{}
		for _, j := range js {
			out = append(out, j.ID)
		}
		return out
	}

	// paging counts only the jobs that survive the filter
	assert.Equal(t, []uint{3}, ids(filterSkills(jobs, JobQuery{Skills: []string{"GO"}, Limit: 1, Offset: 1})))
	assert.Equal(t, []uint{3, 4}, ids(filterSkills(jobs, JobQuery{Skills: []string{" go", "sql"}})))
	assert.Equal(t, []uint{}, ids(filterSkills(jobs, JobQuery{Skills: []string{"go"}, Offset: 5})))
	assert.Len(t, jobs, 4, "input is not modified")
}

func TestMemStore_JobStatusAndEvents(t *testing.T) {
	s := newTestStore(t)
	seedJobs(t, s)
	ctx := context.Background()

	job, err := s.JobByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Stripe", job.Company.Name)
	assert.Equal(t, models.StatusSaved, job.Status)

	require.NoError(t, s.UpdateJobStatus(ctx, 1, models.StatusApplied))
	require.NoError(t, s.CreateJobEvent(ctx, &models.JobEvent{JobID: 1, EventType: "STATUS_CHANGE"}))

	job, err = s.JobByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApplied, job.Status)

	events, err := s.JobEvents(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	assert.ErrorIs(t, s.UpdateJobStatus(ctx, 42, models.StatusApplied), ErrNotFound)
}

func TestMemStore_CVs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cv := &models.CV{UserID: 7, Title: "Main", Skills: []string{"Go"}}
	require.NoError(t, s.CreateCV(ctx, cv))

	// mutating the caller's copy must not leak into the store
	cv.Skills[0] = "Rust"
	stored, err := s.CVByID(ctx, cv.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, stored.Skills)

	stored.Title = "Updated"
	require.NoError(t, s.UpdateCV(ctx, stored))
	require.NoError(t, s.CreateCV(ctx, &models.CV{UserID: 8, Title: "Other"}))

	list, err := s.CVsByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Updated", list[0].Title)

	require.NoError(t, s.DeleteCV(ctx, cv.ID))
	assert.ErrorIs(t, s.DeleteCV(ctx, cv.ID), ErrNotFound)
	assert.ErrorIs(t, s.UpdateCV(ctx, &models.CV{ID: cv.ID}), ErrNotFound)
}

func TestMemStore_Onboarding(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.OnboardingByUser(ctx, 3)
	assert.ErrorIs(t, err, ErrNotFound)

	o := &models.Onboarding{UserID: 3, Step: 1, Headline: "Engineer"}
	require.NoError(t, s.SaveOnboarding(ctx, o))
	o.Step = 2
	require.NoError(t, s.SaveOnboarding(ctx, o))

	got, err := s.OnboardingByUser(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Step)
	assert.Equal(t, o.ID, got.ID)
}
