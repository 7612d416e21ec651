package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL + "/v2", APIKey: "secret"})
	require.NoError(t, err)
	return c
}

func TestSuggestObjects(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/autocomplete/title", r.URL.Path)
		assert.Equal(t, "dev", r.URL.Query().Get("q"))
		assert.Equal(t, "secret", r.Header.Get(APIKeyHeader))
		_, _ = w.Write([]byte(`{"suggestions":[{"label":"Developer"},{"label":""},{"label":"DevOps Engineer"}]}`))
	})

	got, err := c.Suggest(context.Background(), "title", "dev")
	require.NoError(t, err)
	assert.Equal(t, []string{"Developer", "DevOps Engineer"}, got)
}

func TestSuggestStrings(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"suggestions":["Berlin","Bern"]}`))
	})

	got, err := c.Suggest(context.Background(), "location", "ber")
	require.NoError(t, err)
	assert.Equal(t, []string{"Berlin", "Bern"}, got)
}

func TestSuggestEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	got, err := c.Suggest(context.Background(), "skill", "zz")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := c.Suggest(context.Background(), "title", "x")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.Equal(t, "rate limited", se.Body)
}

func TestInvalidJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})

	_, err := c.Suggest(context.Background(), "title", "x")
	assert.Error(t, err)
}

func TestNotConfigured(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)

	_, err = c.Suggest(context.Background(), "title", "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Nil(t, c.BaseURL())
}

func TestSearchJobs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/jobs", r.URL.Path)
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		assert.Equal(t, "true", r.URL.Query().Get("remote"))
		_, _ = w.Write([]byte(`{"jobs":[
			{"id":"j1","title":"Go Developer","company":{"name":"Stripe"},"remote":true,"skills":["Go","gRPC"],"salary":"$150k"},
			{"id":"j2","title":"SRE","company":"Acme","location":"Berlin"}
		]}`))
	})

	remote := true
	jobs, err := c.SearchJobs(context.Background(), SearchQuery{Text: "golang", Remote: &remote})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, RemoteJob{
		ExternalID: "j1", Title: "Go Developer", Company: "Stripe", Remote: true,
		Skills: []string{"Go", "gRPC"}, SalaryRange: "$150k",
	}, jobs[0])
	assert.Equal(t, "Acme", jobs[1].Company)
	assert.Equal(t, "Berlin", jobs[1].Location)
}
