package services

import (
	"context"
	"testing"

	"github.com/justsurfingit/careerhub/internal/dtos"
	"github.com/justsurfingit/careerhub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSkills(t *testing.T) {
	assert.Equal(t, []string{"Go", "SQL"}, normalizeSkills([]string{" Go", "go", "", "SQL", "sql "}))
	assert.Equal(t, []string{}, normalizeSkills(nil))
}

func TestCVService_CRUD(t *testing.T) {
	svc := NewCVService(newMemStore(t))
	ctx := context.Background()

	cv, err := svc.Create(ctx, 1, &dtos.CVRequest{
		Title:      "Backend CV",
		Headline:   "Go engineer",
		Skills:     []string{"Go", " go", "Kubernetes"},
		Experience: []models.Experience{{Company: "Acme", Role: "Engineer"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Kubernetes"}, cv.Skills)

	// another user's CV is invisible
	_, err = svc.Get(ctx, 2, cv.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Update(ctx, 2, cv.ID, &dtos.CVRequest{Title: "Hijack"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, 2, cv.ID), ErrNotFound)

	updated, err := svc.Update(ctx, 1, cv.ID, &dtos.CVRequest{Title: "Platform CV", Skills: []string{"Go"}})
	require.NoError(t, err)
	assert.Equal(t, "Platform CV", updated.Title)
	assert.Empty(t, updated.Experience)

	list, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Platform CV", list[0].Title)

	require.NoError(t, svc.Delete(ctx, 1, cv.ID))
	_, err = svc.Get(ctx, 1, cv.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
