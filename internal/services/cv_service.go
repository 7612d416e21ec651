package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/justsurfingit/careerhub/internal/dtos"
	"github.com/justsurfingit/careerhub/internal/models"
	"github.com/justsurfingit/careerhub/internal/store"
)

type CVService struct {
	Store store.Store
}

func NewCVService(s store.Store) *CVService {
	return &CVService{Store: s}
}

// normalizeSkills trims skills and drops empty and case-insensitive duplicates,
// keeping the first spelling.
func normalizeSkills(skills []string) []string {
	out := []string{}
	seen := make(map[string]bool, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func applyCV(cv *models.CV, req *dtos.CVRequest) {
	cv.Title = strings.TrimSpace(req.Title)
	cv.Headline = strings.TrimSpace(req.Headline)
	cv.Summary = req.Summary
	cv.Location = strings.TrimSpace(req.Location)
	cv.Skills = normalizeSkills(req.Skills)
	cv.Experience = req.Experience
	cv.Education = req.Education
}

func (s *CVService) Create(ctx context.Context, userID uint, req *dtos.CVRequest) (*models.CV, error) {
	cv := &models.CV{UserID: userID}
	applyCV(cv, req)
	if err := s.Store.CreateCV(ctx, cv); err != nil {
		return nil, err
	}
	return cv, nil
}

// Get returns the CV if userID owns it. A CV owned by someone else is reported
// as not found.
func (s *CVService) Get(ctx context.Context, userID, id uint) (*models.CV, error) {
	cv, err := s.Store.CVByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && cv.UserID != userID) {
		return nil, fmt.Errorf("cv %d: %w", id, ErrNotFound)
	}
	return cv, err
}

func (s *CVService) List(ctx context.Context, userID uint) ([]models.CV, error) {
	return s.Store.CVsByUser(ctx, userID)
}

func (s *CVService) Update(ctx context.Context, userID, id uint, req *dtos.CVRequest) (*models.CV, error) {
	cv, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	applyCV(cv, req)
	if err := s.Store.UpdateCV(ctx, cv); err != nil {
		return nil, err
	}
	return cv, nil
}

func (s *CVService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.Store.DeleteCV(ctx, id)
}
