package services

import (
	"context"
	"time"

	"github.com/justsurfingit/careerhub/internal/dtos"
	"github.com/justsurfingit/careerhub/internal/models"
)

// BootstrapService assembles everything the client loads before its first render.
type BootstrapService struct {
	Onboarding        *OnboardingService
	CVs               *CVService
	AutocompleteKinds []string
	AutocompleteWait  time.Duration
}

func (s *BootstrapService) Load(ctx context.Context, user *models.User) (*dtos.BootstrapResponse, error) {
	o, err := s.Onboarding.Get(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	cvs, err := s.CVs.List(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &dtos.BootstrapResponse{
		User:       user,
		Onboarding: o,
		CVCount:    len(cvs),
		Autocomplete: dtos.AutocompleteInfo{
			Kinds:  s.AutocompleteKinds,
			WaitMS: s.AutocompleteWait.Milliseconds(),
		},
	}, nil
}
