package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/justsurfingit/careerhub/internal/dtos"
	"github.com/justsurfingit/careerhub/internal/models"
	"github.com/justsurfingit/careerhub/internal/store"
	"go.uber.org/zap"
)

// OnboardingService walks a new user through profile, skills and preferences.
// Steps are submitted in order; earlier steps may be resubmitted at any time.
type OnboardingService struct {
	Store store.Store
	CVs   *CVService
	Log   *zap.Logger
}

func NewOnboardingService(s store.Store, cvs *CVService, log *zap.Logger) *OnboardingService {
	return &OnboardingService{Store: s, CVs: cvs, Log: log}
}

// Get returns the user's onboarding state; users who never started are at step 0.
func (s *OnboardingService) Get(ctx context.Context, userID uint) (*models.Onboarding, error) {
	o, err := s.Store.OnboardingByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return &models.Onboarding{UserID: userID, Skills: []string{}, DesiredRoles: []string{}}, nil
	}
	return o, err
}

func (s *OnboardingService) Submit(ctx context.Context, userID uint, step int, req *dtos.OnboardingStepRequest) (*models.Onboarding, error) {
	if step < models.StepProfile || step > models.StepPreferences {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStep, step)
	}
	o, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if step > o.Step+1 {
		return nil, fmt.Errorf("%w: step %d before step %d", ErrInvalidStep, step, o.Step+1)
	}

	switch step {
	case models.StepProfile:
		if strings.TrimSpace(req.Headline) == "" {
			return nil, fmt.Errorf("%w: headline is required", ErrInvalidInput)
		}
		o.Headline = strings.TrimSpace(req.Headline)
		o.Location = strings.TrimSpace(req.Location)
	case models.StepSkills:
		skills := normalizeSkills(req.Skills)
		if len(skills) == 0 {
			return nil, fmt.Errorf("%w: at least one skill is required", ErrInvalidInput)
		}
		o.Skills = skills
	case models.StepPreferences:
		if req.MinSalary < 0 {
			return nil, fmt.Errorf("%w: min_salary must not be negative", ErrInvalidInput)
		}
		o.DesiredRoles = normalizeSkills(req.DesiredRoles)
		o.Remote = req.Remote
		o.MinSalary = req.MinSalary
	}
	if step > o.Step {
		o.Step = step
	}

	completing := step == models.StepPreferences && !o.Completed
	if completing {
		o.Completed = true
	}
	if err := s.Store.SaveOnboarding(ctx, o); err != nil {
		return nil, err
	}
	if completing {
		s.seedCV(ctx, o)
	}
	return o, nil
}

// seedCV gives a user who finished onboarding a first CV built from the answers.
func (s *OnboardingService) seedCV(ctx context.Context, o *models.Onboarding) {
	existing, err := s.CVs.List(ctx, o.UserID)
	if err != nil || len(existing) > 0 {
		return
	}
	title := "My CV"
	if len(o.DesiredRoles) > 0 {
		title = o.DesiredRoles[0] + " CV"
	}
	_, err = s.CVs.Create(ctx, o.UserID, &dtos.CVRequest{
		Title:    title,
		Headline: o.Headline,
		Location: o.Location,
		Skills:   o.Skills,
	})
	if err != nil {
		s.Log.Warn("seeding CV from onboarding", zap.Uint("user_id", o.UserID), zap.Error(err))
		return
	}
	s.Log.Info("seeded CV from onboarding", zap.Uint("user_id", o.UserID))
}
