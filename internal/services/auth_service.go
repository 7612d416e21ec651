package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/careerhub/internal/auth"
	"github.com/justsurfingit/careerhub/internal/dtos"
	"github.com/justsurfingit/careerhub/internal/models"
	"github.com/justsurfingit/careerhub/internal/store"
	"go.uber.org/zap"
)

type AuthService struct {
	Store      store.Store
	SessionTTL time.Duration
	Log        *zap.Logger
	now        func() time.Time
}

func NewAuthService(s store.Store, ttl time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{Store: s, SessionTTL: ttl, Log: log, now: time.Now}
}

// Register creates a password account and opens a session for it.
func (s *AuthService) Register(ctx context.Context, req *dtos.RegisterRequest) (*dtos.SessionResponse, error) {
	if len(req.Password) < auth.MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, auth.MinPasswordLength)
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        strings.TrimSpace(req.Email),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
	}
	if err := s.Store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, fmt.Errorf("email %s: %w", req.Email, ErrConflict)
		}
		return nil, err
	}
	s.Log.Info("user registered", zap.Uint("user_id", user.ID))
	return s.openSession(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, req *dtos.LoginRequest) (*dtos.SessionResponse, error) {
	user, err := s.Store.UserByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	// accounts created through Google have no password
	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return s.openSession(ctx, user)
}

// LoginWithGoogle signs in the owner of a verified Google account, creating the
// user on first sign-in and linking an existing password account by email.
func (s *AuthService) LoginWithGoogle(ctx context.Context, p *auth.GoogleProfile) (*dtos.SessionResponse, error) {
	user, err := s.Store.UserByEmail(ctx, p.Email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		user = &models.User{Email: p.Email, Name: p.Name, GoogleSubject: p.Subject}
		if err := s.Store.CreateUser(ctx, user); err != nil {
			return nil, err
		}
		s.Log.Info("user registered via google", zap.Uint("user_id", user.ID))
	case err != nil:
		return nil, err
	case user.GoogleSubject == "":
		user.GoogleSubject = p.Subject
		if err := s.Store.UpdateUser(ctx, user); err != nil {
			return nil, err
		}
	case user.GoogleSubject != p.Subject:
		return nil, ErrInvalidCredentials
	}
	return s.openSession(ctx, user)
}

func (s *AuthService) openSession(ctx context.Context, user *models.User) (*dtos.SessionResponse, error) {
	sess := &models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.SessionTTL),
	}
	if err := s.Store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	return &dtos.SessionResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: user}, nil
}

// Authenticate resolves a session token. Expired sessions are deleted.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	sess, err := s.Store.SessionByToken(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		if err := s.Store.DeleteSession(ctx, token); err != nil {
			s.Log.Warn("deleting expired session", zap.Error(err))
		}
		return nil, ErrUnauthorized
	}
	user, err := s.Store.UserByID(ctx, sess.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	return user, err
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.Store.DeleteSession(ctx, token)
}
