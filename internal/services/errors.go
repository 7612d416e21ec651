package services

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidStep        = errors.New("invalid onboarding step")
	ErrInvalidInput       = errors.New("invalid input")
	ErrLLMUnavailable     = errors.New("LLM is not configured")
)
