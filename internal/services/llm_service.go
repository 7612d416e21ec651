package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
)

const maxPromptInput = 20000

type LLMService struct {
	Client llms.Model
	Log    *zap.Logger
	// Backoff is the first retry delay; it doubles per attempt. Defaults to 1s.
	Backoff time.Duration
}

// NewLLMService initializes the Gemini client. It returns nil when apiKey is
// empty; extraction endpoints then answer ErrLLMUnavailable.
func NewLLMService(ctx context.Context, apiKey, model string, log *zap.Logger) (*LLMService, error) {
	if apiKey == "" {
		log.Warn("LLM API key is empty; extraction endpoints are disabled")
		return nil, nil
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &LLMService{Client: llm, Log: log}, nil
}

const jobExtractionPrompt = `
You are an expert Job Data Extraction Agent. Your task is to analyze the provided raw HTML/Text from a job posting and extract structured data.

### INSTRUCTIONS:
1. **Analyze** the text to identify the core job details.
2. **Ignore** navigation menus, footers, "similar jobs" lists, and site advertisements.
3. **Extract** the following fields strictly.
4. **Format** the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "company_name": "Name of the company (e.g., Google, StartupInc)",
    "role_title": "Job title (e.g., Senior Backend Engineer)",
    "location": "Job location or 'Remote'",
    "description": "A clean summary of the job. Focus on Responsibilities and Requirements. Remove HTML tags.",
    "tech_stack": ["Array", "of", "technologies", "mentioned", "e.g., Go, React, AWS"],
    "salary_range": "The salary string if explicitly mentioned (e.g., '$100k - $150k'), otherwise null"
}

### CONSTRAINT:
If a piece of information is missing, set the value to null. Do not hallucinate or guess.

### RAW CONTENT:
%s
`

const cvExtractionPrompt = `
You are an expert resume parser. Turn the resume text below into structured JSON.

### OUTPUT SCHEMA:
{
    "title": "Short name for this CV (e.g., 'Backend Engineer CV')",
    "headline": "One-line professional headline",
    "summary": "Two or three sentence summary",
    "location": "City, Country or null",
    "skills": ["Go", "PostgreSQL"],
    "experience": [{"company": "", "role": "", "start_date": "", "end_date": "", "description": ""}],
    "education": [{"school": "", "degree": "", "year": ""}]
}

### CONSTRAINT:
Return valid JSON only, without markdown. If a piece of information is missing, set it to null. Do not invent experience.

### RESUME:
%s
`

// ExtractJobDetails takes raw HTML and returns a structured object as JSON.
func (s *LLMService) ExtractJobDetails(ctx context.Context, rawHTML string) (string, error) {
	return s.extract(ctx, jobExtractionPrompt, rawHTML)
}

// ExtractCV turns free resume text into CV JSON.
func (s *LLMService) ExtractCV(ctx context.Context, rawText string) (string, error) {
	return s.extract(ctx, cvExtractionPrompt, rawText)
}

func (s *LLMService) extract(ctx context.Context, prompt, input string) (string, error) {
	if s == nil || s.Client == nil {
		return "", ErrLLMUnavailable
	}
	input = truncate(input, maxPromptInput)

	backoff := s.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}
	var resp string
	err := retry(ctx, 3, backoff, s.Log, func() error {
		var e error
		resp, e = llms.GenerateFromSinglePrompt(ctx, s.Client, fmt.Sprintf(prompt, input))
		return e
	})
	if err != nil {
		return "", err
	}
	return cleanJSON(resp), nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// cleanJSON strips the markdown fence models add despite being told not to.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// retry executes f with exponential backoff, giving up early when ctx ends.
func retry(ctx context.Context, attempts int, sleep time.Duration, log *zap.Logger, f func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		if log != nil {
			log.Warn("LLM call failed, retrying", zap.Error(err), zap.Duration("backoff", sleep))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
		sleep *= 2
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}
