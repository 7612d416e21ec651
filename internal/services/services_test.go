package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/justsurfingit/careerhub/internal/store"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

func newMemStore(t *testing.T) *store.MemStore {
	t.Helper()
	s, err := store.NewMemStore()
	require.NoError(t, err)
	return s
}

// fakeModel answers prompts from a script of responses and errors.
type fakeModel struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	prompts   []string
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, m := range messages {
		for _, p := range m.Parts {
			if text, ok := p.(llms.TextContent); ok {
				f.prompts = append(f.prompts, text.Text)
			}
		}
	}
	i := len(f.prompts) - 1
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i >= len(f.responses) {
		return nil, errors.New("fake model: no scripted response")
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.responses[i]}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

var nop = zap.NewNop()
