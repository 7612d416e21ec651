package autocomplete

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSuggester struct {
	mu    sync.Mutex
	calls []Query
	err   error
}

func (f *fakeSuggester) Suggest(_ context.Context, kind, text string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Query{Kind: kind, Text: text})
	if f.err != nil {
		return nil, f.err
	}
	return []string{text + " engineer", text + " developer"}, nil
}

func (f *fakeSuggester) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newService(t *testing.T, src Suggester, opts Options) *Service {
	t.Helper()
	if opts.Wait == 0 {
		opts.Wait = 20 * time.Millisecond
	}
	s, err := New(src, opts, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestSuggestMemoizesAcrossClients(t *testing.T) {
	src := &fakeSuggester{}
	s := newService(t, src, Options{MinLength: 2})
	ctx := context.Background()

	res, err := s.Suggest(ctx, "client-a", KindTitle, "  Go ")
	require.NoError(t, err)
	assert.Equal(t, "go", res.Query)
	assert.Equal(t, []string{"go engineer", "go developer"}, res.Suggestions)

	res, err = s.Suggest(ctx, "client-b", KindTitle, "go")
	require.NoError(t, err)
	assert.Len(t, res.Suggestions, 2)

	assert.Equal(t, 1, src.callCount())
	assert.Equal(t, 1, s.CachedQueries())
}

func TestSuggestKindsAreSeparate(t *testing.T) {
	src := &fakeSuggester{}
	s := newService(t, src, Options{})
	ctx := context.Background()

	_, err := s.Suggest(ctx, "c", KindTitle, "go")
	require.NoError(t, err)
	_, err = s.Suggest(ctx, "c", KindSkill, "go")
	require.NoError(t, err)
	assert.Equal(t, 2, src.callCount())
}

func TestSuggestShortQuery(t *testing.T) {
	src := &fakeSuggester{}
	s := newService(t, src, Options{MinLength: 3})

	res, err := s.Suggest(context.Background(), "c", KindLocation, "be")
	require.NoError(t, err)
	assert.Empty(t, res.Suggestions)
	assert.NotNil(t, res.Suggestions)
	assert.Equal(t, 0, src.callCount())
}

func TestSuggestUnknownKind(t *testing.T) {
	s := newService(t, &fakeSuggester{}, Options{})
	_, err := s.Suggest(context.Background(), "c", "salary", "100k")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestSuggestSwallowsUpstreamFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	src := &fakeSuggester{err: errors.New("connection refused")}
	s, err := New(src, Options{Wait: 10 * time.Millisecond}, zap.New(core))
	require.NoError(t, err)

	res, err := s.Suggest(context.Background(), "c", KindCompany, "str")
	require.NoError(t, err)
	assert.Empty(t, res.Suggestions)
	assert.False(t, res.Superseded)
	assert.Equal(t, 1, logs.FilterMessage("autocomplete fetch failed").Len())

	// failures are not cached
	_, _ = s.Suggest(context.Background(), "c", KindCompany, "str")
	assert.Equal(t, 2, src.callCount())
}

func TestSuggestSupersededPerClient(t *testing.T) {
	src := &fakeSuggester{}
	s := newService(t, src, Options{Wait: 100 * time.Millisecond})
	ctx := context.Background()

	first := make(chan Result, 1)
	go func() {
		res, _ := s.Suggest(ctx, "typist", KindTitle, "ja")
		first <- res
	}()
	time.Sleep(20 * time.Millisecond)

	// another client is not affected by the typist's next keystroke
	other := make(chan Result, 1)
	go func() {
		res, _ := s.Suggest(ctx, "other", KindTitle, "py")
		other <- res
	}()

	second, err := s.Suggest(ctx, "typist", KindTitle, "jav")
	require.NoError(t, err)

	assert.True(t, (<-first).Superseded)
	assert.False(t, second.Superseded)
	assert.Equal(t, []string{"jav engineer", "jav developer"}, second.Suggestions)
	assert.False(t, (<-other).Superseded)
	assert.Equal(t, 2, src.callCount())
}

func TestSuggestContextCancelled(t *testing.T) {
	s := newService(t, &fakeSuggester{}, Options{Wait: 200 * time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Suggest(ctx, "c", KindTitle, "go")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBoundedCache(t *testing.T) {
	src := &fakeSuggester{}
	s := newService(t, src, Options{CacheSize: 100})

	_, err := s.Suggest(context.Background(), "c", KindTitle, "rust")
	require.NoError(t, err)
	_, err = s.Suggest(context.Background(), "c", KindTitle, "rust")
	require.NoError(t, err)
	assert.Equal(t, 1, src.callCount())
}
