// Package autocomplete serves typeahead suggestions for job titles, locations,
// skills and companies.
//
// Every client gets its own debounced pipeline per kind, all sharing one
// memoized upstream fetch, so a burst of keystrokes from one client costs at
// most one upstream call per quiet window and a query answered once is never
// fetched again.
package autocomplete

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru"
	"github.com/justsurfingit/careerhub/internal/pipeline"
	"go.uber.org/zap"
)

const (
	KindTitle    = "title"
	KindLocation = "location"
	KindSkill    = "skill"
	KindCompany  = "company"
)

var Kinds = []string{KindTitle, KindLocation, KindSkill, KindCompany}

var ErrUnknownKind = errors.New("autocomplete: unknown kind")

// Suggester fetches suggestions from the source of truth.
type Suggester interface {
	Suggest(ctx context.Context, kind, text string) ([]string, error)
}

// Query is the memoized argument.
type Query struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

type Result struct {
	Query       string   `json:"query"`
	Suggestions []string `json:"suggestions"`
	// Superseded is set when a newer request from the same client replaced this one.
	Superseded bool `json:"superseded,omitempty"`
}

type Options struct {
	Wait      time.Duration
	MinLength int
	// CacheSize bounds the shared cache; 0 keeps an unbounded map.
	CacheSize int
	// Clients bounds the number of per-client pipelines kept.
	Clients int
}

type Service struct {
	memo   *pipeline.Memoizer[Query, []string]
	wait   time.Duration
	minLen int
	log    *zap.Logger

	mu        sync.Mutex
	pipelines *lru.Cache
}

func New(src Suggester, opts Options, log *zap.Logger) (*Service, error) {
	if opts.Wait <= 0 {
		opts.Wait = pipeline.DefaultWait
	}
	if opts.Clients <= 0 {
		opts.Clients = 4096
	}

	var cache pipeline.Cache[[]string] = pipeline.NewMapCache[[]string]()
	if opts.CacheSize > 0 {
		rc, err := pipeline.NewRistrettoCache[[]string](int64(opts.CacheSize))
		if err != nil {
			return nil, fmt.Errorf("autocomplete cache: %w", err)
		}
		cache = rc
	}

	fetch := func(ctx context.Context, q Query) ([]string, error) {
		return src.Suggest(ctx, q.Kind, q.Text)
	}
	s := &Service{
		memo: pipeline.NewMemoizer(fetch,
			pipeline.WithCache[Query, []string](cache),
			pipeline.WithMissHook[Query, []string](func(q Query) {
				log.Debug("autocomplete cache miss", zap.String("kind", q.Kind), zap.String("query", q.Text))
			}),
		),
		wait:   opts.Wait,
		minLen: opts.MinLength,
		log:    log,
	}

	pipelines, err := lru.NewWithEvict(opts.Clients, func(_, value interface{}) {
		// release whoever still waits on an evicted pipeline
		value.(*pipeline.Pipeline[Query, []string]).Cancel()
	})
	if err != nil {
		return nil, err
	}
	s.pipelines = pipelines
	return s, nil
}

// Wait is the debounce quiet period.
func (s *Service) Wait() time.Duration {
	return s.wait
}

func (s *Service) CachedQueries() int {
	return s.memo.Cache().Len()
}

func validKind(kind string) bool {
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func (s *Service) pipelineFor(clientID, kind string) *pipeline.Pipeline[Query, []string] {
	key := clientID + "|" + kind

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pipelines.Get(key); ok {
		return p.(*pipeline.Pipeline[Query, []string])
	}
	p := pipeline.NewPipelineWithMemo(s.memo, s.wait)
	s.pipelines.Add(key, p)
	return p
}

// Suggest returns completions of text for the client. Upstream failures are
// logged and reported as no suggestions; only an unknown kind or the caller's
// own context ending produce an error.
func (s *Service) Suggest(ctx context.Context, clientID, kind, text string) (Result, error) {
	if !validKind(kind) {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	text = strings.ToLower(strings.TrimSpace(text))
	res := Result{Query: text, Suggestions: []string{}}
	if text == "" || utf8.RuneCountInString(text) < s.minLen {
		return res, nil
	}

	got, err := s.pipelineFor(clientID, kind).Get(ctx, Query{Kind: kind, Text: text})
	switch {
	case err == nil:
		if got != nil {
			res.Suggestions = got
		}
		return res, nil
	case pipeline.IsSuperseded(err):
		res.Superseded = true
		return res, nil
	case ctx.Err() != nil:
		return res, ctx.Err()
	default:
		s.log.Warn("autocomplete fetch failed",
			zap.String("kind", kind),
			zap.String("query", text),
			zap.Error(err),
		)
		return res, nil
	}
}
