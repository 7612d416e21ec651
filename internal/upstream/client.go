// Package upstream talks to the external career API that owns the job catalogue
// and the autocomplete dictionaries.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// APIKeyHeader authenticates requests to the external API.
const APIKeyHeader = "X-API-Key"

const maxBody = 4 << 20

var ErrNotConfigured = errors.New("upstream: base url not configured")

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream: status %d: %s", e.Code, e.Body)
}

type Options struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	RateLimit float64
	Burst     int
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

type Client struct {
	base    *url.URL
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

func New(opts Options) (*Client, error) {
	c := &Client{apiKey: opts.APIKey, http: opts.HTTPClient}
	if opts.BaseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/"))
		if err != nil {
			return nil, fmt.Errorf("upstream base url: %w", err)
		}
		c.base = u
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: opts.Timeout}
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(limit, burst)
	return c, nil
}

// BaseURL returns the configured API root, or nil.
func (c *Client) BaseURL() *url.URL {
	return c.base
}

func (c *Client) APIKey() string {
	return c.apiKey
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if c.base == nil {
		return nil, ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("upstream: invalid JSON from %s", path)
	}
	return body, nil
}

// Suggest returns completions of text for kind (title, location, skill, company).
// The API answers either {"suggestions": [{"label": ...}]} or {"suggestions": ["..."]}.
func (c *Client) Suggest(ctx context.Context, kind, text string) ([]string, error) {
	body, err := c.get(ctx, "/autocomplete/"+url.PathEscape(kind), url.Values{"q": {text}})
	if err != nil {
		return nil, err
	}

	out := []string{}
	gjson.GetBytes(body, "suggestions").ForEach(func(_, v gjson.Result) bool {
		label := v.String()
		if v.IsObject() {
			label = v.Get("label").String()
		}
		if label != "" {
			out = append(out, label)
		}
		return true
	})
	return out, nil
}

// RemoteJob is a job listing as the external API describes it.
type RemoteJob struct {
	ExternalID  string   `json:"external_id"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Remote      bool     `json:"remote"`
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
	SalaryRange string   `json:"salary_range"`
}

type SearchQuery struct {
	Text     string
	Location string
	Remote   *bool
	Page     int
}

// SearchJobs queries the external job catalogue.
func (c *Client) SearchJobs(ctx context.Context, q SearchQuery) ([]RemoteJob, error) {
	params := url.Values{}
	if q.Text != "" {
		params.Set("q", q.Text)
	}
	if q.Location != "" {
		params.Set("location", q.Location)
	}
	if q.Remote != nil {
		params.Set("remote", strconv.FormatBool(*q.Remote))
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	body, err := c.get(ctx, "/jobs", params)
	if err != nil {
		return nil, err
	}

	jobs := []RemoteJob{}
	gjson.GetBytes(body, "jobs").ForEach(func(_, v gjson.Result) bool {
		job := RemoteJob{
			ExternalID:  v.Get("id").String(),
			Title:       v.Get("title").String(),
			Company:     v.Get("company.name").String(),
			Location:    v.Get("location").String(),
			Remote:      v.Get("remote").Bool(),
			URL:         v.Get("url").String(),
			Description: v.Get("description").String(),
			SalaryRange: v.Get("salary").String(),
		}
		if job.Company == "" {
			job.Company = v.Get("company").String()
		}
		for _, s := range v.Get("skills").Array() {
			job.Skills = append(job.Skills, s.String())
		}
		jobs = append(jobs, job)
		return true
	})
	return jobs, nil
}
