// Package client talks to competitive-programming platforms.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"anoa.com/cpquest/pkg/apperror"
	"golang.org/x/time/rate"
)

const (
	VerdictAccepted = "OK"

	DefaultBaseURL   = "https://codeforces.com/api"
	DefaultWindow    = 50
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 4 << 20
)

// Submission is one judged attempt.
type Submission struct {
	ID          int64
	ProblemID   string
	ProblemName string
	Tags        []string
	Verdict     string
	SubmittedAt time.Time
}

func (s Submission) Accepted() bool {
	return s.Verdict == VerdictAccepted
}

type UserInfo struct {
	Handle    string
	Rating    int
	MaxRating int
	Rank      string
}

// Client returns platform data for a handle. Errors wrap apperror.ErrExternal
// unless the handle does not exist (apperror.ErrNotFound).
type Client interface {
	// RecentSubmissions returns up to count submissions, newest first.
	RecentSubmissions(ctx context.Context, handle string, count int) ([]Submission, error)
	UserInfo(ctx context.Context, handle string) (*UserInfo, error)
}

type codeforcesClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type Option func(*codeforcesClient)

// WithMinInterval spaces outgoing calls at least d apart across all callers
// sharing the client. Codeforces asks for one call per two seconds.
func WithMinInterval(d time.Duration) Option {
	return func(c *codeforcesClient) {
		if d > 0 {
			c.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

func NewCodeforcesClient(baseURL string, timeout time.Duration, opts ...Option) Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &codeforcesClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type cfEnvelope struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment"`
	Result  json.RawMessage `json:"result"`
}

type cfProblem struct {
	ContestID int      `json:"contestId"`
	Index     string   `json:"index"`
	Name      string   `json:"name"`
	Tags      []string `json:"tags"`
}

type cfSubmission struct {
	ID                  int64     `json:"id"`
	CreationTimeSeconds int64     `json:"creationTimeSeconds"`
	Problem             cfProblem `json:"problem"`
	Verdict             string    `json:"verdict"`
}

type cfUser struct {
	Handle    string `json:"handle"`
	Rating    int    `json:"rating"`
	MaxRating int    `json:"maxRating"`
	Rank      string `json:"rank"`
}

func (c *codeforcesClient) RecentSubmissions(ctx context.Context, handle string, count int) ([]Submission, error) {
	if count <= 0 {
		count = DefaultWindow
	}
	params := url.Values{}
	params.Set("handle", handle)
	params.Set("from", "1")
	params.Set("count", strconv.Itoa(count))

	var raw []cfSubmission
	if err := c.get(ctx, "user.status", params, &raw); err != nil {
		return nil, err
	}

	subs := make([]Submission, 0, len(raw))
	for _, r := range raw {
		subs = append(subs, Submission{
			ID:          r.ID,
			ProblemID:   fmt.Sprintf("%d%s", r.Problem.ContestID, r.Problem.Index),
			ProblemName: r.Problem.Name,
			Tags:        r.Problem.Tags,
			Verdict:     r.Verdict,
			SubmittedAt: time.Unix(r.CreationTimeSeconds, 0).UTC(),
		})
	}
	return subs, nil
}

func (c *codeforcesClient) UserInfo(ctx context.Context, handle string) (*UserInfo, error) {
	params := url.Values{}
	params.Set("handles", handle)

	var users []cfUser
	if err := c.get(ctx, "user.info", params, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: codeforces handle %s", apperror.ErrNotFound, handle)
	}
	u := users[0]
	return &UserInfo{Handle: u.Handle, Rating: u.Rating, MaxRating: u.MaxRating, Rank: u.Rank}, nil
}

func (c *codeforcesClient) get(ctx context.Context, method string, params url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("codeforces %s: %w", method, err)
		}
	}

	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, method, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: codeforces %s: %v", apperror.ErrExternal, method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read codeforces %s: %v", apperror.ErrExternal, method, err)
	}

	var env cfEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: codeforces %s returned %d: %v", apperror.ErrExternal, method, resp.StatusCode, err)
	}
	if env.Status != "OK" {
		if strings.Contains(env.Comment, "not found") {
			return fmt.Errorf("%w: %s", apperror.ErrNotFound, env.Comment)
		}
		return fmt.Errorf("%w: codeforces %s: %s", apperror.ErrExternal, method, env.Comment)
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("%w: decode codeforces %s: %v", apperror.ErrExternal, method, err)
	}
	return nil
}
