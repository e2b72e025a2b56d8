package legiscan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/civicsignal/billfeed/internal/core/domain"
	"github.com/civicsignal/billfeed/internal/logger"
)

const (
	// DefaultBaseURL is the production API endpoint.
	DefaultBaseURL = "https://api.legiscan.com"

	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultMinGap is the minimum spacing between call departures.
	DefaultMinGap = 100 * time.Millisecond

	// DefaultCooldown is the fixed sleep after a rate-limit rejection.
	DefaultCooldown = 60 * time.Second

	// DefaultMaxAttempts is the attempt budget per call for
	// rate-limit rejections, counting the first try.
	DefaultMaxAttempts = 3

	// transientRetries is the retry budget for transport-level
	// failures (network errors, 5xx).
	transientRetries = 3

	// transientDelay is the pause between transport retries.
	transientDelay = time.Second

	opSearch = "getSearchRaw"
	opDetail = "getBill"
)

// dateFormat is the API's date representation.
const dateFormat = "2006-01-02"

// Options configures a Client.
type Options struct {
	// APIKey is the account key passed on every request. Required.
	APIKey string

	// BaseURL overrides the API endpoint. Defaults to DefaultBaseURL.
	BaseURL string

	// HTTPClient overrides the transport. Defaults to a client with
	// DefaultTimeout.
	HTTPClient *http.Client

	// MinGap overrides the minimum inter-call spacing.
	MinGap time.Duration

	// Cooldown overrides the rate-limit cooldown.
	Cooldown time.Duration

	// MaxAttempts overrides the per-call rate-limit attempt budget.
	MaxAttempts int
}

// Client issues search and detail calls against the API. All calls on
// one instance share a single throttle and call counter; construct one
// per run and discard it at run end.
type Client struct {
	apiKey      string
	baseURL     string
	http        *http.Client
	throttle    *Throttle
	cooldown    time.Duration
	maxAttempts int
	retryDelay  time.Duration

	mu    sync.Mutex
	calls int
}

// NewClient creates a client for the given account key.
func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, domain.ErrMissingAPIKey
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if opts.MinGap <= 0 {
		opts.MinGap = DefaultMinGap
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultCooldown
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}

	return &Client{
		apiKey:      opts.APIKey,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		http:        opts.HTTPClient,
		throttle:    NewThrottle(opts.MinGap),
		cooldown:    opts.Cooldown,
		maxAttempts: opts.MaxAttempts,
		retryDelay:  transientDelay,
	}, nil
}

// Calls returns the cumulative number of HTTP requests departed by
// this client, including retries.
func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Search runs one search call and returns hits in API order.
func (c *Client) Search(ctx context.Context, query, jurisdiction string) ([]domain.RemoteSummary, domain.SearchMeta, error) {
	if jurisdiction == "" {
		jurisdiction = domain.JurisdictionAll
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("state", jurisdiction)

	env, err := c.call(ctx, opSearch, params)
	if err != nil {
		return nil, domain.SearchMeta{}, err
	}
	if env.SearchResult == nil {
		return nil, domain.SearchMeta{}, &APIError{Op: opSearch, Message: "response missing searchresult"}
	}

	hits := env.SearchResult.Results
	summaries := make([]domain.RemoteSummary, 0, len(hits))
	for _, hit := range hits {
		s := domain.RemoteSummary{
			SourceID:     hit.BillID,
			Jurisdiction: strings.ToUpper(hit.State),
			BillNumber:   hit.BillNumber,
			Relevance:    hit.Relevance,
			URL:          hit.URL,
		}
		if d, err := time.Parse(dateFormat, hit.LastActionDate); err == nil {
			s.StatusDate = d
		}
		summaries = append(summaries, s)
	}

	meta := domain.SearchMeta{
		TotalCount: env.SearchResult.Summary.Count,
		CallsUsed:  c.Calls(),
	}
	logger.Info("Search returned %d of %d declared results", len(summaries), meta.TotalCount)

	return summaries, meta, nil
}

// FetchDetail fetches the full record for one bill and maps it into
// the canonical entity.
func (c *Client) FetchDetail(ctx context.Context, sourceID, relevance int) (domain.Bill, error) {
	params := url.Values{}
	params.Set("id", strconv.Itoa(sourceID))

	env, err := c.call(ctx, opDetail, params)
	if err != nil {
		return domain.Bill{}, err
	}
	if len(env.Bill) == 0 {
		return domain.Bill{}, &APIError{Op: opDetail, Message: fmt.Sprintf("no record for bill %d", sourceID)}
	}

	var raw rawBill
	if err := json.Unmarshal(env.Bill, &raw); err != nil {
		return domain.Bill{}, fmt.Errorf("%w: decoding bill %d: %w", domain.ErrMappingFailed, sourceID, err)
	}

	return MapBill(raw, relevance)
}

// call issues one logical API call, retrying rate-limit rejections
// after a fixed cooldown and transport failures after a short delay,
// both within bounded budgets. The throttle is consulted before every
// departure, including retries.
func (c *Client) call(ctx context.Context, op string, params url.Values) (*envelope, error) {
	attempts := 0
	transient := 0

	for {
		if err := c.throttle.Wait(ctx); err != nil {
			return nil, err
		}

		attempts++
		env, status, err := c.do(ctx, op, params)
		if err != nil {
			transient++
			if transient > transientRetries {
				return nil, &TransportError{Op: op, Err: err}
			}
			logger.Warn("%s: transport error (%v), retry %d/%d", op, err, transient, transientRetries)
			if err := sleepCtx(ctx, c.retryDelay); err != nil {
				return nil, err
			}
			continue
		}

		switch {
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			return nil, &AuthError{StatusCode: status, Message: httpMessage(env)}

		case status == http.StatusTooManyRequests:
			if attempts >= c.maxAttempts {
				return nil, &QuotaExceededError{Attempts: attempts, Op: op}
			}
			logger.Warn("%s: rate limited, cooling down %s (attempt %d/%d)",
				op, c.cooldown, attempts, c.maxAttempts)
			c.throttle.RecordRateLimit(c.cooldown)
			continue

		case status >= 500:
			transient++
			if transient > transientRetries {
				return nil, &APIError{StatusCode: status, Op: op, Message: "server error"}
			}
			logger.Warn("%s: HTTP %d, retry %d/%d", op, status, transient, transientRetries)
			if err := sleepCtx(ctx, c.retryDelay); err != nil {
				return nil, err
			}
			continue

		case status != http.StatusOK:
			return nil, &APIError{StatusCode: status, Op: op, Message: httpMessage(env)}
		}

		if env.Status != statusOK {
			msg := "unknown error"
			if env.Alert != nil && env.Alert.Message != "" {
				msg = env.Alert.Message
			}
			if isAuthMessage(msg) {
				return nil, &AuthError{StatusCode: status, Message: msg}
			}
			return nil, &APIError{StatusCode: status, Op: op, Message: msg}
		}

		return env, nil
	}
}

// do departs exactly one HTTP request and decodes the envelope.
// Every departure increments the call counter.
func (c *Client) do(ctx context.Context, op string, params url.Values) (*envelope, int, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("op", op)
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}

	reqURL := c.baseURL + "/?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, err
	}

	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	logger.Debug("API request: op=%s", op)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, 0, err
	}

	var env envelope
	if len(body) > 0 {
		// Non-200 bodies are not always JSON; the status code path
		// decides what to do with an undecodable payload.
		_ = json.Unmarshal(body, &env)
	}

	return &env, resp.StatusCode, nil
}

// httpMessage extracts a human-readable message from an envelope.
func httpMessage(env *envelope) string {
	if env != nil && env.Alert != nil && env.Alert.Message != "" {
		return env.Alert.Message
	}
	return "request rejected"
}

// isAuthMessage reports whether a payload-level error text describes a
// credential problem. The API signals bad keys inside a 200 response.
func isAuthMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "api key") ||
		strings.Contains(lower, "authoriz") ||
		strings.Contains(lower, "authent")
}

// sleepCtx sleeps for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
