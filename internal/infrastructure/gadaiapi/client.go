package gadaiapi

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

	"github.com/gadai/backend/internal/domain"
	"github.com/gadai/backend/internal/logging"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	maxAttempts      = 3
	maxErrorBodySize = 4 << 10
	maxPages         = 1000

	defaultTimeout    = 15 * time.Second
	defaultPageSize   = 100
	defaultRatePerSec = 5.0
)

// Config holds the connection settings of the back-office API
type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	PageSize   int
	RatePerSec float64
}

// Client reads pawn-term rules from the back-office REST API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	token       string
	pageSize    int
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	debug       bool
	logger      zerolog.Logger
}

// NewClient creates a new back-office API client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	ratePerSec := cfg.RatePerSec
	if ratePerSec <= 0 {
		ratePerSec = defaultRatePerSec
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		token:       cfg.Token,
		pageSize:    pageSize,
		rateLimiter: rate.NewLimiter(rate.Limit(ratePerSec), 5),
		backoff:     exponentialBackoff,
		logger:      logging.GetLogger("gadaiapi"),
	}
}

// SetDebug enables or disables per-request debug logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// ListRules fetches every pawn-term rule of a tenant (all tenants when
// tenantID is empty), following pagination until the last page
func (c *Client) ListRules(ctx context.Context, tenantID string) ([]domain.PawnTermRule, error) {
	rules := []domain.PawnTermRule{}

	for page := 1; page <= maxPages; page++ {
		resp, err := c.fetchPage(ctx, tenantID, page)
		if err != nil {
			return nil, err
		}

		rules = append(rules, MapToRules(resp.Data)...)

		if !resp.Meta.HasNextPage || len(resp.Data) == 0 {
			c.debugLog("fetched %d rules in %d page(s) for ptId=%q", len(rules), page, tenantID)
			return rules, nil
		}
	}

	return nil, fmt.Errorf("%w: more than %d pages of pawn terms", domain.ErrRuleSourceFailure, maxPages)
}

// fetchPage fetches one page of pawn terms, retrying transient failures
func (c *Client) fetchPage(ctx context.Context, tenantID string, page int) (*PageResponse, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("pageSize", strconv.Itoa(c.pageSize))
	if tenantID != "" {
		params.Set("ptId", tenantID)
	}
	reqURL := fmt.Sprintf("%s/v1/pawn-terms?%s", c.baseURL, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, c.backoff(attempt-1)); err != nil {
				return nil, err
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			c.debugLog("request error (attempt %d): %v", attempt, err)
			lastErr = fmt.Errorf("%w: %v", domain.ErrRuleSourceUnavailable, err)
			continue
		}

		body, err := readLimitedBody(resp.Body, responseLimit(resp.StatusCode))
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("%w: reading response: %v", domain.ErrRuleSourceFailure, err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			var pageResp PageResponse
			if err := json.Unmarshal(body, &pageResp); err != nil {
				return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrRuleSourceFailure, err)
			}
			return &pageResp, nil

		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, fmt.Errorf("%w: status %d: %s", domain.ErrRuleSourceUnavailable, resp.StatusCode, errorMessage(body))

		case resp.StatusCode == http.StatusTooManyRequests:
			c.debugLog("throttled (attempt %d)", attempt)
			lastErr = fmt.Errorf("%w: status %d: %s", domain.ErrRuleSourceUnavailable, resp.StatusCode, errorMessage(body))

		case resp.StatusCode >= http.StatusInternalServerError:
			c.debugLog("server error (attempt %d) - status: %d", attempt, resp.StatusCode)
			lastErr = fmt.Errorf("%w: status %d: %s", domain.ErrRuleSourceFailure, resp.StatusCode, errorMessage(body))

		default:
			return nil, fmt.Errorf("%w: status %d: %s", domain.ErrRuleSourceFailure, resp.StatusCode, errorMessage(body))
		}
	}

	c.logger.Warn().Err(lastErr).Int("page", page).Str("ptId", tenantID).Msg("all attempts to fetch pawn terms failed")
	return nil, lastErr
}

// doRequest executes an HTTP GET request with proper headers
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "gadai-mata/1.0")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return c.httpClient.Do(req)
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if !c.debug {
		return
	}
	c.logger.Debug().Msgf(format, args...)
}

// exponentialBackoff returns the wait before retry number attempt: 500ms, 1s, 2s
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// responseLimit caps the bytes read: success pages are read in full, error bodies are truncated
func responseLimit(status int) int64 {
	if status == http.StatusOK {
		return -1
	}
	return maxErrorBodySize
}

// readLimitedBody reads at most limit bytes from r; a negative limit reads everything
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	if limit < 0 {
		return io.ReadAll(r)
	}
	return io.ReadAll(io.LimitReader(r, limit))
}

// errorMessage extracts the message of an API error body, falling back to the raw text
func errorMessage(body []byte) string {
	var apiErr ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil {
		if msg := apiErr.Text(); msg != "" {
			return msg
		}
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return "empty response"
	}
	return text
}

