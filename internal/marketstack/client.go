// Package marketstack provides a client for the MarketStack v2 REST API.
package marketstack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/roivaz/marketstack-mcp/internal/logging"
)

const (
	DefaultBaseURL = "https://api.marketstack.com/v2"
	DefaultTimeout = 30 * time.Second

	// HistoryPageLimit is the single page size requested from /eod.
	HistoryPageLimit = 100

	maxBodyBytes    = 8 << 20
	maxErrorMessage = 200
)

// Client performs authenticated GET requests against MarketStack.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        logging.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client. Tests use it to point
// the client at an httptest server.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(log logging.Logger) ClientOption {
	return func(c *Client) {
		c.log = log.WithName("marketstack")
	}
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a provider-side failure: a non-2xx status or an error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("marketstack API error: %s (status: %d, code: %s, endpoint: %s)", e.Message, e.StatusCode, e.Code, e.Endpoint)
	}
	return fmt.Sprintf("marketstack API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// LatestEOD returns the most recent end-of-day bar(s) for symbol.
func (c *Client) LatestEOD(ctx context.Context, symbol string) ([]EODBar, error) {
	params := url.Values{}
	params.Set("symbols", symbol)

	body, err := c.get(ctx, "/eod/latest", params)
	if err != nil {
		return nil, err
	}
	return decodeData[EODBar](body, "/eod/latest")
}

// EOD returns the end-of-day bars for q.Symbol between q.From and q.To inclusive.
func (c *Client) EOD(ctx context.Context, q EODQuery) ([]EODBar, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = HistoryPageLimit
	}
	params := url.Values{}
	params.Set("symbols", q.Symbol)
	if !q.From.IsZero() {
		params.Set("date_from", q.From.Format(dateLayout))
	}
	if !q.To.IsZero() {
		params.Set("date_to", q.To.Format(dateLayout))
	}
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "/eod", params)
	if err != nil {
		return nil, err
	}
	return decodeData[EODBar](body, "/eod")
}

// SearchTickers looks up tickers whose symbol or name matches search.
func (c *Client) SearchTickers(ctx context.Context, search string, limit int) ([]Ticker, error) {
	params := url.Values{}
	params.Set("search", search)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, "/tickers", params)
	if err != nil {
		return nil, err
	}
	return decodeData[Ticker](body, "/tickers")
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("access_key", c.apiKey)

	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	c.log.Debug("marketstack request", "endpoint", path, "symbols", params.Get("symbols"), "search", params.Get("search"))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, redact(err, c.apiKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	c.log.Debug("marketstack response", "endpoint", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, path, body)
	}
	return body, nil
}

// decodeData extracts the `data` array of a MarketStack envelope. A missing
// or null `data` field is an empty result, not an error.
func decodeData[T any](body []byte, endpoint string) ([]T, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("decode %s response: malformed JSON body", endpoint)
	}
	if gjson.GetBytes(body, "error").Exists() {
		return nil, newAPIError(http.StatusOK, endpoint, body)
	}

	data := gjson.GetBytes(body, "data")
	if !data.Exists() || data.Type == gjson.Null {
		return nil, nil
	}
	if !data.IsArray() {
		return nil, fmt.Errorf("decode %s response: data is not a list", endpoint)
	}

	var out []T
	if err := json.Unmarshal([]byte(data.Raw), &out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return out, nil
}

func newAPIError(status int, endpoint string, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Endpoint: endpoint}
	if gjson.ValidBytes(body) {
		apiErr.Code = gjson.GetBytes(body, "error.code").String()
		apiErr.Message = gjson.GetBytes(body, "error.message").String()
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
		if len(apiErr.Message) > maxErrorMessage {
			apiErr.Message = apiErr.Message[:maxErrorMessage] + "..."
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// redact strips the access key from transport errors, which embed the URL.
func redact(err error, apiKey string) error {
	if apiKey == "" {
		return err
	}
	msg := strings.ReplaceAll(err.Error(), url.QueryEscape(apiKey), "REDACTED")
	msg = strings.ReplaceAll(msg, apiKey, "REDACTED")
	if msg == err.Error() {
		return err
	}
	return errors.New(msg)
}
