package discover

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"resty.dev/v3"
)

// API paths.
const (
	pathDiscover      = "/beckn/v1/discover"
	pathBrowserSearch = "/beckn/v1/discover/browser-search"
	pathHealth        = "/health"
)

// Client is the discover SDK entry point.
type Client struct {
	http *resty.Client
	obs  *observer
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("discover: base URL required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("discover: invalid base URL: %w", err)
	}

	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	h := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(cfg.timeout).
		SetRetryCount(cfg.retries).
		SetHeader("Accept", "application/json")
	for k, v := range cfg.headers {
		h.SetHeader(k, v)
	}

	return &Client{http: h, obs: obs}, nil
}

// Discover sends a POST discover request.
func (c *Client) Discover(ctx context.Context, req *Request) (resp *Response, err error) {
	start := time.Now()
	defer func() { c.obs.observe("discover", start, err) }()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("discover: encode request: %w", err)
	}

	r, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(pathDiscover)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	return decodeResponse(r)
}

// BrowserSearch sends a GET browser-search request.
func (c *Client) BrowserSearch(ctx context.Context, q BrowserQuery) (resp *Response, err error) {
	start := time.Now()
	defer func() { c.obs.observe("browser_search", start, err) }()

	r, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(q.values()).
		Get(pathBrowserSearch)
	if err != nil {
		return nil, fmt.Errorf("browser search: %w", err)
	}
	return decodeResponse(r)
}

func (q BrowserQuery) values() url.Values {
	v := url.Values{}
	for _, sc := range q.SchemaContext {
		v.Add("schema_context", sc)
	}
	if q.Query != "" {
		v.Set("q", q.Query)
	}
	if q.Filters != "" {
		v.Set("filters", q.Filters)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func decodeResponse(r *resty.Response) (*Response, error) {
	if r.IsError() {
		return nil, decodeError(r)
	}
	var out Response
	if err := json.Unmarshal([]byte(r.String()), &out); err != nil {
		return nil, fmt.Errorf("discover: decode response: %w", err)
	}
	return &out, nil
}

// decodeError reads the {"error": {...}} envelope; bodies without one still
// yield an APIError carrying the status.
func decodeError(r *resty.Response) error {
	var env struct {
		Error struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	apiErr := &APIError{Status: r.StatusCode()}
	if err := json.Unmarshal([]byte(r.String()), &env); err == nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.Details = env.Error.Details
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(apiErr.Status)
	}
	return apiErr
}
