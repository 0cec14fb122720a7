// Package apiclient talks to the back-office REST API.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// IdempotencyHeader carries the client generated key on create requests.
const IdempotencyHeader = "Idempotency-Key"

// Config configures a Client.
type Config struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	Retries   int
	UserAgent string
	Logger    *slog.Logger
}

// Client wraps a resty client bound to the API base URL.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// New builds a Client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("apiclient: base URL is required")
	}
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("apiclient: invalid base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("apiclient: base URL scheme must be http or https, got %q", parsed.Scheme)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "odyssey-backoffice"
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent).
		SetLogger(restyLogger{logger: logger})
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}
	if cfg.Retries > 0 {
		client.SetRetryCount(cfg.Retries).
			SetRetryWaitTime(100 * time.Millisecond).
			SetRetryMaxWaitTime(2 * time.Second).
			AddRetryCondition(retryCondition)
	}

	return &Client{http: client, logger: logger}, nil
}

// retryCondition retries transport failures and gateway errors on reads only.
func retryCondition(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return !errors.Is(err, context.Canceled)
	}
	switch r.StatusCode() {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

type request struct {
	method string
	path   string
	params url.Values
	body   any
	header map[string]string
}

func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	start := time.Now()
	r := c.http.R().SetContext(ctx)
	if len(req.params) > 0 {
		r.SetQueryParamsFromValues(req.params)
	}
	if req.body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(req.body)
	}
	for k, v := range req.header {
		r.SetHeader(k, v)
	}

	resp, err := r.Execute(req.method, req.path)
	if err != nil {
		c.logger.Debug("api request failed",
			slog.String("method", req.method),
			slog.String("path", req.path),
			slog.Any("error", err))
		return nil, &NetworkError{Method: req.method, Path: req.path, Err: err}
	}

	c.logger.Debug("api request",
		slog.String("method", req.method),
		slog.String("path", req.path),
		slog.Int("status", resp.StatusCode()),
		slog.Duration("duration", time.Since(start)))

	if resp.IsError() || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, decodeError(resp.StatusCode(), resp.Body())
	}
	return resp.Body(), nil
}

func newIdempotencyKey() string {
	return uuid.NewString()
}

// problem accepts both RFC7807 bodies and the {message, errors:{field:[...]}} shape.
type problem struct {
	Title   string                     `json:"title"`
	Detail  string                     `json:"detail"`
	Message string                     `json:"message"`
	Errors  map[string]json.RawMessage `json:"errors"`
}

func decodeError(status int, body []byte) error {
	var p problem
	_ = json.Unmarshal(body, &p)

	message := firstNonEmpty(p.Detail, p.Message, p.Title, http.StatusText(status))
	if status == http.StatusBadRequest || status == http.StatusUnprocessableEntity {
		fields := make(map[string]string, len(p.Errors))
		for k, raw := range p.Errors {
			if msg := fieldMessage(raw); msg != "" {
				fields[k] = msg
			}
		}
		if len(fields) > 0 {
			return &ValidationError{Status: status, Message: message, Fields: fields}
		}
	}
	return &ServerError{Status: status, Title: p.Title, Message: message}
}

func fieldMessage(raw json.RawMessage) string {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 {
		return strings.Join(many, ", ")
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error("resty: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn("resty: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug("resty: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}
