package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/microsmart/portal/shared/api"
	"github.com/microsmart/portal/shared/logger"
	"github.com/microsmart/portal/shared/middleware/metrics"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/publicsuffix"
)

const (
	DefaultTimeout = 10 * time.Second
	maxBodyBytes   = 8 << 20
)

// Notifier receives the user-facing text of every classified failure except
// Unauthorized.
type Notifier interface {
	Error(message string)
}

// Request describes one backend call. Body is JSON-encoded unless it is
// already an io.Reader (multipart uploads), in which case Header must carry
// the content type.
type Request struct {
	Method string
	Path   string
	Body   any
	Header http.Header
}

// APIClient talks to the backend on behalf of a single visitor. Its cookie jar
// carries the backend session cookie between calls.
type APIClient struct {
	baseURL        string
	httpClient     *http.Client
	notifier       Notifier
	onUnauthorized func()
	log            *slog.Logger
}

type Option func(*APIClient)

func WithNotifier(n Notifier) Option {
	return func(c *APIClient) { c.notifier = n }
}

// WithUnauthorizedHook registers fn to run on every 401 response.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *APIClient) { c.onUnauthorized = fn }
}

func WithTimeout(d time.Duration) Option {
	return func(c *APIClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithTransport replaces the base transport. It is still wrapped by otelhttp.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *APIClient) { c.httpClient.Transport = otelhttp.NewTransport(rt) }
}

// New creates a client for the backend rooted at baseURL (e.g. http://localhost:5000/api).
func New(baseURL string, opts ...Option) *APIClient {
	// cookiejar.New never fails
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	c := &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Jar:       jar,
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: logger.Component("apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send performs the call and returns the response payload unchanged. Every
// failure is returned as *Error after being reported: 401 runs the
// unauthorized hook, everything else goes to the notifier.
func (c *APIClient) Send(ctx context.Context, r Request) (json.RawMessage, error) {
	payload, err := c.send(ctx, r)
	outcome := "ok"
	if err != nil {
		outcome = err.Kind.String()
		c.report(err)
		metrics.ObserveUpstream(r.Method, outcome)
		return nil, err
	}
	metrics.ObserveUpstream(r.Method, outcome)
	return payload, nil
}

// do is Send plus decoding of the payload into out (if out is non-nil).
func (c *APIClient) do(ctx context.Context, r Request, out any) error {
	payload, err := c.Send(ctx, r)
	if err != nil {
		return err
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		c.log.Error("decode response", "method", r.Method, "path", r.Path, "error", err)
		e := &Error{Kind: ServerError, StatusCode: http.StatusOK, Err: fmt.Errorf("invalid response body: %w", err)}
		c.report(e)
		return e
	}
	return nil
}

func (c *APIClient) send(ctx context.Context, r Request) (json.RawMessage, *Error) {
	body, err := encodeBody(r.Body)
	if err != nil {
		return nil, &Error{Kind: RequestSetupFailure, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, c.baseURL+r.Path, body)
	if err != nil {
		return nil, &Error{Kind: RequestSetupFailure, Err: err}
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: NetworkUnavailable, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.log.Debug("backend call", "method", r.Method, "path", r.Path, "status", resp.StatusCode, "duration", time.Since(start))
	if err != nil {
		return nil, &Error{Kind: NetworkUnavailable, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &Error{
			Kind:       kindForStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Message:    extractMessage(payload),
		}
	}
	return payload, nil
}

func (c *APIClient) report(e *Error) {
	if e.Kind == Unauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return
	}
	// the visitor navigated away, nobody is left to read the notification
	if errors.Is(e.Err, context.Canceled) {
		return
	}
	if e.Kind == NetworkUnavailable || e.Kind == RequestSetupFailure {
		c.log.Warn("backend call failed", "kind", e.Kind, "error", e.Err)
	}
	if c.notifier != nil {
		c.notifier.Error(userMessage(e))
	}
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case io.Reader:
		return b, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		return bytes.NewReader(data), nil
	}
}

// extractMessage prefers {error} over {message}; anything else yields "".
func extractMessage(payload []byte) string {
	var e api.ErrorResponse
	if err := json.Unmarshal(payload, &e); err != nil {
		return ""
	}
	return e.Text()
}
