// Package apiclient is the HTTP adapter for the remote admin API. It encodes
// JSON bodies, attaches the bearer token and turns non-2xx answers into
// classified *Error values carrying the server's message.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 8 << 20
	tracerName     = "github.com/jrsteele09/materials-admin/apiclient"
)

// Requester is what the session manager and resource stores need from the
// adapter. An empty token sends the request without credentials.
type Requester interface {
	Send(ctx context.Context, method, path, token string, in, out any) error
}

var _ Requester = (*Client)(nil)

var errEmptyBody = errors.New("empty response body")

type Client struct {
	baseURL *url.URL
	base    http.RoundTripper
	timeout time.Duration
	metrics *Metrics
	tracer  trace.Tracer
	logger  zerolog.Logger
}

type Option func(*Client)

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithTransport replaces the underlying round tripper (tests, proxies).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.base = rt
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// New builds a client for the API rooted at baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "[apiclient.New] invalid base URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("[apiclient.New] base URL must be http or https, got %q", baseURL)
	}

	c := &Client{
		baseURL: u,
		base:    http.DefaultTransport,
		timeout: defaultTimeout,
		tracer:  otel.Tracer(tracerName),
		logger:  log.Logger,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Send issues method against path. in, when non-nil, is sent as a JSON body;
// out, when non-nil, receives the decoded 2xx response body.
func (c *Client) Send(ctx context.Context, method, path, token string, in, out any) (returnErr error) {
	endpoint := endpointLabel(path)
	ctx, span := c.tracer.Start(ctx, "apiclient "+method+" "+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		))
	start := time.Now()
	outcome := "error"
	defer func() {
		c.metrics.observe(endpoint, method, outcome, time.Since(start).Seconds())
		if returnErr != nil {
			span.RecordError(returnErr)
			span.SetStatus(codes.Error, returnErr.Error())
		}
		span.End()
	}()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return &Error{Kind: KindTransport, Method: method, Path: path, Err: errors.Wrap(err, "encode request body")}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), body)
	if err != nil {
		return &Error{Kind: KindTransport, Method: method, Path: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient(token).Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	outcome = strconv.Itoa(resp.StatusCode)
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).Msg("api call")

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &Error{Kind: KindTransport, Method: method, Path: path, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			Kind:       kindForStatus(resp.StatusCode),
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    serverMessage(respBody),
		}
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return &Error{Kind: KindDecode, Method: method, Path: path, StatusCode: resp.StatusCode, Err: errEmptyBody}
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &Error{Kind: KindDecode, Method: method, Path: path, StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}

// httpClient returns a client that attaches token as a bearer credential.
func (c *Client) httpClient(token string) *http.Client {
	transport := c.base
	if token != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   c.base,
		}
	}
	return &http.Client{Transport: transport, Timeout: c.timeout}
}

func (c *Client) resolve(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL.String() + path
}
