package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

const DefaultTimeout = 10 * time.Second

type Options struct {
	BaseURL string
	Timeout time.Duration
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

type Request struct {
	Method string
	Path   string
	Body   any
	Query  url.Values
}

// Response is a successful backend reply with its payload read in full.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("%w: empty body", domain.ErrMalformedResponse)
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return nil
}

// Client is the single egress point for backend calls.
type Client struct {
	baseURL string
	doer    Doer
	log     *logrus.Logger
}

func NewClient(opts Options, logger *logrus.Logger, middlewares ...Middleware) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", opts.BaseURL, err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: opts.Transport,
	}

	logger.Debugf("Client: Initialized for base URL %s (timeout %s)", base, timeout)
	return &Client{
		baseURL: base,
		doer:    Chain(httpClient, middlewares...),
		log:     logger,
	}, nil
}

func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	target := c.baseURL + r.Path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		payload, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body for %s %s: %w", r.Method, r.Path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request %s %s: %w", r.Method, r.Path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		if apiErr, ok := AsAPIError(err); ok {
			return nil, apiErr
		}
		return nil, newTransportError(req, err)
	}
	if !isSuccess(resp.StatusCode) {
		return nil, newResponseError(req, resp)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newTransportError(req, fmt.Errorf("failed to read response body: %w", err))
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       payload,
	}, nil
}

func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

// NewStandardClient builds a Client with the usual chain: request id,
// logging, bearer credential, failure disposition.
func NewStandardClient(opts Options, tokens TokenSource, failures FailureHandler, logger *logrus.Logger) (*Client, error) {
	return NewClient(opts, logger,
		RequestID(),
		RequestLogger(logger),
		BearerToken(tokens),
		FailureDisposition(failures),
	)
}
