package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Meta is the pagination block of a list response.
type Meta struct {
	Total int `json:"total"`
	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Multipart describes a multipart/form-data body with a single file part.
type Multipart struct {
	Fields    map[string]string
	FileField string
	FileName  string
	File      io.Reader
}

// Request is one call against the REST API.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Form   *Multipart

	// Fallback is the message used when the server gives no readable error.
	Fallback string
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	token   string
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{},
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Do sends req and decodes the envelope's data into out (when out is non-nil).
// Any failure is returned as *Error.
func (c *Client) Do(ctx context.Context, req Request, out any) (*Meta, error) {
	fallback := req.Fallback
	if fallback == "" {
		fallback = DefaultFallback
	}

	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Message: fallback, Err: err}
	}

	start := time.Now()

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug("api request failed", "method", req.Method, "path", req.Path, "error", err)
		return nil, &Error{Kind: KindTransport, Message: fallback, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, StatusCode: resp.StatusCode, Message: fallback, Err: err}
	}

	c.logger.Debug("api request",
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, body, fallback)
	}

	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &Error{Kind: KindMalformed, StatusCode: resp.StatusCode, Message: fallback, Err: err}
	}

	if out != nil && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, &Error{
				Kind:       KindMalformed,
				StatusCode: resp.StatusCode,
				Message:    fallback,
				Err:        fmt.Errorf("decoding data: %w", err),
			}
		}
	}

	return env.Meta, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	u := c.baseURL.JoinPath(req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)

	switch {
	case req.Form != nil:
		buf, ct, err := encodeMultipart(req.Form)
		if err != nil {
			return nil, err
		}

		body, contentType = buf, ct
	case req.Body != nil:
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(req.Body); err != nil {
			return nil, fmt.Errorf("encoding body: %w", err)
		}

		body, contentType = buf, "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	return httpReq, nil
}

func encodeMultipart(form *Multipart) (*bytes.Buffer, string, error) {
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)

	for name, value := range form.Fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", name, err)
		}
	}

	if form.File != nil {
		field := form.FileField
		if field == "" {
			field = "file"
		}

		part, err := w.CreateFormFile(field, form.FileName)
		if err != nil {
			return nil, "", fmt.Errorf("creating file part: %w", err)
		}

		if _, err := io.Copy(part, form.File); err != nil {
			return nil, "", fmt.Errorf("writing file part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}

	return buf, w.FormDataContentType(), nil
}

func statusError(code int, body []byte, fallback string) *Error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &Error{
			Kind:       KindMalformed,
			StatusCode: code,
			Message:    fallback,
			Err:        fmt.Errorf("unexpected status %d: %w", code, err),
		}
	}

	if env.Error == nil || strings.TrimSpace(env.Error.Message) == "" {
		return &Error{
			Kind:       KindMalformed,
			StatusCode: code,
			Message:    fallback,
			Err:        fmt.Errorf("unexpected status %d without error message", code),
		}
	}

	return &Error{
		Kind:       KindStatus,
		StatusCode: code,
		Message:    env.Error.Message,
		Err:        fmt.Errorf("unexpected status %d", code),
	}
}
