// Package webmo is a Go client for the WebMO REST interface. A Client owns
// one authenticated session token, obtained at Connect and revoked at Close;
// every call in between carries that token.
package webmo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chemtools/webmo-go/webmo/render"
	"golang.org/x/term"
)

const sessionsPath = "/sessions"

// PasswordPrompt solicits a password for the given username. It is invoked
// by Connect when no password is supplied.
type PasswordPrompt func(username string) (string, error)

// Option configures a Client before the session is opened.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for diagnostics. The client never logs
// credentials or token values.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithPasswordPrompt replaces the default terminal prompt.
func WithPasswordPrompt(prompt PasswordPrompt) Option {
	return func(c *Client) { c.prompt = prompt }
}

// Client is an authenticated binding to one WebMO instance. It is not safe
// for concurrent use during Close; all other calls may run concurrently.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	prompt  PasswordPrompt

	auth   url.Values // session token parameters, attached to every call
	bridge *render.Bridge
	closed bool
}

// Connect opens an authenticated session against the WebMO endpoint at
// baseURL (ending in rest.cgi). If password is empty it is solicited
// interactively. A failure to obtain a token is reported as *AuthError.
func Connect(ctx context.Context, baseURL, username, password string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  slog.Default(),
		prompt:  terminalPrompt,
	}
	for _, opt := range opts {
		opt(c)
	}

	if password == "" {
		var err error
		password, err = c.prompt(username)
		if err != nil {
			return nil, &AuthError{URL: c.baseURL, Err: fmt.Errorf("password prompt: %w", err)}
		}
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sessionsPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &AuthError{URL: c.baseURL, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &AuthError{URL: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &AuthError{URL: c.baseURL, Err: fmt.Errorf("session request returned %d", resp.StatusCode)}
	}

	var token map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, &AuthError{URL: c.baseURL, Err: fmt.Errorf("decoding session token: %w", err)}
	}

	c.auth = url.Values{}
	for k, v := range token {
		c.auth.Set(k, stringify(v))
	}

	c.logger.Debug("WebMO session opened",
		slog.String("base_url", c.baseURL),
		slog.String("username", username),
	)
	return c, nil
}

// Close revokes the session token. It is best-effort and never returns an
// error: teardown may race with re-construction in notebook-style host
// environments, where a failed revocation must not propagate.
func (c *Client) Close() {
	if c.closed {
		return
	}
	c.closed = true

	if c.bridge != nil {
		c.bridge.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+sessionsPath+"?"+c.auth.Encode(), nil)
	if err == nil {
		resp, err := c.http.Do(req)
		if err != nil {
			c.logger.Debug("session revocation failed", slog.Any("error", err))
		} else {
			resp.Body.Close()
		}
	}
}

// BaseURL reports the endpoint this client is bound to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// params clones the session token parameters and merges extra on top.
func (c *Client) params(extra url.Values) url.Values {
	merged := url.Values{}
	for k, vs := range c.auth {
		for _, v := range vs {
			merged.Add(k, v)
		}
	}
	for k, vs := range extra {
		for _, v := range vs {
			merged.Set(k, v)
		}
	}
	return merged
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	if c.closed {
		return nil, ErrClosed
	}

	u := c.baseURL + path
	if q := c.params(query); len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("building %s %s request: %w", method, path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s %s response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(data), 512),
		}
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v any) error {
	data, err := c.do(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}
	return unmarshalResponse(data, path, v)
}

func unmarshalResponse(data []byte, path string, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func (c *Client) getText(ctx context.Context, path string, query url.Values) (string, error) {
	data, err := c.do(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, v any) error {
	merged := c.params(form)
	data, err := c.do(ctx, http.MethodPost, path, nil, strings.NewReader(merged.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	return unmarshalResponse(data, path, v)
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// terminalPrompt reads a password from the controlling terminal without
// echoing it.
func terminalPrompt(username string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("stdin is not a terminal; supply the password explicitly")
	}
	fmt.Fprintf(os.Stderr, "Enter WebMO password for user %s: ", username)
	defer fmt.Fprintln(os.Stderr)
	pw, err := term.ReadPassword(fd)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
