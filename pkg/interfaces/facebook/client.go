// Package facebook is a client for the parts of the Graph API a Page
// mirror needs: posts, comments, Messenger conversations and replies.
package facebook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type ClientOption func(*FacebookClient)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *FacebookClient) {
		c.http = hc
	}
}

// FacebookClient performs Graph API calls for a single page. Requests are
// spaced by the configured delay; the client never retries on its own.
type FacebookClient struct {
	config  *FacebookConfig
	http    *http.Client
	limiter *rate.Limiter
	logger  *logrus.Logger
}

func NewFacebookClient(config *FacebookConfig, opts ...ClientOption) (*FacebookClient, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	limit := rate.Inf
	if config.RequestDelay > 0 {
		limit = rate.Every(config.RequestDelay)
	}

	client := &FacebookClient{
		config:  config,
		http:    &http.Client{Timeout: config.Timeout},
		limiter: rate.NewLimiter(limit, 1),
		logger:  config.Logger,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

func (c *FacebookClient) PageID() string {
	return c.config.PageID
}

// get fetches a single object from a versioned Graph path.
func (c *FacebookClient) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.makeRequest(ctx, http.MethodGet, c.withToken(c.config.Endpoint(path), query), nil, "")
}

func (c *FacebookClient) postForm(ctx context.Context, path string, form url.Values) ([]byte, error) {
	return c.makeRequest(ctx, http.MethodPost, c.withToken(c.config.Endpoint(path), nil),
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
}

func (c *FacebookClient) postJSON(ctx context.Context, path string, body interface{}) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.makeRequest(ctx, http.MethodPost, c.withToken(c.config.Endpoint(path), nil),
		bytes.NewReader(payload), "application/json")
}

func (c *FacebookClient) delete(ctx context.Context, path string) ([]byte, error) {
	return c.makeRequest(ctx, http.MethodDelete, c.withToken(c.config.Endpoint(path), nil), nil, "")
}

func (c *FacebookClient) withToken(endpoint string, query url.Values) string {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("access_token", c.config.AccessToken)
	return endpoint + "?" + q.Encode()
}

func (c *FacebookClient) makeRequest(ctx context.Context, method, fullURL string, body io.Reader, contentType string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	log := c.logger.WithFields(logrus.Fields{
		"method": method,
		"path":   req.URL.Path,
	})
	log.Debug("Graph API request")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &APIError{Kind: KindTransientNetwork, Message: "request failed", Err: redact(err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: KindTransientNetwork, Status: resp.StatusCode, Message: "failed to read response body", Err: err}
	}

	if err := c.handleResponse(resp.StatusCode, data); err != nil {
		log.WithError(err).Warn("Graph API error")
		return nil, err
	}
	return data, nil
}

// handleResponse turns a non-2xx response (or a 2xx carrying an error
// object) into an *APIError.
func (c *FacebookClient) handleResponse(status int, data []byte) error {
	var errBody graphErrorBody
	parsed := json.Unmarshal(data, &errBody) == nil && errBody.Error != nil

	if status >= 200 && status < 300 && !parsed {
		return nil
	}

	if !parsed {
		return &APIError{
			Kind:    classify(status, 0),
			Status:  status,
			Message: truncate(string(data), 200),
		}
	}

	e := errBody.Error
	return &APIError{
		Kind:      classify(status, e.Code),
		Status:    status,
		Code:      e.Code,
		Subcode:   e.Subcode,
		Type:      e.Type,
		Message:   e.Message,
		FBTraceID: e.FBTraceID,
	}
}

func malformed(what string, err error) error {
	return &APIError{Kind: KindMalformedResponse, Message: what, Err: err}
}

// redact strips query strings (and with them the access token) from
// transport errors.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if u, perr := url.Parse(urlErr.URL); perr == nil {
			u.RawQuery = ""
			return &url.Error{Op: urlErr.Op, URL: u.String(), Err: urlErr.Err}
		}
	}
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
