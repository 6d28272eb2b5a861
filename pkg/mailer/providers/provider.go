// Package providers delivers rendered messages through transactional email
// HTTP APIs.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	bearerPrefix        = "Bearer "
	mimeJSON            = "application/json"
	defaultHTTPTimeout  = 10 * time.Second
	maxErrorBodyBytes   = 4 << 10
)

// Provider sends one message and returns the provider's message id.
type Provider interface {
	Name() string
	Send(ctx context.Context, msg *Message) (string, error)
	// Verify checks that the configured credentials are accepted.
	Verify(ctx context.Context) error
}

type Message struct {
	To      []string
	From    string
	Subject string
	HTML    string
	Text    string
	// Tag labels the message for provider-side analytics.
	Tag string
}

// Config is shared by every provider. APIURL and HTTPClient are optional.
type Config struct {
	APIKey     string
	APIURL     string
	HTTPClient *http.Client
}

type client struct {
	name    string
	apiKey  string
	baseURL string
	http    *http.Client
}

func newClient(name, defaultURL string, cfg Config) client {
	c := client{name: name, apiKey: cfg.APIKey, baseURL: cfg.APIURL, http: cfg.HTTPClient}
	if c.baseURL == "" {
		c.baseURL = defaultURL
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return c
}

// do sends body as JSON (when non-nil) and returns the response with its
// body fully read. Non-2xx statuses become *APIError.
func (c client) do(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	if c.apiKey == "" {
		return nil, nil, ErrAPIKeyRequired
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf(errMarshalFmt, c.name, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, fmt.Errorf(errRequestFmt, c.name, err)
	}
	req.Header.Set(headerAuthorization, bearerPrefix+c.apiKey)
	if body != nil {
		req.Header.Set(headerContentType, mimeJSON)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf(errRequestFmt, c.name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf(errRequestFmt, c.name, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if len(data) > maxErrorBodyBytes {
			data = data[:maxErrorBodyBytes]
		}
		return resp, nil, &APIError{Provider: c.name, Status: resp.StatusCode, Body: string(data)}
	}
	return resp, data, nil
}
