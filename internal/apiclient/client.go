package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultRateLimit = 10
	userAgent        = "fittrack/1.0"
	maxResponseSize  = 5 * 1024 * 1024 // 5MB
)

// CredentialSource yields the bearer token of the current session.
type CredentialSource interface {
	AccessToken() (string, bool)
}

type Client struct {
	baseURL     string
	httpClient  *http.Client
	logger      *logrus.Logger
	userAgent   string
	limiter     *rate.Limiter
	credentials CredentialSource
}

type ClientConfig struct {
	BaseURL     string
	Timeout     time.Duration
	RateLimit   float64
	UserAgent   string
	Logger      *logrus.Logger
	Credentials CredentialSource
	HTTPClient  *http.Client
}

func NewClientWithConfig(config *ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.RateLimit <= 0 {
		config.RateLimit = defaultRateLimit
	}
	if config.UserAgent == "" {
		config.UserAgent = userAgent
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		}
	}

	burst := int(config.RateLimit)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		httpClient:  httpClient,
		logger:      config.Logger,
		userAgent:   config.UserAgent,
		limiter:     rate.NewLimiter(rate.Limit(config.RateLimit), burst),
		credentials: config.Credentials,
	}
}

type requestOptions struct {
	public bool
	token  string
}

type RequestOption func(*requestOptions)

// Public sends the request without an Authorization header.
func Public() RequestOption {
	return func(o *requestOptions) { o.public = true }
}

// WithToken authenticates with an explicit token instead of the session's.
func WithToken(token string) RequestOption {
	return func(o *requestOptions) { o.token = token }
}

// Do issues one request and decodes a JSON answer into out (when non-nil).
// Failures are reported once; the client never retries.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}, opts ...RequestOption) error {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}

	token := o.token
	if !o.public && token == "" {
		if c.credentials != nil {
			token, _ = c.credentials.AccessToken()
		}
		if token == "" {
			return fmt.Errorf("%s %s: %w", method, path, ErrAuthRequired)
		}
	}

	var payload io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		payload = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return &NetworkError{Method: method, Path: path, Err: err}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"method":     method,
			"path":       path,
			"request_id": requestID,
		}).WithError(err).Warn("API request failed")
		return &NetworkError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := readRespBody(resp)
	if err != nil {
		return &NetworkError{Method: method, Path: path, Err: err}
	}

	c.logger.WithFields(logrus.Fields{
		"method":        method,
		"path":          path,
		"status":        resp.StatusCode,
		"request_id":    requestID,
		"duration":      time.Since(start),
		"response_size": len(respBody),
	}).Debug("API request completed")

	if resp.StatusCode >= http.StatusBadRequest {
		return &HTTPError{Method: method, Path: path, Status: resp.StatusCode, Payload: respBody}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response of %s %s: %w", method, path, err)
	}
	return nil
}

func readRespBody(resp *http.Response) ([]byte, error) {
	if resp.ContentLength > maxResponseSize {
		return nil, fmt.Errorf("response too large: %d bytes", resp.ContentLength)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > maxResponseSize {
		return nil, fmt.Errorf("response too large: exceeded %d bytes", maxResponseSize)
	}
	return body, nil
}
