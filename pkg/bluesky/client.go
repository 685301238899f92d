package bluesky

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bskygraph/pkg/config"
	"bskygraph/pkg/errors"
	"bskygraph/pkg/logger"
	"bskygraph/pkg/ratelimit"
	"bskygraph/pkg/retry"
)

// Client is a client for the Bluesky / AT Protocol XRPC API
type Client struct {
	httpClient    *http.Client
	headers       map[string]string
	publicBaseURL string
	authBaseURL   string
	accessToken   string
	sessionDID    string
	authenticated bool
	limiter       ratelimit.Limiter
	retryConfig   *config.RetryConfig
	logger        logger.Logger
}

// NewClient creates a new Bluesky API client with default settings
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent": "bskygraph/1.0",
			"Accept":     "application/json",
		},
		publicBaseURL: PublicAPIURL,
		authBaseURL:   AuthAPIURL,
		limiter: ratelimit.NewChain(
			ratelimit.NewFixedDelay(RequestDelay),
			ratelimit.NewSlidingWindow(3000, 5*time.Minute),
		),
		logger: log,
	}
}

// NewClientWithConfig creates a client configured from cfg
func NewClientWithConfig(cfg *config.Config, log logger.Logger) *Client {
	client := NewClient(cfg.HTTP.Timeout, log)

	client.publicBaseURL = cfg.Bluesky.PublicAPIURL
	client.authBaseURL = cfg.Bluesky.AuthAPIURL
	client.limiter = ratelimit.NewChain(
		ratelimit.NewFixedDelay(cfg.RateLimit.RequestDelay),
		ratelimit.NewSlidingWindow(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window),
	)
	if cfg.Bluesky.UserAgent != "" {
		client.headers["User-Agent"] = cfg.Bluesky.UserAgent
	}
	if cfg.Retry.Enabled {
		client.retryConfig = &cfg.Retry
	}

	return client
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetHeaders sets multiple headers at once
func (c *Client) SetHeaders(headers map[string]string) {
	for key, value := range headers {
		c.headers[key] = value
	}
}

// Authenticated reports whether a session token is held
func (c *Client) Authenticated() bool {
	return c.authenticated
}

// SessionDID returns the DID of the logged-in account, if any
func (c *Client) SessionDID() string {
	return c.sessionDID
}

// BaseURL returns the base URL for graph calls: the authenticated host
// when a session is held, the public host otherwise
func (c *Client) BaseURL() string {
	if c.authenticated {
		return c.authBaseURL
	}
	return c.publicBaseURL
}

// doRequest performs an HTTP request with the configured headers.
// The rate limiter gates every outgoing call.
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	if c.limiter != nil {
		c.limiter.Wait()
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
			Code:    0,
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// GetJSON performs a GET request and decodes the JSON response
func (c *Client) GetJSON(url string, target interface{}) error {
	return c.doJSON(http.MethodGet, url, nil, target)
}

// PostJSON performs a POST request with a JSON body and decodes the response
func (c *Client) PostJSON(url string, body interface{}, target interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to encode request body: %v", err),
			Code:    0,
		}
	}
	return c.doJSON(http.MethodPost, url, payload, target)
}

// doJSON performs one JSON round trip, optionally wrapped in retry
func (c *Client) doJSON(method, url string, payload []byte, target interface{}) error {
	op := func() error {
		return c.roundTrip(method, url, payload, target)
	}

	if c.retryConfig == nil {
		return op()
	}

	return retry.Do(op, &retry.Config{
		MaxAttempts: c.retryConfig.MaxAttempts,
		Backoff: &retry.ExponentialBackoff{
			BaseDelay:    c.retryConfig.BaseDelay,
			MaxDelay:     c.retryConfig.MaxDelay,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
		RetryIf: retry.DefaultRetryIf,
		Logger:  c.logger,
	})
}

func (c *Client) roundTrip(method, url string, payload []byte, target interface{}) error {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
			Code:    0,
		}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if err := c.checkResponseStatus(resp, body); err != nil {
		return err
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return nil
}

// checkResponseStatus maps a non-2xx response to a typed error. The error
// message from the XRPC body, when present, is surfaced verbatim.
func (c *Client) checkResponseStatus(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	message := http.StatusText(resp.StatusCode)
	var xrpcErr xrpcError
	if err := json.Unmarshal(body, &xrpcErr); err == nil && xrpcErr.Message != "" {
		message = xrpcErr.Message
	}

	errType := errors.ErrorTypeUnknown
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		errType = errors.ErrorTypeAuth
	case resp.StatusCode == http.StatusNotFound:
		errType = errors.ErrorTypeNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		errType = errors.ErrorTypeRateLimit
	case resp.StatusCode >= 500:
		errType = errors.ErrorTypeServerError
	case resp.StatusCode == http.StatusBadRequest:
		// XRPC reports unknown actors as InvalidRequest with a
		// "Profile not found" message rather than a 404
		if strings.Contains(strings.ToLower(message), "not found") {
			errType = errors.ErrorTypeNotFound
		}
	}

	url := ""
	if resp.Request != nil {
		url = resp.Request.URL.String()
	}
	c.logger.WarnWithFields("API request rejected", map[string]interface{}{
		"status":  resp.StatusCode,
		"url":     url,
		"type":    string(errType),
		"message": message,
	})

	return &errors.Error{
		Type:    errType,
		Message: message,
		Code:    resp.StatusCode,
	}
}

// Login exchanges a handle and app password for a session token.
// Subsequent graph calls use the authenticated host.
func (c *Client) Login(identifier, password string) (*Session, error) {
	var session Session
	url := CreateSessionURL(c.authBaseURL)

	if err := c.PostJSON(url, createSessionRequest{
		Identifier: identifier,
		Password:   password,
	}, &session); err != nil {
		c.logger.ErrorWithFields("login failed", map[string]interface{}{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return nil, err
	}

	c.accessToken = session.AccessJwt
	c.sessionDID = session.DID
	c.authenticated = true

	c.logger.InfoWithFields("authenticated", map[string]interface{}{
		"handle": session.Handle,
		"did":    session.DID,
	})

	return &session, nil
}

// FetchProfile fetches profile metadata for an actor.
// Profile lookups always go through the public host.
func (c *Client) FetchProfile(actor string) (*Profile, error) {
	url := ProfileURL(c.publicBaseURL, actor)

	c.logger.DebugWithFields("fetching profile", map[string]interface{}{
		"actor": actor,
		"url":   url,
	})

	var profile Profile
	if err := c.GetJSON(url, &profile); err != nil {
		c.logger.ErrorWithFields("failed to fetch profile", map[string]interface{}{
			"actor": actor,
			"error": err.Error(),
		})
		return nil, err
	}

	return &profile, nil
}

// FetchFollowers fetches one page of an actor's followers
func (c *Client) FetchFollowers(actor, cursor string) (*FollowersPage, error) {
	url := FollowersURL(c.BaseURL(), actor, cursor)

	c.logger.DebugWithFields("fetching followers page", map[string]interface{}{
		"actor":  actor,
		"cursor": cursor,
	})

	var page FollowersPage
	if err := c.GetJSON(url, &page); err != nil {
		c.logger.ErrorWithFields("failed to fetch followers page", map[string]interface{}{
			"actor":  actor,
			"cursor": cursor,
			"error":  err.Error(),
		})
		return nil, err
	}

	return &page, nil
}

// FetchFollows fetches one page of accounts an actor follows
func (c *Client) FetchFollows(actor, cursor string) (*FollowsPage, error) {
	url := FollowsURL(c.BaseURL(), actor, cursor)

	c.logger.DebugWithFields("fetching follows page", map[string]interface{}{
		"actor":  actor,
		"cursor": cursor,
	})

	var page FollowsPage
	if err := c.GetJSON(url, &page); err != nil {
		c.logger.ErrorWithFields("failed to fetch follows page", map[string]interface{}{
			"actor":  actor,
			"cursor": cursor,
			"error":  err.Error(),
		})
		return nil, err
	}

	return &page, nil
}
