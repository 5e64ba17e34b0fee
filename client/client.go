// Package client talks to the external identity service. All calls are
// best-effort: the auth service degrades to a local identity when they
// fail.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
)

const defaultTimeout = 3 * time.Second

// Session is the identity service's view of a signed-in session.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Client struct {
	client   *http.Client
	cache    *cache.Cache
	endpoint string
	apiKey   string
}

func New(endpoint, apiKey string) *Client {
	return &Client{
		client:   &http.Client{Timeout: defaultTimeout},
		cache:    cache.New(10*time.Minute, 15*time.Minute),
		endpoint: endpoint,
		apiKey:   apiKey,
	}
}

// ResumeSession fetches a still-valid session by id.
func (c *Client) ResumeSession(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("no session to resume")
	}

	if cached, found := c.cache.Get(sessionID); found {
		session := cached.(Session)
		if session.ExpiresAt.After(time.Now()) {
			return &session, nil
		}
		c.cache.Delete(sessionID)
	}

	var session Session
	err := c.httpRequest(ctx, http.MethodGet, "/v1/sessions/"+sessionID, nil, &session)
	if err != nil {
		return nil, fmt.Errorf("failed to resume session: %w", err)
	}

	c.cache.Set(session.ID, session, cache.DefaultExpiration)
	return &session, nil
}

// ExchangeToken trades a provisioning token for a session.
func (c *Client) ExchangeToken(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, fmt.Errorf("no exchange token provided")
	}

	body := map[string]string{"token": token}
	var session Session
	err := c.httpRequest(ctx, http.MethodPost, "/v1/sessions/exchange", body, &session)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	c.cache.Set(session.ID, session, cache.DefaultExpiration)
	return &session, nil
}

// CreateAnonymousSession asks the identity service for a fresh anonymous
// session.
func (c *Client) CreateAnonymousSession(ctx context.Context) (*Session, error) {
	var session Session
	err := c.httpRequest(ctx, http.MethodPost, "/v1/sessions/anonymous", nil, &session)
	if err != nil {
		return nil, fmt.Errorf("failed to create anonymous session: %w", err)
	}

	c.cache.Set(session.ID, session, cache.DefaultExpiration)
	return &session, nil
}

func (c *Client) httpRequest(ctx context.Context, method, path string, body any, response any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	err = json.NewDecoder(resp.Body).Decode(response)
	if err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}

	return nil
}
