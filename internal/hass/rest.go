package hass

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
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const defaultHTTPTimeout = 15 * time.Second

// APIError is a failed REST response or WebSocket result.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("home assistant error (status %d): %s", e.StatusCode, e.Message)
	case e.Code != "":
		return fmt.Sprintf("home assistant error (%s): %s", e.Code, e.Message)
	default:
		return "home assistant error: " + e.Message
	}
}

// RESTClient is a one-shot client for the REST API. It keeps the last fetched
// catalog so it can serve as a card host for single commands.
type RESTClient struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger

	mu      sync.RWMutex
	catalog Catalog
}

// NewRESTClient builds a client authenticating with a long-lived access token.
func NewRESTClient(ctx context.Context, baseURL, token string, logger zerolog.Logger) (*RESTClient, error) {
	base, err := normalizeBase(baseURL)
	if err != nil {
		return nil, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("hass: access token is empty")
	}
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
	httpClient.Timeout = defaultHTTPTimeout
	return &RESTClient{
		baseURL: base,
		http:    httpClient,
		logger:  logger.With().Str("component", "hass-rest").Logger(),
	}, nil
}

func normalizeBase(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("hass: base URL is empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("hass: parse base URL: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("hass: base URL %q has no host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	return u.String(), nil
}

// States fetches every entity.
func (c *RESTClient) States(ctx context.Context) ([]Entity, error) {
	var out []Entity
	if err := c.do(ctx, http.MethodGet, "/api/states", nil, &out); err != nil {
		return nil, fmt.Errorf("get states: %w", err)
	}
	return out, nil
}

// Refresh fetches the states and stores them as the current catalog.
func (c *RESTClient) Refresh(ctx context.Context) (Catalog, error) {
	states, err := c.States(ctx)
	if err != nil {
		return nil, err
	}
	catalog := FromList(states)
	c.mu.Lock()
	c.catalog = catalog
	c.mu.Unlock()
	c.logger.Debug().Int("entities", len(catalog)).Msg("catalog refreshed")
	return catalog, nil
}

// ReadCatalog returns the catalog of the last Refresh.
func (c *RESTClient) ReadCatalog() Catalog {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.catalog
}

// CallService posts to /api/services/{domain}/{service}.
func (c *RESTClient) CallService(ctx context.Context, domain, service string, data map[string]any) error {
	path := "/api/services/" + url.PathEscape(domain) + "/" + url.PathEscape(service)
	if err := c.do(ctx, http.MethodPost, path, data, nil); err != nil {
		return fmt.Errorf("call %s.%s: %w", domain, service, err)
	}
	return nil
}

// CallAction invokes a service on a single entity.
func (c *RESTClient) CallAction(ctx context.Context, domain, action, entityID string, value *float64) error {
	return c.CallService(ctx, domain, action, serviceData(entityID, value))
}

func serviceData(entityID string, value *float64) map[string]any {
	data := map[string]any{"entity_id": entityID}
	if value != nil {
		data["value"] = *value
	}
	return data
}

func (c *RESTClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(payload))
		var parsed struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(payload, &parsed) == nil && parsed.Message != "" {
			msg = parsed.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
