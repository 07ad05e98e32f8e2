package hass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second
	commandTimeout   = 10 * time.Second

	// DefaultReconnectAttempts and DefaultReconnectDelay bound the reconnect
	// loop of a Session.
	DefaultReconnectAttempts = 10
	DefaultReconnectDelay    = 5 * time.Second
)

var (
	// ErrAuthInvalid is returned when the server rejects the access token.
	ErrAuthInvalid = errors.New("hass: invalid access token")
	// ErrNotConnected is returned for calls made while the session is down.
	ErrNotConnected = errors.New("hass: not connected")
)

type wsError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type wsEvent struct {
	EventType string `json:"event_type"`
	Data      struct {
		EntityID string  `json:"entity_id"`
		NewState *Entity `json:"new_state"`
	} `json:"data"`
}

type wsMessage struct {
	ID        int             `json:"id,omitempty"`
	Type      string          `json:"type"`
	Success   bool            `json:"success,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     *wsError        `json:"error,omitempty"`
	Event     *wsEvent        `json:"event,omitempty"`
	Message   string          `json:"message,omitempty"`
	HAVersion string          `json:"ha_version,omitempty"`
}

// SessionOption tweaks a Session.
type SessionOption func(*Session)

// WithReconnect overrides the reconnect policy.
func WithReconnect(attempts int, delay time.Duration) SessionOption {
	return func(s *Session) {
		s.attempts = attempts
		s.delay = delay
	}
}

// Session is a long-lived WebSocket connection to Home Assistant. It keeps
// the entity catalog current from state_changed events and publishes a new
// snapshot on every change.
type Session struct {
	url    string
	token  string
	dialer *websocket.Dialer
	logger zerolog.Logger

	attempts int
	delay    time.Duration

	mu      sync.Mutex
	conn    *websocket.Conn
	catalog Catalog
	nextID  int
	pending map[int]chan wsMessage

	writeMu sync.Mutex
	updates chan Catalog
}

// NewSession prepares a session for baseURL (http or https). Nothing is
// dialed until Run.
func NewSession(baseURL, token string, logger zerolog.Logger, opts ...SessionOption) (*Session, error) {
	base, err := normalizeBase(baseURL)
	if err != nil {
		return nil, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("hass: access token is empty")
	}
	u, _ := url.Parse(base)
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += "/api/websocket"

	s := &Session{
		url:   u.String(),
		token: token,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
		logger:   logger.With().Str("component", "hass-ws").Logger(),
		attempts: DefaultReconnectAttempts,
		delay:    DefaultReconnectDelay,
		catalog:  Catalog{},
		pending:  map[int]chan wsMessage{},
		updates:  make(chan Catalog, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Updates delivers catalog snapshots. Only the newest undelivered snapshot
// is kept.
func (s *Session) Updates() <-chan Catalog { return s.updates }

// ReadCatalog returns the current snapshot.
func (s *Session) ReadCatalog() Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog
}

// Connected reports whether an authenticated connection is up.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Run connects and serves until ctx is cancelled, the token is rejected or
// the reconnect attempts are exhausted. The attempt counter resets after
// every successful authentication.
func (s *Session) Run(ctx context.Context) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.delay), uint64(max(s.attempts, 0))),
		ctx,
	)
	err := backoff.RetryNotify(func() error {
		err := s.serve(ctx, policy)
		if errors.Is(err, ErrAuthInvalid) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, wait time.Duration) {
		s.logger.Warn().Err(err).Dur("retry_in", wait).Msg("connection lost, reconnecting")
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (s *Session) serve(ctx context.Context, policy backoff.BackOff) error {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.url, err)
	}
	defer conn.Close()

	version, err := s.authenticate(conn)
	if err != nil {
		return err
	}
	s.logger.Info().Str("ha_version", version).Msg("authenticated")
	policy.Reset()

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer s.disconnect(conn)

	done := make(chan error, 1)
	go func() { done <- s.readLoop(conn) }()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	if err := s.loadStates(ctx); err != nil {
		return err
	}
	if _, err := s.command(ctx, map[string]any{"type": "subscribe_events", "event_type": "state_changed"}); err != nil {
		return fmt.Errorf("subscribe state_changed: %w", err)
	}

	return <-done
}

func (s *Session) authenticate(conn *websocket.Conn) (string, error) {
	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	defer func() { _ = conn.SetReadDeadline(time.Time{}) }()

	var msg wsMessage
	if err := conn.ReadJSON(&msg); err != nil {
		return "", fmt.Errorf("read auth_required: %w", err)
	}
	if msg.Type != "auth_required" {
		return "", fmt.Errorf("unexpected first message %q", msg.Type)
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(map[string]string{"type": "auth", "access_token": s.token}); err != nil {
		return "", fmt.Errorf("send auth: %w", err)
	}
	if err := conn.ReadJSON(&msg); err != nil {
		return "", fmt.Errorf("read auth result: %w", err)
	}
	switch msg.Type {
	case "auth_ok":
		return msg.HAVersion, nil
	case "auth_invalid":
		s.logger.Error().Str("reason", msg.Message).Msg("authentication rejected")
		return "", ErrAuthInvalid
	default:
		return "", fmt.Errorf("unexpected auth reply %q", msg.Type)
	}
}

func (s *Session) loadStates(ctx context.Context) error {
	res, err := s.command(ctx, map[string]any{"type": "get_states"})
	if err != nil {
		return fmt.Errorf("get_states: %w", err)
	}
	var states []Entity
	if err := json.Unmarshal(res, &states); err != nil {
		return fmt.Errorf("decode states: %w", err)
	}
	catalog := FromList(states)
	s.mu.Lock()
	s.catalog = catalog
	s.mu.Unlock()
	s.logger.Debug().Int("entities", len(catalog)).Msg("states loaded")
	s.publish(catalog)
	return nil
}

func (s *Session) readLoop(conn *websocket.Conn) error {
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return fmt.Errorf("server closed connection: %w", err)
			}
			return fmt.Errorf("read: %w", err)
		}
		switch msg.Type {
		case "result":
			s.mu.Lock()
			ch, ok := s.pending[msg.ID]
			delete(s.pending, msg.ID)
			s.mu.Unlock()
			if ok {
				ch <- msg
			}
		case "event":
			if msg.Event != nil && msg.Event.EventType == "state_changed" {
				s.applyStateChange(msg.Event)
			}
		case "pong":
		default:
			s.logger.Debug().Str("type", msg.Type).Msg("ignoring message")
		}
	}
}

// applyStateChange swaps in a new catalog; published snapshots are never
// mutated.
func (s *Session) applyStateChange(ev *wsEvent) {
	id := ev.Data.EntityID
	if id == "" {
		return
	}
	s.mu.Lock()
	next := s.catalog.Clone()
	if ev.Data.NewState == nil {
		delete(next, id)
	} else {
		next[id] = *ev.Data.NewState
	}
	s.catalog = next
	s.mu.Unlock()
	s.publish(next)
}

func (s *Session) publish(c Catalog) {
	select {
	case s.updates <- c:
		return
	default:
	}
	select {
	case <-s.updates:
	default:
	}
	select {
	case s.updates <- c:
	default:
	}
}

func (s *Session) disconnect(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	pending := s.pending
	s.pending = map[int]chan wsMessage{}
	s.mu.Unlock()
	for _, ch := range pending {
		close(ch)
	}
}

// command sends one id-tagged command and waits for its result.
func (s *Session) command(ctx context.Context, payload map[string]any) (json.RawMessage, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, commandTimeout)
		defer cancel()
	}

	s.mu.Lock()
	conn := s.conn
	if conn == nil {
		s.mu.Unlock()
		return nil, ErrNotConnected
	}
	s.nextID++
	id := s.nextID
	ch := make(chan wsMessage, 1)
	s.pending[id] = ch
	s.mu.Unlock()

	msg := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		msg[k] = v
	}
	msg["id"] = id

	s.writeMu.Lock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	err := conn.WriteJSON(msg)
	s.writeMu.Unlock()
	if err != nil {
		s.forget(id)
		return nil, fmt.Errorf("send: %w", err)
	}

	select {
	case res, ok := <-ch:
		if !ok {
			return nil, ErrNotConnected
		}
		if !res.Success {
			apiErr := &APIError{Message: "command failed"}
			if res.Error != nil {
				apiErr.Code = res.Error.Code
				apiErr.Message = res.Error.Message
			}
			return nil, apiErr
		}
		return res.Result, nil
	case <-ctx.Done():
		s.forget(id)
		return nil, ctx.Err()
	}
}

func (s *Session) forget(id int) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

// CallService runs call_service and waits for the result.
func (s *Session) CallService(ctx context.Context, domain, service string, data map[string]any) error {
	_, err := s.command(ctx, map[string]any{
		"type":         "call_service",
		"domain":       domain,
		"service":      service,
		"service_data": data,
	})
	if err != nil {
		return fmt.Errorf("call %s.%s: %w", domain, service, err)
	}
	return nil
}

// CallAction invokes a service on a single entity.
func (s *Session) CallAction(ctx context.Context, domain, action, entityID string, value *float64) error {
	return s.CallService(ctx, domain, action, serviceData(entityID, value))
}
