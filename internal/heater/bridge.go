package heater

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"

	"github.com/jask/webastocard/internal/card"
	"github.com/jask/webastocard/internal/hass"
)

const (
	// DefaultPort is the controller's WebSocket port.
	DefaultPort = 81

	dialTimeout  = 10 * time.Second
	writeTimeout = 5 * time.Second

	DefaultReconnectAttempts = 10
	DefaultReconnectDelay    = 5 * time.Second
)

var (
	// ErrNotConnected is returned for actions while the controller is offline.
	ErrNotConnected = errors.New("heater: not connected")
	// ErrOutOfRange is returned for a set_value outside the setting's range.
	ErrOutOfRange = errors.New("heater: value out of range")
	// ErrUnsupported is returned for entities or services the bridge does not serve.
	ErrUnsupported = errors.New("heater: unsupported action")
)

// Option tweaks a Bridge.
type Option func(*Bridge)

// WithReconnect overrides the reconnect policy.
func WithReconnect(attempts int, delay time.Duration) Option {
	return func(b *Bridge) {
		b.attempts = attempts
		b.delay = delay
	}
}

// Bridge is a card host backed by the controller's WebSocket. Fields from
// every frame are merged into one data map, which is rendered as a catalog
// under the configured entity prefix.
type Bridge struct {
	url    string
	prefix string
	dialer *websocket.Dialer
	logger zerolog.Logger

	attempts int
	delay    time.Duration

	mu        sync.Mutex
	conn      *websocket.Conn
	data      map[string]any
	catalog   hass.Catalog
	updatedAt time.Time

	writeMu sync.Mutex
	updates chan hass.Catalog
}

// NewBridge prepares a bridge. address is a host name, host:port or a full
// ws:// URL; bare hosts get the default port.
func NewBridge(address, prefix string, logger zerolog.Logger, opts ...Option) (*Bridge, error) {
	u, err := controllerURL(address)
	if err != nil {
		return nil, err
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = card.DefaultPrefix
	}
	b := &Bridge{
		url:      u,
		prefix:   prefix,
		dialer:   &websocket.Dialer{HandshakeTimeout: dialTimeout},
		logger:   logger.With().Str("component", "heater").Str("url", u).Logger(),
		attempts: DefaultReconnectAttempts,
		delay:    DefaultReconnectDelay,
		data:     map[string]any{},
		updates:  make(chan hass.Catalog, 1),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.catalog = b.render(false)
	return b, nil
}

func controllerURL(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", errors.New("heater: address is empty")
	}
	if strings.Contains(address, "://") {
		return address, nil
	}
	if !strings.Contains(address, ":") {
		address += ":" + strconv.Itoa(DefaultPort)
	}
	return "ws://" + address + "/", nil
}

// Updates delivers catalog snapshots; only the newest is kept.
func (b *Bridge) Updates() <-chan hass.Catalog { return b.updates }

// ReadCatalog returns the current snapshot.
func (b *Bridge) ReadCatalog() hass.Catalog {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.catalog
}

// Connected reports whether the controller link is up.
func (b *Bridge) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil
}

// Run connects and serves until ctx is cancelled or the reconnect attempts
// are exhausted.
func (b *Bridge) Run(ctx context.Context) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(b.delay), uint64(max(b.attempts, 0))),
		ctx,
	)
	err := backoff.RetryNotify(func() error {
		err := b.serve(ctx, policy)
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}, policy, func(err error, wait time.Duration) {
		b.logger.Warn().Err(err).Dur("retry_in", wait).Msg("controller link lost, reconnecting")
	})
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		b.logger.Error().Err(err).Msg("giving up on controller")
	}
	return err
}

func (b *Bridge) serve(ctx context.Context, policy backoff.BackOff) error {
	conn, _, err := b.dialer.DialContext(ctx, b.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	b.mu.Lock()
	b.conn = conn
	b.mu.Unlock()
	defer b.disconnect(conn)

	policy.Reset()
	b.logger.Info().Msg("connected")
	b.refresh()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stop:
		}
	}()

	if err := b.send("GET_SETTINGS"); err != nil {
		return err
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		fields, err := parseFrame(raw)
		if err != nil {
			b.logger.Warn().Str("frame", string(raw)).Msg("ignoring non-JSON frame")
			continue
		}
		b.merge(fields)
	}
}

func (b *Bridge) disconnect(conn *websocket.Conn) {
	b.mu.Lock()
	if b.conn == conn {
		b.conn = nil
	}
	b.mu.Unlock()
	b.refresh()
}

func (b *Bridge) merge(fields map[string]any) {
	b.mu.Lock()
	for k, v := range fields {
		b.data[k] = v
	}
	b.updatedAt = time.Now().UTC()
	b.mu.Unlock()
	b.refresh()
}

// refresh re-renders the catalog and publishes it.
func (b *Bridge) refresh() {
	b.mu.Lock()
	next := b.render(b.conn != nil)
	b.catalog = next
	b.mu.Unlock()

	select {
	case b.updates <- next:
		return
	default:
	}
	select {
	case <-b.updates:
	default:
	}
	select {
	case b.updates <- next:
	default:
	}
}

func (b *Bridge) send(command string) error {
	b.mu.Lock()
	conn := b.conn
	b.mu.Unlock()
	if conn == nil {
		b.logger.Warn().Str("command", command).Msg("not connected, command dropped")
		return ErrNotConnected
	}
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, []byte(command)); err != nil {
		return fmt.Errorf("send %s: %w", command, err)
	}
	b.logger.Debug().Str("command", command).Msg("command sent")
	return nil
}

// CallAction implements card.Host. Buttons map to controller commands;
// set_value only updates the stored setting, which the save button later
// sends with SET.
func (b *Bridge) CallAction(ctx context.Context, domain, action, entityID string, value *float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	slug, ok := b.slugOf(domain, entityID)
	if !ok {
		return fmt.Errorf("%s: %w", entityID, ErrUnsupported)
	}
	switch {
	case domain == hass.DomainButton && action == hass.ServicePress:
		btn, ok := findButton(slug)
		if !ok {
			return fmt.Errorf("%s: %w", entityID, ErrUnsupported)
		}
		command := btn.command
		if command == saveCommand {
			b.mu.Lock()
			cmd, err := setCommand(b.data)
			b.mu.Unlock()
			if err != nil {
				b.logger.Error().Err(err).Msg("cannot save settings")
				return err
			}
			command = cmd
		}
		return b.send(command)
	case domain == hass.DomainNumber && action == hass.ServiceSetValue:
		setting, ok := findNumber(slug)
		if !ok {
			return fmt.Errorf("%s: %w", entityID, ErrUnsupported)
		}
		if value == nil {
			return fmt.Errorf("%s: missing value: %w", entityID, ErrUnsupported)
		}
		return b.setValue(setting, *value)
	default:
		return fmt.Errorf("%s.%s: %w", domain, action, ErrUnsupported)
	}
}

func (b *Bridge) setValue(n numberSpec, v float64) error {
	if !b.Connected() {
		b.logger.Warn().Str("setting", n.key).Msg("not connected, value not set")
		return ErrNotConnected
	}
	if math.IsNaN(v) || v < n.min || v > n.max {
		b.logger.Error().Str("setting", n.key).Float64("value", v).
			Float64("min", n.min).Float64("max", n.max).Msg("value out of range")
		return fmt.Errorf("%s=%v not in [%v, %v]: %w", n.key, v, n.min, n.max, ErrOutOfRange)
	}
	b.merge(map[string]any{n.key: int64(v)})
	b.logger.Debug().Str("setting", n.key).Float64("value", v).Msg("setting stored, pending save")
	return nil
}

func (b *Bridge) slugOf(domain, entityID string) (string, bool) {
	return strings.CutPrefix(entityID, domain+"."+b.prefix+"_")
}

func (b *Bridge) entityID(kind card.Kind, slug string) string {
	return card.DefaultEntityID(kind, b.prefix, slug)
}

// render builds the catalog from the data map. Callers hold mu.
func (b *Bridge) render(connected bool) hass.Catalog {
	out := make(hass.Catalog, len(sensors)+len(binarySensors)+len(numbers)+len(buttons))
	stamp := b.updatedAt

	add := func(kind card.Kind, slug, state string, attrs map[string]any) {
		if !connected {
			state = hass.StateUnavailable
		}
		id := b.entityID(kind, slug)
		out[id] = hass.Entity{EntityID: id, State: state, Attributes: attrs, LastChanged: stamp, LastUpdated: stamp}
	}

	for _, s := range sensors {
		attrs := map[string]any{"friendly_name": s.name, "icon": s.icon}
		if s.unit != "" {
			attrs["unit_of_measurement"] = s.unit
		}
		add(card.KindSensor, s.slug, b.sensorState(s), attrs)
	}
	for _, s := range binarySensors {
		state := hass.StateUnknown
		raw, present := b.data[s.key]
		switch {
		case s.key == "wifi_status" && present:
			state = hass.StateOff
			if n, err := cast.ToIntE(raw); err == nil && n == wifiConnected {
				state = hass.StateOn
			}
		default:
			if on, known := truthy(raw); known {
				state = hass.StateOff
				if on {
					state = hass.StateOn
				}
			}
		}
		add(card.KindBinarySensor, s.slug, state, map[string]any{"friendly_name": s.name, "icon": s.icon})
	}
	for _, n := range numbers {
		state := hass.StateUnknown
		if f, err := cast.ToFloat64E(b.data[n.key]); err == nil && b.data[n.key] != nil {
			state = strconv.FormatFloat(clamp(f, n.min, n.max), 'f', -1, 64)
		}
		attrs := map[string]any{"friendly_name": n.name, "min": n.min, "max": n.max, "step": n.step, "mode": "slider"}
		if n.unit != "" {
			attrs["unit_of_measurement"] = n.unit
		}
		add(card.KindNumber, n.slug, state, attrs)
	}
	for _, btn := range buttons {
		add(card.KindButton, btn.slug, hass.StateUnknown, map[string]any{"friendly_name": btn.name})
	}
	return out
}

func (b *Bridge) sensorState(s sensorSpec) string {
	raw, ok := b.data[s.key]
	if !ok || raw == nil {
		return hass.StateUnknown
	}
	if s.key == "currentState" {
		if n, err := cast.ToIntE(raw); err == nil {
			if name, ok := currentStateNames[n]; ok {
				return name
			}
		}
		return hass.StateUnknown
	}
	switch v := raw.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return cast.ToString(v)
	}
}
