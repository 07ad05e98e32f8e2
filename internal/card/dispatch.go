package card

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jask/webastocard/internal/hass"
)

var (
	// ErrHostUnavailable is returned when no host is attached.
	ErrHostUnavailable = errors.New("host connection unavailable")
	// ErrEntityAbsent is returned when the target entity did not resolve.
	ErrEntityAbsent = errors.New("entity not available")
	// ErrUnknownSlug is returned for a slug outside the fixed lists.
	ErrUnknownSlug = errors.New("unknown slug")
)

// Host is the capability the card needs from its environment.
type Host interface {
	// ReadCatalog returns the current entity catalog.
	ReadCatalog() hass.Catalog
	// CallAction invokes domain.action on entityID. value is nil for
	// actions without a payload.
	CallAction(ctx context.Context, domain, action, entityID string, value *float64) error
}

// Action is an outbound request to the host.
type Action struct {
	ID       string
	Key      string
	Domain   string
	Service  string
	EntityID string
	Value    *float64
}

func (a Action) String() string {
	s := a.Domain + "." + a.Service + " " + a.EntityID
	if a.Value != nil {
		s += " value=" + strconv.FormatFloat(*a.Value, 'f', -1, 64)
	}
	return s
}

func (a Action) log(ev *zerolog.Event) *zerolog.Event {
	ev = ev.Str("action_id", a.ID).Str("service", a.Domain+"."+a.Service).Str("entity_id", a.EntityID)
	if a.Value != nil {
		ev = ev.Float64("value", *a.Value)
	}
	return ev
}

// PressButton prepares a button.press action for slug. Nothing is sent;
// pass the result to Dispatch.
func (c *Card) PressButton(slug string) (Action, error) {
	if !IsKnownSlug(KindButton, slug) {
		return Action{}, fmt.Errorf("button %q: %w", slug, ErrUnknownSlug)
	}
	r := c.entities.Get(KindButton, slug)
	return c.prepare(r, hass.ServicePress, nil)
}

// CommitNumber prepares a number.set_value action. Call it when the user
// commits a slider, not on every step.
func (c *Card) CommitNumber(slug string, value float64) (Action, error) {
	if !IsKnownSlug(KindNumber, slug) {
		return Action{}, fmt.Errorf("number %q: %w", slug, ErrUnknownSlug)
	}
	r := c.entities.Get(KindNumber, slug)
	return c.prepare(r, hass.ServiceSetValue, &value)
}

func (c *Card) prepare(r Resolved, service string, value *float64) (Action, error) {
	if c.host == nil {
		c.logger.Error().Str("entity_id", r.EntityID).Str("service", string(r.Kind)+"."+service).Msg("host connection unavailable, action not sent")
		return Action{}, ErrHostUnavailable
	}
	if !r.Present() {
		c.logger.Warn().Str("key", r.Key).Str("entity_id", r.EntityID).Msg("entity not resolved, action not sent")
		return Action{}, fmt.Errorf("%s: %w", r.EntityID, ErrEntityAbsent)
	}
	return Action{
		ID:       uuid.NewString(),
		Key:      r.Key,
		Domain:   string(r.Kind),
		Service:  service,
		EntityID: r.Entity.EntityID,
		Value:    value,
	}, nil
}

// Dispatch sends a prepared action to the host captured at call time. The
// outcome is logged and returned for status display only; the card state
// never changes because of it. Safe to call from a goroutine other than the
// one driving the card.
func (c *Card) Dispatch(ctx context.Context, host Host, a Action) error {
	if host == nil {
		a.log(c.logger.Error()).Msg("host connection unavailable, action not sent")
		return ErrHostUnavailable
	}
	a.log(c.logger.Debug()).Msg("calling service")
	if err := host.CallAction(ctx, a.Domain, a.Service, a.EntityID, a.Value); err != nil {
		a.log(c.logger.Error()).Err(err).Msg("service call failed")
		return fmt.Errorf("%s.%s %s: %w", a.Domain, a.Service, a.EntityID, err)
	}
	a.log(c.logger.Info()).Msg("service call succeeded")
	return nil
}

// Settle is called on the card's own goroutine once an action completed.
// It reports whether the target still resolves; a stale completion is only
// logged.
func (c *Card) Settle(a Action) bool {
	r, ok := c.entities[a.Key]
	if !ok || !r.Present() || r.EntityID != a.EntityID {
		a.log(c.logger.Debug()).Msg("completed action target no longer resolves")
		return false
	}
	return true
}
