// Package hass talks to a Home Assistant instance: the entity state model,
// a WebSocket session for live state pushes and service calls, and a REST
// client for one-shot commands.
package hass

import (
	"strings"
	"time"
)

// Domains and services used by the heater card.
const (
	DomainButton       = "button"
	DomainNumber       = "number"
	DomainSensor       = "sensor"
	DomainBinarySensor = "binary_sensor"

	ServicePress    = "press"
	ServiceSetValue = "set_value"
)

// Host states that mean "no value".
const (
	StateUnknown     = "unknown"
	StateUnavailable = "unavailable"
	StateOn          = "on"
	StateOff         = "off"
)

// Entity is one entry of the host state machine.
type Entity struct {
	EntityID    string         `json:"entity_id"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes"`
	LastChanged time.Time      `json:"last_changed"`
	LastUpdated time.Time      `json:"last_updated"`
}

// Domain returns the part of the entity id before the dot.
func (e Entity) Domain() string {
	domain, _, _ := strings.Cut(e.EntityID, ".")
	return domain
}

// Attr returns a raw attribute value.
func (e Entity) Attr(key string) (any, bool) {
	if e.Attributes == nil {
		return nil, false
	}
	v, ok := e.Attributes[key]
	return v, ok
}

// StringAttr returns an attribute as a string, or "" when missing or not a string.
func (e Entity) StringAttr(key string) string {
	if v, ok := e.Attr(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Unit returns the unit_of_measurement attribute.
func (e Entity) Unit() string { return e.StringAttr("unit_of_measurement") }

// Icon returns the icon attribute.
func (e Entity) Icon() string { return e.StringAttr("icon") }

// FriendlyName returns the friendly_name attribute, falling back to the id.
func (e Entity) FriendlyName() string {
	if name := e.StringAttr("friendly_name"); name != "" {
		return name
	}
	return e.EntityID
}

// Catalog maps entity id to entity. Hosts hand out fresh catalogs; callers
// must treat them as read-only.
type Catalog map[string]Entity

// Lookup returns the entity for id.
func (c Catalog) Lookup(id string) (Entity, bool) {
	e, ok := c[id]
	return e, ok
}

// Clone returns a shallow copy of the catalog. Attribute maps are shared.
func (c Catalog) Clone() Catalog {
	out := make(Catalog, len(c))
	for id, e := range c {
		out[id] = e
	}
	return out
}

// FromList builds a catalog from a states list as returned by get_states.
func FromList(entities []Entity) Catalog {
	out := make(Catalog, len(entities))
	for _, e := range entities {
		if e.EntityID == "" {
			continue
		}
		out[e.EntityID] = e
	}
	return out
}
