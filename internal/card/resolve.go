package card

import "github.com/jask/webastocard/internal/hass"

// Resolved is one entry of the resolved mapping. Entity is nil when the
// catalog has no record for EntityID.
type Resolved struct {
	Key      string
	Kind     Kind
	Slug     string
	EntityID string
	Entity   *hass.Entity
}

// Present reports whether the entity was found in the catalog.
func (r Resolved) Present() bool { return r.Entity != nil }

// State returns the entity state, or "" when absent.
func (r Resolved) State() string {
	if r.Entity == nil {
		return ""
	}
	return r.Entity.State
}

// Mapping is keyed by local key ({kind}_{slug} or AvailabilityKey).
type Mapping map[string]Resolved

// Get returns the entry for a kind and slug. Unknown slugs yield an absent
// entry with no entity id.
func (m Mapping) Get(kind Kind, slug string) Resolved {
	key := LocalKey(kind, slug)
	if r, ok := m[key]; ok {
		return r
	}
	return Resolved{Key: key, Kind: kind, Slug: slug}
}

// Availability returns the availability entry.
func (m Mapping) Availability() Resolved {
	if r, ok := m[AvailabilityKey]; ok {
		return r
	}
	return Resolved{Key: AvailabilityKey, Kind: KindBinarySensor}
}

// Missing returns the entries whose entity is absent.
func (m Mapping) Missing() []Resolved {
	var out []Resolved
	for _, kind := range Kinds {
		for _, slug := range Slugs(kind) {
			if r := m.Get(kind, slug); !r.Present() {
				out = append(out, r)
			}
		}
	}
	if r := m.Availability(); !r.Present() {
		out = append(out, r)
	}
	return out
}

// Resolve maps the fixed slug lists onto catalog entities. Every slug gets
// an entry; missing entities are recorded with a nil Entity.
func Resolve(cfg Config, catalog hass.Catalog) Mapping {
	prefix := cfg.Prefix()
	out := make(Mapping, ExpectedEntries())

	lookup := func(id string) *hass.Entity {
		e, ok := catalog.Lookup(id)
		if !ok {
			return nil
		}
		return &e
	}

	for _, kind := range Kinds {
		for _, slug := range Slugs(kind) {
			key := LocalKey(kind, slug)
			id, ok := cfg.Override(key)
			if !ok {
				id = DefaultEntityID(kind, prefix, slug)
			}
			out[key] = Resolved{Key: key, Kind: kind, Slug: slug, EntityID: id, Entity: lookup(id)}
		}
	}

	availID := cfg.AvailabilityEntity
	if availID == "" {
		availID = DefaultEntityID(KindBinarySensor, prefix, availabilitySlug)
	}
	out[AvailabilityKey] = Resolved{
		Key:      AvailabilityKey,
		Kind:     KindBinarySensor,
		Slug:     availabilitySlug,
		EntityID: availID,
		Entity:   lookup(availID),
	}
	return out
}
