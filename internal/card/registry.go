package card

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrDuplicateType is returned when a card type is registered twice.
var ErrDuplicateType = errors.New("card type already registered")

// Descriptor announces a card type to a dashboard.
type Descriptor struct {
	Type         string
	Name         string
	Description  string
	Preview      bool
	Configurable bool
	// EditorType names the configuration editor, if any.
	EditorType string
}

// HeaterDescriptor describes the Webasto heater card.
func HeaterDescriptor() Descriptor {
	return Descriptor{
		Type:         CardType,
		Name:         "Webasto Heater Card",
		Description:  "Status and control of a Webasto heater",
		Preview:      true,
		Configurable: true,
		EditorType:   EditorType,
	}
}

// Registry holds card descriptors by type. Create one per dashboard.
type Registry struct {
	mu    sync.RWMutex
	cards map[string]Descriptor
}

func NewRegistry() *Registry {
	return &Registry{cards: map[string]Descriptor{}}
}

func (r *Registry) Register(d Descriptor) error {
	if d.Type == "" {
		return errors.New("card type is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cards[d.Type]; ok {
		return fmt.Errorf("%s: %w", d.Type, ErrDuplicateType)
	}
	r.cards[d.Type] = d
	return nil
}

func (r *Registry) Lookup(cardType string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.cards[cardType]
	return d, ok
}

// List returns the descriptors sorted by type.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.cards))
	for _, d := range r.cards {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}
