package card

import (
	"bytes"
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jask/webastocard/internal/hass"
)

type call struct {
	domain, action, entityID string
	value                    *float64
}

type fakeHost struct {
	mu      sync.Mutex
	catalog hass.Catalog
	calls   []call
	err     error
}

func (h *fakeHost) ReadCatalog() hass.Catalog { return h.catalog }

func (h *fakeHost) CallAction(_ context.Context, domain, action, entityID string, value *float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, call{domain: domain, action: action, entityID: entityID, value: value})
	return h.err
}

func (h *fakeHost) Calls() []call {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]call(nil), h.calls...)
}

func entity(id, state string, attrs map[string]any) hass.Entity {
	return hass.Entity{EntityID: id, State: state, Attributes: attrs}
}

func catalogOf(entities ...hass.Entity) hass.Catalog {
	return hass.FromList(entities)
}

func testLogger() zerolog.Logger { return zerolog.Nop() }

func bufferLogger() (zerolog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return zerolog.New(&buf), &buf
}
