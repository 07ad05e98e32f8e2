package card

import (
	"github.com/rs/zerolog"

	"github.com/jask/webastocard/internal/hass"
)

// CardType is the registry type name of the heater card.
const CardType = "webastoheater-card"

// EditorType is the registry type name of its configuration editor.
const EditorType = "webastoheater-card-editor"

// cardSize is the layout height hint reported to hosts, in rows of 50px.
const cardSize = 8

// Card is one heater card instance. It is not safe for concurrent use; the
// goroutine that pushes catalogs must also handle user input.
type Card struct {
	logger   zerolog.Logger
	cfg      Config
	host     Host
	catalog  hass.Catalog
	entities Mapping
	tabs     TabState
}

// New returns a card with the default configuration and no host.
func New(logger zerolog.Logger) *Card {
	c := &Card{
		logger: logger.With().Str("component", "card").Logger(),
		cfg:    DefaultConfig(),
	}
	c.entities = Resolve(c.cfg, nil)
	return c
}

// SetConfig replaces the configuration and re-resolves against the last
// catalog. Problems are logged, never returned.
func (c *Card) SetConfig(options map[string]any) {
	cfg, warnings := ParseConfig(options)
	for _, w := range warnings {
		c.logger.Warn().Str("option", w.Option).Msg(w.Reason)
	}
	if cfg.Incomplete() {
		c.logger.Warn().Str("default_prefix", DefaultPrefix).Msg("neither entity_prefix nor explicit entities configured")
	}
	c.cfg = cfg
	c.entities = Resolve(c.cfg, c.catalog)
}

// Config returns the active configuration.
func (c *Card) Config() Config { return c.cfg }

// Attach connects the card to a host and resolves against its catalog.
func (c *Card) Attach(h Host) {
	c.host = h
	if h != nil {
		c.OnCatalogUpdated(h.ReadCatalog())
	}
}

// Detach drops the host. Buttons and sliders become inert; the last catalog
// stays on screen.
func (c *Card) Detach() { c.host = nil }

// Host returns the attached host, or nil.
func (c *Card) Host() Host { return c.host }

// HostAttached reports whether actions can be dispatched at all.
func (c *Card) HostAttached() bool { return c.host != nil }

// OnCatalogUpdated replaces the catalog and rebuilds the mapping.
func (c *Card) OnCatalogUpdated(catalog hass.Catalog) {
	c.catalog = catalog
	c.entities = Resolve(c.cfg, catalog)
}

// Entities returns the resolved mapping. Treat it as read-only.
func (c *Card) Entities() Mapping { return c.entities }

// ActiveTab returns the selected tab.
func (c *Card) ActiveTab() Tab { return c.tabs.Active() }

// SelectTab switches tabs. It never talks to the host.
func (c *Card) SelectTab(t Tab) { c.tabs.Select(t) }

// NextTab cycles forward.
func (c *Card) NextTab() Tab { return c.tabs.Next() }

// PrevTab cycles backward.
func (c *Card) PrevTab() Tab { return c.tabs.Prev() }

// Size is the card height hint.
func (c *Card) Size() int { return cardSize }

// Style is the configured card background.
type Style struct {
	BackgroundColor   string
	BackgroundOpacity float64
}

// Style returns the configured background.
func (c *Card) Style() Style {
	return Style{BackgroundColor: c.cfg.BackgroundColor, BackgroundOpacity: c.cfg.BackgroundOpacity}
}

// Header is the summary line above the tabs.
type Header struct {
	Title        string
	Message      string
	Burning      bool
	Indicator    Tone
	Availability Display
}

// Header summarises burner and connection state.
func (c *Card) Header() Header {
	msg := c.entities.Get(KindSensor, SensorMessage)
	message := Unknown
	if msg.Present() && msg.Entity.State != "" {
		message = msg.Entity.State
	}
	burning := c.entities.Get(KindBinarySensor, BinaryBurning).State() == hass.StateOn
	indicator := ToneNegative
	if burning {
		indicator = TonePositive
	}
	return Header{
		Title:        "Webasto",
		Message:      message,
		Burning:      burning,
		Indicator:    indicator,
		Availability: FormatBinary(c.entities.Availability(), BinaryOnline),
	}
}
