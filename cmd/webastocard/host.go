package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cast"

	"github.com/jask/webastocard/internal/card"
	"github.com/jask/webastocard/internal/config"
	"github.com/jask/webastocard/internal/hass"
	"github.com/jask/webastocard/internal/heater"
)

const readyTimeout = 10 * time.Second

// liveHost is a host that keeps a connection open and pushes snapshots.
type liveHost interface {
	card.Host
	Updates() <-chan hass.Catalog
	Run(ctx context.Context) error
}

func newLiveHost(cfg config.Config, token string, logger zerolog.Logger) (liveHost, error) {
	if cfg.Host.Mode == config.ModeHeater {
		b, err := newBridge(cfg, logger)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	if token == "" {
		return nil, errNoToken
	}
	s, err := hass.NewSession(cfg.Hass.URL, token, logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// newBridge publishes entities under the card's own prefix so the card
// resolves them without overrides.
func newBridge(cfg config.Config, logger zerolog.Logger) (*heater.Bridge, error) {
	prefix := cast.ToString(cfg.Card[card.OptEntityPrefix])
	return heater.NewBridge(cfg.Heater.Address, prefix, logger)
}

// oneShotHost returns a host with a loaded catalog for a single command.
// The returned stop func releases any connection.
func oneShotHost(ctx context.Context, e *env) (card.Host, func(), error) {
	if e.cfg.Host.Mode != config.ModeHeater {
		token := defaultToken(e.cfg, e.logger)
		if token == "" {
			return nil, nil, errNoToken
		}
		client, err := hass.NewRESTClient(ctx, e.cfg.Hass.URL, token, e.logger)
		if err != nil {
			return nil, nil, err
		}
		if _, err := client.Refresh(ctx); err != nil {
			return nil, nil, err
		}
		return client, func() {}, nil
	}

	b, err := newBridge(e.cfg, e.logger)
	if err != nil {
		return nil, nil, err
	}
	runCtx, cancel := context.WithCancel(ctx)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		_ = b.Run(runCtx)
	}()
	stop := func() {
		cancel()
		<-finished
	}
	if err := waitReady(ctx, b, finished); err != nil {
		stop()
		return nil, nil, err
	}
	return b, stop, nil
}

// waitReady blocks until the bridge is connected and has seen a frame.
// Run failures are logged by the bridge itself.
func waitReady(ctx context.Context, b *heater.Bridge, finished <-chan struct{}) error {
	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	for {
		select {
		case c := <-b.Updates():
			if b.Connected() && hasReading(c) {
				return nil
			}
		case <-finished:
			return fmt.Errorf("heater: gave up before the first report: %w", heater.ErrNotConnected)
		case <-ctx.Done():
			return fmt.Errorf("heater did not report within %s", readyTimeout)
		}
	}
}

func hasReading(c hass.Catalog) bool {
	for _, e := range c {
		if e.State != hass.StateUnknown && e.State != hass.StateUnavailable {
			return true
		}
	}
	return false
}

// newCard builds a card from the [card] options and attaches host.
func newCard(e *env, host card.Host) *card.Card {
	c := card.New(e.logger)
	c.SetConfig(e.cfg.Card)
	c.Attach(host)
	return c
}
