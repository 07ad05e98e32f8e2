package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jask/webastocard/internal/config"
	"github.com/jask/webastocard/internal/tui"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "run",
		Short:         "Open the heater dashboard (default)",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runDashboard,
	}
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	e, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	token := ""
	if e.cfg.Host.Mode != config.ModeHeater {
		token = defaultToken(e.cfg, e.logger)
	}
	host, err := newLiveHost(e.cfg, token, e.logger)
	if err != nil {
		return err
	}

	c := newCard(e, host)
	e.logger.Info().Str("mode", e.cfg.Host.Mode).Str("prefix", c.Config().Prefix()).Msg("dashboard starting")

	app := tui.New(ctx, c, host.Updates(), e.logger, tui.Options{TrendPoints: e.cfg.UI.TrendPoints})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	hostDone := make(chan struct{})
	go func() {
		defer close(hostDone)
		err := host.Run(ctx)
		p.Send(tui.HostStoppedMsg{Err: err})
	}()

	_, err = p.Run()
	cancel()
	<-hostDone
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) && !errors.Is(err, context.Canceled) {
		return err
	}
	e.logger.Info().Msg("dashboard closed")
	return nil
}
