package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/jask/webastocard/internal/card"
	"github.com/jask/webastocard/internal/config"
)

func newPressCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "press <button>",
		Short:         "Press one of the card's buttons, e.g. vkliuchit_vykliuchit",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer e.Close()

			host, stop, err := oneShotHost(cmd.Context(), e)
			if err != nil {
				return err
			}
			defer stop()

			c := newCard(e, host)
			action, err := c.PressButton(args[0])
			if err != nil {
				return withSlugHint(err, card.KindButton)
			}
			if err := c.Dispatch(cmd.Context(), host, action); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "sent", action)
			return nil
		},
	}
}

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "set <number> <value>",
		Short:         "Set one of the card's numbers, e.g. tselevaia_temperatura_nagrevatelia 200",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseValue(args[1])
			if err != nil {
				return err
			}
			save, _ := cmd.Flags().GetBool("save")

			e, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer e.Close()

			host, stop, err := oneShotHost(cmd.Context(), e)
			if err != nil {
				return err
			}
			defer stop()

			c := newCard(e, host)
			slug := args[0]
			if card.IsKnownSlug(card.KindNumber, slug) {
				b := card.NumberBounds(c.Entities().Get(card.KindNumber, slug))
				if value < b.Min || value > b.Max {
					return fmt.Errorf("%s: %v is outside [%v, %v]", slug, value, b.Min, b.Max)
				}
			}
			action, err := c.CommitNumber(slug, value)
			if err != nil {
				return withSlugHint(err, card.KindNumber)
			}
			if err := c.Dispatch(cmd.Context(), host, action); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "sent", action)

			if !save {
				if e.cfg.Host.Mode == config.ModeHeater {
					fmt.Fprintln(cmd.OutOrStdout(), "stored on the bridge only; pass --save to write it to the controller")
				}
				return nil
			}
			saveAction, err := c.PressButton(card.ButtonSaveSettings)
			if err != nil {
				return err
			}
			if err := c.Dispatch(cmd.Context(), host, saveAction); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "sent", saveAction)
			return nil
		},
	}
	cmd.Flags().Bool("save", false, "press save_settings afterwards")
	return cmd
}

func parseValue(s string) (float64, error) {
	v, err := cast.ToFloat64E(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("value %q is not a number", s)
	}
	return v, nil
}

func withSlugHint(err error, kind card.Kind) error {
	if errors.Is(err, card.ErrUnknownSlug) {
		return fmt.Errorf("%w; known %s slugs: %s", err, kind, strings.Join(card.Slugs(kind), ", "))
	}
	return err
}
