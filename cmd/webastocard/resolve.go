package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jask/webastocard/internal/card"
	"github.com/jask/webastocard/internal/hass"
)

const suggestions = 3

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "resolve",
		Short:         "Print how every card entry resolves against the host",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
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
			return printMapping(cmd.OutOrStdout(), c.Entities(), host.ReadCatalog())
		},
	}
}

// printMapping writes one line per local key. Missing entities get the
// closest ids of the same domain as hints.
func printMapping(w io.Writer, m card.Mapping, catalog hass.Catalog) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tENTITY\tSTATE")
	missing := 0
	for _, k := range keys {
		r := m[k]
		state := r.State()
		if !r.Present() {
			missing++
			state = "missing"
			if hints := card.Suggest(r.EntityID, catalog, suggestions); len(hints) > 0 {
				state += " (did you mean " + strings.Join(hints, ", ") + "?)"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", k, r.EntityID, state)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d of %d entries resolved\n", len(keys)-missing, len(keys))
	return err
}

func newCardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "cards",
		Short:         "List the registered card types",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := card.NewRegistry()
			if err := reg.Register(card.HeaterDescriptor()); err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tNAME\tEDITOR\tDESCRIPTION")
			for _, d := range reg.List() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Type, d.Name, d.EditorType, d.Description)
			}
			return tw.Flush()
		},
	}
}
