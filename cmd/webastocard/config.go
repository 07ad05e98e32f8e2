package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jask/webastocard/internal/card"
	"github.com/jask/webastocard/internal/config"
	"github.com/jask/webastocard/internal/secrets"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:           "config",
		Short:         "Configuration helpers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	configCmd.AddCommand(
		&cobra.Command{
			Use:           "sample",
			Short:         "Print a starter config file",
			Args:          cobra.NoArgs,
			SilenceUsage:  true,
			SilenceErrors: true,
			RunE: func(cmd *cobra.Command, _ []string) error {
				opts := card.DefaultConfig().Options()
				opts[card.OptEntityPrefix] = card.DefaultPrefix
				out, err := config.Sample(opts)
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), out)
				return err
			},
		},
		&cobra.Command{
			Use:           "path",
			Short:         "Print the config file location",
			Args:          cobra.NoArgs,
			SilenceUsage:  true,
			SilenceErrors: true,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if p, _ := cmd.Flags().GetString("config"); p != "" {
					fmt.Fprintln(cmd.OutOrStdout(), p)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), config.Path())
				return nil
			},
		},
	)
	return configCmd
}

func newTokenCmd() *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:           "token",
		Short:         "Manage the stored Home Assistant access token",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	tokenCmd.AddCommand(
		&cobra.Command{
			Use:           "set [token]",
			Short:         "Store a long-lived access token for hass.url (reads stdin without an argument)",
			Args:          cobra.MaximumNArgs(1),
			SilenceUsage:  true,
			SilenceErrors: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				e, err := setup(cmd, false)
				if err != nil {
					return err
				}
				defer e.Close()

				token := ""
				if len(args) == 1 {
					token = args[0]
				} else {
					token, err = readLine(cmd.InOrStdin())
					if err != nil {
						return err
					}
				}
				store, err := secrets.Default()
				if err != nil {
					return err
				}
				if err := store.StoreToken(e.cfg.Hass.URL, token); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "token stored for", e.cfg.Hass.URL)
				return nil
			},
		},
		&cobra.Command{
			Use:           "clear",
			Short:         "Remove the stored token for hass.url",
			Args:          cobra.NoArgs,
			SilenceUsage:  true,
			SilenceErrors: true,
			RunE: func(cmd *cobra.Command, _ []string) error {
				e, err := setup(cmd, false)
				if err != nil {
					return err
				}
				defer e.Close()

				store, err := secrets.Default()
				if err != nil {
					return err
				}
				if err := store.DeleteToken(e.cfg.Hass.URL); err != nil && !errors.Is(err, secrets.ErrNotFound) {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "token cleared for", e.cfg.Hass.URL)
				return nil
			},
		},
	)
	return tokenCmd
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read token: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("empty token")
	}
	return line, nil
}
