// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package admincli

import (
	"errors"

	"github.com/spf13/cobra"
)

// NewEndpointCommand creates the endpoint command group (set, clear)
func NewEndpointCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "endpoint",
		Short: "Manage the endpoint override",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <url>",
		Short: "Store an endpoint override",
		Long: `Store an endpoint override in the admin namespace.

The URL must start with https://script.google.com/. A running server
picks the override up on its next restart; the admin API applies it
immediately.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(s *session, out *output) error {
				cfg, err := s.console.SetEndpoint(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return out.config(cfg)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the endpoint override",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(s *session, out *output) error {
				cfg, err := s.console.ClearEndpoint(cmd.Context())
				if err != nil {
					return err
				}
				return out.config(cfg)
			})
		},
	})

	return cmd
}

// NewConfigCommand creates the config command group (show)
func NewConfigCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the resolved configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration (secrets masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(s *session, out *output) error {
				return out.config(s.console.Config())
			})
		},
	})

	return cmd
}

// NewTestConnectionCommand creates the test-connection command
func NewTestConnectionCommand(opts *RootOptions) *cobra.Command {
	var post bool

	cmd := &cobra.Command{
		Use:   "test-connection",
		Short: "Probe the endpoint",
		Long: `Probe the endpoint with a plain GET.

With --post a test application flagged isTest is submitted instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(s *session, out *output) error {
				p := s.console.TestConnection(cmd.Context(), post)
				if err := out.probe(p); err != nil {
					return err
				}
				if p.Error != "" {
					return errors.New("endpoint probe failed")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&post, "post", false, "submit a test application")
	return cmd
}

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand(opts *RootOptions) *cobra.Command {
	var post bool

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Report configuration, catalog and endpoint health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(s *session, out *output) error {
				return out.diagnose(s.console.Diagnose(cmd.Context(), post))
			})
		},
	}

	cmd.Flags().BoolVar(&post, "post", false, "probe with a test application")
	return cmd
}

// NewCacheCommand creates the cache command group (clear)
func NewCacheCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage stored guest state",
	}

	var guestID string
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear one guest's stored selection",
		Long: `Clear every stored key of one guest, the version marker included.

The guest's next request runs the version migration from scratch and asks
for the password again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(s *session, out *output) error {
				resp, err := s.console.ResetGuest(cmd.Context(), s.durable(guestID), guestID)
				if err != nil {
					return err
				}
				return out.reset(resp)
			})
		},
	}
	clearCmd.Flags().StringVar(&guestID, "guest", "", "guest ID (from the celebration_guest cookie)")
	clearCmd.MarkFlagRequired("guest")
	cmd.AddCommand(clearCmd)

	return cmd
}
