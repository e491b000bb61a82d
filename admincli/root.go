// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package admincli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/AlexKsun/celebration/admin"
	"github.com/AlexKsun/celebration/catalog"
	"github.com/AlexKsun/celebration/db"
	"github.com/AlexKsun/celebration/envconfig"
	"github.com/AlexKsun/celebration/kvstore"
	"github.com/AlexKsun/celebration/remote"
	"github.com/AlexKsun/celebration/version"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

var validFormats = []string{FormatText, FormatJSON}

// RootOptions holds global flags for all commands
type RootOptions struct {
	DatabaseType  string
	DatabaseURL   string
	CatalogSource string
	EnvFile       string
	Development   bool
	Format        string
	Verbose       bool

	// BuildEnv is the value injected into the server binary at build time
	BuildEnv string
	// LookupEnv reads the process environment; tests replace it
	LookupEnv func(string) (string, bool)
}

// session is one command's view of the server's state
type session struct {
	console *admin.Console
	close   func()

	durable func(guestID string) kvstore.Store
}

func (o *RootOptions) open(ctx context.Context) (*session, error) {
	conn, err := db.Open(o.DatabaseType, o.DatabaseURL)
	if err != nil {
		return nil, err
	}

	lookup := o.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	resolver := envconfig.New(envconfig.Options{
		Build:       envconfig.BuildLayer(o.BuildEnv, lookup),
		EnvFile:     o.EnvFile,
		Development: o.Development,
		Overrides:   kvstore.NewSQL(conn, kvstore.AdminNamespace, kvstore.DefaultQuota),
	})
	resolver.Load(ctx)

	gateway := remote.NewGateway(resolver, nil, slog.Default())
	console := admin.NewConsole(resolver, catalog.NewLoader(o.CatalogSource, nil), gateway, version.NewMigrator(version.Current))
	return &session{
		console: console,
		close:   func() { conn.Close() },
		durable: func(guestID string) kvstore.Store {
			return kvstore.NewSQL(conn, kvstore.GuestNamespace(guestID), kvstore.DefaultQuota)
		},
	}, nil
}

// run opens a session for one command and closes it afterwards
func (o *RootOptions) run(cmd *cobra.Command, fn func(s *session, out *output) error) error {
	s, err := o.open(cmd.Context())
	if err != nil {
		return err
	}
	defer s.close()
	return fn(s, &output{format: o.Format, w: cmd.OutOrStdout()})
}

// NewRootCommand creates the root command for celebration-admin
func NewRootCommand(opts *RootOptions) *cobra.Command {
	if opts == nil {
		opts = &RootOptions{}
	}

	cmd := &cobra.Command{
		Use:   "celebration-admin",
		Short: "Operator console for the Celebration gift catalog",
		Long: `Operator console for the Celebration gift catalog.

Works directly on the server's database: stores or clears the endpoint
override, shows the resolved configuration, probes the endpoint and
resets a guest's stored selection.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(validFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			if opts.Verbose {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.DatabaseType, "db-type", "t", envOr("DATABASE_TYPE", db.TypeSQLite), "database type (sqlite|postgres)")
	cmd.PersistentFlags().StringVarP(&opts.DatabaseURL, "db", "d", envOr("DATABASE_URL", "celebration.db"), "database URL or sqlite file")
	cmd.PersistentFlags().StringVar(&opts.CatalogSource, "catalog", envOr("CATALOG_SOURCE", "data/products.json"), "product catalog file or URL")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", envOr("ENV_FILE", ".env"), "development .env file")
	cmd.PersistentFlags().BoolVar(&opts.Development, "dev", os.Getenv("APP_ENV") == "development", "development mode")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	cmd.AddCommand(NewEndpointCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	cmd.AddCommand(NewTestConnectionCommand(opts))
	cmd.AddCommand(NewDiagnoseCommand(opts))
	cmd.AddCommand(NewCacheCommand(opts))

	return cmd
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
