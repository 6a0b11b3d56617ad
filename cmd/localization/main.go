package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	localization "github.com/goliatone/go-localization"
	overridescmd "github.com/goliatone/go-localization/internal/commands/overrides"
)

var moduleBuilder = localization.New

type rootOptions struct {
	path        string
	baseLocale  string
	format      string
	dbDriver    string
	dbDSN       string
	noOverrides bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("localization: %v", err)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "localization",
		Short: "Manage translation files and database overrides",
		Long: `localization serves the translation admin endpoints and runs maintenance
tasks against a directory of per-locale translation files.

Settings are read from LOCALIZATION_* environment variables first and then
from the flags below.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.path, "path", "", "Translation root holding one directory per locale")
	flags.StringVar(&opts.baseLocale, "base-locale", "", "Locale whose files define the key set")
	flags.StringVar(&opts.format, "format", "", "Translation file format: json, yaml or toml")
	flags.StringVar(&opts.dbDriver, "db-driver", "", "Override storage driver: sqlite or postgres")
	flags.StringVar(&opts.dbDSN, "db-dsn", "", "Override storage connection string")
	flags.BoolVar(&opts.noOverrides, "no-overrides", false, "Disable database overrides")

	root.AddCommand(
		newServeCmd(opts),
		newMissingCmd(opts),
		newCacheCmd(opts),
	)
	return root
}

func (o *rootOptions) config() (localization.Config, error) {
	cfg, err := localization.ConfigFromEnv(localization.DefaultConfig())
	if err != nil {
		return cfg, err
	}
	setIf(&cfg.Path, o.path)
	setIf(&cfg.BaseLocale, o.baseLocale)
	setIf(&cfg.Format, o.format)
	setIf(&cfg.Storage.Driver, o.dbDriver)
	setIf(&cfg.Storage.DSN, o.dbDSN)
	if o.noOverrides {
		cfg.Features.Overrides = false
	}
	return cfg, nil
}

func (o *rootOptions) build(ctx context.Context) (*localization.Module, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	module, err := moduleBuilder(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap module: %w", err)
	}
	return module, nil
}

func setIf(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	var shutdownTimeout time.Duration
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the admin endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			module, err := opts.build(ctx)
			if err != nil {
				return err
			}
			defer module.Close()

			server, err := newServer(module, addr)
			if err != nil {
				return err
			}
			return serve(ctx, server, shutdownTimeout, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "Grace period for in-flight requests")
	return cmd
}

func newServer(module *localization.Module, addr string) (*http.Server, error) {
	mux := http.NewServeMux()
	if err := module.Register(mux); err != nil {
		return nil, err
	}
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return &http.Server{
		Addr:              addr,
		Handler:           module.Middleware()(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}, nil
}

func serve(ctx context.Context, server *http.Server, grace time.Duration, out io.Writer) error {
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(out, "listening on %s\n", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newMissingCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "missing",
		Short: "Report keys missing from each locale",
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := opts.build(cmd.Context())
			if err != nil {
				return err
			}
			defer module.Close()

			index, err := module.Editor().Index(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(index)
			}
			fmt.Fprintf(out, "base locale %s, %d file(s), %d missing key(s)\n", index.BaseLocale, len(index.Files), index.TotalMissing)
			for _, file := range index.Files {
				gaps := index.Missing[file]
				for _, locale := range slices.Sorted(maps.Keys(gaps)) {
					for key, base := range gaps[locale].All() {
						fmt.Fprintf(out, "%s\t%s\t%s\t%q\n", file, locale, key, base)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full report as JSON")
	return cmd
}

func newCacheCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Maintain the override cache",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear [locale...]",
			Short: "Drop cached overrides for the given locales, or all of them",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withCommands(cmd, opts, func(ctx context.Context, set *localization.CommandHandlers) error {
					return set.Invalidate.Execute(ctx, overridescmd.InvalidateOverrideCacheCommand{Locales: args})
				}, "override cache cleared")
			},
		},
		&cobra.Command{
			Use:   "warm [locale...]",
			Short: "Preload cached overrides for the given locales, or all of them",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withCommands(cmd, opts, func(ctx context.Context, set *localization.CommandHandlers) error {
					return set.Warm.Execute(ctx, overridescmd.WarmOverrideCacheCommand{Locales: args})
				}, "override cache warmed")
			},
		},
	)
	return cmd
}

func withCommands(cmd *cobra.Command, opts *rootOptions, run func(context.Context, *localization.CommandHandlers) error, done string) error {
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(cfg.Cache.Driver), "redis") {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: cache driver %q is local to this process; a running server keeps its own cache (set LOCALIZATION_CACHE_DRIVER=redis to share it)\n", cfg.Cache.Driver)
	}

	module, err := moduleBuilder(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	set := module.Commands()
	if set == nil {
		return errors.New("overrides are disabled")
	}
	if err := run(cmd.Context(), set); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), done)
	return nil
}
