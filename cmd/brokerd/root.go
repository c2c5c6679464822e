package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"chatbroker/internal/config"
	"chatbroker/internal/query"
	"chatbroker/internal/registry"
)

// options collects persistent and serve flags. Empty values defer to the
// config file, then the environment, then package defaults.
type options struct {
	configPath string
	addr       string
	logLevel   string
	logFormat  string
	getenv     func(string) string
}

func newRootCmd() *cobra.Command { return newRootCmdWith(os.Getenv) }

// newRootCmdWith builds the command tree reading the environment through getenv.
func newRootCmdWith(getenv func(string) string) *cobra.Command {
	opts := &options{getenv: getenv}
	root := &cobra.Command{
		Use:           "brokerd",
		Short:         "Resilient multi-provider chat broker",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (.yaml, .yml, .json or .toml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error (defaults BROKERD_LOG_LEVEL or info)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format: json|console")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	for _, c := range []*cobra.Command{root, serve} {
		c.Flags().StringVar(&opts.addr, "addr", "", "HTTP listen address (defaults BROKERD_ADDR or :8080)")
	}

	providers := &cobra.Command{
		Use:   "providers",
		Short: "Print the resolved provider table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return printProviders(cmd.OutOrStdout(), providerTable(cfg, opts.getenv))
		},
	}

	classify := &cobra.Command{
		Use:     "classify <text...>",
		Short:   "Print the facets and entities extracted from a query",
		Example: "  brokerd classify What is the price of AAPL?",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printQuery(cmd.OutOrStdout(), query.Classify(strings.Join(args, " ")))
			return nil
		},
	}

	root.AddCommand(serve, providers, classify)
	return root
}

// loadConfig reads the optional config file and applies the environment.
func loadConfig(opts *options) (config.Config, error) {
	var cfg config.Config
	if opts.configPath != "" {
		c, err := config.Load(opts.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	config.ApplyEnv(&cfg, opts.getenv)
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.LogFormat = opts.logFormat
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

// providerTable is the configured table, or the built-in one when the
// configuration lists no providers.
func providerTable(cfg config.Config, getenv func(string) string) []config.Provider {
	if len(cfg.Providers) > 0 {
		return cfg.Providers
	}
	return registry.Defaults(getenv)
}

func printProviders(w io.Writer, ps []config.Provider) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tKIND\tFACETS\tINPUT\tTIMEOUT\tCACHE TTL\tENABLED")
	for _, p := range ps {
		d, err := registry.Descriptor(p)
		if err != nil {
			return err
		}
		facets := d.Facets.String()
		if d.AnyFacet {
			facets = registry.AnyFacet
		}
		kind := string(d.Kind)
		if d.Fallback {
			kind += " (fallback)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%t\n",
			d.Name, d.Type, kind, facets, d.Input, d.Timeout, d.CacheTTL, p.IsEnabled())
	}
	return tw.Flush()
}

func printQuery(w io.Writer, q query.Query) {
	fmt.Fprintf(w, "normalized: %s\n", q.Normalized())
	fmt.Fprintf(w, "facets:     %s\n", q.Facets())
	entities := map[string]string{}
	for _, in := range []query.Input{query.InputStock, query.InputCrypto, query.InputSearch} {
		if v := q.Value(in).UnwrapOr(""); v != "" {
			entities[string(in)] = v
		}
	}
	names := make([]string, 0, len(entities))
	for k := range entities {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(w, "%-11s %s\n", k+":", entities[k])
	}
}
