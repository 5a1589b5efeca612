package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/toyz/metamodel/internal/cli"
)

// reported marks an error the diagnostic reporter already printed
type reported struct{ error }

func (r reported) Unwrap() error { return r.error }

type rootFlags struct {
	config   string
	envFile  string
	verbose  bool
	format   string
	excludes []string
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:   "metamodel",
		Short: "Introspect Go domain types into a validated metamodel",
		Long: `metamodel scans Go packages for struct types marked //meta::object and
builds their object specifications: properties, collections and actions,
each with the facets its annotations, naming conventions and supporting
methods contribute.

The metamodel is validated as a whole; every failure is reported at once.

Configuration is read from metamodel.yaml (or --config), then overridden
by METAMODEL_* variables from the environment or --env-file, then by flags.

Directory Patterns:
  ./...              Scan current directory and all subdirectories recursively
  ./internal/...     Scan internal directory and all its subdirectories

Exit Codes:
  0  - Success
  1  - Invalid metamodel, scan or configuration error
  3  - Panic or unexpected system error`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Configuration file (default: ./metamodel.yaml when present)")
	pf.StringVar(&flags.envFile, "env-file", "", "Read METAMODEL_* variables from a .env file")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose output and detailed error reporting")
	pf.StringVarP(&flags.format, "format", "f", "", "Output format of describe and export: yaml or json")
	pf.StringSliceVar(&flags.excludes, "exclude", nil, "Doublestar patterns of files to skip (replaces the configured ones)")

	root.AddCommand(
		newValidateCommand(flags),
		newDescribeCommand(flags),
		newExportCommand(flags),
		newServeCommand(flags),
		newWatchCommand(flags),
	)
	return root
}

// loadConfig layers the configuration file, the environment and the flags
func loadConfig(cmd *cobra.Command, flags *rootFlags, dirs []string, overrides ...func(*cli.Config)) (cli.Config, error) {
	cfg, err := cli.LoadConfig(flags.config)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(flags.envFile); err != nil {
		return cfg, err
	}
	if len(dirs) > 0 {
		cfg.Directories = dirs
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = flags.verbose
	}
	if cmd.Flags().Changed("format") {
		cfg.Format = flags.format
	}
	if cmd.Flags().Changed("exclude") {
		cfg.Excludes = flags.excludes
	}
	for _, override := range overrides {
		override(&cfg)
	}
	return cfg, cfg.Validate()
}

// newRunner builds a runner for cmd. Progress goes to out, errors to the
// command's error stream.
func newRunner(cmd *cobra.Command, cfg cli.Config, out io.Writer) *cli.Runner {
	errOut := cmd.ErrOrStderr()
	if out == os.Stdout && errOut == os.Stderr {
		return cli.NewRunner(cfg)
	}
	return cli.NewRunner(cfg, cli.WithOutput(out, errOut))
}

// run loads the configuration and hands a runner to fn, reporting any error
func run(cmd *cobra.Command, flags *rootFlags, dirs []string, progress io.Writer, fn func(*cli.Runner) error, overrides ...func(*cli.Config)) error {
	cfg, err := loadConfig(cmd, flags, dirs, overrides...)
	if err != nil {
		cli.NewDiagnosticReporter(cmd.ErrOrStderr(), flags.verbose).ReportError(err)
		return reported{err}
	}
	r := newRunner(cmd, cfg, progress)
	if err := fn(r); err != nil {
		r.Report(err)
		return reported{err}
	}
	return nil
}

func newValidateCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [directories...]",
		Short: "Build the metamodel and report every failure",
		Example: `  metamodel validate ./...
  metamodel validate --verbose ./internal/domain/...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags, args, cmd.OutOrStdout(), func(r *cli.Runner) error {
				return r.Validate(cmd.Context())
			})
		},
	}
}

func newDescribeCommand(flags *rootFlags) *cobra.Command {
	var types []string
	cmd := &cobra.Command{
		Use:   "describe [directories...]",
		Short: "Print object specifications",
		Example: `  metamodel describe ./...
  metamodel describe -t billing.Invoice -f json ./...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags, args, cmd.ErrOrStderr(), func(r *cli.Runner) error {
				return r.Describe(cmd.Context(), cmd.OutOrStdout(), types...)
			})
		},
	}
	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "Fully qualified type to describe (repeatable, default: all)")
	return cmd
}

func newExportCommand(flags *rootFlags) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export [directories...]",
		Short: "Write the whole metamodel, failures included",
		Example: `  metamodel export -o metamodel.yaml ./...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags, args, cmd.ErrOrStderr(), func(r *cli.Runner) error {
				w := cmd.OutOrStdout()
				if output != "" {
					f, err := os.Create(output)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				return r.Export(cmd.Context(), w)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of standard output")
	return cmd
}

func newServeCommand(flags *rootFlags) *cobra.Command {
	var (
		addr   string
		server string
		watch  bool
	)
	cmd := &cobra.Command{
		Use:   "serve [directories...]",
		Short: "Serve the metamodel over HTTP",
		Long: `Serve exposes the metamodel on an Echo, Gin or Fiber server:

  GET /health        readiness, 503 while the metamodel is invalid
  GET /model         the whole metamodel
  GET /specs         specification names
  GET /specs/:name   one specification
  GET /failures      validation failures
  GET /metrics       Prometheus metrics

Responses are JSON; add ?format=yaml for YAML.`,
		Example: `  metamodel serve --server gin --addr :9090 --watch ./...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags, args, cmd.OutOrStdout(), func(r *cli.Runner) error {
				return r.Serve(cmd.Context(), watch)
			}, func(cfg *cli.Config) {
				if addr != "" {
					cfg.Server.Addr = addr
				}
				if server != "" {
					cfg.Server.Framework = server
				}
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from configuration, :8080)")
	cmd.Flags().StringVar(&server, "server", "", "Server framework: echo, gin or fiber")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Rebuild the metamodel when Go files change")
	return cmd
}

func newWatchCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [directories...]",
		Short: "Validate on every change of the scanned Go files",
		Example: `  metamodel watch ./internal/...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags, args, cmd.OutOrStdout(), func(r *cli.Runner) error {
				live, mm, err := r.Load(cmd.Context())
				if mm == nil {
					return err
				}
				if err != nil {
					r.Report(err)
				}
				return r.Watch(cmd.Context(), live, mm)
			})
		},
	}
}
