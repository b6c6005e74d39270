package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/specialistvlad/sweepgrid/internal/app"
	"github.com/specialistvlad/sweepgrid/internal/config"
)

// EnvPrefix is prepended to a flag's upper-cased name to form the
// environment variable that sets it, e.g. SWEEPGRID_STATUS_PORT.
const EnvPrefix = "SWEEPGRID_"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

type options struct {
	sweeps     []string
	dryRun     bool
	resume     bool
	ledger     string
	envFile    string
	statusPort int
	logFormat  string
	logLevel   string
	limit      int
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var (
		opts   options
		result *app.Config
	)
	build := func(command string, paths []string) error {
		cfg, err := app.NewConfig(app.Config{
			SweepPaths:   paths,
			Sweeps:       opts.sweeps,
			Command:      command,
			DryRun:       opts.dryRun,
			Resume:       opts.resume,
			LedgerPath:   opts.ledger,
			EnvFile:      opts.envFile,
			StatusPort:   opts.statusPort,
			LogFormat:    strings.ToLower(opts.logFormat),
			LogLevel:     strings.ToLower(opts.logLevel),
			HistoryLimit: opts.limit,
		})
		if err != nil {
			return err
		}
		result = cfg
		return nil
	}

	root := &cobra.Command{
		Use:   "sweepgrid [flags] [SWEEP_PATH...]",
		Short: "Submit hyperparameter sweeps of multi-host training jobs.",
		Long: `sweepgrid enumerates every combination of a sweep's axes, derives a run
name and training command for each, and submits them one at a time.

SWEEP_PATH is a single .hcl file or a directory containing .hcl files.
Without it the built-in int8/PRNG-key sweep is used.

Every flag can also be set with an environment variable: SWEEPGRID_ and the
flag name in upper case with dashes replaced by underscores.`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return applyEnv(cmd.Flags())
		},
		RunE: func(_ *cobra.Command, args []string) error {
			return build(app.CommandRun, args)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	history := &cobra.Command{
		Use:   "history",
		Short: "List recorded submissions, most recent first.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return build(app.CommandHistory, nil)
		},
	}
	history.Flags().IntVar(&opts.limit, "limit", 50, "Maximum number of entries to list. 0 lists all.")

	pf := root.PersistentFlags()
	pf.StringVar(&opts.ledger, "ledger", "", "Path to the SQLite submission ledger. Empty disables it.")
	pf.StringVar(&opts.envFile, "env-file", config.DefaultEnvFile, "Dotenv file loaded before reading SWEEPGRID_* variables.")
	pf.StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.StringVar(&opts.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	f := root.Flags()
	f.StringSliceVarP(&opts.sweeps, "sweep", "s", nil, "Name of a sweep to run. Repeatable; defaults to every sweep in declaration order.")
	f.BoolVar(&opts.dryRun, "dry-run", false, "Print what would be submitted without submitting anything.")
	f.BoolVar(&opts.resume, "resume", false, "Skip runs the ledger already records as submitted.")
	f.IntVar(&opts.statusPort, "status-port", 0, "Port for the HTTP status server. 0 is disabled.")

	root.AddCommand(history)
	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)

	if err := root.Execute(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if result == nil {
		// Help was printed.
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "config", result)
	return result, false, nil
}

// applyEnv loads the dotenv file, then sets every flag not given on the
// command line from its SWEEPGRID_* variable.
func applyEnv(flags *pflag.FlagSet) error {
	path, explicit := config.DefaultEnvFile, false
	if f := flags.Lookup("env-file"); f != nil && f.Changed {
		path, explicit = f.Value.String(), true
	} else if v, ok := os.LookupEnv(EnvName("env-file")); ok {
		path, explicit = v, true
	}
	if err := config.LoadEnv(path, explicit); err != nil {
		return err
	}

	var errs []error
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed || f.Name == "help" {
			return
		}
		name := EnvName(f.Name)
		v, ok := os.LookupEnv(name)
		if !ok {
			return
		}
		if err := f.Value.Set(v); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s=%q: %w", name, v, err))
		}
	})
	return errors.Join(errs...)
}

// EnvName returns the environment variable that sets the named flag.
func EnvName(flag string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}
