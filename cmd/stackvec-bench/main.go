// main.go bootstraps stackvec-bench: it builds the root Cobra command, binds
// Viper configuration and runs the benchmark suite with a signal-aware context.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pavanmanishd/stackvec"
	"github.com/pavanmanishd/stackvec/internal/benchsuite"
	"github.com/pavanmanishd/stackvec/internal/config"
	"github.com/pavanmanishd/stackvec/internal/logging"
	"github.com/pavanmanishd/stackvec/internal/report"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	handleError(rootCmd.ErrOrStderr(), err)
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := config.NewOptions()
	cmd := &cobra.Command{
		Use:           "stackvec-bench",
		Short:         "Compare scoped stackvec vectors with heap-backed slices",
		Long:          "stackvec-bench runs the create, compute8 and pooled scenarios and reports time and allocations per operation.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuite(cmd, opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "Log level for diagnostics on stderr (debug, info, warn, error, off)")
	opts.AddFlags(cmd)
	listCmd := newListCommand()
	cmd.AddCommand(listCmd)
	cmd.Example = `  # Run every scenario at the default sizes
  stackvec-bench

  # Compare creation costs only, as JSON
  stackvec-bench --scenarios create/vector-reserve,create/slice-reserve --sizes 8,1024 -o json

  # Quick smoke run
  STACKVEC_BENCH_TIME=100x stackvec-bench --log-level off`
	bindViper(cmd)
	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range benchsuite.Scenarios() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func runSuite(cmd *cobra.Command, opts *config.Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	logger, err := logging.New(opts.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	stackvec.SetLogger(logger.Named("stackvec"))
	defer stackvec.SetLogger(nil)

	logger.Debug("starting suite",
		zap.Strings("scenarios", opts.Scenarios),
		zap.Ints("sizes", opts.Sizes),
		zap.String("bench_time", opts.BenchTime),
		zap.Bool("debug_assertions", stackvec.DebugAssertions))
	if stackvec.DebugAssertions {
		logger.Warn("contract checks are compiled in; build with -tags stackvec_release for representative timings")
	}

	results, err := benchsuite.Run(cmd.Context(), opts, logger)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	return report.Write(out, opts.Output, results, report.ColorEnabled(opts.ColorMode, out))
}

// bindViper lets STACKVEC_* variables and an optional config file supply any
// flag the user did not set on the command line.
func bindViper(cmd *cobra.Command) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix("STACKVEC")
	v.AutomaticEnv()
	configFile := os.Getenv("STACKVEC_CONFIG")
	configureConfigFile(v, configFile)

	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		flagSets := []*pflag.FlagSet{c.Flags(), c.InheritedFlags()}
		for _, fs := range flagSets {
			if err := v.BindPFlags(fs); err != nil {
				return err
			}
		}
		if err := readConfigFile(v, configFile != ""); err != nil {
			return err
		}
		for _, fs := range flagSets {
			var setErr error
			fs.VisitAll(func(f *pflag.Flag) {
				if f.Changed || !v.IsSet(f.Name) || setErr != nil {
					return
				}
				val := flagValue(v.Get(f.Name))
				if val == "" {
					return
				}
				if err := f.Value.Set(val); err != nil {
					setErr = fmt.Errorf("invalid value %q for %s from environment or config: %w", val, f.Name, err)
				}
			})
			if setErr != nil {
				return setErr
			}
		}
		return nil
	}
}

// flagValue formats a Viper value the way pflag parses it back; lists from
// YAML become comma-separated.
func flagValue(raw any) string {
	if list, ok := raw.([]any); ok {
		parts := make([]string, len(list))
		for i, item := range list {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprintf("%v", raw)
}

func handleError(w io.Writer, err error) {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return
	}
	message := err.Error()
	switch {
	case errors.Is(err, context.Canceled):
		message = fmt.Sprintf("%s\nHint: the run was interrupted; results gathered so far were discarded.", err)
	case errors.Is(err, benchsuite.ErrUnknownScenario):
		message = fmt.Sprintf("%s\nHint: run 'stackvec-bench list' to see the scenario names.", err)
	case errors.Is(err, stackvec.ErrFrameExhausted):
		message = fmt.Sprintf("%s\nHint: raise --max-bytes or lower --sizes.", err)
	}
	fmt.Fprintf(w, "Error: %s\n", message)
}

func configureConfigFile(v *viper.Viper, explicitPath string) {
	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		return
	}
	v.SetConfigName("config")
	for _, dir := range configSearchDirs() {
		v.AddConfigPath(dir)
	}
}

func readConfigFile(v *viper.Viper, strict bool) error {
	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if errors.As(err, &cfgErr) && !strict {
			return nil
		}
		return err
	}
	return nil
}

func configSearchDirs() []string {
	added := make(map[string]struct{})
	var dirs []string
	add := func(path string) {
		if path == "" {
			return
		}
		if _, ok := added[path]; ok {
			return
		}
		added[path] = struct{}{}
		dirs = append(dirs, path)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		add(filepath.Join(xdg, "stackvec"))
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		add(filepath.Join(home, ".config", "stackvec"))
	}
	return dirs
}
