// Package config holds the benchmark driver's options and the flag plumbing
// that fills them from Cobra, Viper and the environment.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Output formats understood by the report package.
const (
	OutputTable = "table"
	OutputYAML  = "yaml"
	OutputJSON  = "json"
)

// Options holds all CLI configuration used by the benchmark driver.
type Options struct {
	Scenarios []string
	Sizes     []int
	Workers   int
	ChunkSize int
	MaxBytes  int
	BenchTime string
	Seed      uint64
	Output    string
	ColorMode string
	LogLevel  string
}

// DefaultSizes spans 1..1024 in powers of eight.
var DefaultSizes = []int{1, 8, 64, 512, 1024}

// NewOptions returns Options with defaults applied.
func NewOptions() *Options {
	return &Options{
		Sizes:     append([]int(nil), DefaultSizes...),
		Workers:   4,
		BenchTime: "1s",
		Seed:      1,
		Output:    OutputTable,
		ColorMode: "auto",
		LogLevel:  "info",
	}
}

// AddFlags binds configuration flags to the provided Cobra command.
func (o *Options) AddFlags(cmd *cobra.Command) {
	o.BindFlags(cmd.Flags())
}

// BindFlags attaches the driver flags to fs and returns their names.
func (o *Options) BindFlags(fs *pflag.FlagSet) []string {
	var names []string
	fs.StringSliceVarP(&o.Scenarios, "scenarios", "s", o.Scenarios, "Scenarios to run (repeat or comma-separate); empty runs all, see 'list'")
	names = append(names, "scenarios")
	fs.IntSliceVar(&o.Sizes, "sizes", o.Sizes, "Vector capacities for the create/* and pooled/* scenarios")
	names = append(names, "sizes")
	fs.IntVarP(&o.Workers, "workers", "w", o.Workers, "Concurrent workers for pooled/* scenarios")
	names = append(names, "workers")
	fs.IntVar(&o.ChunkSize, "chunk-size", o.ChunkSize, "Frame chunk size in bytes; 0 uses the library default")
	names = append(names, "chunk-size")
	fs.IntVar(&o.MaxBytes, "max-bytes", o.MaxBytes, "Per-frame reservation cap in bytes; 0 means none")
	names = append(names, "max-bytes")
	fs.StringVar(&o.BenchTime, "bench-time", o.BenchTime, "Run time per scenario, a duration like 500ms or an iteration count like 1000x")
	names = append(names, "bench-time")
	fs.Uint64Var(&o.Seed, "seed", o.Seed, "Seed for the compute8 inputs")
	names = append(names, "seed")
	fs.StringVarP(&o.Output, "output", "o", o.Output, "Output format: table, yaml, json")
	names = append(names, "output")
	fs.StringVar(&o.ColorMode, "color", o.ColorMode, "Colorize table output: auto, always, never")
	names = append(names, "color")
	return names
}

// Validate ensures the options are coherent and normalizes list values.
func (o *Options) Validate() error {
	var scenarios []string
	for _, s := range o.Scenarios {
		s = strings.TrimSpace(s)
		if s != "" {
			scenarios = append(scenarios, s)
		}
	}
	o.Scenarios = scenarios

	if len(o.Sizes) == 0 {
		return fmt.Errorf("at least one size is required")
	}
	for _, n := range o.Sizes {
		if n <= 0 {
			return fmt.Errorf("invalid size %d: sizes must be positive", n)
		}
	}
	if o.Workers <= 0 {
		return fmt.Errorf("invalid workers %d: must be positive", o.Workers)
	}
	if o.ChunkSize < 0 {
		return fmt.Errorf("invalid chunk size %d: must not be negative", o.ChunkSize)
	}
	if o.MaxBytes < 0 {
		return fmt.Errorf("invalid max bytes %d: must not be negative", o.MaxBytes)
	}
	if err := validateBenchTime(o.BenchTime); err != nil {
		return err
	}

	o.Output = strings.ToLower(strings.TrimSpace(o.Output))
	switch o.Output {
	case OutputTable, OutputYAML, OutputJSON:
	case "":
		o.Output = OutputTable
	default:
		return fmt.Errorf("unsupported output %q (expected table, yaml, or json)", o.Output)
	}

	o.ColorMode = strings.ToLower(strings.TrimSpace(o.ColorMode))
	switch o.ColorMode {
	case "auto", "always", "never":
	case "":
		o.ColorMode = "auto"
	default:
		return fmt.Errorf("unsupported color mode %q (expected auto, always, or never)", o.ColorMode)
	}
	return nil
}

// validateBenchTime accepts the forms testing's -benchtime flag accepts.
func validateBenchTime(v string) error {
	if n, ok := strings.CutSuffix(v, "x"); ok {
		count, err := strconv.Atoi(n)
		if err != nil || count <= 0 {
			return fmt.Errorf("invalid bench time %q: iteration count must be a positive integer", v)
		}
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid bench time %q: %w", v, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid bench time %q: must be positive", v)
	}
	return nil
}
