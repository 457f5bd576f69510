package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// BenchOptions holds flags for the bench command.
type BenchOptions struct {
	*RootOptions
	Iterations int
	Dispatches []string
	Inputs     []int64
}

type benchResult struct {
	Dispatch   string  `yaml:"dispatch"`
	Iterations int     `yaml:"iterations"`
	NsPerRun   float64 `yaml:"ns_per_run"`
	Result     int64   `yaml:"result"`
}

// NewBenchCommand creates the bench command.
func NewBenchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BenchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bench <program.yaml>",
		Short: "Time a program under every dispatch mode",
		Long: `Run a program repeatedly under each dispatch mode and report the mean
time per run. All modes must agree on the result.

Example:
  unionfn bench --iterations 200 --input 10000 interp/testdata/programs/countdown.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return benchProgram(cmd, opts, args[0])
		},
	}

	cmd.Flags().IntVarP(&opts.Iterations, "iterations", "n", 1000, "runs per dispatch mode")
	cmd.Flags().StringSliceVar(&opts.Dispatches, "dispatch", Dispatches, "dispatch modes to time")
	cmd.Flags().Int64SliceVar(&opts.Inputs, "input", nil, "program inputs, replacing the file's")

	return cmd
}

func benchProgram(cmd *cobra.Command, opts *BenchOptions, path string) error {
	if opts.Iterations <= 0 {
		return NewExitError(ExitCommandError, "iterations must be positive")
	}
	f, err := loadProgram(path, opts.Inputs)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	results := make([]benchResult, 0, len(opts.Dispatches))
	for _, dispatch := range opts.Dispatches {
		r, err := newRunner(ctx, f, dispatch)
		if err != nil {
			return err
		}
		want, err := r.run(ctx)
		if err != nil {
			r.close(ctx)
			return WrapExitError(ExitFailure, dispatch+" run trapped", err)
		}

		start := time.Now()
		for i := 0; i < opts.Iterations; i++ {
			if _, err := r.run(ctx); err != nil {
				r.close(ctx)
				return WrapExitError(ExitFailure, dispatch+" run trapped", err)
			}
		}
		elapsed := time.Since(start)
		r.close(ctx)

		if len(results) > 0 && results[0].Result != want {
			return NewExitError(ExitFailure, fmt.Sprintf("%s returned %d, %s returned %d",
				dispatch, want, results[0].Dispatch, results[0].Result))
		}
		results = append(results, benchResult{
			Dispatch:   dispatch,
			Iterations: opts.Iterations,
			NsPerRun:   float64(elapsed.Nanoseconds()) / float64(opts.Iterations),
			Result:     want,
		})
	}

	out := cmd.OutOrStdout()
	if opts.Format == "yaml" {
		return writeYAML(out, results)
	}
	fmt.Fprintf(out, "%s (%d iterations)\n", f.Name, opts.Iterations)
	for _, r := range results {
		fmt.Fprintf(out, "  %-8s %14.0f ns/run  %6.2fx\n",
			r.Dispatch, r.NsPerRun, r.NsPerRun/results[0].NsPerRun)
	}
	return nil
}
