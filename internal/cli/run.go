package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Dispatch string
	Inputs   []int64
}

type runResult struct {
	Program  string  `yaml:"program"`
	Dispatch string  `yaml:"dispatch"`
	Inputs   []int64 `yaml:"inputs,flow"`
	Result   *int64  `yaml:"result,omitempty"`
	Trap     string  `yaml:"trap,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <program.yaml>",
		Short: "Run a program and print its result",
		Long: `Run a program file with one of the dispatch modes.

The file's expectation, if any, is checked: a wrong result or an
unexpected trap exits with status 1.

Example:
  unionfn run interp/testdata/programs/fib.yaml
  unionfn run --dispatch wasm --input 30 interp/testdata/programs/fib.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Dispatch, "dispatch", DispatchOpt, "dispatch mode (opt|tagged|switch|wasm)")
	cmd.Flags().Int64SliceVar(&opts.Inputs, "input", nil, "program inputs, replacing the file's")

	return cmd
}

func runProgram(cmd *cobra.Command, opts *RunOptions, path string) error {
	f, err := loadProgram(path, opts.Inputs)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	r, err := newRunner(ctx, f, opts.Dispatch)
	if err != nil {
		return err
	}
	defer r.close(ctx)

	got, runErr := r.run(ctx)
	res := runResult{Program: f.Name, Dispatch: opts.Dispatch, Inputs: f.Inputs}
	if runErr != nil {
		res.Trap = runErr.Error()
	} else {
		res.Result = &got
	}

	out := cmd.OutOrStdout()
	if opts.Format == "yaml" {
		if err := writeYAML(out, res); err != nil {
			return err
		}
	} else if runErr != nil {
		fmt.Fprintf(out, "%s: trap: %v\n", f.Name, runErr)
	} else {
		fmt.Fprintf(out, "%s: %d\n", f.Name, got)
	}

	// Overridden inputs invalidate the recorded expectation.
	if opts.Inputs != nil {
		if runErr != nil {
			return WrapExitError(ExitFailure, "program trapped", runErr)
		}
		return nil
	}
	if err := f.Verify(got, runErr); err != nil {
		return WrapExitError(ExitFailure, "unexpected outcome", err)
	}
	return nil
}
