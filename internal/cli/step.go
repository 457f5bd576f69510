package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/unionfn/interp"
)

// StepOptions holds flags for the step command.
type StepOptions struct {
	*RootOptions
	Inputs   []int64
	MaxSteps uint64
	Plain    bool
}

// NewStepCommand creates the step command.
func NewStepCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StepOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "step <program.yaml>",
		Short: "Step through a program one instruction at a time",
		Long: `Execute a program one optimized instruction at a time, showing the
instruction pointer and the stack.

On a terminal this opens an interactive stepper. Otherwise, or with
--plain, every executed instruction is printed as a trace.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadProgram(args[0], opts.Inputs)
			if err != nil {
				return err
			}
			if f.Config.MaxSteps == 0 {
				f.Config.MaxSteps = opts.MaxSteps
			}

			out := cmd.OutOrStdout()
			if file, ok := out.(*os.File); ok && !opts.Plain && isTerminal(file) {
				_, height, err := term.GetSize(int(file.Fd()))
				if err != nil {
					height = 24
				}
				p := tea.NewProgram(newStepper(f, height), tea.WithAltScreen())
				_, err = p.Run()
				return err
			}
			return writeTrace(out, f)
		},
	}

	cmd.Flags().Int64SliceVar(&opts.Inputs, "input", nil, "program inputs, replacing the file's")
	cmd.Flags().Uint64Var(&opts.MaxSteps, "max-steps", 100_000, "step limit when the file sets none")
	cmd.Flags().BoolVar(&opts.Plain, "plain", false, "print a trace instead of the interactive stepper")

	return cmd
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// writeTrace executes f step by step and prints each instruction with
// the stack it ran on.
func writeTrace(w io.Writer, f *interp.File) error {
	compiled := f.Program.Compile()
	ctx := interp.NewContext(f.Config)
	if err := ctx.Reset(f.Inputs); err != nil {
		return WrapExitError(ExitFailure, "program trapped", err)
	}

	for {
		ip := ctx.IP()
		line := "<out of range>"
		if ip >= 0 && ip < len(f.Program) {
			line = interp.Format(f.Program[ip])
		}
		fmt.Fprintf(w, "%04d  %-16s %s\n", ip, line, formatStack(ctx.Stack.Values()))

		done, err := ctx.Step(compiled)
		if err != nil {
			fmt.Fprintf(w, "trap after %d steps: %v\n", ctx.Steps(), err)
			return WrapExitError(ExitFailure, "program trapped", err)
		}
		if done {
			v, err := ctx.Result()
			if err != nil {
				fmt.Fprintf(w, "trap after %d steps: %v\n", ctx.Steps(), err)
				return WrapExitError(ExitFailure, "program trapped", err)
			}
			fmt.Fprintf(w, "result %d after %d steps\n", v, ctx.Steps())
			return nil
		}
	}
}

func formatStack(values []int64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
