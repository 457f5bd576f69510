package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/wippyai/unionfn/interp"
)

type disasmResult struct {
	Program string   `yaml:"program"`
	Code    []string `yaml:"code"`
}

// NewDisasmCommand creates the disasm command.
func NewDisasmCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <program.yaml>",
		Short: "Print the normalized listing of a program",
		Long: `Assemble a program file and print it back one instruction per line,
after a round trip through the call-optimized form.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadProgram(args[0], nil)
			if err != nil {
				return err
			}
			prog, ok := f.Program.Compile().Decompile()
			if !ok {
				return NewExitError(ExitFailure, "program does not decompile")
			}

			out := cmd.OutOrStdout()
			if rootOpts.Format == "yaml" {
				res := disasmResult{Program: f.Name, Code: make([]string, len(prog))}
				for i, instr := range prog {
					res.Code[i] = interp.Format(instr)
				}
				return writeYAML(out, res)
			}
			_, err = io.WriteString(out, interp.Disassemble(prog))
			return err
		},
	}
}
