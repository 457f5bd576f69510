// Package cli implements the unionfn command line.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/unionfn"
	"github.com/wippyai/unionfn/descriptor"
	"github.com/wippyai/unionfn/internal/wasmgen"
	"github.com/wippyai/unionfn/interp"
	"github.com/wippyai/unionfn/oracle"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "yaml"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "yaml"}

// NewRootCommand creates the root command for the unionfn CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "unionfn",
		Short: "Tagged and call-optimized operation dispatch",
		Long: `Run, benchmark and inspect programs built from unionfn operation sets.

Programs are YAML files holding interpreter assembly. Every program can be
dispatched through optimized closures, through its tagged form, through a
type switch, or as WebAssembly lowered and run by wazero.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return configureLogging(opts.Verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log engine events to stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|yaml)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewBenchCommand(opts))
	cmd.AddCommand(NewDisasmCommand(opts))
	cmd.AddCommand(NewDescribeCommand(opts))
	cmd.AddCommand(NewStepCommand(opts))

	return cmd
}

// configureLogging installs a development logger in every package when
// verbose is set.
func configureLogging(verbose bool) error {
	if !verbose {
		return nil
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return WrapExitError(ExitCommandError, "create logger", err)
	}
	unionfn.SetLogger(l.Named("unionfn"))
	descriptor.SetLogger(l.Named("descriptor"))
	interp.SetLogger(l.Named("interp"))
	wasmgen.SetLogger(l.Named("wasmgen"))
	oracle.SetLogger(l.Named("oracle"))
	return nil
}
