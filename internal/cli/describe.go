package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wippyai/unionfn"
	"github.com/wippyai/unionfn/descriptor"
	"github.com/wippyai/unionfn/examples/calculator"
	"github.com/wippyai/unionfn/examples/collatz"
	"github.com/wippyai/unionfn/examples/counter"
	"github.com/wippyai/unionfn/examples/mathfn"
	"github.com/wippyai/unionfn/interp"
)

// builtinSets maps command line names to the sets compiled into the binary.
var builtinSets = map[string]func() unionfn.SetInfo{
	"calculator": func() unionfn.SetInfo { return calculator.Set().Info() },
	"collatz":    func() unionfn.SetInfo { return collatz.Set().Info() },
	"counter":    func() unionfn.SetInfo { return counter.Set().Info() },
	"interp":     func() unionfn.SetInfo { return interp.Set().Info() },
	"mathfn":     func() unionfn.SetInfo { return mathfn.Set().Info() },
}

// SetNames returns the names accepted by describe, sorted.
func SetNames() []string {
	names := make([]string, 0, len(builtinSets))
	for name := range builtinSets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type sizeAlign struct {
	Size  uint64 `yaml:"size"`
	Align uint64 `yaml:"align"`
}

type opLayout struct {
	Name      string    `yaml:"name"`
	Go        sizeAlign `yaml:"go"`
	Canonical sizeAlign `yaml:"canonical"`
}

type describeResult struct {
	Set     *descriptor.Set `yaml:"set"`
	Layout  []opLayout      `yaml:"layout"`
	Payload opLayout        `yaml:"payload"`
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "describe [set]",
		Short: "Describe the built-in operation sets",
		Long: fmt.Sprintf(`Print the operation descriptor of a built-in set together with the Go
payload layout and the canonical layout of each operation. Without an
argument every set is described.

Sets: %v`, SetNames()),
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: SetNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := SetNames()
			if len(args) == 1 {
				if _, ok := builtinSets[args[0]]; !ok {
					return NewExitError(ExitCommandError,
						fmt.Sprintf("unknown set %q: must be one of %v", args[0], names))
				}
				names = args
			}

			results := make([]describeResult, 0, len(names))
			for _, name := range names {
				res, err := describe(builtinSets[name]())
				if err != nil {
					return WrapExitError(ExitFailure, "describe "+name, err)
				}
				results = append(results, res)
			}

			out := cmd.OutOrStdout()
			if rootOpts.Format == "yaml" {
				if len(results) == 1 {
					return writeYAML(out, results[0])
				}
				return writeYAML(out, results)
			}
			for i, res := range results {
				if i > 0 {
					fmt.Fprintln(out)
				}
				if err := writeDescription(out, res); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func describe(info unionfn.SetInfo) (describeResult, error) {
	set, err := descriptor.FromInfo(info)
	if err != nil {
		return describeResult{}, err
	}
	canonical := set.Layout()

	res := describeResult{
		Set:    set,
		Layout: make([]opLayout, len(info.Ops)),
	}
	res.Payload = opLayout{
		Name:      "payload",
		Go:        sizeAlign{uint64(info.Payload.Size()), uint64(info.Payload.Align())},
		Canonical: sizeAlign{uint64(canonical.Payload.Size), uint64(canonical.Payload.Align)},
	}
	for i, op := range info.Ops {
		c := canonical.Operations[i]
		res.Layout[i] = opLayout{
			Name:      op.Name,
			Go:        sizeAlign{uint64(op.Size), uint64(op.Align)},
			Canonical: sizeAlign{uint64(c.Size), uint64(c.Align)},
		}
	}
	return res, nil
}

func writeDescription(w io.Writer, res describeResult) error {
	if err := res.Set.WriteText(w); err != nil {
		return err
	}
	fmt.Fprintln(w, "go layout:")
	for _, l := range res.Layout {
		fmt.Fprintf(w, "  %-12s size=%d align=%d\n", l.Name, l.Go.Size, l.Go.Align)
	}
	_, err := fmt.Fprintf(w, "  %-12s size=%d align=%d\n", "payload", res.Payload.Go.Size, res.Payload.Go.Align)
	return err
}
