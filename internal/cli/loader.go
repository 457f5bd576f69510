package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/wippyai/unionfn/interp"
	"github.com/wippyai/unionfn/oracle"
)

// Dispatch modes accepted by run and bench.
const (
	DispatchOpt    = "opt"
	DispatchTagged = "tagged"
	DispatchSwitch = "switch"
	DispatchWasm   = "wasm"
)

// Dispatches lists every dispatch mode in benchmark order.
var Dispatches = []string{DispatchOpt, DispatchTagged, DispatchSwitch, DispatchWasm}

// loadProgram reads a program file. Non-nil inputs replace the file's.
func loadProgram(path string, inputs []int64) (*interp.File, error) {
	f, err := interp.LoadProgramFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load program", err)
	}
	if inputs != nil {
		f.Inputs = inputs
	}
	return f, nil
}

// runner executes one program repeatedly with a fixed dispatch mode.
type runner struct {
	run   func(ctx context.Context) (int64, error)
	close func(ctx context.Context) error
}

func newRunner(ctx context.Context, f *interp.File, dispatch string) (*runner, error) {
	if !slices.Contains(Dispatches, dispatch) {
		return nil, NewExitError(ExitCommandError,
			fmt.Sprintf("invalid dispatch %q: must be one of %v", dispatch, Dispatches))
	}
	noClose := func(context.Context) error { return nil }

	if dispatch == DispatchWasm {
		o := oracle.New(ctx, &oracle.Config{StackCapacity: f.Config.StackCapacity})
		p, err := o.Compile(ctx, f.Program, len(f.Inputs))
		if err != nil {
			o.Close(ctx)
			return nil, WrapExitError(ExitCommandError, "lower program", err)
		}
		return &runner{
			run: func(ctx context.Context) (int64, error) {
				return p.Run(ctx, f.Inputs)
			},
			close: o.Close,
		}, nil
	}

	ic := interp.NewContext(f.Config)
	var run func(ctx context.Context) (int64, error)
	switch dispatch {
	case DispatchOpt:
		compiled := f.Program.Compile()
		run = func(context.Context) (int64, error) { return compiled.Run(ic, f.Inputs) }
	case DispatchTagged:
		run = func(context.Context) (int64, error) { return f.Program.Run(ic, f.Inputs) }
	case DispatchSwitch:
		run = func(context.Context) (int64, error) { return f.Program.RunSwitch(ic, f.Inputs) }
	}
	return &runner{run: run, close: noClose}, nil
}
