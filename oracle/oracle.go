// Package oracle runs interpreter programs as real WebAssembly.
//
// Programs are lowered by internal/wasmgen and executed with wazero, which
// gives an independent implementation of the instruction semantics to
// check the interpreter against.
package oracle

import (
	"context"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/unionfn/errors"
	"github.com/wippyai/unionfn/internal/wasmgen"
	"github.com/wippyai/unionfn/interp"
)

// Config holds configuration for an Oracle.
type Config struct {
	// Interpreter runs modules with wazero's interpreter instead of the
	// compiler.
	Interpreter bool

	// StackCapacity bounds the stack height of lowered programs.
	// 0 means interp.DefaultStackCapacity.
	StackCapacity int
}

// Oracle owns a wazero runtime that lowered programs are compiled into.
type Oracle struct {
	runtime  wazero.Runtime
	capacity int
}

// New creates an oracle. A nil cfg uses defaults.
func New(ctx context.Context, cfg *Config) *Oracle {
	runtimeCfg := wazero.NewRuntimeConfig()
	capacity := interp.DefaultStackCapacity
	if cfg != nil {
		if cfg.Interpreter {
			runtimeCfg = wazero.NewRuntimeConfigInterpreter()
		}
		if cfg.StackCapacity > 0 {
			capacity = cfg.StackCapacity
		}
	}
	return &Oracle{
		runtime:  wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		capacity: capacity,
	}
}

// Close releases the runtime and every program compiled by it.
func (o *Oracle) Close(ctx context.Context) error {
	return o.runtime.Close(ctx)
}

// Program is a lowered program instantiated in the runtime.
// A Program is used by one goroutine at a time.
type Program struct {
	module api.Module
	fn     api.Function
	params []uint64
}

// Compile lowers prog for the given number of inputs and instantiates it.
func (o *Oracle) Compile(ctx context.Context, prog interp.Program, inputs int) (*Program, error) {
	bin, err := wasmgen.Lower(prog, inputs, o.capacity)
	if err != nil {
		return nil, err
	}

	compiled, err := o.runtime.CompileModule(ctx, bin)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLower, errors.KindInvalidInput, err, "compile lowered module")
	}
	mod, err := o.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLower, errors.KindInvalidInput, err, "instantiate lowered module")
	}

	Logger().Debug("compiled program",
		zap.Int("instructions", len(prog)),
		zap.Int("inputs", inputs),
		zap.Int("bytes", len(bin)))

	return &Program{
		module: mod,
		fn:     mod.ExportedFunction(wasmgen.Export),
		params: make([]uint64, inputs),
	}, nil
}

// Run calls the program with inputs and returns its result. Traps are
// returned as execute/trap errors caused by the matching interp.TrapCode.
func (p *Program) Run(ctx context.Context, inputs []int64) (int64, error) {
	if len(inputs) != len(p.params) {
		return 0, errors.InvalidInput(errors.PhaseExecute,
			"program takes %d inputs, got %d", len(p.params), len(inputs))
	}
	for i, v := range inputs {
		p.params[i] = uint64(v)
	}
	res, err := p.fn.Call(ctx, p.params...)
	if err != nil {
		return 0, errors.New(errors.PhaseExecute, errors.KindTrap).
			Cause(trapOf(err)).
			Detail("%v", err).
			Build()
	}
	return int64(res[0]), nil
}

// Close releases the module instance.
func (p *Program) Close(ctx context.Context) error {
	return p.module.Close(ctx)
}

// trapOf maps a wazero runtime error to the interpreter trap it stands for.
func trapOf(err error) interp.TrapCode {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "integer divide by zero"):
		return interp.TrapDivByZero
	case strings.Contains(msg, "integer overflow"):
		return interp.TrapIntegerOverflow
	}
	return interp.TrapUnreachable
}
