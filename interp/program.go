package interp

import (
	"go.uber.org/zap"

	"github.com/wippyai/unionfn"
)

// Program is a sequence of tagged instructions.
type Program []Instr

// Compiled is a sequence of call-optimized instructions.
type Compiled []Opt

// Compile converts p to its call-optimized form.
func (p Program) Compile() Compiled {
	return unionfn.Compile[Context, error, Payload](p)
}

// Decompile recovers the tagged form of c.
func (c Compiled) Decompile() (Program, bool) {
	p := make(Program, len(c))
	for i, o := range c {
		instr, ok := FromOpt(o)
		if !ok {
			return nil, false
		}
		p[i] = instr
	}
	return p, true
}

// Run executes c on ctx with inputs pushed in order and returns the value
// on top of the stack at the first return.
func (c Compiled) Run(ctx *Context, inputs []int64) (int64, error) {
	if err := ctx.Reset(inputs); err != nil {
		return 0, err
	}
	for {
		if err := ctx.checkStep(len(c)); err != nil {
			return 0, logTrap(ctx, err)
		}
		if err := c[ctx.ip].Call(ctx); err != nil {
			return 0, logTrap(ctx, trapAt(err, ctx.ip))
		}
		if ctx.done {
			return ctx.Result()
		}
	}
}

// Run executes p like Compiled.Run, converting every instruction to its
// optimized form as it is reached.
func (p Program) Run(ctx *Context, inputs []int64) (int64, error) {
	if err := ctx.Reset(inputs); err != nil {
		return 0, err
	}
	for {
		if err := ctx.checkStep(len(p)); err != nil {
			return 0, logTrap(ctx, err)
		}
		if err := p[ctx.ip].IntoOpt().Call(ctx); err != nil {
			return 0, logTrap(ctx, trapAt(err, ctx.ip))
		}
		if ctx.done {
			return ctx.Result()
		}
	}
}

// RunSwitch executes p like Compiled.Run, dispatching with a type switch
// on the tagged instructions.
func (p Program) RunSwitch(ctx *Context, inputs []int64) (int64, error) {
	if err := ctx.Reset(inputs); err != nil {
		return 0, err
	}
	for {
		if err := ctx.checkStep(len(p)); err != nil {
			return 0, logTrap(ctx, err)
		}
		if err := exec(ctx, p[ctx.ip]); err != nil {
			return 0, logTrap(ctx, trapAt(err, ctx.ip))
		}
		if ctx.done {
			return ctx.Result()
		}
	}
}

func logTrap(ctx *Context, err error) error {
	Logger().Debug("trap",
		zap.Int("ip", ctx.ip),
		zap.Uint64("steps", ctx.steps),
		zap.Int("height", ctx.Stack.Len()),
		zap.Error(err))
	return err
}

// FromOpt recovers the tagged instruction o was packed from.
func FromOpt(o Opt) (Instr, bool) {
	if !o.Valid() || int(o.ID()) >= len(matchers) {
		return nil, false
	}
	return matchers[o.ID()](o)
}

func matcher[T Instr](op *unionfn.Op[Context, error, Payload, T]) func(Opt) (Instr, bool) {
	return func(o Opt) (Instr, bool) {
		v, ok := op.Match(o)
		if !ok {
			return nil, false
		}
		return v, true
	}
}
