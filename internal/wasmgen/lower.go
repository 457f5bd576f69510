// Package wasmgen lowers interpreter programs to WebAssembly modules.
//
// Every stack slot becomes a local because the height before each
// instruction is known statically. Control flow is a loop around a
// br_table on an ip local: branching sets ip and restarts the loop,
// sequential instructions fall through.
package wasmgen

import (
	"go.uber.org/zap"

	"github.com/wippyai/unionfn/errors"
	"github.com/wippyai/unionfn/interp"
)

// Export is the name of the lowered function.
const Export = "run"

// Lower compiles prog to a module exporting run(i64 x inputs) -> i64.
// Programs are rejected with KindUnsupported when a reachable instruction
// would trap on the stack: underflow, overflow past capacity, a local
// outside the stack, or a ret_eqz with nothing below its condition. The
// stack height before an instruction must not depend on the path taken.
func Lower(prog interp.Program, inputs, capacity int) ([]byte, error) {
	if capacity <= 0 {
		capacity = interp.DefaultStackCapacity
	}
	if len(prog) == 0 {
		return nil, errors.New(errors.PhaseLower, errors.KindEmpty).
			Detail("program has no instructions").
			Build()
	}
	if inputs < 0 || inputs > capacity {
		return nil, errors.Unsupported(errors.PhaseLower, "inputs exceed stack capacity")
	}

	heights, slots, err := analyze(prog, inputs, capacity)
	if err != nil {
		return nil, err
	}

	g := &gen{w: NewWriter(), n: len(prog), ip: uint32(slots)}
	g.dispatch()
	for i, instr := range prog {
		g.w.Byte(opEnd)
		g.instr(i, instr, heights[i])
	}
	g.w.Byte(opEnd)
	g.w.Byte(opUnreachable)
	g.w.Byte(opEnd)

	m := &Module{Export: Export, Params: inputs, Code: g.w.Bytes()}
	if extra := slots - inputs; extra > 0 {
		m.Locals = append(m.Locals, LocalEntry{Count: uint32(extra), Type: valI64})
	}
	m.Locals = append(m.Locals, LocalEntry{Count: 1, Type: valI32})

	bin := m.Encode()
	Logger().Debug("lowered program",
		zap.Int("instructions", len(prog)),
		zap.Int("inputs", inputs),
		zap.Int("slots", slots),
		zap.Int("bytes", len(bin)))
	return bin, nil
}

// effect describes how an instruction changes the stack height.
type effect struct {
	pops, pushes int
	// local is the addressed slot, or -1.
	local int
	// localAfterPop addresses the slot after the pop, as local.set does.
	localAfterPop bool
}

func effectOf(instr interp.Instr) (effect, bool) {
	switch v := instr.(type) {
	case interp.LocalGet:
		return effect{0, 1, int(v.N), false}, true
	case interp.LocalSet:
		return effect{1, 0, int(v.N), true}, true
	case interp.LocalTee:
		return effect{1, 1, int(v.N), false}, true
	case interp.Drop, interp.Ret, interp.RetEqz, interp.BrEqz:
		return effect{1, 0, -1, false}, true
	case interp.Select:
		return effect{3, 1, -1, false}, true
	case interp.Br:
		return effect{0, 0, -1, false}, true
	case interp.Const:
		return effect{0, 1, -1, false}, true
	}
	if _, _, ok := binaryOp(instr); ok {
		return effect{2, 1, -1, false}, true
	}
	if _, _, ok := unaryOp(instr); ok {
		return effect{1, 1, -1, false}, true
	}
	return effect{}, false
}

// successors returns the instructions control may reach after i.
func successors(i int, instr interp.Instr) []int {
	switch v := instr.(type) {
	case interp.Ret:
		return nil
	case interp.Br:
		return []int{i + int(v.Offset.Int())}
	case interp.BrEqz:
		return []int{i + 1, i + int(v.Offset.Int())}
	}
	return []int{i + 1}
}

// analyze computes the stack height before every instruction, or -1 for
// instructions control never reaches, and the number of slots needed.
func analyze(prog interp.Program, inputs, capacity int) ([]int, int, error) {
	heights := make([]int, len(prog))
	for i := range heights {
		heights[i] = -1
	}
	heights[0] = inputs
	slots := inputs
	work := []int{0}

	for len(work) > 0 {
		i := work[len(work)-1]
		work = work[:len(work)-1]
		instr, h := prog[i], heights[i]

		eff, ok := effectOf(instr)
		if !ok {
			return nil, 0, reject(i, instr, "unknown instruction")
		}
		if h < eff.pops {
			return nil, 0, reject(i, instr, "stack underflow at height %d", h)
		}
		if _, ok := instr.(interp.RetEqz); ok && h < 2 {
			return nil, 0, reject(i, instr, "no result below the condition")
		}
		next := h - eff.pops + eff.pushes
		if next > capacity {
			return nil, 0, reject(i, instr, "stack overflow at height %d", h)
		}
		if eff.local >= 0 {
			limit := h
			if eff.localAfterPop {
				limit = h - eff.pops
			}
			if eff.local >= limit {
				return nil, 0, reject(i, instr, "local %d out of bounds at height %d", eff.local, limit)
			}
		}
		slots = max(slots, h, next)

		for _, s := range successors(i, instr) {
			if s < 0 || s >= len(prog) {
				continue
			}
			switch heights[s] {
			case -1:
				heights[s] = next
				work = append(work, s)
			case next:
			default:
				return nil, 0, reject(s, prog[s],
					"inconsistent stack height %d and %d", heights[s], next)
			}
		}
	}
	return heights, slots, nil
}

func reject(ip int, instr interp.Instr, detail string, args ...any) error {
	args = append([]any{ip}, args...)
	return errors.New(errors.PhaseLower, errors.KindUnsupported).
		Op(interp.Format(instr)).
		Value(ip).
		Detail("ip %d: "+detail, args...).
		Build()
}

type gen struct {
	w  *Writer
	n  int
	ip uint32
}

// dispatch opens the loop and one block per instruction, then branches
// through br_table on ip. Label k+1 lands at instruction k; the default
// label falls into a trap.
func (g *gen) dispatch() {
	g.w.Byte(opLoop)
	g.w.Byte(blockEmpty)
	for k := 0; k <= g.n; k++ {
		g.w.Byte(opBlock)
		g.w.Byte(blockEmpty)
	}
	g.get(g.ip)
	g.w.Byte(opBrTable)
	g.w.WriteU32(uint32(g.n))
	for k := 1; k <= g.n; k++ {
		g.w.WriteU32(uint32(k))
	}
	g.w.WriteU32(0)
	g.w.Byte(opEnd)
	g.w.Byte(opUnreachable)
}

// instr emits the body of instruction i. Blocks of later instructions
// and the loop enclose it, so the loop label is at depth n-1-i.
func (g *gen) instr(i int, instr interp.Instr, h int) {
	if h < 0 {
		g.w.Byte(opUnreachable)
		return
	}
	loop := uint32(g.n - 1 - i)
	top := uint32(h - 1)

	switch v := instr.(type) {
	case interp.LocalGet:
		g.get(v.N)
		g.set(uint32(h))
	case interp.LocalSet:
		g.get(top)
		g.set(v.N)
	case interp.LocalTee:
		g.get(top)
		g.set(v.N)
	case interp.Drop:
	case interp.Select:
		g.get(top - 2)
		g.get(top - 1)
		g.get(top)
		g.w.Byte(opI32WrapI64)
		g.w.Byte(opSelect)
		g.set(top - 2)
	case interp.Ret:
		g.get(top)
		g.w.Byte(opReturn)
	case interp.RetEqz:
		g.eqz(top)
		g.w.Byte(opIf)
		g.w.Byte(blockEmpty)
		g.get(top - 1)
		g.w.Byte(opReturn)
		g.w.Byte(opEnd)
	case interp.Br:
		g.jump(i+int(v.Offset.Int()), loop)
	case interp.BrEqz:
		g.eqz(top)
		g.w.Byte(opIf)
		g.w.Byte(blockEmpty)
		g.jump(i+int(v.Offset.Int()), loop+1)
		g.w.Byte(opEnd)
	case interp.Const:
		g.w.Byte(opI64Const)
		g.w.WriteS64(v.Value)
		g.set(uint32(h))
	default:
		if op, cmp, ok := binaryOp(instr); ok {
			g.get(top - 1)
			g.get(top)
			g.w.Byte(op)
			if cmp {
				g.w.Byte(opI64ExtendU)
			}
			g.set(top - 1)
			return
		}
		op, cmp, _ := unaryOp(instr)
		g.get(top)
		g.w.Byte(op)
		if cmp {
			g.w.Byte(opI64ExtendU)
		}
		g.set(top)
	}
}

// jump continues at instruction target, trapping when it is outside the
// program.
func (g *gen) jump(target int, depth uint32) {
	if target < 0 || target >= g.n {
		g.w.Byte(opUnreachable)
		return
	}
	g.w.Byte(opI32Const)
	g.w.WriteS32(int32(target))
	g.set(g.ip)
	g.w.Byte(opBr)
	g.w.WriteU32(depth)
}

// eqz pushes an i32 that is 1 when the low 32 bits of slot are zero.
func (g *gen) eqz(slot uint32) {
	g.get(slot)
	g.w.Byte(opI32WrapI64)
	g.w.Byte(opI32Eqz)
}

func (g *gen) get(idx uint32) {
	g.w.Byte(opLocalGet)
	g.w.WriteU32(idx)
}

func (g *gen) set(idx uint32) {
	g.w.Byte(opLocalSet)
	g.w.WriteU32(idx)
}

// binaryOp returns the opcode of a two-operand instruction and whether
// its i32 result must be widened.
func binaryOp(instr interp.Instr) (byte, bool, bool) {
	switch instr.(type) {
	case interp.Add:
		return opI64Add, false, true
	case interp.Sub:
		return opI64Sub, false, true
	case interp.Mul:
		return opI64Mul, false, true
	case interp.DivS:
		return opI64DivS, false, true
	case interp.DivU:
		return opI64DivU, false, true
	case interp.RemS:
		return opI64RemS, false, true
	case interp.RemU:
		return opI64RemU, false, true
	case interp.And:
		return opI64And, false, true
	case interp.Or:
		return opI64Or, false, true
	case interp.Xor:
		return opI64Xor, false, true
	case interp.Shl:
		return opI64Shl, false, true
	case interp.ShrS:
		return opI64ShrS, false, true
	case interp.ShrU:
		return opI64ShrU, false, true
	case interp.Rotl:
		return opI64Rotl, false, true
	case interp.Rotr:
		return opI64Rotr, false, true
	case interp.Eq:
		return opI64Eq, true, true
	case interp.Ne:
		return opI64Ne, true, true
	case interp.LtS:
		return opI64LtS, true, true
	case interp.LtU:
		return opI64LtU, true, true
	case interp.LeS:
		return opI64LeS, true, true
	case interp.LeU:
		return opI64LeU, true, true
	case interp.GtS:
		return opI64GtS, true, true
	case interp.GtU:
		return opI64GtU, true, true
	case interp.GeS:
		return opI64GeS, true, true
	case interp.GeU:
		return opI64GeU, true, true
	}
	return 0, false, false
}

func unaryOp(instr interp.Instr) (byte, bool, bool) {
	switch instr.(type) {
	case interp.Eqz:
		return opI64Eqz, true, true
	case interp.Clz:
		return opI64Clz, false, true
	case interp.Ctz:
		return opI64Ctz, false, true
	case interp.Popcnt:
		return opI64Popcnt, false, true
	}
	return 0, false, false
}
