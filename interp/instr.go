package interp

import (
	"math"
	"math/bits"

	"github.com/wippyai/unionfn"
)

// Payload is the packed argument cell, sized for Const.
type Payload = [1]uint64

// Opt is the call-optimized instruction.
type Opt = unionfn.Opt[Context, error, Payload]

// Instr is the tagged form of an instruction.
type Instr interface {
	unionfn.Tagged[Context, error, Payload]
}

// BranchOffset is a non-zero relative jump distance.
type BranchOffset struct {
	n int32
}

// NewBranchOffset returns the offset n. A zero offset would branch to
// itself forever and is rejected.
func NewBranchOffset(n int32) (BranchOffset, error) {
	if n == 0 {
		return BranchOffset{}, errBranchZero
	}
	return BranchOffset{n: n}, nil
}

// MustBranchOffset is like NewBranchOffset but panics on error.
func MustBranchOffset(n int32) BranchOffset {
	off, err := NewBranchOffset(n)
	if err != nil {
		panic(err)
	}
	return off
}

// Int returns the offset value.
func (o BranchOffset) Int() int32 { return o.n }

type (
	// LocalGet pushes a copy of local N.
	LocalGet struct{ N uint32 }

	// LocalSet pops a value and stores it in local N.
	LocalSet struct{ N uint32 }

	// LocalTee stores the top value in local N without popping it.
	LocalTee struct{ N uint32 }

	// Drop discards the top value.
	Drop struct{}

	// Select pops a selector and two values and pushes the deeper value when
	// the low 32 bits of the selector are non-zero and the other one otherwise.
	Select struct{}

	// Ret ends execution. The top value is the result.
	Ret struct{}

	// RetEqz pops a value and ends execution if its low 32 bits are zero.
	RetEqz struct{}

	// Br jumps by Offset.
	Br struct{ Offset BranchOffset }

	// BrEqz pops a value and jumps by Offset if its low 32 bits are zero.
	BrEqz struct{ Offset BranchOffset }

	// Const pushes Value.
	Const struct{ Value int64 }

	// Add pops rhs and lhs and pushes lhs + rhs with wrapping.
	Add struct{}

	// Sub pushes lhs - rhs with wrapping.
	Sub struct{}

	// Mul pushes lhs * rhs with wrapping.
	Mul struct{}

	// DivS pushes lhs / rhs truncated toward zero.
	DivS struct{}

	// DivU pushes the unsigned quotient.
	DivU struct{}

	// RemS pushes the signed remainder, which takes the sign of lhs.
	RemS struct{}

	// RemU pushes the unsigned remainder.
	RemU struct{}

	// And pushes the bitwise and.
	And struct{}

	// Or pushes the bitwise or.
	Or struct{}

	// Xor pushes the bitwise exclusive or.
	Xor struct{}

	// Shl shifts lhs left by rhs mod 64.
	Shl struct{}

	// ShrS shifts lhs right arithmetically by rhs mod 64.
	ShrS struct{}

	// ShrU shifts lhs right logically by rhs mod 64.
	ShrU struct{}

	// Rotl rotates lhs left by rhs mod 64.
	Rotl struct{}

	// Rotr rotates lhs right by rhs mod 64.
	Rotr struct{}

	// Comparisons push 1 when they hold and 0 otherwise.
	Eq  struct{}
	Ne  struct{}
	LtS struct{}
	LtU struct{}
	LeS struct{}
	LeU struct{}
	GtS struct{}
	GtU struct{}
	GeS struct{}
	GeU struct{}

	// Eqz replaces the top with 1 if it is zero and 0 otherwise.
	Eqz struct{}

	// Clz replaces the top with its count of leading zero bits.
	Clz struct{}

	// Ctz replaces the top with its count of trailing zero bits.
	Ctz struct{}

	// Popcnt replaces the top with its count of set bits.
	Popcnt struct{}
)

func execLocalGet(c *Context, a LocalGet) error {
	v, err := c.Stack.Get(a.N)
	if err != nil {
		return err
	}
	if err := c.Stack.Push(v); err != nil {
		return err
	}
	return c.next()
}

func execLocalSet(c *Context, a LocalSet) error {
	v, err := c.Stack.Pop()
	if err != nil {
		return err
	}
	if err := c.Stack.Set(a.N, v); err != nil {
		return err
	}
	return c.next()
}

func execLocalTee(c *Context, a LocalTee) error {
	v, err := c.Stack.Peek()
	if err != nil {
		return err
	}
	if err := c.Stack.Set(a.N, v); err != nil {
		return err
	}
	return c.next()
}

func execDrop(c *Context, _ Drop) error {
	if _, err := c.Stack.Pop(); err != nil {
		return err
	}
	return c.next()
}

func execSelect(c *Context, _ Select) error {
	s := &c.Stack
	if s.sp < 3 {
		return TrapStackUnderflow
	}
	s.sp -= 2
	if int32(s.values[s.sp+1]) == 0 {
		s.values[s.sp-1] = s.values[s.sp]
	}
	return c.next()
}

func execRet(c *Context, _ Ret) error {
	return c.ret()
}

func execRetEqz(c *Context, _ RetEqz) error {
	v, err := c.Stack.Pop()
	if err != nil {
		return err
	}
	if int32(v) == 0 {
		return c.ret()
	}
	return c.next()
}

func execBr(c *Context, a Br) error {
	return c.branch(a.Offset)
}

func execBrEqz(c *Context, a BrEqz) error {
	v, err := c.Stack.Pop()
	if err != nil {
		return err
	}
	if int32(v) == 0 {
		return c.branch(a.Offset)
	}
	return c.next()
}

func execConst(c *Context, a Const) error {
	if err := c.Stack.Push(a.Value); err != nil {
		return err
	}
	return c.next()
}

func execAdd(c *Context, _ Add) error {
	return c.binary(func(lhs, rhs int64) int64 {
		return lhs + rhs
	})
}

func execSub(c *Context, _ Sub) error {
	return c.binary(func(lhs, rhs int64) int64 {
		return lhs - rhs
	})
}

func execMul(c *Context, _ Mul) error {
	return c.binary(func(lhs, rhs int64) int64 {
		return lhs * rhs
	})
}

func execAnd(c *Context, _ And) error {
	return c.binary(func(lhs, rhs int64) int64 {
		return lhs & rhs
	})
}

func execOr(c *Context, _ Or) error {
	return c.binary(func(lhs, rhs int64) int64 {
		return lhs | rhs
	})
}

func execXor(c *Context, _ Xor) error {
	return c.binary(func(lhs, rhs int64) int64 {
		return lhs ^ rhs
	})
}

func execShl(c *Context, _ Shl) error {
	return c.binary(func(lhs, rhs int64) int64 {
		return lhs << (uint64(rhs) & 63)
	})
}

func execShrS(c *Context, _ ShrS) error {
	return c.binary(func(lhs, rhs int64) int64 {
		return lhs >> (uint64(rhs) & 63)
	})
}

func execShrU(c *Context, _ ShrU) error {
	return c.binary(func(lhs, rhs int64) int64 {
		return int64(uint64(lhs) >> (uint64(rhs) & 63))
	})
}

func execRotl(c *Context, _ Rotl) error {
	return c.binary(func(lhs, rhs int64) int64 {
		return int64(bits.RotateLeft64(uint64(lhs), int(rhs&63)))
	})
}

func execRotr(c *Context, _ Rotr) error {
	return c.binary(func(lhs, rhs int64) int64 {
		return int64(bits.RotateLeft64(uint64(lhs), -int(rhs&63)))
	})
}

func execEq(c *Context, _ Eq) error {
	return c.binary(func(lhs, rhs int64) int64 {
		return b2i(lhs == rhs)
	})
}

func execNe(c *Context, _ Ne) error {
	return c.binary(func(lhs, rhs int64) int64 {
		return b2i(lhs != rhs)
	})
}

func execLtS(c *Context, _ LtS) error {
	return c.binary(func(lhs, rhs int64) int64 {
		return b2i(lhs < rhs)
	})
}

func execLtU(c *Context, _ LtU) error {
	return c.binary(func(lhs, rhs int64) int64 {
		return b2i(uint64(lhs) < uint64(rhs))
	})
}

func execLeS(c *Context, _ LeS) error {
	return c.binary(func(lhs, rhs int64) int64 {
		return b2i(lhs <= rhs)
	})
}

func execLeU(c *Context, _ LeU) error {
	return c.binary(func(lhs, rhs int64) int64 {
		return b2i(uint64(lhs) <= uint64(rhs))
	})
}

func execGtS(c *Context, _ GtS) error {
	return c.binary(func(lhs, rhs int64) int64 {
		return b2i(lhs > rhs)
	})
}

func execGtU(c *Context, _ GtU) error {
	return c.binary(func(lhs, rhs int64) int64 {
		return b2i(uint64(lhs) > uint64(rhs))
	})
}

func execGeS(c *Context, _ GeS) error {
	return c.binary(func(lhs, rhs int64) int64 {
		return b2i(lhs >= rhs)
	})
}

func execGeU(c *Context, _ GeU) error {
	return c.binary(func(lhs, rhs int64) int64 {
		return b2i(uint64(lhs) >= uint64(rhs))
	})
}

func execDivS(c *Context, _ DivS) error {
	return c.tryBinary(func(lhs, rhs int64) (int64, error) {
		if rhs == 0 {
			return 0, TrapDivByZero
		}
		if lhs == math.MinInt64 && rhs == -1 {
			return 0, TrapIntegerOverflow
		}
		return lhs / rhs, nil
	})
}

func execDivU(c *Context, _ DivU) error {
	return c.tryBinary(func(lhs, rhs int64) (int64, error) {
		if rhs == 0 {
			return 0, TrapDivByZero
		}
		return int64(uint64(lhs) / uint64(rhs)), nil
	})
}

func execRemS(c *Context, _ RemS) error {
	return c.tryBinary(func(lhs, rhs int64) (int64, error) {
		if rhs == 0 {
			return 0, TrapDivByZero
		}
		return lhs % rhs, nil
	})
}

func execRemU(c *Context, _ RemU) error {
	return c.tryBinary(func(lhs, rhs int64) (int64, error) {
		if rhs == 0 {
			return 0, TrapDivByZero
		}
		return int64(uint64(lhs) % uint64(rhs)), nil
	})
}

func execEqz(c *Context, _ Eqz) error {
	return c.unary(func(v int64) int64 {
		return b2i(v == 0)
	})
}

func execClz(c *Context, _ Clz) error {
	return c.unary(func(v int64) int64 {
		return int64(bits.LeadingZeros64(uint64(v)))
	})
}

func execCtz(c *Context, _ Ctz) error {
	return c.unary(func(v int64) int64 {
		return int64(bits.TrailingZeros64(uint64(v)))
	})
}

func execPopcnt(c *Context, _ Popcnt) error {
	return c.unary(func(v int64) int64 {
		return int64(bits.OnesCount64(uint64(v)))
	})
}

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

var (
	set = unionfn.MustNewSet[Context, error, Payload]("instr")

	opLocalGet = unionfn.MustDefine(set, "local.get", execLocalGet)
	opLocalSet = unionfn.MustDefine(set, "local.set", execLocalSet)
	opLocalTee = unionfn.MustDefine(set, "local.tee", execLocalTee)
	opDrop     = unionfn.MustDefine(set, "drop", execDrop)
	opSelect   = unionfn.MustDefine(set, "select", execSelect)
	opRet      = unionfn.MustDefine(set, "ret", execRet)
	opRetEqz   = unionfn.MustDefine(set, "ret_eqz", execRetEqz)
	opBr       = unionfn.MustDefine(set, "br", execBr)
	opBrEqz    = unionfn.MustDefine(set, "br_eqz", execBrEqz)
	opConst    = unionfn.MustDefine(set, "i64.const", execConst)
	opAdd      = unionfn.MustDefine(set, "i64.add", execAdd)
	opSub      = unionfn.MustDefine(set, "i64.sub", execSub)
	opMul      = unionfn.MustDefine(set, "i64.mul", execMul)
	opDivS     = unionfn.MustDefine(set, "i64.div_s", execDivS)
	opDivU     = unionfn.MustDefine(set, "i64.div_u", execDivU)
	opRemS     = unionfn.MustDefine(set, "i64.rem_s", execRemS)
	opRemU     = unionfn.MustDefine(set, "i64.rem_u", execRemU)
	opAnd      = unionfn.MustDefine(set, "i64.and", execAnd)
	opOr       = unionfn.MustDefine(set, "i64.or", execOr)
	opXor      = unionfn.MustDefine(set, "i64.xor", execXor)
	opShl      = unionfn.MustDefine(set, "i64.shl", execShl)
	opShrS     = unionfn.MustDefine(set, "i64.shr_s", execShrS)
	opShrU     = unionfn.MustDefine(set, "i64.shr_u", execShrU)
	opRotl     = unionfn.MustDefine(set, "i64.rotl", execRotl)
	opRotr     = unionfn.MustDefine(set, "i64.rotr", execRotr)
	opEq       = unionfn.MustDefine(set, "i64.eq", execEq)
	opNe       = unionfn.MustDefine(set, "i64.ne", execNe)
	opLtS      = unionfn.MustDefine(set, "i64.lt_s", execLtS)
	opLtU      = unionfn.MustDefine(set, "i64.lt_u", execLtU)
	opLeS      = unionfn.MustDefine(set, "i64.le_s", execLeS)
	opLeU      = unionfn.MustDefine(set, "i64.le_u", execLeU)
	opGtS      = unionfn.MustDefine(set, "i64.gt_s", execGtS)
	opGtU      = unionfn.MustDefine(set, "i64.gt_u", execGtU)
	opGeS      = unionfn.MustDefine(set, "i64.ge_s", execGeS)
	opGeU      = unionfn.MustDefine(set, "i64.ge_u", execGeU)
	opEqz      = unionfn.MustDefine(set, "i64.eqz", execEqz)
	opClz      = unionfn.MustDefine(set, "i64.clz", execClz)
	opCtz      = unionfn.MustDefine(set, "i64.ctz", execCtz)
	opPopcnt   = unionfn.MustDefine(set, "i64.popcnt", execPopcnt)
)

func init() {
	set.MustSeal()
}

// matchers is indexed by operation ID.
var matchers = []func(Opt) (Instr, bool){
	matcher(opLocalGet),
	matcher(opLocalSet),
	matcher(opLocalTee),
	matcher(opDrop),
	matcher(opSelect),
	matcher(opRet),
	matcher(opRetEqz),
	matcher(opBr),
	matcher(opBrEqz),
	matcher(opConst),
	matcher(opAdd),
	matcher(opSub),
	matcher(opMul),
	matcher(opDivS),
	matcher(opDivU),
	matcher(opRemS),
	matcher(opRemU),
	matcher(opAnd),
	matcher(opOr),
	matcher(opXor),
	matcher(opShl),
	matcher(opShrS),
	matcher(opShrU),
	matcher(opRotl),
	matcher(opRotr),
	matcher(opEq),
	matcher(opNe),
	matcher(opLtS),
	matcher(opLtU),
	matcher(opLeS),
	matcher(opLeU),
	matcher(opGtS),
	matcher(opGtU),
	matcher(opGeS),
	matcher(opGeU),
	matcher(opEqz),
	matcher(opClz),
	matcher(opCtz),
	matcher(opPopcnt),
}

// Set returns the sealed instruction set.
func Set() *unionfn.Set[Context, error, Payload] {
	return set
}

func (v LocalGet) IntoOpt() Opt { return opLocalGet.Opt(v) }
func (v LocalSet) IntoOpt() Opt { return opLocalSet.Opt(v) }
func (v LocalTee) IntoOpt() Opt { return opLocalTee.Opt(v) }
func (v Drop) IntoOpt() Opt     { return opDrop.Opt(v) }
func (v Select) IntoOpt() Opt   { return opSelect.Opt(v) }
func (v Ret) IntoOpt() Opt      { return opRet.Opt(v) }
func (v RetEqz) IntoOpt() Opt   { return opRetEqz.Opt(v) }
func (v Br) IntoOpt() Opt       { return opBr.Opt(v) }
func (v BrEqz) IntoOpt() Opt    { return opBrEqz.Opt(v) }
func (v Const) IntoOpt() Opt    { return opConst.Opt(v) }
func (v Add) IntoOpt() Opt      { return opAdd.Opt(v) }
func (v Sub) IntoOpt() Opt      { return opSub.Opt(v) }
func (v Mul) IntoOpt() Opt      { return opMul.Opt(v) }
func (v DivS) IntoOpt() Opt     { return opDivS.Opt(v) }
func (v DivU) IntoOpt() Opt     { return opDivU.Opt(v) }
func (v RemS) IntoOpt() Opt     { return opRemS.Opt(v) }
func (v RemU) IntoOpt() Opt     { return opRemU.Opt(v) }
func (v And) IntoOpt() Opt      { return opAnd.Opt(v) }
func (v Or) IntoOpt() Opt       { return opOr.Opt(v) }
func (v Xor) IntoOpt() Opt      { return opXor.Opt(v) }
func (v Shl) IntoOpt() Opt      { return opShl.Opt(v) }
func (v ShrS) IntoOpt() Opt     { return opShrS.Opt(v) }
func (v ShrU) IntoOpt() Opt     { return opShrU.Opt(v) }
func (v Rotl) IntoOpt() Opt     { return opRotl.Opt(v) }
func (v Rotr) IntoOpt() Opt     { return opRotr.Opt(v) }
func (v Eq) IntoOpt() Opt       { return opEq.Opt(v) }
func (v Ne) IntoOpt() Opt       { return opNe.Opt(v) }
func (v LtS) IntoOpt() Opt      { return opLtS.Opt(v) }
func (v LtU) IntoOpt() Opt      { return opLtU.Opt(v) }
func (v LeS) IntoOpt() Opt      { return opLeS.Opt(v) }
func (v LeU) IntoOpt() Opt      { return opLeU.Opt(v) }
func (v GtS) IntoOpt() Opt      { return opGtS.Opt(v) }
func (v GtU) IntoOpt() Opt      { return opGtU.Opt(v) }
func (v GeS) IntoOpt() Opt      { return opGeS.Opt(v) }
func (v GeU) IntoOpt() Opt      { return opGeU.Opt(v) }
func (v Eqz) IntoOpt() Opt      { return opEqz.Opt(v) }
func (v Clz) IntoOpt() Opt      { return opClz.Opt(v) }
func (v Ctz) IntoOpt() Opt      { return opCtz.Opt(v) }
func (v Popcnt) IntoOpt() Opt   { return opPopcnt.Opt(v) }
