package interp

// exec runs instr through a type switch on its variant.
func exec(c *Context, instr Instr) error {
	switch v := instr.(type) {
	case LocalGet:
		return execLocalGet(c, v)
	case LocalSet:
		return execLocalSet(c, v)
	case LocalTee:
		return execLocalTee(c, v)
	case Drop:
		return execDrop(c, v)
	case Select:
		return execSelect(c, v)
	case Ret:
		return execRet(c, v)
	case RetEqz:
		return execRetEqz(c, v)
	case Br:
		return execBr(c, v)
	case BrEqz:
		return execBrEqz(c, v)
	case Const:
		return execConst(c, v)
	case Add:
		return execAdd(c, v)
	case Sub:
		return execSub(c, v)
	case Mul:
		return execMul(c, v)
	case DivS:
		return execDivS(c, v)
	case DivU:
		return execDivU(c, v)
	case RemS:
		return execRemS(c, v)
	case RemU:
		return execRemU(c, v)
	case And:
		return execAnd(c, v)
	case Or:
		return execOr(c, v)
	case Xor:
		return execXor(c, v)
	case Shl:
		return execShl(c, v)
	case ShrS:
		return execShrS(c, v)
	case ShrU:
		return execShrU(c, v)
	case Rotl:
		return execRotl(c, v)
	case Rotr:
		return execRotr(c, v)
	case Eq:
		return execEq(c, v)
	case Ne:
		return execNe(c, v)
	case LtS:
		return execLtS(c, v)
	case LtU:
		return execLtU(c, v)
	case LeS:
		return execLeS(c, v)
	case LeU:
		return execLeU(c, v)
	case GtS:
		return execGtS(c, v)
	case GtU:
		return execGtU(c, v)
	case GeS:
		return execGeS(c, v)
	case GeU:
		return execGeU(c, v)
	case Eqz:
		return execEqz(c, v)
	case Clz:
		return execClz(c, v)
	case Ctz:
		return execCtz(c, v)
	case Popcnt:
		return execPopcnt(c, v)
	default:
		return TrapUnreachable
	}
}
