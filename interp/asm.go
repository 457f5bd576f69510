package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/unionfn/errors"
)

var errBranchZero = errors.InvalidInput(errors.PhaseParse, "branch offset must be non-zero")

type parser func(args []string) (Instr, error)

var mnemonics = map[string]parser{
	"local.get":  local(func(n uint32) Instr { return LocalGet{N: n} }),
	"local.set":  local(func(n uint32) Instr { return LocalSet{N: n} }),
	"local.tee":  local(func(n uint32) Instr { return LocalTee{N: n} }),
	"drop":       bare(Drop{}),
	"select":     bare(Select{}),
	"ret":        bare(Ret{}),
	"ret_eqz":    bare(RetEqz{}),
	"br":         branch(func(off BranchOffset) Instr { return Br{Offset: off} }),
	"br_eqz":     branch(func(off BranchOffset) Instr { return BrEqz{Offset: off} }),
	"i64.const":  constant,
	"i64.add":    bare(Add{}),
	"i64.sub":    bare(Sub{}),
	"i64.mul":    bare(Mul{}),
	"i64.div_s":  bare(DivS{}),
	"i64.div_u":  bare(DivU{}),
	"i64.rem_s":  bare(RemS{}),
	"i64.rem_u":  bare(RemU{}),
	"i64.and":    bare(And{}),
	"i64.or":     bare(Or{}),
	"i64.xor":    bare(Xor{}),
	"i64.shl":    bare(Shl{}),
	"i64.shr_s":  bare(ShrS{}),
	"i64.shr_u":  bare(ShrU{}),
	"i64.rotl":   bare(Rotl{}),
	"i64.rotr":   bare(Rotr{}),
	"i64.eq":     bare(Eq{}),
	"i64.ne":     bare(Ne{}),
	"i64.lt_s":   bare(LtS{}),
	"i64.lt_u":   bare(LtU{}),
	"i64.le_s":   bare(LeS{}),
	"i64.le_u":   bare(LeU{}),
	"i64.gt_s":   bare(GtS{}),
	"i64.gt_u":   bare(GtU{}),
	"i64.ge_s":   bare(GeS{}),
	"i64.ge_u":   bare(GeU{}),
	"i64.eqz":    bare(Eqz{}),
	"i64.clz":    bare(Clz{}),
	"i64.ctz":    bare(Ctz{}),
	"i64.popcnt": bare(Popcnt{}),
}

func bare(instr Instr) parser {
	return func(args []string) (Instr, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("takes no operands, got %d", len(args))
		}
		return instr, nil
	}
}

func local(mk func(n uint32) Instr) parser {
	return func(args []string) (Instr, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("takes a local index")
		}
		n, err := strconv.ParseUint(args[0], 0, 32)
		if err != nil {
			return nil, err
		}
		return mk(uint32(n)), nil
	}
}

func branch(mk func(off BranchOffset) Instr) parser {
	return func(args []string) (Instr, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("takes a branch offset")
		}
		n, err := strconv.ParseInt(args[0], 0, 32)
		if err != nil {
			return nil, err
		}
		off, err := NewBranchOffset(int32(n))
		if err != nil {
			return nil, err
		}
		return mk(off), nil
	}
}

func constant(args []string) (Instr, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("takes a value")
	}
	v, err := strconv.ParseInt(args[0], 0, 64)
	if err != nil {
		return nil, err
	}
	return Const{Value: v}, nil
}

// stripComment removes a trailing ";;" or "#" comment.
func stripComment(line string) string {
	if i := strings.Index(line, ";;"); i >= 0 {
		line = line[:i]
	}
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

// Parse parses one instruction such as "local.get 0" or "br -3".
func Parse(line string) (Instr, error) {
	fields := strings.Fields(stripComment(line))
	if len(fields) == 0 {
		return nil, errors.InvalidInput(errors.PhaseParse, "empty instruction")
	}
	p, ok := mnemonics[fields[0]]
	if !ok {
		return nil, errors.New(errors.PhaseParse, errors.KindNotFound).
			Op(fields[0]).
			Detail("unknown instruction").
			Build()
	}
	instr, err := p(fields[1:])
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidInput, err, fields[0])
	}
	return instr, nil
}

// Assemble parses lines into a program, skipping blank and comment-only
// lines.
func Assemble(lines []string) (Program, error) {
	prog := make(Program, 0, len(lines))
	for i, line := range lines {
		if stripComment(line) == "" {
			continue
		}
		instr, err := Parse(line)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidInput, err,
				fmt.Sprintf("line %d", i+1))
		}
		prog = append(prog, instr)
	}
	if len(prog) == 0 {
		return nil, errors.New(errors.PhaseParse, errors.KindEmpty).
			Detail("program has no instructions").
			Build()
	}
	return prog, nil
}

// AssembleString is Assemble over the lines of src.
func AssembleString(src string) (Program, error) {
	return Assemble(strings.Split(src, "\n"))
}

// Format renders instr in assembly syntax.
func Format(instr Instr) string {
	switch v := instr.(type) {
	case LocalGet:
		return "local.get " + strconv.FormatUint(uint64(v.N), 10)
	case LocalSet:
		return "local.set " + strconv.FormatUint(uint64(v.N), 10)
	case LocalTee:
		return "local.tee " + strconv.FormatUint(uint64(v.N), 10)
	case Br:
		return "br " + strconv.Itoa(int(v.Offset.n))
	case BrEqz:
		return "br_eqz " + strconv.Itoa(int(v.Offset.n))
	case Const:
		return "i64.const " + strconv.FormatInt(v.Value, 10)
	case nil:
		return "<nil>"
	default:
		return instr.IntoOpt().Name()
	}
}

// Disassemble renders p one numbered instruction per line.
func Disassemble(p Program) string {
	var b strings.Builder
	for i, instr := range p {
		fmt.Fprintf(&b, "%04d  %s\n", i, Format(instr))
	}
	return b.String()
}
