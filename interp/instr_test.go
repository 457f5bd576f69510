package interp

import (
	stderrors "errors"
	"math"
	"testing"
)

// runAll runs prog under every dispatch loop and checks they agree.
func runAll(t *testing.T, prog Program, inputs []int64, cfg Config) (int64, error) {
	t.Helper()

	ctx := NewContext(cfg)
	optGot, optErr := prog.Compile().Run(ctx, inputs)
	taggedGot, taggedErr := prog.Run(ctx, inputs)
	switchGot, switchErr := prog.RunSwitch(ctx, inputs)

	if optGot != taggedGot || optGot != switchGot {
		t.Errorf("results differ: opt %d, tagged %d, switch %d", optGot, taggedGot, switchGot)
	}
	if (optErr == nil) != (taggedErr == nil) || (optErr == nil) != (switchErr == nil) {
		t.Errorf("errors differ: opt %v, tagged %v, switch %v", optErr, taggedErr, switchErr)
	} else if optErr != nil && (optErr.Error() != taggedErr.Error() || optErr.Error() != switchErr.Error()) {
		t.Errorf("errors differ: opt %v, tagged %v, switch %v", optErr, taggedErr, switchErr)
	}
	return optGot, optErr
}

func TestInstructions(t *testing.T) {
	tests := []struct {
		name   string
		instr  Instr
		inputs []int64
		want   int64
		trap   TrapCode
	}{
		{"add", Add{}, []int64{2, 3}, 5, 0},
		{"add_wraps", Add{}, []int64{math.MaxInt64, 1}, math.MinInt64, 0},
		{"sub", Sub{}, []int64{2, 3}, -1, 0},
		{"mul", Mul{}, []int64{-4, 6}, -24, 0},
		{"div_s", DivS{}, []int64{-7, 2}, -3, 0},
		{"div_s_zero", DivS{}, []int64{7, 0}, 0, TrapDivByZero},
		{"div_s_overflow", DivS{}, []int64{math.MinInt64, -1}, 0, TrapIntegerOverflow},
		{"div_u", DivU{}, []int64{-1, 2}, math.MaxInt64, 0},
		{"div_u_zero", DivU{}, []int64{1, 0}, 0, TrapDivByZero},
		{"rem_s", RemS{}, []int64{-7, 2}, -1, 0},
		{"rem_s_min", RemS{}, []int64{math.MinInt64, -1}, 0, 0},
		{"rem_s_zero", RemS{}, []int64{1, 0}, 0, TrapDivByZero},
		{"rem_u", RemU{}, []int64{-1, 10}, 5, 0},
		{"rem_u_zero", RemU{}, []int64{1, 0}, 0, TrapDivByZero},
		{"and", And{}, []int64{0b1100, 0b1010}, 0b1000, 0},
		{"or", Or{}, []int64{0b1100, 0b1010}, 0b1110, 0},
		{"xor", Xor{}, []int64{0b1100, 0b1010}, 0b0110, 0},
		{"shl", Shl{}, []int64{1, 4}, 16, 0},
		{"shl_mod_64", Shl{}, []int64{1, 65}, 2, 0},
		{"shr_s", ShrS{}, []int64{-16, 2}, -4, 0},
		{"shr_u", ShrU{}, []int64{-1, 60}, 15, 0},
		{"rotl", Rotl{}, []int64{math.MinInt64, 1}, 1, 0},
		{"rotr", Rotr{}, []int64{1, 1}, math.MinInt64, 0},
		{"rotl_negative_count", Rotl{}, []int64{1, -63}, 2, 0},
		{"eq", Eq{}, []int64{3, 3}, 1, 0},
		{"ne", Ne{}, []int64{3, 3}, 0, 0},
		{"lt_s", LtS{}, []int64{-1, 0}, 1, 0},
		{"lt_u", LtU{}, []int64{-1, 0}, 0, 0},
		{"le_s", LeS{}, []int64{0, 0}, 1, 0},
		{"le_u", LeU{}, []int64{1, -1}, 1, 0},
		{"gt_s", GtS{}, []int64{-1, 0}, 0, 0},
		{"gt_u", GtU{}, []int64{-1, 0}, 1, 0},
		{"ge_s", GeS{}, []int64{-2, -2}, 1, 0},
		{"ge_u", GeU{}, []int64{0, 1}, 0, 0},
		{"eqz_zero", Eqz{}, []int64{0}, 1, 0},
		{"eqz_nonzero", Eqz{}, []int64{7}, 0, 0},
		{"clz", Clz{}, []int64{1}, 63, 0},
		{"clz_zero", Clz{}, []int64{0}, 64, 0},
		{"ctz", Ctz{}, []int64{8}, 3, 0},
		{"popcnt", Popcnt{}, []int64{-1}, 64, 0},
		{"const", Const{Value: -42}, nil, -42, 0},
		{"local_get", LocalGet{N: 0}, []int64{9, 1}, 9, 0},
		{"local_get_oob", LocalGet{N: 2}, []int64{9, 1}, 0, TrapLocalOutOfBounds},
		{"local_tee", LocalTee{N: 0}, []int64{9, 1}, 1, 0},
		{"local_tee_oob", LocalTee{N: 5}, []int64{1}, 0, TrapLocalOutOfBounds},
		{"drop", Drop{}, []int64{4, 5}, 4, 0},
		{"select_true", Select{}, []int64{10, 20, 1}, 10, 0},
		{"select_false", Select{}, []int64{10, 20, 0}, 20, 0},
		{"select_low_bits", Select{}, []int64{10, 20, 1 << 32}, 20, 0},
		{"select_underflow", Select{}, []int64{10, 20}, 0, TrapStackUnderflow},
		{"binary_underflow", Add{}, []int64{1}, 0, TrapStackUnderflow},
		{"unary_underflow", Eqz{}, nil, 0, TrapStackUnderflow},
		{"drop_underflow", Drop{}, nil, 0, TrapStackUnderflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runAll(t, Program{tt.instr, Ret{}}, tt.inputs, Config{})
			if tt.trap != 0 {
				if !stderrors.Is(err, tt.trap) {
					t.Fatalf("err = %v, want %v", err, tt.trap)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLocalSet(t *testing.T) {
	prog := Program{Const{Value: 7}, LocalSet{N: 0}, LocalGet{N: 0}, Ret{}}
	got, err := runAll(t, prog, []int64{1}, Config{})
	if err != nil {
		t.Fatal(err)
	}
	if got != 7 {
		t.Errorf("got %d, want 7", got)
	}

	// the popped slot is no longer addressable
	_, err = runAll(t, Program{LocalSet{N: 1}, Ret{}}, []int64{1, 2}, Config{})
	if !stderrors.Is(err, TrapLocalOutOfBounds) {
		t.Errorf("err = %v, want %v", err, TrapLocalOutOfBounds)
	}
}

func TestControlFlow(t *testing.T) {
	tests := []struct {
		name   string
		prog   Program
		inputs []int64
		want   int64
		trap   TrapCode
	}{
		{
			name:   "ret_eqz_returns",
			prog:   Program{Const{Value: 5}, LocalGet{N: 0}, RetEqz{}, Const{Value: 6}, Ret{}},
			inputs: []int64{0},
			want:   5,
		},
		{
			name:   "ret_eqz_continues",
			prog:   Program{Const{Value: 5}, LocalGet{N: 0}, RetEqz{}, Const{Value: 6}, Ret{}},
			inputs: []int64{1},
			want:   6,
		},
		{
			name:   "ret_eqz_low_bits",
			prog:   Program{Const{Value: 5}, LocalGet{N: 0}, RetEqz{}, Const{Value: 6}, Ret{}},
			inputs: []int64{1 << 32},
			want:   5,
		},
		{
			name:   "br_forward",
			prog:   Program{Br{Offset: MustBranchOffset(2)}, Const{Value: 1}, Const{Value: 2}, Ret{}},
			want:   2,
		},
		{
			name:   "br_eqz_taken",
			prog:   Program{LocalGet{N: 0}, BrEqz{Offset: MustBranchOffset(3)}, Const{Value: 1}, Ret{}, Const{Value: 2}, Ret{}},
			inputs: []int64{0},
			want:   2,
		},
		{
			name:   "br_eqz_not_taken",
			prog:   Program{LocalGet{N: 0}, BrEqz{Offset: MustBranchOffset(3)}, Const{Value: 1}, Ret{}, Const{Value: 2}, Ret{}},
			inputs: []int64{3},
			want:   1,
		},
		{
			name: "br_out_of_range",
			prog: Program{Br{Offset: MustBranchOffset(5)}, Ret{}},
			trap: TrapUnreachable,
		},
		{
			name: "br_before_start",
			prog: Program{Br{Offset: MustBranchOffset(-1)}},
			trap: TrapUnreachable,
		},
		{
			name: "falls_off_end",
			prog: Program{Const{Value: 1}},
			trap: TrapUnreachable,
		},
		{
			name: "ret_on_empty",
			prog: Program{Ret{}},
			trap: TrapStackUnderflow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runAll(t, tt.prog, tt.inputs, Config{})
			if tt.trap != 0 {
				if !stderrors.Is(err, tt.trap) {
					t.Fatalf("err = %v, want %v", err, tt.trap)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStackLimits(t *testing.T) {
	_, err := runAll(t, Program{Const{Value: 1}, Const{Value: 2}, Ret{}}, nil, Config{StackCapacity: 1})
	if !stderrors.Is(err, TrapStackOverflow) {
		t.Errorf("err = %v, want %v", err, TrapStackOverflow)
	}

	_, err = runAll(t, Program{Ret{}}, []int64{1, 2, 3}, Config{StackCapacity: 2})
	if !stderrors.Is(err, TrapStackOverflow) {
		t.Errorf("inputs: err = %v, want %v", err, TrapStackOverflow)
	}

	ctx := NewContext(Config{})
	if ctx.Stack.Cap() != DefaultStackCapacity {
		t.Errorf("Cap = %d, want %d", ctx.Stack.Cap(), DefaultStackCapacity)
	}
}

func TestStepLimit(t *testing.T) {
	loop := Program{Br{Offset: MustBranchOffset(1)}, Br{Offset: MustBranchOffset(-1)}}
	_, err := runAll(t, loop, nil, Config{MaxSteps: 1000})
	if !stderrors.Is(err, TrapStepLimit) {
		t.Fatalf("err = %v, want %v", err, TrapStepLimit)
	}

	ctx := NewContext(Config{MaxSteps: 1000})
	_, _ = loop.Compile().Run(ctx, nil)
	if ctx.Steps() != 1000 {
		t.Errorf("Steps = %d, want 1000", ctx.Steps())
	}
}

func TestBranchOffset(t *testing.T) {
	if _, err := NewBranchOffset(0); err == nil {
		t.Error("zero offset should be rejected")
	}
	off, err := NewBranchOffset(-3)
	if err != nil || off.Int() != -3 {
		t.Errorf("NewBranchOffset(-3) = %v, %v", off, err)
	}
	defer func() {
		if recover() == nil {
			t.Error("MustBranchOffset(0) should panic")
		}
	}()
	MustBranchOffset(0)
}

func TestTrapCode(t *testing.T) {
	for c := TrapUnreachable; c <= TrapStepLimit; c++ {
		if c.Error() == "unknown trap" {
			t.Errorf("trap %d has no message", c)
		}
		got, ok := ParseTrap(c.Name())
		if !ok || got != c {
			t.Errorf("ParseTrap(%q) = %v, %v", c.Name(), got, ok)
		}
	}
	if TrapCode(200).Error() != "unknown trap" {
		t.Error("out of range trap should be unknown")
	}
	if _, ok := ParseTrap("nope"); ok {
		t.Error("ParseTrap should reject unknown names")
	}
}

func TestPayloadLayout(t *testing.T) {
	l := Set().Layout()
	if !l.Exact() || l.Size != 8 || l.Align != 8 {
		t.Errorf("layout = %+v", l)
	}
	if Set().Len() != len(mnemonics) {
		t.Errorf("%d operations, %d mnemonics", Set().Len(), len(mnemonics))
	}
}

func TestFromOpt(t *testing.T) {
	prog := Program{
		LocalGet{N: 3}, LocalSet{N: 1}, LocalTee{N: 2}, Drop{}, Select{}, Ret{}, RetEqz{},
		Br{Offset: MustBranchOffset(-4)}, BrEqz{Offset: MustBranchOffset(9)}, Const{Value: math.MinInt64},
		Add{}, DivU{}, Rotr{}, GeU{}, Popcnt{},
	}
	got, ok := prog.Compile().Decompile()
	if !ok {
		t.Fatal("Decompile failed")
	}
	for i := range prog {
		if got[i] != prog[i] {
			t.Errorf("%d: got %#v, want %#v", i, got[i], prog[i])
		}
	}

	if _, ok := FromOpt(Opt{}); ok {
		t.Error("FromOpt should reject the zero Opt")
	}
}
