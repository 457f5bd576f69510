package wasmgen

import (
	"bytes"
	stderrors "errors"
	"slices"
	"strings"
	"testing"

	"github.com/wippyai/unionfn/errors"
	"github.com/wippyai/unionfn/interp"
)

func assemble(t *testing.T, src string) interp.Program {
	t.Helper()
	p, err := interp.AssembleString(src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return p
}

func TestAnalyze_Heights(t *testing.T) {
	p := assemble(t, strings.Join([]string{
		"local.get 1",
		"br_eqz 8",
		"local.get 0",
		"local.get 1",
		"i64.rem_u",
		"local.get 1",
		"local.set 0",
		"local.set 1",
		"br -8",
		"local.get 0",
		"ret",
		"i64.add",
	}, "\n"))

	heights, slots, err := analyze(p, 2, interp.DefaultStackCapacity)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	want := []int{2, 3, 2, 3, 4, 3, 4, 3, 2, 2, 3, -1}
	if !slices.Equal(heights, want) {
		t.Errorf("heights = %v, want %v", heights, want)
	}
	if slots != 4 {
		t.Errorf("slots = %d, want 4", slots)
	}
}

func TestLower_Header(t *testing.T) {
	p := assemble(t, "local.get 0\nret")
	bin, err := Lower(p, 1, 0)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if !bytes.HasPrefix(bin, []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}) {
		t.Errorf("missing wasm header: % x", bin[:8])
	}
	if !bytes.Contains(bin, []byte{0x03, 'r', 'u', 'n', kindFunc}) {
		t.Error("missing run export")
	}
}

func TestLower_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		inputs   int
		capacity int
		kind     errors.Kind
	}{
		{"empty", "", 0, 0, errors.KindEmpty},
		{"too many inputs", "ret", 3, 2, errors.KindUnsupported},
		{"underflow", "i64.add\nret", 1, 0, errors.KindUnsupported},
		{"ret on empty stack", "ret", 0, 0, errors.KindUnsupported},
		{"overflow", "i64.const 1\ni64.const 2\nret", 0, 1, errors.KindUnsupported},
		{"local out of bounds", "local.get 1\nret", 1, 0, errors.KindUnsupported},
		{"local.set above new top", "local.set 0\nret", 1, 0, errors.KindUnsupported},
		{"ret_eqz without result", "ret_eqz\ni64.const 1\nret", 1, 0, errors.KindUnsupported},
		{"height grows per iteration", "i64.const 1\nbr -1", 0, 0, errors.KindUnsupported},
		{"inconsistent join", "local.get 0\nbr_eqz 2\ni64.const 1\ni64.const 2\nret", 1, 0, errors.KindUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p interp.Program
			if tt.src != "" {
				p = assemble(t, tt.src)
			}
			_, err := Lower(p, tt.inputs, tt.capacity)
			if err == nil {
				t.Fatal("expected error")
			}
			if !stderrors.Is(err, errors.New(errors.PhaseLower, tt.kind).Build()) {
				t.Errorf("error = %v, want lower/%s", err, tt.kind)
			}
		})
	}
}

func TestLower_AllInstructions(t *testing.T) {
	src := []string{
		"local.get 0", "local.tee 1", "drop", "i64.const -9",
		"i64.add", "i64.const 3", "i64.sub", "i64.const 2", "i64.mul",
		"i64.const 5", "i64.div_s", "i64.const 5", "i64.div_u",
		"i64.const 5", "i64.rem_s", "i64.const 5", "i64.rem_u",
		"i64.const 7", "i64.and", "i64.const 8", "i64.or", "i64.const 9", "i64.xor",
		"i64.const 1", "i64.shl", "i64.const 1", "i64.shr_s", "i64.const 1", "i64.shr_u",
		"i64.const 3", "i64.rotl", "i64.const 3", "i64.rotr",
		"i64.const 0", "i64.eq", "i64.const 0", "i64.ne",
		"i64.const 0", "i64.lt_s", "i64.const 0", "i64.lt_u",
		"i64.const 0", "i64.le_s", "i64.const 0", "i64.le_u",
		"i64.const 0", "i64.gt_s", "i64.const 0", "i64.gt_u",
		"i64.const 0", "i64.ge_s", "i64.const 0", "i64.ge_u",
		"i64.eqz", "i64.clz", "i64.ctz", "i64.popcnt",
		"i64.const 1", "i64.const 2", "select",
		"local.set 0", "local.get 0", "ret_eqz", "local.get 0", "ret",
	}
	p := assemble(t, strings.Join(src, "\n"))
	if _, err := Lower(p, 2, 0); err != nil {
		t.Fatalf("Lower: %v", err)
	}
}
