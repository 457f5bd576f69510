package layout

import (
	"testing"

	"go.bytecodealliance.org/wit"
)

func record(fields ...wit.Field) *wit.TypeDef {
	return &wit.TypeDef{Kind: &wit.Record{Fields: fields}}
}

func TestCalculatePrimitives(t *testing.T) {
	c := NewCalculator()

	tests := []struct {
		typ   wit.Type
		name  string
		size  uint32
		align uint32
	}{
		{wit.Bool{}, "bool", 1, 1},
		{wit.U8{}, "u8", 1, 1},
		{wit.S8{}, "s8", 1, 1},
		{wit.U16{}, "u16", 2, 2},
		{wit.S16{}, "s16", 2, 2},
		{wit.U32{}, "u32", 4, 4},
		{wit.S32{}, "s32", 4, 4},
		{wit.U64{}, "u64", 8, 8},
		{wit.S64{}, "s64", 8, 8},
		{wit.F32{}, "f32", 4, 4},
		{wit.F64{}, "f64", 8, 8},
		{wit.Char{}, "char", 4, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info := c.Calculate(tc.typ)
			if info.Size != tc.size {
				t.Errorf("size: got %d, want %d", info.Size, tc.size)
			}
			if info.Align != tc.align {
				t.Errorf("align: got %d, want %d", info.Align, tc.align)
			}
		})
	}
}

func TestCalculateRecord(t *testing.T) {
	c := NewCalculator()

	t.Run("empty", func(t *testing.T) {
		info := c.Calculate(record())
		if info.Size != 0 || info.Align != 1 {
			t.Errorf("got %d/%d, want 0/1", info.Size, info.Align)
		}
	})

	t.Run("mixed_alignment", func(t *testing.T) {
		info := c.Calculate(record(
			wit.Field{Name: "a", Type: wit.U8{}},
			wit.Field{Name: "b", Type: wit.U32{}},
			wit.Field{Name: "c", Type: wit.U8{}},
		))

		for name, want := range map[string]uint32{"a": 0, "b": 4, "c": 8} {
			if got := info.FieldOffs[name]; got != want {
				t.Errorf("field %s offset: got %d, want %d", name, got, want)
			}
		}
		if info.Size != 12 || info.Align != 4 {
			t.Errorf("got %d/%d, want 12/4", info.Size, info.Align)
		}
	})

	t.Run("select_args", func(t *testing.T) {
		info := c.Calculate(record(
			wit.Field{Name: "flag", Type: wit.Bool{}},
			wit.Field{Name: "if_true", Type: wit.S32{}},
			wit.Field{Name: "if_false", Type: wit.S32{}},
		))
		if info.Size != 12 || info.FieldOffs["if_false"] != 8 {
			t.Errorf("got size %d, if_false at %d", info.Size, info.FieldOffs["if_false"])
		}
	})
}

func TestCalculateTuple(t *testing.T) {
	c := NewCalculator()

	tests := []struct {
		name  string
		types []wit.Type
		size  uint32
		align uint32
	}{
		{"empty", nil, 0, 1},
		{"four_s32", []wit.Type{wit.S32{}, wit.S32{}, wit.S32{}, wit.S32{}}, 16, 4},
		{"mixed", []wit.Type{wit.U8{}, wit.U64{}, wit.U8{}}, 24, 8},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info := c.Calculate(&wit.TypeDef{Kind: &wit.Tuple{Types: tc.types}})
			if info.Size != tc.size || info.Align != tc.align {
				t.Errorf("got %d/%d, want %d/%d", info.Size, info.Align, tc.size, tc.align)
			}
			if info.FieldOffs != nil {
				t.Error("tuples have no field offsets")
			}
		})
	}
}

func TestCalculateEnum(t *testing.T) {
	c := NewCalculator()

	tests := []struct {
		name     string
		numCases int
		want     uint32
	}{
		{"1_case", 1, 1},
		{"256_cases", 256, 1},
		{"257_cases", 257, 2},
		{"65536_cases", 65536, 2},
		{"65537_cases", 65537, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cases := make([]wit.EnumCase, tc.numCases)
			for i := range cases {
				cases[i] = wit.EnumCase{Name: "case"}
			}
			info := c.Calculate(&wit.TypeDef{Kind: &wit.Enum{Cases: cases}})
			if info.Size != tc.want || info.Align != tc.want {
				t.Errorf("got %d/%d, want %d", info.Size, info.Align, tc.want)
			}
		})
	}
}

func TestCalculateFlags(t *testing.T) {
	c := NewCalculator()

	tests := []struct {
		name      string
		numFlags  int
		wantSize  uint32
		wantAlign uint32
	}{
		{"0_flags", 0, 0, 1},
		{"8_flags", 8, 1, 1},
		{"9_flags", 9, 2, 2},
		{"17_flags", 17, 4, 4},
		{"33_flags", 33, 8, 8},
		{"65_flags", 65, 12, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			flags := make([]wit.Flag, tc.numFlags)
			for i := range flags {
				flags[i] = wit.Flag{Name: "flag"}
			}
			info := c.Calculate(&wit.TypeDef{Kind: &wit.Flags{Flags: flags}})
			if info.Size != tc.wantSize || info.Align != tc.wantAlign {
				t.Errorf("got %d/%d, want %d/%d", info.Size, info.Align, tc.wantSize, tc.wantAlign)
			}
		})
	}
}

func TestCalculateVariantAndOption(t *testing.T) {
	c := NewCalculator()

	tests := []struct {
		name  string
		kind  wit.TypeDefKind
		size  uint32
		align uint32
	}{
		{"variant_empty", &wit.Variant{}, 0, 1},
		{"variant_unit_cases", &wit.Variant{Cases: []wit.Case{{Name: "a"}, {Name: "b"}}}, 1, 1},
		{"variant_u32", &wit.Variant{Cases: []wit.Case{{Name: "none"}, {Name: "some", Type: wit.U32{}}}}, 8, 4},
		{"option_u8", &wit.Option{Type: wit.U8{}}, 2, 1},
		{"option_u64", &wit.Option{Type: wit.U64{}}, 16, 8},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info := c.Calculate(&wit.TypeDef{Kind: tc.kind})
			if info.Size != tc.size || info.Align != tc.align {
				t.Errorf("got %d/%d, want %d/%d", info.Size, info.Align, tc.size, tc.align)
			}
		})
	}
}

func TestCaching(t *testing.T) {
	c := NewCalculator()
	td := record(wit.Field{Name: "x", Type: wit.U32{}})

	first := c.Calculate(td)
	if _, ok := c.cache[td]; !ok {
		t.Fatal("type definition should be cached")
	}
	if second := c.Calculate(td); second.Size != first.Size || second.Align != first.Align {
		t.Error("cached results should be identical")
	}
}

func TestNestedTypes(t *testing.T) {
	c := NewCalculator()

	inner := record(
		wit.Field{Name: "lo", Type: wit.U8{}},
		wit.Field{Name: "hi", Type: wit.U64{}},
	)
	outer := record(
		wit.Field{Name: "tag", Type: wit.U16{}},
		wit.Field{Name: "inner", Type: inner},
		wit.Field{Name: "tail", Type: wit.U8{}},
	)

	info := c.Calculate(outer)
	if info.FieldOffs["inner"] != 8 || info.FieldOffs["tail"] != 24 {
		t.Errorf("offsets = %v", info.FieldOffs)
	}
	if info.Size != 32 || info.Align != 8 {
		t.Errorf("got %d/%d, want 32/8", info.Size, info.Align)
	}
}
