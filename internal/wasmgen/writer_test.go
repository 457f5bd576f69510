package wasmgen

import (
	"bytes"
	"math"
	"testing"
)

func TestWriter_WriteU32(t *testing.T) {
	tests := []struct {
		v    uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{624485, []byte{0xe5, 0x8e, 0x26}},
		{math.MaxUint32, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
	}
	for _, tt := range tests {
		w := NewWriter()
		w.WriteU32(tt.v)
		if !bytes.Equal(w.Bytes(), tt.want) {
			t.Errorf("WriteU32(%d) = % x, want % x", tt.v, w.Bytes(), tt.want)
		}
	}
}

func TestWriter_WriteS64(t *testing.T) {
	tests := []struct {
		v    int64
		want []byte
	}{
		{0, []byte{0x00}},
		{-1, []byte{0x7f}},
		{63, []byte{0x3f}},
		{64, []byte{0xc0, 0x00}},
		{-64, []byte{0x40}},
		{-65, []byte{0xbf, 0x7f}},
		{-123456, []byte{0xc0, 0xbb, 0x78}},
		{math.MinInt64, []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x7f}},
	}
	for _, tt := range tests {
		w := NewWriter()
		w.WriteS64(tt.v)
		if !bytes.Equal(w.Bytes(), tt.want) {
			t.Errorf("WriteS64(%d) = % x, want % x", tt.v, w.Bytes(), tt.want)
		}
	}
}

func TestWriter_WriteName(t *testing.T) {
	w := NewWriter()
	w.WriteName("run")
	want := []byte{0x03, 'r', 'u', 'n'}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("WriteName = % x, want % x", w.Bytes(), want)
	}
	if w.Len() != len(want) {
		t.Errorf("Len = %d, want %d", w.Len(), len(want))
	}
}

func TestModule_Encode(t *testing.T) {
	m := &Module{
		Export: Export,
		Params: 1,
		Code:   []byte{opLocalGet, 0x00, opEnd},
	}
	got := m.Encode()
	want := []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		SectionType, 0x06, 0x01, funcTypeByte, 0x01, valI64, 0x01, valI64,
		SectionFunction, 0x02, 0x01, 0x00,
		SectionExport, 0x07, 0x01, 0x03, 'r', 'u', 'n', kindFunc, 0x00,
		SectionCode, 0x06, 0x01, 0x04, 0x00, opLocalGet, 0x00, opEnd,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Encode =\n% x\nwant\n% x", got, want)
	}
}
