package wasmgen

// Module is a single-function module: one i64 function with Params
// i64 parameters, exported as Export.
type Module struct {
	Export string
	Params int
	// Locals declares extra locals after the parameters, in order.
	Locals []LocalEntry
	// Code is the function body, including the final end opcode.
	Code []byte
}

// LocalEntry declares Count locals of type Type.
type LocalEntry struct {
	Count uint32
	Type  byte
}

// Encode serializes m to the WebAssembly binary format.
func (m *Module) Encode() []byte {
	w := NewWriter()
	w.WriteU32LE(Magic)
	w.WriteU32LE(Version)

	sec := NewWriter()
	sec.WriteU32(1)
	sec.Byte(funcTypeByte)
	sec.WriteU32(uint32(m.Params))
	for i := 0; i < m.Params; i++ {
		sec.Byte(valI64)
	}
	sec.WriteU32(1)
	sec.Byte(valI64)
	writeSection(w, SectionType, sec.Bytes())

	sec = NewWriter()
	sec.WriteU32(1)
	sec.WriteU32(0)
	writeSection(w, SectionFunction, sec.Bytes())

	sec = NewWriter()
	sec.WriteU32(1)
	sec.WriteName(m.Export)
	sec.Byte(kindFunc)
	sec.WriteU32(0)
	writeSection(w, SectionExport, sec.Bytes())

	body := NewWriter()
	body.WriteU32(uint32(len(m.Locals)))
	for _, l := range m.Locals {
		body.WriteU32(l.Count)
		body.Byte(l.Type)
	}
	body.WriteBytes(m.Code)

	sec = NewWriter()
	sec.WriteU32(1)
	sec.WriteU32(uint32(body.Len()))
	sec.WriteBytes(body.Bytes())
	writeSection(w, SectionCode, sec.Bytes())

	return w.Bytes()
}

func writeSection(w *Writer, id byte, data []byte) {
	w.Byte(id)
	w.WriteU32(uint32(len(data)))
	w.WriteBytes(data)
}
