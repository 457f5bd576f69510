package wasmgen

// Binary header.
const (
	Magic   uint32 = 0x6D736100
	Version uint32 = 0x01
)

// Section IDs used by lowered modules.
const (
	SectionType     byte = 1
	SectionFunction byte = 3
	SectionExport   byte = 7
	SectionCode     byte = 10
)

const (
	kindFunc     byte = 0x00
	funcTypeByte byte = 0x60
	valI32       byte = 0x7F
	valI64       byte = 0x7E
	blockEmpty   byte = 0x40
)

// Opcodes emitted by the lowering.
const (
	opUnreachable byte = 0x00
	opBlock       byte = 0x02
	opLoop        byte = 0x03
	opIf          byte = 0x04
	opEnd         byte = 0x0B
	opBr          byte = 0x0C
	opBrTable     byte = 0x0E
	opReturn      byte = 0x0F
	opSelect      byte = 0x1B
	opLocalGet    byte = 0x20
	opLocalSet    byte = 0x21
	opI32Const    byte = 0x41
	opI64Const    byte = 0x42
	opI32Eqz      byte = 0x45
	opI64Eqz      byte = 0x50
	opI64Eq       byte = 0x51
	opI64Ne       byte = 0x52
	opI64LtS      byte = 0x53
	opI64LtU      byte = 0x54
	opI64GtS      byte = 0x55
	opI64GtU      byte = 0x56
	opI64LeS      byte = 0x57
	opI64LeU      byte = 0x58
	opI64GeS      byte = 0x59
	opI64GeU      byte = 0x5A
	opI64Clz      byte = 0x79
	opI64Ctz      byte = 0x7A
	opI64Popcnt   byte = 0x7B
	opI64Add      byte = 0x7C
	opI64Sub      byte = 0x7D
	opI64Mul      byte = 0x7E
	opI64DivS     byte = 0x7F
	opI64DivU     byte = 0x80
	opI64RemS     byte = 0x81
	opI64RemU     byte = 0x82
	opI64And      byte = 0x83
	opI64Or       byte = 0x84
	opI64Xor      byte = 0x85
	opI64Shl      byte = 0x86
	opI64ShrS     byte = 0x87
	opI64ShrU     byte = 0x88
	opI64Rotl     byte = 0x89
	opI64Rotr     byte = 0x8A
	opI32WrapI64  byte = 0xA7
	opI64ExtendU  byte = 0xAD
)
