// Package layout computes Canonical ABI size, alignment and field offsets
// for the fixed-size WIT types that operation arguments are described with.
//
// # Layout Rules
//
//   - Primitives: size equals alignment (u8=1, u32=4, u64=8, etc.)
//   - Records and tuples: fields laid out in order, each at the next offset
//     aligned for it, total size rounded up to the largest alignment
//   - Enums and flags: the smallest unsigned integer that holds them
//   - Variants and options: discriminant followed by the largest case
//
// The payload cell of an operation set is the Union of its operations'
// argument records: the largest size rounded up to the largest alignment.
// For the types above this matches the Go compiler's struct layout on
// 64-bit targets, which is what lets a descriptor be checked against the
// Go argument types it was generated from.
//
// # Usage
//
//	c := layout.NewCalculator()
//	info := c.Calculate(record)
//	cell := layout.Union(info, other)
package layout
