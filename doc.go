// Package unionfn provides a dual-representation dispatch engine for interpreters.
//
// An operation set declares named operations with typed arguments over one
// shared context type and one shared output type. Every operation can then be
// held in two interchangeable forms:
//
//   - a tagged form: one Go struct per operation, carrying its arguments by
//     value, freely inspected, compared, logged and type-switched on;
//   - an optimized form (Opt): a decode handler paired with a fixed-size
//     payload cell holding the packed arguments. Calling it is a single
//     indirect call with no branch on the operation.
//
// Conversion from tagged to optimized is the only place an operation is
// selected, so an interpreter loop over []Opt pays no per-step decode.
//
// # Architecture Overview
//
//	unionfn/             Engine: Set, Op, Opt, Tagged, payload packing
//	├── errors/          Structured error types
//	├── layout/          Canonical size and alignment of descriptor types
//	├── descriptor/      Operation descriptor sets as data (WIT typed)
//	├── examples/        Operation sets in generated-code shape
//	├── interp/          A benchmark i64 stack machine built on the engine
//	├── oracle/          Runs lowered interp programs on wazero
//	├── internal/wasmgen Lowers interp programs to wasm
//	└── cmd/unionfn/     CLI: run, bench, disasm, describe, step
//
// # Quick Start
//
// Declare a set with a payload cell large enough for every operation:
//
//	type BumpBy struct{ By int64 }
//
//	var (
//		counter = unionfn.MustNewSet[int64, unionfn.Unit, [1]uint64]("counter")
//		bumpBy  = unionfn.MustDefine(counter, "bump_by", func(ctx *int64, a BumpBy) unionfn.Unit {
//			*ctx += a.By
//			return unionfn.Unit{}
//		})
//	)
//
//	func init() { counter.MustSeal() }
//
//	func (b BumpBy) IntoOpt() unionfn.Opt[int64, unionfn.Unit, [1]uint64] { return bumpBy.Opt(b) }
//
// Then dispatch either form:
//
//	var ctx int64
//	unionfn.Call(BumpBy{By: 41}, &ctx)    // tagged: convert, then call
//	BumpBy{By: 1}.IntoOpt().Call(&ctx)    // optimized
//
// # Payload Safety
//
// Payload cells are untyped memory the garbage collector does not scan, so
// argument types must be pointer-free (numbers, bools, arrays and structs of
// them). Define rejects other types, and Seal checks that the payload type is
// exactly the union of the operations: alignment equal to the largest
// argument alignment and size equal to the largest argument size rounded up
// to it.
//
// A payload is only decodable through the handler it was packed with: both
// are set together by (*Op).Opt and no API exposes either one separately.
//
// # Concurrency
//
// Sets are populated at initialization and immutable once sealed. Opt values
// are plain values; independent dispatches may run concurrently as long as
// each has its own context.
package unionfn
