// Package interp is an i64 stack machine whose instruction set is a unionfn
// operation set.
//
// The same instruction semantics run under three dispatch loops:
//
//	Compiled.Run       optimized closures: one indirect call per step
//	Program.Run        tagged values converted to closures at every step
//	Program.RunSwitch  a type switch over the tagged values
//
// so the cost of each dispatch form can be measured on identical work.
// Programs are written in a small assembly syntax, one instruction per
// line:
//
//	local.get 0
//	ret_eqz
//	local.get 0
//	i64.const 1
//	i64.sub
//	local.set 0
//	br -6
//
// Locals are stack slots counted from the bottom; inputs occupy the first
// slots. Branch offsets are relative to the branching instruction.
package interp
