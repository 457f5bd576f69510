package unionfn

// Unit is the context of operation sets that declare no external context.
// It is threaded through every call like any other context and ignored.
type Unit struct{}

// ID is the dense ordinal of an operation within its set.
// IDs are assigned in definition order starting at zero.
type ID uint32

// Impl is the semantic implementation of one operation: user behaviour over
// the shared context and the operation's own arguments.
type Impl[C, O, T any] func(ctx *C, args T) O

// Caller is implemented by values of context-free operation sets.
type Caller[O any] interface {
	Call() O
}

// ContextCaller is implemented by values of operation sets with a context.
type ContextCaller[C, O any] interface {
	Call(ctx *C) O
}

// Tagged is implemented by the inspectable form of an operation set: one
// variant type per operation, each carrying its arguments by value.
//
// IntoOpt selects the variant's decode handler and packs its arguments.
// It is total and never fails.
type Tagged[C, O, P any] interface {
	IntoOpt() Opt[C, O, P]
}

// Call converts t to its optimized form and invokes it.
//
// It is observably equivalent to t.IntoOpt().Call(ctx).
func Call[C, O, P any](t Tagged[C, O, P], ctx *C) O {
	return t.IntoOpt().Call(ctx)
}

// Invoke calls an optimized value of a context-free set.
//
// The unit context is threaded through the same single indirect call as
// any other context.
func Invoke[O, P any](o Opt[Unit, O, P]) O {
	return o.entry.decode(o.payload, &unit)
}

// unit is the shared context of context-free sets. It has no state.
var unit Unit

// Compile converts a sequence of tagged values into optimized values.
func Compile[C, O, P any, T Tagged[C, O, P]](tagged []T) []Opt[C, O, P] {
	out := make([]Opt[C, O, P], len(tagged))
	for i, t := range tagged {
		out[i] = t.IntoOpt()
	}
	return out
}
