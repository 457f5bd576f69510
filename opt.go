package unionfn

// Opt is the call-optimized form of an operation: a decode handler paired
// with a payload packed for the same operation.
//
// Opt values are only produced by (*Op).Opt or a variant's IntoOpt, so the
// payload is never decoded by a foreign handler. The zero Opt has no handler
// and must not be called.
type Opt[C, O, P any] struct {
	entry   *entry[C, O, P]
	payload P
}

// Call invokes the paired handler with the packed payload and ctx.
//
// This is a single indirect call with no branch on operation identity.
func (o Opt[C, O, P]) Call(ctx *C) O {
	return o.entry.decode(o.payload, ctx)
}

// ID returns the identity of the operation the value was packed for.
func (o Opt[C, O, P]) ID() ID {
	return o.entry.id
}

// Name returns the name of the operation the value was packed for.
func (o Opt[C, O, P]) Name() string {
	return o.entry.name
}

// Valid reports whether o was produced by an operation.
func (o Opt[C, O, P]) Valid() bool {
	return o.entry != nil
}

// String implements fmt.Stringer.
func (o Opt[C, O, P]) String() string {
	if o.entry == nil {
		return "<invalid>"
	}
	return o.entry.name
}
