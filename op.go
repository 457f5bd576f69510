package unionfn

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/wippyai/unionfn/errors"
)

// Op is one defined operation of a set with argument type T.
//
// An Op is the only way to build an Opt for its operation, which is what
// keeps every payload paired with the handler that can decode it.
type Op[C, O, P, T any] struct {
	entry *entry[C, O, P]
	impl  Impl[C, O, T]
}

// Define adds an operation named name with argument type T and semantic
// implementation impl to s and returns it.
//
// T must be pointer-free and fit the payload cell P in both size and
// alignment. The operation gets the next dense ID.
func Define[C, O, P, T any](s *Set[C, O, P], name string, impl Impl[C, O, T]) (*Op[C, O, P, T], error) {
	if s.sealed {
		return nil, errors.New(errors.PhaseDefine, errors.KindSealed).
			Set(s.name).
			Op(name).
			Detail("cannot define operations on a sealed set").
			Build()
	}
	if name == "" {
		return nil, errors.New(errors.PhaseDefine, errors.KindInvalidInput).
			Set(s.name).
			Detail("operation name is empty").
			Build()
	}
	if impl == nil {
		return nil, errors.New(errors.PhaseDefine, errors.KindInvalidInput).
			Set(s.name).
			Op(name).
			Detail("implementation is nil").
			Build()
	}
	if _, ok := s.byName[name]; ok {
		return nil, errors.Duplicate(errors.PhaseDefine, s.name, name)
	}

	args := reflect.TypeFor[T]()
	if !pointerFree(args) {
		return nil, errors.PointerField(s.name, name, args.String())
	}
	if args.Size() > s.payload.Size() {
		return nil, errors.PayloadOverflow(s.name, name, args.Size(), s.payload.Size())
	}
	if args.Align() > s.payload.Align() {
		return nil, errors.Misaligned(errors.PhaseDefine, s.name, name,
			uintptr(args.Align()), uintptr(s.payload.Align()))
	}

	e := &entry[C, O, P]{
		id:   ID(len(s.entries)),
		name: name,
		args: args,
		decode: func(p P, ctx *C) O {
			return impl(ctx, unpack[T](&p))
		},
	}
	s.entries = append(s.entries, e)
	s.byName[name] = e.id

	Logger().Debug("operation defined",
		zap.String("set", s.name),
		zap.String("op", name),
		zap.Uint32("id", uint32(e.id)),
		zap.Uintptr("size", args.Size()),
		zap.Int("align", args.Align()))

	return &Op[C, O, P, T]{entry: e, impl: impl}, nil
}

// MustDefine is like Define but panics on error.
func MustDefine[C, O, P, T any](s *Set[C, O, P], name string, impl Impl[C, O, T]) *Op[C, O, P, T] {
	op, err := Define(s, name, impl)
	if err != nil {
		panic(err)
	}
	return op
}

// DefineFree defines an operation of a context-free set.
func DefineFree[O, P, T any](s *Set[Unit, O, P], name string, impl func(args T) O) (*Op[Unit, O, P, T], error) {
	if impl == nil {
		return Define[Unit, O, P, T](s, name, nil)
	}
	return Define(s, name, func(_ *Unit, args T) O {
		return impl(args)
	})
}

// MustDefineFree is like DefineFree but panics on error.
func MustDefineFree[O, P, T any](s *Set[Unit, O, P], name string, impl func(args T) O) *Op[Unit, O, P, T] {
	op, err := DefineFree(s, name, impl)
	if err != nil {
		panic(err)
	}
	return op
}

// ID returns the operation's dense ordinal.
func (op *Op[C, O, P, T]) ID() ID {
	return op.entry.id
}

// Name returns the operation name.
func (op *Op[C, O, P, T]) Name() string {
	return op.entry.name
}

// Opt packs args and pairs them with the operation's decode handler.
func (op *Op[C, O, P, T]) Opt(args T) Opt[C, O, P] {
	return Opt[C, O, P]{entry: op.entry, payload: pack[P](args)}
}

// Call runs the semantic implementation directly, without packing.
func (op *Op[C, O, P, T]) Call(ctx *C, args T) O {
	return op.impl(ctx, args)
}

// Match returns the arguments of o if o was packed by this operation.
//
// The handler identity is checked first, so the payload is only ever
// reinterpreted with the layout it was packed with.
func (op *Op[C, O, P, T]) Match(o Opt[C, O, P]) (T, bool) {
	if o.entry != op.entry {
		var zero T
		return zero, false
	}
	return unpack[T](&o.payload), true
}
