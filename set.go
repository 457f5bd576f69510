package unionfn

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/wippyai/unionfn/errors"
)

// Set is the runtime form of an operation descriptor set: one context type
// C, one output type O, a payload cell type P and an ordered list of
// operations.
//
// Operations are added with Define, which builds each operation's decode
// handler. Sets are populated at package initialization and then sealed;
// after Seal they are immutable and safe for concurrent use. Define itself
// is not safe for concurrent use.
type Set[C, O, P any] struct {
	payload reflect.Type
	byName  map[string]ID
	name    string
	entries []*entry[C, O, P]
	sealed  bool
}

// entry is one row of the decode table.
type entry[C, O, P any] struct {
	decode func(p P, ctx *C) O
	args   reflect.Type
	name   string
	id     ID
}

// NewSet creates an empty set named name.
//
// The payload type P must be pointer-free; it is typically a word array
// such as [2]uint64 sized by the generator for the largest operation.
func NewSet[C, O, P any](name string) (*Set[C, O, P], error) {
	payload := reflect.TypeFor[P]()
	if !pointerFree(payload) {
		return nil, errors.New(errors.PhaseDefine, errors.KindPointerField).
			Set(name).
			GoType(payload.String()).
			Detail("payload type must be pointer-free").
			Build()
	}
	Logger().Debug("operation set created",
		zap.String("set", name),
		zap.Stringer("payload", payload),
		zap.Uintptr("size", payload.Size()),
		zap.Int("align", payload.Align()))
	return &Set[C, O, P]{
		name:    name,
		payload: payload,
		byName:  make(map[string]ID),
	}, nil
}

// MustNewSet is like NewSet but panics on error.
func MustNewSet[C, O, P any](name string) *Set[C, O, P] {
	s, err := NewSet[C, O, P](name)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the set name.
func (s *Set[C, O, P]) Name() string {
	return s.name
}

// Len returns the number of defined operations.
func (s *Set[C, O, P]) Len() int {
	return len(s.entries)
}

// Lookup returns the ID of the operation with the given name.
func (s *Set[C, O, P]) Lookup(name string) (ID, bool) {
	id, ok := s.byName[name]
	return id, ok
}

// OpName returns the name of the operation with the given ID, or "" if the
// ID is out of range.
func (s *Set[C, O, P]) OpName(id ID) string {
	if int(id) >= len(s.entries) {
		return ""
	}
	return s.entries[id].name
}

// Sealed reports whether Seal succeeded.
func (s *Set[C, O, P]) Sealed() bool {
	return s.sealed
}

// Layout reports the payload cell against the operations defined so far.
func (s *Set[C, O, P]) Layout() Layout {
	l := Layout{
		Size:     s.payload.Size(),
		Align:    uintptr(s.payload.Align()),
		MaxAlign: 1,
	}
	for _, e := range s.entries {
		if sz := e.args.Size(); sz > l.MaxSize {
			l.MaxSize = sz
		}
		if a := uintptr(e.args.Align()); a > l.MaxAlign {
			l.MaxAlign = a
		}
	}
	return l
}

// Seal verifies the payload cell is exactly the union of all operations and
// freezes the set. Define fails on a sealed set.
func (s *Set[C, O, P]) Seal() error {
	if s.sealed {
		return nil
	}
	if len(s.entries) == 0 {
		return errors.New(errors.PhaseSeal, errors.KindEmpty).
			Set(s.name).
			Detail("set has no operations").
			Build()
	}
	l := s.Layout()
	if l.Align != l.MaxAlign {
		return errors.Misaligned(errors.PhaseSeal, s.name, "", l.MaxAlign, l.Align)
	}
	if want := alignUp(l.MaxSize, l.MaxAlign); l.Size != want {
		return errors.New(errors.PhaseSeal, errors.KindOversized).
			Set(s.name).
			GoType(s.payload.String()).
			Detail("payload is %d bytes, operations need %d", l.Size, want).
			Value(l.Size).
			Build()
	}
	s.sealed = true
	Logger().Debug("operation set sealed",
		zap.String("set", s.name),
		zap.Int("operations", len(s.entries)),
		zap.Uintptr("size", l.Size),
		zap.Uintptr("align", l.Align))
	return nil
}

// MustSeal is like Seal but panics on error.
func (s *Set[C, O, P]) MustSeal() {
	if err := s.Seal(); err != nil {
		panic(err)
	}
}

// OpInfo describes one defined operation.
type OpInfo struct {
	Args  reflect.Type
	Name  string
	ID    ID
	Size  uintptr
	Align uintptr
}

// SetInfo describes a set at the reflection level.
type SetInfo struct {
	Context reflect.Type
	Output  reflect.Type
	Payload reflect.Type
	Name    string
	Ops     []OpInfo
}

// Info returns a reflection-level description of the set.
func (s *Set[C, O, P]) Info() SetInfo {
	info := SetInfo{
		Name:    s.name,
		Context: reflect.TypeFor[C](),
		Output:  reflect.TypeFor[O](),
		Payload: s.payload,
		Ops:     make([]OpInfo, len(s.entries)),
	}
	for i, e := range s.entries {
		info.Ops[i] = OpInfo{
			ID:    e.id,
			Name:  e.name,
			Args:  e.args,
			Size:  e.args.Size(),
			Align: uintptr(e.args.Align()),
		}
	}
	return info
}
