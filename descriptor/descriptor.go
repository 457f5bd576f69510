package descriptor

import (
	"fmt"
	"io"
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/unionfn/errors"
	"github.com/wippyai/unionfn/layout"
)

// Set describes an operation set.
type Set struct {
	Name       string      `yaml:"name"`
	Context    string      `yaml:"context,omitempty"`
	Output     string      `yaml:"output,omitempty"`
	Operations []Operation `yaml:"operations"`
}

// Operation describes one operation and its ordered arguments.
type Operation struct {
	Name   string  `yaml:"name"`
	GoType string  `yaml:"go_type,omitempty"`
	Fields []Field `yaml:"fields,omitempty"`
}

// Field is one named argument.
type Field struct {
	Type wit.Type
	Name string
}

// MarshalYAML renders the field with its WIT type name.
func (f Field) MarshalYAML() (any, error) {
	return struct {
		Name string `yaml:"name"`
		Type string `yaml:"type"`
	}{f.Name, TypeName(f.Type)}, nil
}

// Layout is the canonical layout of every operation's arguments and of the
// payload cell that holds any one of them.
type Layout struct {
	Operations []layout.Info
	Payload    layout.Info
}

// Validate checks that operation names are distinct and non-empty, that
// field names are distinct within each operation and that every field has
// a fixed-size type.
func (s *Set) Validate() error {
	if len(s.Operations) == 0 {
		return errors.New(errors.PhaseDescribe, errors.KindEmpty).
			Set(s.Name).
			Detail("no operations").
			Build()
	}
	ops := make(map[string]struct{}, len(s.Operations))
	for _, op := range s.Operations {
		if op.Name == "" {
			return errors.InvalidInput(errors.PhaseDescribe, "set %q has an unnamed operation", s.Name)
		}
		if _, ok := ops[op.Name]; ok {
			return errors.Duplicate(errors.PhaseDescribe, s.Name, op.Name)
		}
		ops[op.Name] = struct{}{}

		fields := make(map[string]struct{}, len(op.Fields))
		for _, f := range op.Fields {
			if f.Name == "" {
				return errors.New(errors.PhaseDescribe, errors.KindInvalidInput).
					Set(s.Name).
					Op(op.Name).
					Detail("unnamed field").
					Build()
			}
			if _, ok := fields[f.Name]; ok {
				return errors.New(errors.PhaseDescribe, errors.KindDuplicate).
					Set(s.Name).
					Op(op.Name).
					Detail("field %q defined twice", f.Name).
					Build()
			}
			fields[f.Name] = struct{}{}
			if !Fixed(f.Type) {
				return errors.New(errors.PhaseDescribe, errors.KindUnsupported).
					Set(s.Name).
					Op(op.Name).
					Detail("field %q has type %s with no fixed-size layout", f.Name, TypeName(f.Type)).
					Build()
			}
		}
	}
	return nil
}

// Lookup returns the operation with the given name.
func (s *Set) Lookup(name string) (Operation, bool) {
	for _, op := range s.Operations {
		if op.Name == name {
			return op, true
		}
	}
	return Operation{}, false
}

// Record returns the operation's arguments as an anonymous WIT record.
func (op Operation) Record() *wit.TypeDef {
	fields := make([]wit.Field, len(op.Fields))
	for i, f := range op.Fields {
		fields[i] = wit.Field{Name: f.Name, Type: f.Type}
	}
	return &wit.TypeDef{Kind: &wit.Record{Fields: fields}}
}

// Layout computes the canonical layout of the set.
func (s *Set) Layout() Layout {
	c := layout.NewCalculator()
	l := Layout{Operations: make([]layout.Info, len(s.Operations))}
	for i, op := range s.Operations {
		l.Operations[i] = c.Calculate(op.Record())
	}
	l.Payload = layout.Union(l.Operations...)
	return l
}

// WriteText writes a human-readable listing of the set and its layout.
func (s *Set) WriteText(w io.Writer) error {
	l := s.Layout()

	var b strings.Builder
	fmt.Fprintf(&b, "set %s", s.Name)
	if s.Context != "" {
		fmt.Fprintf(&b, " (context %s)", s.Context)
	}
	if s.Output != "" {
		fmt.Fprintf(&b, " -> %s", s.Output)
	}
	b.WriteByte('\n')

	for i, op := range s.Operations {
		args := make([]string, len(op.Fields))
		for j, f := range op.Fields {
			args[j] = f.Name + ": " + TypeName(f.Type)
		}
		info := l.Operations[i]
		fmt.Fprintf(&b, "  %2d %s(%s)  size=%d align=%d\n",
			i, op.Name, strings.Join(args, ", "), info.Size, info.Align)
	}
	fmt.Fprintf(&b, "payload size=%d align=%d\n", l.Payload.Size, l.Payload.Align)

	_, err := io.WriteString(w, b.String())
	return err
}

// Fixed reports whether t has a fixed-size canonical layout with no
// out-of-line data.
func Fixed(t wit.Type) bool {
	switch typ := t.(type) {
	case wit.Bool, wit.U8, wit.S8, wit.U16, wit.S16, wit.U32, wit.S32,
		wit.U64, wit.S64, wit.F32, wit.F64, wit.Char:
		return true
	case *wit.TypeDef:
		switch kind := typ.Kind.(type) {
		case *wit.Record:
			for _, f := range kind.Fields {
				if !Fixed(f.Type) {
					return false
				}
			}
			return true
		case *wit.Tuple:
			for _, elem := range kind.Types {
				if !Fixed(elem) {
					return false
				}
			}
			return true
		case *wit.Variant:
			for _, cs := range kind.Cases {
				if cs.Type != nil && !Fixed(cs.Type) {
					return false
				}
			}
			return true
		case *wit.Option:
			return Fixed(kind.Type)
		case *wit.Enum, *wit.Flags:
			return true
		}
	}
	return false
}

// TypeName renders t the way WIT source spells it.
func TypeName(t wit.Type) string {
	switch v := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		if v.Name != nil {
			return *v.Name
		}
		return kindName(v.Kind)
	case nil:
		return "_"
	default:
		return fmt.Sprintf("%T", t)
	}
}

func kindName(k wit.TypeDefKind) string {
	switch kind := k.(type) {
	case *wit.Tuple:
		elems := make([]string, len(kind.Types))
		for i, t := range kind.Types {
			elems[i] = TypeName(t)
		}
		return "tuple<" + strings.Join(elems, ", ") + ">"
	case *wit.Record:
		fields := make([]string, len(kind.Fields))
		for i, f := range kind.Fields {
			fields[i] = f.Name + ": " + TypeName(f.Type)
		}
		return "record { " + strings.Join(fields, ", ") + " }"
	case *wit.Option:
		return "option<" + TypeName(kind.Type) + ">"
	case *wit.List:
		return "list<" + TypeName(kind.Type) + ">"
	case *wit.Enum:
		return fmt.Sprintf("enum(%d)", len(kind.Cases))
	case *wit.Flags:
		return fmt.Sprintf("flags(%d)", len(kind.Flags))
	case *wit.Variant:
		return fmt.Sprintf("variant(%d)", len(kind.Cases))
	default:
		return "typedef"
	}
}
