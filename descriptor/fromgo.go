package descriptor

import (
	"reflect"
	"strings"
	"unicode"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/unionfn"
	"github.com/wippyai/unionfn/errors"
)

var unitType = reflect.TypeFor[unionfn.Unit]()

// FromInfo derives the descriptor of a set from its reflection-level
// description. Struct arguments contribute one field per struct field and
// any other argument type becomes a single field named "value".
func FromInfo(info unionfn.SetInfo) (*Set, error) {
	s := &Set{
		Name:       info.Name,
		Context:    typeLabel(info.Context),
		Output:     typeLabel(info.Output),
		Operations: make([]Operation, 0, len(info.Ops)),
	}
	for _, op := range info.Ops {
		d := Operation{Name: op.Name, GoType: op.Args.String()}
		if op.Args.Kind() == reflect.Struct {
			for i := 0; i < op.Args.NumField(); i++ {
				sf := op.Args.Field(i)
				if sf.Name == "_" {
					continue
				}
				t, err := witType(sf.Type)
				if err != nil {
					return nil, describeErr(info.Name, op.Name, sf.Type, err)
				}
				d.Fields = append(d.Fields, Field{Name: SnakeCase(sf.Name), Type: t})
			}
		} else {
			t, err := witType(op.Args)
			if err != nil {
				return nil, describeErr(info.Name, op.Name, op.Args, err)
			}
			d.Fields = []Field{{Name: "value", Type: t}}
		}
		s.Operations = append(s.Operations, d)
	}

	Logger().Debug("descriptor derived",
		zap.String("set", s.Name),
		zap.Int("operations", len(s.Operations)))

	return s, s.Validate()
}

func describeErr(set, op string, t reflect.Type, cause error) error {
	return errors.New(errors.PhaseDescribe, errors.KindUnsupported).
		Set(set).
		Op(op).
		GoType(t.String()).
		Cause(cause).
		Build()
}

func typeLabel(t reflect.Type) string {
	if t == nil || t == unitType {
		return ""
	}
	return t.String()
}

// witType maps a pointer-free Go type to its WIT equivalent. int, uint
// and uintptr map to their 64-bit forms.
func witType(t reflect.Type) (wit.Type, error) {
	switch t.Kind() {
	case reflect.Bool:
		return wit.Bool{}, nil
	case reflect.Int8:
		return wit.S8{}, nil
	case reflect.Int16:
		return wit.S16{}, nil
	case reflect.Int32:
		return wit.S32{}, nil
	case reflect.Int64, reflect.Int:
		return wit.S64{}, nil
	case reflect.Uint8:
		return wit.U8{}, nil
	case reflect.Uint16:
		return wit.U16{}, nil
	case reflect.Uint32:
		return wit.U32{}, nil
	case reflect.Uint64, reflect.Uint, reflect.Uintptr:
		return wit.U64{}, nil
	case reflect.Float32:
		return wit.F32{}, nil
	case reflect.Float64:
		return wit.F64{}, nil
	case reflect.Array:
		elem, err := witType(t.Elem())
		if err != nil {
			return nil, err
		}
		types := make([]wit.Type, t.Len())
		for i := range types {
			types[i] = elem
		}
		return &wit.TypeDef{Kind: &wit.Tuple{Types: types}}, nil
	case reflect.Struct:
		fields := make([]wit.Field, 0, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			ft, err := witType(sf.Type)
			if err != nil {
				return nil, err
			}
			fields = append(fields, wit.Field{Name: SnakeCase(sf.Name), Type: ft})
		}
		td := &wit.TypeDef{Kind: &wit.Record{Fields: fields}}
		if t.Name() != "" {
			name := SnakeCase(t.Name())
			td.Name = &name
		}
		return td, nil
	default:
		return nil, errors.Unsupported(errors.PhaseDescribe, "Go type "+t.String())
	}
}

// SnakeCase converts a Go identifier to the lower snake case used for WIT
// names. Runs of capitals are kept together: IfTrue becomes if_true and
// LHSValue becomes lhs_value.
func SnakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
