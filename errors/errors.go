package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDefine   Phase = "define"   // operation registration
	PhaseSeal     Phase = "seal"     // payload layout verification
	PhaseDescribe Phase = "describe" // descriptor derivation
	PhaseParse    Phase = "parse"    // assembly and program files
	PhaseLower    Phase = "lower"    // program to wasm
	PhaseExecute  Phase = "execute"  // interpreter and oracle runs
)

// Kind categorizes the error
type Kind string

const (
	KindDuplicate    Kind = "duplicate"
	KindPointerField Kind = "pointer_field"
	KindOverflow     Kind = "payload_overflow"
	KindMisaligned   Kind = "misaligned"
	KindOversized    Kind = "payload_oversized"
	KindSealed       Kind = "sealed"
	KindEmpty        Kind = "empty"
	KindUnsupported  Kind = "unsupported"
	KindInvalidInput Kind = "invalid_input"
	KindNotFound     Kind = "not_found"
	KindTrap         Kind = "trap"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Set    string
	Op     string
	GoType string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Set != "" || e.Op != "" {
		b.WriteString(" at ")
		switch {
		case e.Set != "" && e.Op != "":
			b.WriteString(e.Set)
			b.WriteByte('.')
			b.WriteString(e.Op)
		case e.Set != "":
			b.WriteString(e.Set)
		default:
			b.WriteString(e.Op)
		}
	}

	if e.GoType != "" {
		b.WriteString(": Go type ")
		b.WriteString(e.GoType)
	}

	if e.Detail != "" {
		if e.GoType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Set sets the operation set name
func (b *Builder) Set(name string) *Builder {
	b.err.Set = name
	return b
}

// Op sets the operation name
func (b *Builder) Op(name string) *Builder {
	b.err.Op = name
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Duplicate creates an error for a name registered twice
func Duplicate(phase Phase, set, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicate,
		Set:    set,
		Op:     name,
		Detail: fmt.Sprintf("name %q already defined", name),
		Value:  name,
	}
}

// PointerField creates an error for a field type the payload cannot hold
func PointerField(set, op, goType string) *Error {
	return &Error{
		Phase:  PhaseDefine,
		Kind:   KindPointerField,
		Set:    set,
		Op:     op,
		GoType: goType,
		Detail: "payload fields must be fixed-size and pointer-free",
	}
}

// PayloadOverflow creates an error for arguments larger than the payload cell
func PayloadOverflow(set, op string, size, capacity uintptr) *Error {
	return &Error{
		Phase:  PhaseDefine,
		Kind:   KindOverflow,
		Set:    set,
		Op:     op,
		Detail: fmt.Sprintf("arguments need %d bytes, payload holds %d", size, capacity),
		Value:  size,
	}
}

// Misaligned creates an error for arguments more aligned than the payload cell
func Misaligned(phase Phase, set, op string, align, capacity uintptr) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMisaligned,
		Set:    set,
		Op:     op,
		Detail: fmt.Sprintf("alignment %d, payload provides %d", align, capacity),
		Value:  align,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
