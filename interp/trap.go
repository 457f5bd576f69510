package interp

import "github.com/wippyai/unionfn/errors"

// TrapCode is the reason execution stopped abnormally.
type TrapCode uint8

const (
	TrapUnreachable TrapCode = iota + 1
	TrapStackOverflow
	TrapStackUnderflow
	TrapLocalOutOfBounds
	TrapDivByZero
	TrapIntegerOverflow
	TrapStepLimit
)

var trapNames = [...]string{
	TrapUnreachable:      "unreachable code reached",
	TrapStackOverflow:    "stack overflow",
	TrapStackUnderflow:   "stack underflow",
	TrapLocalOutOfBounds: "local index out of bounds",
	TrapDivByZero:        "integer divide by zero",
	TrapIntegerOverflow:  "integer overflow",
	TrapStepLimit:        "step limit exceeded",
}

var trapIDs = [...]string{
	TrapUnreachable:      "unreachable",
	TrapStackOverflow:    "stack_overflow",
	TrapStackUnderflow:   "stack_underflow",
	TrapLocalOutOfBounds: "local_out_of_bounds",
	TrapDivByZero:        "div_by_zero",
	TrapIntegerOverflow:  "integer_overflow",
	TrapStepLimit:        "step_limit",
}

// Name returns the short identifier used in program files.
func (c TrapCode) Name() string {
	if int(c) < len(trapIDs) {
		return trapIDs[c]
	}
	return ""
}

// ParseTrap returns the trap with the given short identifier.
func ParseTrap(name string) (TrapCode, bool) {
	for i, id := range trapIDs {
		if id != "" && id == name {
			return TrapCode(i), true
		}
	}
	return 0, false
}

// Error implements error.
func (c TrapCode) Error() string {
	if int(c) < len(trapNames) && trapNames[c] != "" {
		return trapNames[c]
	}
	return "unknown trap"
}

// trapAt wraps a trap raised by the instruction at ip.
func trapAt(err error, ip int) error {
	return errors.New(errors.PhaseExecute, errors.KindTrap).
		Cause(err).
		Value(ip).
		Detail("at ip %d", ip).
		Build()
}
