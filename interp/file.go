package interp

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/unionfn/errors"
)

// File is a program file: assembly plus the inputs to run it with and the
// expected outcome.
type File struct {
	// Expect is the expected result. Nil when Trap is set or no
	// expectation is recorded.
	Expect *int64 `yaml:"expect,omitempty"`

	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// Trap is the short name of the expected trap, such as "div_by_zero".
	Trap string `yaml:"trap,omitempty"`

	Inputs  []int64  `yaml:"inputs"`
	Code    []string `yaml:"code"`
	Config  Config   `yaml:"config,omitempty"`
	Program Program  `yaml:"-"`
}

// LoadProgram decodes a program file and assembles its code.
func LoadProgram(r io.Reader) (*File, error) {
	var f File
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidInput, err, "decode program file")
	}
	if f.Trap != "" {
		if _, ok := ParseTrap(f.Trap); !ok {
			return nil, errors.InvalidInput(errors.PhaseParse, "unknown trap %q", f.Trap)
		}
		if f.Expect != nil {
			return nil, errors.InvalidInput(errors.PhaseParse, "program %q expects both a result and a trap", f.Name)
		}
	}
	prog, err := Assemble(f.Code)
	if err != nil {
		return nil, err
	}
	f.Program = prog
	return &f, nil
}

// LoadProgramFile reads and decodes the program file at path.
func LoadProgramFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindNotFound, err, path)
	}
	return LoadProgram(bytes.NewReader(data))
}

// Verify checks a run outcome against the file's expectation.
func (f *File) Verify(got int64, err error) error {
	if f.Trap != "" {
		want, _ := ParseTrap(f.Trap)
		if !stderrors.Is(err, want) {
			return fmt.Errorf("%s: want trap %s, got result %d, error %v", f.Name, f.Trap, got, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", f.Name, err)
	}
	if f.Expect != nil && got != *f.Expect {
		return fmt.Errorf("%s: got %d, want %d", f.Name, got, *f.Expect)
	}
	return nil
}
