package interp

// Config configures a Context.
type Config struct {
	// StackCapacity is the maximum stack height.
	// 0 means DefaultStackCapacity.
	StackCapacity int `yaml:"stack_capacity"`

	// MaxSteps stops execution with TrapStepLimit after this many
	// instructions. 0 means no limit.
	MaxSteps uint64 `yaml:"max_steps"`
}

// Context is the execution state shared by all instructions.
// A Context is used by one goroutine at a time.
type Context struct {
	Stack Stack
	cfg   Config
	steps uint64
	ip    int
	done  bool
}

// NewContext returns a context configured by cfg.
func NewContext(cfg Config) *Context {
	if cfg.StackCapacity <= 0 {
		cfg.StackCapacity = DefaultStackCapacity
	}
	return &Context{
		Stack: NewStack(cfg.StackCapacity),
		cfg:   cfg,
	}
}

// IP returns the index of the next instruction.
func (c *Context) IP() int { return c.ip }

// Done reports whether a return instruction has executed.
func (c *Context) Done() bool { return c.done }

// Steps returns the number of instructions executed since Reset.
func (c *Context) Steps() uint64 { return c.steps }

// Reset clears the state and pushes inputs in order.
func (c *Context) Reset(inputs []int64) error {
	c.Stack.Reset()
	c.ip = 0
	c.done = false
	c.steps = 0
	for _, in := range inputs {
		if err := c.Stack.Push(in); err != nil {
			return trapAt(err, 0)
		}
	}
	return nil
}

// Result pops the return value after Done.
func (c *Context) Result() (int64, error) {
	v, err := c.Stack.Pop()
	if err != nil {
		return 0, trapAt(err, c.ip)
	}
	return v, nil
}

// Step executes the instruction at IP. It reports true once the program
// has returned; Result then yields the return value.
func (c *Context) Step(p Compiled) (bool, error) {
	if c.done {
		return true, nil
	}
	if err := c.checkStep(len(p)); err != nil {
		return false, err
	}
	if err := p[c.ip].Call(c); err != nil {
		return false, trapAt(err, c.ip)
	}
	return c.done, nil
}

// checkStep validates IP against a program of n instructions and counts
// the step.
func (c *Context) checkStep(n int) error {
	if uint(c.ip) >= uint(n) {
		return trapAt(TrapUnreachable, c.ip)
	}
	if c.cfg.MaxSteps != 0 && c.steps >= c.cfg.MaxSteps {
		return trapAt(TrapStepLimit, c.ip)
	}
	c.steps++
	return nil
}

func (c *Context) next() error {
	c.ip++
	return nil
}

func (c *Context) branch(off BranchOffset) error {
	c.ip += int(off.n)
	return nil
}

func (c *Context) ret() error {
	c.done = true
	return nil
}

func (c *Context) unary(f func(v int64) int64) error {
	s := &c.Stack
	if s.sp == 0 {
		return TrapStackUnderflow
	}
	s.values[s.sp-1] = f(s.values[s.sp-1])
	c.ip++
	return nil
}

func (c *Context) binary(f func(lhs, rhs int64) int64) error {
	s := &c.Stack
	if s.sp < 2 {
		return TrapStackUnderflow
	}
	s.sp--
	s.values[s.sp-1] = f(s.values[s.sp-1], s.values[s.sp])
	c.ip++
	return nil
}

func (c *Context) tryBinary(f func(lhs, rhs int64) (int64, error)) error {
	s := &c.Stack
	if s.sp < 2 {
		return TrapStackUnderflow
	}
	v, err := f(s.values[s.sp-2], s.values[s.sp-1])
	if err != nil {
		return err
	}
	s.sp--
	s.values[s.sp-1] = v
	c.ip++
	return nil
}
