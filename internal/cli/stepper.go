package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/unionfn/interp"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	instrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	stackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

// runBurst bounds the steps taken by one press of the run key.
const runBurst = 1 << 20

type stepKeys struct {
	Step  key.Binding
	Run   key.Binding
	Reset key.Binding
	Quit  key.Binding
}

func (k stepKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Step, k.Run, k.Reset, k.Quit}
}

func (k stepKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultStepKeys = stepKeys{
	Step:  key.NewBinding(key.WithKeys("n", " ", "down", "j"), key.WithHelp("n/space", "step")),
	Run:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "run")),
	Reset: key.NewBinding(key.WithKeys("backspace", "0"), key.WithHelp("0", "reset")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

// stepper is the interactive stepper model. Every step goes through
// Context.Step on the call-optimized program.
type stepper struct {
	err      error
	result   *int64
	file     *interp.File
	ctx      *interp.Context
	compiled interp.Compiled
	help     help.Model
	keys     stepKeys
	height   int
	finished bool
}

func newStepper(f *interp.File, height int) *stepper {
	m := &stepper{
		file:     f,
		compiled: f.Program.Compile(),
		ctx:      interp.NewContext(f.Config),
		help:     help.New(),
		keys:     defaultStepKeys,
		height:   height,
	}
	m.reset()
	return m
}

func (m *stepper) reset() {
	m.err = nil
	m.result = nil
	m.finished = false
	if err := m.ctx.Reset(m.file.Inputs); err != nil {
		m.fail(err)
	}
}

func (m *stepper) fail(err error) {
	m.err = err
	m.finished = true
}

// step executes one instruction and reports whether execution can
// continue.
func (m *stepper) step() bool {
	if m.finished {
		return false
	}
	done, err := m.ctx.Step(m.compiled)
	if err != nil {
		m.fail(err)
		return false
	}
	if done {
		v, err := m.ctx.Result()
		if err != nil {
			m.fail(err)
			return false
		}
		m.result = &v
		m.finished = true
		return false
	}
	return true
}

func (m *stepper) Init() tea.Cmd {
	return nil
}

func (m *stepper) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Step):
			m.step()
		case key.Matches(msg, m.keys.Run):
			for i := 0; i < runBurst; i++ {
				if !m.step() {
					break
				}
			}
		case key.Matches(msg, m.keys.Reset):
			m.reset()
		}
	}
	return m, nil
}

// window returns the range of instructions to list so that the current
// one stays visible.
func (m *stepper) window() (int, int) {
	rows := max(m.height-8, 3)
	n := len(m.file.Program)
	start := max(m.ctx.IP()-rows/2, 0)
	end := min(start+rows, n)
	start = max(end-rows, 0)
	return start, end
}

func (m *stepper) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("unionfn step"))
	b.WriteString(" ")
	b.WriteString(m.file.Name)
	b.WriteString("\n\n")

	ip := m.ctx.IP()
	start, end := m.window()
	for i := start; i < end; i++ {
		line := fmt.Sprintf("%04d  %s", i, interp.Format(m.file.Program[i]))
		if i == ip && !m.finished {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + instrStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(stackStyle.Render("stack " + formatStack(m.ctx.Stack.Values())))
	b.WriteString(fmt.Sprintf("\nip %d  steps %d\n\n", ip, m.ctx.Steps()))

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Trap: %v", m.err)))
		b.WriteString("\n\n")
	case m.result != nil:
		b.WriteString(resultStyle.Render(fmt.Sprintf("Result: %d", *m.result)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}
