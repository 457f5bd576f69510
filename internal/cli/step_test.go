package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/unionfn/interp"
)

func TestStepTrace(t *testing.T) {
	out, err := execute(t, "step", program("gcd"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "0000  local.get 1      [1071 462]", lines[0])
	assert.Regexp(t, `^result 21 after \d+ steps$`, lines[len(lines)-1])
}

func TestStepTraceTrap(t *testing.T) {
	out, err := execute(t, "step", "--max-steps", "10", program("countdown"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "trap after 10 steps")
	assert.ErrorIs(t, err, interp.TrapStepLimit)
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestStepper(t *testing.T) {
	f, err := interp.LoadProgramFile(program("gcd"))
	require.NoError(t, err)

	m := newStepper(f, 24)
	assert.Equal(t, 0, m.ctx.IP())
	assert.Contains(t, m.View(), "> 0000  local.get 1")

	m.Update(keyPress("n"))
	assert.Equal(t, 1, m.ctx.IP())
	assert.Equal(t, []int64{1071, 462, 462}, m.ctx.Stack.Values())

	m.Update(keyPress("r"))
	require.NotNil(t, m.result)
	assert.Equal(t, int64(21), *m.result)
	assert.Contains(t, m.View(), "Result: 21")

	// Stepping a finished program does nothing.
	steps := m.ctx.Steps()
	m.Update(keyPress("n"))
	assert.Equal(t, steps, m.ctx.Steps())

	m.Update(keyPress("0"))
	assert.Nil(t, m.result)
	assert.Equal(t, 0, m.ctx.IP())
	assert.Equal(t, []int64{1071, 462}, m.ctx.Stack.Values())

	_, cmd := m.Update(keyPress("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestStepperTrap(t *testing.T) {
	f, err := interp.LoadProgramFile(program("divzero"))
	require.NoError(t, err)

	m := newStepper(f, 24)
	m.Update(keyPress("r"))
	assert.ErrorIs(t, m.err, interp.TrapDivByZero)
	assert.Contains(t, m.View(), "Trap: ")
}

func TestStepperWindow(t *testing.T) {
	f, err := interp.LoadProgramFile(program("sum"))
	require.NoError(t, err)

	m := newStepper(f, 12)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 12})
	start, end := m.window()
	assert.Equal(t, 0, start)
	assert.Equal(t, 4, end)

	for m.ctx.IP() < 12 {
		m.Update(keyPress("n"))
	}
	start, end = m.window()
	assert.LessOrEqual(t, start, 12)
	assert.Greater(t, end, 12)
	assert.Equal(t, 4, end-start)
}
