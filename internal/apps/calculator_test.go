package apps

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/TermDesk/internal/sdk"
)

func press(t *testing.T, c *calculator, keys string) *calculator {
	t.Helper()
	for _, r := range keys {
		var msg tea.Msg
		if r == '\n' {
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		} else {
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
		}
		model, _ := c.Update(msg)
		c = model.(*calculator)
	}
	return c
}

func newTestCalc(t *testing.T) *calculator {
	t.Helper()
	w, err := newCalculator(sdk.Context{})
	require.NoError(t, err)
	return w.(*calculator)
}

func TestCalculatorAddition(t *testing.T) {
	c := newTestCalc(t)
	c = press(t, c, "12+34\n")
	assert.Equal(t, "46", c.display)
}

func TestCalculatorChainedOperations(t *testing.T) {
	c := newTestCalc(t)
	// Immediate execution: 2 + 3 * 4 = (2+3)*4.
	c = press(t, c, "2+3*4\n")
	assert.Equal(t, "20", c.display)
}

func TestCalculatorDivision(t *testing.T) {
	c := newTestCalc(t)
	c = press(t, c, "9/2\n")
	assert.Equal(t, "4.5", c.display)
}

func TestCalculatorDivideByZero(t *testing.T) {
	c := newTestCalc(t)
	c = press(t, c, "5/0\n")
	assert.Equal(t, "err", c.display)
}

func TestCalculatorClear(t *testing.T) {
	c := newTestCalc(t)
	c = press(t, c, "123c")
	assert.Equal(t, "0", c.display)
}

func TestCalculatorDecimalPoint(t *testing.T) {
	c := newTestCalc(t)
	c = press(t, c, "1.5.5")
	assert.Equal(t, "1.55", c.display)
}
