package apps

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/GriffinCanCode/TermDesk/internal/sdk"
)

var calcDisplayStyle = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder()).
	Padding(0, 1).
	Align(lipgloss.Right).
	Width(20)

// calculator is a four-function immediate-execution calculator.
type calculator struct {
	display string
	acc     float64
	pending string
	// fresh marks the display as replaceable by the next digit.
	fresh bool
}

func newCalculator(sdk.Context) (sdk.Widget, error) {
	return &calculator{display: "0", fresh: true}, nil
}

func (c *calculator) Init() tea.Cmd { return nil }

func (c *calculator) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}
	s := key.String()
	switch {
	case len(s) == 1 && s[0] >= '0' && s[0] <= '9':
		c.digit(s)
	case s == ".":
		if !strings.Contains(c.display, ".") {
			c.display += "."
			c.fresh = false
		}
	case s == "+" || s == "-" || s == "*" || s == "/":
		c.operator(s)
	case s == "=" || s == "enter":
		c.equals()
	case s == "backspace":
		c.backspace()
	case s == "c":
		*c = calculator{display: "0", fresh: true}
	}
	return c, nil
}

func (c *calculator) digit(s string) {
	if c.fresh || c.display == "0" {
		c.display = s
		c.fresh = false
		return
	}
	c.display += s
}

func (c *calculator) operator(op string) {
	c.equals()
	c.acc = c.value()
	c.pending = op
	c.fresh = true
}

func (c *calculator) equals() {
	if c.pending == "" {
		return
	}
	rhs := c.value()
	var result float64
	switch c.pending {
	case "+":
		result = c.acc + rhs
	case "-":
		result = c.acc - rhs
	case "*":
		result = c.acc * rhs
	case "/":
		if rhs == 0 {
			c.display = "err"
			c.pending = ""
			c.fresh = true
			return
		}
		result = c.acc / rhs
	}
	c.display = strconv.FormatFloat(result, 'f', -1, 64)
	c.pending = ""
	c.fresh = true
}

func (c *calculator) backspace() {
	if c.fresh || len(c.display) <= 1 {
		c.display = "0"
		c.fresh = true
		return
	}
	c.display = c.display[:len(c.display)-1]
}

func (c *calculator) value() float64 {
	v, err := strconv.ParseFloat(c.display, 64)
	if err != nil {
		return 0
	}
	return v
}

func (c *calculator) View() string {
	hint := "digits  + - * /  enter  c"
	if c.pending != "" {
		hint = fmt.Sprintf("pending: %s %s", strconv.FormatFloat(c.acc, 'f', -1, 64), c.pending)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		calcDisplayStyle.Render(c.display),
		lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(hint))
}
