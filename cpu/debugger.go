package cpu

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
)

// model is the bubbletea model behind Debug: a live, single-step view of one
// CPU's register file, the page of memory around pc, and the most recently
// decoded instruction.
type model struct {
	cpu    *CPU
	offset int

	prevPC int
	err    error
}

// wordsPerPage is how many memory cells renderPage prints per line.
const wordsPerPage = 8

// Init starts the debugger with pc already wherever Debug placed it; the
// program must already be in memory before the TUI is launched.
func (m model) Init() tea.Cmd {
	return nil
}

// Update steps the CPU by exactly one instruction cycle on space or "j",
// and quits on "q".
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case " ", "j":
			m.prevPC = m.cpu.PSW.PC
			if err := m.cpu.Step(); err != nil {
				m.err = err
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

// renderPage renders one line of memory starting at start, highlighting pc.
func (m model) renderPage(start int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%04d | ", start)
	for i := 0; i < wordsPerPage; i++ {
		addr := start + i
		w, err := m.cpu.Bus.Read(addr)
		if err != nil {
			continue
		}
		if addr == m.cpu.PSW.PC {
			fmt.Fprintf(&b, "[%07d] ", w.Magnitude)
		} else {
			fmt.Fprintf(&b, " %07d  ", w.Magnitude)
		}
	}
	return b.String()
}

// pageTable renders the page around pc plus the page around the stack
// pointer, so a single step can be followed without scrolling.
func (m model) pageTable() string {
	header := "addr | "
	for i := 0; i < wordsPerPage; i++ {
		header += fmt.Sprintf("  %d     ", i)
	}

	pageStart := (m.cpu.PSW.PC / wordsPerPage) * wordsPerPage
	stackStart := (m.cpu.SP / wordsPerPage) * wordsPerPage

	lines := []string{header, m.renderPage(pageStart)}
	if stackStart != pageStart {
		lines = append(lines, "", m.renderPage(stackStart))
	}
	return strings.Join(lines, "\n")
}

// status renders the register file: AC, pc, SP, RB/RL/RX, and the packed
// PSW fields.
func (m model) status() string {
	return fmt.Sprintf(`
 AC: %s%07d (prev pc %d)
 PC: %d
 SP: %d  RX: %d  RB: %d  RL: %d
 CC: %d  Mode: %d  IE: %d
`,
		signSymbol(m.cpu.AC.Sign), m.cpu.AC.Magnitude, m.prevPC,
		m.cpu.PSW.PC,
		m.cpu.SP, m.cpu.RX, m.cpu.RB, m.cpu.RL,
		m.cpu.PSW.CC, m.cpu.PSW.Mode, m.cpu.PSW.IE,
	)
}

func signSymbol(sign int) string {
	if sign == 1 {
		return "-"
	}
	return "+"
}

// View renders the full debugger screen: the memory pages, the register
// status, and a structured dump of the currently decoded instruction.
func (m model) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.pageTable(),
			m.status(),
		),
		"",
		spew.Sdump(m.cpu.IR),
	)
}

// Debug sets pc to offset, switches to user mode, and starts an interactive
// single-step TUI over this CPU. The switch to user mode happens on every
// call, whatever mode the CPU was in. The caller is responsible for having
// already loaded the program into the CPU's Bus.
func (c *CPU) Debug(offset int) error {
	c.PSW.PC = offset
	c.PSW.Mode = ModeUser
	m, err := tea.NewProgram(model{cpu: c, offset: offset}).Run()
	if err != nil {
		return err
	}
	if x, ok := m.(model); ok && x.err != nil {
		return x.err
	}
	return nil
}
