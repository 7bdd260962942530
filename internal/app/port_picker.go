package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/buckleypaul/guardflash/internal/serial"
	"github.com/buckleypaul/guardflash/internal/ui"
)

// PortChosenMsg is sent when the operator picks a serial port, either from
// the enumerated list or by typing a name that is not listed.
type PortChosenMsg struct {
	Port string
}

// PortPickerClosedMsg is sent when the picker is dismissed.
type PortPickerClosedMsg struct{}

const visiblePorts = 10

// PortPicker is the overlay for choosing the device's serial port.
type PortPicker struct {
	ports   []serial.PortInfo
	matches []serial.PortInfo
	loading bool
	err     error
	query   textinput.Model
	cursor  int
	width   int
}

// NewPortPicker returns a picker waiting for SetPorts.
func NewPortPicker() *PortPicker {
	q := textinput.New()
	q.Prompt = "> "
	q.Placeholder = "filter, or type a port name"
	q.CharLimit = 256
	q.Focus()
	return &PortPicker{query: q, loading: true}
}

// SetPorts fills the list once enumeration finishes.
func (p *PortPicker) SetPorts(ports []serial.PortInfo, err error) {
	p.loading = false
	p.ports = ports
	p.err = err
	p.refilter()
}

func (p *PortPicker) SetSize(w, h int) {
	p.width = w
}

// Update handles a key press.
func (p *PortPicker) Update(msg tea.KeyMsg) (*PortPicker, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return p, func() tea.Msg { return PortPickerClosedMsg{} }
	case "up":
		if p.cursor > 0 {
			p.cursor--
		}
		return p, nil
	case "down":
		if p.cursor < len(p.matches)-1 {
			p.cursor++
		}
		return p, nil
	case "enter":
		port := p.choice()
		if port == "" {
			return p, nil
		}
		return p, func() tea.Msg { return PortChosenMsg{Port: port} }
	}

	var cmd tea.Cmd
	p.query, cmd = p.query.Update(msg)
	p.refilter()
	return p, cmd
}

// choice is the highlighted port, or the typed text when nothing matches.
func (p *PortPicker) choice() string {
	if len(p.matches) > 0 {
		return p.matches[p.cursor].Name
	}
	return strings.TrimSpace(p.query.Value())
}

// refilter keeps ports whose name or USB description contains the query.
func (p *PortPicker) refilter() {
	q := strings.ToLower(strings.TrimSpace(p.query.Value()))
	p.matches = p.matches[:0]
	for _, port := range p.ports {
		if q == "" || strings.Contains(strings.ToLower(port.Name+" "+port.Desc()), q) {
			p.matches = append(p.matches, port)
		}
	}
	p.cursor = min(p.cursor, max(len(p.matches)-1, 0))
}

func (p *PortPicker) View() string {
	width := min(max(p.width-4, 34), 64)
	p.query.Width = width - 8

	var b strings.Builder
	b.WriteString(p.query.View())
	b.WriteString("\n\n")

	switch {
	case p.loading:
		b.WriteString(ui.DimStyle.Render("Scanning serial ports..."))
		b.WriteString("\n")
	case p.err != nil:
		b.WriteString(ui.ErrorStyle.Render(fmt.Sprintf("Listing ports failed: %v", p.err)))
		b.WriteString("\n")
	case len(p.matches) == 0:
		if typed := strings.TrimSpace(p.query.Value()); typed != "" {
			b.WriteString(ui.DimStyle.Render("enter: use " + typed))
		} else {
			b.WriteString(ui.DimStyle.Render("No serial ports found"))
		}
		b.WriteString("\n")
	}

	first, last := scrollWindow(p.cursor, len(p.matches), visiblePorts)
	for i := first; i < last; i++ {
		port := p.matches[i]
		row := "  " + port.Name
		if i == p.cursor {
			row = ui.BoldStyle.Foreground(ui.Primary).Render("> " + port.Name)
		}
		if desc := port.Desc(); desc != "" {
			row += "  " + ui.DimStyle.Render(desc)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(ui.DimStyle.Render(fmt.Sprintf("%d of %d ports  enter:select  esc:close", len(p.matches), len(p.ports))))

	return ui.Panel("Select Serial Port", b.String(), width, 0, true)
}

// scrollWindow returns the [first, last) slice of n rows of which at most
// size are shown, keeping cursor visible.
func scrollWindow(cursor, n, size int) (int, int) {
	if n <= size {
		return 0, n
	}
	first := max(cursor-size+1, 0)
	return first, first + size
}
