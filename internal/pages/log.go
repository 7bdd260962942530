package pages

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/buckleypaul/guardflash/internal/app"
	"github.com/buckleypaul/guardflash/internal/ui"
)

// LogPage shows the boot log and notices of the current run.
type LogPage struct {
	lines    []string
	viewport viewport.Model
	follow   bool

	width, height int
}

func NewLogPage() *LogPage {
	return &LogPage{
		viewport: viewport.New(0, 0),
		follow:   true,
	}
}

func (p *LogPage) Init() tea.Cmd { return nil }

func (p *LogPage) Update(msg tea.Msg) (app.Page, tea.Cmd) {
	switch msg := msg.(type) {
	case app.RunStartedMsg:
		p.lines = nil
		p.follow = true
		p.refresh()
		return p, nil

	case app.LogLineMsg:
		p.append(msg.Line)
		return p, nil

	case app.NoticeMsg:
		n := msg.Notice
		p.append(ui.NoticeLine(n.Kind.String(), n.Title, n.Body))
		return p, nil

	case app.RunFinishedMsg:
		v := msg.Verdict
		p.append(ui.DimStyle.Render(fmt.Sprintf("-- %s in %s --", v.Outcome, v.Duration)))
		return p, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "c":
			p.lines = nil
			p.refresh()
			return p, nil
		case "f":
			p.follow = !p.follow
			if p.follow {
				p.viewport.GotoBottom()
			}
			return p, nil
		}
	}

	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

func (p *LogPage) append(line string) {
	p.lines = append(p.lines, line)
	p.refresh()
}

func (p *LogPage) refresh() {
	p.viewport.SetContent(strings.Join(p.lines, "\n"))
	if p.follow {
		p.viewport.GotoBottom()
	}
}

func (p *LogPage) View() string {
	if len(p.lines) == 0 {
		return ui.Panel("Boot Log", ui.DimStyle.Render("No output yet. Start a run from the Run page."), p.width, 0, false)
	}
	return ui.Panel("Boot Log", p.viewport.View(), p.width, p.height, false)
}

func (p *LogPage) Name() string { return "Log" }

func (p *LogPage) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "scroll")),
		key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "follow")),
		key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
	}
}

func (p *LogPage) SetSize(w, h int) {
	p.width = w
	p.height = h
	// Panel border and padding
	p.viewport.Width = max(w-4, 0)
	p.viewport.Height = max(h-2, 0)
	p.refresh()
}
