package pages

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/buckleypaul/guardflash/internal/app"
	"github.com/buckleypaul/guardflash/internal/store"
	"github.com/buckleypaul/guardflash/internal/ui"
)

const historyLimit = 50

// HistorySource lists past runs, newest first.
type HistorySource interface {
	Recent(ctx context.Context, n int) ([]store.Record, error)
}

type historyLoadedMsg struct {
	records []store.Record
	err     error
}

type HistoryPage struct {
	src     HistorySource
	records []store.Record
	cursor  int
	message string

	width, height int
}

// NewHistoryPage creates the page. A nil source means history is disabled.
func NewHistoryPage(src HistorySource) *HistoryPage {
	return &HistoryPage{src: src}
}

func (p *HistoryPage) Init() tea.Cmd { return p.load() }

func (p *HistoryPage) load() tea.Cmd {
	if p.src == nil {
		return nil
	}
	src := p.src
	return func() tea.Msg {
		records, err := src.Recent(context.Background(), historyLimit)
		return historyLoadedMsg{records: records, err: err}
	}
}

func (p *HistoryPage) Update(msg tea.Msg) (app.Page, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.err != nil {
			p.message = fmt.Sprintf("Error loading history: %v", msg.err)
			return p, nil
		}
		p.message = ""
		p.records = msg.records
		if p.cursor >= len(p.records) {
			p.cursor = max(len(p.records)-1, 0)
		}
		return p, nil

	case app.RunFinishedMsg:
		return p, p.load()

	case tea.KeyMsg:
		switch msg.String() {
		case "down":
			if p.cursor < len(p.records)-1 {
				p.cursor++
			}
		case "up":
			if p.cursor > 0 {
				p.cursor--
			}
		case "r":
			return p, p.load()
		}
	}
	return p, nil
}

func (p *HistoryPage) View() string {
	if p.src == nil {
		return ui.Panel("History", ui.DimStyle.Render("History is disabled. Start with --history to record runs."), p.width, 0, false)
	}

	var b strings.Builder
	if len(p.records) == 0 {
		b.WriteString(ui.DimStyle.Render("No runs recorded yet."))
	}
	for i, r := range p.records {
		cursor := "  "
		if i == p.cursor {
			cursor = ui.BoldStyle.Render("> ")
		}
		b.WriteString(fmt.Sprintf("%s%s  %s  %-12s %s  %s\n",
			cursor,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			ui.VerdictBadge(r.Outcome),
			r.Port,
			filepath.Base(r.Firmware),
			r.Message,
		))
	}
	if p.message != "" {
		b.WriteString("\n  " + p.message)
	}
	return ui.Panel("History", b.String(), p.width, 0, false)
}

func (p *HistoryPage) Name() string { return "History" }

func (p *HistoryPage) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	}
}

func (p *HistoryPage) SetSize(w, h int) {
	p.width = w
	p.height = h
}
