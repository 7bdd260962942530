package pages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/buckleypaul/guardflash/internal/app"
	"github.com/buckleypaul/guardflash/internal/config"
	"github.com/buckleypaul/guardflash/internal/notify"
	"github.com/buckleypaul/guardflash/internal/ui"
	"github.com/buckleypaul/guardflash/internal/workflow"
)

// RunFunc executes one flash-and-verify run. Notices go to n and each boot
// log line to onLine as they happen.
type RunFunc func(ctx context.Context, cfg config.Config, n notify.Notifier, onLine func(string)) workflow.Verdict

type runField struct {
	label string
	key   string
}

var runFields = []runField{
	{"STM32_CLI Path", config.KeyToolPath},
	{"ELF File", config.KeyFirmwarePath},
	{"Serial Port", config.KeySerialPort},
}

type runState int

const (
	runStateIdle runState = iota
	runStateRunning
	runStateDone
)

// runEventMsg wraps an event from a run in progress together with the
// channel the next event will arrive on.
type runEventMsg struct {
	inner tea.Msg
	ch    <-chan tea.Msg
}

type RunPage struct {
	cfg     *config.Config
	cfgDir  string
	run     RunFunc
	ctx     context.Context
	cursor  int
	editing bool
	input   textinput.Model
	spinner spinner.Model
	state   runState
	notices []notify.Notice
	verdict workflow.Verdict

	width, height int
	message       string
}

func NewRunPage(ctx context.Context, cfg *config.Config, cfgDir string, run RunFunc) *RunPage {
	ti := textinput.New()
	ti.CharLimit = 512
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &RunPage{
		cfg:     cfg,
		cfgDir:  cfgDir,
		run:     run,
		ctx:     ctx,
		input:   ti,
		spinner: sp,
	}
}

func (p *RunPage) Init() tea.Cmd { return nil }

func (p *RunPage) Update(msg tea.Msg) (app.Page, tea.Cmd) {
	switch msg := msg.(type) {
	case app.PortSelectedMsg:
		p.cfg.SerialPort = msg.Port
		p.message = fmt.Sprintf("Serial Port set to %s", msg.Port)
		return p, nil

	case runEventMsg:
		inner := msg.inner
		return p, tea.Batch(
			func() tea.Msg { return inner },
			waitForRunEvent(msg.ch),
		)

	case app.NoticeMsg:
		if p.state == runStateRunning {
			p.notices = append(p.notices, msg.Notice)
		}
		return p, nil

	case app.RunFinishedMsg:
		p.state = runStateDone
		p.verdict = msg.Verdict
		return p, nil

	case spinner.TickMsg:
		if p.state != runStateRunning {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case tea.KeyMsg:
		return p.handleKey(msg)
	}
	return p, nil
}

func (p *RunPage) handleKey(msg tea.KeyMsg) (app.Page, tea.Cmd) {
	if p.editing {
		switch msg.String() {
		case "enter":
			p.applyValue(strings.TrimSpace(p.input.Value()))
			p.editing = false
			p.input.Blur()
			return p, nil
		case "esc":
			p.editing = false
			p.input.Blur()
			return p, nil
		}
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return p, cmd
	}

	if p.state == runStateRunning {
		return p, nil
	}

	switch msg.String() {
	case "down":
		if p.cursor < len(runFields)-1 {
			p.cursor++
		}
	case "up":
		if p.cursor > 0 {
			p.cursor--
		}
	case "enter", "e":
		p.editing = true
		p.input.SetValue(p.getValue(p.cursor))
		return p, p.input.Focus()
	case "r":
		return p, p.startRun()
	case "esc":
		if p.state == runStateDone {
			p.state = runStateIdle
			p.notices = nil
		}
	}
	return p, nil
}

func (p *RunPage) startRun() tea.Cmd {
	p.state = runStateRunning
	p.notices = nil
	p.verdict = workflow.Verdict{}
	p.message = ""

	events := make(chan tea.Msg, 64)
	cfg := *p.cfg
	run := p.run
	ctx := p.ctx
	go func() {
		defer close(events)
		n := notify.Func(func(no notify.Notice) { events <- app.NoticeMsg{Notice: no} })
		v := run(ctx, cfg, n, func(line string) { events <- app.LogLineMsg{Line: line} })
		events <- app.RunFinishedMsg{Verdict: v}
	}()

	return tea.Batch(
		func() tea.Msg { return app.RunStartedMsg{} },
		p.spinner.Tick,
		waitForRunEvent(events),
	)
}

func waitForRunEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return runEventMsg{inner: msg, ch: ch}
	}
}

func (p *RunPage) View() string {
	var inner strings.Builder

	for i, f := range runFields {
		cursor := "  "
		if i == p.cursor {
			cursor = ui.BoldStyle.Render("> ")
		}

		val := p.getValue(i)
		if val == "" {
			val = ui.DimStyle.Render("(not set)")
		}

		line := fmt.Sprintf("%s%-16s %s", cursor, f.label, val)
		inner.WriteString(line)
		inner.WriteString("\n")
	}

	if p.editing {
		inner.WriteString("\n")
		inner.WriteString(fmt.Sprintf("  Edit %s:\n", runFields[p.cursor].label))
		inner.WriteString("  " + p.input.View())
		inner.WriteString("\n")
	}

	if p.message != "" {
		inner.WriteString("\n  " + p.message + "\n")
	}

	form := ui.Panel("Device", inner.String(), p.width, 0, !p.editing && p.state != runStateRunning)

	return form + "\n" + ui.Panel("Result", p.resultView(), p.width, 0, p.state == runStateDone)
}

func (p *RunPage) resultView() string {
	var b strings.Builder
	switch p.state {
	case runStateIdle:
		b.WriteString(ui.DimStyle.Render("Press r to program the device and read its boot log."))
		return b.String()
	case runStateRunning:
		b.WriteString(p.spinner.View() + " Running...")
	case runStateDone:
		b.WriteString(ui.VerdictBadge(p.verdict.Outcome.String()))
		b.WriteString("  " + p.verdict.Message)
		if p.verdict.Duration > 0 {
			b.WriteString(ui.DimStyle.Render(fmt.Sprintf("  (%s)", p.verdict.Duration.Round(100*time.Millisecond))))
		}
	}
	for _, n := range p.notices {
		b.WriteString("\n")
		b.WriteString(ui.NoticeLine(n.Kind.String(), n.Title, n.Body))
	}
	return b.String()
}

func (p *RunPage) Name() string { return "Run" }

func (p *RunPage) ShortHelp() []key.Binding {
	if p.editing {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		}
	}
	if p.state == runStateRunning {
		return nil
	}
	bindings := []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "run")),
	}
	if p.state == runStateDone {
		bindings = append(bindings, key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear")))
	}
	return bindings
}

func (p *RunPage) InputCaptured() bool {
	return p.editing
}

func (p *RunPage) SetSize(w, h int) {
	p.width = w
	p.height = h
}

func (p *RunPage) getValue(idx int) string {
	switch runFields[idx].key {
	case config.KeyToolPath:
		return p.cfg.ToolPath
	case config.KeyFirmwarePath:
		return p.cfg.FirmwarePath
	case config.KeySerialPort:
		return p.cfg.SerialPort
	}
	return ""
}

// applyValue stores the edited field and persists the whole config.
func (p *RunPage) applyValue(val string) {
	switch runFields[p.cursor].key {
	case config.KeyToolPath:
		p.cfg.ToolPath = val
	case config.KeyFirmwarePath:
		p.cfg.FirmwarePath = val
	case config.KeySerialPort:
		p.cfg.SerialPort = val
	}
	if err := config.Save(*p.cfg, p.cfgDir); err != nil {
		p.message = fmt.Sprintf("Error saving: %v", err)
		return
	}
	p.message = fmt.Sprintf("%s updated", runFields[p.cursor].label)
}
