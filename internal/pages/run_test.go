package pages

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/buckleypaul/guardflash/internal/app"
	"github.com/buckleypaul/guardflash/internal/config"
	"github.com/buckleypaul/guardflash/internal/notify"
	"github.com/buckleypaul/guardflash/internal/workflow"
)

type fakeRun struct {
	calls   []config.Config
	lines   []string
	notices []notify.Notice
	verdict workflow.Verdict
}

func (f *fakeRun) run(_ context.Context, cfg config.Config, n notify.Notifier, onLine func(string)) workflow.Verdict {
	f.calls = append(f.calls, cfg)
	for _, l := range f.lines {
		onLine(l)
	}
	for _, no := range f.notices {
		switch no.Kind {
		case notify.KindError:
			n.Error(no.Title, no.Body)
		case notify.KindSuccess:
			n.Success(no.Title, no.Body)
		default:
			n.Info(no.Title, no.Body)
		}
	}
	return f.verdict
}

// drain executes cmd and every command it produces, feeding messages back
// into the page until the run has finished. It returns every message seen.
func drain(t *testing.T, p app.Page, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var seen []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 && len(seen) < 100 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		switch msg := msg.(type) {
		case nil:
			continue
		case tea.BatchMsg:
			queue = append(queue, msg...)
			continue
		}
		seen = append(seen, msg)
		var next tea.Cmd
		_, next = p.Update(msg)
		queue = append(queue, next)
		if _, ok := msg.(app.RunFinishedMsg); ok {
			break
		}
	}
	return seen
}

func TestRunFieldNavigation(t *testing.T) {
	cfg := config.Config{}
	p := NewRunPage(context.Background(), &cfg, t.TempDir(), nil)

	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p.Update(tea.KeyMsg{Type: tea.KeyDown})
	if p.cursor != len(runFields)-1 {
		t.Fatalf("expected cursor to clamp at %d, got %d", len(runFields)-1, p.cursor)
	}
	p.Update(tea.KeyMsg{Type: tea.KeyUp})
	if p.cursor != 1 {
		t.Fatalf("expected cursor=1 after up, got %d", p.cursor)
	}
}

func TestRunEditSavesConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{}
	p := NewRunPage(context.Background(), &cfg, dir, nil)

	p.Update(tea.KeyMsg{Type: tea.KeyDown}) // ELF File
	p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !p.InputCaptured() {
		t.Fatal("expected input to be captured while editing")
	}
	p.input.SetValue("  build/guard.elf ")
	p.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if p.InputCaptured() {
		t.Fatal("expected editing to end after enter")
	}
	if cfg.FirmwarePath != "build/guard.elf" {
		t.Fatalf("expected trimmed firmware path, got %q", cfg.FirmwarePath)
	}
	if loaded := config.Load(dir); loaded.FirmwarePath != "build/guard.elf" {
		t.Fatalf("expected firmware path persisted, got %q", loaded.FirmwarePath)
	}
	if !strings.Contains(p.message, "ELF File updated") {
		t.Fatalf("unexpected message %q", p.message)
	}
}

func TestRunEditEscCancels(t *testing.T) {
	cfg := config.Config{ToolPath: "/opt/cli"}
	p := NewRunPage(context.Background(), &cfg, t.TempDir(), nil)

	p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	p.input.SetValue("/elsewhere")
	p.Update(tea.KeyMsg{Type: tea.KeyEsc})

	if cfg.ToolPath != "/opt/cli" {
		t.Fatalf("expected ToolPath unchanged, got %q", cfg.ToolPath)
	}
}

func TestRunPageAppliesSelectedPort(t *testing.T) {
	cfg := config.Config{}
	p := NewRunPage(context.Background(), &cfg, t.TempDir(), nil)

	p.Update(app.PortSelectedMsg{Port: "COM4"})
	if cfg.SerialPort != "COM4" {
		t.Fatalf("expected SerialPort=COM4, got %q", cfg.SerialPort)
	}
}

func TestRunStreamsEventsAndVerdict(t *testing.T) {
	cfg := config.Config{ToolPath: "/opt/cli", FirmwarePath: "fw.elf", SerialPort: "/dev/ttyACM0"}
	fake := &fakeRun{
		lines:   []string{"EFloodGuardLP(1.2.3)", "Battery Voltage:3000", "Entering Sleep."},
		notices: []notify.Notice{{Kind: notify.KindInfo, Title: "Success", Body: "Disconnection successful."}},
		verdict: workflow.Verdict{Outcome: workflow.OutcomePass, Message: "Pass: Firmware Version 1.2.3, Battery Voltage 4.84V"},
	}
	p := NewRunPage(context.Background(), &cfg, t.TempDir(), fake.run)

	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if cmd == nil {
		t.Fatal("expected run command")
	}
	if p.state != runStateRunning {
		t.Fatalf("expected running state, got %v", p.state)
	}

	seen := drain(t, p, cmd)

	var lines int
	var started bool
	for _, msg := range seen {
		switch msg.(type) {
		case app.LogLineMsg:
			lines++
		case app.RunStartedMsg:
			started = true
		}
	}
	if !started {
		t.Fatal("expected RunStartedMsg")
	}
	if lines != 3 {
		t.Fatalf("expected 3 log lines, got %d", lines)
	}
	if p.state != runStateDone {
		t.Fatalf("expected done state, got %v", p.state)
	}
	if !p.verdict.Passed() {
		t.Fatalf("expected pass verdict, got %+v", p.verdict)
	}
	if len(p.notices) != 1 || p.notices[0].Body != "Disconnection successful." {
		t.Fatalf("unexpected notices %+v", p.notices)
	}
	if len(fake.calls) != 1 || fake.calls[0] != cfg {
		t.Fatalf("expected run with current config, got %+v", fake.calls)
	}
	if !strings.Contains(p.View(), "Pass: Firmware Version 1.2.3") {
		t.Fatal("expected verdict in view")
	}
}

func TestRunIgnoresKeysWhileRunning(t *testing.T) {
	cfg := config.Config{}
	p := NewRunPage(context.Background(), &cfg, t.TempDir(), (&fakeRun{}).run)
	p.state = runStateRunning

	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if cmd != nil {
		t.Fatal("expected no second run while one is in progress")
	}
}
