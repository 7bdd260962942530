package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/buckleypaul/guardflash/internal/notify"
	"github.com/buckleypaul/guardflash/internal/workflow"
)

// PageID identifies each page in the application.
type PageID int

const (
	RunPage PageID = iota
	LogPage
	HistoryPage
)

var PageOrder = []PageID{
	RunPage,
	LogPage,
	HistoryPage,
}

// Page is the interface every page in the application implements.
type Page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Page, tea.Cmd)
	View() string
	Name() string
	ShortHelp() []key.Binding
	SetSize(width, height int)
}

// InputCapturer is an optional interface for pages with text inputs.
// When InputCaptured returns true, the app forwards all keys directly
// to the page instead of processing shortcuts like q, ?, left, etc.
type InputCapturer interface {
	InputCaptured() bool
}

// PortSelectedMsg is broadcast to all pages when a serial port is picked.
type PortSelectedMsg struct {
	Port string
}

// RunStartedMsg is broadcast when a run begins.
type RunStartedMsg struct{}

// NoticeMsg carries an operator notice raised during a run.
type NoticeMsg struct {
	Notice notify.Notice
}

// LogLineMsg carries one boot log line as it is read.
type LogLineMsg struct {
	Line string
}

// RunFinishedMsg is broadcast when a run has produced its verdict.
type RunFinishedMsg struct {
	Verdict workflow.Verdict
}
