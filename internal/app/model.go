package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/buckleypaul/guardflash/internal/config"
	"github.com/buckleypaul/guardflash/internal/serial"
	"github.com/buckleypaul/guardflash/internal/ui"
)

type FocusArea int

const (
	FocusSidebar FocusArea = iota
	FocusContent
)

// PortLister enumerates serial ports for the picker.
type PortLister func() ([]serial.PortInfo, error)

// portsLoadedMsg delivers the result of a PortLister call.
type portsLoadedMsg struct {
	ports []serial.PortInfo
	err   error
}

type Model struct {
	pages      map[PageID]Page
	activePage PageID
	focus      FocusArea
	width      int
	height     int
	showHelp   bool
	picker     *PortPicker
	cfg        *config.Config
	cfgDir     string
	listPorts  PortLister
	status     string
}

func New(pages map[PageID]Page, cfg *config.Config, cfgDir string, listPorts PortLister) Model {
	if listPorts == nil {
		listPorts = serial.ListPorts
	}
	return Model{
		pages:     pages,
		cfg:       cfg,
		cfgDir:    cfgDir,
		listPorts: listPorts,
	}
}

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, p := range m.pages {
		if cmd := p.Init(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		contentWidth := m.width - sidebarWidth
		contentHeight := m.height - 2 - 1 // status bar + device bar
		for _, p := range m.pages {
			p.SetSize(contentWidth, contentHeight)
		}
		return m, nil

	case portsLoadedMsg:
		if m.picker == nil {
			return m, nil
		}
		m.picker.SetPorts(msg.ports, msg.err)
		if msg.err != nil {
			m.status = fmt.Sprintf("Listing ports failed: %v", msg.err)
		}
		return m, nil

	case PortChosenMsg:
		m.picker = nil
		m.cfg.SerialPort = msg.Port
		if err := config.Save(*m.cfg, m.cfgDir); err != nil {
			m.status = fmt.Sprintf("Error saving: %v", err)
		} else {
			m.status = ""
		}
		// Broadcast to all pages
		return m, func() tea.Msg { return PortSelectedMsg{Port: msg.Port} }

	case PortPickerClosedMsg:
		m.picker = nil
		return m, nil

	case PortSelectedMsg:
		var cmds []tea.Cmd
		for id, page := range m.pages {
			newPage, cmd := page.Update(msg)
			m.pages[id] = newPage
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		// When picker is open, forward all keys to picker
		if m.picker != nil {
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			return m, cmd
		}

		// When a page has an active text input, forward all keys
		// directly to the page; only ctrl+c still quits.
		if m.focus == FocusContent {
			if ic, ok := m.pages[m.activePage].(InputCapturer); ok && ic.InputCaptured() {
				if msg.String() == "ctrl+c" {
					return m, tea.Quit
				}
				page := m.pages[m.activePage]
				newPage, cmd := page.Update(msg)
				m.pages[m.activePage] = newPage
				return m, cmd
			}
		}

		// Global key handling
		switch {
		case key.Matches(msg, GlobalKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, GlobalKeys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, GlobalKeys.ToggleFocus):
			if m.focus == FocusSidebar {
				m.focus = FocusContent
				return m, nil
			}
			// When content focused, fall through to page handler
		}

		// Sidebar-only shortcuts
		if m.focus == FocusSidebar {
			if key.Matches(msg, GlobalKeys.PortPicker) {
				m.picker = NewPortPicker()
				contentWidth := m.width - sidebarWidth
				contentHeight := m.height - 2 - 1
				m.picker.SetSize(contentWidth, contentHeight)
				list := m.listPorts
				return m, func() tea.Msg {
					ports, err := list()
					return portsLoadedMsg{ports: ports, err: err}
				}
			}
		}

		// Handle arrow keys based on focus
		if m.focus == FocusSidebar {
			switch msg.String() {
			case "up":
				m.prevPage()
				return m, nil
			case "down":
				m.nextPage()
				return m, nil
			case "enter", "right":
				m.focus = FocusContent
				return m, nil
			}
		} else if m.focus == FocusContent {
			if msg.String() == "left" {
				m.focus = FocusSidebar
				return m, nil
			}
		}
	}

	// Key messages: only forward to active page when content is focused
	if _, isKey := msg.(tea.KeyMsg); isKey {
		if m.focus != FocusContent {
			return m, nil
		}
		page := m.pages[m.activePage]
		newPage, cmd := page.Update(msg)
		m.pages[m.activePage] = newPage
		return m, cmd
	}

	// Non-key messages (run events, etc.): forward to all pages
	// so responses reach the page that initiated the command
	var cmds []tea.Cmd
	for id, page := range m.pages {
		newPage, cmd := page.Update(msg)
		m.pages[id] = newPage
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	contentWidth := m.width - sidebarWidth
	contentHeight := m.height - 2 - 1 // status bar + device bar

	page := m.pages[m.activePage]

	deviceBar := renderDeviceBar(m.cfg.SerialPort, m.cfg.FirmwarePath, m.status, m.width, m.focus == FocusSidebar)
	sidebar := renderSidebar(PageOrder, m.activePage, m.pages, contentHeight, m.focus == FocusSidebar)
	content := ui.ContentStyle.
		Width(contentWidth).
		Height(contentHeight).
		Render(page.View())

	// Overlay picker on content area when open
	if m.picker != nil {
		m.picker.SetSize(contentWidth, contentHeight)
		pickerView := m.picker.View()
		content = lipgloss.Place(
			contentWidth, contentHeight,
			lipgloss.Center, lipgloss.Center,
			pickerView,
		)
	}

	statusBar := renderStatusBar(page.ShortHelp(), m.width, m.focus)

	return renderLayout(deviceBar, sidebar, content, statusBar)
}

func (m *Model) nextPage() {
	for i, id := range PageOrder {
		if id == m.activePage {
			m.activePage = PageOrder[(i+1)%len(PageOrder)]
			return
		}
	}
}

func (m *Model) prevPage() {
	for i, id := range PageOrder {
		if id == m.activePage {
			m.activePage = PageOrder[(i-1+len(PageOrder))%len(PageOrder)]
			return
		}
	}
}
