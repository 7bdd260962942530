package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/buckleypaul/guardflash/internal/ui"
)

const sidebarWidth = 22 // 20 content + 2 border/padding

func renderDeviceBar(port, firmware, status string, width int, sidebarFocused bool) string {
	portDisplay := port
	if portDisplay == "" {
		portDisplay = "(none)"
	}
	fwDisplay := filepath.Base(firmware)
	if firmware == "" {
		fwDisplay = "(none)"
	}
	content := fmt.Sprintf("Port: %s  Firmware: %s", portDisplay, fwDisplay)
	hint := ""
	if sidebarFocused {
		hint = ui.DimStyle.Render("  [p] change port")
	}
	if status != "" {
		hint += "  " + ui.AccentStyle.Render(status)
	}
	return ui.StatusBarStyle.Width(width).Render(content + hint)
}

func renderSidebar(pages []PageID, active PageID, pageMap map[PageID]Page, height int, focused bool) string {
	var b strings.Builder
	var title string
	if focused {
		title = ui.BoldStyle.Render("guardflash [FOCUSED]")
	} else {
		title = ui.TitleStyle.Render("guardflash")
	}
	b.WriteString(title)
	b.WriteString("\n\n")

	for _, id := range pages {
		p := pageMap[id]
		if id == active {
			b.WriteString(ui.SidebarActiveStyle.Render("▸ " + p.Name()))
		} else {
			b.WriteString(ui.SidebarItemStyle.Render("  " + p.Name()))
		}
		b.WriteString("\n")
	}

	style := ui.SidebarStyle.Height(height)
	if focused {
		style = style.BorderForeground(ui.Primary)
	}
	return style.Render(b.String())
}

func renderStatusBar(pageHelp []key.Binding, width int, focus FocusArea) string {
	var parts []string

	// Focus-specific instructions
	if focus == FocusSidebar {
		parts = append(parts,
			ui.StatusKey("↑/↓", "navigate"),
			ui.StatusKey("enter", "select"),
			ui.StatusKey("p", "port"),
		)
	} else {
		// Page-specific keys when content is focused
		for _, kb := range pageHelp {
			if kb.Enabled() {
				parts = append(parts, ui.StatusKey(kb.Help().Key, kb.Help().Desc))
			}
		}
	}

	// Always add global keys
	parts = append(parts,
		ui.StatusKey("tab", "focus"),
		ui.StatusKey("?", "help"),
		ui.StatusKey("q", "quit"),
	)

	line := strings.Join(parts, "  ")
	return ui.StatusBarStyle.Width(width).Render(line)
}

func renderLayout(deviceBar, sidebar, content, statusBar string) string {
	main := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, content)
	return lipgloss.JoinVertical(lipgloss.Left, deviceBar, main, statusBar)
}
