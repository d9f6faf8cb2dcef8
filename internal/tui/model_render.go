package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/colonyops/tabula/internal/browse"
	"github.com/colonyops/tabula/internal/core/notify"
	"github.com/colonyops/tabula/internal/core/store"
	"github.com/colonyops/tabula/internal/core/styles"
	"github.com/colonyops/tabula/internal/tui/components"
)

const progressBarWidth = 20

// View renders the TUI.
func (m Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render composes the screen with any overlays.
func (m Model) render() string {
	w, h := m.width, m.height
	if w == 0 {
		w = 80
	}
	if h == 0 {
		h = 24
	}

	content := m.renderMain(w)

	if m.state == stateShowingHelp && m.helpDialog != nil {
		content = m.helpDialog.Overlay(content, w, h)
	}
	if m.toastController.HasToasts() {
		content = m.toastView.Overlay(content, w, h)
	}
	return content
}

func (m Model) renderMain(width int) string {
	page := m.pageRows()

	parts := []string{m.renderTitle(width)}

	body := m.renderBody(width, page)
	parts = append(parts, lipgloss.NewStyle().Height(page+2).Render(body))

	if m.searchBarVisible() {
		parts = append(parts, m.search.View(m.session.Schema(), width))
	}
	parts = append(parts, m.renderStatus(width))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderTitle shows the file name, row counts, and load progress.
func (m Model) renderTitle(width int) string {
	name := styles.TitleStyle.Render(styles.IconTable + " " + filepath.Base(m.session.Path()))

	percent, loaded, total := m.session.Progress()
	counts := styles.MutedTextStyle.Render(fmt.Sprintf("%s / %s rows", humanize.Comma(int64(loaded)), humanize.Comma(int64(total))))

	var state string
	switch m.session.State() {
	case browse.StateLoading:
		state = m.spinner.View() + " " + renderProgressBar(percent) + fmt.Sprintf(" %3d%%", percent)
	case browse.StateCancelled:
		state = styles.StatusErrorStyle.Render("cancelled")
	case browse.StateFailed:
		state = styles.StatusErrorStyle.Render("failed")
	}

	left := lipgloss.JoinHorizontal(lipgloss.Left, name, "  ", counts)
	if state != "" {
		left = lipgloss.JoinHorizontal(lipgloss.Left, left, "  ", state)
	}

	var right string
	if m.watcher != nil {
		right = styles.MutedTextStyle.Render(styles.IconWatch + " watching")
	}

	spacer := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + components.Pad(spacer) + right
}

func renderProgressBar(percent int) string {
	filled := min(max(percent, 0), 100) * progressBarWidth / 100
	return styles.ProgressFullStyle.Render(strings.Repeat("█", filled)) +
		styles.ProgressVoidStyle.Render(strings.Repeat("░", progressBarWidth-filled))
}

// renderBody draws the visible slice of the current window.
func (m Model) renderBody(width, page int) string {
	win := m.session.Window()
	if win.Schema.Len() == 0 {
		switch m.session.State() {
		case browse.StateFailed:
			return styles.StatusErrorStyle.Render(fmt.Sprintf("%s %v", styles.IconError, m.session.Err()))
		case browse.StateLoading:
			return styles.MutedTextStyle.Render("Waiting for data...")
		default:
			return styles.MutedTextStyle.Render("No data")
		}
	}

	visible := visibleSlice(win, m.top, page)
	return m.table.Render(TableState{
		Window:    visible,
		Rows:      page,
		Cursor:    m.cursor - visible.Offset,
		ColOffset: m.colOffset,
		Width:     width,
		Result:    m.session.Result(),
	})
}

// visibleSlice cuts the rows starting at dataset row top out of win. Until
// a pending scroll request lands, top may lie outside the window; the slice
// is then clamped to the window's own rows.
func visibleSlice(win store.Window, top, page int) store.Window {
	local := min(max(top-win.Offset, 0), max(win.Len()-page, 0))
	end := min(local+page, win.Len())

	return store.Window{
		Offset: win.Offset + local,
		Rows:   win.Rows[local:end],
		Schema: win.Schema,
		Total:  win.Total,
	}
}

// renderStatus shows the last status message, the cursor position, and key
// hints.
func (m Model) renderStatus(width int) string {
	last := m.status.last

	var msg string
	switch last.Level {
	case notify.LevelError:
		msg = styles.StatusErrorStyle.Render(last.Message)
	default:
		msg = last.Message
	}

	total := m.session.Store().Total()
	position := ""
	if total > 0 {
		position = fmt.Sprintf("row %s/%s", humanize.Comma(int64(m.cursor+1)), humanize.Comma(int64(total)))
	}

	hints := make([]string, 0, len(m.keys.ShortHelp()))
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, h.Key+" "+h.Desc)
	}
	right := position + "  " + styles.KeyHintStyle.Render(strings.Join(hints, " • "))

	spacer := max(width-lipgloss.Width(msg)-lipgloss.Width(right)-2, 1)
	return styles.StatusBarStyle.Width(width).Render(msg + components.Pad(spacer) + right)
}
