package tui

import (
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/tabula/internal/browse"
	"github.com/colonyops/tabula/internal/core/notify"
	"github.com/colonyops/tabula/internal/core/search"
	"github.com/colonyops/tabula/internal/tui/components"
)

// --- Loading ---

// openSource starts a fresh load of the source, replacing any load in flight.
func (m Model) openSource(reload bool) (Model, tea.Cmd) {
	if reload {
		m.loader = m.session.Reload()
	} else {
		m.loader = m.session.Open(m.path)
	}

	m.top, m.cursor, m.colOffset, m.scrollPos = 0, 0, 0, 0
	m.search.ResetColumn()
	if m.loader == nil {
		return m, nil
	}

	m.log.Debug().Uint64("gen", m.loader.Generation()).Bool("reload", reload).Msg("source opened")
	return m, tea.Batch(listenLoader(m.loader), m.spinner.Tick)
}

func (m Model) handleLoaderEvent(msg loaderEventMsg) (Model, tea.Cmd) {
	if m.loader == nil || msg.gen != m.loader.Generation() {
		// the listener of a replaced load; let it die
		return m, nil
	}

	m.session.Handle(msg.ev)
	m.ensureCursorVisible()
	return m, listenLoader(m.loader)
}

func (m Model) handleScrollRequest(msg scrollRequestMsg) (Model, tea.Cmd) {
	m.session.ApplyScroll(msg.req)
	return m, listenScroll(m.session.ScrollRequests())
}

func (m Model) handleSourceChanged(msg browse.SourceChangedMsg) (Model, tea.Cmd) {
	var next tea.Cmd
	if m.watcher != nil {
		next = m.watcher.Start()
	}

	if msg.Removed {
		m.status.push(notify.Warnf("%s was removed", msg.Path))
		return m, next
	}

	m.log.Info().Str("path", msg.Path).Msg("source changed, reloading")
	m, cmd := m.openSource(true)
	return m, tea.Batch(cmd, next)
}

// --- Input ---

func (m Model) handleKey(msg tea.KeyPressMsg) (Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr == keyCtrlC {
		return m.quit()
	}

	switch m.state {
	case stateShowingHelp:
		return m.handleHelpDialogKey(keyStr)
	case stateSearching:
		return m.handleSearchKey(msg, keyStr)
	}
	return m.handleNormalKey(msg)
}

func (m Model) handleHelpDialogKey(keyStr string) (Model, tea.Cmd) {
	switch keyStr {
	case keyEsc, "?", "q":
		m.state = stateNormal
		m.helpDialog = nil
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyPressMsg, keyStr string) (Model, tea.Cmd) {
	switch keyStr {
	case keyEnter:
		m.search.Blur()
		m.state = stateNormal
		return m, nil
	case keyEsc:
		m.search.Clear()
		m.search.ResetColumn()
		m.session.Search("", search.AllColumns)
		m.state = stateNormal
		return m, nil
	case "tab":
		m.search.CycleColumn(m.session.Schema())
		m.runSearch()
		return m, nil
	}

	var cmd tea.Cmd
	var changed bool
	m.search, cmd, changed = m.search.Update(msg)
	if changed {
		m.runSearch()
	}
	return m, cmd
}

func (m Model) handleNormalKey(msg tea.KeyPressMsg) (Model, tea.Cmd) {
	page := m.pageRows()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.helpDialog = components.NewHelpDialog("Keyboard Shortcuts", m.keys.HelpSections())
		m.state = stateShowingHelp
	case key.Matches(msg, m.keys.Search):
		m.state = stateSearching
		return m, m.search.Activate()
	case key.Matches(msg, m.keys.NextMatch):
		if row, ok := m.session.NextMatch(); ok {
			m.jumpTo(row)
		}
	case key.Matches(msg, m.keys.PrevMatch):
		if row, ok := m.session.PrevMatch(); ok {
			m.jumpTo(row)
		}
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.PageDown):
		m.scrollBy(page)
	case key.Matches(msg, m.keys.PageUp):
		m.scrollBy(-page)
	case key.Matches(msg, m.keys.HalfDown):
		m.scrollBy(max(page/2, 1))
	case key.Matches(msg, m.keys.HalfUp):
		m.scrollBy(-max(page/2, 1))
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		m.setTop(0)
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = max(m.session.Store().Total()-1, 0)
		m.setTop(m.cursor - page + 1)
	case key.Matches(msg, m.keys.Left):
		m.colOffset = max(m.colOffset-1, 0)
	case key.Matches(msg, m.keys.Right):
		cols := len(m.table.VisibleColumns(m.session.Schema()))
		m.colOffset = min(m.colOffset+1, max(cols-1, 0))
	case key.Matches(msg, m.keys.Reload):
		return m.openSource(true)
	case key.Matches(msg, m.keys.CancelLoad):
		m.session.Cancel()
	}
	return m, nil
}

// --- Navigation ---

// pageRows is the number of table body rows that fit on screen.
func (m Model) pageRows() int {
	rows := m.height - chromeRows
	if m.searchBarVisible() {
		rows--
	}
	return max(rows, 1)
}

func (m Model) searchBarVisible() bool {
	return m.state == stateSearching || m.search.Query() != ""
}

// moveCursor moves the selected row and scrolls when it leaves the screen.
func (m *Model) moveCursor(delta int) {
	total := m.session.Store().Total()
	if total == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), total-1)
	m.ensureCursorVisible()
}

// scrollBy moves the screen and the cursor together.
func (m *Model) scrollBy(delta int) {
	total := m.session.Store().Total()
	if total == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), total-1)
	m.setTop(m.top + delta)
}

// ensureCursorVisible scrolls the minimum amount that brings the cursor on
// screen.
func (m *Model) ensureCursorVisible() {
	page := m.pageRows()
	switch {
	case m.cursor < m.top:
		m.setTop(m.cursor)
	case m.cursor >= m.top+page:
		m.setTop(m.cursor - page + 1)
	default:
		m.setTop(m.top)
	}
}

// setTop sets the first visible row and feeds the matching scrollbar
// position to the mapper. The window follows once the debounced request
// arrives.
func (m *Model) setTop(top int) {
	total := m.session.Store().Total()
	m.top = min(max(top, 0), max(total-m.pageRows(), 0))

	pos := min(m.top, m.session.ScrollRange())
	if pos != m.scrollPos {
		m.scrollPos = pos
		m.session.Scroll(pos)
	}
}

// jumpTo selects row after the session has already repositioned the window.
func (m *Model) jumpTo(row int) {
	m.cursor = row
	m.top = m.session.Window().Offset
	m.scrollPos = min(m.top, m.session.ScrollRange())
	m.ensureCursorVisible()
}

func (m *Model) runSearch() {
	res := m.session.Search(m.search.Query(), m.search.Column())
	if row, ok := res.Current(); ok && res.Moved {
		m.jumpTo(row)
	}
}
