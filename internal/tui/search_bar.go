package tui

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/tabula/internal/core/search"
	"github.com/colonyops/tabula/internal/core/styles"
	"github.com/colonyops/tabula/internal/core/table"
)

const allColumnsLabel = "All Columns"

// SearchBar is the query input with its column selector.
type SearchBar struct {
	active bool
	input  textinput.Model
	column int // search.AllColumns or a schema index
}

// NewSearchBar creates an inactive search bar.
func NewSearchBar() SearchBar {
	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.Prompt = ""
	ti.CharLimit = 200
	ti.KeyMap.Paste.SetEnabled(true)

	return SearchBar{
		input:  ti,
		column: search.AllColumns,
	}
}

// Activate focuses the input, keeping the previous query for editing.
func (s *SearchBar) Activate() tea.Cmd {
	s.active = true
	return s.input.Focus()
}

// Blur leaves the input but keeps the query.
func (s *SearchBar) Blur() {
	s.active = false
	s.input.Blur()
}

// Clear empties the query and leaves the input.
func (s *SearchBar) Clear() {
	s.Blur()
	s.input.SetValue("")
}

// Update forwards a message to the text input and reports whether the query
// changed.
func (s SearchBar) Update(msg tea.Msg) (SearchBar, tea.Cmd, bool) {
	if !s.active {
		return s, nil, false
	}

	before := s.input.Value()
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd, s.input.Value() != before
}

// CycleColumn advances the column selector: all columns, then each column of
// schema in order, then back to all columns.
func (s *SearchBar) CycleColumn(schema table.Schema) {
	switch {
	case schema.Len() == 0:
		s.column = search.AllColumns
	case s.column == search.AllColumns:
		s.column = 0
	case s.column+1 >= schema.Len():
		s.column = search.AllColumns
	default:
		s.column++
	}
}

// ResetColumn selects all columns.
func (s *SearchBar) ResetColumn() { s.column = search.AllColumns }

// Active reports whether the input has focus.
func (s SearchBar) Active() bool { return s.active }

// Query returns the current query text.
func (s SearchBar) Query() string { return s.input.Value() }

// Column returns the selected column index.
func (s SearchBar) Column() int { return s.column }

// ColumnLabel names the selected column.
func (s SearchBar) ColumnLabel(schema table.Schema) string {
	if s.column == search.AllColumns || s.column >= schema.Len() {
		return allColumnsLabel
	}
	return schema[s.column]
}

// View renders the bar. It is empty when the bar is inactive and has no query.
func (s SearchBar) View(schema table.Schema, width int) string {
	if !s.active && s.input.Value() == "" {
		return ""
	}

	prompt := styles.SearchPromptStyle.Render(styles.IconSearch + " /")
	column := styles.SearchColumnStyle.Render("[" + s.ColumnLabel(schema) + "]")

	s.input.SetWidth(max(width-lipgloss.Width(prompt)-lipgloss.Width(column)-3, 10))
	return prompt + " " + s.input.View() + " " + column
}
