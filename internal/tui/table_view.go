package tui

import (
	"strconv"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mattn/go-runewidth"

	"github.com/colonyops/tabula/internal/core/search"
	"github.com/colonyops/tabula/internal/core/store"
	"github.com/colonyops/tabula/internal/core/styles"
	"github.com/colonyops/tabula/internal/core/table"
	"github.com/colonyops/tabula/internal/tui/components"
)

const (
	minColumnWidth = 3
	columnSep      = " │ "
)

var builderPool = sync.Pool{
	New: func() any {
		return &strings.Builder{}
	},
}

// TableView renders a window of rows as an aligned text table.
type TableView struct {
	maxWidth int
	hidden   []string
}

// NewTableView creates a table renderer. Columns whose names match any of the
// hidden glob patterns are never shown.
func NewTableView(maxColumnWidth int, hidden []string) *TableView {
	return &TableView{
		maxWidth: max(maxColumnWidth, minColumnWidth),
		hidden:   hidden,
	}
}

// VisibleColumns returns the schema indexes that are not hidden.
func (v *TableView) VisibleColumns(schema table.Schema) []int {
	out := make([]int, 0, schema.Len())
	for i, name := range schema {
		if !v.isHidden(name) {
			out = append(out, i)
		}
	}
	return out
}

func (v *TableView) isHidden(name string) bool {
	for _, pattern := range v.hidden {
		// patterns are validated when the config is loaded
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// TableState is what the model passes to Render.
type TableState struct {
	Window    store.Window
	Rows      int // visible body rows
	Cursor    int // index within Window.Rows
	ColOffset int // index into the visible columns
	Width     int
	Result    search.Result
}

// Render draws the header, a separator, and up to state.Rows body rows.
func (v *TableView) Render(state TableState) string {
	win := state.Window
	cols := v.VisibleColumns(win.Schema)
	if len(cols) == 0 {
		return styles.MutedTextStyle.Render("No columns to display")
	}

	shown := min(state.Rows, win.Len())
	gutter := len(strconv.Itoa(win.Offset + max(shown, 1)))

	start := min(max(state.ColOffset, 0), len(cols)-1)
	widths := v.columnWidths(win, cols, shown)

	// fit as many columns as the terminal allows, always at least one
	end := start
	used := gutter
	for end < len(cols) {
		w := widths[end] + runewidth.StringWidth(columnSep)
		if end > start && used+w > state.Width {
			break
		}
		used += w
		end++
	}

	sb := builderPool.Get().(*strings.Builder)
	sb.Reset()
	defer builderPool.Put(sb)

	sep := styles.ColumnSepStyle.Render(columnSep)

	sb.WriteString(styles.GutterStyle.Render(components.Pad(gutter)))
	for i := start; i < end; i++ {
		sb.WriteString(sep)
		sb.WriteString(styles.HeaderCellStyle.Render(components.Fit(win.Schema[cols[i]], widths[i])))
	}
	sb.WriteByte('\n')

	sb.WriteString(styles.ColumnSepStyle.Render(strings.Repeat("─", min(used, max(state.Width, 1)))))

	needle := strings.ToLower(state.Result.Query)
	for r := range shown {
		sb.WriteByte('\n')

		row := win.Rows[r]
		abs := win.Offset + r
		matched := needle != "" && state.Result.Contains(abs)

		gutterText := components.FitRight(strconv.Itoa(win.RowNumber(r)), gutter)
		if r == state.Cursor {
			sb.WriteString(styles.CursorRowStyle.Render(gutterText))
		} else {
			sb.WriteString(styles.GutterStyle.Render(gutterText))
		}

		for i := start; i < end; i++ {
			sb.WriteString(sep)
			col := cols[i]

			var cell table.Value
			if col < len(row) {
				cell = row[col]
			} else {
				cell = table.Missing("")
			}
			sb.WriteString(renderCell(cell, widths[i], matched && cellMatches(cell, needle, col, state.Result.Column)))
		}
	}

	return sb.String()
}

// columnWidths sizes each visible column to its header and the rows shown,
// clamped to [minColumnWidth, maxWidth].
func (v *TableView) columnWidths(win store.Window, cols []int, shown int) []int {
	widths := make([]int, len(cols))
	for i, col := range cols {
		w := runewidth.StringWidth(win.Schema[col])
		for r := range shown {
			if col < len(win.Rows[r]) {
				w = max(w, runewidth.StringWidth(win.Rows[r][col].Format()))
			}
		}
		widths[i] = min(max(w, minColumnWidth), v.maxWidth)
	}
	return widths
}

func renderCell(v table.Value, width int, highlight bool) string {
	var text string
	switch v.Kind {
	case table.KindNumber:
		text = components.FitRight(v.Format(), width)
	case table.KindMissing:
		text = components.Fit("", width)
	default:
		text = components.Fit(v.Format(), width)
	}

	switch {
	case highlight:
		return styles.MatchCellStyle.Render(text)
	case v.Kind == table.KindNumber:
		return styles.NumberCellStyle.Render(text)
	case v.Kind == table.KindMissing:
		return styles.MissingCellStyle.Render(text)
	default:
		return styles.CellStyle.Render(text)
	}
}

func cellMatches(v table.Value, needle string, col, searchCol int) bool {
	if v.IsMissing() {
		return false
	}
	if searchCol != search.AllColumns && searchCol != col {
		return false
	}
	return strings.Contains(strings.ToLower(v.Natural()), needle)
}
