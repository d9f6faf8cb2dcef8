// Package components provides reusable TUI components.
package components

import (
	"strings"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/colonyops/tabula/internal/core/styles"
)

// HelpEntry represents a single keyboard shortcut entry.
type HelpEntry struct {
	Key  string
	Desc string
}

// HelpDialogSection groups related help entries under a title.
type HelpDialogSection struct {
	Title   string
	Entries []HelpEntry
}

// HelpDialog displays all available keyboard shortcuts.
type HelpDialog struct {
	title    string
	sections []HelpDialogSection
}

// NewHelpDialog creates a new help dialog with the given sections.
func NewHelpDialog(title string, sections []HelpDialogSection) *HelpDialog {
	return &HelpDialog{
		title:    title,
		sections: sections,
	}
}

// View renders the dialog for a terminal of the given width. Sections sit
// side by side while they fit and stack otherwise.
func (h *HelpDialog) View(width int) string {
	columns := make([]string, 0, len(h.sections))
	for _, section := range h.sections {
		columns = append(columns, renderSection(section))
	}

	const gap = 4
	frame := styles.ModalStyle.GetHorizontalFrameSize()

	sideBySide := frame
	for i, c := range columns {
		if i > 0 {
			sideBySide += gap
		}
		sideBySide += lipgloss.Width(c)
	}

	var body string
	if width <= 0 || sideBySide <= width {
		spaced := make([]string, 0, 2*len(columns))
		for i, c := range columns {
			if i > 0 {
				spaced = append(spaced, Pad(gap))
			}
			spaced = append(spaced, c)
		}
		body = lipgloss.JoinHorizontal(lipgloss.Top, spaced...)
	} else {
		body = strings.Join(columns, "\n\n")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render(h.title),
		"",
		body,
		styles.ModalHelpStyle.Render("esc/? close"),
	)

	return styles.ModalStyle.Render(content)
}

func renderSection(section HelpDialogSection) string {
	lines := make([]string, 0, len(section.Entries)+2)
	if section.Title != "" {
		lines = append(lines,
			styles.HeaderCellStyle.Render(section.Title),
			styles.MutedTextStyle.Render(strings.Repeat("─", sectionWidth)),
		)
	}
	for _, entry := range section.Entries {
		lines = append(lines, formatKeyDesc(entry.Key, entry.Desc))
	}
	return strings.Join(lines, "\n")
}

// Overlay renders the help dialog centered over background.
func (h *HelpDialog) Overlay(background string, width, height int) string {
	modal := h.View(width)

	bgLayer := lipgloss.NewLayer(background)
	modalLayer := lipgloss.NewLayer(modal)

	modalW := lipgloss.Width(modal)
	modalH := lipgloss.Height(modal)
	modalLayer.X(max((width-modalW)/2, 0)).Y(max((height-modalH)/2, 0)).Z(1)

	compositor := lipgloss.NewCompositor(bgLayer, modalLayer)
	return compositor.Render()
}

const (
	keyWidth     = 12
	sectionWidth = 32
)

func formatKeyDesc(key, desc string) string {
	return styles.KeyHintStyle.Bold(true).Render(Fit(key, keyWidth)) + styles.CellStyle.Render(Fit(desc, sectionWidth-keyWidth))
}
