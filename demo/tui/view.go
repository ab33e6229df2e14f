package tui

import (
	"fmt"
	"strings"
)

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Populator"))
	b.WriteString("\n")
	b.WriteString(m.getStateText())
	b.WriteString("\n\n")

	filter := "all"
	if m.SavedOnly {
		filter = "saved"
	}
	b.WriteString(InfoStyle.Render(fmt.Sprintf("Articles: %d (%s) | Saved: %d", len(m.Articles), filter, m.countSaved())))
	b.WriteString("\n\n")

	b.WriteString(BoxStyle.Render(m.renderList()))
	b.WriteString("\n\n")

	if len(m.Logs) > 0 {
		b.WriteString(InfoStyle.Render("Recent Activity:"))
		b.WriteString("\n")
		for _, entry := range m.Logs {
			line := fmt.Sprintf("   %s  %s", entry.Timestamp.Format("15:04:05"), entry.Message)
			b.WriteString(InfoStyle.Render(line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(InfoStyle.Render(TextFooter))
	return b.String()
}

// renderList draws a window of articles around the cursor
func (m Model) renderList() string {
	if len(m.Articles) == 0 {
		if m.SavedOnly {
			return InfoStyle.Render(TextEmptySaved)
		}
		return InfoStyle.Render(TextEmptyList)
	}

	start := 0
	if m.Cursor >= maxVisibleItems {
		start = m.Cursor - maxVisibleItems + 1
	}
	end := min(start+maxVisibleItems, len(m.Articles))

	var b strings.Builder
	for i := start; i < end; i++ {
		a := m.Articles[i]

		mark := "  "
		if a.Saved {
			mark = SavedStyle.Render("★") + " "
		}
		title := strings.Join(strings.Fields(a.Title), " ")
		if title == "" {
			title = "(untitled)"
		}
		if len(title) > maxTitleWidth {
			title = title[:maxTitleWidth-3] + "..."
		}
		if a.Note != nil {
			title += " ✎"
		}

		b.WriteString(mark)
		if i == m.Cursor {
			b.WriteString(HighlightStyle.Render(title))
		} else {
			b.WriteString(title)
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
