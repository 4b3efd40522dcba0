package slash

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"career-chat/internal/tui/render"
)

// View 渲染弹窗内容（不含外围边框），配色随主题变化。
func (s *State) View(width int, th render.Theme) string {
	if s == nil || !s.open {
		return ""
	}
	contentWidth := width
	if contentWidth <= 20 {
		contentWidth = 20
	}
	entries := s.visibleEntries(contentWidth, th)
	lines := make([]string, 0, s.maxLines)
	for _, entry := range entries {
		for _, line := range entry.lines {
			if entry.selected {
				line = lipgloss.NewStyle().Reverse(true).Render(line)
			}
			lines = append(lines, line)
		}
	}
	return lipgloss.NewStyle().Width(contentWidth).Render(strings.Join(lines, "\n"))
}

type renderedEntry struct {
	lines    []string
	selected bool
	height   int
}

func (s *State) visibleEntries(contentWidth int, th render.Theme) []renderedEntry {
	if len(s.matches) == 0 {
		return []renderedEntry{{lines: []string{th.Muted.Render("no matching command")}, height: 1}}
	}
	nameWidth, descWidth := columnWidths(contentWidth, s.matches)
	entries := make([]renderedEntry, 0, len(s.matches))
	for idx, m := range s.matches {
		// 高亮下标基于去掉斜杠的 token
		name := highlightName(m.item.DisplayName(), shift(m.highlights, 1), th)
		nameCell := lipgloss.NewStyle().Width(nameWidth).Render(name)
		pad := strings.Repeat(" ", lipgloss.Width(nameCell))
		desc := render.LinesToPlainStrings(render.WrapText(m.item.Description, th.Muted, descWidth))
		lines := make([]string, 0, len(desc))
		for i, raw := range desc {
			lead := pad
			if i == 0 {
				lead = nameCell
			}
			lines = append(lines, lead+"  "+th.Muted.Render(raw))
		}
		entries = append(entries, renderedEntry{
			lines:    lines,
			height:   len(lines),
			selected: idx == s.selected,
		})
	}
	return clampByHeight(entries, s.maxLines, s.selected)
}

func columnWidths(contentWidth int, matches []match) (int, int) {
	nameWidth := 10
	for _, m := range matches {
		if w := lipgloss.Width(m.item.DisplayName()); w > nameWidth {
			nameWidth = w
		}
	}
	if nameWidth > contentWidth-12 {
		nameWidth = contentWidth - 12
	}
	descWidth := contentWidth - nameWidth - 2
	if descWidth < 8 {
		descWidth = 8
	}
	return nameWidth, descWidth
}

// clampByHeight 截取包含选中项且不超过 maxLines 行的窗口。
func clampByHeight(entries []renderedEntry, maxLines int, selected int) []renderedEntry {
	if maxLines <= 0 {
		return entries
	}
	start := 0
	for start < len(entries) {
		height := 0
		end := start
		for end < len(entries) && height+entries[end].height <= maxLines {
			height += entries[end].height
			end++
		}
		if selected < end {
			return entries[start:end]
		}
		start++
	}
	return []renderedEntry{entries[selected]}
}

func shift(indexes []int, by int) []int {
	out := make([]int, len(indexes))
	for i, idx := range indexes {
		out[i] = idx + by
	}
	return out
}

func highlightName(name string, indexes []int, th render.Theme) string {
	marked := make(map[int]bool, len(indexes))
	for _, idx := range indexes {
		marked[idx] = true
	}
	var b strings.Builder
	for i, r := range []rune(name) {
		if marked[i] {
			b.WriteString(th.Heading.Render(string(r)))
			continue
		}
		b.WriteString(th.Accent.Render(string(r)))
	}
	return b.String()
}
