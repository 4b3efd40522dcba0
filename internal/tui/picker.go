package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"career-chat/internal/api"
	"career-chat/internal/catalog"
)

const pickerRows = 8

// picker 是大学选择下拉框：筛选输入 + 模糊匹配列表。
type picker struct {
	input    textinput.Model
	matches  []catalog.Match
	selected int
}

func (m *Model) openPicker(filter string) {
	ti := textinput.New()
	ti.Prompt = "Filter: "
	ti.Placeholder = "type to filter"
	ti.SetValue(strings.TrimSpace(filter))
	ti.Focus()
	p := &picker{input: ti}
	p.refilter(m.cache.Universities)
	// 初始选中当前大学
	for i, match := range p.matches {
		if match.University.Name == m.cfg.University {
			p.selected = i
			break
		}
	}
	m.picker = p
	m.textarea.Blur()
}

func (p *picker) refilter(list []api.University) {
	p.matches = catalog.Filter(list, p.input.Value())
	if p.selected >= len(p.matches) {
		p.selected = 0
	}
}

func (m *Model) closePicker() tea.Cmd {
	m.picker = nil
	return m.textarea.Focus()
}

func (m *Model) updatePicker(msg tea.KeyMsg) tea.Cmd {
	p := m.picker
	switch msg.String() {
	case "esc":
		return m.closePicker()
	case "up", "ctrl+p":
		if n := len(p.matches); n > 0 {
			p.selected = (p.selected - 1 + n) % n
		}
		return nil
	case "down", "ctrl+n":
		if n := len(p.matches); n > 0 {
			p.selected = (p.selected + 1) % n
		}
		return nil
	case "enter":
		if len(p.matches) == 0 {
			return nil
		}
		name := p.matches[p.selected].University.Name
		m.selectUniversity(name)
		m.viewport.Follow()
		return m.closePicker()
	}
	var cmd tea.Cmd
	before := p.input.Value()
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.selected = 0
		p.refilter(m.cache.Universities)
	}
	return cmd
}

func (m *Model) pickerView() string {
	p := m.picker
	width := maxInt(20, m.width-2)
	lines := []string{m.th.Heading.Render("Select a university"), p.input.View()}
	switch {
	case len(m.cache.Universities) == 0:
		lines = append(lines, m.th.Muted.Render("No universities yet. Upload one with /upload <file.csv>."))
	case len(p.matches) == 0:
		lines = append(lines, m.th.Muted.Render("No matching university."))
	default:
		start := 0
		if p.selected >= pickerRows {
			start = p.selected - pickerRows + 1
		}
		end := minInt(len(p.matches), start+pickerRows)
		for i := start; i < end; i++ {
			lines = append(lines, m.pickerRow(p.matches[i], i == p.selected))
		}
		if len(p.matches) > pickerRows {
			lines = append(lines, m.th.Muted.Render(fmt.Sprintf("%d of %d", p.selected+1, len(p.matches))))
		}
	}
	lines = append(lines, m.th.Muted.Render("↑/↓ move · Enter select · Esc close"))
	return overlayStyle.BorderForeground(m.th.Accent.GetForeground()).
		Width(width).
		Render(strings.Join(lines, "\n"))
}

func (m *Model) pickerRow(match catalog.Match, selected bool) string {
	marked := make(map[int]bool, len(match.Highlights))
	for _, idx := range match.Highlights {
		marked[idx] = true
	}
	var b strings.Builder
	cursor := "  "
	if selected {
		cursor = "› "
	}
	b.WriteString(m.th.Accent.Render(cursor))
	for i, r := range []rune(match.University.Name) {
		if marked[i] {
			b.WriteString(m.th.Heading.Render(string(r)))
			continue
		}
		b.WriteString(m.th.Text.Render(string(r)))
	}
	b.WriteString(m.th.Muted.Render(fmt.Sprintf("  %d docs", match.University.DocumentCount)))
	if match.University.Name == m.cfg.University {
		b.WriteString(m.th.Muted.Render("  (current)"))
	}
	row := b.String()
	if selected {
		row = lipgloss.NewStyle().Bold(true).Render(row)
	}
	return row
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
