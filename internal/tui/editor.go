package tui

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const editorHeight = 8

// promptEditor 编辑系统提示词：Ctrl+S 保存，Esc 取消。
type promptEditor struct {
	area textarea.Model
	err  error
}

func (m *Model) openEditor() tea.Cmd {
	ta := textarea.New()
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetWidth(maxInt(10, m.width-4))
	ta.SetHeight(editorHeight)
	ta.SetValue(m.cfg.CurrentPrompt())
	m.textarea.Blur()
	m.editor = &promptEditor{area: ta}
	return m.editor.area.Focus()
}

func (m *Model) updateEditor(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.editor = nil
		m.transcript.AppendNotice("Prompt unchanged.")
		m.dirty = true
		return m.textarea.Focus()
	case "ctrl+s":
		if err := m.cfg.SetPrompt(m.editor.area.Value()); err != nil {
			m.editor.err = err
			return nil
		}
		m.editor = nil
		m.saveConfig("Prompt saved.")
		m.viewport.Follow()
		return m.textarea.Focus()
	}
	m.editor.err = nil
	var cmd tea.Cmd
	m.editor.area, cmd = m.editor.area.Update(msg)
	return cmd
}

func (m *Model) editorView() string {
	footer := m.th.Muted.Render("Ctrl+S save · Esc cancel")
	if m.editor.err != nil {
		footer = m.th.Error.Render(m.editor.err.Error())
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.th.Heading.Render("System prompt"),
		m.editor.area.View(),
		footer,
	)
	return overlayStyle.BorderForeground(m.th.Accent.GetForeground()).
		Width(maxInt(10, m.width-2)).
		Render(body)
}
