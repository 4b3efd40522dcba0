package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"career-chat/internal/session"
)

// Result 返回 TUI 退出后的必要信息。
type Result struct {
	// SessionID 为已保存会话的 id；对话为空时为空串。
	SessionID string
	Messages  []session.Message
}

// Run 封装 Bubble Tea 入口，退出后保存对话。
func Run(opts Options) (Result, error) {
	var programOptions []tea.ProgramOption
	if opts.AltScreen {
		programOptions = append(programOptions, tea.WithAltScreen(), tea.WithMouseCellMotion())
	}
	program := tea.NewProgram(New(opts), programOptions...)
	final, err := program.Run()
	if err != nil {
		return Result{}, err
	}
	m, ok := final.(*Model)
	if !ok {
		return Result{}, errors.New("unexpected tui model")
	}
	id, err := m.saveSession()
	return Result{SessionID: id, Messages: m.transcript.Messages()}, err
}
