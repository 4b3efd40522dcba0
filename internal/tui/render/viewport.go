package render

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Viewport 包装 bubbles viewport：内容未变化时跳过重设，
// 处于底部时追加内容后保持在底部。
type Viewport struct {
	viewport.Model
	lastLines []string
	// follow 为 true 时下一次 SetLines 强制滚动到底部。
	follow bool
}

// NewViewport 创建视口。
func NewViewport(width, height int) Viewport {
	return Viewport{Model: viewport.New(width, height)}
}

// Resize 更新宽高，宽度变化时清空缓存以便重新折行。
func (v *Viewport) Resize(width, height int) {
	if v == nil {
		return
	}
	if v.Width != width {
		v.lastLines = nil
	}
	v.Width = width
	v.Height = height
}

// HandleUpdate 代理 bubbles 的 Update（鼠标滚轮、翻页键）。
func (v *Viewport) HandleUpdate(msg tea.Msg) tea.Cmd {
	if v == nil {
		return nil
	}
	var cmd tea.Cmd
	v.Model, cmd = v.Model.Update(msg)
	return cmd
}

// SetLines 更新内容，返回内容是否发生变化。
func (v *Viewport) SetLines(lines []string) bool {
	if v == nil {
		return false
	}
	if slices.Equal(lines, v.lastLines) {
		if v.follow {
			v.GotoBottom()
			v.follow = false
		}
		return false
	}
	stick := v.AtBottom() || v.follow
	v.lastLines = append([]string(nil), lines...)
	v.SetContent(strings.Join(lines, "\n"))
	if stick {
		v.GotoBottom()
	}
	v.follow = false
	return true
}

// Follow 请求在下一次 SetLines 时滚动到底部。
func (v *Viewport) Follow() {
	if v == nil {
		return
	}
	v.follow = true
}

// Reset 清空内容并回到顶部。
func (v *Viewport) Reset() {
	if v == nil {
		return
	}
	v.lastLines = nil
	v.follow = false
	v.SetContent("")
	v.GotoTop()
}
