package tui

import (
	"fmt"
	"time"

	"github.com/mattn/go-runewidth"

	"career-chat/internal/tui/render"
)

// StatusIndicatorState 枚举了状态指示器可显示的所有状态。
type StatusIndicatorState int

const (
	// StatusThinking 表示已发出提问，等待回答。
	StatusThinking StatusIndicatorState = iota
	// StatusRevealing 表示回答正在逐词展示。
	StatusRevealing
	// StatusUploading 表示 CSV 正在上传。
	StatusUploading
	// StatusError 表示最近一次操作失败。
	StatusError
	// StatusIdle 表示空闲，不显示状态行。
	StatusIdle
)

func (s StatusIndicatorState) String() string {
	switch s {
	case StatusThinking:
		return "thinking"
	case StatusRevealing:
		return "revealing"
	case StatusUploading:
		return "uploading"
	case StatusError:
		return "error"
	case StatusIdle:
		return "idle"
	default:
		return "unknown"
	}
}

func (s StatusIndicatorState) defaultHeader() string {
	switch s {
	case StatusThinking:
		return "Thinking..."
	case StatusRevealing:
		return "Answering"
	case StatusUploading:
		return "Uploading"
	case StatusError:
		return "Error"
	default:
		return ""
	}
}

func (s StatusIndicatorState) tracksElapsed() bool {
	return s == StatusThinking || s == StatusRevealing || s == StatusUploading
}

// interruptible 只有展示中可以按 Esc 跳过动画。
func (s StatusIndicatorState) interruptible() bool {
	return s == StatusRevealing
}

func (s StatusIndicatorState) visible() bool {
	return s != StatusIdle
}

func (s StatusIndicatorState) valid() bool {
	switch s {
	case StatusThinking, StatusRevealing, StatusUploading, StatusError, StatusIdle:
		return true
	default:
		return false
	}
}

// StatusIndicatorOptions 控制指示器的初始化行为。
type StatusIndicatorOptions struct {
	State       StatusIndicatorState
	Header      string
	OnInterrupt func()
	Clock       func() time.Time
}

// StatusIndicatorWidget 管理状态行（spinner + 标题 + 计时/跳过提示）。
type StatusIndicatorWidget struct {
	header      string
	state       StatusIndicatorState
	onInterrupt func()

	elapsedRunning time.Duration
	lastResumeAt   time.Time
	paused         bool

	clock func() time.Time
}

// NewStatusIndicatorWidget 构造状态指示器，默认处于 Idle。
func NewStatusIndicatorWidget(opts StatusIndicatorOptions) *StatusIndicatorWidget {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	state := opts.State
	if !state.valid() {
		state = StatusIdle
	}
	header := opts.Header
	if header == "" {
		header = state.defaultHeader()
	}
	w := &StatusIndicatorWidget{
		header:       header,
		state:        state,
		onInterrupt:  opts.OnInterrupt,
		clock:        clock,
		lastResumeAt: clock(),
	}
	if !state.tracksElapsed() {
		w.paused = true
	}
	return w
}

// State 返回当前状态。
func (w *StatusIndicatorWidget) State() StatusIndicatorState {
	if w == nil {
		return StatusIdle
	}
	return w.state
}

// UpdateHeader 允许动态更新标题文本。
func (w *StatusIndicatorWidget) UpdateHeader(header string) {
	if w == nil {
		return
	}
	w.header = header
}

// SetState 更新状态。从空闲或错误进入计时状态时计时器清零。
func (w *StatusIndicatorWidget) SetState(state StatusIndicatorState) {
	if w == nil || !state.valid() {
		return
	}
	now := w.now()
	if state.tracksElapsed() && !w.state.tracksElapsed() {
		w.elapsedRunning = 0
	}
	w.syncTimerForState(now, state)
	w.state = state
	w.header = state.defaultHeader()
}

// Fail 进入错误态并显示 message。
func (w *StatusIndicatorWidget) Fail(message string) {
	if w == nil {
		return
	}
	w.SetState(StatusError)
	if message != "" {
		w.header = message
	}
}

// Interrupt 触发外部中断回调（若已配置）。
func (w *StatusIndicatorWidget) Interrupt() bool {
	if w == nil || w.onInterrupt == nil || !w.state.interruptible() {
		return false
	}
	w.onInterrupt()
	return true
}

// ElapsedSeconds 返回累计秒数。
func (w *StatusIndicatorWidget) ElapsedSeconds() uint64 {
	if w == nil {
		return 0
	}
	return w.elapsedSecondsAt(w.now())
}

// Height 返回状态行占用的行数。
func (w *StatusIndicatorWidget) Height() int {
	if w == nil || !w.state.visible() {
		return 0
	}
	return 1
}

// View 绘制状态行；frame 是 spinner 当前帧。
func (w *StatusIndicatorWidget) View(frame string, width int, th render.Theme) string {
	if w == nil || width <= 0 || !w.state.visible() {
		return ""
	}
	spans := []render.Span{{Text: w.marker(frame), Style: th.Accent}}
	headerStyle := th.Text
	if w.state == StatusError {
		headerStyle = th.Error
	}
	if w.header != "" {
		spans = append(spans, render.Span{Text: " "}, render.Span{Text: w.header, Style: headerStyle})
	}
	if w.state.tracksElapsed() {
		prettyElapsed := fmtElapsedCompact(w.elapsedSecondsAt(w.now()))
		spans = append(spans, render.Span{Text: " "}, render.Span{
			Text:  formatHint(prettyElapsed, w.state.interruptible()),
			Style: th.Muted,
		})
	}
	clamped := clampSpans(spans, width)
	if len(clamped) == 0 {
		return ""
	}
	return render.LinesToStrings([]render.Line{{Spans: clamped}})[0]
}

func (w *StatusIndicatorWidget) marker(frame string) string {
	switch w.state {
	case StatusError:
		return "!"
	case StatusIdle:
		return ""
	}
	if frame == "" {
		return "•"
	}
	return frame
}

func (w *StatusIndicatorWidget) now() time.Time {
	if w.clock != nil {
		return w.clock()
	}
	return time.Now()
}

func (w *StatusIndicatorWidget) syncTimerForState(now time.Time, next StatusIndicatorState) {
	if next.tracksElapsed() && w.paused {
		w.resumeTimerAt(now)
		return
	}
	if !next.tracksElapsed() && !w.paused {
		w.pauseTimerAt(now)
	}
}

func (w *StatusIndicatorWidget) pauseTimerAt(now time.Time) {
	if w.paused {
		return
	}
	w.elapsedRunning += now.Sub(w.lastResumeAt)
	w.paused = true
}

func (w *StatusIndicatorWidget) resumeTimerAt(now time.Time) {
	if !w.paused {
		return
	}
	w.lastResumeAt = now
	w.paused = false
}

func (w *StatusIndicatorWidget) elapsedDurationAt(now time.Time) time.Duration {
	if w.paused {
		return w.elapsedRunning
	}
	return w.elapsedRunning + now.Sub(w.lastResumeAt)
}

func (w *StatusIndicatorWidget) elapsedSecondsAt(now time.Time) uint64 {
	return uint64(w.elapsedDurationAt(now).Seconds())
}

func formatHint(elapsed string, interruptible bool) string {
	if interruptible {
		return fmt.Sprintf("(%s • esc to skip)", elapsed)
	}
	return fmt.Sprintf("(%s)", elapsed)
}

// fmtElapsedCompact 将秒数格式化为紧凑字符串。
func fmtElapsedCompact(elapsedSecs uint64) string {
	switch {
	case elapsedSecs < 60:
		return fmt.Sprintf("%ds", elapsedSecs)
	case elapsedSecs < 3600:
		return fmt.Sprintf("%dm %02ds", elapsedSecs/60, elapsedSecs%60)
	default:
		return fmt.Sprintf("%dh %02dm %02ds", elapsedSecs/3600, (elapsedSecs%3600)/60, elapsedSecs%60)
	}
}

func clampSpans(spans []render.Span, width int) []render.Span {
	if width <= 0 {
		return nil
	}
	remaining := width
	out := make([]render.Span, 0, len(spans))
	for _, sp := range spans {
		if remaining <= 0 {
			break
		}
		tw := runewidth.StringWidth(sp.Text)
		if tw <= remaining {
			out = append(out, sp)
			remaining -= tw
			continue
		}
		if text := runewidth.Truncate(sp.Text, remaining, ""); text != "" {
			sp.Text = text
			out = append(out, sp)
		}
		remaining = 0
	}
	return out
}
