package tui

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"career-chat/internal/api"
	"career-chat/internal/catalog"
	"career-chat/internal/config"
	"career-chat/internal/history"
	"career-chat/internal/logger"
	"career-chat/internal/markup"
	"career-chat/internal/reveal"
	"career-chat/internal/session"
	"career-chat/internal/tui/render"
	"career-chat/internal/tui/slash"
)

var log = logger.Named("tui")

var errNoBackend = errors.New("server is not configured")

// Backend 抽象后端调用，*api.Client 即为实现。
type Backend interface {
	Ask(ctx context.Context, req api.AskRequest) (string, error)
	ListUniversities(ctx context.Context) ([]api.University, error)
	UploadUniversity(ctx context.Context, path string, progress api.Progress) (api.UploadResult, error)
	DeleteUniversity(ctx context.Context, name string) (string, error)
}

type Options struct {
	Backend       Backend
	Config        config.Config
	ConfigPath    string
	Catalog       catalog.Cache
	CatalogPath   string
	History       *history.Store
	Sessions      *session.Store
	Resume        *session.Record
	InitialPrompt string
	AltScreen     bool
	// 以下用于测试注入。
	Clipboard  func(string) error
	DetectDark func() bool
	Clock      func() time.Time
	Rand       *rand.Rand
}

type startPromptMsg struct {
	Text string
}

type answerMsg struct {
	gen      int
	question string
	answer   string
	err      error
}

type revealTickMsg struct {
	gen int
}

type universitiesMsg struct {
	list  []api.University
	err   error
	quiet bool
}

type deleteDoneMsg struct {
	name    string
	message string
	err     error
}

type Model struct {
	backend    Backend
	cfg        config.Config
	configPath string
	cache      catalog.Cache
	cachePath  string
	sessions   *session.Store
	sessionID  string
	history    promptHistory
	clipboard  func(string) error
	detectDark func() bool
	clock      func() time.Time
	rnd        *rand.Rand

	textarea   textarea.Model
	viewport   render.Viewport
	spin       spinner.Model
	status     *StatusIndicatorWidget
	slash      *slash.State
	picker     *picker
	editor     *promptEditor
	upload     *uploadState
	uploadSeq  int
	transcript *render.Transcript
	th         render.Theme
	showKey    bool

	// gen 标识当前提问/展示；过期的回答与 tick 会被丢弃。
	gen       int
	task      *reveal.Task
	answerDoc *render.Document
	question  string
	cancelAsk context.CancelFunc
	busy      bool

	initSend string
	width    int
	height   int
	dirty    bool
}

func New(opts Options) *Model {
	ti := textarea.New()
	ti.Placeholder = "Ask about career services…"
	ti.Prompt = "› "
	ti.CharLimit = 0
	ti.ShowLineNumbers = false
	ti.SetWidth(80)
	ti.SetHeight(1)
	// Enter 由 Update 处理，换行改用 Alt+Enter。
	ti.KeyMap.InsertNewline.SetEnabled(false)
	ti.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &Model{
		backend:    opts.Backend,
		cfg:        opts.Config,
		configPath: opts.ConfigPath,
		cache:      opts.Catalog,
		cachePath:  opts.CatalogPath,
		sessions:   opts.Sessions,
		sessionID:  uuid.NewString(),
		history:    newPromptHistory(opts.History),
		clipboard:  opts.Clipboard,
		detectDark: opts.DetectDark,
		clock:      opts.Clock,
		rnd:        opts.Rand,
		textarea:   ti,
		viewport:   render.NewViewport(80, 20),
		spin:       spin,
		slash:      slash.NewState(slash.Options{}),
		transcript: render.NewTranscript(),
		initSend:   strings.TrimSpace(opts.InitialPrompt),
		width:      80,
		height:     24,
		dirty:      true,
	}
	if m.configPath == "" {
		m.configPath = opts.Config.Source
	}
	if m.clipboard == nil {
		m.clipboard = clipboard.WriteAll
	}
	if m.detectDark == nil {
		m.detectDark = lipgloss.HasDarkBackground
	}
	m.status = NewStatusIndicatorWidget(StatusIndicatorOptions{
		State:       StatusIdle,
		OnInterrupt: m.drainReveal,
		Clock:       m.now,
	})
	m.applyTheme()

	if rec := opts.Resume; rec != nil {
		m.restore(*rec)
	} else {
		m.transcript.AppendNotice("Ask a question about career services. Type / for commands or /help.")
	}
	return m
}

// restore 重新打开保存的会话；已有回答直接完整显示。
func (m *Model) restore(rec session.Record) {
	if rec.ID != "" {
		m.sessionID = rec.ID
	}
	for _, msg := range rec.Messages {
		doc := m.transcript.Restore(msg)
		if doc == nil {
			continue
		}
		tree, err := markup.FromMarkdown(msg.Content)
		if err != nil {
			tree = markup.Text(msg.Content)
		}
		task := reveal.NewTask(tree, doc, reveal.WithReducedMotion(true))
		for done := false; !done; {
			_, done = task.Step(m.now())
		}
	}
	m.transcript.AppendNotice("Resumed conversation " + rec.Title() + ".")
	m.viewport.Follow()
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick, textarea.Blink, m.refreshCmd(true)}
	if m.initSend != "" {
		prompt := m.initSend
		cmds = append(cmds, func() tea.Msg { return startPromptMsg{Text: prompt} })
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textarea.SetWidth(maxInt(10, msg.Width-4))
		if m.editor != nil {
			m.editor.area.SetWidth(maxInt(10, msg.Width-4))
		}
		m.dirty = true
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
	case startPromptMsg:
		cmds = append(cmds, m.submitInput(msg.Text))
	case answerMsg:
		cmds = append(cmds, m.handleAnswer(msg))
	case revealTickMsg:
		if msg.gen == m.gen {
			cmds = append(cmds, m.stepReveal())
		}
	case universitiesMsg:
		m.handleUniversities(msg)
	case uploadProgressMsg:
		cmds = append(cmds, m.handleUploadProgress(msg))
	case uploadDoneMsg:
		cmds = append(cmds, m.handleUploadDone(msg))
	case deleteDoneMsg:
		m.handleDeleteDone(msg)
	case tea.MouseMsg:
		cmds = append(cmds, m.viewport.HandleUpdate(msg))
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))
	}
	return m.finish(cmds...)
}

func (m *Model) finish(cmds ...tea.Cmd) (tea.Model, tea.Cmd) {
	m.layout()
	m.flushTranscript()
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		m.abandon()
		return tea.Quit
	}
	if m.editor != nil {
		return m.updateEditor(msg)
	}
	if m.picker != nil {
		return m.updatePicker(msg)
	}
	// Ctrl+L 在等待回答或展示中也可用。
	if msg.String() == "ctrl+l" {
		m.clear()
		return m.textarea.Focus()
	}
	if cmd, handled := m.handleScrollKeys(msg); handled {
		return cmd
	}
	if msg.String() == "esc" && m.status.Interrupt() {
		return m.finishReveal()
	}
	if m.busy {
		return nil
	}
	if act, handled := m.slash.HandleKey(msg.String()); handled {
		return m.applySlashAction(act)
	}
	switch msg.String() {
	case "alt+enter", "ctrl+j":
		m.textarea.InsertString("\n")
		m.syncComposer()
		return nil
	case "enter":
		return m.submitInput(m.textarea.Value())
	case "up":
		if m.textarea.Line() == 0 {
			if text, ok := m.history.Prev(m.textarea.Value()); ok {
				m.setInput(text)
			}
			return nil
		}
	case "down":
		if m.textarea.Line() >= m.textarea.LineCount()-1 && m.history.Browsing() {
			if text, ok := m.history.Next(); ok {
				m.setInput(text)
			}
			return nil
		}
	}
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	m.syncComposer()
	return cmd
}

func (m *Model) handleScrollKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.Type {
	case tea.KeyPgUp:
		m.viewport.PageUp()
		return nil, true
	case tea.KeyPgDown:
		m.viewport.PageDown()
		return nil, true
	case tea.KeyCtrlHome:
		m.viewport.GotoTop()
		return nil, true
	case tea.KeyCtrlEnd:
		m.viewport.GotoBottom()
		return nil, true
	}
	return nil, false
}

// submitInput 处理 Enter：斜杠命令直接执行，其余作为提问发送。
func (m *Model) submitInput(text string) tea.Cmd {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || m.busy {
		return nil
	}
	if strings.HasPrefix(trimmed, "/") {
		return m.applySlashAction(m.slash.ResolveSubmit(trimmed))
	}
	if m.upload != nil {
		// 提问与上传共用状态行，上传期间保留输入。
		m.transcript.AppendNotice("Wait for the upload to finish before asking.")
		m.viewport.Follow()
		m.dirty = true
		return nil
	}
	m.resetInput()
	return m.ask(trimmed)
}

func (m *Model) applySlashAction(act slash.Action) tea.Cmd {
	switch act.Kind {
	case slash.ActionInsert:
		m.setInput(act.NewValue)
		if !strings.Contains(act.NewValue, "\n") {
			m.textarea.SetCursor(act.CursorColumn)
		}
		if act.Message != "" {
			m.transcript.AppendNotice(act.Message)
			m.viewport.Follow()
			m.dirty = true
		}
	case slash.ActionSubmitCommand:
		m.resetInput()
		return m.runCommand(act.Command, act.Args)
	case slash.ActionError:
		m.transcript.AppendError(act.Message)
		m.viewport.Follow()
		m.dirty = true
	}
	return nil
}

func (m *Model) setInput(text string) {
	m.textarea.SetValue(text)
	m.syncComposer()
}

func (m *Model) resetInput() {
	m.textarea.Reset()
	m.history.ResetBrowsing()
	m.syncComposer()
}

// syncComposer 同步斜杠弹窗并按行数调整输入框高度。
func (m *Model) syncComposer() {
	info := m.textarea.LineInfo()
	m.slash.SyncInput(slash.Input{
		Value:        m.textarea.Value(),
		CursorLine:   m.textarea.Line(),
		CursorColumn: info.StartColumn + info.ColumnOffset,
		Blocked:      m.picker != nil || m.editor != nil,
	})
	lines := m.textarea.LineCount()
	if lines < 1 {
		lines = 1
	}
	if lines > 6 {
		lines = 6
	}
	if m.textarea.Height() != lines {
		m.textarea.SetHeight(lines)
	}
}

func (m *Model) applyTheme() {
	dark := config.ResolveTheme(m.cfg.Theme, m.detectDark)
	m.th = render.ThemeFor(dark)
	m.spin.Style = m.th.Accent
	m.dirty = true
}

func (m *Model) now() time.Time {
	if m.clock != nil {
		return m.clock()
	}
	return time.Now()
}

// layout 按其余区域的实际高度分配视口高度。
func (m *Model) layout() {
	used := lipgloss.Height(m.headerView()) + lipgloss.Height(m.bottomView()) + lipgloss.Height(m.hintsView())
	used += m.status.Height()
	if m.upload != nil {
		used++
	}
	height := m.height - used
	if height < 3 {
		height = 3
	}
	width := maxInt(10, m.width)
	if m.viewport.Width != width || m.viewport.Height != height {
		m.viewport.Resize(width, height)
		m.dirty = true
	}
}

func (m *Model) flushTranscript() {
	if !m.dirty && m.task == nil {
		return
	}
	lines := m.transcript.Render(m.viewport.Width, m.th)
	m.viewport.SetLines(render.LinesToStrings(lines))
	m.dirty = false
}

func (m *Model) View() string {
	parts := []string{m.headerView(), m.viewport.View()}
	if s := m.status.View(m.spin.View(), m.width, m.th); s != "" {
		parts = append(parts, s)
	}
	if m.upload != nil {
		parts = append(parts, m.uploadView())
	}
	parts = append(parts, m.bottomView(), m.hintsView())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) headerView() string {
	sep := m.th.Muted.Render(" · ")
	title := m.th.Heading.Render("career-chat")
	uni := m.th.Muted.Render("no university selected")
	if m.cfg.University != "" {
		uni = m.th.Text.Render(m.cfg.University)
	}
	key := m.th.Error.Render("API key missing")
	if m.cfg.HasAPIKey() {
		shown := logger.Mask(m.cfg.APIKey)
		if m.showKey {
			shown = m.cfg.APIKey
		}
		key = m.th.Text.Render("API key saved") + m.th.Muted.Render(" ("+shown+")")
	}
	theme := m.th.Muted.Render("theme " + m.cfg.Theme)
	line := title + sep + uni + sep + key + sep + theme
	return lipgloss.NewStyle().MaxWidth(maxInt(10, m.width)).Render(line)
}

func (m *Model) bottomView() string {
	switch {
	case m.editor != nil:
		return m.editorView()
	case m.picker != nil:
		return m.pickerView()
	}
	composer := composerStyle.BorderForeground(m.th.Rule.GetForeground()).
		Width(maxInt(10, m.width-2)).
		Render(m.textarea.View())
	if m.slash.Open() {
		return lipgloss.JoinVertical(lipgloss.Left, m.slash.View(maxInt(20, m.width-2), m.th), composer)
	}
	return composer
}

func (m *Model) hintsView() string {
	hint := "Enter send · Alt+Enter newline · / commands · PgUp/PgDn scroll · Ctrl+L clear · Ctrl+C quit"
	return m.th.Muted.MaxWidth(maxInt(10, m.width)).Render(hint)
}

var composerStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

var overlayStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
