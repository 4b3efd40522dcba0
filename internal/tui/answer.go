package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"career-chat/internal/api"
	"career-chat/internal/logger"
	"career-chat/internal/markup"
	"career-chat/internal/reveal"
)

// ask 追加用户消息、禁用输入并在后台调用 /ask。
func (m *Model) ask(question string) tea.Cmd {
	m.transcript.AppendUser(question, m.cfg.University)
	m.busy = true
	m.textarea.Blur()
	m.status.SetState(StatusThinking)
	m.viewport.Follow()
	m.dirty = true

	m.gen++
	gen := m.gen
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelAsk = cancel
	req := api.AskRequest{
		Query:          question,
		CustomPrompt:   m.cfg.CurrentPrompt(),
		APIKey:         m.cfg.APIKey,
		UniversityName: m.cfg.University,
	}
	backend := m.backend
	return func() tea.Msg {
		defer cancel()
		if backend == nil {
			return answerMsg{gen: gen, question: question, err: errNoBackend}
		}
		answer, err := backend.Ask(ctx, req)
		return answerMsg{gen: gen, question: question, answer: answer, err: err}
	}
}

func (m *Model) handleAnswer(msg answerMsg) tea.Cmd {
	if msg.gen != m.gen {
		return nil
	}
	m.cancelAsk = nil
	if msg.err != nil {
		log.WithError(msg.err).WithFields(logger.Fields{
			"status":     api.StatusOf(msg.err),
			"university": m.cfg.University,
		}).Warn("ask failed, showing fallback answer")
	}
	return m.startReveal(msg.question, api.AnswerOrFallback(msg.answer, msg.err))
}

// startReveal 把回答转换为标记树，挂到新的助手条目上逐词展示。
func (m *Model) startReveal(question, answer string) tea.Cmd {
	tree, err := markup.FromMarkdown(answer)
	if err != nil {
		log.WithError(err).Warn("convert answer markdown")
		tree = markup.Text(answer)
	}
	if tree.IsEmpty() {
		// 只有注释或空白的回答同样按失败处理
		answer = api.FallbackAnswer
		tree = markup.Text(answer)
	}
	doc := m.transcript.AppendAssistant(answer, m.cfg.University)
	m.answerDoc = doc
	opts := []reveal.Option{
		reveal.WithPacing(m.cfg.Pacing()),
		reveal.WithScroller(reveal.ScrollFunc(m.viewport.Follow)),
	}
	if m.rnd != nil {
		opts = append(opts, reveal.WithRand(m.rnd))
	}
	m.task = reveal.NewTask(tree, doc, opts...)
	m.question = question
	m.status.SetState(StatusRevealing)
	return m.stepReveal()
}

// stepReveal 推进一步，并用 tea.Tick 预约下一步。
func (m *Model) stepReveal() tea.Cmd {
	if m.task == nil {
		return nil
	}
	wait, done := m.task.Step(m.now())
	m.dirty = true
	if done {
		return m.finishReveal()
	}
	gen := m.gen
	return tea.Tick(wait, func(time.Time) tea.Msg {
		return revealTickMsg{gen: gen}
	})
}

// drainReveal 跳过剩余停顿，立即展示全部内容。
func (m *Model) drainReveal() {
	if m.task == nil {
		return
	}
	at := m.now()
	for !m.task.Done() {
		wait, _ := m.task.Step(at)
		at = at.Add(wait + time.Millisecond)
	}
	m.dirty = true
}

// finishReveal 在展示完成后恢复输入并记录提问历史。
func (m *Model) finishReveal() tea.Cmd {
	if m.task != nil {
		stats := m.task.Stats()
		fields := logger.Fields{
			"elements": stats.Elements,
			"segments": stats.Segments,
			"words":    stats.Words,
			"skipped":  stats.Skipped,
		}
		if m.answerDoc != nil {
			_, mounted, visible := m.answerDoc.Counts()
			fields["mounted"] = mounted
			fields["visible"] = visible
		}
		log.WithFields(fields).Debug("answer revealed")
		m.task = nil
	}
	m.answerDoc = nil
	if m.question != "" {
		if err := m.history.Add(m.question, m.cfg.University); err != nil {
			log.WithError(err).Warn("append question history")
		}
		m.question = ""
	}
	m.busy = false
	m.status.SetState(StatusIdle)
	m.dirty = true
	return m.textarea.Focus()
}

// abandon 取消进行中的请求、展示与上传；之后到达的回答、tick 和上传消息都会被丢弃。
func (m *Model) abandon() {
	if m.cancelAsk != nil {
		m.cancelAsk()
		m.cancelAsk = nil
	}
	if m.task != nil {
		m.task.Abandon()
		m.task = nil
	}
	m.answerDoc = nil
	m.cancelUpload()
	m.gen++
	m.question = ""
	m.busy = false
	m.status.SetState(StatusIdle)
}

// clear 保存当前对话后开始新的对话。
func (m *Model) clear() {
	m.abandon()
	if _, err := m.saveSession(); err != nil {
		log.WithError(err).Warn("save session before clear")
	}
	m.transcript.Clear()
	m.viewport.Reset()
	m.sessionID = uuid.NewString()
	m.transcript.AppendNotice("Conversation cleared.")
	m.dirty = true
}

// saveSession 保存非空对话，返回会话 id；无内容时返回空串。
func (m *Model) saveSession() (string, error) {
	if m.sessions == nil {
		return "", nil
	}
	msgs := m.transcript.Messages()
	if len(msgs) == 0 {
		return "", nil
	}
	if _, err := m.sessions.Save(m.sessionID, m.cfg.University, msgs); err != nil {
		return "", err
	}
	return m.sessionID, nil
}
