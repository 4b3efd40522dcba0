package render

import (
	"strings"

	"career-chat/internal/session"
)

// EntryKind 区分转录中的条目。
type EntryKind int

const (
	EntryUser EntryKind = iota
	EntryAssistant
	EntryNotice
	EntryError
)

// Entry 是转录中的一条显示内容。助手条目的正文由 Doc 逐步填充。
type Entry struct {
	Kind EntryKind
	Text string
	Doc  *Document
}

// Transcript 维护会话消息与显示条目。
// history 只包含需要持久化的 user/assistant 消息；view 还包含提示、错误等条目。
type Transcript struct {
	history []session.Message
	view    []Entry
}

// NewTranscript 创建空转录。
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Messages 返回持久化消息的副本。
func (t *Transcript) Messages() []session.Message {
	out := make([]session.Message, len(t.history))
	copy(out, t.history)
	return out
}

// Len 返回显示条目数。
func (t *Transcript) Len() int {
	return len(t.view)
}

// AppendUser 追加用户提问。
func (t *Transcript) AppendUser(text, university string) {
	t.history = append(t.history, session.NewMessage(session.RoleUser, text, university))
	t.view = append(t.view, Entry{Kind: EntryUser, Text: text})
}

// AppendAssistant 追加助手回答，返回供渲染器挂载的文档。
// markdown 为原始回答，用于持久化与复制。
func (t *Transcript) AppendAssistant(markdown, university string) *Document {
	doc := NewDocument()
	t.history = append(t.history, session.NewMessage(session.RoleAssistant, markdown, university))
	t.view = append(t.view, Entry{Kind: EntryAssistant, Text: markdown, Doc: doc})
	return doc
}

// Restore 追加一条已保存的消息；助手消息返回待填充的文档。
func (t *Transcript) Restore(msg session.Message) *Document {
	t.history = append(t.history, msg)
	if msg.Role == session.RoleAssistant {
		doc := NewDocument()
		t.view = append(t.view, Entry{Kind: EntryAssistant, Text: msg.Content, Doc: doc})
		return doc
	}
	t.view = append(t.view, Entry{Kind: EntryUser, Text: msg.Content})
	return nil
}

// AppendNotice 追加不持久化的提示。
func (t *Transcript) AppendNotice(text string) {
	t.view = append(t.view, Entry{Kind: EntryNotice, Text: text})
}

// AppendError 追加不持久化的错误提示。
func (t *Transcript) AppendError(text string) {
	t.view = append(t.view, Entry{Kind: EntryError, Text: text})
}

// LastAnswer 返回最近一条助手回答的 Markdown。
func (t *Transcript) LastAnswer() (string, bool) {
	for i := len(t.history) - 1; i >= 0; i-- {
		if t.history[i].Role == session.RoleAssistant {
			return t.history[i].Content, true
		}
	}
	return "", false
}

// Clear 清空全部条目与消息。
func (t *Transcript) Clear() {
	t.history = nil
	t.view = nil
}

// Render 渲染全部条目，条目之间空一行。
func (t *Transcript) Render(width int, th Theme) []Line {
	var out []Line
	for i, e := range t.view {
		if i > 0 {
			out = append(out, Line{})
		}
		out = append(out, renderEntry(e, width, th)...)
	}
	return out
}

func renderEntry(e Entry, width int, th Theme) []Line {
	inner := width - 2
	if inner < 1 {
		inner = width
	}
	switch e.Kind {
	case EntryUser:
		body := WrapText(strings.TrimSpace(e.Text), th.Text, inner)
		return PrefixLines(body, Span{Text: "› ", Style: th.User}, Span{Text: "  "})
	case EntryAssistant:
		var body []Line
		if e.Doc != nil {
			body = e.Doc.Render(inner, th)
		}
		if len(body) == 0 {
			return []Line{{Spans: []Span{{Text: "• ", Style: th.Assistant}}}}
		}
		return PrefixLines(body, Span{Text: "• ", Style: th.Assistant}, Span{Text: "  "})
	case EntryError:
		body := WrapText(e.Text, th.Error, inner)
		return PrefixLines(body, Span{Text: "! ", Style: th.Error}, Span{Text: "  "})
	default:
		body := WrapText(e.Text, th.Notice, inner)
		return PrefixLines(body, Span{Text: "  "}, Span{Text: "  "})
	}
}
