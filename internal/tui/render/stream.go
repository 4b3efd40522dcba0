package render

import (
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	"career-chat/internal/markup"
	"career-chat/internal/reveal"
)

// streamItem 是输出队列中的一项：段文本或块边界标记。
type streamItem struct {
	text    string
	style   lipgloss.Style
	pre     bool
	visible bool
	// breaks 大于 0 表示块边界，要求输出末尾至少有 breaks 个换行。
	breaks int
	marker string
}

// StreamMount 把段按插入顺序写入 io.Writer。
// 段在 Show 之后才写出；先插入的段未显示前，后续段会等待。
type StreamMount struct {
	w      io.Writer
	th     Theme
	styled bool
	queue  []*streamItem
	// newlines 统计输出末尾连续换行数，-1 表示尚未输出任何内容。
	newlines int
	// pendingSpace 记录被折叠的空白，在下一个词之前写出一个空格。
	pendingSpace bool
	// afterMarker 列表符号之后的块边界不换行。
	afterMarker bool
	err         error
}

// StreamOption 配置 StreamMount。
type StreamOption func(*StreamMount)

// WithStyles 开启 ANSI 样式输出。
func WithStyles(th Theme) StreamOption {
	return func(m *StreamMount) {
		m.th = th
		m.styled = true
	}
}

// NewStreamMount 创建写入 w 的挂载点。
func NewStreamMount(w io.Writer, opts ...StreamOption) *StreamMount {
	m := &StreamMount{w: w, newlines: -1}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *StreamMount) AppendElement(tag string, attrs []markup.Attr) reveal.Container {
	return m.rootContainer().AppendElement(tag, attrs)
}

func (m *StreamMount) AppendSegment(text string) reveal.Segment {
	return m.rootContainer().AppendSegment(text)
}

func (m *StreamMount) rootContainer() *streamContainer {
	return &streamContainer{m: m}
}

// Close 写出剩余可见内容并以换行结尾，返回首个写错误。
func (m *StreamMount) Close() error {
	m.drain()
	if m.newlines == 0 {
		m.write("\n")
		m.newlines = 1
	}
	return m.err
}

func (m *StreamMount) push(it *streamItem) {
	m.queue = append(m.queue, it)
	m.drain()
}

func (m *StreamMount) drain() {
	for len(m.queue) > 0 && m.queue[0].visible {
		it := m.queue[0]
		m.queue[0] = nil
		m.queue = m.queue[1:]
		m.out(it)
	}
}

func (m *StreamMount) out(it *streamItem) {
	switch {
	case it.breaks > 0:
		if m.newlines < 0 || m.afterMarker {
			return
		}
		for m.newlines < it.breaks {
			m.write("\n")
			m.newlines++
		}
		m.pendingSpace = false
	case it.marker != "":
		m.ensureLineStart()
		m.write(m.paint(it.marker, m.th.Accent))
		m.newlines = 0
		m.pendingSpace = false
		m.afterMarker = true
	case it.pre:
		if it.text == "" {
			return
		}
		m.write(m.paint(it.text, it.style))
		m.newlines = trailingNewlines(it.text, m.newlines)
		m.pendingSpace = false
		m.afterMarker = false
	case strings.TrimFunc(it.text, unicode.IsSpace) == "":
		if m.newlines == 0 && !m.afterMarker {
			m.pendingSpace = true
		}
	default:
		if m.pendingSpace {
			m.write(" ")
			m.pendingSpace = false
		}
		m.write(m.paint(it.text, it.style))
		m.newlines = 0
		m.afterMarker = false
	}
}

func (m *StreamMount) ensureLineStart() {
	if m.newlines == 0 {
		m.write("\n")
		m.newlines = 1
	}
}

func (m *StreamMount) paint(s string, st lipgloss.Style) string {
	if !m.styled {
		return s
	}
	return st.Render(s)
}

func (m *StreamMount) write(s string) {
	if m.err != nil || s == "" {
		return
	}
	_, m.err = io.WriteString(m.w, s)
}

func trailingNewlines(s string, prev int) int {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\n'; i-- {
		n++
	}
	if n == len(s) && prev > 0 {
		return prev + n
	}
	return n
}

type streamContainer struct {
	m     *StreamMount
	style lipgloss.Style
	pre   bool
	// next 是有序列表的下一个编号，0 表示无序。
	next  int
	depth int
}

func (c *streamContainer) AppendElement(tag string, attrs []markup.Attr) reveal.Container {
	child := &streamContainer{m: c.m, style: c.style, pre: c.pre, depth: c.depth}
	if st, ok := c.m.th.inlineStyle(tag); ok {
		child.style = st.Inherit(c.style)
		return child
	}
	switch {
	case tag == "br":
		c.m.push(&streamItem{breaks: 1, visible: true})
	case isHeading(tag):
		child.style = c.m.th.Heading.Inherit(c.style)
		c.m.push(&streamItem{breaks: 2, visible: true})
	case tag == "p" || tag == "pre" || tag == "blockquote" || tag == "hr":
		c.m.push(&streamItem{breaks: 2, visible: true})
		if tag == "pre" {
			child.pre = true
			child.style = c.m.th.Code.Inherit(c.style)
		}
		if tag == "hr" {
			c.m.push(&streamItem{text: "───", pre: true, style: c.m.th.Rule, visible: true})
		}
	case tag == "ul" || tag == "ol":
		child.depth = c.depth + 1
		if tag == "ol" {
			child.next = 1
			if v, err := strconv.Atoi(attrValue(attrs, "start")); err == nil {
				child.next = v
			}
		}
		breaks := 1
		if c.depth == 0 {
			breaks = 2
		}
		c.m.push(&streamItem{breaks: breaks, visible: true})
	case tag == "li":
		marker := "• "
		if c.next > 0 {
			marker = strconv.Itoa(c.next) + ". "
			c.next++
		}
		if c.depth > 1 {
			marker = strings.Repeat("  ", c.depth-1) + marker
		}
		c.m.push(&streamItem{marker: marker, visible: true})
	case IsBlock(tag):
		c.m.push(&streamItem{breaks: 1, visible: true})
	}
	return child
}

func (c *streamContainer) AppendSegment(text string) reveal.Segment {
	it := &streamItem{text: text, style: c.style, pre: c.pre}
	c.m.queue = append(c.m.queue, it)
	return streamSegment{m: c.m, it: it}
}

type streamSegment struct {
	m  *StreamMount
	it *streamItem
}

func (s streamSegment) Show() {
	if s.it.visible {
		return
	}
	s.it.visible = true
	s.m.drain()
}

func attrValue(attrs []markup.Attr, name string) string {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}
