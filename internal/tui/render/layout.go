package render

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// prefix 是块的首行/续行前缀，例如列表符号与引用竖线。
type prefix struct {
	first Span
	rest  Span
	used  bool
}

// flow 是排版时自上而下传递的上下文。
type flow struct {
	style    lipgloss.Style
	prefixes []*prefix
	pre      bool
}

func (f flow) with(p *prefix) flow {
	next := make([]*prefix, len(f.prefixes), len(f.prefixes)+1)
	copy(next, f.prefixes)
	f.prefixes = append(next, p)
	return f
}

type layout struct {
	width  int
	th     Theme
	out    []Line
	inline []Span
}

func newLayout(width int, th Theme) *layout {
	return &layout{width: width, th: th}
}

func (l *layout) root() flow {
	return flow{style: l.th.Text}
}

func (l *layout) children(n *docNode, f flow) {
	for _, c := range n.children {
		l.node(c, f)
	}
}

func (l *layout) node(n *docNode, f flow) {
	if n.segment {
		if n.visible {
			l.inline = append(l.inline, Span{Text: n.text, Style: f.style})
		}
		return
	}
	tag := n.tag
	if st, ok := l.th.inlineStyle(tag); ok {
		f.style = st.Inherit(f.style)
		l.children(n, f)
		return
	}
	switch {
	case tag == "br":
		l.flush(f)
	case tag == "img":
		if alt := n.attr("alt"); alt != "" {
			l.inline = append(l.inline, Span{Text: "[" + alt + "]", Style: l.th.Muted})
		}
	case isHeading(tag):
		l.flush(f)
		l.gap()
		f.style = l.th.Heading.Inherit(f.style)
		if tag == "h1" {
			f.style = f.style.Underline(true)
		}
		l.children(n, f)
		l.flush(f)
	case tag == "p":
		l.flush(f)
		l.gap()
		l.children(n, f)
		l.flush(f)
	case tag == "ul" || tag == "ol":
		l.flush(f)
		if len(f.prefixes) == 0 {
			l.gap()
		}
		l.list(n, f)
	case tag == "li":
		l.item(n, f, "• ")
	case tag == "blockquote":
		l.flush(f)
		l.gap()
		bar := Span{Text: "│ ", Style: l.th.Quote}
		f = f.with(&prefix{first: bar, rest: bar})
		f.style = l.th.Quote.Inherit(f.style)
		l.children(n, f)
		l.flush(f)
	case tag == "pre":
		l.flush(f)
		l.gap()
		f.pre = true
		f.style = l.th.Code.Inherit(f.style)
		l.children(n, f)
		l.flush(f)
	case tag == "hr":
		l.flush(f)
		l.gap()
		w := l.avail(f)
		if w <= 0 {
			w = 3
		}
		l.emit(f, []Line{TextLine(strings.Repeat("─", w), l.th.Rule)})
	case tag == "tr":
		l.flush(f)
		l.row(n, f)
		l.flush(f)
	case IsBlock(tag):
		l.flush(f)
		l.children(n, f)
		l.flush(f)
	default:
		l.children(n, f)
	}
}

func (l *layout) list(n *docNode, f flow) {
	ordered := n.tag == "ol"
	num := 1
	if v, err := strconv.Atoi(n.attr("start")); err == nil {
		num = v
	}
	for _, c := range n.children {
		if c.segment || c.tag != "li" {
			l.node(c, f)
			continue
		}
		marker := "• "
		if ordered {
			marker = strconv.Itoa(num) + ". "
		}
		l.item(c, f, marker)
		num++
	}
	l.flush(f)
}

func (l *layout) item(n *docNode, f flow, marker string) {
	l.flush(f)
	pad := strings.Repeat(" ", runewidth.StringWidth(marker))
	f = f.with(&prefix{
		first: Span{Text: marker, Style: l.th.Accent},
		rest:  Span{Text: pad},
	})
	l.children(n, f)
	l.flush(f)
}

func (l *layout) row(n *docNode, f flow) {
	cells := 0
	for _, c := range n.children {
		if c.segment {
			continue
		}
		if cells > 0 {
			l.inline = append(l.inline, Span{Text: " │ ", Style: l.th.Rule})
		}
		cf := f
		if c.tag == "th" {
			cf.style = lipgloss.NewStyle().Bold(true).Inherit(f.style)
		}
		l.children(c, cf)
		cells++
	}
}

func (l *layout) avail(f flow) int {
	if l.width <= 0 {
		return 0
	}
	w := l.width
	for _, p := range f.prefixes {
		w -= runewidth.StringWidth(p.rest.Text)
	}
	return max(w, 1)
}

// flush 将累积的行内内容折行后输出。
func (l *layout) flush(f flow) {
	if len(l.inline) == 0 {
		return
	}
	spans := l.inline
	l.inline = nil
	var lines []Line
	if f.pre {
		lines = WrapPreformatted(spans, l.avail(f))
	} else {
		lines = WrapSpans(spans, l.avail(f))
		blank := true
		for _, ln := range lines {
			if !IsBlankLine(ln) {
				blank = false
				break
			}
		}
		if blank {
			return
		}
	}
	l.emit(f, lines)
}

func (l *layout) emit(f flow, lines []Line) {
	for i, ln := range lines {
		spans := make([]Span, 0, len(f.prefixes)+len(ln.Spans))
		for _, p := range f.prefixes {
			if i == 0 && !p.used {
				spans = append(spans, p.first)
			} else {
				spans = append(spans, p.rest)
			}
		}
		spans = append(spans, ln.Spans...)
		l.out = append(l.out, Line{Spans: spans})
	}
	if len(lines) > 0 {
		for _, p := range f.prefixes {
			p.used = true
		}
	}
}

// gap 在块之间插入一个空行，不重复。
func (l *layout) gap() {
	if n := len(l.out); n > 0 && len(l.out[n-1].Spans) > 0 {
		l.out = append(l.out, Line{})
	}
}

func (l *layout) finish() []Line {
	out := l.out
	for len(out) > 0 && len(out[len(out)-1].Spans) == 0 {
		out = out[:len(out)-1]
	}
	return out
}
