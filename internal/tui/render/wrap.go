package render

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// token 是带样式的一个词或一段空白。
type token struct {
	text  string
	style lipgloss.Style
	space bool
}

func tokenize(spans []Span) []token {
	var out []token
	for _, sp := range spans {
		var cur strings.Builder
		curSpace := false
		emit := func() {
			if cur.Len() > 0 {
				out = append(out, token{text: cur.String(), style: sp.Style, space: curSpace})
				cur.Reset()
			}
		}
		for _, r := range sp.Text {
			isSpace := unicode.IsSpace(r)
			if cur.Len() > 0 && isSpace != curSpace {
				emit()
			}
			curSpace = isSpace
			cur.WriteRune(r)
		}
		emit()
	}
	return out
}

// word 是由相邻非空白 token 组成的词，可能跨越多个样式。
type word struct {
	parts []Span
	width int
	// gap 非 nil 表示词前有被折叠的空白。
	gap *lipgloss.Style
}

func words(spans []Span) []word {
	var out []word
	var pending *lipgloss.Style
	joinable := false
	for _, tok := range tokenize(spans) {
		if tok.space {
			st := tok.style
			pending = &st
			joinable = false
			continue
		}
		w := runewidth.StringWidth(tok.text)
		if joinable {
			last := &out[len(out)-1]
			last.parts = append(last.parts, Span{Text: tok.text, Style: tok.style})
			last.width += w
			continue
		}
		out = append(out, word{parts: []Span{{Text: tok.text, Style: tok.style}}, width: w, gap: pending})
		pending = nil
		joinable = true
	}
	return out
}

// WrapSpans 按词折行，连续空白（含换行）折叠为一个空格，行首行尾空白丢弃。
// width <= 0 时不折行。
func WrapSpans(spans []Span, width int) []Line {
	var (
		lines    []Line
		cur      []Span
		curWidth int
	)
	newline := func() {
		lines = append(lines, Line{Spans: cur})
		cur = nil
		curWidth = 0
	}
	for _, w := range words(spans) {
		gap := 0
		if w.gap != nil && curWidth > 0 {
			gap = 1
		}
		if width > 0 && curWidth > 0 && curWidth+gap+w.width > width {
			newline()
			gap = 0
		}
		if gap == 1 {
			cur = append(cur, Span{Text: " ", Style: *w.gap})
			curWidth++
		}
		if width > 0 && w.width > width {
			for _, part := range w.parts {
				for i, chunk := range breakLongWord(part.Text, width-curWidth, width) {
					if i > 0 || (curWidth > 0 && curWidth+runewidth.StringWidth(chunk) > width) {
						newline()
					}
					cur = append(cur, Span{Text: chunk, Style: part.Style})
					curWidth += runewidth.StringWidth(chunk)
				}
			}
			continue
		}
		cur = append(cur, w.parts...)
		curWidth += w.width
	}
	if len(cur) > 0 || len(lines) == 0 {
		lines = append(lines, Line{Spans: cur})
	}
	return mergeSpans(lines)
}

// WrapText 按换行拆分纯文本后逐行折行，空行保留。
func WrapText(text string, style lipgloss.Style, width int) []Line {
	var out []Line
	for _, raw := range strings.Split(text, "\n") {
		out = append(out, WrapSpans([]Span{{Text: raw, Style: style}}, width)...)
	}
	return out
}

// WrapPreformatted 保留空白，仅在硬换行与超宽处断行。
func WrapPreformatted(spans []Span, width int) []Line {
	var lines []Line
	var cur []Span
	curWidth := 0
	for _, sp := range spans {
		parts := strings.Split(sp.Text, "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, Line{Spans: cur})
				cur, curWidth = nil, 0
			}
			for part != "" {
				room := width - curWidth
				if width <= 0 || runewidth.StringWidth(part) <= room {
					cur = append(cur, Span{Text: part, Style: sp.Style})
					curWidth += runewidth.StringWidth(part)
					break
				}
				head := runewidth.Truncate(part, room, "")
				if head == "" && curWidth == 0 {
					// 单个字符比整行还宽
					_, size := firstRune(part)
					head = part[:size]
				}
				if head != "" {
					cur = append(cur, Span{Text: head, Style: sp.Style})
				}
				part = part[len(head):]
				lines = append(lines, Line{Spans: cur})
				cur, curWidth = nil, 0
			}
		}
	}
	lines = append(lines, Line{Spans: cur})
	// 末尾换行不产生额外空行
	if n := len(lines); n > 1 && len(lines[n-1].Spans) == 0 {
		lines = lines[:n-1]
	}
	return mergeSpans(lines)
}

func firstRune(s string) (rune, int) {
	for i, r := range s {
		if i > 0 {
			return r, i
		}
	}
	return 0, len(s)
}

// breakLongWord 先填满当前行剩余的 first 列，再按 width 切分。
func breakLongWord(word string, first, width int) []string {
	if first <= 0 {
		first = width
	}
	var out []string
	limit := first
	var cur strings.Builder
	curWidth := 0
	for _, r := range word {
		rw := runewidth.RuneWidth(r)
		if curWidth+rw > limit && curWidth > 0 {
			out = append(out, cur.String())
			cur.Reset()
			curWidth = 0
			limit = width
		}
		cur.WriteRune(r)
		curWidth += rw
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// mergeSpans 合并同一行中样式相同的相邻 span。
func mergeSpans(lines []Line) []Line {
	for i := range lines {
		spans := lines[i].Spans
		if len(spans) < 2 {
			continue
		}
		merged := spans[:1]
		for _, sp := range spans[1:] {
			last := &merged[len(merged)-1]
			if sameStyle(last.Style, sp.Style) {
				last.Text += sp.Text
				continue
			}
			merged = append(merged, sp)
		}
		lines[i].Spans = merged
	}
	return lines
}

func sameStyle(a, b lipgloss.Style) bool {
	return a.Render("x") == b.Render("x")
}
