package reveal

import (
	"bytes"

	"career-chat/internal/markup"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	segmentAttr  = "data-segment"
	hiddenStyle  = "opacity: 0; transform: translateY(5px); display: inline; transition: opacity 0.3s ease, transform 0.3s ease"
	visibleStyle = "opacity: 1; transform: translateY(0); display: inline; transition: opacity 0.3s ease, transform 0.3s ease"
)

// HTMLMount 是基于 x/net/html 节点树的挂载点。
type HTMLMount struct {
	node *html.Node
}

// NewHTMLMount 包装已有节点；root 为 nil 时创建一个 <div>。
func NewHTMLMount(root *html.Node) *HTMLMount {
	if root == nil {
		root = &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	}
	return &HTMLMount{node: root}
}

// Node 返回底层节点。
func (m *HTMLMount) Node() *html.Node {
	return m.node
}

func (m *HTMLMount) AppendElement(tag string, attrs []markup.Attr) Container {
	el := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for _, a := range attrs {
		el.Attr = append(el.Attr, html.Attribute{Key: a.Name, Val: a.Value})
	}
	m.node.AppendChild(el)
	return &HTMLMount{node: el}
}

func (m *HTMLMount) AppendSegment(text string) Segment {
	span := &html.Node{
		Type:     html.ElementNode,
		Data:     "span",
		DataAtom: atom.Span,
		Attr: []html.Attribute{
			{Key: segmentAttr},
			{Key: "style", Val: hiddenStyle},
		},
	}
	span.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	m.node.AppendChild(span)
	return htmlSegment{node: span}
}

// String 渲染挂载点的内部 HTML。
func (m *HTMLMount) String() string {
	var buf bytes.Buffer
	for c := m.node.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

type htmlSegment struct {
	node *html.Node
}

func (s htmlSegment) Show() {
	for i := range s.node.Attr {
		if s.node.Attr[i].Key == "style" {
			s.node.Attr[i].Val = visibleStyle
			return
		}
	}
	s.node.Attr = append(s.node.Attr, html.Attribute{Key: "style", Val: visibleStyle})
}
