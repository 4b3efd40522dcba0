package render

import (
	"strings"

	"career-chat/internal/markup"
	"career-chat/internal/reveal"
)

// docNode 是终端挂载点中的一个节点：元素外壳或一个段。
type docNode struct {
	tag      string
	attrs    []markup.Attr
	text     string
	segment  bool
	visible  bool
	children []*docNode
}

func (n *docNode) attr(name string) string {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// Document 是供 Bubble Tea 使用的内存挂载点，只追加不删除。
// 所有修改须在同一 goroutine（Update）中进行。
type Document struct {
	root    *docNode
	version int
}

// NewDocument 创建空文档。
func NewDocument() *Document {
	return &Document{root: &docNode{}}
}

// Version 每次结构或可见性变化时递增，用于判断是否需要重绘。
func (d *Document) Version() int {
	return d.version
}

// AppendElement 向文档根追加元素。
func (d *Document) AppendElement(tag string, attrs []markup.Attr) reveal.Container {
	return docContainer{doc: d, node: d.root}.AppendElement(tag, attrs)
}

// AppendSegment 向文档根追加段。
func (d *Document) AppendSegment(text string) reveal.Segment {
	return docContainer{doc: d, node: d.root}.AppendSegment(text)
}

// Text 返回当前可见段的文本，按文档顺序拼接。
func (d *Document) Text() string {
	var b strings.Builder
	var walk func(n *docNode)
	walk = func(n *docNode) {
		if n.segment {
			if n.visible {
				b.WriteString(n.text)
			}
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(d.root)
	return b.String()
}

// Counts 返回元素数、段数与其中可见的段数。
func (d *Document) Counts() (elements, segments, visible int) {
	var walk func(n *docNode)
	walk = func(n *docNode) {
		for _, c := range n.children {
			if c.segment {
				segments++
				if c.visible {
					visible++
				}
				continue
			}
			elements++
			walk(c)
		}
	}
	walk(d.root)
	return
}

type docContainer struct {
	doc  *Document
	node *docNode
}

func (c docContainer) AppendElement(tag string, attrs []markup.Attr) reveal.Container {
	copied := make([]markup.Attr, len(attrs))
	copy(copied, attrs)
	el := &docNode{tag: tag, attrs: copied}
	c.node.children = append(c.node.children, el)
	c.doc.version++
	return docContainer{doc: c.doc, node: el}
}

func (c docContainer) AppendSegment(text string) reveal.Segment {
	seg := &docNode{text: text, segment: true}
	c.node.children = append(c.node.children, seg)
	c.doc.version++
	return docSegment{doc: c.doc, node: seg}
}

type docSegment struct {
	doc  *Document
	node *docNode
}

func (s docSegment) Show() {
	if s.node.visible {
		return
	}
	s.node.visible = true
	s.doc.version++
}

// Render 将文档排版为不超过 width 列的行；隐藏段不绘制。
func (d *Document) Render(width int, th Theme) []Line {
	l := newLayout(width, th)
	l.children(d.root, l.root())
	l.flush(l.root())
	return l.finish()
}
