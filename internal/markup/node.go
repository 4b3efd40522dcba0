package markup

import "strings"

// Kind 区分 Node 的变体。
type Kind uint8

const (
	// TextKind 叶子文本。
	TextKind Kind = iota + 1
	// ElementKind 带标签、属性与子节点的元素。
	ElementKind
	// FragmentKind 无标签的根容器，子节点直接挂到挂载点。
	FragmentKind
)

func (k Kind) String() string {
	switch k {
	case TextKind:
		return "text"
	case ElementKind:
		return "element"
	case FragmentKind:
		return "fragment"
	default:
		return "unknown"
	}
}

// Attr 是一个属性键值对，保留源顺序。
type Attr struct {
	Name  string
	Value string
}

// Node 是渲染器的输入树节点，渲染期间只读。
type Node struct {
	Kind     Kind
	Tag      string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// Text 构造文本节点。
func Text(content string) *Node {
	return &Node{Kind: TextKind, Text: content}
}

// Element 构造元素节点；tag 统一为小写。
func Element(tag string, attrs []Attr, children ...*Node) *Node {
	return &Node{
		Kind:     ElementKind,
		Tag:      strings.ToLower(tag),
		Attrs:    attrs,
		Children: children,
	}
}

// Fragment 构造根容器。
func Fragment(children ...*Node) *Node {
	return &Node{Kind: FragmentKind, Children: children}
}

// Attr 返回指定属性值。
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// IsEmpty 判断节点是否不会产生任何输出。
func (n *Node) IsEmpty() bool {
	if n == nil {
		return true
	}
	switch n.Kind {
	case TextKind:
		return n.Text == ""
	case FragmentKind:
		for _, c := range n.Children {
			if !c.IsEmpty() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// PlainText 按文档顺序拼接全部文本。
func (n *Node) PlainText() string {
	var b strings.Builder
	Walk(n, func(c *Node) bool {
		if c.Kind == TextKind {
			b.WriteString(c.Text)
		}
		return true
	})
	return b.String()
}

// Walk 深度优先遍历，fn 返回 false 时跳过子树。
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || fn == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}
