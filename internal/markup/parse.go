package markup

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	// 后端会在答案末尾拼接 <a> 形式的来源链接，需要保留原始 HTML。
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

// FromMarkdown 将 Markdown 文本转换为以 Fragment 为根的树。
func FromMarkdown(src string) (*Node, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return nil, fmt.Errorf("markdown: convert: %w", err)
	}
	return FromHTML(buf.String())
}

// FromHTML 以 <div> 为上下文解析 HTML 片段。注释、doctype 被丢弃。
func FromHTML(src string) (*Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(src), ctx)
	if err != nil {
		return nil, fmt.Errorf("html: parse fragment: %w", err)
	}
	root := Fragment()
	for _, n := range nodes {
		if c := convert(n); c != nil {
			root.Children = append(root.Children, c)
		}
	}
	return root, nil
}

func convert(n *html.Node) *Node {
	switch n.Type {
	case html.TextNode:
		return Text(n.Data)
	case html.ElementNode:
		attrs := make([]Attr, 0, len(n.Attr))
		for _, a := range n.Attr {
			name := a.Key
			if a.Namespace != "" {
				name = a.Namespace + ":" + a.Key
			}
			attrs = append(attrs, Attr{Name: name, Value: a.Val})
		}
		el := Element(n.Data, attrs)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if cc := convert(c); cc != nil {
				el.Children = append(el.Children, cc)
			}
		}
		return el
	default:
		return nil
	}
}
