package render

import "github.com/charmbracelet/lipgloss"

// Theme 汇总界面与正文所用样式。
type Theme struct {
	Dark bool

	Text      lipgloss.Style
	Muted     lipgloss.Style
	Accent    lipgloss.Style
	Heading   lipgloss.Style
	Code      lipgloss.Style
	Link      lipgloss.Style
	Quote     lipgloss.Style
	Rule      lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	Notice    lipgloss.Style
	Error     lipgloss.Style
}

// ThemeFor 根据深浅色返回主题。
func ThemeFor(dark bool) Theme {
	if dark {
		return DarkTheme()
	}
	return LightTheme()
}

func DarkTheme() Theme {
	accent := lipgloss.Color("#A78BFA")
	return Theme{
		Dark:      true,
		Text:      lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E7EB")),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")),
		Accent:    lipgloss.NewStyle().Foreground(accent),
		Heading:   lipgloss.NewStyle().Foreground(accent).Bold(true),
		Code:      lipgloss.NewStyle().Foreground(lipgloss.Color("#FBBF24")).Background(lipgloss.Color("#1F2937")),
		Link:      lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA")).Underline(true),
		Quote:     lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")).Italic(true),
		Rule:      lipgloss.NewStyle().Foreground(lipgloss.Color("#4B5563")),
		User:      lipgloss.NewStyle().Faint(true).Bold(true),
		Assistant: lipgloss.NewStyle().Foreground(accent),
		Notice:    lipgloss.NewStyle().Foreground(lipgloss.Color("#34D399")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171")),
	}
}

func LightTheme() Theme {
	accent := lipgloss.Color("#7D56F4")
	return Theme{
		Text:      lipgloss.NewStyle().Foreground(lipgloss.Color("#111827")),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		Accent:    lipgloss.NewStyle().Foreground(accent),
		Heading:   lipgloss.NewStyle().Foreground(accent).Bold(true),
		Code:      lipgloss.NewStyle().Foreground(lipgloss.Color("#B45309")).Background(lipgloss.Color("#F3F4F6")),
		Link:      lipgloss.NewStyle().Foreground(lipgloss.Color("#2563EB")).Underline(true),
		Quote:     lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Italic(true),
		Rule:      lipgloss.NewStyle().Foreground(lipgloss.Color("#D1D5DB")),
		User:      lipgloss.NewStyle().Faint(true).Bold(true),
		Assistant: lipgloss.NewStyle().Foreground(accent),
		Notice:    lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626")),
	}
}

// inlineStyle 返回行内标签对应的样式，未知标签返回 false。
func (t Theme) inlineStyle(tag string) (lipgloss.Style, bool) {
	switch tag {
	case "strong", "b":
		return lipgloss.NewStyle().Bold(true), true
	case "em", "i", "cite":
		return lipgloss.NewStyle().Italic(true), true
	case "del", "s", "strike":
		return lipgloss.NewStyle().Strikethrough(true), true
	case "u", "ins":
		return lipgloss.NewStyle().Underline(true), true
	case "code", "kbd", "samp":
		return t.Code, true
	case "a":
		return t.Link, true
	case "mark":
		return t.Accent, true
	case "span", "small", "sub", "sup", "abbr", "label":
		return lipgloss.NewStyle(), true
	}
	return lipgloss.Style{}, false
}

// blockTags 需要在前后换行的标签。
var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "dl": true, "dt": true, "dd": true,
	"pre": true, "blockquote": true, "hr": true,
	"table": true, "thead": true, "tbody": true, "tr": true,
}

// IsBlock 报告标签是否为块级。
func IsBlock(tag string) bool {
	return blockTags[tag]
}

func isHeading(tag string) bool {
	return len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6'
}
