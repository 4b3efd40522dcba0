package slash

import "strings"

// Command 表示内置斜杠命令的标识符。
type Command string

const (
	CommandTheme   Command = "theme"
	CommandPrompt  Command = "prompt"
	CommandKey     Command = "key"
	CommandUni     Command = "uni"
	CommandUpload  Command = "upload"
	CommandDelete  Command = "delete"
	CommandRefresh Command = "refresh"
	CommandCopy    Command = "copy"
	CommandClear   Command = "clear"
	CommandHelp    Command = "help"
	CommandQuit    Command = "quit"
	CommandExit    Command = "exit"
)

// Item 代表弹窗中的一行条目。
type Item struct {
	Command     Command
	Usage       string
	Description string
	// NeedsArgs 为 true 时，未带参数按 Enter 只补全并提示用法。
	NeedsArgs bool
	// Aliases 也可以直接输入，并参与模糊匹配。
	Aliases []string
}

// Token 返回无前导斜杠的匹配键。
func (i Item) Token() string {
	return string(i.Command)
}

func (i Item) keys() []string {
	return append([]string{i.Token()}, i.Aliases...)
}

// DisplayName 返回带前缀斜杠的展示名称。
func (i Item) DisplayName() string {
	token := i.Token()
	if token == "" {
		return ""
	}
	if strings.HasPrefix(token, "/") {
		return token
	}
	return "/" + token
}

// Items 返回内置命令列表，顺序即 /help 中的顺序。
func Items() []Item {
	return []Item{
		{Command: CommandUni, Usage: "/uni [filter]", Description: "choose the university to ask about", Aliases: []string{"university"}},
		{Command: CommandPrompt, Usage: "/prompt [reset]", Description: "edit the system prompt or restore the default"},
		{Command: CommandKey, Usage: "/key <value>|clear|show|hide", Description: "save, clear or reveal the Google API key", NeedsArgs: true, Aliases: []string{"apikey"}},
		{Command: CommandTheme, Usage: "/theme [dark|light|auto]", Description: "toggle or set the color theme"},
		{Command: CommandUpload, Usage: "/upload <file.csv>", Description: "upload a university CSV", NeedsArgs: true},
		{Command: CommandDelete, Usage: "/delete <name>", Description: "delete a university from the server", NeedsArgs: true, Aliases: []string{"remove"}},
		{Command: CommandRefresh, Usage: "/refresh", Description: "reload the university list"},
		{Command: CommandCopy, Usage: "/copy [text]", Description: "copy the last answer (Markdown, or plain text) to the clipboard"},
		{Command: CommandClear, Usage: "/clear", Description: "clear the conversation"},
		{Command: CommandHelp, Usage: "/help", Description: "show commands and keys"},
		{Command: CommandQuit, Usage: "/quit", Description: "save the conversation and exit"},
		{Command: CommandExit, Usage: "/exit", Description: "save the conversation and exit"},
	}
}

// HelpText 渲染 /help 的内容。
func HelpText() string {
	var b strings.Builder
	b.WriteString("Commands:\n")
	width := 0
	for _, it := range Items() {
		if n := len(it.Usage); n > width {
			width = n
		}
	}
	for _, it := range Items() {
		b.WriteString("  ")
		b.WriteString(it.Usage)
		b.WriteString(strings.Repeat(" ", width-len(it.Usage)+2))
		b.WriteString(it.Description)
		b.WriteString("\n")
	}
	b.WriteString("Keys: Enter send · Alt+Enter newline · ↑/↓ history · PgUp/PgDn scroll · Esc skip animation · Ctrl+L clear · Ctrl+C quit")
	return b.String()
}
