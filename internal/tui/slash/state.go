package slash

import (
	"sort"
	"strings"
	"unicode"

	"github.com/sahilm/fuzzy"
)

type Options struct {
	MaxLines int
}

// Input 是输入框的当前内容与光标位置。
type Input struct {
	Value        string
	CursorLine   int
	CursorColumn int
	// Blocked 为 true 时（选择器或编辑器打开）不弹出。
	Blocked bool
}

type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionClose
	ActionInsert
	ActionSubmitCommand
	ActionError
)

// Action 是按键或提交的处理结果。
// ActionInsert 时 Message 可能带有用法提示，ActionError 时是错误文本。
type Action struct {
	Kind         ActionKind
	Command      Command
	NewValue     string
	CursorColumn int
	Args         string
	Message      string
}

const unknownCommand = "unknown command, type / to list commands or /help"

// State 维护弹窗的候选与选中项。
type State struct {
	items    []Item
	matches  []match
	selected int
	open     bool
	line     commandLine
	maxLines int
}

type match struct {
	item Item
	// highlights 是命中字符在命令名（不含斜杠）中的下标；经别名命中时为空。
	highlights []int
	score      int
}

func NewState(opts Options) *State {
	if opts.MaxLines <= 0 {
		opts.MaxLines = 8
	}
	return &State{items: Items(), maxLines: opts.MaxLines}
}

func (s *State) Open() bool {
	return s != nil && s.open
}

// SyncInput 在每次输入变化后调用。光标停在命令名上且位于首行时弹出。
func (s *State) SyncInput(in Input) {
	if s == nil {
		return
	}
	s.line = parseCommandLine(in.Value, in.CursorColumn)
	s.open = s.line.ok && s.line.editingName && !in.Blocked && in.CursorLine == 0
	if !s.open {
		s.matches = nil
		return
	}
	s.matches = rank(s.items, s.line.name)
	if s.selected >= len(s.matches) {
		s.selected = 0
	}
}

// ResolveSubmit 解析按下 Enter 时的整段输入，与弹窗是否打开无关。
func (s *State) ResolveSubmit(value string) Action {
	line := parseCommandLine(value, -1)
	if !line.ok || line.name == "" {
		return Action{Kind: ActionNone}
	}
	item, ok := s.lookup(line.name)
	if !ok {
		return Action{Kind: ActionError, Message: unknownCommand}
	}
	return submit(item, line)
}

// HandleKey 处理弹窗打开时的按键；返回 false 表示交给输入框。
func (s *State) HandleKey(key string) (Action, bool) {
	if s == nil || !s.open {
		return Action{}, false
	}
	switch key {
	case "up", "ctrl+p":
		return s.move(-1), true
	case "down", "ctrl+n":
		return s.move(1), true
	case "esc":
		s.open = false
		return Action{Kind: ActionClose}, true
	case "tab":
		if len(s.matches) == 0 {
			return Action{Kind: ActionError, Message: unknownCommand}, true
		}
		return complete(s.matches[s.selected].item, s.line), true
	case "enter":
		if len(s.matches) == 0 {
			return Action{Kind: ActionError, Message: unknownCommand}, true
		}
		act := submit(s.matches[s.selected].item, s.line)
		if act.Kind == ActionSubmitCommand {
			s.open = false
		}
		return act, true
	}
	return Action{}, false
}

func (s *State) move(delta int) Action {
	n := len(s.matches)
	if n == 0 {
		return Action{Kind: ActionClose}
	}
	s.selected = ((s.selected+delta)%n + n) % n
	return Action{Kind: ActionNone}
}

// lookup 按命令名或别名精确查找，忽略大小写。
func (s *State) lookup(name string) (Item, bool) {
	for _, item := range s.items {
		for _, key := range item.keys() {
			if strings.EqualFold(key, name) {
				return item, true
			}
		}
	}
	return Item{}, false
}

// complete 把命令名补全，保留已输入的参数，光标停在参数起点。
func complete(item Item, line commandLine) Action {
	value := "/" + item.Token() + " "
	if line.args != "" {
		value += line.args
	}
	return Action{
		Kind:         ActionInsert,
		NewValue:     value + line.rest,
		CursorColumn: runeLen("/"+item.Token()) + 1,
	}
}

// submit 提交命令；必填参数缺失时改为补全并返回用法提示。
func submit(item Item, line commandLine) Action {
	if item.NeedsArgs && line.args == "" {
		act := complete(item, line)
		act.Message = "usage: " + item.Usage
		return act
	}
	return Action{Kind: ActionSubmitCommand, Command: item.Command, Args: line.args}
}

// rank 对命令名与别名做模糊匹配，同一命令只保留得分最高的一项。
// 空查询按 Items 顺序列出全部命令。
func rank(items []Item, query string) []match {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		out := make([]match, len(items))
		for i, item := range items {
			out[i] = match{item: item}
		}
		return out
	}
	var keys []string
	var owner []int
	for idx, item := range items {
		for _, key := range item.keys() {
			keys = append(keys, strings.ToLower(key))
			owner = append(owner, idx)
		}
	}
	best := map[int]match{}
	for _, res := range fuzzy.Find(query, keys) {
		idx := owner[res.Index]
		if prev, ok := best[idx]; ok && prev.score >= res.Score {
			continue
		}
		m := match{item: items[idx], score: res.Score}
		if res.Str == strings.ToLower(items[idx].Token()) {
			m.highlights = res.MatchedIndexes
		}
		best[idx] = m
	}
	out := make([]match, 0, len(best))
	for _, m := range best {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].item.Token() < out[j].item.Token()
	})
	return out
}

// commandLine 是首行 "/name args" 的拆分结果，rest 为首行之后的内容（含换行）。
type commandLine struct {
	ok          bool
	name        string
	args        string
	rest        string
	editingName bool
}

// parseCommandLine 只识别首行以 "/" 开头且命令名中不含第二个 "/" 的输入，
// 这样以路径开头的提问不会被当成命令。cursor < 0 表示不关心光标。
func parseCommandLine(value string, cursor int) commandLine {
	first, rest := value, ""
	if i := strings.IndexByte(value, '\n'); i >= 0 {
		first, rest = value[:i], value[i:]
	}
	if !strings.HasPrefix(first, "/") {
		return commandLine{}
	}
	runes := []rune(first)
	end := len(runes)
	for i := 1; i < len(runes); i++ {
		if unicode.IsSpace(runes[i]) {
			end = i
			break
		}
		if runes[i] == '/' {
			return commandLine{}
		}
	}
	return commandLine{
		ok:          true,
		name:        string(runes[1:end]),
		args:        strings.TrimSpace(string(runes[end:])),
		rest:        rest,
		editingName: cursor >= 0 && cursor <= end,
	}
}

func runeLen(text string) int {
	return len([]rune(text))
}
