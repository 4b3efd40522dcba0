package tui

import (
	"strings"

	"career-chat/internal/history"
)

// promptHistory 负责输入框的提问历史（上下箭头），并写入 history.jsonl。
// cursor == len(entries) 表示当前在“最新输入”（非浏览历史）位置。
type promptHistory struct {
	store   *history.Store
	entries []string
	cursor  int
	draft   string
}

func newPromptHistory(store *history.Store) promptHistory {
	h := promptHistory{store: store}
	if store == nil {
		return h
	}
	texts, err := store.LoadTexts()
	if err != nil {
		log.WithError(err).Warn("load question history")
		return h
	}
	h.entries = texts
	h.cursor = len(h.entries)
	return h
}

// Add 记录一条提问；与上一条相同时只写入文件不重复加入内存列表。
func (h *promptHistory) Add(text, university string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if n := len(h.entries); n == 0 || h.entries[n-1] != text {
		h.entries = append(h.entries, text)
	}
	h.cursor = len(h.entries)
	h.draft = ""
	if h.store == nil {
		return nil
	}
	return h.store.Append(text, university)
}

func (h *promptHistory) Browsing() bool {
	return h.cursor < len(h.entries)
}

func (h *promptHistory) ResetBrowsing() {
	h.cursor = len(h.entries)
	h.draft = ""
}

// Prev 返回上一条；首次进入浏览时保存当前草稿。
func (h *promptHistory) Prev(current string) (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.cursor == len(h.entries) {
		h.draft = current
	}
	if h.cursor > 0 {
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next 返回下一条；越过最新一条时恢复草稿。
func (h *promptHistory) Next() (string, bool) {
	if h.cursor >= len(h.entries) {
		return "", false
	}
	if h.cursor < len(h.entries)-1 {
		h.cursor++
		return h.entries[h.cursor], true
	}
	h.cursor = len(h.entries)
	return h.draft, true
}
