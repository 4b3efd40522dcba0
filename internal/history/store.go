package history

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Entry 是 history.jsonl 中的一行。
type Entry struct {
	Text       string    `json:"text"`
	University string    `json:"university,omitempty"`
	TS         time.Time `json:"ts"`
}

var errNoPath = errors.New("history store path is empty")

// Store 以 JSON Lines 追加保存提问。
// 行数超过 Limit 的两倍时重写文件，只保留最近 Limit 行。
type Store struct {
	Path  string
	Limit int
	Now   func() time.Time
}

func NewDefault() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Store{Path: filepath.Join(home, ".career-chat", "history.jsonl"), Limit: 500}, nil
}

func (s *Store) path() (string, error) {
	if s == nil || strings.TrimSpace(s.Path) == "" {
		return "", errNoPath
	}
	return s.Path, nil
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Append 追加一条提问，空白文本忽略。
func (s *Store) Append(text, university string) error {
	path, err := s.path()
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	line, err := json.Marshal(Entry{Text: text, University: strings.TrimSpace(university), TS: s.now()})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return s.compact()
}

func (s *Store) compact() error {
	if s.Limit <= 0 {
		return nil
	}
	entries, err := s.Entries()
	if err != nil || len(entries) <= 2*s.Limit {
		return err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, e := range entries[len(entries)-s.Limit:] {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path)
}

// Entries 读取全部记录；无法解析或文本为空的行被跳过。
func (s *Store) Entries() ([]Entry, error) {
	path, err := s.path()
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decode(f)
}

func decode(r io.Reader) ([]Entry, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var out []Entry
	for sc.Scan() {
		var e Entry
		if json.Unmarshal(bytes.TrimSpace(sc.Bytes()), &e) != nil || strings.TrimSpace(e.Text) == "" {
			continue
		}
		out = append(out, e)
	}
	return out, sc.Err()
}

// LoadTexts 返回按时间排列的提问文本，合并相邻重复项，最多 Limit 条。
func (s *Store) LoadTexts() ([]string, error) {
	entries, err := s.Entries()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if n := len(out); n > 0 && out[n-1] == e.Text {
			continue
		}
		out = append(out, e.Text)
	}
	if s.Limit > 0 && len(out) > s.Limit {
		out = out[len(out)-s.Limit:]
	}
	return out, nil
}
