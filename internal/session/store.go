package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role 消息角色。
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message 是对话中的一条消息。
type Message struct {
	ID         string    `json:"id"`
	Role       Role      `json:"role"`
	Content    string    `json:"content"`
	University string    `json:"university,omitempty"`
	Time       time.Time `json:"time"`
}

// NewMessage 生成带 uuid 的消息。
func NewMessage(role Role, content, university string) Message {
	return Message{
		ID:         uuid.NewString(),
		Role:       role,
		Content:    content,
		University: university,
		Time:       time.Now(),
	}
}

type Record struct {
	ID         string    `json:"id"`
	University string    `json:"university,omitempty"`
	Messages   []Message `json:"messages"`
	Updated    time.Time `json:"updated"`
}

// Title 取第一条提问作为会话标题。
func (r Record) Title() string {
	for _, m := range r.Messages {
		if m.Role == RoleUser {
			title := strings.Join(strings.Fields(m.Content), " ")
			if r := []rune(title); len(r) > 60 {
				return string(r[:59]) + "…"
			}
			return title
		}
	}
	return "(empty)"
}

// Store 管理 <Dir>/<id>.json。
type Store struct {
	Dir string
}

func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".career-chat", "sessions"), nil
}

func NewDefault() (*Store, error) {
	d, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	return &Store{Dir: d}, nil
}

func (s *Store) path(id string) (string, error) {
	if s == nil || strings.TrimSpace(s.Dir) == "" {
		return "", errors.New("session store dir is empty")
	}
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid session id %q", id)
	}
	return filepath.Join(s.Dir, id+".json"), nil
}

// Save 写入会话；id 为空时分配新的 uuid。空会话不落盘。
func (s *Store) Save(id, university string, messages []Message) (string, error) {
	if len(messages) == 0 {
		return id, nil
	}
	if id == "" {
		id = uuid.NewString()
	}
	path, err := s.path(id)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	rec := Record{ID: id, University: university, Messages: messages, Updated: time.Now()}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Load(id string) (Record, error) {
	var rec Record
	path, err := s.path(id)
	if err != nil {
		return rec, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("session %s: %w", id, err)
	}
	return rec, nil
}

// Last 返回最近更新的会话。
func (s *Store) Last() (Record, error) {
	records, err := s.List()
	if err != nil {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, fmt.Errorf("no sessions found")
	}
	return records[0], nil
}

func (s *Store) ListIDs() ([]string, error) {
	if s == nil || s.Dir == "" {
		return nil, errors.New("session store dir is empty")
	}
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	return ids, nil
}

// List 按更新时间倒序返回可解析的会话。
func (s *Store) List() ([]Record, error) {
	ids, err := s.ListIDs()
	if err != nil {
		return nil, err
	}
	var records []Record
	for _, id := range ids {
		rec, err := s.Load(id)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Updated.After(records[j].Updated)
	})
	return records, nil
}
