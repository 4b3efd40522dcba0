// Package catalog 缓存后端分区列表并提供模糊筛选。
package catalog

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"career-chat/internal/api"
)

// Cache 是落盘的分区快照。
type Cache struct {
	Universities []api.University `json:"universities"`
	Fetched      time.Time        `json:"fetched"`
}

func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".career-chat", "universities.json"), nil
}

// Load 读取缓存，文件缺失时返回空缓存。
func Load(path string) (Cache, error) {
	var c Cache
	if strings.TrimSpace(path) == "" {
		return c, errors.New("catalog cache path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return Cache{}, err
	}
	return c, nil
}

// Save 写入缓存。
func Save(path string, c Cache) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("catalog cache path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Names 返回按原顺序排列的名称。
func (c Cache) Names() []string {
	out := make([]string, 0, len(c.Universities))
	for _, u := range c.Universities {
		out = append(out, u.Name)
	}
	return out
}

// Contains 报告是否存在同名分区。
func (c Cache) Contains(name string) bool {
	for _, u := range c.Universities {
		if u.Name == name {
			return true
		}
	}
	return false
}

// Upsert 加入或替换同名分区。
func (c *Cache) Upsert(u api.University) {
	for i := range c.Universities {
		if c.Universities[i].Name == u.Name {
			c.Universities[i] = u
			return
		}
	}
	c.Universities = append(c.Universities, u)
}

// Remove 删除同名分区，返回是否存在。
func (c *Cache) Remove(name string) bool {
	for i := range c.Universities {
		if c.Universities[i].Name == name {
			c.Universities = append(c.Universities[:i], c.Universities[i+1:]...)
			return true
		}
	}
	return false
}

// Match 是一次筛选结果，Highlights 为名称中命中的 rune 下标。
type Match struct {
	University api.University
	Highlights []int
}

// Filter 对名称做模糊匹配；空筛选返回全部并保持原顺序。
func Filter(list []api.University, query string) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]Match, 0, len(list))
		for _, u := range list {
			out = append(out, Match{University: u})
		}
		return out
	}
	keys := make([]string, len(list))
	for i, u := range list {
		keys[i] = strings.ToLower(u.Name)
	}
	results := fuzzy.Find(strings.ToLower(query), keys)
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score == results[j].Score {
			return results[i].Index < results[j].Index
		}
		return results[i].Score > results[j].Score
	})
	out := make([]Match, 0, len(results))
	for _, r := range results {
		out = append(out, Match{University: list[r.Index], Highlights: r.MatchedIndexes})
	}
	return out
}
