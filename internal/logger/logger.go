package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger/LogEntry/Fields 暴露底层类型，调用方无需直接引入 logrus。
type Logger = logrus.Logger
type LogEntry = logrus.Entry
type Fields = logrus.Fields

// PathEnv 覆盖日志文件位置。
const PathEnv = "CAREER_CHAT_LOG"

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

var shared = logrus.StandardLogger()

// Configure 设置格式与级别；无法解析的级别保持原值。
func Configure(level string) {
	shared.SetReportCaller(true)
	shared.SetFormatter(PlainFormatter{})
	if lvl, err := logrus.ParseLevel(strings.TrimSpace(level)); err == nil {
		shared.SetLevel(lvl)
	}
}

// DefaultPath 优先取 CAREER_CHAT_LOG，否则落在 ~/.career-chat/logs 下。
func DefaultPath() string {
	if p := strings.TrimSpace(os.Getenv(PathEnv)); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("logs", "career-chat.log")
	}
	return filepath.Join(home, ".career-chat", "logs", "career-chat.log")
}

// SetupFile 把输出重定向到日志文件。界面占用终端时日志只能落盘。
func SetupFile(path string) (io.Closer, string, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, "", err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, "", err
	}
	shared.SetOutput(f)
	return f, path, nil
}

// Discard 丢弃全部输出。
func Discard() {
	shared.SetOutput(io.Discard)
}

// SetRoot 替换共享 logger，nil 恢复为 logrus 标准 logger。
func SetRoot(l *Logger) {
	if l == nil {
		l = logrus.StandardLogger()
	}
	shared = l
}

// Named 返回带 component 字段的入口。
func Named(component string) *LogEntry {
	entry := logrus.NewEntry(shared)
	if component != "" {
		entry = entry.WithField("component", component)
	}
	return entry
}

// PlainFormatter 输出 caller [time] [LEVEL] [component] message k=v...，
// 名称含 key/token 的字符串字段只保留末四位。
type PlainFormatter struct{}

func (PlainFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry == nil {
		return nil, nil
	}
	var b strings.Builder
	if caller := callerOf(entry); caller != "" {
		b.WriteString(caller)
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "[%s] [%s] ", entry.Time.UTC().Format(timestampLayout), strings.ToUpper(entry.Level.String()))
	if c, ok := entry.Data["component"].(string); ok && c != "" {
		fmt.Fprintf(&b, "[%s] ", c)
	}
	b.WriteString(entry.Message)
	writeFields(&b, entry.Data)
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func callerOf(entry *logrus.Entry) string {
	if entry.HasCaller() && entry.Caller != nil {
		file := filepath.ToSlash(entry.Caller.File)
		for _, marker := range []string{"/internal/", "/cmd/"} {
			if idx := strings.Index(file, marker); idx != -1 {
				return fmt.Sprintf("%s:%d", file[idx+1:], entry.Caller.Line)
			}
		}
		return fmt.Sprintf("%s:%d", filepath.Base(file), entry.Caller.Line)
	}
	if c, ok := entry.Data["caller"].(string); ok {
		return c
	}
	return ""
}

func writeFields(b *strings.Builder, data logrus.Fields) {
	keys := make([]string, 0, len(data))
	for k := range data {
		if k != "component" && k != "caller" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := data[k]
		if s, ok := v.(string); ok && isSecret(k) {
			v = Mask(s)
		}
		fmt.Fprintf(b, " %s=%v", k, v)
	}
}

func isSecret(key string) bool {
	key = strings.ToLower(key)
	return strings.Contains(key, "key") || strings.Contains(key, "token")
}

// Mask 仅保留末四位，其余替换为 *。
func Mask(secret string) string {
	runes := []rune(strings.TrimSpace(secret))
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}
