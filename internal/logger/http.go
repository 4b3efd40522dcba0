package logger

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// HTTPLogger 记录与后端交互的请求与结果。
type HTTPLogger struct {
	entry *logrus.Entry
}

// NewHTTPLogger 构造以 component=api 输出的日志器。
func NewHTTPLogger() *HTTPLogger {
	return &HTTPLogger{entry: Named("api")}
}

// Request 记录一次请求。
func (l *HTTPLogger) Request(method, url string, fields Fields) {
	if l == nil {
		return
	}
	l.entry.WithFields(fields).Infof("-> %s %s", method, url)
}

// Response 记录响应状态与耗时。
func (l *HTTPLogger) Response(method, url string, status int, elapsed time.Duration) {
	if l == nil {
		return
	}
	entry := l.entry.WithField("elapsed", elapsed.Round(time.Millisecond))
	if status >= http.StatusBadRequest {
		entry.Warnf("<- %s %s status=%d", method, url, status)
		return
	}
	entry.Infof("<- %s %s status=%d", method, url, status)
}

// Error 记录传输层错误。
func (l *HTTPLogger) Error(method, url string, err error) {
	if l == nil || err == nil {
		return
	}
	l.entry.Errorf("xx %s %s: %v", method, url, err)
}
