// Package api 是就业问答后端的 HTTP 客户端。
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"career-chat/internal/logger"
)

// Error 表示后端返回的非 2xx 响应。
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// StatusOf 取出错误中的 HTTP 状态码，非 *Error 返回 0。
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Options 客户端配置。
type Options struct {
	BaseURL string
	// Timeout 普通请求超时；上传不受其限制，由 ctx 控制。
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client 对应 /ask 与 /api/universities 接口，可并发使用。
type Client struct {
	base   *url.URL
	http   *http.Client
	upload *http.Client
	log    *logger.HTTPLogger
}

// New 构造客户端，BaseURL 必须是绝对地址。
func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, errors.New("api: base url is empty")
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api: base url %q must be absolute", raw)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	up := *hc
	up.Timeout = 0
	return &Client{base: base, http: hc, upload: &up, log: logger.NewHTTPLogger()}, nil
}

// BaseURL 返回规范化后的服务地址。
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) endpoint(segments ...string) string {
	u := *c.base
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.Join(segments, "/")
	u.RawPath = strings.TrimRight(c.base.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")
	return u.String()
}

// do 发送请求并把 JSON 响应解码到 out；非 2xx 时解析 error/answer 字段生成 *Error。
func (c *Client) do(ctx context.Context, hc *http.Client, req *http.Request, fields logger.Fields, out any) error {
	req = req.WithContext(ctx)
	start := time.Now()
	c.log.Request(req.Method, req.URL.String(), fields)
	resp, err := hc.Do(req)
	if err != nil {
		c.log.Error(req.Method, req.URL.String(), err)
		return err
	}
	defer resp.Body.Close()
	c.log.Response(req.Method, req.URL.String(), resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Status: resp.StatusCode, Message: serverMessage(body)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func serverMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Answer  string `json:"answer"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Error != "":
			return payload.Error
		case payload.Answer != "":
			return payload.Answer
		case payload.Message != "":
			return payload.Message
		}
	}
	text := strings.TrimSpace(string(body))
	if r := []rune(text); len(r) > 200 {
		text = string(r[:200])
	}
	return text
}
