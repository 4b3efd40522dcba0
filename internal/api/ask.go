package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"career-chat/internal/logger"
)

// FallbackAnswer 是任何失败时展示给用户的通用回复。
const FallbackAnswer = "Oops! Something went wrong. Please try again."

// ErrMissingKey 未配置凭据时返回，请求不会发出。
var ErrMissingKey = errors.New("api key is not set")

// AskRequest 对应 POST /ask 的请求体。
type AskRequest struct {
	Query          string `json:"query"`
	CustomPrompt   string `json:"custom_prompt"`
	APIKey         string `json:"api_key"`
	UniversityName string `json:"university_name"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

func (r AskRequest) validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return errors.New("query is empty")
	}
	if strings.TrimSpace(r.APIKey) == "" {
		return ErrMissingKey
	}
	return nil
}

// Ask 发送问题并返回 Markdown 格式的回答。
func (c *Client) Ask(ctx context.Context, req AskRequest) (string, error) {
	if err := req.validate(); err != nil {
		return "", fmt.Errorf("ask: %w", err)
	}
	req.Query = strings.TrimSpace(req.Query)
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("ask: %w", err)
	}
	httpReq, err := http.NewRequest(http.MethodPost, c.endpoint("ask"), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("ask: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	var resp askResponse
	fields := logger.Fields{"api_key": req.APIKey, "university": req.UniversityName, "query_len": len(req.Query)}
	if err := c.do(ctx, c.http, httpReq, fields, &resp); err != nil {
		return "", fmt.Errorf("ask: %w", err)
	}
	return resp.Answer, nil
}

// AnswerOrFallback 失败或空回答时返回通用回复。
func AnswerOrFallback(answer string, err error) string {
	if err != nil || strings.TrimSpace(answer) == "" {
		return FallbackAnswer
	}
	return answer
}
