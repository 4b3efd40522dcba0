package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"career-chat/internal/logger"
)

// University 是后端中的一个资料分区。
type University struct {
	Name          string `json:"name"`
	DocumentCount int    `json:"document_count"`
}

type listResponse struct {
	Universities []University `json:"universities"`
}

// UploadResult 对应上传成功的响应。
type UploadResult struct {
	Message    string     `json:"message"`
	University University `json:"university"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Progress 上传进度回调，sent/total 以字节计。
type Progress func(sent, total int64)

// ListUniversities 获取全部分区。
func (c *Client) ListUniversities(ctx context.Context) ([]University, error) {
	req, err := http.NewRequest(http.MethodGet, c.endpoint("api", "universities"), nil)
	if err != nil {
		return nil, fmt.Errorf("list universities: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	var resp listResponse
	if err := c.do(ctx, c.http, req, nil, &resp); err != nil {
		return nil, fmt.Errorf("list universities: %w", err)
	}
	return resp.Universities, nil
}

// DeleteUniversity 删除指定分区，返回服务端消息。
func (c *Client) DeleteUniversity(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("delete university: name is empty")
	}
	req, err := http.NewRequest(http.MethodDelete, c.endpoint("api", "universities", name), nil)
	if err != nil {
		return "", fmt.Errorf("delete university: %w", err)
	}
	var resp messageResponse
	if err := c.do(ctx, c.http, req, logger.Fields{"university": name}, &resp); err != nil {
		return "", fmt.Errorf("delete university: %w", err)
	}
	return resp.Message, nil
}

// UploadUniversity 以 multipart 字段 file 上传 CSV。
// 上传前先做本地校验；progress 可为 nil。
func (c *Client) UploadUniversity(ctx context.Context, path string, progress Progress) (UploadResult, error) {
	var result UploadResult
	info, err := ValidateUpload(path)
	if err != nil {
		return result, fmt.Errorf("upload: %w", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return result, fmt.Errorf("upload: %w", err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		src := &progressReader{r: f, total: info.Size, fn: progress}
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequest(http.MethodPost, c.endpoint("api", "universities", "upload"), pr)
	if err != nil {
		pr.Close()
		return result, fmt.Errorf("upload: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	fields := logger.Fields{"file": filepath.Base(path), "bytes": info.Size, "rows": info.Rows}
	err = c.do(ctx, c.upload, req, fields, &result)
	// 服务端提前返回时解除写端阻塞
	pr.Close()
	if err != nil {
		return result, fmt.Errorf("upload: %w", err)
	}
	return result, nil
}

type progressReader struct {
	r     io.Reader
	sent  int64
	total int64
	fn    Progress
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.fn != nil {
			p.fn(p.sent, p.total)
		}
	}
	return n, err
}
