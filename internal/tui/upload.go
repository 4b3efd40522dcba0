package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"career-chat/internal/api"
	"career-chat/internal/logger"
)

type uploadProgressMsg struct {
	id    int
	sent  int64
	total int64
}

type uploadDoneMsg struct {
	id     int
	path   string
	result api.UploadResult
	err    error
}

// uploadState 跟踪进行中的上传；进度经由 ch 回到事件循环。
// id 区分先后两次上传，被放弃的上传发来的消息按 id 丢弃。
type uploadState struct {
	id     int
	cancel context.CancelFunc
	path   string
	sent   int64
	total  int64
	ch     chan tea.Msg
	bar    progress.Model
}

func (m *Model) startUpload(path string) tea.Cmd {
	path = expandHome(strings.TrimSpace(path))
	if m.upload != nil {
		m.transcript.AppendError("An upload is already running.")
		return nil
	}
	if m.busy {
		m.transcript.AppendError("Wait for the current answer before uploading.")
		return nil
	}
	if m.backend == nil {
		m.transcript.AppendError("Upload failed: " + errNoBackend.Error())
		return nil
	}
	info, err := api.ValidateUpload(path)
	if err != nil {
		m.transcript.AppendError("Upload failed: " + err.Error())
		return nil
	}
	ch := make(chan tea.Msg, 8)
	ctx, cancel := context.WithCancel(context.Background())
	m.uploadSeq++
	id := m.uploadSeq
	m.upload = &uploadState{
		id:     id,
		cancel: cancel,
		path:   path,
		total:  info.Size,
		ch:     ch,
		bar:    progress.New(progress.WithDefaultGradient()),
	}
	m.status.SetState(StatusUploading)
	m.status.UpdateHeader("Uploading " + filepath.Base(path))
	backend := m.backend
	go func() {
		defer close(ch)
		defer cancel()
		res, err := backend.UploadUniversity(ctx, path, func(sent, total int64) {
			select {
			case ch <- uploadProgressMsg{id: id, sent: sent, total: total}:
			default:
			}
		})
		// 被放弃后没有人再读 ch，不能阻塞在这里。
		select {
		case ch <- uploadDoneMsg{id: id, path: path, result: res, err: err}:
		case <-ctx.Done():
		}
	}()
	return waitUpload(ch)
}

// cancelUpload 取消进行中的上传，之后到达的消息都会被丢弃。
func (m *Model) cancelUpload() {
	if m.upload == nil {
		return
	}
	m.upload.cancel()
	m.upload = nil
	if m.status.State() == StatusUploading {
		m.status.SetState(StatusIdle)
	}
}

// waitUpload 读取下一条上传消息。
func waitUpload(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *Model) handleUploadProgress(msg uploadProgressMsg) tea.Cmd {
	u := m.upload
	if u == nil || u.id != msg.id {
		return nil
	}
	u.sent, u.total = msg.sent, msg.total
	return waitUpload(u.ch)
}

func (m *Model) handleUploadDone(msg uploadDoneMsg) tea.Cmd {
	if m.upload == nil || m.upload.id != msg.id {
		return nil
	}
	m.upload = nil
	m.dirty = true
	m.viewport.Follow()
	entry := log.WithFields(logger.Fields{"path": msg.path, "elapsed_s": m.status.ElapsedSeconds()})
	if msg.err != nil {
		entry.WithError(msg.err).Warn("upload university")
		m.status.Fail("Upload failed")
		m.transcript.AppendError("Upload failed: " + errorText(msg.err))
		return nil
	}
	entry.Info("university uploaded")
	m.status.SetState(StatusIdle)
	name := msg.result.University.Name
	notice := msg.result.Message
	if notice == "" {
		notice = "Uploaded " + filepath.Base(msg.path) + "."
	}
	m.transcript.AppendNotice(notice)
	if name == "" {
		return m.refreshCmd(true)
	}
	m.cache.Upsert(msg.result.University)
	m.saveCache()
	m.selectUniversity(name)
	return m.refreshCmd(true)
}

func (m *Model) uploadView() string {
	u := m.upload
	percent := 0.0
	if u.total > 0 {
		percent = float64(u.sent) / float64(u.total)
	}
	if percent > 1 {
		percent = 1
	}
	u.bar.Width = maxInt(10, minInt(40, m.width-30))
	label := fmt.Sprintf(" %s  %s/%s", filepath.Base(u.path), humanBytes(u.sent), humanBytes(u.total))
	return u.bar.ViewAs(percent) + m.th.Muted.Render(label)
}

func humanBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
