package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"career-chat/internal/api"
	"career-chat/internal/catalog"
	"career-chat/internal/config"
	"career-chat/internal/markup"
	"career-chat/internal/tui/slash"
)

func (m *Model) runCommand(cmd slash.Command, args string) tea.Cmd {
	m.dirty = true
	m.viewport.Follow()
	switch cmd {
	case slash.CommandTheme:
		m.setTheme(args)
	case slash.CommandPrompt:
		if strings.EqualFold(args, "reset") {
			m.cfg.ResetPrompt()
			m.saveConfig("Prompt reset to the default.")
			return nil
		}
		return m.openEditor()
	case slash.CommandKey:
		m.keyCommand(args)
	case slash.CommandUni:
		m.openPicker(args)
		return nil
	case slash.CommandUpload:
		return m.startUpload(args)
	case slash.CommandDelete:
		return m.startDelete(args)
	case slash.CommandRefresh:
		return m.refreshCmd(false)
	case slash.CommandCopy:
		m.copyLastAnswer(args)
	case slash.CommandClear:
		m.clear()
	case slash.CommandHelp:
		m.transcript.AppendNotice(slash.HelpText())
	case slash.CommandQuit, slash.CommandExit:
		m.abandon()
		return tea.Quit
	}
	return nil
}

func (m *Model) setTheme(arg string) {
	arg = strings.ToLower(strings.TrimSpace(arg))
	if arg == "" {
		if m.cfg.Theme == config.ThemeAuto {
			// auto 按当前实际显示的深浅切换
			if m.th.Dark {
				m.cfg.Theme = config.ThemeLight
			} else {
				m.cfg.Theme = config.ThemeDark
			}
		} else {
			m.cfg.ToggleTheme()
		}
	} else if err := m.cfg.SetTheme(arg); err != nil {
		m.transcript.AppendError(err.Error())
		return
	}
	m.applyTheme()
	m.saveConfig("Theme: " + m.cfg.Theme + ".")
}

func (m *Model) keyCommand(arg string) {
	switch strings.ToLower(arg) {
	case "show":
		m.showKey = true
		if !m.cfg.HasAPIKey() {
			m.transcript.AppendNotice("API key missing. Set it with /key <value>.")
		}
	case "hide":
		m.showKey = false
	case "clear":
		m.cfg.SetAPIKey("")
		m.showKey = false
		m.saveConfig("API key removed.")
	default:
		m.cfg.SetAPIKey(arg)
		if m.cfg.HasAPIKey() {
			m.saveConfig("API key saved.")
		} else {
			m.saveConfig("API key removed.")
		}
	}
}

// copyLastAnswer 默认复制 Markdown 原文，"/copy text" 复制去掉标记后的文本。
func (m *Model) copyLastAnswer(arg string) {
	answer, ok := m.transcript.LastAnswer()
	if !ok {
		m.transcript.AppendNotice("Nothing to copy yet.")
		return
	}
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "":
	case "text":
		if tree, err := markup.FromMarkdown(answer); err == nil {
			answer = strings.TrimSpace(tree.PlainText())
		}
	default:
		m.transcript.AppendError("Usage: /copy [text]")
		return
	}
	if err := m.clipboard(answer); err != nil {
		log.WithError(err).Warn("copy answer to clipboard")
		m.transcript.AppendError("Could not copy to the clipboard: " + err.Error())
		return
	}
	m.transcript.AppendNotice("Copied the last answer to the clipboard.")
}

// saveConfig 持久化偏好；成功时追加 notice。
func (m *Model) saveConfig(notice string) {
	m.dirty = true
	if m.configPath != "" {
		if err := config.Save(m.configPath, m.cfg); err != nil {
			log.WithError(err).Warn("save preferences")
			m.transcript.AppendError("Could not save preferences: " + err.Error())
			return
		}
	}
	if notice != "" {
		m.transcript.AppendNotice(notice)
	}
}

func (m *Model) saveCache() {
	if m.cachePath == "" {
		return
	}
	if err := catalog.Save(m.cachePath, m.cache); err != nil {
		log.WithError(err).Warn("save university cache")
	}
}

func (m *Model) selectUniversity(name string) {
	m.cfg.University = name
	m.saveConfig("Selected university: " + name + ".")
}

// errorText 优先返回服务端给出的错误文本。
func errorText(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

func (m *Model) refreshCmd(quiet bool) tea.Cmd {
	backend := m.backend
	return func() tea.Msg {
		if backend == nil {
			return universitiesMsg{err: errNoBackend, quiet: quiet}
		}
		list, err := backend.ListUniversities(context.Background())
		return universitiesMsg{list: list, err: err, quiet: quiet}
	}
}

func (m *Model) handleUniversities(msg universitiesMsg) {
	if msg.err != nil {
		log.WithError(msg.err).Warn("list universities")
		if !msg.quiet {
			m.transcript.AppendError(fmt.Sprintf("Could not load universities: %s. Showing the cached list.", errorText(msg.err)))
			m.dirty = true
		}
		return
	}
	m.cache = catalog.Cache{Universities: msg.list, Fetched: m.now()}
	m.saveCache()
	if m.picker != nil {
		m.picker.refilter(m.cache.Universities)
	}
	if !msg.quiet {
		m.transcript.AppendNotice(fmt.Sprintf("Loaded %d universities.", len(msg.list)))
		m.dirty = true
	}
}

func (m *Model) startDelete(name string) tea.Cmd {
	name = strings.TrimSpace(name)
	backend := m.backend
	return func() tea.Msg {
		if backend == nil {
			return deleteDoneMsg{name: name, err: errNoBackend}
		}
		message, err := backend.DeleteUniversity(context.Background(), name)
		return deleteDoneMsg{name: name, message: message, err: err}
	}
}

func (m *Model) handleDeleteDone(msg deleteDoneMsg) {
	m.dirty = true
	m.viewport.Follow()
	if msg.err != nil {
		log.WithError(msg.err).WithField("university", msg.name).Warn("delete university")
		if !m.busy && m.upload == nil {
			m.status.Fail("Delete failed")
		}
		m.transcript.AppendError("Delete failed: " + errorText(msg.err))
		return
	}
	if m.status.State() == StatusError {
		m.status.SetState(StatusIdle)
	}
	m.cache.Remove(msg.name)
	m.saveCache()
	notice := msg.message
	if notice == "" {
		notice = "Deleted " + msg.name + "."
	}
	m.transcript.AppendNotice(notice)
	if m.cfg.University == msg.name {
		m.cfg.University = ""
		m.saveConfig("University selection cleared.")
	}
}
