package config

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"career-chat/internal/reveal"
)

const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// ErrEmptyPrompt 保存空白提示词时返回。
var ErrEmptyPrompt = errors.New("prompt cannot be empty")

// SetPrompt 保存去除首尾空白后的提示词，拒绝空文本。
func (c *Config) SetPrompt(prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return ErrEmptyPrompt
	}
	c.Prompt = prompt
	return nil
}

// ResetPrompt 恢复内置提示词。
func (c *Config) ResetPrompt() {
	c.Prompt = DefaultPrompt
}

// CurrentPrompt 返回生效的提示词。
func (c Config) CurrentPrompt() string {
	if strings.TrimSpace(c.Prompt) == "" {
		return DefaultPrompt
	}
	return c.Prompt
}

// SetAPIKey 保存凭据；空值表示删除。
func (c *Config) SetAPIKey(key string) {
	c.APIKey = strings.TrimSpace(key)
}

// HasAPIKey 报告是否已保存凭据。
func (c Config) HasAPIKey() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// SetTheme 设置主题，未知取值返回错误。
func (c *Config) SetTheme(theme string) error {
	theme = strings.ToLower(strings.TrimSpace(theme))
	switch theme {
	case ThemeAuto, ThemeDark, ThemeLight:
		c.Theme = theme
		return nil
	}
	return errors.New("theme must be one of auto, dark, light")
}

// ToggleTheme 在深浅色之间切换；auto 先按终端背景解析再切换。
func (c *Config) ToggleTheme() string {
	if c.Dark() {
		c.Theme = ThemeLight
	} else {
		c.Theme = ThemeDark
	}
	return c.Theme
}

// Dark 报告当前是否为深色主题。
func (c Config) Dark() bool {
	return ResolveTheme(c.Theme, lipgloss.HasDarkBackground)
}

// ResolveTheme 将 auto 交由 detect 判断。
func ResolveTheme(theme string, detect func() bool) bool {
	switch theme {
	case ThemeDark:
		return true
	case ThemeLight:
		return false
	}
	if detect == nil {
		return true
	}
	return detect()
}

// Pacing 转换为渲染节奏。
func (c Config) Pacing() reveal.Pacing {
	ms := func(v int) time.Duration {
		if v < 0 {
			v = 0
		}
		return time.Duration(v) * time.Millisecond
	}
	return reveal.Pacing{
		Base:           ms(c.Reveal.BaseDelayMS),
		Jitter:         ms(c.Reveal.JitterMS),
		ShowAfter:      ms(c.Reveal.ShowAfterMS),
		ScrollDebounce: ms(c.Reveal.ScrollDebounceMS),
		ReducedMotion:  c.Reveal.ReducedMotion,
	}
}
