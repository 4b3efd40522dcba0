package main

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// colorProfile 按 --color 与 NO_COLOR 选择输出的颜色档位。
// auto 交给 termenv 检测 stdout：管道或重定向时退化为 Ascii。
func colorProfile(mode string) termenv.Profile {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "never":
		return termenv.Ascii
	case "always":
		if p := termenv.ColorProfile(); p != termenv.Ascii {
			return p
		}
		return termenv.ANSI256
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}

// applyColorProfile 设置 lipgloss 全局档位，返回是否需要输出样式。
func applyColorProfile(mode string) bool {
	p := colorProfile(mode)
	lipgloss.SetColorProfile(p)
	return p != termenv.Ascii
}
