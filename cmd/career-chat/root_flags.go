package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"career-chat/internal/config"
)

type rootArgs struct {
	overrides []string
}

func parseRootArgs(args []string) (rootArgs, []string, error) {
	fs := flag.NewFlagSet("career-chat", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var overrides stringSlice
	var theme string
	var url string
	var reducedMotion bool
	fs.Var(&overrides, "c", "Override config value key=value (repeatable, applied before subcommand overrides)")
	fs.StringVar(&theme, "theme", "", "Theme (dark|light|auto). Equivalent to -c theme=<value>")
	fs.StringVar(&url, "url", "", "Server URL. Equivalent to -c url=<value>")
	fs.BoolVar(&reducedMotion, "reduced-motion", false, "Reveal answers without word delays. Equivalent to -c reveal.reduced_motion=true")
	head, tail := splitRootArgs(args)
	if err := fs.Parse(head); err != nil {
		return rootArgs{}, nil, err
	}

	shortcuts, err := buildShortcutOverrides(theme, url, reducedMotion)
	if err != nil {
		return rootArgs{}, nil, err
	}
	all := append([]string{}, overrides...)
	all = append(all, shortcuts...)
	rest := append(append([]string{}, fs.Args()...), tail...)
	return rootArgs{overrides: all}, rest, nil
}

// splitRootArgs 取出开头连续的根参数；遇到其他参数或子命令即停止，剩余部分原样交给子命令。
func splitRootArgs(args []string) (head, tail []string) {
	i := 0
	for i < len(args) {
		name, hasValue := rootFlagName(args[i])
		switch name {
		case "c", "theme", "url":
			if !hasValue {
				i++
			}
		case "reduced-motion":
		default:
			return args[:i], args[i:]
		}
		i++
	}
	return args, nil
}

func rootFlagName(arg string) (string, bool) {
	if !strings.HasPrefix(arg, "-") || arg == "-" || arg == "--" {
		return "", false
	}
	name := strings.TrimLeft(arg, "-")
	if k, _, ok := strings.Cut(name, "="); ok {
		return k, true
	}
	return name, false
}

func prependOverrides(root []string, overrides []string) []string {
	merged := append([]string{}, root...)
	return append(merged, overrides...)
}

func buildShortcutOverrides(theme, url string, reducedMotion bool) ([]string, error) {
	var overrides []string
	if theme = strings.ToLower(strings.TrimSpace(theme)); theme != "" {
		switch theme {
		case config.ThemeDark, config.ThemeLight, config.ThemeAuto:
		default:
			return nil, fmt.Errorf("unknown theme: %s", theme)
		}
		overrides = append(overrides, "theme="+theme)
	}
	if url = strings.TrimSpace(url); url != "" {
		overrides = append(overrides, "url="+url)
	}
	if reducedMotion {
		overrides = append(overrides, "reveal.reduced_motion=true")
	}
	return overrides, nil
}
