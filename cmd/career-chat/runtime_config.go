package main

import (
	"strconv"
	"strings"
)

// runtimeConfig 是只在命令行层面生效、不写入配置文件的设置。
type runtimeConfig struct {
	RequestTimeoutSecs int
	// HTMLRoot 是 ask/render --html 输出的外层标签。
	HTMLRoot string
}

func defaultRuntimeConfig() runtimeConfig {
	return runtimeConfig{
		RequestTimeoutSecs: 120,
		HTMLRoot:           "div",
	}
}

func applyRuntimeKVOverrides(cfg runtimeConfig, overrides []string) runtimeConfig {
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "request_timeout_seconds", "timeout":
			if n, err := strconv.Atoi(val); err == nil && n > 0 {
				cfg.RequestTimeoutSecs = n
			}
		case "html_root":
			if val != "" {
				cfg.HTMLRoot = val
			}
		}
	}
	return cfg
}
