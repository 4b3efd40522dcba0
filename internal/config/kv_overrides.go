package config

import (
	"strconv"
	"strings"
)

// ApplyKVOverrides applies free-form -c key=value overrides.
func ApplyKVOverrides(cfg Config, overrides []string) Config {
	if len(overrides) == 0 {
		return cfg
	}
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "url":
			cfg.URL = val
		case "api_key":
			cfg.APIKey = val
		case "prompt":
			if val != "" {
				cfg.Prompt = val
			}
		case "theme":
			_ = cfg.SetTheme(val)
		case "university":
			cfg.University = val
		case "log_level":
			cfg.LogLevel = val
		case "reveal.base_delay_ms":
			setInt(&cfg.Reveal.BaseDelayMS, val)
		case "reveal.jitter_ms":
			setInt(&cfg.Reveal.JitterMS, val)
		case "reveal.show_after_ms":
			setInt(&cfg.Reveal.ShowAfterMS, val)
		case "reveal.scroll_debounce_ms":
			setInt(&cfg.Reveal.ScrollDebounceMS, val)
		case "reveal.reduced_motion":
			if b, err := strconv.ParseBool(val); err == nil {
				cfg.Reveal.ReducedMotion = b
			}
		}
	}
	return cfg
}

func setInt(dst *int, val string) {
	if n, err := strconv.Atoi(val); err == nil && n >= 0 {
		*dst = n
	}
}
