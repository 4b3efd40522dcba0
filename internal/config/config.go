package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultURL 后端服务默认地址。
const DefaultURL = "http://127.0.0.1:5000"

// DefaultPrompt 是内置的就业指导提示词。
const DefaultPrompt = `You are a helpful and informative bot that answers questions from undergraduate students asking about career services and using text from the reference passage included below.
Be sure to respond in a complete sentence, being comprehensive, including all relevant background information. Be sure to break down complicated concepts and
strike a friendly and conversational tone. Give additional advice on top of the given text on how the student can maximize the value of the resource. If the passage is irrelevant to the answer, you may ignore it.

**Please format your response using Markdown, including bullet points, bold text, and proper spacing where appropriate.**`

// Config is the only persisted config file schema.
type Config struct {
	URL        string       `toml:"url"`
	APIKey     string       `toml:"api_key,omitempty"`
	Prompt     string       `toml:"prompt,omitempty"`
	Theme      string       `toml:"theme,omitempty"`
	University string       `toml:"university,omitempty"`
	LogLevel   string       `toml:"log_level,omitempty"`
	Reveal     RevealConfig `toml:"reveal"`
	Source     string       `toml:"-"`
}

// RevealConfig 逐词展示节奏（毫秒）。
type RevealConfig struct {
	BaseDelayMS      int  `toml:"base_delay_ms"`
	JitterMS         int  `toml:"jitter_ms"`
	ShowAfterMS      int  `toml:"show_after_ms"`
	ScrollDebounceMS int  `toml:"scroll_debounce_ms"`
	ReducedMotion    bool `toml:"reduced_motion"`
}

func Default() Config {
	return Config{
		URL:    DefaultURL,
		Prompt: DefaultPrompt,
		Theme:  ThemeAuto,
		Reveal: RevealConfig{
			BaseDelayMS:      10,
			JitterMS:         30,
			ShowAfterMS:      10,
			ScrollDebounceMS: 50,
		},
	}
}

// Dir 返回 ~/.career-chat。
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".career-chat")
}

func DefaultPath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

// Load 读取配置文件；文件缺失时使用默认值。环境变量优先于文件。
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, err
	}
	cfg.normalize()
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if env := strings.TrimSpace(os.Getenv("CAREER_CHAT_URL")); env != "" {
		cfg.URL = env
	}
	if env := strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")); env != "" {
		cfg.APIKey = env
	}
}

func (c *Config) normalize() {
	if strings.TrimSpace(c.URL) == "" {
		c.URL = DefaultURL
	}
	if strings.TrimSpace(c.Prompt) == "" {
		c.Prompt = DefaultPrompt
	}
	switch c.Theme {
	case ThemeDark, ThemeLight, ThemeAuto:
	default:
		c.Theme = ThemeAuto
	}
	if c.Reveal.BaseDelayMS < 0 {
		c.Reveal.BaseDelayMS = 0
	}
	if c.Reveal.JitterMS < 0 {
		c.Reveal.JitterMS = 0
	}
	if c.Reveal.ShowAfterMS < 0 {
		c.Reveal.ShowAfterMS = 0
	}
	if c.Reveal.ScrollDebounceMS < 0 {
		c.Reveal.ScrollDebounceMS = 0
	}
}

// Exists 报告配置文件是否已落盘。
func Exists(path string) bool {
	if path == "" {
		path = DefaultPath()
	}
	_, err := os.Stat(path)
	return err == nil
}
