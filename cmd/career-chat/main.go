package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"career-chat/internal/api"
	"career-chat/internal/catalog"
	"career-chat/internal/config"
	"career-chat/internal/history"
	"career-chat/internal/logger"
	"career-chat/internal/session"
	"career-chat/internal/tui"
)

var log = logger.Named("cli")

var nowFunc = time.Now

func main() {
	logger.Configure("")
	if logFile, _, err := logger.SetupFile(""); err != nil {
		log.Warnf("failed to initialize log file: %v", err)
	} else {
		defer logFile.Close()
	}

	root, rest, err := parseRootArgs(os.Args[1:])
	if err != nil {
		fail("parse args", err)
	}
	if len(rest) > 0 {
		switch rest[0] {
		case "ask":
			askMain(root, rest[1:])
			return
		case "render":
			renderMain(root, rest[1:])
			return
		case "universities", "unis":
			universitiesMain(root, rest[1:])
			return
		case "resume":
			resumeMain(root, rest[1:])
			return
		case "login":
			loginMain(root, rest[1:])
			return
		case "logout":
			logoutMain(root, rest[1:])
			return
		case "completion":
			completionMain(rest[1:])
			return
		}
	}

	runInteractive(root, rest)
}

// fail 记录错误并退出；TUI 之外的错误同时写到 stderr。
func fail(what string, err error) {
	log.WithError(err).Error(what)
	fmt.Fprintf(os.Stderr, "career-chat: %s: %v\n", what, err)
	os.Exit(1)
}

func runInteractive(root rootArgs, args []string) {
	fs, cli := newInteractiveFlagSet("career-chat")
	if err := fs.Parse(args); err != nil {
		fail("parse args", err)
	}
	cli.finalizePrompt(fs)
	cli.configOverrides = stringSlice(prependOverrides(root.overrides, []string(cli.configOverrides)))
	startInteractiveSession(cli, nil)
}

// resolveConfig 读取配置并依次应用 -c 覆盖与日志级别。
func resolveConfig(path string, overrides []string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	cfg = config.ApplyKVOverrides(cfg, overrides)
	if cfg.LogLevel != "" {
		logger.Configure(cfg.LogLevel)
	}
	return cfg, nil
}

func newClient(cfg config.Config, rt runtimeConfig) (*api.Client, error) {
	return api.New(api.Options{
		BaseURL: cfg.URL,
		Timeout: time.Duration(rt.RequestTimeoutSecs) * time.Second,
	})
}

func startInteractiveSession(cli *interactiveArgs, resume *session.Record) {
	// 首次运行写回默认配置（含内置提示词），不带命令行覆盖。
	if base, err := config.Load(cli.cfgPath); err == nil {
		if err := config.EnsureSaved(base); err != nil {
			log.WithError(err).Warn("write default config")
		}
	}
	cfg, err := resolveConfig(cli.cfgPath, []string(cli.configOverrides))
	if err != nil {
		fail("load config", err)
	}
	if university := strings.TrimSpace(cli.university); university != "" {
		cfg.University = university
	}
	rt := applyRuntimeKVOverrides(defaultRuntimeConfig(), []string(cli.configOverrides))
	client, err := newClient(cfg, rt)
	if err != nil {
		fail("init api client", err)
	}

	cachePath, err := catalog.DefaultPath()
	if err != nil {
		log.WithError(err).Warn("resolve university cache path")
	}
	cache, err := catalog.Load(cachePath)
	if err != nil {
		log.WithError(err).Warn("load university cache")
	}
	hist, err := history.NewDefault()
	if err != nil {
		log.WithError(err).Warn("open question history")
	}
	sessions, err := session.NewDefault()
	if err != nil {
		log.WithError(err).Warn("open session store")
	}

	result, err := tui.Run(tui.Options{
		Backend:       client,
		Config:        cfg,
		ConfigPath:    cfg.Source,
		Catalog:       cache,
		CatalogPath:   cachePath,
		History:       hist,
		Sessions:      sessions,
		Resume:        resume,
		InitialPrompt: cli.prompt,
		AltScreen:     !cli.copyableOutput,
	})
	if err != nil {
		fail("program exit", err)
	}
	printExitSummary(result)
}

func printExitSummary(result tui.Result) {
	questions := 0
	for _, msg := range result.Messages {
		if msg.Role == session.RoleUser {
			questions++
		}
	}
	if questions > 0 {
		fmt.Printf("Questions asked: %d\n", questions)
	}
	if result.SessionID != "" {
		fmt.Printf("To continue this conversation, run career-chat resume %s\n", result.SessionID)
	}
}
