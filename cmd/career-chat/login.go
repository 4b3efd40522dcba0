package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"career-chat/internal/config"
	"career-chat/internal/logger"
)

func loginMain(root rootArgs, args []string) {
	if err := runLogin(root, args, os.Stdin, os.Stdout); err != nil {
		fail("login", err)
	}
}

// runLogin 保存 API key：--with-api-key 从 stdin 读取，其次是 GOOGLE_API_KEY，最后交互输入。
func runLogin(root rootArgs, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var cfgPath string
	var withAPIKey bool
	fs.StringVar(&cfgPath, "config", "", "Path to config file (default ~/.career-chat/config.toml)")
	fs.BoolVar(&withAPIKey, "with-api-key", false, "Read the API key from stdin")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.Arg(0) == "status" {
		cfg, err := resolveConfig(cfgPath, root.overrides)
		if err != nil {
			return err
		}
		if cfg.HasAPIKey() {
			fmt.Fprintf(out, "API key saved (%s)\n", logger.Mask(cfg.APIKey))
		} else {
			fmt.Fprintln(out, "API key missing")
		}
		return nil
	}

	var key string
	switch {
	case withAPIKey:
		data, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("read api key from stdin: %w", err)
		}
		key = strings.TrimSpace(string(data))
	case strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")) != "":
		key = strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	default:
		fmt.Fprint(out, "Enter API key: ")
		line, _ := bufio.NewReader(in).ReadString('\n')
		key = strings.TrimSpace(line)
	}
	if key == "" {
		return errors.New("no api key provided")
	}

	// 只修改 api_key，不把 -c 覆盖写回文件。
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	cfg.SetAPIKey(key)
	if err := config.Save(cfg.Source, cfg); err != nil {
		return err
	}
	fmt.Fprintln(out, "API key saved.")
	return nil
}

func logoutMain(root rootArgs, args []string) {
	fs := flag.NewFlagSet("logout", flag.ExitOnError)
	var cfgPath string
	fs.StringVar(&cfgPath, "config", "", "Path to config file (default ~/.career-chat/config.toml)")
	if err := fs.Parse(args); err != nil {
		fail("parse logout args", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fail("load config", err)
	}
	cfg.SetAPIKey("")
	if err := config.Save(cfg.Source, cfg); err != nil {
		fail("clear stored api key", err)
	}
	fmt.Println("API key removed.")
}
