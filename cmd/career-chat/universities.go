package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/bubbles/progress"

	"career-chat/internal/api"
	"career-chat/internal/catalog"
	"career-chat/internal/config"
)

// universityBackend 是 universities 子命令用到的接口子集，测试时可替换。
type universityBackend interface {
	ListUniversities(ctx context.Context) ([]api.University, error)
	UploadUniversity(ctx context.Context, path string, progress api.Progress) (api.UploadResult, error)
	DeleteUniversity(ctx context.Context, name string) (string, error)
}

type universitiesEnv struct {
	cfg       config.Config
	backend   universityBackend
	cachePath string
	out       io.Writer
	// errOut 接收上传进度条。
	errOut io.Writer
}

func universitiesMain(root rootArgs, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := runUniversities(ctx, root, args, os.Stdout, os.Stderr); err != nil {
		fail("universities", err)
	}
}

func runUniversities(ctx context.Context, root rootArgs, args []string, out, errOut io.Writer) error {
	fs := flag.NewFlagSet("universities", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var cfgPath string
	var cachePath string
	var overrides stringSlice
	var noSelect bool
	fs.StringVar(&cfgPath, "config", "", "Path to config file (default ~/.career-chat/config.toml)")
	fs.StringVar(&cachePath, "cache", "", "Path to the university cache (default ~/.career-chat/universities.json)")
	fs.BoolVar(&noSelect, "no-select", false, "Do not select the university after upload")
	fs.Var(&overrides, "c", "Override config value key=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	all := prependOverrides(root.overrides, []string(overrides))
	cfg, err := resolveConfig(cfgPath, all)
	if err != nil {
		return err
	}
	client, err := newClient(cfg, applyRuntimeKVOverrides(defaultRuntimeConfig(), all))
	if err != nil {
		return err
	}
	if cachePath == "" {
		if cachePath, err = catalog.DefaultPath(); err != nil {
			log.WithError(err).Warn("resolve university cache path")
		}
	}
	env := universitiesEnv{cfg: cfg, backend: client, cachePath: cachePath, out: out, errOut: errOut}

	rest := fs.Args()
	action := "list"
	if len(rest) > 0 {
		action, rest = rest[0], rest[1:]
	}
	arg := strings.TrimSpace(strings.Join(rest, " "))
	switch action {
	case "list", "ls":
		return env.list(ctx)
	case "upload":
		return env.upload(ctx, arg, !noSelect)
	case "delete", "rm":
		return env.remove(ctx, arg)
	case "select", "use":
		return env.selectUniversity(arg)
	default:
		return fmt.Errorf("unknown action %q (use list, upload, delete or select)", action)
	}
}

// list 打印分区列表；服务不可达时退回本地缓存。
func (e universitiesEnv) list(ctx context.Context) error {
	list, err := e.backend.ListUniversities(ctx)
	cached := false
	if err != nil {
		cache, cacheErr := catalog.Load(e.cachePath)
		if cacheErr != nil || len(cache.Universities) == 0 {
			return err
		}
		log.WithError(err).Warn("list universities, using cache")
		fmt.Fprintf(e.errOut, "server unavailable (%v); showing the list cached at %s\n", err, cache.Fetched.Format("2006-01-02 15:04"))
		list = cache.Universities
		cached = true
	}
	if !cached {
		e.saveCache(func(c *catalog.Cache) { c.Universities = list })
	}
	if len(list) == 0 {
		fmt.Fprintln(e.out, "No universities uploaded yet.")
		return nil
	}
	tw := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDOCUMENTS\t")
	for _, u := range list {
		mark := ""
		if u.Name == e.cfg.University {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", u.Name, u.DocumentCount, mark)
	}
	return tw.Flush()
}

func (e universitiesEnv) upload(ctx context.Context, path string, selectAfter bool) error {
	if path == "" {
		return errors.New("usage: career-chat universities upload <file.csv>")
	}
	path = expandHome(path)
	info, err := api.ValidateUpload(path)
	if err != nil {
		return err
	}
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(30))
	label := filepath.Base(path)
	res, err := e.backend.UploadUniversity(ctx, path, func(sent, total int64) {
		if total <= 0 {
			total = info.Size
		}
		percent := 0.0
		if total > 0 {
			percent = float64(sent) / float64(total)
		}
		fmt.Fprintf(e.errOut, "\r%s %s", bar.ViewAs(percent), label)
	})
	fmt.Fprintln(e.errOut)
	if err != nil {
		return serverError(err)
	}
	msg := res.Message
	if msg == "" {
		msg = "Uploaded " + label
	}
	fmt.Fprintln(e.out, msg)
	if res.University.Name == "" {
		return nil
	}
	e.saveCache(func(c *catalog.Cache) { c.Upsert(res.University) })
	if selectAfter {
		return e.selectUniversity(res.University.Name)
	}
	return nil
}

func (e universitiesEnv) remove(ctx context.Context, name string) error {
	if name == "" {
		return errors.New("usage: career-chat universities delete <name>")
	}
	msg, err := e.backend.DeleteUniversity(ctx, name)
	if err != nil {
		return serverError(err)
	}
	if msg == "" {
		msg = "Deleted " + name
	}
	fmt.Fprintln(e.out, msg)
	e.saveCache(func(c *catalog.Cache) { c.Remove(name) })
	if e.cfg.University == name {
		e.cfg.University = ""
		if err := config.Save(e.cfg.Source, e.cfg); err != nil {
			return err
		}
		fmt.Fprintln(e.out, "University selection cleared.")
	}
	return nil
}

func (e universitiesEnv) selectUniversity(name string) error {
	if name == "" {
		return errors.New("usage: career-chat universities select <name>")
	}
	e.cfg.University = name
	if err := config.Save(e.cfg.Source, e.cfg); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Selected university: %s\n", name)
	return nil
}

func (e universitiesEnv) saveCache(update func(*catalog.Cache)) {
	if e.cachePath == "" {
		return
	}
	cache, err := catalog.Load(e.cachePath)
	if err != nil {
		log.WithError(err).Warn("load university cache")
	}
	update(&cache)
	cache.Fetched = nowFunc()
	if err := catalog.Save(e.cachePath, cache); err != nil {
		log.WithError(err).Warn("save university cache")
	}
}

// serverError 用服务端给出的 error 文本替换通用错误描述。
func serverError(err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return errors.New(apiErr.Message)
	}
	return err
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
