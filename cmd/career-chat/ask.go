package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"career-chat/internal/api"
	"career-chat/internal/config"
	"career-chat/internal/logger"
	"career-chat/internal/markup"
	"career-chat/internal/reveal"
	"career-chat/internal/tui/render"
)

// outputArgs 是 ask 与 render 共用的输出参数。
type outputArgs struct {
	cfgPath         string
	html            bool
	instant         bool
	color           string
	configOverrides stringSlice
}

func (o *outputArgs) register(fs *flag.FlagSet) {
	fs.StringVar(&o.cfgPath, "config", "", "Path to config file (default ~/.career-chat/config.toml)")
	fs.BoolVar(&o.html, "html", false, "Write the revealed answer as HTML")
	fs.BoolVar(&o.instant, "instant", false, "Skip word delays")
	fs.StringVar(&o.color, "color", "auto", "Color output (auto|always|never)")
	fs.Var(&o.configOverrides, "c", "Override config value key=value (repeatable)")
}

func askMain(root rootArgs, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := runAsk(ctx, root, args, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		fail("ask", err)
	}
}

func runAsk(ctx context.Context, root rootArgs, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var opts outputArgs
	var university string
	var prompt string
	opts.register(fs)
	fs.StringVar(&university, "university", "", "University to ask about (default from config)")
	fs.StringVar(&university, "u", "", "Alias for --university")
	fs.StringVar(&prompt, "prompt", "", "Custom prompt for this question only")
	if err := fs.Parse(args); err != nil {
		return err
	}
	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		return errors.New("no question given")
	}

	overrides := prependOverrides(root.overrides, []string(opts.configOverrides))
	cfg, err := resolveConfig(opts.cfgPath, overrides)
	if err != nil {
		return err
	}
	if u := strings.TrimSpace(university); u != "" {
		cfg.University = u
	}
	if p := strings.TrimSpace(prompt); p != "" {
		cfg.Prompt = p
	}
	rt := applyRuntimeKVOverrides(defaultRuntimeConfig(), overrides)
	client, err := newClient(cfg, rt)
	if err != nil {
		return err
	}

	answer, err := client.Ask(ctx, api.AskRequest{
		Query:          question,
		CustomPrompt:   cfg.CurrentPrompt(),
		APIKey:         cfg.APIKey,
		UniversityName: cfg.University,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		log.WithError(err).WithFields(logger.Fields{
			"status":     api.StatusOf(err),
			"university": cfg.University,
		}).Warn("ask failed, showing fallback answer")
	}
	return revealMarkdown(ctx, api.AnswerOrFallback(answer, err), out, cfg, rt, opts)
}

func renderMain(root rootArgs, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := runRender(ctx, root, args, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		fail("render", err)
	}
}

// runRender 逐词展示本地 Markdown 文件；参数为 - 或缺省时读取 stdin。
func runRender(ctx context.Context, root rootArgs, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var opts outputArgs
	opts.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	var src []byte
	var err error
	switch path := fs.Arg(0); path {
	case "", "-":
		src, err = io.ReadAll(in)
	default:
		src, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}

	overrides := prependOverrides(root.overrides, []string(opts.configOverrides))
	cfg, err := resolveConfig(opts.cfgPath, overrides)
	if err != nil {
		return err
	}
	rt := applyRuntimeKVOverrides(defaultRuntimeConfig(), overrides)
	return revealMarkdown(ctx, string(src), out, cfg, rt, opts)
}

// revealMarkdown 把 Markdown 转为标记树后逐词写出。
func revealMarkdown(ctx context.Context, md string, out io.Writer, cfg config.Config, rt runtimeConfig, opts outputArgs) error {
	tree, err := markup.FromMarkdown(md)
	if err != nil {
		log.WithError(err).Warn("convert markdown")
		tree = markup.Text(md)
	}
	pacing := cfg.Pacing()
	if opts.instant {
		pacing.ReducedMotion = true
	}

	if opts.html {
		// HTML 输出一次写出，不需要逐词等待。
		root := &html.Node{Type: html.ElementNode, Data: rt.HTMLRoot, DataAtom: atom.Lookup([]byte(rt.HTMLRoot))}
		mount := reveal.NewHTMLMount(root)
		if _, err := reveal.Reveal(ctx, tree, mount, reveal.WithPacing(pacing), reveal.WithReducedMotion(true)); err != nil {
			return err
		}
		if err := html.Render(out, mount.Node()); err != nil {
			return err
		}
		_, err := io.WriteString(out, "\n")
		return err
	}

	var streamOpts []render.StreamOption
	if applyColorProfile(opts.color) {
		streamOpts = append(streamOpts, render.WithStyles(render.ThemeFor(cfg.Dark())))
	}
	mount := render.NewStreamMount(out, streamOpts...)
	stats, revealErr := reveal.Reveal(ctx, tree, mount, reveal.WithPacing(pacing))
	closeErr := mount.Close()
	log.WithFields(logger.Fields{
		"elements": stats.Elements,
		"words":    stats.Words,
		"skipped":  stats.Skipped,
	}).Debug("answer written")
	if revealErr != nil {
		return revealErr
	}
	if closeErr != nil {
		return fmt.Errorf("write output: %w", closeErr)
	}
	return nil
}
