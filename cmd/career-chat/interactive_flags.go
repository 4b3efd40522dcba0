package main

import (
	"flag"
	"strings"
)

// interactiveArgs 是交互入口（career-chat、resume）共用的参数。
type interactiveArgs struct {
	cfgPath         string
	prompt          string
	university      string
	configOverrides stringSlice
	copyableOutput  bool
}

func newInteractiveFlagSet(name string) (*flag.FlagSet, *interactiveArgs) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	args := &interactiveArgs{}

	fs.StringVar(&args.cfgPath, "config", "", "Path to config file (default ~/.career-chat/config.toml)")
	fs.StringVar(&args.prompt, "prompt", "", "Initial question")
	fs.StringVar(&args.university, "university", "", "University to ask about")
	fs.StringVar(&args.university, "u", "", "Alias for --university")
	fs.Var(&args.configOverrides, "c", "Override config value key=value (repeatable)")
	fs.BoolVar(&args.copyableOutput, "copyable-output", false, "Disable alt screen to allow mouse selection/copy")

	return fs, args
}

func (i *interactiveArgs) finalizePrompt(fs *flag.FlagSet) {
	if i.prompt == "" && fs.NArg() > 0 {
		i.prompt = strings.Join(fs.Args(), " ")
	}
}
