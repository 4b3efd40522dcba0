package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

func completionMain(args []string) {
	shell := "bash"
	if len(args) > 0 && args[0] != "" {
		shell = args[0]
	}
	if err := writeCompletion(os.Stdout, shell); err != nil {
		fail("completion", err)
	}
}

func writeCompletion(out io.Writer, shell string) error {
	switch shell {
	case "bash":
		_, err := fmt.Fprint(out, bashCompletion)
		return err
	case "zsh":
		_, err := fmt.Fprint(out, zshCompletion)
		return err
	default:
		return errors.New("unsupported shell: " + shell + " (use bash or zsh)")
	}
}

const bashCompletion = `
_career_chat_completions()
{
    local cur prev
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "ask render universities resume login logout completion --c --theme --url --reduced-motion" -- "$cur") )
        return 0
    fi

    case "${COMP_WORDS[1]}" in
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        universities)
            COMPREPLY=( $(compgen -W "list upload delete select --config --cache --no-select --c" -- "$cur") )
            ;;
        ask)
            COMPREPLY=( $(compgen -W "--config --university --u --prompt --html --instant --color --c" -- "$cur") )
            ;;
        render)
            COMPREPLY=( $(compgen -W "--config --html --instant --color --c" -- "$cur") )
            ;;
        resume)
            COMPREPLY=( $(compgen -W "--last --list --session --config --university --c" -- "$cur") )
            ;;
        *)
            COMPREPLY=( $(compgen -W "--config --prompt --university --u --c --copyable-output" -- "$cur") )
            ;;
    esac
}
complete -F _career_chat_completions career-chat
`

const zshCompletion = `
#compdef career-chat
_career_chat() {
    local -a subcmds
    subcmds=('ask:ask one question and print the answer' 'render:reveal a local Markdown file' 'universities:list, upload, delete or select universities' 'resume:resume a saved conversation' 'login:save the API key' 'logout:remove the API key' 'completion:print shell completions')
    if (( CURRENT == 2 )); then
        _describe 'command' subcmds
        return
    fi
    case "$words[2]" in
        completion)
            _values 'shell' bash zsh
            ;;
        universities)
            _values 'action' list upload delete select
            ;;
        ask|render)
            _arguments \
                '--config[Path to config file]' \
                '--university[University to ask about]' \
                '--prompt[Custom prompt for this question]' \
                '--html[Write HTML output]' \
                '--instant[Skip word delays]' \
                '--color[Color output]' \
                '--c[Config key=value override]'
            ;;
        resume)
            _arguments \
                '--last[Resume most recent conversation]' \
                '--list[List saved conversations]' \
                '--session[Session id to resume]'
            ;;
        *)
            _arguments \
                '--config[Path to config file]' \
                '--prompt[Initial question]' \
                '--university[University to ask about]' \
                '--c[Config key=value override]' \
                '--copyable-output[Disable alt screen]'
            ;;
    esac
}
_career_chat "$@"
`
