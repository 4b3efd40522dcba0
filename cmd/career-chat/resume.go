package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"career-chat/internal/session"
)

func resumeMain(root rootArgs, args []string) {
	fs, cli := newInteractiveFlagSet("resume")
	var sessionID string
	var resumeLast bool
	var list bool
	fs.StringVar(&sessionID, "session", "", "Session id to resume")
	fs.BoolVar(&resumeLast, "last", false, "Resume most recent session")
	fs.BoolVar(&list, "list", false, "List saved sessions and exit")
	if err := fs.Parse(args); err != nil {
		fail("parse resume args", err)
	}

	extra := fs.Args()
	if sessionID == "" && len(extra) > 0 {
		sessionID = extra[0]
		extra = extra[1:]
	}
	if cli.prompt == "" && len(extra) > 0 {
		cli.prompt = strings.Join(extra, " ")
	}
	cli.configOverrides = stringSlice(prependOverrides(root.overrides, []string(cli.configOverrides)))

	store, err := session.NewDefault()
	if err != nil {
		fail("open session store", err)
	}
	if list || (sessionID == "" && !resumeLast) {
		if err := listSessions(store, os.Stdout); err != nil {
			fail("list sessions", err)
		}
		return
	}

	var rec session.Record
	if resumeLast {
		rec, err = store.Last()
	} else {
		rec, err = store.Load(sessionID)
	}
	if err != nil {
		fail("load session", err)
	}
	if cli.university == "" {
		cli.university = rec.University
	}
	startInteractiveSession(cli, &rec)
}

// listSessions 按更新时间倒序打印会话，供 resume <id> 使用。
func listSessions(store *session.Store, out io.Writer) error {
	records, err := store.List()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "No saved conversations.")
		return nil
	}
	for _, rec := range records {
		uni := rec.University
		if uni == "" {
			uni = "-"
		}
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", rec.ID, rec.Updated.Local().Format("2006-01-02 15:04"), uni, rec.Title())
	}
	fmt.Fprintln(out, "Run career-chat resume <id> or career-chat resume --last.")
	return nil
}
