package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/example/retouch/internal/appstate"
	"github.com/example/retouch/internal/editor"
	"github.com/example/retouch/internal/nav"
)

type uiCmd struct {
	*root
	fs      *flag.FlagSet
	session sessionFlags
}

func (u *uiCmd) Program() string { return u.root.subcommand("ui") }

func (u *uiCmd) FlagSet() *flag.FlagSet { return u.fs }

func parseUICmd(args []string, r *root) (*uiCmd, error) {
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	cmd := &uiCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	cmd.session.register(fs, r)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, &UsageError{of: cmd}
		}
		return nil, err
	}
	if cmd.session.id == "" {
		if fs.NArg() != 1 {
			return nil, &UsageError{of: cmd}
		}
		cmd.session.id = fs.Arg(0)
	}
	return cmd, nil
}

func (u *uiCmd) Run() error {
	setup, err := u.session.openSession(context.Background(), u.root)
	if err != nil {
		return err
	}
	defer setup.close()

	var saved []editor.SaveResult
	app := appstate.New(setup.session,
		appstate.WithTheme(u.root.activeTheme),
		appstate.WithCopyListener(u.root.notifier.Copied),
		appstate.WithSaveListener(func(r editor.SaveResult) { saved = append(saved, r) }),
	)
	setup.stack.OnChange(func(routes []string) {
		if routes[len(routes)-1] != nav.PhotoEditor {
			app.Leave()
		}
	})
	app.Run()

	p := setup.session.Photo()
	if len(saved) > 0 || setup.stack.Current() != nav.PhotoEditor {
		fmt.Fprintf(u.root.stdout, "%s\t%s\n", p.ID, p.Locator)
	}
	return nil
}
