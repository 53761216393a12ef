package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/example/retouch/internal/imagesrc"
	"github.com/example/retouch/internal/layout"
)

type layoutCmd struct {
	*root
	fs        *flag.FlagSet
	boxWidth  float64
	boxHeight float64
	locator   string
}

func (l *layoutCmd) Program() string { return l.root.subcommand("layout") }

func (l *layoutCmd) FlagSet() *flag.FlagSet { return l.fs }

func parseLayoutCmd(args []string, r *root) (*layoutCmd, error) {
	fs := flag.NewFlagSet("layout", flag.ContinueOnError)
	cmd := &layoutCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	fs.Float64Var(&cmd.boxWidth, "box-width", r.config.Editor.BoxWidth, "maximum display width")
	fs.Float64Var(&cmd.boxHeight, "box-height", r.config.Editor.BoxHeight, "maximum display height")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, &UsageError{of: cmd}
		}
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: cmd}
	}
	cmd.locator = fs.Arg(0)
	return cmd, nil
}

func (l *layoutCmd) Run() error {
	d, err := layout.Probe(context.Background(), imagesrc.Default, l.locator, l.boxWidth, l.boxHeight)
	if err != nil {
		return err
	}
	fmt.Fprintf(l.root.stdout, "%gx%g\n", d.Width, d.Height)
	return nil
}
