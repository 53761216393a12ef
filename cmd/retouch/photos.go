package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/example/retouch/internal/photo"
)

type photosCmd struct {
	*root
	fs   *flag.FlagSet
	op   string
	id   string
	name string
	args []string
}

func (p *photosCmd) Program() string { return p.root.subcommand("photos") }

func (p *photosCmd) FlagSet() *flag.FlagSet { return p.fs }

func parsePhotosCmd(args []string, r *root) (*photosCmd, error) {
	cmd := &photosCmd{root: r}
	if len(args) < 1 {
		cmd.fs = flag.NewFlagSet("photos", flag.ContinueOnError)
		return nil, &UsageError{of: cmd}
	}
	cmd.op = strings.ToLower(args[0])
	cmd.fs = flag.NewFlagSet("photos "+cmd.op, flag.ContinueOnError)
	cmd.fs.Usage = usageFunc(cmd)
	if cmd.op == "add" {
		cmd.fs.StringVar(&cmd.id, "id", "", "photo id (default: a new ULID)")
		cmd.fs.StringVar(&cmd.name, "name", "", "display name (default: derived from the locator)")
	}
	if err := cmd.fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, &UsageError{of: cmd}
		}
		return nil, err
	}
	cmd.args = cmd.fs.Args()
	switch cmd.op {
	case "list":
	case "add":
		if len(cmd.args) != 1 {
			return nil, &UsageError{of: cmd}
		}
	default:
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (p *photosCmd) Run() error {
	ctx := context.Background()
	store, closeStore, err := p.root.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if p.op == "add" {
		ph := photo.FromLocator(p.args[0])
		if p.id != "" {
			ph.ID = p.id
		}
		if p.name != "" {
			ph.DisplayName = p.name
		}
		if err := store.Add(ctx, ph); err != nil {
			return fmt.Errorf("add photo: %w", err)
		}
		fmt.Fprintln(p.root.stdout, ph.ID)
		return nil
	}

	photos, err := store.All(ctx)
	if err != nil {
		return fmt.Errorf("list photos: %w", err)
	}
	tw := tabwriter.NewWriter(p.root.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLOCATOR")
	for _, ph := range photos {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", ph.ID, ph.DisplayName, ph.Locator)
	}
	return tw.Flush()
}
