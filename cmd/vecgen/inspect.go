package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"pkg.jsn.cam/vecgen/internal/catalog"
	"pkg.jsn.cam/vecgen/pkg/fixture"
)

// inspectCommand prints the tree layout of fixture files.
type inspectCommand struct {
	g     *globals
	files *[]string
}

func (cmd *inspectCommand) run(c *kingpin.ParseContext) error {
	a, closeFn, err := cmd.g.open()
	if err != nil {
		return err
	}
	defer closeFn()

	bold := color.New(color.Bold)
	var errs []error
	for _, f := range *cmd.files {
		in, err := a.Inspect(f)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f, err))
			continue
		}

		bold.Printf("%s\n", in.Path)
		fmt.Printf("\tformat: %s, size: %v, checksum: %s\n", in.Format, humanize.Bytes(uint64(in.Bytes)), catalog.FormatChecksum(in.Checksum))
		fmt.Printf("\ttree: %s %q, entries: %d, values: %d\n", in.Tree.Name, in.Tree.Title, in.Tree.Entries, in.Values)
		bold.Println("\tBranches:")
		for _, b := range in.Tree.Branches {
			fmt.Printf("\t\t%-8s %-24s %s\n", b.Name, b.Type, b.Class)
		}
	}
	return errors.Join(errs...)
}

func addInspectCommand(a *kingpin.Application, g *globals) {
	cmd := &inspectCommand{g: g}
	c := a.Command("inspect", "Print the tree layout and size of fixture files.").Action(cmd.run)
	cmd.files = c.Arg("file", "The files to inspect.").Required().ExistingFiles()
}

// listCommand prints the catalog.
type listCommand struct {
	g *globals
}

func (cmd *listCommand) run(c *kingpin.ParseContext) error {
	a, closeFn, err := cmd.g.open()
	if err != nil {
		return err
	}
	defer closeFn()

	runs, err := a.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded")
		return nil
	}

	fmt.Printf("%-36s %-10s %-8s %-10s %8s %9s  %s\n", "RUN ID", "GENERATOR", "FORMAT", "SEED", "ENTRIES", "SIZE", "CREATED")
	fmt.Println("──────────────────────────────────────────────────────────────────────────────────────────────────")
	for _, run := range runs {
		fmt.Printf("%-36s %-10s %-8s %-10d %8d %9s  %s\n",
			run.ID,
			run.Generator,
			run.Format,
			run.Seed,
			run.Entries,
			humanize.Bytes(uint64(run.Bytes)),
			humanize.Time(run.CreatedAt))
	}
	return nil
}

func addListCommand(a *kingpin.Application, g *globals) {
	cmd := &listCommand{g: g}
	a.Command("list", "List generated fixtures recorded in the catalog, newest first.").Action(cmd.run)
}

func addGeneratorsCommand(a *kingpin.Application) {
	a.Command("generators", "List available generators.").Action(func(c *kingpin.ParseContext) error {
		for _, name := range fixture.List() {
			gen, err := fixture.Get(name)
			if err != nil {
				return err
			}
			seed := "fresh"
			if s := gen.DefaultSeed(); s != 0 {
				seed = strconv.FormatUint(uint64(s), 10)
			}
			fmt.Printf("%-10s entries=%-6d seed=%-8s %s\n", name, gen.DefaultCount(), seed, gen.Description())
		}
		return nil
	})
}
