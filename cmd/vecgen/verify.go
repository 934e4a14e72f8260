package main

import (
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"pkg.jsn.cam/vecgen/internal/app"
	"pkg.jsn.cam/vecgen/internal/sink"
)

// verifyCommand reads a fixture back and checks its properties.
type verifyCommand struct {
	g *globals

	path    string
	runID   string
	format  string
	entries int64
}

func (cmd *verifyCommand) run(c *kingpin.ParseContext) error {
	a, closeFn, err := cmd.g.open()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := signalContext()
	defer cancel()

	report, err := a.Verify(ctx, app.VerifyRequest{
		Path:    cmd.path,
		Format:  sink.Format(cmd.format),
		Entries: cmd.entries,
		RunID:   cmd.runID,
	})
	if report != nil {
		fmt.Printf("Entries: %d, values: %d\n", report.Entries, report.Values)
		for _, v := range report.Violations {
			fmt.Printf("  FAIL %s\n", v)
		}
		if report.OK() {
			fmt.Println("OK")
		}
	}
	return err
}

func addVerifyCommand(a *kingpin.Application, g *globals) {
	cmd := &verifyCommand{g: g}
	c := a.Command("verify", "Check a fixture file: entry count, matching lengths, value identities.").Action(cmd.run)

	c.Arg("file", "Fixture file. Optional with --run.").StringVar(&cmd.path)
	c.Flag("run", "Catalog run ID; also compares against a regeneration from the recorded seed.").StringVar(&cmd.runID)
	c.Flag("format", "File format. Inferred from the extension when empty.").StringVar(&cmd.format)
	c.Flag("entries", "Expected number of entries. -1 skips the check unless --run is given.").Default("-1").Int64Var(&cmd.entries)
}
