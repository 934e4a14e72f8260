// Command vecgen writes seeded std::vector<float> fixture files (tree tvec
// with branches vpx, vpy, vpz and vrand) and checks them back.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"pkg.jsn.cam/vecgen/internal/app"
	"pkg.jsn.cam/vecgen/internal/catalog"
	"pkg.jsn.cam/vecgen/internal/config"
)

// globals holds the flags shared by every command.
type globals struct {
	catalog   string
	logLevel  string
	logFormat string
}

// open builds the logger and catalog for one command invocation.
func (g *globals) open() (*app.App, func(), error) {
	logger, err := config.NewLogger(os.Stderr, g.logFormat, g.logLevel)
	if err != nil {
		return nil, nil, err
	}

	var store catalog.Store
	if g.catalog == "" {
		store = catalog.NewMemoryStore()
	} else {
		store, err = catalog.NewBboltStore(g.catalog, log.With(logger, "component", "catalog"))
		if err != nil {
			return nil, nil, err
		}
	}

	closeFn := func() {
		if err := store.Close(); err != nil {
			level.Warn(logger).Log("msg", "failed to close catalog", "err", err)
		}
	}
	return app.New(store, logger), closeFn, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	a := kingpin.New("vecgen", "Generate seeded std::vector<float> fixtures for reader tests.")
	a.Version(catalog.Version)
	a.HelpFlag.Short('h')

	g := &globals{}
	a.Flag("catalog", "Path of the run catalog (bbolt). Empty keeps it in memory.").Default(cfg.Catalog).StringVar(&g.catalog)
	a.Flag("log.level", "Log level: debug, info, warn, error.").Default(cfg.LogLevel).EnumVar(&g.logLevel, "debug", "info", "warn", "error")
	a.Flag("log.format", "Log format: logfmt or json.").Default(cfg.LogFormat).EnumVar(&g.logFormat, "logfmt", "json")

	addGenerateCommand(a, g, cfg)
	addVerifyCommand(a, g)
	addInspectCommand(a, g)
	addListCommand(a, g)
	addGeneratorsCommand(a)

	if _, err := a.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "vecgen: error: %v\n", err)
		os.Exit(1)
	}
}
