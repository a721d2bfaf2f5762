// glyphcore is a deterministic glyph generator driven from the terminal.
// Usage: glyphcore [flags] [content_directory]
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/nathoo/glyphcore/cli"
	"github.com/nathoo/glyphcore/config"
	"github.com/nathoo/glyphcore/engine"
	"github.com/nathoo/glyphcore/engine/catalog"
	"github.com/nathoo/glyphcore/engine/state"
	"github.com/nathoo/glyphcore/loader"
	"github.com/nathoo/glyphcore/session"
	"github.com/nathoo/glyphcore/storage/sqlite"
	"github.com/nathoo/glyphcore/tui"
	"github.com/nathoo/glyphcore/types"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	if cfg.ShowVersion {
		fmt.Printf("glyphcore %s (commit %s, built %s)\n", version, commit, date)
		return nil
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defs, err := loadDefs(cfg, logger)
	if err != nil {
		return err
	}

	var store *sqlite.Store
	if cfg.DBPath != "" {
		store, err = sqlite.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	var engOpts []engine.Option
	engOpts = append(engOpts, engine.WithLogger(logger))
	if cfg.Seed != 0 {
		engOpts = append(engOpts, engine.WithSeed(cfg.Seed))
	}
	if cfg.PreviewSeed != 0 {
		engOpts = append(engOpts, engine.WithPreviewSeed(cfg.PreviewSeed))
	}
	if store != nil {
		engOpts = append(engOpts, engine.WithMirror(store.Slots(ctx)))
	}
	eng := engine.New(defs, engOpts...)

	if store != nil {
		if err := resume(ctx, eng, store, cfg, logger); err != nil {
			return err
		}
	}

	sess := session.New(eng, defs,
		session.WithSaveDir(cfg.SaveDir),
		session.WithFormat(cfg.SaveFormat),
		session.WithStore(store),
		session.WithTrace(cfg.Trace),
		session.WithLogger(logger),
	)
	defer func() {
		if err := sess.Close(context.Background()); err != nil {
			logger.Error("autosave failed", "error", err)
		}
	}()

	// Script mode: open file, force plain, echo commands.
	if cfg.Script != "" {
		f, err := os.Open(cfg.Script)
		if err != nil {
			return fmt.Errorf("open script: %w", err)
		}
		defer f.Close()
		printBanner(defs)
		c := cli.New(sess)
		c.In = f
		c.EchoInput = true
		c.Run(ctx)
		return nil
	}

	// Use plain CLI if --plain or stdout is not a terminal.
	if cfg.Plain || !isTerminal() {
		printBanner(defs)
		cli.New(sess).Run(ctx)
		return nil
	}

	return tui.Run(ctx, sess)
}

// loadDefs compiles the Lua content directory, or falls back to the
// built-in standard catalog.
func loadDefs(cfg *config.Config, logger *slog.Logger) (*state.Defs, error) {
	if cfg.ContentDir == "" {
		return &state.Defs{
			Content: types.ContentDef{Title: "Glyphcore", Author: "glyphcore", Version: catalog.Standard().Version()},
			Catalog: catalog.Standard(),
			Balance: state.DefaultBalance(),
		}, nil
	}
	defs, err := loader.Load(cfg.ContentDir, loader.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}
	return defs, nil
}

// resume restores the state persisted in the store, if any. Without an
// explicit seed the stored streams carry on.
func resume(ctx context.Context, eng *engine.Engine, store *sqlite.Store, cfg *config.Config, logger *slog.Logger) error {
	s, err := store.LoadState(ctx)
	if errors.Is(err, sqlite.ErrNotFound) {
		logger.Info("no stored state, starting fresh", "db", cfg.DBPath)
		return store.SaveState(ctx, eng.State)
	}
	if err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	if cfg.Seed != 0 {
		s.Primary, s.Secondary = eng.State.Primary, eng.State.Secondary
	}
	eng.Restore(s)
	logger.Info("resumed stored state", "db", cfg.DBPath, "turn", s.TurnCount)
	return store.SaveState(ctx, eng.State)
}

func printBanner(defs *state.Defs) {
	fmt.Printf("%s v%s by %s\n\n", defs.Content.Title, defs.Content.Version, defs.Content.Author)
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
