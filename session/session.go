// Package session holds the front-end logic shared by the CLI and the TUI:
// meta-commands, save files in JSON or CBOR, the optional SQLite mirror,
// and trace formatting.
package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nathoo/glyphcore/config"
	"github.com/nathoo/glyphcore/engine"
	"github.com/nathoo/glyphcore/engine/save"
	"github.com/nathoo/glyphcore/engine/state"
	"github.com/nathoo/glyphcore/storage/sqlite"
	"github.com/nathoo/glyphcore/types"
)

// DefaultSaveName is used when /save or /load is given no name.
const DefaultSaveName = "quicksave"

// Session wires an engine to save storage.
type Session struct {
	Engine  *engine.Engine
	Defs    *state.Defs
	SaveDir string
	Format  string
	Store   *sqlite.Store // optional
	Trace   bool

	logger  *slog.Logger
	lastCmd string
}

// Option configures a Session.
type Option func(*Session)

// WithSaveDir sets the save file directory.
func WithSaveDir(dir string) Option {
	return func(s *Session) { s.SaveDir = dir }
}

// WithFormat sets the save file format (config.FormatJSON or config.FormatCBOR).
func WithFormat(format string) Option {
	return func(s *Session) { s.Format = format }
}

// WithStore mirrors saves and loads into a SQLite store.
func WithStore(store *sqlite.Store) Option {
	return func(s *Session) { s.Store = store }
}

// WithTrace enables trace output from the start.
func WithTrace(on bool) Option {
	return func(s *Session) { s.Trace = on }
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a session with the default save directory and JSON saves.
func New(eng *engine.Engine, defs *state.Defs, opts ...Option) *Session {
	def := config.Default()
	s := &Session{
		Engine:  eng,
		Defs:    defs,
		SaveDir: def.SaveDir,
		Format:  def.SaveFormat,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reply is the response to one submitted line.
type Reply struct {
	Lines  []string
	System bool // meta-command output
	Quit   bool
	Result types.Result
}

// Submit handles one line of input: a meta-command, "again", or a
// command for the engine.
func (s *Session) Submit(ctx context.Context, input string) Reply {
	input = strings.TrimSpace(input)
	if input == "" {
		return Reply{}
	}
	if strings.HasPrefix(input, "/") {
		lines, quit := s.Meta(ctx, input)
		return Reply{Lines: lines, System: true, Quit: quit}
	}

	lower := strings.ToLower(input)
	if lower == "again" || lower == "g" {
		if s.lastCmd == "" {
			return Reply{Lines: []string{"Nothing to repeat."}, System: true}
		}
		input = s.lastCmd
	} else {
		s.lastCmd = input
	}

	result := s.Engine.Step(input)
	lines := append([]string(nil), result.Output...)
	if s.Trace {
		lines = append(lines, TraceLines(result)...)
	}
	return Reply{Lines: lines, Result: result}
}

// Meta dispatches a meta-command. quit reports /quit.
func (s *Session) Meta(ctx context.Context, input string) (lines []string, quit bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/save":
		msg, err := s.Save(ctx, arg)
		if err != nil {
			s.logger.Warn("save failed", "name", arg, "error", err)
			return []string{fmt.Sprintf("Save failed: %v", err)}, false
		}
		return []string{msg}, false

	case "/load":
		msg, err := s.Load(ctx, arg)
		if err != nil {
			s.logger.Warn("load failed", "name", arg, "error", err)
			return []string{fmt.Sprintf("Load failed: %v", err)}, false
		}
		return []string{msg}, false

	case "/saves":
		names, err := s.Saves(ctx)
		if err != nil {
			return []string{fmt.Sprintf("Listing saves failed: %v", err)}, false
		}
		if len(names) == 0 {
			return []string{"No saves."}, false
		}
		return append([]string{"Saves:"}, names...), false

	case "/help":
		return HelpLines(), false

	case "/state":
		return s.StateLines(), false

	case "/trace":
		s.Trace = !s.Trace
		if s.Trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func saveName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultSaveName, nil
	}
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid save name %q", name)
	}
	return name, nil
}

func (s *Session) ext() string {
	if s.Format == config.FormatCBOR {
		return ".cbor"
	}
	return ".json"
}

// Save writes the state to a save file and, when a store is configured,
// to a named snapshot plus the live state tables.
func (s *Session) Save(ctx context.Context, name string) (string, error) {
	name, err := saveName(name)
	if err != nil {
		return "", err
	}

	var data []byte
	if s.Format == config.FormatCBOR {
		data, err = save.SaveCBOR(s.Engine.State, s.Defs)
	} else {
		data, err = save.Save(s.Engine.State, s.Defs)
	}
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.SaveDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.SaveDir, name+s.ext())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}

	if s.Store != nil {
		blob, sum, err := save.Encode(s.Engine.State, s.Defs)
		if err != nil {
			return "", err
		}
		if err := s.Store.PutSnapshot(ctx, name, blob, sum); err != nil {
			return "", err
		}
		if err := s.Store.SaveState(ctx, s.Engine.State); err != nil {
			return "", err
		}
	}

	s.logger.Info("game saved", "name", name, "path", path, "turn", s.Engine.State.TurnCount)
	return fmt.Sprintf("Game saved to %s.", name), nil
}

// Load restores a save by name. Files in either format are tried first,
// then the store's snapshots.
func (s *Session) Load(ctx context.Context, name string) (string, error) {
	name, err := saveName(name)
	if err != nil {
		return "", err
	}

	sd, err := s.readSave(ctx, name)
	if err != nil {
		return "", err
	}

	save.ApplySave(s.Engine.State, sd)
	if s.Store != nil {
		if err := s.Store.SaveState(ctx, s.Engine.State); err != nil {
			return "", err
		}
	}
	s.logger.Info("game loaded", "name", name, "turn", sd.Turn)

	msg := fmt.Sprintf("Game loaded from %s (turn %d).", name, sd.Turn)
	if sd.Catalog != "" && s.Defs.Catalog != nil && sd.Catalog != s.Defs.Catalog.Version() {
		msg += fmt.Sprintf(" Saved with catalog %s, running %s.", sd.Catalog, s.Defs.Catalog.Version())
	}
	return msg, nil
}

func (s *Session) readSave(ctx context.Context, name string) (*save.SaveData, error) {
	for _, ext := range []string{".json", ".cbor"} {
		data, err := os.ReadFile(filepath.Join(s.SaveDir, name+ext))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if ext == ".cbor" {
			return save.LoadCBOR(data)
		}
		return save.Load(data)
	}

	if s.Store != nil {
		snap, err := s.Store.GetSnapshot(ctx, name)
		if err == nil {
			return save.Decode(snap.Data, snap.Checksum)
		}
		if !errors.Is(err, sqlite.ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("no save named %q", name)
}

// Saves lists save files and stored snapshots.
func (s *Session) Saves(ctx context.Context) ([]string, error) {
	var names []string
	entries, err := os.ReadDir(s.SaveDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".json", ".cbor":
			names = append(names, "  "+e.Name())
		}
	}
	sort.Strings(names)

	if s.Store != nil {
		snaps, err := s.Store.ListSnapshots(ctx)
		if err != nil {
			return nil, err
		}
		for _, n := range snaps {
			names = append(names, "  "+n+" (db)")
		}
	}
	return names, nil
}

// Close writes the live state to the store, if any.
func (s *Session) Close(ctx context.Context) error {
	if s.Store == nil {
		return nil
	}
	if err := s.Store.SaveState(ctx, s.Engine.State); err != nil {
		return fmt.Errorf("autosave: %w", err)
	}
	return nil
}

// StateLines dumps the save state for /state.
func (s *Session) StateLines() []string {
	st := s.Engine.State
	out := []string{
		fmt.Sprintf("Turn: %d", st.TurnCount),
		fmt.Sprintf("Level: %d (raw %d), best glyph level %d", st.Level.Actual, st.Level.Raw, st.BestGlyphLevel),
		fmt.Sprintf("Primary: seed %#08x, gaussian %v", st.Primary.Seed, st.Primary.SecondGaussian),
		fmt.Sprintf("Secondary: seed %#08x, gaussian %v", st.Secondary.Seed, st.Secondary.SecondGaussian),
		fmt.Sprintf("Glyphs: %d active, %d inventory, %d pending", len(st.Active), len(st.Inventory), len(st.Pending)),
	}
	if len(st.Flags) > 0 {
		out = append(out, fmt.Sprintf("Flags: %v", st.Flags))
	}
	if len(st.Counters) > 0 {
		out = append(out, fmt.Sprintf("Counters: %v", st.Counters))
	}
	if len(st.Values) > 0 {
		out = append(out, fmt.Sprintf("Values: %v", st.Values))
	}
	return out
}

// HelpLines is the /help text.
func HelpLines() []string {
	return []string{
		"System:",
		"  /save [name]  Save (default: quicksave)",
		"  /load [name]  Load (default: quicksave)",
		"  /saves        List saves",
		"  /quit         Exit",
		"  /help         Show this help",
		"  /state        Debug: dump current state",
		"  /trace        Toggle debug trace output",
		"",
		"Glyphs:",
		"  draw [n] (roll)        Draw n glyphs at your level, keep one",
		"  preview [n] (peek)     Draw without committing anything",
		"  milestone [level]      Milestone glyph",
		"  starter <type>         Starter glyph of a type",
		"  tribute <amount>       Tribute glyph",
		"  cursed                 Cursed glyph",
		"  cosmetic (music)       Cosmetic glyph",
		"  keep [n] (take)        Keep a pending glyph",
		"  equip <id>             Move a glyph into an active slot",
		"  unequip <id>           Move it back to the inventory",
		"  delete <id> (rm)       Destroy a glyph",
		"  list (l, i)            Show active and inventory glyphs",
		"  show <id> (x)          Effects and fingerprint",
		"  types                  Available and locked types",
		"",
		"State:",
		"  unlock/lock <flag>     Set or clear a flag",
		"  set <value> <number>   Set a rarity source",
		"  level <n> [raw]        Set the draw level",
		"  best <n>               Set the best glyph level",
		"  seed [n]               Show or reseed the streams",
		"  again (g)              Repeat your last command",
	}
}

// TraceLines formats a result's effects and events.
func TraceLines(result types.Result) []string {
	var lines []string
	if len(result.Effects) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Effects: %d", len(result.Effects)))
		for _, e := range result.Effects {
			lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Params))
		}
	}
	if len(result.Events) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Events: %d", len(result.Events)))
		for _, e := range result.Events {
			lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
		}
	}
	return lines
}
