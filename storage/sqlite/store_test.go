package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/nathoo/glyphcore/engine"
	"github.com/nathoo/glyphcore/engine/catalog"
	"github.com/nathoo/glyphcore/engine/random"
	"github.com/nathoo/glyphcore/engine/save"
	"github.com/nathoo/glyphcore/engine/state"
	"github.com/nathoo/glyphcore/types"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "glyphs.sqlite")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func testDefs() *state.Defs {
	return &state.Defs{
		Content: types.ContentDef{Title: "Store Test", Version: "1.0"},
		Catalog: catalog.Standard(),
		Balance: state.DefaultBalance(),
	}
}

func sampleState() *types.State {
	return &types.State{
		Flags:          map[string]bool{"effarig_unlocked": true, "seen": false},
		Counters:       map[string]int{"glyphs_kept": 4},
		Values:         map[string]float64{"rarity_bonus": 2.5},
		Level:          types.LevelInfo{Actual: 3200, Raw: 3345},
		BestGlyphLevel: 6666,
		Primary:        types.RandomState{Seed: 0xfedcba98, SecondGaussian: random.NoGaussian},
		Secondary:      types.RandomState{Seed: 0x01020304, SecondGaussian: -0.25},
		Active: []types.Glyph{
			{ID: 1, Type: "power", Strength: 1.5, Level: 3200, RawLevel: 3345, Effects: 0b101},
		},
		Inventory: []types.Glyph{
			{ID: 2, Type: "cursed", Strength: 3.5, Level: 6666, RawLevel: 6666, Effects: 1 << 63},
			{ID: 3, Type: "time", Strength: 2, Level: 800, RawLevel: 1000, Effects: 1 << 7, Cosmetic: "music"},
		},
		Pending: []types.Glyph{
			{Type: "reality", Strength: 1.1, Level: 3200, RawLevel: 3345, Effects: 1 << 40},
		},
		TurnCount: 12,
	}
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenReappliesMigrationsIdempotently(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "glyphs.sqlite")
	for i := 0; i < 2; i++ {
		store, err := Open(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("close #%d: %v", i+1, err)
		}
	}
}

func TestCloseNilStore(t *testing.T) {
	t.Parallel()

	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
	if _, err := store.LoadState(context.Background()); err == nil {
		t.Fatal("expected unconfigured storage error")
	}
}

func TestStreamRoundTripAndOverwrite(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	if _, err := store.ReadStream(ctx, types.StreamPrimary); !errors.Is(err, ErrNotFound) {
		t.Fatalf("read before write = %v, want %v", err, ErrNotFound)
	}

	first := types.RandomState{Seed: 0xffffffff, SecondGaussian: random.NoGaussian}
	if err := store.WriteStream(ctx, types.StreamPrimary, first); err != nil {
		t.Fatalf("write stream: %v", err)
	}
	got, err := store.ReadStream(ctx, types.StreamPrimary)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	if got != first {
		t.Fatalf("stream = %+v, want %+v", got, first)
	}

	second := types.RandomState{Seed: 7, SecondGaussian: 0.125}
	if err := store.WriteStream(ctx, types.StreamPrimary, second); err != nil {
		t.Fatalf("overwrite stream: %v", err)
	}
	got, err = store.ReadStream(ctx, types.StreamPrimary)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	if got != second {
		t.Fatalf("stream = %+v, want %+v", got, second)
	}

	if _, err := store.ReadStream(ctx, types.StreamSecondary); !errors.Is(err, ErrNotFound) {
		t.Fatalf("secondary must stay independent, got %v", err)
	}
}

func TestWriteStreamRejectsPreview(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	err := store.WriteStream(context.Background(), types.StreamPreview, types.RandomState{Seed: 1})
	if !errors.Is(err, random.ErrUnknownStream) {
		t.Fatalf("write preview = %v, want %v", err, random.ErrUnknownStream)
	}
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.WriteStream(ctx, types.StreamPrimary, types.RandomState{Seed: 1}); !errors.Is(err, context.Canceled) {
		t.Fatalf("write = %v, want %v", err, context.Canceled)
	}
	if err := store.SaveState(ctx, sampleState()); !errors.Is(err, context.Canceled) {
		t.Fatalf("save = %v, want %v", err, context.Canceled)
	}
}

func TestSaveLoadStateRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	if _, err := store.LoadState(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("load before save = %v, want %v", err, ErrNotFound)
	}

	want := sampleState()
	if err := store.SaveState(ctx, want); err != nil {
		t.Fatalf("save state: %v", err)
	}
	got, err := store.LoadState(ctx)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}

	if got.Level != want.Level || got.BestGlyphLevel != want.BestGlyphLevel || got.TurnCount != want.TurnCount {
		t.Fatalf("progress = %+v/%d/%d", got.Level, got.BestGlyphLevel, got.TurnCount)
	}
	if got.Primary != want.Primary || got.Secondary != want.Secondary {
		t.Fatalf("streams = %+v %+v", got.Primary, got.Secondary)
	}
	assertGlyphs(t, "active", got.Active, want.Active)
	assertGlyphs(t, "inventory", got.Inventory, want.Inventory)
	assertGlyphs(t, "pending", got.Pending, want.Pending)

	if len(got.Flags) != 2 || !got.Flags["effarig_unlocked"] || got.Flags["seen"] {
		t.Fatalf("flags = %v", got.Flags)
	}
	if got.Counters["glyphs_kept"] != 4 {
		t.Fatalf("counters = %v", got.Counters)
	}
	if got.Values["rarity_bonus"] != 2.5 {
		t.Fatalf("values = %v", got.Values)
	}
}

func TestSaveStateReplacesPreviousRows(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	if err := store.SaveState(ctx, sampleState()); err != nil {
		t.Fatalf("save state: %v", err)
	}
	smaller := sampleState()
	smaller.Inventory = nil
	smaller.Pending = nil
	smaller.Flags = map[string]bool{}
	smaller.TurnCount = 13
	if err := store.SaveState(ctx, smaller); err != nil {
		t.Fatalf("save smaller state: %v", err)
	}

	got, err := store.LoadState(ctx)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if len(got.Inventory) != 0 || len(got.Pending) != 0 || len(got.Flags) != 0 {
		t.Fatalf("stale rows survived: inventory=%d pending=%d flags=%d",
			len(got.Inventory), len(got.Pending), len(got.Flags))
	}
	if got.TurnCount != 13 {
		t.Fatalf("turn count = %d, want 13", got.TurnCount)
	}
}

func assertGlyphs(t *testing.T, name string, got, want []types.Glyph) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("%s: %d glyphs, want %d", name, len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%s[%d] = %+v, want %+v", name, i, got[i], want[i])
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	defs := testDefs()

	if _, err := store.GetSnapshot(ctx, "slot1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing snapshot = %v, want %v", err, ErrNotFound)
	}

	data, sum, err := save.Encode(sampleState(), defs)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := store.PutSnapshot(ctx, "slot1", data, sum); err != nil {
		t.Fatalf("put snapshot: %v", err)
	}

	snap, err := store.GetSnapshot(ctx, "slot1")
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if snap.Checksum != sum || snap.SavedAt.IsZero() {
		t.Fatalf("snapshot = %+v", snap)
	}
	sd, err := save.Decode(snap.Data, snap.Checksum)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sd.BestGlyphLevel != 6666 || len(sd.Inventory) != 2 {
		t.Fatalf("decoded = %+v", sd)
	}

	names, err := store.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(names) != 1 || names[0] != "slot1" {
		t.Fatalf("names = %v", names)
	}
}

func TestPutSnapshotRequiresName(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if err := store.PutSnapshot(context.Background(), "  ", []byte{1}, "x"); err == nil {
		t.Fatal("expected name error")
	}
}

func TestEngineMirrorsStreamCommits(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	e := engine.New(testDefs(),
		engine.WithSeed(0x12345678),
		engine.WithPreviewSeed(0xabcdef),
		engine.WithMirror(store.Slots(ctx)),
	)
	e.Step("draw 3")

	got, err := store.ReadStream(ctx, types.StreamPrimary)
	if err != nil {
		t.Fatalf("read mirrored stream: %v", err)
	}
	if got != e.State.Primary {
		t.Fatalf("mirror = %+v, state = %+v", got, e.State.Primary)
	}
	if got.Seed != 0x4820f4c4 {
		t.Fatalf("mirrored seed = %#x", got.Seed)
	}
}

func TestEngineMirrorFailureAbortsDraw(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	e := engine.New(testDefs(),
		engine.WithSeed(0x12345678),
		engine.WithMirror(store.Slots(context.Background())),
	)
	before := e.State.Primary
	result := e.Step("draw 3")

	if len(result.Glyphs) != 0 || len(e.State.Pending) != 0 {
		t.Fatalf("draw should fail when the mirror is closed, got %d glyphs", len(result.Glyphs))
	}
	if e.State.Primary != before {
		t.Fatalf("primary moved: %+v -> %+v", before, e.State.Primary)
	}
}
