package save

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nathoo/glyphcore/engine/catalog"
	"github.com/nathoo/glyphcore/engine/state"
	"github.com/nathoo/glyphcore/types"
)

func testDefs() *state.Defs {
	return &state.Defs{
		Content: types.ContentDef{Title: "Test Content", Version: "1.0"},
		Catalog: catalog.Standard(),
		Balance: state.DefaultBalance(),
	}
}

func testState(defs *state.Defs) *types.State {
	s := state.NewState(defs)
	state.Reseed(s, 0x12345678)
	s.Primary.SecondGaussian = 0.07465468213829066
	s.Level = types.LevelInfo{Actual: 4200, Raw: 4000}
	s.BestGlyphLevel = 5100
	s.Flags["fabric15"] = true
	s.Counters["kept"] = 3
	s.Values["rarity_bonus"] = 12.5
	s.Active = []types.Glyph{{ID: 1, Type: "time", Strength: 2.346, Level: 4200, RawLevel: 4000, Effects: 0b11 << 12}}
	s.Inventory = []types.Glyph{{ID: 2, Type: "power", Strength: 1.0297, Level: 10, RawLevel: 10, Effects: 1 << 63}}
	s.Pending = []types.Glyph{{Type: "infinity", Cosmetic: "music"}}
	s.TurnCount = 7
	s.CommandLog = []string{"draw", "keep"}
	return s
}

func checkRestored(t *testing.T, want, got *types.State) {
	t.Helper()
	if got.TurnCount != want.TurnCount {
		t.Errorf("turn = %d, want %d", got.TurnCount, want.TurnCount)
	}
	if got.Level != want.Level || got.BestGlyphLevel != want.BestGlyphLevel {
		t.Errorf("level = %+v best %d", got.Level, got.BestGlyphLevel)
	}
	if got.Primary != want.Primary || got.Secondary != want.Secondary {
		t.Errorf("streams = %+v %+v", got.Primary, got.Secondary)
	}
	if !got.Flags["fabric15"] || got.Counters["kept"] != 3 || got.Values["rarity_bonus"] != 12.5 {
		t.Errorf("flags %v counters %v values %v", got.Flags, got.Counters, got.Values)
	}
	if len(got.Active) != 1 || got.Active[0] != want.Active[0] {
		t.Errorf("active = %+v", got.Active)
	}
	if len(got.Inventory) != 1 || got.Inventory[0] != want.Inventory[0] {
		t.Errorf("inventory = %+v", got.Inventory)
	}
	if len(got.Pending) != 1 || got.Pending[0].Cosmetic != "music" {
		t.Errorf("pending = %+v", got.Pending)
	}
	if len(got.CommandLog) != 2 || got.CommandLog[1] != "keep" {
		t.Errorf("command log = %v", got.CommandLog)
	}
}

func TestRoundTrip(t *testing.T) {
	defs := testDefs()
	s := testState(defs)

	data, err := Save(s, defs)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	sd, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	s2 := state.NewState(defs)
	ApplySave(s2, sd)
	checkRestored(t, s, s2)
}

func TestRoundTrip_CBOR(t *testing.T) {
	defs := testDefs()
	s := testState(defs)

	data, sum, err := Encode(s, defs)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	sd, err := Decode(data, sum)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	s2 := state.NewState(defs)
	ApplySave(s2, sd)
	checkRestored(t, s, s2)
}

func TestRoundTrip_CBORFile(t *testing.T) {
	defs := testDefs()
	s := testState(defs)

	data, err := SaveCBOR(s, defs)
	if err != nil {
		t.Fatalf("SaveCBOR failed: %v", err)
	}
	sd, err := LoadCBOR(data)
	if err != nil {
		t.Fatalf("LoadCBOR failed: %v", err)
	}

	s2 := state.NewState(defs)
	ApplySave(s2, sd)
	checkRestored(t, s, s2)

	if _, err := LoadCBOR([]byte("not cbor")); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestLoadCBOR_TamperedFails(t *testing.T) {
	defs := testDefs()
	s := testState(defs)
	blob, sum, err := Encode(s, defs)
	if err != nil {
		t.Fatal(err)
	}
	file, err := encMode.Marshal(fileEnvelope{Checksum: sum[:63] + "0", Save: blob})
	if err != nil {
		t.Fatal(err)
	}
	if sum[63] == '0' {
		file, err = encMode.Marshal(fileEnvelope{Checksum: sum[:63] + "1", Save: blob})
		if err != nil {
			t.Fatal(err)
		}
	}
	if _, err := LoadCBOR(file); !errors.Is(err, ErrChecksum) {
		t.Errorf("expected ErrChecksum, got %v", err)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	defs := testDefs()
	s := testState(defs)
	s.Flags["a"] = true
	s.Flags["z"] = false

	first, sum1, err := Encode(s, defs)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, sum2, err := Encode(s, defs)
		if err != nil {
			t.Fatal(err)
		}
		if string(again) != string(first) || sum1 != sum2 {
			t.Fatal("encoding is not deterministic")
		}
	}
}

func TestChecksum_SameForJSONAndCBOR(t *testing.T) {
	defs := testDefs()
	s := testState(defs)

	data, err := Save(s, defs)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	_, sum, err := Encode(s, defs)
	if err != nil {
		t.Fatal(err)
	}
	if raw["checksum"] != sum {
		t.Errorf("json checksum %v, cbor checksum %s", raw["checksum"], sum)
	}
	if len(sum) != 64 {
		t.Errorf("checksum length = %d", len(sum))
	}
}

func TestLoad_TamperedFails(t *testing.T) {
	defs := testDefs()
	s := testState(defs)
	data, err := Save(s, defs)
	if err != nil {
		t.Fatal(err)
	}

	tampered := strings.Replace(string(data), `"best_glyph_level": 5100`, `"best_glyph_level": 9999`, 1)
	if tampered == string(data) {
		t.Fatal("tamper target not found")
	}
	if _, err := Load([]byte(tampered)); !errors.Is(err, ErrChecksum) {
		t.Errorf("expected ErrChecksum, got %v", err)
	}
}

func TestDecode_WrongSumFails(t *testing.T) {
	defs := testDefs()
	data, _, err := Encode(testState(defs), defs)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(data, "00"); !errors.Is(err, ErrChecksum) {
		t.Errorf("expected ErrChecksum, got %v", err)
	}
}

func TestLoad_MissingChecksumFails(t *testing.T) {
	data := []byte(`{"version":"1.0","content":"Test","turn":0}`)
	if _, err := Load(data); !errors.Is(err, ErrChecksum) {
		t.Errorf("expected ErrChecksum, got %v", err)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	if _, err := Load([]byte("{not json")); err == nil {
		t.Error("expected error")
	}
}

func TestSave_ProducesValidJSON(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)

	data, err := Save(s, defs)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !json.Valid(data) {
		t.Fatal("Save output is not valid JSON")
	}

	var raw map[string]any
	json.Unmarshal(data, &raw)
	if raw["version"] != "1.0" {
		t.Errorf("expected version '1.0', got %v", raw["version"])
	}
	if raw["content"] != "Test Content" {
		t.Errorf("expected content 'Test Content', got %v", raw["content"])
	}
	if raw["catalog"] != "standard-1" {
		t.Errorf("expected catalog 'standard-1', got %v", raw["catalog"])
	}
	if _, ok := raw["pending"]; ok {
		t.Error("empty pending should be omitted")
	}
}

func TestLoad_NormalizesEmptyCollections(t *testing.T) {
	defs := testDefs()
	s := state.NewState(defs)
	s.Flags = nil
	s.Values = nil
	s.Active = nil
	s.CommandLog = nil

	data, err := Save(s, defs)
	if err != nil {
		t.Fatal(err)
	}
	sd, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if sd.Flags == nil || sd.Values == nil || sd.Active == nil || sd.CommandLog == nil {
		t.Errorf("expected non-nil collections, got %+v", sd)
	}
}
