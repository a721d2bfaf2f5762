// Package save implements serialization of the glyph save state. Saves are
// JSON for files and deterministic CBOR for blob storage; both carry a keyed
// BLAKE3 checksum of the canonical CBOR encoding.
package save

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"github.com/nathoo/glyphcore/engine/state"
	"github.com/nathoo/glyphcore/types"
)

// ErrChecksum is returned when a save's checksum does not match its contents.
var ErrChecksum = errors.New("save checksum mismatch")

// checksumKey is the BLAKE3 domain key for save checksums.
var checksumKey = [32]byte{'g', 'l', 'y', 'p', 'h', 'c', 'o', 'r', 'e', '.', 's', 'a', 'v', 'e', '.', 'v', '1'}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("save: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("save: CBOR decoder initialization failed: " + err.Error())
	}
}

// SaveData is the serializable save format.
type SaveData struct {
	Version        string             `json:"version"`
	Content        string             `json:"content"`
	Catalog        string             `json:"catalog"`
	Turn           int                `json:"turn"`
	Level          types.LevelInfo    `json:"level"`
	BestGlyphLevel int                `json:"best_glyph_level"`
	Flags          map[string]bool    `json:"flags"`
	Counters       map[string]int     `json:"counters"`
	Values         map[string]float64 `json:"values"`
	Primary        types.RandomState  `json:"primary"`
	Secondary      types.RandomState  `json:"secondary"`
	Active         []types.Glyph      `json:"active"`
	Inventory      []types.Glyph      `json:"inventory"`
	Pending        []types.Glyph      `json:"pending,omitempty"`
	CommandLog     []string           `json:"command_log"`

	Checksum string `json:"checksum" cbor:"-"`
}

// Snapshot captures the save state into SaveData without a checksum.
func Snapshot(s *types.State, defs *state.Defs) SaveData {
	sd := SaveData{
		Version:        defs.Content.Version,
		Content:        defs.Content.Title,
		Turn:           s.TurnCount,
		Level:          s.Level,
		BestGlyphLevel: s.BestGlyphLevel,
		Flags:          s.Flags,
		Counters:       s.Counters,
		Values:         s.Values,
		Primary:        s.Primary,
		Secondary:      s.Secondary,
		Active:         s.Active,
		Inventory:      s.Inventory,
		Pending:        s.Pending,
		CommandLog:     s.CommandLog,
	}
	if len(sd.Pending) == 0 {
		sd.Pending = nil
	}
	if defs.Catalog != nil {
		sd.Catalog = defs.Catalog.Version()
	}
	return sd
}

// Sum returns the hex checksum of sd's canonical encoding.
func Sum(sd SaveData) (string, error) {
	data, err := encMode.Marshal(sd)
	if err != nil {
		return "", fmt.Errorf("encoding save: %w", err)
	}
	hasher, err := blake3.NewKeyed(checksumKey[:])
	if err != nil {
		panic("save: blake3 keyed hasher: " + err.Error())
	}
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Save serializes the save state to JSON bytes.
func Save(s *types.State, defs *state.Defs) ([]byte, error) {
	sd := Snapshot(s, defs)
	sum, err := Sum(sd)
	if err != nil {
		return nil, err
	}
	sd.Checksum = sum
	return json.MarshalIndent(sd, "", "  ")
}

// Load deserializes JSON bytes into SaveData and verifies the checksum.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	if err := verify(&sd); err != nil {
		return nil, err
	}
	normalize(&sd)
	return &sd, nil
}

// Encode serializes the save state to deterministic CBOR. The checksum
// travels separately so callers can store it alongside the blob.
func Encode(s *types.State, defs *state.Defs) ([]byte, string, error) {
	sd := Snapshot(s, defs)
	data, err := encMode.Marshal(sd)
	if err != nil {
		return nil, "", fmt.Errorf("encoding save: %w", err)
	}
	sum, err := Sum(sd)
	if err != nil {
		return nil, "", err
	}
	return data, sum, nil
}

// Decode deserializes a CBOR save and checks it against sum.
func Decode(data []byte, sum string) (*SaveData, error) {
	var sd SaveData
	if err := decMode.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("decoding save: %w", err)
	}
	sd.Checksum = sum
	if err := verify(&sd); err != nil {
		return nil, err
	}
	normalize(&sd)
	return &sd, nil
}

// fileEnvelope is the on-disk CBOR save file: the checksum next to the blob.
type fileEnvelope struct {
	Checksum string          `cbor:"1,keyasint"`
	Save     cbor.RawMessage `cbor:"2,keyasint"`
}

// SaveCBOR serializes the save state to a self-contained CBOR file.
func SaveCBOR(s *types.State, defs *state.Defs) ([]byte, error) {
	data, sum, err := Encode(s, defs)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(fileEnvelope{Checksum: sum, Save: data})
}

// LoadCBOR reads a file written by SaveCBOR.
func LoadCBOR(data []byte) (*SaveData, error) {
	var env fileEnvelope
	if err := decMode.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding save file: %w", err)
	}
	return Decode(env.Save, env.Checksum)
}

func verify(sd *SaveData) error {
	want, err := Sum(*sd)
	if err != nil {
		return err
	}
	if sd.Checksum != want {
		return fmt.Errorf("%w: got %q", ErrChecksum, sd.Checksum)
	}
	return nil
}

// normalize ensures maps and slices are never nil after load.
func normalize(sd *SaveData) {
	if sd.Flags == nil {
		sd.Flags = map[string]bool{}
	}
	if sd.Counters == nil {
		sd.Counters = map[string]int{}
	}
	if sd.Values == nil {
		sd.Values = map[string]float64{}
	}
	if sd.Active == nil {
		sd.Active = []types.Glyph{}
	}
	if sd.Inventory == nil {
		sd.Inventory = []types.Glyph{}
	}
	if sd.CommandLog == nil {
		sd.CommandLog = []string{}
	}
}

// ApplySave applies loaded save data onto a state.
func ApplySave(s *types.State, sd *SaveData) {
	s.TurnCount = sd.Turn
	s.Level = sd.Level
	s.BestGlyphLevel = sd.BestGlyphLevel
	s.Flags = sd.Flags
	s.Counters = sd.Counters
	s.Values = sd.Values
	s.Primary = sd.Primary
	s.Secondary = sd.Secondary
	s.Active = sd.Active
	s.Inventory = sd.Inventory
	s.Pending = sd.Pending
	s.CommandLog = sd.CommandLog
}
