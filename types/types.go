// Package types defines the shared data structures for the glyphcore generator.
// This package contains only type definitions with no logic.
package types

// Intent is the parsed representation of a command.
type Intent struct {
	Verb   string
	Object string // optional
	Target string // optional
}

// Effect is a single atomic state mutation instruction.
type Effect struct {
	Type   string
	Params map[string]any
}

// Event is emitted after effects are applied.
type Event struct {
	Type string
	Data map[string]any
}

// Result is the output of a single command step.
type Result struct {
	Effects []Effect
	Events  []Event
	Output  []string
	Glyphs  []Glyph // glyphs generated by this step, if any
}

// Condition is a predicate over the unlock/flag state.
type Condition struct {
	Type   string         // "flag_set", "flag_not", "counter_gt", "value_gt", etc.
	Params map[string]any // condition-specific parameters
	Negate bool           // true if wrapped in Not()
	Inner  *Condition     // for Not(): the negated inner condition
}

// EventHandler is a content hook triggered by an event.
type EventHandler struct {
	EventType  string
	Match      map[string]any // event data fields that must be equal, e.g. {"type": "cursed"}
	Conditions []Condition
	Effects    []Effect
}

// ContentDef holds content metadata from Lua.
type ContentDef struct {
	Title   string
	Author  string
	Version string // catalog version; bit indices are stable across versions
	Intro   string
}

// TypeDef describes one glyph type. Declaration order is significant:
// random draws pick from available types in this order.
type TypeDef struct {
	ID       string
	Random   bool        // offered for random draw when Requires holds
	Requires []Condition // unlock conditions, evaluated fresh on every draw
	Color    string      // display colour (lipgloss colour string)
}

// EffectDef is one entry of the effect catalog.
type EffectDef struct {
	ID          string
	Bit         uint     // unique across the catalog, < 64
	Types       []string // glyph types this effect may appear on
	Description string
}

// Bitmask encodes the effects carried by a glyph: bit i set means the
// effect with Bit == i is present.
type Bitmask uint64

// BalanceDef holds the externally supplied balance data the generator
// consumes. Zero fields are filled with defaults by the loader.
type BalanceDef struct {
	StrengthBase      float64 // strength at rarity 0
	StrengthPerRarity float64 // strength gained per rarity point
	RarityCap         float64 // degenerate scores clamp here

	RarityBase        float64  // base rarity before bonuses
	RarityBonuses     []string // State.Values keys summed into the rarity score
	RarityMultipliers []string // State.Values keys multiplied into the rarity score

	ExtraEffectFlag string // flag gating the highest-index effect of a random draw

	MilestoneType       string
	MilestoneThresholds []int
	MilestoneRarity     float64

	CosmeticLevelFactor float64
	CosmeticTag         string

	StarterStrength    float64
	StarterMinLevel    int
	StarterExtraEffect string

	CursedType   string
	CursedLevel  int
	CursedRarity float64

	TributeType  string
	TributeScale float64 // log10 of the tribute amount is divided by this

	ActiveSlots int
}

// StreamKind names one independently persisted randomness slot.
type StreamKind string

const (
	StreamPrimary   StreamKind = "primary"
	StreamPreview   StreamKind = "preview"
	StreamSecondary StreamKind = "secondary"
)

// RandomState is the persisted pair of one stream.
type RandomState struct {
	Seed           uint32  `json:"seed"`
	SecondGaussian float64 `json:"second_gaussian"`
}

// LevelInfo carries the level a glyph is generated at.
type LevelInfo struct {
	Actual int
	Raw    int
}

// Glyph is a generated artifact. ID is 0 until the glyph is inserted
// into a collection.
type Glyph struct {
	ID       uint64  `json:"id"`
	Type     string  `json:"type"`
	Strength float64 `json:"strength"`
	Level    int     `json:"level"`
	RawLevel int     `json:"raw_level"`
	Effects  Bitmask `json:"effects"`
	Cosmetic string  `json:"cosmetic,omitempty"`
}

// Collection names one of the live glyph collections.
type Collection string

const (
	CollectionActive    Collection = "active"
	CollectionInventory Collection = "inventory"
)

// State is the complete mutable save state the generator reads and writes.
type State struct {
	Flags          map[string]bool
	Counters       map[string]int
	Values         map[string]float64 // real-valued sources (rarity bonuses, multipliers)
	Level          LevelInfo          // level used by random draws
	BestGlyphLevel int                // best-run record
	Primary        RandomState
	Secondary      RandomState
	Active         []Glyph
	Inventory      []Glyph
	Pending        []Glyph // generated but not yet kept
	TurnCount      int
	CommandLog     []string
}
