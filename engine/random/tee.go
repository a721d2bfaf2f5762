package random

import (
	"fmt"

	"github.com/nathoo/glyphcore/types"
)

// Tee returns Slots that read from primary and write to mirror before
// primary. A failed mirror write leaves primary untouched, so the commit
// fails as a whole.
func Tee(primary, mirror Slots) Slots {
	return teeSlots{primary: primary, mirror: mirror}
}

type teeSlots struct {
	primary Slots
	mirror  Slots
}

func (t teeSlots) ReadSlot(kind types.StreamKind) (types.RandomState, error) {
	return t.primary.ReadSlot(kind)
}

func (t teeSlots) WriteSlot(kind types.StreamKind, st types.RandomState) error {
	if err := t.mirror.WriteSlot(kind, st); err != nil {
		return fmt.Errorf("mirror %s slot: %w", kind, err)
	}
	return t.primary.WriteSlot(kind, st)
}
