// Package ids allocates glyph identifiers.
//
// The next id is always recomputed from the live collections, so it stays
// correct after external deletions and after loading a save.
package ids

import "github.com/nathoo/glyphcore/types"

// NextID returns one more than the largest id held in either collection,
// or 1 when both are empty.
func NextID(active, inventory []types.Glyph) uint64 {
	var top uint64
	for _, g := range active {
		if g.ID > top {
			top = g.ID
		}
	}
	for _, g := range inventory {
		if g.ID > top {
			top = g.ID
		}
	}
	return top + 1
}

// Insert assigns g the next id and appends it to the named collection.
// It returns the glyph as stored.
func Insert(s *types.State, coll types.Collection, g types.Glyph) types.Glyph {
	g.ID = NextID(s.Active, s.Inventory)
	switch coll {
	case types.CollectionActive:
		s.Active = append(s.Active, g)
	default:
		s.Inventory = append(s.Inventory, g)
	}
	return g
}

// Remove deletes the glyph with id from whichever collection holds it.
func Remove(s *types.State, id uint64) bool {
	if i := indexOf(s.Active, id); i >= 0 {
		s.Active = append(s.Active[:i], s.Active[i+1:]...)
		return true
	}
	if i := indexOf(s.Inventory, id); i >= 0 {
		s.Inventory = append(s.Inventory[:i], s.Inventory[i+1:]...)
		return true
	}
	return false
}

// Move transfers the glyph with id into coll, keeping its id.
func Move(s *types.State, id uint64, coll types.Collection) bool {
	var g types.Glyph
	if i := indexOf(s.Active, id); i >= 0 {
		g = s.Active[i]
	} else if i := indexOf(s.Inventory, id); i >= 0 {
		g = s.Inventory[i]
	} else {
		return false
	}
	Remove(s, id)
	if coll == types.CollectionActive {
		s.Active = append(s.Active, g)
	} else {
		s.Inventory = append(s.Inventory, g)
	}
	return true
}

func indexOf(list []types.Glyph, id uint64) int {
	for i, g := range list {
		if g.ID == id {
			return i
		}
	}
	return -1
}
