// Package tui provides a Bubble Tea terminal UI for the glyph generator.
package tui

// History holds recent input lines for up/down recall. It can be seeded
// from a game's command log so recall survives loads and resumes.
type History struct {
	entries []string
	limit   int
	pos     int // len(entries) while not navigating
}

// NewHistory creates a history keeping at most limit lines.
func NewHistory(limit int) *History {
	return &History{entries: make([]string, 0, limit), limit: limit}
}

// Push records a line and ends navigation. A line equal to the newest
// entry is not recorded twice.
func (h *History) Push(line string) {
	if n := len(h.entries); n == 0 || h.entries[n-1] != line {
		h.entries = append(h.entries, line)
		if over := len(h.entries) - h.limit; over > 0 {
			h.entries = h.entries[over:]
		}
	}
	h.pos = len(h.entries)
}

// Seed replaces the history with the tail of a command log.
func (h *History) Seed(log []string) {
	h.entries = h.entries[:0]
	for _, line := range log {
		h.Push(line)
	}
	h.pos = len(h.entries)
}

// Prev steps to the previous (older) entry, stopping at the oldest.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.pos > 0 {
		h.pos--
	}
	return h.entries[h.pos], true
}

// Next steps to the next (newer) entry. Stepping past the newest returns
// false and leaves the cursor on fresh input.
func (h *History) Next() (string, bool) {
	if h.pos >= len(h.entries) {
		return "", false
	}
	h.pos++
	if h.pos == len(h.entries) {
		return "", false
	}
	return h.entries[h.pos], true
}

// ResetCursor returns the cursor to fresh input.
func (h *History) ResetCursor() {
	h.pos = len(h.entries)
}
