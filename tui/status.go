package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar produces a full-width inverted status line showing the
// draw level, glyph counts, the primary seed, and the turn count.
func (m Model) renderStatusBar() string {
	s := m.session.Engine.State

	left := fmt.Sprintf(" Lv %d | Best %d | Active %d/%d | Inv %d",
		s.Level.Actual, s.BestGlyphLevel,
		len(s.Active), m.session.Defs.Balance.ActiveSlots, len(s.Inventory))
	if n := len(s.Pending); n > 0 {
		left += fmt.Sprintf(" | Pending %d", n)
	}

	right := fmt.Sprintf("T:%d ", s.TurnCount)
	candidate := fmt.Sprintf("Seed %#08x | T:%d ", s.Primary.Seed, s.TurnCount)
	if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
		right = candidate
	}
	if m.session.Trace {
		right = "trace | " + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
