package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleText = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleHeader = lipgloss.NewStyle().
			Bold(true)

	styleEffect = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	styleCosmetic = lipgloss.NewStyle().
			Italic(true)
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindText lineKind = iota
	kindHeader
	kindGlyph
	kindEffect
	kindSystem
	kindError
	kindTrace
)

var headerPrefixes = []string{
	"Active (", "Inventory (", "Available:", "Locked:",
	"You draw", "Preview (", "Primary:", "Secondary:", "Preview:",
}

var errorPrefixes = []string{
	"There is", "No glyph", "Choose ", "Generation failed", "I don't know",
	"All ", "Draw how many", "Glyph #",
}

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case glyphType(line) != "":
		return kindGlyph
	case strings.HasPrefix(line, "  - "), strings.HasPrefix(line, "  fingerprint "):
		return kindEffect
	case hasAnyPrefix(line, headerPrefixes):
		return kindHeader
	case hasAnyPrefix(line, errorPrefixes):
		return kindError
	default:
		return kindText
	}
}

func hasAnyPrefix(line string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// glyphType extracts the type from a glyph description line such as
// "  2) #4 time, level 120, strength ...". It returns "" for other lines.
func glyphType(line string) string {
	idx := strings.Index(line, ", level ")
	if idx < 0 || !strings.Contains(line[idx:], ", strength ") {
		return ""
	}
	fields := strings.Fields(line[:idx])
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// styledGlyph colours a glyph line with its type's colour.
func styledGlyph(line, color string) string {
	style := styleText
	if color != "" {
		style = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}
	if strings.HasSuffix(line, "]") {
		if i := strings.LastIndex(line, " ["); i >= 0 {
			return style.Render(line[:i]) + styleCosmetic.Render(line[i:])
		}
	}
	return style.Render(line)
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
