// Package parser converts command strings into Intent structs.
// Intentionally dumb: no NLP, just pattern matching.
package parser

import (
	"strings"

	"github.com/nathoo/glyphcore/types"
)

var verbAliases = map[string]string{
	// Random draws
	"roll":     "draw",
	"gen":      "draw",
	"generate": "draw",
	"reality":  "draw",
	"peek":     "preview",
	"glimpse":  "preview",

	// Fixed kinds
	"ms":        "milestone",
	"doomed":    "cursed",
	"curse":     "cursed",
	"companion": "tribute",
	"music":     "cosmetic",

	// Collection
	"take":      "keep",
	"pick":      "keep",
	"choose":    "keep",
	"wear":      "equip",
	"use":       "equip",
	"remove":    "unequip",
	"takeoff":   "unequip",
	"del":       "delete",
	"rm":        "delete",
	"sacrifice": "delete",
	"ls":        "list",
	"l":         "list",
	"inventory": "list",
	"inv":       "list",
	"i":         "list",
	"x":         "show",
	"examine":   "show",
	"inspect":   "show",

	// State
	"enable":  "unlock",
	"disable": "lock",
	"lvl":     "level",
	"record":  "best",
	"seeds":   "seed",
	"rng":     "seed",
	"avail":   "types",
}

var prepositions = map[string]bool{
	"to": true, "at": true, "of": true, "as": true, "=": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true,
}

// Parse converts a raw command string into an Intent.
func Parse(input string) types.Intent {
	input = strings.TrimSpace(input)
	if input == "" {
		return types.Intent{}
	}

	words := strings.Fields(strings.ToLower(input))

	// Handle multi-word verb phrases before general parsing.
	words = expandMultiWordVerbs(words)

	// Apply verb aliases.
	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	rest := stripArticles(words[1:])

	object, target := splitArgs(rest)

	return types.Intent{
		Verb:   verb,
		Object: object,
		Target: target,
	}
}

// expandMultiWordVerbs handles "take off", "set value" etc.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "take":
		if words[1] == "off" {
			return append([]string{"unequip"}, words[2:]...)
		}
	case "put":
		if words[1] == "on" {
			return append([]string{"equip"}, words[2:]...)
		}
	case "set":
		if words[1] == "value" {
			return append([]string{"set"}, words[2:]...)
		}
		if words[1] == "level" {
			return append([]string{"level"}, words[2:]...)
		}
	case "show":
		if words[1] == "types" {
			return []string{"types"}
		}
	}

	return words
}

// stripArticles removes articles ("the", "a", "an") from the word list.
func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// splitArgs splits words on the first preposition. Without one, the first
// word is the object and the rest is the target.
func splitArgs(words []string) (object, target string) {
	for i, w := range words {
		if prepositions[w] {
			object = strings.Join(words[:i], " ")
			target = strings.Join(words[i+1:], " ")
			return object, target
		}
	}
	if len(words) == 0 {
		return "", ""
	}
	return words[0], strings.Join(words[1:], " ")
}
