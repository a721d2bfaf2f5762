package migrations

import "embed"

// FS contains embedded SQLite migrations for glyph storage.
//
//go:embed *.sql
var FS embed.FS
