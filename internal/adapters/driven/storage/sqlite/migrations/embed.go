// Package migrations embeds the SQL schema migrations for the index store.
package migrations

import "embed"

// FS holds the migration files, embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
