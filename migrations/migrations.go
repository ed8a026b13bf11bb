// Package migrations embeds the SQL schema migrations.
package migrations

import "embed"

// FS holds the golang-migrate up and down files.
//
//go:embed *.sql
var FS embed.FS
