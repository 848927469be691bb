package migrations

import "embed"

// FS holds the SQL migrations for the cache database.
//
//go:embed *.sql
var FS embed.FS
