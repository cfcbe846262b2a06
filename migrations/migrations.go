// Package migrations embeds the SQL schema applied at startup when the
// Postgres store backend is selected.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
