// Package migrations embeds the SQL schema migrations so the binaries can
// apply them without the files present on disk.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
