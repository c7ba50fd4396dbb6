// Package migrations embeds the SQL schema into the binary.
package migrations

import "embed"

// FS holds every *.up.sql file, applied in filename order.
//
//go:embed *.sql
var FS embed.FS
