// Package migrations embeds the SQL schema so the migrate command and the
// integration tests ship without a migrations directory on disk.
package migrations

import "embed"

// FS holds every *.up.sql and *.down.sql file
//
//go:embed *.sql
var FS embed.FS
