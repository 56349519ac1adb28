// Package migrations embeds the SQL schema migrations per database driver.
package migrations

import "embed"

// FS holds the mysql/ and postgres/ migration directories
//
//go:embed mysql/*.sql postgres/*.sql
var FS embed.FS
