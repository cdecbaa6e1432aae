// Package schemas provides embedded SQL migration files, one directory per dialect.
package schemas

import "embed"

// Migrations contains the SQL migration files under migrations/mysql and migrations/sqlite.
//
//go:embed migrations
var Migrations embed.FS
