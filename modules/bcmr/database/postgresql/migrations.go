// Package postgresql holds the bcmr module schema.
package postgresql

import "embed"

// Migrations are the golang-migrate migrations of the bcmr module, rooted at "migrations".
//
//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"
