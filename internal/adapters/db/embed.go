// internal/adapters/db/embed.go
package db

import "embed"

// Migrations holds the SQL migration files compiled into the binary so the
// API and worker can migrate on startup without a deploy artifact.
//
//go:embed migrations/*.sql
var Migrations embed.FS
