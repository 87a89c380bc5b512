// Package schemas provides the embedded SQL schema of the key-value table.
package schemas

import "embed"

// Migrations holds one schema file per SQL driver, named migrations/<driver>.sql.
//
//go:embed migrations/*.sql
var Migrations embed.FS
