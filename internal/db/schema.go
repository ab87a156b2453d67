// Package db holds the sqlite schema of the indicator store and its transaction helper.
package db

import _ "embed"

// Schema creates the indicators table and its indexes, every statement is idempotent.
//
//go:embed schema.sql
var Schema string
