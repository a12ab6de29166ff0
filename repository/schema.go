package repository

import _ "embed"

// Schema is applied at startup; every statement is idempotent.
//
//go:embed schema.sql
var Schema string
