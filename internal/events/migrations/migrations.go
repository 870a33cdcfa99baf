package migrations

import "embed"

// FS holds the goose migrations for the event store.
//
//go:embed *.sql
var FS embed.FS
