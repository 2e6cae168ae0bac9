// Package stores provides the settings store implementations for lets.
// It includes the YAML settings file used by default, an SQLite-backed
// store with embedded migrations, and an in-memory store for tests and
// embedding.
//
// Every store treats a missing backing file as an empty document and replaces
// the whole document on save.
package stores
