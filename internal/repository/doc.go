// Package repository defines the data access interfaces for hepevd.
//
// Events are stored whole, as their JSON encoding, keyed by the event's
// content fingerprint. Record counts are kept in columns so listings do not
// decode payloads.
//
// # SQLite Implementation
//
// The sqlite subpackage implements EventStore on the pure Go
// modernc.org/sqlite driver, so the server builds without cgo. It migrates
// its schema on startup.
//
// # Testing
//
// The sqlite repository is tested against in-memory databases.
package repository
