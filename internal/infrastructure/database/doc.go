// Package database manages the local SQLite database used for client-side
// persisted state (the auth session). It configures WAL mode, busy timeout
// and restrictive file permissions.
package database
