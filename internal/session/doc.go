// Package session holds the authenticated user's token and profile as an
// explicit context object, persisted client-side in SQLite.
package session
