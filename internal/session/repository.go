package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/msohanifr/home-automation/internal/api"
	"github.com/msohanifr/home-automation/internal/infrastructure/database"
)

// Storage keys. keyToken matches the key the browser frontend uses for its
// persisted token, so the wire contract stays recognisable.
const (
	keyToken = "authToken"
	keyUser  = "authUser"
)

// ErrNoSession is returned when no persisted session exists.
var ErrNoSession = errors.New("session: not found")

// Repository persists the session in the local SQLite database so the token
// survives process restarts.
type Repository struct {
	db *database.DB
}

// NewRepository creates the repository and ensures its schema exists.
func NewRepository(ctx context.Context, db *database.DB) (*Repository, error) {
	const schema = `
		CREATE TABLE IF NOT EXISTS client_state (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("creating client_state table: %w", err)
	}
	return &Repository{db: db}, nil
}

// Load restores the persisted session, if any.
func (r *Repository) Load(ctx context.Context) (*Session, error) {
	token, err := r.get(ctx, keyToken)
	if err != nil {
		return nil, err
	}

	var user api.User
	if raw, err := r.get(ctx, keyUser); err == nil {
		// A corrupt profile is not fatal; the token alone is enough.
		_ = json.Unmarshal([]byte(raw), &user) //nolint:errcheck // Profile is advisory
	}

	s := New()
	s.Start(token, user)
	return s, nil
}

// Save persists the session.
func (r *Repository) Save(ctx context.Context, s *Session) error {
	if err := r.put(ctx, keyToken, s.Token()); err != nil {
		return err
	}

	userJSON, err := json.Marshal(s.User())
	if err != nil {
		return fmt.Errorf("encoding user profile: %w", err)
	}
	return r.put(ctx, keyUser, string(userJSON))
}

// Clear removes the persisted session at logout.
func (r *Repository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM client_state WHERE key IN (?, ?)", keyToken, keyUser)
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

func (r *Repository) get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		"SELECT value FROM client_state WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("reading %q: %w", key, err)
	}
	return value, nil
}

func (r *Repository) put(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO client_state (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		return fmt.Errorf("writing %q: %w", key, err)
	}
	return nil
}
