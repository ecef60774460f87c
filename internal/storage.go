package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrSettingsNotFound is returned by Get for an agent without stored settings
var ErrSettingsNotFound = errors.New("agent settings not found")

// AgentSettings is the free-form configuration of one chat agent
type AgentSettings struct {
	Vertical  string            `json:"vertical" yaml:"vertical"`
	AgentID   string            `json:"agentId" yaml:"agent_id"`
	Fields    map[string]string `json:"fields" yaml:"fields"`
	UpdatedAt time.Time         `json:"updatedAt" yaml:"updated_at"`
}

const settingsSchema = `
CREATE TABLE IF NOT EXISTS agent_settings (
	vertical   TEXT NOT NULL,
	agent_id   TEXT NOT NULL,
	fields     TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (vertical, agent_id)
)`

// SettingsStore reads and writes agent settings in SQLite
type SettingsStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// NewSettingsStore wraps an open database and creates the schema if missing
func NewSettingsStore(db *sql.DB, path string) (*SettingsStore, error) {
	if _, err := db.Exec(settingsSchema); err != nil {
		return nil, &StorageError{Path: path, Op: "migrate", Err: err}
	}
	return &SettingsStore{db: db, path: path, now: time.Now}, nil
}

// OpenSettingsStore opens the settings database at path
func OpenSettingsStore(path string) (*SettingsStore, error) {
	db, err := OpenWritableDatabase(path)
	if err != nil {
		return nil, err
	}
	store, err := NewSettingsStore(db, path)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database
func (s *SettingsStore) Close() error {
	return s.db.Close()
}

// List returns the settings of every agent of a vertical, ordered by agent id
func (s *SettingsStore) List(ctx context.Context, vertical string) ([]AgentSettings, error) {
	query := "SELECT vertical, agent_id, fields, updated_at FROM agent_settings WHERE vertical = ? ORDER BY agent_id"
	rows, err := s.db.QueryContext(ctx, query, vertical)
	if err != nil {
		return nil, &StorageError{Path: s.path, Op: "read", Err: fmt.Errorf("query failed: %w", err)}
	}
	defer rows.Close()

	settings := make([]AgentSettings, 0)
	for rows.Next() {
		item, err := scanSettings(rows)
		if err != nil {
			return nil, &StorageError{Path: s.path, Op: "read", Err: err}
		}
		settings = append(settings, item)
	}

	if err := rows.Err(); err != nil {
		return nil, &StorageError{Path: s.path, Op: "read", Err: fmt.Errorf("rows iteration error: %w", err)}
	}

	return settings, nil
}

// Get returns the settings of one agent, or ErrSettingsNotFound
func (s *SettingsStore) Get(ctx context.Context, vertical, agentID string) (*AgentSettings, error) {
	query := "SELECT vertical, agent_id, fields, updated_at FROM agent_settings WHERE vertical = ? AND agent_id = ?"
	item, err := scanSettings(s.db.QueryRowContext(ctx, query, vertical, agentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", vertical, agentID, ErrSettingsNotFound)
	}
	if err != nil {
		return nil, &StorageError{Path: s.path, Op: "read", Err: err}
	}
	return &item, nil
}

// Put stores fields for an agent. With merge set the fields are applied on top
// of the stored ones; otherwise they replace them.
func (s *SettingsStore) Put(ctx context.Context, vertical, agentID string, fields map[string]string, merge bool) (*AgentSettings, error) {
	if agentID == "" {
		return nil, errors.New("agent id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &StorageError{Path: s.path, Op: "write", Err: err}
	}
	defer tx.Rollback()

	merged := make(map[string]string, len(fields))
	if merge {
		query := "SELECT vertical, agent_id, fields, updated_at FROM agent_settings WHERE vertical = ? AND agent_id = ?"
		current, err := scanSettings(tx.QueryRowContext(ctx, query, vertical, agentID))
		switch {
		case err == nil:
			for k, v := range current.Fields {
				merged[k] = v
			}
		case !errors.Is(err, sql.ErrNoRows):
			return nil, &StorageError{Path: s.path, Op: "read", Err: err}
		}
	}
	for k, v := range fields {
		merged[k] = v
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}

	updated := s.now().UTC().Truncate(time.Second)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO agent_settings (vertical, agent_id, fields, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (vertical, agent_id) DO UPDATE SET fields = excluded.fields, updated_at = excluded.updated_at`,
		vertical, agentID, string(data), updated.Format(time.RFC3339))
	if err != nil {
		return nil, &StorageError{Path: s.path, Op: "write", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return nil, &StorageError{Path: s.path, Op: "write", Err: err}
	}

	return &AgentSettings{Vertical: vertical, AgentID: agentID, Fields: merged, UpdatedAt: updated}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSettings(row rowScanner) (AgentSettings, error) {
	var item AgentSettings
	var fields, updated string
	if err := row.Scan(&item.Vertical, &item.AgentID, &fields, &updated); err != nil {
		return AgentSettings{}, err
	}
	if err := json.Unmarshal([]byte(fields), &item.Fields); err != nil {
		return AgentSettings{}, fmt.Errorf("failed to unmarshal fields of %s: %w", item.AgentID, err)
	}
	t, err := time.Parse(time.RFC3339, updated)
	if err != nil {
		return AgentSettings{}, fmt.Errorf("invalid updated_at %q: %w", updated, err)
	}
	item.UpdatedAt = t
	return item, nil
}

// InspectSettings opens an existing settings database read-only and counts
// the stored agents of each vertical.
func InspectSettings(path string) (map[string]int, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query("SELECT vertical, COUNT(*) FROM agent_settings GROUP BY vertical")
	if err != nil {
		return nil, &StorageError{Path: path, Op: "read", Err: fmt.Errorf("query failed: %w", err)}
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var vertical string
		var n int
		if err := rows.Scan(&vertical, &n); err != nil {
			return nil, &StorageError{Path: path, Op: "read", Err: err}
		}
		counts[vertical] = n
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Path: path, Op: "read", Err: err}
	}
	return counts, nil
}
