package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

const agentSettingsTable = `
CREATE TABLE IF NOT EXISTS agent_settings (
	vertical   TEXT NOT NULL,
	agent_id   TEXT NOT NULL,
	fields     TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (vertical, agent_id)
)`

// CreateInMemoryDB creates an in-memory SQLite database with the agent_settings table.
// The pool is limited to one connection so every query sees the same database.
func CreateInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(agentSettingsTable); err != nil {
		t.Fatalf("Failed to create agent_settings table: %v", err)
	}

	return db
}

// CreateSettingsFixture creates a settings database at dbPath holding two salud
// agents and one comida agent.
func CreateSettingsFixture(t *testing.T, dbPath string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(agentSettingsTable); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	rows := []struct {
		vertical, agent, fields string
	}{
		{"salud", "recepcion", `{"greeting":"Bienvenido a la clínica","tone":"formal"}`},
		{"salud", "agenda", `{"calendar":"principal"}`},
		{"comida", "pedidos", `{"delivery":"true"}`},
	}
	for _, r := range rows {
		_, err := db.Exec(
			"INSERT INTO agent_settings (vertical, agent_id, fields, updated_at) VALUES (?, ?, ?, ?)",
			r.vertical, r.agent, r.fields, "2024-01-31T10:00:00Z")
		if err != nil {
			t.Fatalf("Failed to insert settings for %s: %v", r.agent, err)
		}
	}
}
