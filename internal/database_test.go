package internal

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/iksnae/chat-dashboard/testutil"
)

func TestOpenDatabase(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	path := filepath.Join(dir, "settings.db")
	testutil.CreateSettingsFixture(t, path)

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{
			name:    "existing database",
			path:    path,
			wantErr: false,
		},
		{
			name:    "missing directory",
			path:    filepath.Join(dir, "missing", "settings.db"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := OpenDatabase(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("OpenDatabase() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var storageErr *StorageError
				if !errors.As(err, &storageErr) {
					t.Errorf("OpenDatabase() error = %T, want *StorageError", err)
				}
				return
			}
			defer db.Close()

			var count int
			if err := db.QueryRow("SELECT COUNT(*) FROM agent_settings").Scan(&count); err != nil {
				t.Fatalf("query failed: %v", err)
			}
			if count != 3 {
				t.Errorf("agent_settings has %d rows, want 3", count)
			}
		})
	}
}

func TestOpenDatabase_ReadOnly(t *testing.T) {
	path := filepath.Join(testutil.CreateTempDir(t), "settings.db")
	testutil.CreateSettingsFixture(t, path)

	db, err := OpenDatabase(path)
	if err != nil {
		t.Fatalf("OpenDatabase() error = %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("DELETE FROM agent_settings"); err == nil {
		t.Error("write through a read-only handle succeeded")
	}
}

func TestOpenWritableDatabase(t *testing.T) {
	path := filepath.Join(testutil.CreateTempDir(t), "nested", "dir", "settings.db")

	db, err := OpenWritableDatabase(path)
	if err != nil {
		t.Fatalf("OpenWritableDatabase() error = %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("CREATE TABLE t (x INTEGER)"); err != nil {
		t.Errorf("write failed: %v", err)
	}
}
