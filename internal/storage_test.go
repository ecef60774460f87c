package internal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/iksnae/chat-dashboard/testutil"
)

func newTestStore(t *testing.T) *SettingsStore {
	t.Helper()
	store, err := NewSettingsStore(testutil.CreateInMemoryDB(t), ":memory:")
	if err != nil {
		t.Fatalf("NewSettingsStore() error = %v", err)
	}
	store.now = func() time.Time { return time.Date(2024, 1, 31, 10, 0, 0, 500, time.UTC) }
	return store
}

func TestSettingsStore_PutAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	saved, err := store.Put(ctx, VerticalSalud, "recepcion", map[string]string{"greeting": "Hola", "tone": "formal"}, false)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if want := time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC); !saved.UpdatedAt.Equal(want) {
		t.Errorf("UpdatedAt = %v, want %v", saved.UpdatedAt, want)
	}

	got, err := store.Get(ctx, VerticalSalud, "recepcion")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Fields["greeting"] != "Hola" || got.Fields["tone"] != "formal" || len(got.Fields) != 2 {
		t.Errorf("Fields = %v", got.Fields)
	}
	if !got.UpdatedAt.Equal(saved.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, saved.UpdatedAt)
	}
}

func TestSettingsStore_PutMerge(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.Put(ctx, VerticalSalud, "agenda", map[string]string{"calendar": "principal", "slots": "30"}, false); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		fields map[string]string
		merge  bool
		want   map[string]string
	}{
		{
			name:   "merge overrides one key",
			fields: map[string]string{"slots": "15"},
			merge:  true,
			want:   map[string]string{"calendar": "principal", "slots": "15"},
		},
		{
			name:   "replace drops other keys",
			fields: map[string]string{"calendar": "secundario"},
			merge:  false,
			want:   map[string]string{"calendar": "secundario"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saved, err := store.Put(ctx, VerticalSalud, "agenda", tt.fields, tt.merge)
			if err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			got, err := store.Get(ctx, VerticalSalud, "agenda")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			for _, fields := range []map[string]string{saved.Fields, got.Fields} {
				if len(fields) != len(tt.want) {
					t.Errorf("Fields = %v, want %v", fields, tt.want)
					continue
				}
				for k, v := range tt.want {
					if fields[k] != v {
						t.Errorf("Fields[%q] = %q, want %q", k, fields[k], v)
					}
				}
			}
		})
	}
}

func TestSettingsStore_List(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	empty, err := store.List(ctx, VerticalSalud)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("List() on an empty store = %#v, want empty slice", empty)
	}

	for _, agent := range []string{"zeta", "alfa"} {
		if _, err := store.Put(ctx, VerticalSalud, agent, map[string]string{"k": agent}, true); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.Put(ctx, VerticalComida, "pedidos", map[string]string{"k": "v"}, true); err != nil {
		t.Fatal(err)
	}

	list, err := store.List(ctx, VerticalSalud)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].AgentID != "alfa" || list[1].AgentID != "zeta" {
		t.Errorf("List() = %+v, want alfa then zeta", list)
	}
}

func TestSettingsStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.Get(ctx, VerticalSalud, "nadie")
	if !errors.Is(err, ErrSettingsNotFound) {
		t.Errorf("Get() error = %v, want ErrSettingsNotFound", err)
	}

	if _, err := store.Put(ctx, VerticalSalud, "", map[string]string{"k": "v"}, false); err == nil {
		t.Error("Put() without agent id should fail")
	}
}

func TestOpenSettingsStore_Fixture(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(testutil.CreateTempDir(t), "data", "settings.db")
	testutil.CreateSettingsFixture(t, path)

	store, err := OpenSettingsStore(path)
	if err != nil {
		t.Fatalf("OpenSettingsStore() error = %v", err)
	}
	defer store.Close()

	list, err := store.List(ctx, VerticalSalud)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].AgentID != "agenda" || list[1].AgentID != "recepcion" {
		t.Errorf("List() = %+v, want agenda and recepcion", list)
	}
	if list[1].Fields["tone"] != "formal" {
		t.Errorf("recepcion fields = %v", list[1].Fields)
	}

	comida, err := store.Get(ctx, VerticalComida, "pedidos")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if comida.Fields["delivery"] != "true" {
		t.Errorf("pedidos fields = %v", comida.Fields)
	}
}

func TestOpenSettingsStore_CreatesDatabase(t *testing.T) {
	path := filepath.Join(testutil.CreateTempDir(t), "new", "settings.db")

	store, err := OpenSettingsStore(path)
	if err != nil {
		t.Fatalf("OpenSettingsStore() error = %v", err)
	}
	defer store.Close()

	if _, err := store.Put(context.Background(), VerticalSalud, "a", map[string]string{"k": "v"}, false); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
}

func TestInspectSettings(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	path := filepath.Join(dir, "settings.db")
	testutil.CreateSettingsFixture(t, path)

	counts, err := InspectSettings(path)
	if err != nil {
		t.Fatalf("InspectSettings() error = %v", err)
	}
	if counts[VerticalSalud] != 2 || counts[VerticalComida] != 1 {
		t.Errorf("InspectSettings() = %v, want salud:2 comida:1", counts)
	}

	if _, err := InspectSettings(filepath.Join(dir, "missing.db")); err == nil {
		t.Error("InspectSettings() on a missing database should fail")
	}
}
