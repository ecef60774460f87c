package cmd

import (
	"testing"
	"time"

	"github.com/iksnae/chat-dashboard/internal"
)

func TestParseDay(t *testing.T) {
	cfg, err := internal.DefaultVerticalConfig(internal.VerticalSalud)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetTimeZone("America/Bogota"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{"empty is unbounded", "", time.Time{}, false},
		{"day in vertical zone", "2024-01-31", time.Date(2024, 1, 31, 5, 0, 0, 0, time.UTC), false},
		{"day first is rejected", "31/01/2024", time.Time{}, true},
		{"not a date", "yesterday", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDay(tt.value, cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDay(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseDay(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestEnvironment_Vertical(t *testing.T) {
	isolateEnv(t)

	env, err := loadEnvironment()
	if err != nil {
		t.Fatalf("loadEnvironment() error = %v", err)
	}
	for _, name := range []string{internal.VerticalSalud, internal.VerticalComida} {
		if _, err := env.vertical(name); err != nil {
			t.Errorf("vertical(%q) error = %v", name, err)
		}
	}
	if _, err := env.vertical("retail"); err == nil {
		t.Error("vertical(retail) should fail")
	}
}

func TestEnvironment_Source(t *testing.T) {
	isolateEnv(t)
	resetFlags()

	env, err := loadEnvironment()
	if err != nil {
		t.Fatalf("loadEnvironment() error = %v", err)
	}
	if _, ok := env.source().(*internal.WebhookSource); !ok {
		t.Errorf("source() without --input = %T, want *internal.WebhookSource", env.source())
	}

	inputFiles = []string{"a.json"}
	defer func() { inputFiles = nil }()
	if _, ok := env.source().(*internal.FileSource); !ok {
		t.Errorf("source() with --input = %T, want *internal.FileSource", env.source())
	}
}
