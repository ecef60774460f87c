package cmd

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/iksnae/chat-dashboard/testutil"
)

func TestFetchCommand(t *testing.T) {
	dir := isolateEnv(t)

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(testutil.StructuredPayload))
	}))
	defer server.Close()
	t.Setenv("SALUD_WEBHOOK_URL", server.URL)

	outDir := filepath.Join(dir, "raw")
	if _, err := executeCommand(t, "fetch", "--out", outDir); err != nil {
		t.Fatalf("fetch error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "salud_0.json"))
	if err != nil {
		t.Fatalf("fetch did not write the payload: %v", err)
	}
	if string(data) != testutil.StructuredPayload {
		t.Errorf("saved payload differs from the webhook body")
	}

	// the saved file replays through --input without another request
	before := atomic.LoadInt32(&calls)
	out, err := executeCommand(t, "summary", "--input", filepath.Join(outDir, "salud_0.json"), "--json")
	if err != nil {
		t.Fatalf("summary --input error = %v", err)
	}
	if out == "" {
		t.Error("summary of the fetched payload printed nothing")
	}
	if atomic.LoadInt32(&calls) != before {
		t.Error("replaying a fetched payload should not call the webhook")
	}
}

func TestFetchCommand_WebhookError(t *testing.T) {
	dir := isolateEnv(t)
	t.Setenv("WEBHOOK_RETRIES", "0")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()
	t.Setenv("SALUD_WEBHOOK_URL", server.URL)

	if _, err := executeCommand(t, "fetch", "--out", dir); err == nil {
		t.Error("fetch from a failing webhook should fail")
	}
}
