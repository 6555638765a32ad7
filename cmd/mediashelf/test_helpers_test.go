package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

type cliTestEnv struct {
	configPath string
	baseDir    string
	books      *httptest.Server

	mu      sync.Mutex
	queries []string
}

func (e *cliTestEnv) searched() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.queries...)
}

// setupCLITestEnv writes a config that enables only Google Books, served by a
// fake that echoes the query back as the volume title.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, key := range []string{"OPENROUTER_API_KEY", "MEDIASHELF_LLM_API_KEY", "TMDB_API_KEY", "SPOTIFY_ID", "SPOTIFY_SECRET", "GOOGLE_BOOKS_API_KEY", "RAWG_API_KEY"} {
		t.Setenv(key, "")
	}

	env := &cliTestEnv{baseDir: base}
	env.books = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		env.mu.Lock()
		env.queries = append(env.queries, q)
		env.mu.Unlock()
		payload := map[string]any{
			"totalItems": 2,
			"items": []map[string]any{
				{"id": "vol-" + q, "volumeInfo": map[string]any{"title": q, "authors": []string{"Somebody Else"}, "publisher": "Pub"}},
				{"id": "alt-" + q, "volumeInfo": map[string]any{"title": q + " (Annotated)", "authors": []string{"Hermann Hesse"}}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(env.books.Close)

	env.configPath = filepath.Join(homeDir, ".config", "mediashelf", "config.toml")
	if err := os.MkdirAll(filepath.Dir(env.configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q

[library]
subject_id = "cli-subject"

[books]
enabled = true
base_url = %q

[search]
cache_ttl_seconds = 0
requests_per_second = 0

[logging]
level = "error"
`, filepath.Join(base, "data"), filepath.Join(base, "logs"), env.books.URL)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeItems(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "items.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write items: %v", err)
	}
	return path
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
