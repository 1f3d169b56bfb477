package cli

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/augustosouza8/aplicativos-sei/internal/journal"
)

// writeConfigFile drops a config file into its own temp dir and
// returns the path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// storeOnlyConfig returns a config file that redirects every durable
// path into dir and keeps the defaults for everything else.
func storeOnlyConfig(t *testing.T, dir string) string {
	t.Helper()
	return writeConfigFile(t, fmt.Sprintf(`
store:
  history_path: %[1]s/history.json
  journal_path: %[1]s/journal.db
collector:
  snapshot_path: %[1]s/snapshot.json
`, dir))
}

// runConfig writes a full config pointing every path into dir and the
// artifact fetches at baseURL.
func runConfig(t *testing.T, dir, baseURL string) string {
	t.Helper()
	return writeConfigFile(t, fmt.Sprintf(`
store:
  history_path: %[1]s/history.json
  journal_path: %[1]s/journal.db
collector:
  snapshot_path: %[1]s/snapshot.json
limits:
  max_new_per_run: 10
  max_artifact_mb: 1
fetch:
  workers: 2
  base_url: %[2]s
  artifact_dir: %[1]s/artifacts
  timeout_seconds: 5
`, dir, baseURL))
}

// twoRecordSnapshot is a registry snapshot with one inbound and one
// generated process.
const twoRecordSnapshot = `{
  "collected_at": "2026-08-23T05:00:00Z",
  "records": [
    {"id": "53500.000200/2026-10", "category": "generated", "title": "Ofício de resposta", "document_count": 1, "last_movement_at": "2026-08-21T15:30:00Z"},
    {"id": "53500.000123/2026-10", "category": "inbound", "title": "Renovação de outorga", "tags": ["monitorado"], "document_count": 4, "last_movement_at": "2026-08-20T12:00:00Z"}
  ]
}`

func writeSnapshot(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// artifactServer serves HEAD size probes and GET downloads for any
// path, mimicking the registry's artifact endpoint.
func artifactServer(t *testing.T, payload []byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		case http.MethodGet:
			_, _ = w.Write(payload)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func recentJournal(t *testing.T, path string) []journal.Entry {
	t.Helper()
	j, err := journal.Open(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, j.Close()) }()

	entries, err := j.Recent(context.Background(), 10)
	require.NoError(t, err)
	return entries
}
