//go:build integration

// Package integration contains integration tests for taigaflow.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
// Or use: make test-integration
package integration

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startFakeTaiga serves a two-state board with two stories so the generated
// dataset can be verified row by row.
func startFakeTaiga(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/projects/by_slug", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id": 9, "name": "Verification Board", "slug": "verification-board"}`))
	})
	mux.HandleFunc("/api/v1/userstory-statuses", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": 1, "name": "New", "slug": "new", "order": 1, "is_closed": false},
			{"id": 2, "name": "Done", "slug": "done", "order": 2, "is_closed": true}
		]`))
	})
	mux.HandleFunc("/api/v1/userstories", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": 201, "ref": 1, "subject": "Ship the feature", "status": 2, "created_date": "2024-01-01T00:00:00Z"},
			{"id": 202, "ref": 2, "subject": "Write the docs", "status": 1, "created_date": "2024-01-02T00:00:00Z"}
		]`))
	})
	mux.HandleFunc("/api/v1/history/userstory/201", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": "h1", "created_at": "2024-01-03T00:00:00Z", "values_diff": {"status": ["New", "Done"]}}
		]`))
	})
	mux.HandleFunc("/api/v1/history/userstory/202", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	return httptest.NewServer(mux)
}

// TestGenerateVerification runs taigaflow generate against a fake Taiga server
// and checks the CSV dataset against hand-computed state counts.
func TestGenerateVerification(t *testing.T) {
	upstream := startFakeTaiga(t)
	defer upstream.Close()

	outputFile := filepath.Join(t.TempDir(), "flow.csv")

	binaryPath := getTaigaflowBinary()
	cmd := exec.Command(binaryPath, "generate", "verification-board",
		"--start", "2024-01-01", "--end", "2024-01-04",
		"--granularity", "day",
		"--output", "csv", "--output-file", outputFile,
		"--cache-backend", "none")
	cmd.Dir = "../"
	cmd.Env = append(os.Environ(),
		"TAIGAFLOW_BASE_URL="+upstream.URL,
		"TAIGAFLOW_AUTH_TOKEN=integration-token",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	require.NoError(t, err, "stderr: %s", stderr.String())

	file, err := os.Open(outputFile)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 5) // header plus one row per day
	assert.Equal(t, []string{"date", "total", "New", "Done"}, records[0])
	assert.Equal(t, []string{"2024-01-01", "1", "1", "0"}, records[1])
	assert.Equal(t, []string{"2024-01-02", "2", "2", "0"}, records[2])
	assert.Equal(t, []string{"2024-01-03", "2", "1", "1"}, records[3])
	assert.Equal(t, []string{"2024-01-04", "2", "1", "1"}, records[4])
}

// TestStatusesVerification checks the statuses listing against the fake board.
func TestStatusesVerification(t *testing.T) {
	upstream := startFakeTaiga(t)
	defer upstream.Close()

	binaryPath := getTaigaflowBinary()
	cmd := exec.Command(binaryPath, "statuses", "verification-board",
		"--output", "csv",
		"--cache-backend", "none")
	cmd.Dir = "../"
	cmd.Env = append(os.Environ(),
		"TAIGAFLOW_BASE_URL="+upstream.URL,
		"TAIGAFLOW_AUTH_TOKEN=integration-token",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	require.NoError(t, err, "stderr: %s", stderr.String())

	records, err := csv.NewReader(bytes.NewReader(stdout.Bytes())).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, []string{"order", "name", "slug", "is_closed", "color"}, records[0])
	assert.Equal(t, "New", records[1][1])
	assert.Equal(t, "Done", records[2][1])
}
