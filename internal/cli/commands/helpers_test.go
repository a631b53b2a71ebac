package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/mutedvoice/mutedvoice/internal/webex"
)

// newFakeWebex serves /v1/people/me and /v1/memberships. A nil me makes
// people/me answer 401.
func newFakeWebex(t *testing.T, me *webex.Person, members []webex.Membership) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/people/me", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if me == nil {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"invalid token"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(me)
	})
	mux.HandleFunc("/v1/memberships", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"items": members})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// setupTestEnv isolates state in a temp dir and writes a config pointing
// at webexURL. It returns the state dir.
func setupTestEnv(t *testing.T, webexURL string) string {
	t.Helper()
	tempDir := t.TempDir()

	configContent := fmt.Sprintf(`{
  "webex": {"token": "test-token", "targetRoomId": "g1", "baseUrl": %q},
  "server": {"port": 1},
  "logging": {"level": "error"}
}`, webexURL)
	configPath := filepath.Join(tempDir, "mutedvoice.json")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0600))

	t.Setenv("MUTEDVOICE_STATE_DIR", tempDir)
	t.Setenv("MUTEDVOICE_CONFIG_PATH", configPath)
	t.Setenv("MUTEDVOICE_SKIP_SERVER_START", "true")
	return tempDir
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	b := bytes.NewBufferString("")
	cmd.SetOut(b)
	cmd.SetErr(b)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return b.String(), err
}
