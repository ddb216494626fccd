package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for the serve goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// useEnv points the commands at a directory backend through the
// environment. Tests touching rootCmd or the environment do not run in
// parallel.
func useEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	t.Setenv("REMOTE_LOG_LEVEL", "error")
	t.Setenv("REMOTE_DIRECTORY_WATCH", "false")
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func execute(t *testing.T, ctx context.Context, out *syncBuffer, args ...string) error {
	t.Helper()
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		envFile = ""
		verbose = false
	})
	return rootCmd.ExecuteContext(ctx)
}

func writeDirectoryFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "directory.toml")
	require.NoError(t, os.WriteFile(path, []byte("[externalCtx]\nmyResource = \"postgres://db\"\nport = 5432\n"), 0o644))
	return path
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	SetVersion("test-version-1.0.0")
	defer func() { version = originalVersion }()

	out := &syncBuffer{}
	err := execute(t, context.Background(), out, "version")

	assert.NoError(t, err)
	assert.Contains(t, out.String(), "remotectl version test-version-1.0.0")
}

func TestSetVersion_IgnoresEmpty(t *testing.T) {
	originalVersion := version
	defer func() { version = originalVersion }()

	SetVersion("")
	assert.Equal(t, originalVersion, version)
}

// ---------------------------------------------------------------------------
// lookup
// ---------------------------------------------------------------------------

func TestLookupCmd_PrintsJSON(t *testing.T) {
	useEnv(t, map[string]string{
		"REMOTE_DIRECTORY_KIND": "file",
		"REMOTE_DIRECTORY_FILE": writeDirectoryFile(t),
	})

	out := &syncBuffer{}
	require.NoError(t, execute(t, context.Background(), out, "lookup", "externalCtx", "port"))
	assert.Equal(t, "5432\n", out.String())
}

func TestLookupCmd_NotFound(t *testing.T) {
	useEnv(t, map[string]string{
		"REMOTE_DIRECTORY_KIND": "file",
		"REMOTE_DIRECTORY_FILE": writeDirectoryFile(t),
	})

	out := &syncBuffer{}
	err := execute(t, context.Background(), out, "lookup", "externalCtx", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `name "missing" not found`)
}

func TestLookupCmd_Args(t *testing.T) {
	useEnv(t, nil)

	out := &syncBuffer{}
	assert.Error(t, execute(t, context.Background(), out, "lookup", "only-one"))
}

func TestLookupCmd_BackendError(t *testing.T) {
	useEnv(t, map[string]string{
		"REMOTE_DIRECTORY_KIND": "file",
		"REMOTE_DIRECTORY_FILE": filepath.Join(t.TempDir(), "missing.toml"),
	})

	out := &syncBuffer{}
	err := execute(t, context.Background(), out, "lookup", "a", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open directory")
}

// ---------------------------------------------------------------------------
// bind
// ---------------------------------------------------------------------------

func TestBindCmd_SQLite(t *testing.T) {
	useEnv(t, map[string]string{
		"REMOTE_DIRECTORY_KIND":   "sqlite",
		"REMOTE_DIRECTORY_SQLITE": filepath.Join(t.TempDir(), "directory.db"),
	})

	out := &syncBuffer{}
	require.NoError(t, execute(t, context.Background(), out, "bind", "externalCtx", "limits", `{"rps":50}`))
	assert.Contains(t, out.String(), "bound externalCtx/limits")

	out = &syncBuffer{}
	require.NoError(t, execute(t, context.Background(), out, "lookup", "externalCtx", "limits"))
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.String()), &got))
	assert.Equal(t, map[string]any{"rps": float64(50)}, got)
}

func TestBindCmd_InvalidJSON(t *testing.T) {
	useEnv(t, map[string]string{
		"REMOTE_DIRECTORY_KIND":   "sqlite",
		"REMOTE_DIRECTORY_SQLITE": filepath.Join(t.TempDir(), "directory.db"),
	})

	out := &syncBuffer{}
	err := execute(t, context.Background(), out, "bind", "externalCtx", "bad", `{nope`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bind failed")
}

func TestBindCmd_RequiresSQLite(t *testing.T) {
	useEnv(t, map[string]string{"REMOTE_DIRECTORY_KIND": "memory"})

	out := &syncBuffer{}
	err := execute(t, context.Background(), out, "bind", "a", "b", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite backend")
}

// ---------------------------------------------------------------------------
// serve
// ---------------------------------------------------------------------------

var listenRE = regexp.MustCompile(`listening on (\S+)`)

func TestServeCmd_ServesAndStops(t *testing.T) {
	useEnv(t, map[string]string{
		"REMOTE_DIRECTORY_KIND":  "file",
		"REMOTE_DIRECTORY_FILE":  writeDirectoryFile(t),
		"REMOTE_DIRECTORY_WATCH": "true",
		"REMOTE_SERVER_ADDR":     "127.0.0.1:0",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- execute(t, ctx, out, "serve") }()

	var addr string
	require.Eventually(t, func() bool {
		m := listenRE.FindStringSubmatch(out.String())
		if m == nil {
			return false
		}
		addr = m[1]
		return true
	}, 5*time.Second, 20*time.Millisecond)

	res, err := http.Get("http://" + addr + "/v1/lookup?context=externalCtx&name=myResource")
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	res.Body.Close()
	assert.Equal(t, map[string]any{"value": "postgres://db"}, body)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestServeCmd_ListenError(t *testing.T) {
	useEnv(t, map[string]string{
		"REMOTE_DIRECTORY_KIND": "memory",
		"REMOTE_SERVER_ADDR":    "256.0.0.1:bad",
	})

	out := &syncBuffer{}
	err := execute(t, context.Background(), out, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}
