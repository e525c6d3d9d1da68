package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dannytech/default-server/internal/watermark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args. Flag values persist between
// calls, so tests pass every flag they depend on.
func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestRunPurgesAndAdvancesWatermark(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "client 2001-02-03 04-05-06.log")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0644))
	state := filepath.Join(t.TempDir(), "lastrun.log")

	before := time.Now().UTC()
	err := execute(t, "run", dir, "--state", state, "--retention", "2", "--slack", "", "--output", "json")
	require.NoError(t, err)

	assert.NoFileExists(t, old)

	ts, err := watermark.NewFileStore(state).Read()
	require.NoError(t, err)
	assert.False(t, ts.Before(before.Truncate(time.Second)), "watermark %s older than run start %s", ts, before)
}

func TestRootAcceptsLogDir(t *testing.T) {
	dir := t.TempDir()
	fresh := filepath.Join(dir, "client "+time.Now().UTC().Format("2006-01-02 15-04-05")+".log")
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0644))
	state := filepath.Join(t.TempDir(), "lastrun.log")

	err := execute(t, dir, "--state", state, "--retention", "2", "--slack", "", "--output", "json")
	require.NoError(t, err)

	assert.FileExists(t, fresh)
	assert.FileExists(t, state)
}

func TestRunRejectsNegativeRetention(t *testing.T) {
	state := filepath.Join(t.TempDir(), "lastrun.log")

	err := execute(t, "run", t.TempDir(), "--state", state, "--retention", "-1", "--slack", "", "--output", "json")
	assert.Error(t, err)
	assert.NoFileExists(t, state)
}

func TestRunCorruptWatermarkFails(t *testing.T) {
	state := filepath.Join(t.TempDir(), "lastrun.log")
	require.NoError(t, os.WriteFile(state, []byte("not a time"), 0644))

	err := execute(t, "run", t.TempDir(), "--state", state, "--retention", "2", "--slack", "", "--output", "json")
	require.Error(t, err)

	var corrupt *watermark.StoreCorruptError
	assert.ErrorAs(t, err, &corrupt)
}

func TestHelpExplainsDirectoryNamedRun(t *testing.T) {
	assert.Contains(t, rootCmd.Long, `"lognotify run ./run"`)
}

func TestRunAcceptsDirectoryNamedRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	require.NoError(t, os.Mkdir(dir, 0755))
	old := filepath.Join(dir, "client 2001-02-03 04-05-06.log")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0644))
	state := filepath.Join(t.TempDir(), "lastrun.log")

	err := execute(t, "run", dir, "--state", state, "--retention", "2", "--slack", "", "--output", "json")
	require.NoError(t, err)
	assert.NoFileExists(t, old)
}

func TestRunHugeRetentionKeepsFiles(t *testing.T) {
	dir := t.TempDir()
	fresh := filepath.Join(dir, "client "+time.Now().UTC().Add(-time.Minute).Format("2006-01-02 15-04-05")+".log")
	require.NoError(t, os.WriteFile(fresh, []byte("x"), 0644))
	state := filepath.Join(t.TempDir(), "lastrun.log")

	err := execute(t, "run", dir, "--state", state, "--retention", "200000", "--slack", "", "--output", "json")
	require.NoError(t, err)
	assert.FileExists(t, fresh)
}
