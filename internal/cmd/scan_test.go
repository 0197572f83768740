package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/todoscan/internal/config"
	"github.com/harrison/todoscan/internal/filelock"
	"github.com/harrison/todoscan/internal/history"
	"github.com/harrison/todoscan/internal/scanner"
)

const testSource = `#include <stdio.h>

// FIXME: handle null
int main(void) {
    return 0;
}


// TODO: cleanup
`

const testConfig = `
filename: 'todo.txt'
recursive: true
todo_notations:
  FIXME: 'A'
  TODO: ''
print_result: false
force_overwrite: true
tag_with_project: false
tags: []
exclude:
  dirs: ['.git$']
`

// setupWorkspace changes into a fresh directory holding src/a.c and the
// given configuration. An empty cfg writes no configuration file.
func setupWorkspace(t *testing.T, cfg string) string {
	t.Helper()

	dir := t.TempDir()
	testChdir(t, dir)

	writeTestFile(t, "src/a.c", testSource)
	if cfg != "" {
		writeTestFile(t, config.DefaultConfigFile, cfg)
	}
	return dir
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readTestFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// executeCommand runs a fresh root command and captures its output.
func executeCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestScan_WritesTodoFile(t *testing.T) {
	setupWorkspace(t, testConfig)

	_, stderr, err := executeCommand(t, "-d", "src")
	require.NoError(t, err)

	assert.Equal(t, "(A) 'handle null' (src/a.c:3)\n'cleanup' (src/a.c:9)\n", readTestFile(t, "todo.txt"))
	assert.Contains(t, stderr, "Scan Summary")
	assert.Contains(t, stderr, "Entries written: 2")

	_, err = os.Stat(filelock.LockPath("todo.txt"))
	assert.True(t, os.IsNotExist(err), "lock file should be removed after the run")
}

func TestScan_ForceOverwriteReplacesFile(t *testing.T) {
	setupWorkspace(t, testConfig)
	writeTestFile(t, "todo.txt", "'stale task' (old.c:1)\n")

	_, _, err := executeCommand(t, "-d", "src")
	require.NoError(t, err)

	assert.NotContains(t, readTestFile(t, "todo.txt"), "stale task")
}

func TestScan_AppendSkipsKnownTasks(t *testing.T) {
	setupWorkspace(t, strings.Replace(testConfig, "force_overwrite: true", "force_overwrite: false", 1))
	writeTestFile(t, "todo.txt", "'cleanup' (src/a.c:9)\n")

	_, _, err := executeCommand(t, "-d", "src")
	require.NoError(t, err)

	want := "'cleanup' (src/a.c:9)\n(A) 'handle null' (src/a.c:3)\n"
	assert.Equal(t, want, readTestFile(t, "todo.txt"))

	// A second run finds nothing new.
	_, _, err = executeCommand(t, "-d", "src")
	require.NoError(t, err)
	assert.Equal(t, want, readTestFile(t, "todo.txt"))
}

func TestScan_ExcludedDirectory(t *testing.T) {
	setupWorkspace(t, testConfig)
	writeTestFile(t, "src/.git/hook.c", "// TODO: from git\n")

	for _, args := range [][]string{{"-d", "src"}, {"-d", "src", "-R"}} {
		_, _, err := executeCommand(t, args...)
		require.NoError(t, err)
		assert.NotContains(t, readTestFile(t, "todo.txt"), "from git", "args=%v", args)
	}
}

func TestScan_NoRecursionFlag(t *testing.T) {
	setupWorkspace(t, testConfig)
	writeTestFile(t, "src/sub/b.c", "// TODO: nested\n")

	_, _, err := executeCommand(t, "-d", "src", "-R")
	require.NoError(t, err)
	assert.NotContains(t, readTestFile(t, "todo.txt"), "nested")

	_, _, err = executeCommand(t, "-d", "src")
	require.NoError(t, err)
	assert.Contains(t, readTestFile(t, "todo.txt"), "'nested' (src/sub/b.c:1)")
}

func TestScan_OutputFlag(t *testing.T) {
	setupWorkspace(t, testConfig)

	_, _, err := executeCommand(t, "-d", "src", "-o", "other.txt")
	require.NoError(t, err)

	assert.Contains(t, readTestFile(t, "other.txt"), "'cleanup'")
	_, err = os.Stat("todo.txt")
	assert.True(t, os.IsNotExist(err))
}

func TestScan_ConsoleOutput(t *testing.T) {
	setupWorkspace(t, strings.Replace(testConfig, "filename: 'todo.txt'\n", "", 1))

	stdout, _, err := executeCommand(t, "-d", "src")
	require.NoError(t, err)

	assert.Equal(t, "(A) 'handle null' (src/a.c:3)\n'cleanup' (src/a.c:9)\n", stdout)
}

func TestScan_VerboseFlag(t *testing.T) {
	setupWorkspace(t, testConfig)

	_, stderr, err := executeCommand(t, "-d", "src", "-v")
	require.NoError(t, err)
	assert.Contains(t, stderr, "[DEBUG]")
}

func TestScan_PrintResult(t *testing.T) {
	setupWorkspace(t, strings.Replace(testConfig, "print_result: false", "print_result: true", 1))

	stdout, _, err := executeCommand(t, "-d", "src")
	require.NoError(t, err)

	assert.Contains(t, stdout, "=== todo.txt ===")
	assert.Contains(t, stdout, "(A) 'handle null' (src/a.c:3)")
}

func TestScan_BootstrapsDefaultConfig(t *testing.T) {
	dir := setupWorkspace(t, "")
	writeTestFile(t, "main.go", "package main\n\n// TODO: wire it up\n")

	stdout, stderr, err := executeCommand(t)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultConfigYAML, readTestFile(t, config.DefaultConfigFile))
	assert.Contains(t, stderr, "Created default configuration todo.cfg.yml")

	project := filepath.Base(dir)
	todoFile := readTestFile(t, "todo.txt")
	assert.Contains(t, todoFile, "+"+project+" @code-go 'wire it up' (...main.go:3)\n")
	assert.Contains(t, todoFile, "(A) +"+project+" @code-c 'handle null' (...src/a.c:3)\n")
	assert.Contains(t, stdout, "=== todo.txt ===")
}

func TestScan_RootUnreadable(t *testing.T) {
	setupWorkspace(t, testConfig)

	_, stderr, err := executeCommand(t, "-d", "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, scanner.ErrRootUnreadable)
	assert.Contains(t, stderr, "Scan directory cannot be read")

	_, err = os.Stat("todo.txt")
	assert.True(t, os.IsNotExist(err), "no output should be written")
}

func TestScan_InvalidConfig(t *testing.T) {
	setupWorkspace(t, "filename: 'todo.txt'\n")

	_, stderr, err := executeCommand(t, "-d", "src")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrNoNotations)
	assert.Contains(t, stderr, "Invalid configuration")
}

func TestScan_OutputLocked(t *testing.T) {
	setupWorkspace(t, testConfig)

	lock, err := filelock.Acquire("todo.txt")
	require.NoError(t, err)
	defer lock.Release()

	_, stderr, err := executeCommand(t, "-d", "src")
	require.Error(t, err)
	assert.ErrorIs(t, err, filelock.ErrLocked)
	assert.Contains(t, stderr, "Todo file is in use")
}

func TestScan_RecordsHistory(t *testing.T) {
	setupWorkspace(t, testConfig+"history_db: 'history.db'\n")

	_, _, err := executeCommand(t, "-d", "src")
	require.NoError(t, err)

	store, err := history.NewStore("history.db")
	require.NoError(t, err)
	runs, err := store.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, history.StatusCompleted, runs[0].Status)
	assert.Equal(t, 2, runs[0].EntriesWritten)

	entries, err := store.Entries(context.Background(), runs[0].ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "handle null", entries[0].Task)
	require.NoError(t, store.Close())

	stdout, _, err := executeCommand(t, "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, runs[0].ID[:8])
	assert.Contains(t, stdout, "completed")

	stdout, _, err = executeCommand(t, "history", runs[0].ID[:8])
	require.NoError(t, err)
	assert.Contains(t, stdout, "(A) 'handle null' (src/a.c:3)")
	assert.Contains(t, stdout, "'cleanup' (src/a.c:9)")
}

func TestScan_HistoryFailureIsWarning(t *testing.T) {
	setupWorkspace(t, testConfig+"history_db: 'src/a.c/history.db'\n")

	_, stderr, err := executeCommand(t, "-d", "src")
	require.NoError(t, err)
	assert.Contains(t, stderr, "History disabled")
	assert.Contains(t, readTestFile(t, "todo.txt"), "'cleanup'")
}

func TestScan_CancelledRunLogsError(t *testing.T) {
	setupWorkspace(t, testConfig)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"-d", "src"})

	err := cmd.ExecuteContext(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, errOut.String(), "[ERROR] Scan of src stopped after 0 entries")
}

// testChdir mirrors testing.T.Chdir (Go 1.24+): it changes the working
// directory for the duration of the test and restores it on cleanup.
func testChdir(t *testing.T, dir string) {
	t.Helper()

	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
