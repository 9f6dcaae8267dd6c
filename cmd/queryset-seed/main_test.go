package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSeed(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func sqliteConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "env: dev\nstorage_driver: sqlite\nstorage_path: " + filepath.Join(dir, "db", "seed.db") +
		"\nhttp_server:\n  address: \":0\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSeedDefaultRoster(t *testing.T) {
	cfg := sqliteConfig(t)

	out, err := runSeed(t, "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 3 courses and 8 students.")

	// Reset is on by default, so a second run does not duplicate rows.
	out, err = runSeed(t, "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 3 courses and 8 students.")
}

func TestSeedFromFile(t *testing.T) {
	cfg := sqliteConfig(t)
	roster := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(roster, []byte(`
courses:
  - {title: Go, description: Gophers}
students:
  - {name: Rob, age: 40, email: rob@example.com, course: Go}
`), 0o644))

	out, err := runSeed(t, "--config", cfg, "--file", roster)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 1 courses and 1 students.")
}

func TestSeedErrors(t *testing.T) {
	cfg := sqliteConfig(t)

	_, err := runSeed(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "config file does not exist")

	_, err = runSeed(t, "--config", cfg, "--file", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read ")
}
