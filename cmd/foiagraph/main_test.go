package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfoia/foiagraph/internal/core/model"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LLM_PROVIDER", "stub")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("MEMGRAPH_URI", "")
	configPath, docContext, imageDir, saveGraph, outPath = "", "", "", false, "-"

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	assert.True(t, names["ingest"])
	assert.True(t, names["redactions"])
}

func TestRedactionsCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "response.txt")
	require.NoError(t, os.WriteFile(path, []byte("Withheld under (b)(6) and (b)(6). See (b)(7)(C)."), 0o600))

	out, err := execute(t, "redactions", path)
	require.NoError(t, err)
	assert.Contains(t, out, "(b)(6)")
	assert.Contains(t, out, "(b)(7)(C)")
	assert.Contains(t, out, "total: 3")
}

func TestIngestCmd_WritesGraph(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memo.txt")
	require.NoError(t, os.WriteFile(path, []byte("Nothing of note."), 0o600))
	graphPath := filepath.Join(dir, "graph.json")

	_, err := execute(t, "ingest", "--out", graphPath, path)
	require.NoError(t, err)

	data, err := os.ReadFile(graphPath)
	require.NoError(t, err)
	var graph model.GraphExport
	require.NoError(t, json.Unmarshal(data, &graph))
	assert.Empty(t, graph.Entities)
}

func TestIngestCmd_SaveWithoutMemgraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memo.txt")
	require.NoError(t, os.WriteFile(path, []byte("text"), 0o600))

	_, err := execute(t, "ingest", "--save", path)
	assert.ErrorContains(t, err, "MEMGRAPH_URI")
}

func TestIngestCmd_ImageDirNeedsSingleFile(t *testing.T) {
	_, err := execute(t, "ingest", "--image-dir", t.TempDir(), "a.txt", "b.txt")
	assert.ErrorContains(t, err, "single file")
}
