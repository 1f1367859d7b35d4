package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claudeExport(names ...string) string {
	convs := make([]string, 0, len(names))
	for _, n := range names {
		convs = append(convs, `{"name":"`+n+`","chat_messages":[{"sender":"human","text":"`+
			strings.Repeat("x", 500)+`"}]}`)
	}
	return "[" + strings.Join(convs, ",") + "]"
}

func TestSplitCmd_Use(t *testing.T) {
	assert.Equal(t, "split <conversations.json>", splitCmd.Use)
	assert.False(t, needsBackend(splitCmd))
	flag := splitCmd.Flags().Lookup("max-mb")
	require.NotNil(t, flag)
	assert.Equal(t, "3", flag.DefValue)
}

func TestSplitCmd_WritesParts(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	input := writeFile(t, dir, "conversations.json", claudeExport("uno", "due", "tre"))

	// about 100 bytes, so every conversation lands in a part of its own
	out, err := runCLI(t, "split", input, "--max-mb", "0.0001")
	require.NoError(t, err)

	outDir := filepath.Join(dir, "claude-split")
	assert.Contains(t, out, "claude-part-01.json")
	assert.Contains(t, out, "(single oversize conversation)")
	assert.Contains(t, out, "Wrote 3 files to "+outDir)

	for i, name := range []string{"uno", "due", "tre"} {
		data, err := os.ReadFile(filepath.Join(outDir, []string{
			"claude-part-01.json", "claude-part-02.json", "claude-part-03.json",
		}[i]))
		require.NoError(t, err)
		var convs []map[string]any
		require.NoError(t, json.Unmarshal(data, &convs))
		require.Len(t, convs, 1)
		assert.Equal(t, name, convs[0]["name"])
	}
}

func TestSplitCmd_ReplacesOutputDir(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	input := writeFile(t, dir, "conversations.json", claudeExport("uno"))
	outDir := filepath.Join(dir, "parts")
	require.NoError(t, os.MkdirAll(outDir, 0o755))
	writeFile(t, outDir, "stale.json", "[]")

	out, err := runCLI(t, "split", input, "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 1 files to "+outDir)
	assert.NotContains(t, out, "oversize")

	_, err = os.Stat(filepath.Join(outDir, "stale.json"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(outDir, "claude-part-01.json"))
	assert.NoError(t, err)
}

func TestSplitCmd_InvalidSize(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	input := writeFile(t, t.TempDir(), "conversations.json", claudeExport("uno"))

	_, err := runCLI(t, "split", input, "--max-mb", "0")
	assert.Error(t, err)
}

func TestSplitCmd_MissingFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := runCLI(t, "split", filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading")
}

func TestSplitCmd_MalformedExport(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	input := writeFile(t, t.TempDir(), "conversations.json", "not json")

	_, err := runCLI(t, "split", input)
	assert.Error(t, err)
}
