package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest <file|dir>...", ingestCmd.Use)
	assert.Equal(t, "Import chat exports into memory", ingestCmd.Short)
}

func TestIngestCmd_SingleFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	path := writeFile(t, t.TempDir(), "conversations.json", `[]`)

	out, err := runCLI(t, "ingest", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 conversations into 2 chunks from 1 files.")

	require.Len(t, testMocks.ingest.requests, 1)
	req := testMocks.ingest.requests[0]
	assert.Equal(t, "alice", req.OwnerID)
	require.Len(t, req.Files, 1)
	assert.Equal(t, "conversations.json", req.Files[0].Filename)
	assert.Equal(t, `[]`, req.Files[0].Content)
}

func TestIngestCmd_Directory(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	writeFile(t, dir, "claude.json", `[]`)
	writeFile(t, dir, "notes.md", "# Note")
	writeFile(t, dir, "plain.TXT", "testo")
	writeFile(t, dir, ".hidden.json", `[]`)
	writeFile(t, dir, "photo.png", "binary")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	writeFile(t, filepath.Join(dir, "nested"), "deep.json", `[]`)

	_, err := runCLI(t, "ingest", dir)
	require.NoError(t, err)

	require.Len(t, testMocks.ingest.requests, 1)
	var names []string
	for _, f := range testMocks.ingest.requests[0].Files {
		names = append(names, f.Filename)
	}
	assert.ElementsMatch(t, []string{"claude.json", "notes.md", "plain.TXT"}, names)
}

func TestIngestCmd_OwnerFlag(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	path := writeFile(t, t.TempDir(), "a.md", "# A")

	_, err := runCLI(t, "ingest", path, "--owner", "bob")
	require.NoError(t, err)
	require.Len(t, testMocks.ingest.requests, 1)
	assert.Equal(t, "bob", testMocks.ingest.requests[0].OwnerID)
}

func TestIngestCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	path := writeFile(t, t.TempDir(), "a.md", "# A")

	out, err := runCLI(t, "ingest", path, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"success": true`)
	assert.Contains(t, out, `"chunksCreated": 2`)
}

func TestIngestCmd_ReportsFailedFiles(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	testMocks.ingest.IngestFunc = func(context.Context, domain.IngestRequest) (*domain.IngestResult, error) {
		return &domain.IngestResult{Success: true, ConversationsProcessed: 1, ChunksCreated: 1, FilesFailed: 1}, nil
	}
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `[]`)
	writeFile(t, dir, "b.json", `{`)

	out, err := runCLI(t, "ingest", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 files could not be parsed.")
}

func TestIngestCmd_FailedResult(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	testMocks.ingest.IngestFunc = func(context.Context, domain.IngestRequest) (*domain.IngestResult, error) {
		return &domain.IngestResult{Success: false, ConversationsProcessed: 1, Error: "embedding provider down"}, nil
	}
	path := writeFile(t, t.TempDir(), "a.json", `[]`)

	_, err := runCLI(t, "ingest", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding provider down")
}

func TestIngestCmd_NoImportableFiles(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	writeFile(t, dir, "photo.png", "binary")

	_, err := runCLI(t, "ingest", dir)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, testMocks.ingest.requests)
}

func TestIngestCmd_MissingPath(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := runCLI(t, "ingest", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading")
}

func TestIngestCmd_NotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestService = nil

	_, err := runCLI(t, "ingest", "x.json")
	assert.ErrorIs(t, err, errNotConfigured)
}

func TestImportable(t *testing.T) {
	assert.True(t, importable("a.json"))
	assert.True(t, importable("a.MD"))
	assert.True(t, importable("a.txt"))
	assert.False(t, importable(".a.json"))
	assert.False(t, importable("a.pdf"))
	assert.False(t, importable("json"))
}
