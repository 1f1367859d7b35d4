package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/recall/internal/core/domain"
)

func TestConfigCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range configCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"list", "get", "set", "unset", "path", "check", "embedding"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
	assert.False(t, needsBackend(configCmd))
}

func TestConfigList_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCLI(t, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No values stored; defaults apply.")
	assert.Contains(t, out, "/tmp/recall/config.toml")
}

func TestConfigList_MasksSecrets(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	testMocks.settings.values["embedding.api_key"] = "sk-1234567890abcdef"
	testMocks.settings.values["owner"] = "alice"

	out, err := runCLI(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "embedding.api_key = sk-1...cdef")
	assert.Contains(t, out, "owner = alice")
	assert.NotContains(t, out, "1234567890")
}

func TestConfigGet(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	testMocks.settings.values["store.kind"] = "postgres"

	out, err := runCLI(t, "config", "get", "store.kind")
	require.NoError(t, err)
	assert.Equal(t, "postgres\n", out)

	out, err = runCLI(t, "config", "get", "owner")
	require.NoError(t, err)
	assert.Contains(t, out, "owner is not set; the default applies.")

	_, err = runCLI(t, "config", "get", "bogus")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigSet(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCLI(t, "config", "set", "embedding.api_key", "sk-1234567890abcdef")
	require.NoError(t, err)
	assert.Contains(t, out, "embedding.api_key = sk-1...cdef")
	assert.Equal(t, "sk-1234567890abcdef", testMocks.settings.values["embedding.api_key"])

	_, err = runCLI(t, "config", "set", "bogus", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigUnset(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	testMocks.settings.values["owner"] = "bob"

	out, err := runCLI(t, "config", "unset", "owner")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed owner")
	assert.NotContains(t, testMocks.settings.values, "owner")
}

func TestConfigPath(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCLI(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/recall/config.toml\n", out)
}

func TestConfigCheck(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := runCLI(t, "config", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration: OK")
	assert.Contains(t, out, "Embedding provider: OK")
}

func TestConfigCheck_Invalid(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	testMocks.settings.validateErr = domain.ErrEmbeddingUnavailable

	out, err := runCLI(t, "config", "check")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Contains(t, out, "recall config embedding")
}

func TestConfigCheck_PingFails(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	testMocks.settings.pingErr = errors.New("401 unauthorized")

	out, err := runCLI(t, "config", "check")
	require.Error(t, err)
	assert.Contains(t, out, "FAILED: 401 unauthorized")
}

func TestConfigEmbedding_OpenAI(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetIn(strings.NewReader("2\ntext-embedding-3-small\nsk-test\n"))

	out, err := runCLI(t, "config", "embedding")
	require.NoError(t, err)
	assert.Contains(t, out, "Validating configuration... OK")
	assert.Contains(t, out, "Embedding provider configured: OpenAI (cloud) (text-embedding-3-small)")

	assert.Equal(t, domain.AIProviderOpenAI, testMocks.settings.provider)
	assert.Equal(t, "text-embedding-3-small", testMocks.settings.model)
	assert.Equal(t, "sk-test", testMocks.settings.apiKey)
}

func TestConfigEmbedding_CloudflareStoresAccount(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetIn(strings.NewReader("\n\nacc-123\ntoken\n"))

	_, err := runCLI(t, "config", "embedding")
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderCloudflare, testMocks.settings.provider)
	assert.Equal(t, "acc-123", testMocks.settings.values["embedding.account_id"])
	assert.Empty(t, testMocks.settings.model)
}

func TestConfigEmbedding_OllamaNeedsNoKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetIn(strings.NewReader("4\n\nhttp://gpu:11434\n"))

	_, err := runCLI(t, "config", "embedding")
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, testMocks.settings.provider)
	assert.Equal(t, "http://gpu:11434", testMocks.settings.values["embedding.base_url"])
	assert.Empty(t, testMocks.settings.apiKey)
}

func TestConfigEmbedding_MissingKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetIn(strings.NewReader("3\n\n\n"))

	_, err := runCLI(t, "config", "embedding")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
	assert.Empty(t, testMocks.settings.provider)
}

func TestConfigCmd_NotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	settingsService = nil

	for _, args := range [][]string{{"config"}, {"config", "path"}, {"config", "check"}, {"config", "embedding"}} {
		_, err := runCLI(t, args...)
		assert.ErrorIs(t, err, errNotConfigured, "args %v", args)
	}
}
