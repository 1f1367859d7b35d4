package cli

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall/internal/config"
	"github.com/custodia-labs/recall/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change the values stored in config.toml.

Stored values override the built-in defaults; environment variables such as
CLOUDFLARE_API_TOKEN or DATABASE_URL override both.`,
	RunE: runConfigList,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored values",
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a stored value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a value",
	Long: `Store a value in config.toml. The change is rejected when the resulting
configuration is invalid.

Keys:
  owner, log_level, log_pretty
  embedding.provider, embedding.model, embedding.base_url, embedding.api_key,
  embedding.account_id, embedding.dimensions, embedding.requests_per_second,
  embedding.max_retries
  store.kind, store.data_dir, store.database_url
  chunker.chunk_size, chunker.overlap
  ingest.batch_size, ingest.workers, ingest.fallback_plaintext
  server.addr, server.shutdown_timeout`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a stored value so the default applies",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE:  runConfigPath,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and ping the embedding provider",
	RunE:  runConfigCheck,
}

var configEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider",
	Long:  `Choose an embedding provider, enter its credentials and check that it answers.`,
	RunE:  runConfigEmbedding,
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configEmbeddingCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	entries := settingsService.Entries()
	if len(entries) == 0 {
		cmd.Println("No values stored; defaults apply.")
		cmd.Printf("Config file: %s\n", settingsService.Path())
		return nil
	}

	for _, e := range entries {
		cmd.Printf("%s = %s\n", e.Key, config.Display(e.Key, e.Value))
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}
	key := args[0]
	if !config.IsKnownKey(key) {
		return fmt.Errorf("%w: unknown key %q", domain.ErrInvalidInput, key)
	}

	for _, e := range settingsService.Entries() {
		if e.Key == key {
			cmd.Println(config.Display(e.Key, e.Value))
			return nil
		}
	}
	cmd.Printf("%s is not set; the default applies.\n", key)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}
	key, raw := args[0], args[1]
	if err := settingsService.Set(key, raw); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("%s = %s\n", key, config.Display(key, raw))
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}
	if err := settingsService.Unset(args[0]); err != nil {
		return fmt.Errorf("failed to unset %s: %w", args[0], err)
	}
	cmd.Printf("Removed %s\n", args[0])
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}
	cmd.Println(settingsService.Path())
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Configuration: %v\n", err)
		cmd.Println("Run 'recall config embedding' to fix configuration issues.")
		return err
	}
	cmd.Println("Configuration: OK")

	cmd.Print("Embedding provider: ")
	if err := settingsService.ValidateEmbeddingConfig(cmd.Context()); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")
	return nil
}

func runConfigEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}
	return configureEmbeddingProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllAIProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selected := providers[idx-1]

	cmd.Print("Enter model name [provider default]: ")
	model := readLine(reader)

	if selected == domain.AIProviderCloudflare {
		cmd.Print("Enter Cloudflare account ID: ")
		account := readLine(reader)
		if account == "" {
			return errors.New("account ID is required for Cloudflare")
		}
		if err := settingsService.Set(config.KeyEmbeddingAccountID, account); err != nil {
			return fmt.Errorf("failed to save account ID: %w", err)
		}
	}

	if selected.IsLocal() {
		cmd.Print("Enter base URL [http://localhost:11434]: ")
		if baseURL := readLine(reader); baseURL != "" {
			if err := settingsService.Set(config.KeyEmbeddingBaseURL, baseURL); err != nil {
				return fmt.Errorf("failed to save base URL: %w", err)
			}
		}
	}

	var apiKey string
	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(cmd.Context()); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	if model == "" {
		model = "default model"
	}
	cmd.Printf("Embedding provider configured: %s (%s)\n", selected.Description(), model)
	return nil
}
