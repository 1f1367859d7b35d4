// Package cli provides the recall command-line interface built on cobra.
// It is a driving adapter: commands translate flags and arguments into
// calls on the driving ports, which are injected by the composition root.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
	"github.com/custodia-labs/recall/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// annotationBackend marks commands that need the embedder and the vector store.
const annotationBackend = "recall.backend"

// Options carries the global flags to the initializer.
type Options struct {
	// ConfigDir holds config.toml. Empty means ~/.recall.
	ConfigDir string

	// Owner overrides the configured owner.
	Owner string

	// Verbose enables debug logging.
	Verbose bool

	// Backend is true when the command needs the embedder and the store.
	Backend bool
}

// Initializer wires services before a command runs. The returned cleanup
// runs after the command finishes.
type Initializer func(ctx context.Context, opts Options) (cleanup func(), err error)

var (
	ingestService    driving.IngestService
	retrievalService driving.RetrievalService
	sessionService   driving.SessionService
	insightService   driving.InsightService
	settingsService  driving.SettingsService

	defaultOwner   string
	serverSettings = domain.DefaultSettings().Server
	gatherer       prometheus.Gatherer

	initializer Initializer
	cleanupFn   func()
	globalOpts  Options
)

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Long-term memory for your AI conversations",
	Long: `recall imports chat exports from Claude, ChatGPT, Gemini and Deepseek,
splits them into overlapping chunks and stores their embeddings so that an
assistant can remember past conversations.

Queries understand Italian time references ("ieri", "la settimana scorsa",
"a marzo") and restrict the search to that period when possible.`,
	SilenceUsage:      true,
	PersistentPreRunE: runInitializer,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&globalOpts.Verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&globalOpts.Owner, "owner", "", "owner identifier (defaults to the configured owner)")
	pf.StringVar(&globalOpts.ConfigDir, "config-dir", "", "configuration directory (default ~/.recall)")
}

func runInitializer(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(globalOpts.Verbose)
	if initializer == nil {
		return nil
	}

	opts := globalOpts
	opts.Backend = needsBackend(cmd)
	cleanup, err := initializer(cmd.Context(), opts)
	if err != nil {
		return err
	}
	cleanupFn = cleanup
	return nil
}

// needsBackend reports whether cmd or one of its parents is marked as
// needing the embedder and the store.
func needsBackend(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationBackend] == "true" {
			return true
		}
	}
	return false
}

func backend() map[string]string {
	return map[string]string{annotationBackend: "true"}
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer func() {
		if cleanupFn != nil {
			cleanupFn()
			cleanupFn = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

// SetInitializer registers the function that wires services before each command.
func SetInitializer(fn Initializer) {
	initializer = fn
}

// SetIngestService sets the ingestion service.
func SetIngestService(s driving.IngestService) {
	ingestService = s
}

// SetRetrievalService sets the retrieval service.
func SetRetrievalService(s driving.RetrievalService) {
	retrievalService = s
}

// SetSessionService sets the session service.
func SetSessionService(s driving.SessionService) {
	sessionService = s
}

// SetInsightService sets the mood and temporal service.
func SetInsightService(s driving.InsightService) {
	insightService = s
}

// SetSettingsService sets the settings service.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetDefaultOwner sets the owner used when --owner is not given.
func SetDefaultOwner(owner string) {
	defaultOwner = owner
}

// SetServerSettings sets the HTTP API address and shutdown timeout.
func SetServerSettings(s domain.ServerSettings) {
	serverSettings = s
}

// SetGatherer sets the registry exposed on /metrics.
func SetGatherer(g prometheus.Gatherer) {
	gatherer = g
}

// owner resolves the owner from --owner, then the configuration.
func owner() (string, error) {
	if globalOpts.Owner != "" {
		return globalOpts.Owner, nil
	}
	if defaultOwner != "" {
		return defaultOwner, nil
	}
	return "", fmt.Errorf("%w: no owner; pass --owner or run 'recall config set owner <id>'", domain.ErrInvalidInput)
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// Helper functions for interactive prompts.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads a secret without echo when in is a terminal.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

var errNotConfigured = errors.New("not configured")

// notConfigured reports a missing service in the usual wording.
func notConfigured(service string) error {
	return fmt.Errorf("%s service %w", service, errNotConfigured)
}
