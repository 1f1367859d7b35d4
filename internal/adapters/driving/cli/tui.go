package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for recall.

The TUI searches your memories as you type a question, shows the period and
mood read from it, and lets you switch the embedding provider.

Controls:
  ↑/k, ↓/j      - Navigate memories
  Enter/Space   - Search / Expand a memory
  n             - New search
  Esc           - Back / Cancel
  ?             - Toggle help
  q             - Quit`,
	Annotations: backend(),
	RunE:        runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Recover to print a stack trace after the terminal is restored.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if retrievalService == nil {
		return notConfigured("search")
	}
	ownerID, err := owner()
	if err != nil {
		return err
	}

	app, err := tui.NewApp(&tui.Ports{
		Retrieval: retrievalService,
		Insight:   insightService,
		Settings:  settingsService,
		Owner:     ownerID,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
