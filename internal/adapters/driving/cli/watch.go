package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall/internal/adapters/driving/watch"
	"github.com/custodia-labs/recall/internal/core/domain"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Import exports as they appear in a directory",
	Long: `Watches a directory and imports every .json, .md or .txt file that is
created or written there. Bursts of writes to the same file are debounced.
Runs until interrupted.`,
	Args:        cobra.ExactArgs(1),
	Annotations: backend(),
	RunE:        runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before a file is imported")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return notConfigured("ingest")
	}
	ownerID, err := owner()
	if err != nil {
		return err
	}

	w, err := watch.New(ingestService, ownerID,
		watch.WithDebounce(watchDebounce),
		watch.WithResultFunc(func(path string, res *domain.IngestResult, err error) {
			name := filepath.Base(path)
			switch {
			case err != nil:
				cmd.PrintErrf("%s: %v\n", name, err)
			case !res.Success:
				cmd.PrintErrf("%s: %s\n", name, res.Error)
			default:
				cmd.Printf("%s: %d conversations, %d chunks\n", name, res.ConversationsProcessed, res.ChunksCreated)
			}
		}),
	)
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	if err := w.Run(cmd.Context(), args[0]); err != nil && !errors.Is(err, cmd.Context().Err()) {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
