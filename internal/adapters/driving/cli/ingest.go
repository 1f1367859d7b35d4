package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall/internal/adapters/driving/watch"
	"github.com/custodia-labs/recall/internal/core/domain"
)

var ingestJSON bool

var ingestCmd = &cobra.Command{
	Use:   "ingest <file|dir>...",
	Short: "Import chat exports into memory",
	Long: `Parses chat exports, splits them into chunks, embeds them and stores
them for the owner.

Claude and ChatGPT JSON exports and Markdown transcripts are recognised.
Other text is stored as a plain document. Directories are scanned one level
deep for .json, .md and .txt files; hidden files are skipped.

Re-importing the same export replaces the chunks stored before.`,
	Args:        cobra.MinimumNArgs(1),
	Annotations: backend(),
	RunE:        runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return notConfigured("ingest")
	}
	ownerID, err := owner()
	if err != nil {
		return err
	}

	files, err := collectUploads(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no importable files in %s", domain.ErrInvalidInput, strings.Join(args, ", "))
	}

	res, err := ingestService.Ingest(cmd.Context(), domain.IngestRequest{OwnerID: ownerID, Files: files})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if ingestJSON {
		if err := printJSON(cmd, res); err != nil {
			return err
		}
	} else {
		cmd.Printf("Imported %d conversations into %d chunks from %d files.\n",
			res.ConversationsProcessed, res.ChunksCreated, len(files))
		if res.FilesFailed > 0 {
			cmd.Printf("%d files could not be parsed.\n", res.FilesFailed)
		}
	}

	if !res.Success {
		return fmt.Errorf("ingest failed: %s", res.Error)
	}
	return nil
}

// collectUploads reads files and the importable files of directories.
func collectUploads(paths []string) ([]domain.Upload, error) {
	var uploads []domain.Upload
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}

		if !info.IsDir() {
			u, err := readUpload(p)
			if err != nil {
				return nil, err
			}
			uploads = append(uploads, u)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		for _, e := range entries {
			if e.IsDir() || !importable(e.Name()) {
				continue
			}
			u, err := readUpload(filepath.Join(p, e.Name()))
			if err != nil {
				return nil, err
			}
			uploads = append(uploads, u)
		}
	}
	return uploads, nil
}

func importable(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return slices.Contains(watch.DefaultExtensions, strings.ToLower(filepath.Ext(name)))
}

func readUpload(path string) (domain.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Upload{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return domain.Upload{Content: string(data), Filename: filepath.Base(path)}, nil
}
