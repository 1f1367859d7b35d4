package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall/internal/logger"
	"github.com/custodia-labs/recall/internal/parsers"
)

var (
	splitMaxMB float64
	splitOut   string
)

var splitCmd = &cobra.Command{
	Use:   "split <conversations.json>",
	Short: "Split a large Claude export into smaller files",
	Long: `Divides a Claude conversations export into parts of at most --max-mb
megabytes, keeping each conversation whole. A conversation larger than the
limit is written to a part of its own.

Parts are named claude-part-01.json, claude-part-02.json, ... and written to
--out, which defaults to a claude-split directory next to the input. An
existing output directory is replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().Float64Var(&splitMaxMB, "max-mb", 3, "maximum size of one part in megabytes")
	splitCmd.Flags().StringVarP(&splitOut, "out", "o", "", "output directory (default <input dir>/claude-split)")
	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	input := args[0]
	content, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", input, err)
	}

	maxBytes := int(splitMaxMB * 1024 * 1024)
	parts, err := parsers.SplitExport(content, maxBytes)
	if err != nil {
		return fmt.Errorf("splitting %s: %w", input, err)
	}

	out := splitOut
	if out == "" {
		out = filepath.Join(filepath.Dir(input), "claude-split")
	}
	if err := os.RemoveAll(out); err != nil {
		return fmt.Errorf("clearing %s: %w", out, err)
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}

	for i, part := range parts {
		name := parsers.PartName(i + 1)
		if err := os.WriteFile(filepath.Join(out, name), part, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		marker := ""
		if len(part) > maxBytes {
			marker = " (single oversize conversation)"
		}
		cmd.Printf("  %s %.2fMB%s\n", name, float64(len(part))/1024/1024, marker)
	}

	logger.Debug("split %s into %d parts", input, len(parts))
	cmd.Printf("Wrote %d files to %s\n", len(parts), out)
	return nil
}
