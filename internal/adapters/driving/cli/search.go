package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall/internal/core/domain"
	"github.com/custodia-labs/recall/internal/temporal"
)

var (
	searchJSON    bool
	searchMessage string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search your memories",
	Long: `Embeds the query and returns the most similar chunks.

When the message (or the query itself) mentions a period such as "ieri" or
"la settimana scorsa", the search is restricted to that period. If nothing
was saved then, the closest memories from any time are shown instead.`,
	Args:        cobra.ExactArgs(1),
	Annotations: backend(),
	RunE:        runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVarP(&searchMessage, "message", "m", "",
		"message to read the time reference from (defaults to the query)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return notConfigured("search")
	}
	ownerID, err := owner()
	if err != nil {
		return err
	}

	now := time.Now()
	req := domain.RetrieveRequest{Query: args[0], OwnerID: ownerID, Message: searchMessage}
	res, err := retrievalService.RetrieveForMessage(cmd.Context(), req, now)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, res)
	}

	var rng *domain.TemporalRange
	if insightService != nil {
		msg := searchMessage
		if msg == "" {
			msg = args[0]
		}
		rng = insightService.ParseTemporal(msg, now)
	}
	return outputSearchTable(cmd, res, rng)
}

func outputSearchTable(cmd *cobra.Command, res *domain.RetrievalResult, rng *domain.TemporalRange) error {
	if rng != nil {
		cmd.Printf("Period: %s (%s to %s)\n", rng.Description, temporal.FormatDate(rng.From), temporal.FormatDate(rng.To))
	}
	if res.HadTemporalMiss {
		cmd.Println("Nothing was saved in that period; showing the closest memories.")
	}

	if len(res.Content) == 0 {
		cmd.Println("No memories found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range res.Content {
		r := &res.Content[i]
		title := r.Title
		if title == "" {
			title = r.ConversationID
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, r.Similarity)
		meta := string(r.Source)
		if r.CreatedAt != nil {
			meta += ", " + temporal.FormatDate(*r.CreatedAt) + " " + temporal.FormatTime(*r.CreatedAt)
		}
		cmd.Printf("      %s\n", meta)
		cmd.Printf("      %s\n", snippet(r.Content, 200))
		cmd.Println()
	}
	return nil
}

// snippet flattens whitespace and cuts s to n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
