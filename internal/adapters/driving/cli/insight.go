package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall/internal/temporal"
)

var (
	moodJSON bool
	whenJSON bool
)

var moodCmd = &cobra.Command{
	Use:   "mood <message>",
	Short: "Estimate the mood of a message",
	Long: `Reads the emotional tone of an Italian message from keyword matches.
Negations within a few characters ("non sono felice") flip the reading.
Messages shorter than three words are not analysed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMood,
}

var whenCmd = &cobra.Command{
	Use:   "when <message>",
	Short: "Show the period a message refers to",
	Long: `Extracts a calendar range from Italian time references such as
"ieri", "tre giorni fa", "la settimana scorsa", "lunedì" or "a marzo".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWhen,
}

func init() {
	moodCmd.Flags().BoolVar(&moodJSON, "json", false, "output the analysis as JSON")
	whenCmd.Flags().BoolVar(&whenJSON, "json", false, "output the range as JSON")
	rootCmd.AddCommand(moodCmd)
	rootCmd.AddCommand(whenCmd)
}

func runMood(cmd *cobra.Command, args []string) error {
	if insightService == nil {
		return notConfigured("insight")
	}

	analysis := insightService.AnalyzeMood(strings.Join(args, " "))
	if moodJSON {
		return printJSON(cmd, analysis)
	}
	if analysis == nil {
		cmd.Println("No mood detected.")
		return nil
	}

	cmd.Printf("Mood: %s (%s)\n", analysis.Mood, analysis.Mood.Description())
	cmd.Printf("Intensity: %.2f\n", analysis.Intensity)
	cmd.Printf("Confidence: %.2f\n", analysis.Confidence)
	if len(analysis.Keywords) > 0 {
		cmd.Printf("Keywords: %s\n", strings.Join(analysis.Keywords, ", "))
	}
	return nil
}

func runWhen(cmd *cobra.Command, args []string) error {
	if insightService == nil {
		return notConfigured("insight")
	}

	now := time.Now()
	rng := insightService.ParseTemporal(strings.Join(args, " "), now)
	if whenJSON {
		return printJSON(cmd, rng)
	}
	if rng == nil {
		cmd.Println("No time reference found.")
		return nil
	}

	cmd.Printf("Period: %s\n", rng.Description)
	cmd.Printf("From: %s %s\n", temporal.FormatDate(rng.From), temporal.FormatTime(rng.From))
	cmd.Printf("To: %s %s\n", temporal.FormatDate(rng.To), temporal.FormatTime(rng.To))
	if rng.Fuzzy {
		cmd.Println("(approximate)")
	}
	return nil
}
