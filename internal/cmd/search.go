package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/parleychat/parley/internal/search"
)

var (
	searchJSON  bool
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search message history",
	Long: `Search stored messages for matching text, ranked by match quality
and recency. Requires a running parleyd.

Examples:
  parley search "deploy"          # Ranked matches across all chats
  parley search --json lunch      # Output as JSON
  parley search --limit 50 noon   # Return up to 50 results`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "maximum number of results")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	backend := search.NewRemote(cfg.ClientBaseURL(), searchLimit)
	results, err := backend.Lookup(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(search.Response{Items: results, Total: len(results), Query: args[0]})
	}

	if len(results) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, r := range results {
		when := time.UnixMilli(r.SentAtMs).Format("2006-01-02 15:04")
		fmt.Printf("%s  %-10s  %s\n", when, r.Sender, r.Snippet)
	}
	return nil
}
