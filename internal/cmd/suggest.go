package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/parleychat/parley/internal/suggest"
)

var (
	suggestJSON  bool
	suggestChat  string
	suggestLimit int
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <prefix>",
	Short: "Show suggestions for a partial message",
	Long: `Show the ranked suggestions parleyd would offer for a partially
typed message: history prefix matches merged with AI completions.

Examples:
  parley suggest "see you"
  parley suggest --chat 4f7c... "good"   # Scope history to one chat`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "output results as JSON")
	suggestCmd.Flags().StringVar(&suggestChat, "chat", "", "chat id to scope history matches")
	suggestCmd.Flags().IntVarP(&suggestLimit, "limit", "n", 5, "maximum number of suggestions")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	backend := suggest.NewRemote(cfg.ClientBaseURL(), suggestChat, suggestLimit)
	items, err := backend.Lookup(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if suggestJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(suggest.Response{Suggestions: items, Query: args[0]})
	}

	if len(items) == 0 {
		fmt.Println("no suggestions")
		return nil
	}
	for _, s := range items {
		fmt.Printf("%.2f  %-8s  %s\n", s.Score, s.Source, s.Text)
	}
	return nil
}
