package cmd

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/parleychat/parley/internal/client"
	"github.com/parleychat/parley/internal/query"
	"github.com/parleychat/parley/internal/search"
	"github.com/parleychat/parley/internal/storage"
	"github.com/parleychat/parley/internal/suggest"
	"github.com/parleychat/parley/internal/ui"
)

var (
	chatID      string
	chatTitle   string
	chatPersona string
	chatSender  string
	chatOffline bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the chat TUI",
	Long: `Open the chat TUI against a running parleyd.

Joins the chat named by --chat, or creates a new one from --title and
--persona. With --offline no daemon is needed: messages stay local and
search/suggestions run against built-in synthetic backends.

Examples:
  parley chat --title "weekend plans"
  parley chat --title "holmes" --persona sherlock
  parley chat --chat 4f7c...            # rejoin an existing chat
  parley chat --offline                 # no daemon`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatID, "chat", "", "existing chat id to join")
	chatCmd.Flags().StringVar(&chatTitle, "title", "parley", "title for a new chat")
	chatCmd.Flags().StringVar(&chatPersona, "persona", "", "persona for a new chat")
	chatCmd.Flags().StringVar(&chatSender, "sender", "me", "sender name for outgoing messages")
	chatCmd.Flags().BoolVar(&chatOffline, "offline", false, "run without a daemon")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if chatOffline {
		cfg.Client.Offline = true
	}

	opts := ui.Options{
		Sender:         chatSender,
		SearchOptions:  coordinatorOptions(cfg.Search.MinChars, cfg.Search.DebounceMs, cfg.Search.MaxResults),
		SuggestOptions: coordinatorOptions(cfg.Suggest.MinChars, cfg.Suggest.DebounceMs, cfg.Suggest.MaxResults),
	}

	if cfg.Client.Offline {
		opts.Chat = storage.Chat{ChatID: "offline", Title: chatTitle}
		opts.SearchBackends = query.NewSelector[search.Result](
			search.NewSynthetic(search.DefaultEntries(), 80*time.Millisecond, 40*time.Millisecond), true)
		opts.SuggestBackends = query.NewSelector[suggest.Suggestion](
			suggest.NewSynthetic(suggest.DefaultPhrases(), 60*time.Millisecond, 30*time.Millisecond), true)
	} else {
		api := client.New(cfg.ClientBaseURL(), time.Duration(cfg.Client.RequestTimeoutMs)*time.Millisecond)

		ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
		defer cancel()
		if err := api.Ping(ctx); err != nil {
			return fmt.Errorf("parleyd is not reachable at %s (start it with `parley serve`): %w",
				cfg.ClientBaseURL(), err)
		}

		chat, err := resolveChat(ctx, api)
		if err != nil {
			return err
		}

		opts.API = api
		opts.Chat = *chat
		opts.SearchBackends = query.NewSelector[search.Result](
			search.NewRemote(cfg.ClientBaseURL(), cfg.Search.MaxResults), false)
		opts.SuggestBackends = query.NewSelector[suggest.Suggestion](
			suggest.NewRemote(cfg.ClientBaseURL(), chat.ChatID, cfg.Suggest.MaxResults), false)
	}

	p := tea.NewProgram(ui.New(opts), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func resolveChat(ctx context.Context, api *client.Client) (*storage.Chat, error) {
	if chatID == "" {
		return api.CreateChat(ctx, chatTitle, chatPersona)
	}

	chats, err := api.ListChats(ctx)
	if err != nil {
		return nil, err
	}
	for i := range chats {
		if chats[i].ChatID == chatID {
			return &chats[i], nil
		}
	}
	return nil, fmt.Errorf("chat %s not found", chatID)
}

func coordinatorOptions(minChars, debounceMs, maxResults int) query.Options {
	return query.Options{
		MinChars:      minChars,
		DebounceDelay: time.Duration(debounceMs) * time.Millisecond,
		MaxResults:    maxResults,
	}
}
