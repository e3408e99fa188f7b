package cmd

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/parleychat/parley/internal/config"
	"github.com/parleychat/parley/internal/logging"
	"github.com/parleychat/parley/internal/provider"
	"github.com/parleychat/parley/internal/server"
	"github.com/parleychat/parley/internal/storage"
	"github.com/parleychat/parley/internal/suggest"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the parleyd daemon",
	Long: `Run the parleyd daemon: the HTTP API that owns the message store
and serves search, suggestions, personas, and games.

Examples:
  parley serve                  # Listen on the configured address
  parley serve --addr :9000     # Override the listen address`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

// ExecuteServe runs the serve command directly; the parleyd binary uses it.
func ExecuteServe() error {
	return runServe(serveCmd, nil)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := config.DefaultPaths().EnsureDirectories(); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	logger, logCloser, err := logging.Open(cfg.Server.LogLevel, cfg.Server.LogFile)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	store, err := storage.Open(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	providers, err := buildProviders(cfg)
	if err != nil {
		return err
	}

	var completer suggest.Completer
	if cfg.Suggest.UseAI {
		completer = server.NewAICompleter(store, providers)
	}
	suggester := suggest.NewService(store, completer, suggest.ServiceConfig{
		MaxResults: cfg.Suggest.MaxResults,
		Logger:     logger,
	})

	srv := server.New(server.Options{
		Store:     store,
		Providers: providers,
		Suggester: suggester,
		Logger:    logger,
	})

	addr := serveAddr
	if addr == "" {
		addr = cfg.ServerAddr()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("parleyd starting", "addr", addr, "db", cfg.DatabasePath())
	return srv.Serve(ctx, ln)
}

// buildProviders assembles the AI provider registry from config. "auto"
// pins openai: when no key is present the registry reports no provider and
// personas fall back to their canned lines. The scripted provider must be
// chosen explicitly; it exists for development and tests.
func buildProviders(cfg *config.Config) (*provider.Registry, error) {
	var openaiOpts []provider.OpenAIOption
	if cfg.AI.Model != "" {
		openaiOpts = append(openaiOpts, provider.WithModel(cfg.AI.Model))
	}
	if cfg.AI.BaseURL != "" {
		openaiOpts = append(openaiOpts, provider.WithBaseURL(cfg.AI.BaseURL))
	}

	reg := provider.NewRegistry(
		provider.NewOpenAIProvider(openaiOpts...),
		&provider.Scripted{
			Completions: scriptedCompletions(),
			Latency:     50 * time.Millisecond,
		},
	)
	preferred := cfg.AI.Provider
	if preferred == "auto" {
		preferred = "openai"
	}
	if err := reg.SetPreferred(preferred); err != nil {
		return nil, err
	}
	return reg, nil
}

func scriptedCompletions() map[string][]string {
	return map[string][]string{
		"good":    {"good morning!", "good night"},
		"see you": {"see you at noon", "see you tomorrow"},
		"how":     {"how are you doing today?", "how was your weekend?"},
		"thanks":  {"thanks a lot!", "thanks, talk soon"},
	}
}
