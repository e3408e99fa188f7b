// Package server implements the parleyd HTTP API: chat storage, message
// search, suggestions, personas, and game sessions, served over gin.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/parleychat/parley/internal/game"
	"github.com/parleychat/parley/internal/persona"
	"github.com/parleychat/parley/internal/provider"
	"github.com/parleychat/parley/internal/storage"
	"github.com/parleychat/parley/internal/suggest"
	"github.com/parleychat/parley/internal/version"
)

// Server owns the HTTP API state.
type Server struct {
	store     *storage.Store
	providers *provider.Registry
	games     *game.Registry
	suggester *suggest.Service
	logger    *slog.Logger
}

// Options configures New.
type Options struct {
	Store     *storage.Store
	Providers *provider.Registry // may be nil: canned replies only
	Suggester *suggest.Service
	Logger    *slog.Logger
}

// New creates the server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:     opts.Store,
		providers: opts.Providers,
		games:     game.NewRegistry(),
		suggester: opts.Suggester,
		logger:    logger,
	}
}

// GenerateRoutes builds the gin handler with all API routes mounted.
func (s *Server) GenerateRoutes() http.Handler {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowWildcard = true
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Authorization", "Content-Type", "User-Agent", "Accept"}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		gin.Recovery(),
		cors.New(corsConfig),
		s.requestLogger(),
	)

	r.HEAD("/", func(c *gin.Context) { c.String(http.StatusOK, "Parley is running") })
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "Parley is running") })
	r.GET("/api/version", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"version": version.Version}) })

	r.GET("/api/search", s.SearchHandler)
	r.GET("/api/suggest", s.SuggestHandler)

	r.POST("/api/chats", s.CreateChatHandler)
	r.GET("/api/chats", s.ListChatsHandler)
	r.GET("/api/chats/:id", s.GetChatHandler)
	r.DELETE("/api/chats/:id", s.DeleteChatHandler)
	r.GET("/api/chats/:id/messages", s.ListMessagesHandler)
	r.POST("/api/chats/:id/messages", s.CreateMessageHandler)

	r.GET("/api/personas", s.ListPersonasHandler)

	r.POST("/api/games", s.CreateGameHandler)
	r.GET("/api/games/:id", s.GetGameHandler)
	r.POST("/api/games/:id/guess", s.GuessHandler)

	return r
}

// Serve runs the HTTP server on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s.GenerateRoutes()}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// SearchHandler serves GET /api/search?q=&chat=&limit=.
func (s *Server) SearchHandler(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	results, total, err := s.store.SearchMessages(c.Request.Context(), storage.SearchQuery{
		Text:   q,
		ChatID: c.Query("chat"),
		Limit:  intQuery(c, "limit", 0),
	})
	if err != nil {
		s.logger.Error("search failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": results, "total": total, "query": q})
}

// SuggestHandler serves GET /api/suggest?q=&chat=&limit=.
func (s *Server) SuggestHandler(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	items, err := s.suggester.Suggest(c.Request.Context(), c.Query("chat"), q, intQuery(c, "limit", 0))
	if err != nil {
		s.logger.Error("suggest failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if items == nil {
		items = []suggest.Suggestion{}
	}

	c.JSON(http.StatusOK, suggest.Response{Suggestions: items, Query: q})
}

// ListPersonasHandler serves GET /api/personas.
func (s *Server) ListPersonasHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"personas": persona.List()})
}

func intQuery(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
