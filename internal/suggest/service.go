package suggest

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// Scoring weights: history matches are grounded in what the user actually
// writes and outrank AI completions of similar strength.
const (
	weightHistoryBase = 0.5
	weightFrequency   = 0.3
	weightRecency     = 0.2
	aiScore           = 0.55

	// recencyHalfLife controls how fast an old message's recency component
	// decays.
	recencyHalfLife = 7 * 24 * time.Hour
)

// ServiceConfig configures the suggest service.
type ServiceConfig struct {
	// MaxResults caps returned suggestions. Default 5.
	MaxResults int

	// AITimeout bounds the completion call; history results are returned
	// alone when the provider is slower. Default 2s.
	AITimeout time.Duration

	// Logger for merge decisions. Defaults to slog.Default.
	Logger *slog.Logger
}

// Service produces ranked suggestions for a partial message by merging chat
// history prefix matches with AI completions. It backs the /api/suggest
// endpoint; the synthetic backend replaces it wholesale in offline mode.
type Service struct {
	history    History
	ai         Completer // nil when AI is disabled
	maxResults int
	aiTimeout  time.Duration
	logger     *slog.Logger
}

// NewService creates a Service. ai may be nil.
func NewService(history History, ai Completer, cfg ServiceConfig) *Service {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	if cfg.AITimeout <= 0 {
		cfg.AITimeout = 2 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		history:    history,
		ai:         ai,
		maxResults: cfg.MaxResults,
		aiTimeout:  cfg.AITimeout,
		logger:     logger,
	}
}

// Suggest returns up to MaxResults ranked suggestions for the prefix within
// the given chat. History failures are fatal; AI failures degrade to
// history-only results.
func (s *Service) Suggest(ctx context.Context, chatID, prefix string, limit int) ([]Suggestion, error) {
	if limit <= 0 || limit > s.maxResults {
		limit = s.maxResults
	}

	hits, err := s.history.MessagePrefixes(ctx, chatID, prefix, limit*3)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	merged := make([]Suggestion, 0, len(hits)+limit)
	seen := make(map[string]bool, len(hits))
	for _, h := range hits {
		key := dedupeKey(h.Text)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, Suggestion{
			Text:   h.Text,
			Source: SourceHistory,
			Score:  historyScore(h, now),
		})
	}

	if s.ai != nil {
		aiCtx, cancel := context.WithTimeout(ctx, s.aiTimeout)
		texts, aiErr := s.ai.Complete(aiCtx, chatID, prefix, limit)
		cancel()
		if aiErr != nil {
			s.logger.Warn("ai completion unavailable, serving history only", "error", aiErr)
		}
		for _, t := range texts {
			t = strings.TrimSpace(t)
			key := dedupeKey(t)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, Suggestion{Text: t, Source: SourceAI, Score: aiScore})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Score > merged[j].Score })
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// historyScore combines base weight, capped frequency, and recency decay.
func historyScore(h HistoryHit, now time.Time) float64 {
	freq := float64(h.Count)
	if freq > 5 {
		freq = 5
	}
	score := weightHistoryBase + weightFrequency*(freq/5)

	if h.LastMs > 0 {
		age := now.Sub(time.UnixMilli(h.LastMs))
		if age < 0 {
			age = 0
		}
		decay := 1.0 / (1.0 + age.Hours()/recencyHalfLife.Hours())
		score += weightRecency * decay
	}
	if score > 1 {
		score = 1
	}
	return score
}

func dedupeKey(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}
