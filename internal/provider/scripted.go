package provider

import (
	"context"
	"strings"
	"time"
)

// Scripted is the offline provider: it completes from a fixed phrase table
// and replies with a fixed line. Always available; used in development, in
// tests, and as the registry's last resort.
type Scripted struct {
	// Completions maps a lowercase prefix to its canned completions.
	// Lookup walks the prefix map by longest match first.
	Completions map[string][]string

	// ReplyText is returned verbatim by Reply. Empty means echo.
	ReplyText string

	// Latency, when set, delays each call (context-aware), for exercising
	// slow-provider paths in tests.
	Latency time.Duration
}

// Name implements Provider.
func (s *Scripted) Name() string { return "scripted" }

// Available implements Provider.
func (s *Scripted) Available() bool { return true }

// Complete implements Provider.
func (s *Scripted) Complete(ctx context.Context, req *CompleteRequest) (*CompleteResponse, error) {
	start := time.Now()
	if err := s.sleep(ctx); err != nil {
		return nil, err
	}

	prefix := strings.ToLower(strings.TrimSpace(req.Prefix))
	var texts []string
	best := -1
	for key, candidates := range s.Completions {
		if strings.HasPrefix(prefix, key) && len(key) > best {
			best = len(key)
			texts = candidates
		}
	}
	n := req.MaxSuggestions
	if n > 0 && len(texts) > n {
		texts = texts[:n]
	}
	return &CompleteResponse{
		ProviderName: s.Name(),
		Texts:        texts,
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}

// Reply implements Provider.
func (s *Scripted) Reply(ctx context.Context, req *ReplyRequest) (*ReplyResponse, error) {
	start := time.Now()
	if err := s.sleep(ctx); err != nil {
		return nil, err
	}
	text := s.ReplyText
	if text == "" {
		text = req.UserMessage
	}
	return &ReplyResponse{
		ProviderName: s.Name(),
		Text:         text,
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}

func (s *Scripted) sleep(ctx context.Context) error {
	if s.Latency <= 0 {
		return nil
	}
	timer := time.NewTimer(s.Latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
