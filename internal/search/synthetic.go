package search

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Entry is one message in the synthetic corpus.
type Entry struct {
	MessageID string
	ChatID    string
	Sender    string
	Body      string
	SentAtMs  int64
}

// Synthetic is the in-memory search backend: fixed-plus-jittered artificial
// latency over a static message table, tiered substring scoring. Used for
// offline development and as the deterministic half of coordinator tests.
type Synthetic struct {
	mu      sync.RWMutex
	entries []Entry

	latency time.Duration
	jitter  time.Duration
	rng     *rand.Rand
}

// NewSynthetic creates a synthetic backend over the given corpus. latency is
// the fixed delay per lookup; jitter adds up to that much more, randomly.
func NewSynthetic(entries []Entry, latency, jitter time.Duration) *Synthetic {
	return &Synthetic{
		entries: entries,
		latency: latency,
		jitter:  jitter,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// DefaultEntries is the canned corpus used when no message table is
// available, such as offline mode before any messages have been sent.
func DefaultEntries() []Entry {
	base := time.Now().Add(-48 * time.Hour).UnixMilli()
	bodies := []struct {
		sender string
		body   string
	}{
		{"ana", "deploy went out clean, no rollbacks"},
		{"ben", "can we deploy the fix before standup?"},
		{"ana", "lunch at the usual place?"},
		{"ben", "the staging database needs a reindex"},
		{"ana", "see you tomorrow at the retro"},
		{"ben", "thanks for reviewing that so fast"},
	}
	entries := make([]Entry, len(bodies))
	for i, b := range bodies {
		entries[i] = Entry{
			MessageID: fmt.Sprintf("seed-%d", i+1),
			ChatID:    "offline",
			Sender:    b.sender,
			Body:      b.body,
			SentAtMs:  base + int64(i)*3_600_000,
		}
	}
	return entries
}

// SetEntries replaces the corpus.
func (s *Synthetic) SetEntries(entries []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
}

// Lookup filters the corpus by tiered substring match, honoring ctx during
// the artificial delay.
func (s *Synthetic) Lookup(ctx context.Context, query string) ([]Result, error) {
	if d := s.delay(); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.RLock()
	entries := s.entries
	s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	results := make([]Result, 0, 8)
	for _, e := range entries {
		score := MatchScore(e.Body, q)
		if score == 0 {
			continue
		}
		results = append(results, Result{
			MessageID: e.MessageID,
			ChatID:    e.ChatID,
			Sender:    e.Sender,
			Snippet:   Snippet(e.Body, q, 80),
			SentAtMs:  e.SentAtMs,
			Score:     score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].SentAtMs > results[j].SentAtMs
	})
	return results, nil
}

func (s *Synthetic) delay() time.Duration {
	d := s.latency
	if s.jitter > 0 {
		s.mu.Lock()
		d += time.Duration(s.rng.Int63n(int64(s.jitter)))
		s.mu.Unlock()
	}
	return d
}

// MatchScore grades how well body matches the lowercased query: prefix
// beats word-prefix beats plain substring; zero means no match.
func MatchScore(body, loweredQuery string) float64 {
	if loweredQuery == "" {
		return 0
	}
	b := strings.ToLower(body)
	switch {
	case strings.HasPrefix(b, loweredQuery):
		return scorePrefix
	case strings.Contains(b, " "+loweredQuery):
		return scoreWordPrefix
	case strings.Contains(b, loweredQuery):
		return scoreSubstring
	default:
		return 0
	}
}

// Snippet extracts a window of body centered on the first match of the
// lowered query, trimmed to at most width runes.
func Snippet(body, loweredQuery string, width int) string {
	if width <= 0 || len(body) <= width {
		return body
	}
	byteIdx := strings.Index(strings.ToLower(body), loweredQuery)
	if byteIdx < 0 {
		byteIdx = 0
	}
	idx := utf8.RuneCountInString(body[:byteIdx])
	start := idx - width/3
	if start < 0 {
		start = 0
	}
	runes := []rune(body)
	if start >= len(runes) {
		start = 0
	}
	end := start + width
	if end > len(runes) {
		end = len(runes)
	}
	out := string(runes[start:end])
	if start > 0 {
		out = "…" + out
	}
	if end < len(runes) {
		out += "…"
	}
	return out
}
