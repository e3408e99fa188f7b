package suggest

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"
)

// Synthetic is the in-memory suggest backend: strict prefix matching over a
// static phrase table, with fixed-plus-jittered artificial latency. Used
// offline and in tests.
type Synthetic struct {
	mu      sync.RWMutex
	phrases []string

	latency time.Duration
	jitter  time.Duration
	rng     *rand.Rand
}

// NewSynthetic creates a synthetic backend over the given phrase table.
func NewSynthetic(phrases []string, latency, jitter time.Duration) *Synthetic {
	return &Synthetic{
		phrases: phrases,
		latency: latency,
		jitter:  jitter,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// DefaultPhrases is the canned table used when no corpus is configured.
func DefaultPhrases() []string {
	return []string{
		"good morning!",
		"good night",
		"how are you doing today?",
		"how was your weekend?",
		"sounds good to me",
		"sorry, I was away from my desk",
		"let me check and get back to you",
		"let's catch up later",
		"thanks a lot!",
		"thank you so much",
		"see you tomorrow",
		"can we reschedule?",
	}
}

// Lookup returns phrases that start with the query, case-insensitively,
// ranked by how much of the phrase the prefix already covers.
func (s *Synthetic) Lookup(ctx context.Context, query string) ([]Suggestion, error) {
	d := s.latency
	if s.jitter > 0 {
		s.mu.Lock()
		d += time.Duration(s.rng.Int63n(int64(s.jitter)))
		s.mu.Unlock()
	}
	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []Suggestion{}, nil
	}

	s.mu.RLock()
	phrases := s.phrases
	s.mu.RUnlock()

	out := make([]Suggestion, 0, 8)
	for _, p := range phrases {
		if !strings.HasPrefix(strings.ToLower(p), q) {
			continue
		}
		out = append(out, Suggestion{
			Text:   p,
			Source: SourceCanned,
			Score:  float64(len(q)) / float64(len(p)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}
