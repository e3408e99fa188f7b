package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/parleychat/parley/internal/search"
	"github.com/parleychat/parley/internal/suggest"
)

// scanLimit bounds how many LIKE candidates are pulled before scoring in Go.
// A LIKE pre-filter plus tiered in-process scoring mirrors the FTS fallback
// path: cheap to run, good enough for local history sizes.
const scanLimit = 500

// SearchQuery parameterizes SearchMessages.
type SearchQuery struct {
	Text   string
	ChatID string // optional scope to one chat
	Limit  int    // default 20
}

// SearchMessages runs a ranked substring search over message bodies. It
// returns the ranked page and the total number of matches.
func (s *Store) SearchMessages(ctx context.Context, q SearchQuery) ([]search.Result, int, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return []search.Result{}, 0, nil
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	sqlq := `
		SELECT message_id, chat_id, sender, body, sent_ms
		FROM messages
		WHERE body LIKE ? ESCAPE '\'
	`
	args := []any{"%" + escapeLike(text) + "%"}
	if q.ChatID != "" {
		sqlq += " AND chat_id = ?"
		args = append(args, q.ChatID)
	}
	sqlq += " ORDER BY sent_ms DESC LIMIT ?"
	args = append(args, scanLimit)

	rows, err := s.db.QueryContext(ctx, sqlq, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search messages: %w", err)
	}
	defer rows.Close()

	lowered := strings.ToLower(text)
	var results []search.Result
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.MessageID, &m.ChatID, &m.Sender, &m.Body, &m.SentMs); err != nil {
			return nil, 0, fmt.Errorf("scan search hit: %w", err)
		}
		score := search.MatchScore(m.Body, lowered)
		if score == 0 {
			// LIKE is case-insensitive for ASCII only; trust the scorer.
			continue
		}
		results = append(results, search.Result{
			MessageID: m.MessageID,
			ChatID:    m.ChatID,
			Sender:    m.Sender,
			Snippet:   search.Snippet(m.Body, lowered, 80),
			SentAtMs:  m.SentMs,
			Score:     score,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate search hits: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].SentAtMs > results[j].SentAtMs
	})

	total := len(results)
	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []search.Result{}
	}
	return results, total, nil
}

// MessagePrefixes implements suggest.History: it aggregates message bodies
// in a chat that start with the given prefix, grouped case-insensitively,
// most frequent and most recent first.
func (s *Store) MessagePrefixes(ctx context.Context, chatID, prefix string, limit int) ([]suggest.HistoryHit, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 15
	}

	sqlq := `
		SELECT body, COUNT(*) AS cnt, MAX(sent_ms) AS last_ms
		FROM messages
		WHERE body LIKE ? ESCAPE '\'
	`
	args := []any{escapeLike(prefix) + "%"}
	if chatID != "" {
		sqlq += " AND chat_id = ?"
		args = append(args, chatID)
	}
	sqlq += `
		GROUP BY lower(body)
		ORDER BY cnt DESC, last_ms DESC
		LIMIT ?
	`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sqlq, args...)
	if err != nil {
		return nil, fmt.Errorf("message prefixes: %w", err)
	}
	defer rows.Close()

	var hits []suggest.HistoryHit
	for rows.Next() {
		var h suggest.HistoryHit
		if err := rows.Scan(&h.Text, &h.Count, &h.LastMs); err != nil {
			return nil, fmt.Errorf("scan prefix hit: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
