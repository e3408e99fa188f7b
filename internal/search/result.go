// Package search provides the message-search item type and the two lookup
// backends that produce it: an in-memory synthetic backend for offline
// development and tests, and a remote backend that queries the parleyd
// search endpoint. Both satisfy query.Backend[Result], so the coordinator
// and everything downstream stay backend-agnostic.
package search

// Result is a single ranked message-search hit. The coordinator treats it as
// opaque; only Score participates in ordering.
type Result struct {
	MessageID string  `json:"message_id"`
	ChatID    string  `json:"chat_id"`
	Sender    string  `json:"sender"`
	Snippet   string  `json:"snippet"`
	SentAtMs  int64   `json:"sent_at_ms"`
	Score     float64 `json:"score"`
}

// Response is the wire envelope for GET /api/search.
type Response struct {
	Items []Result `json:"items"`
	Total int      `json:"total"`
	Query string   `json:"query"`
}

// Match-quality tiers. Substring matching with graded relevance: a message
// that starts with the query outranks one that merely contains it.
const (
	scorePrefix     = 1.0
	scoreWordPrefix = 0.8
	scoreSubstring  = 0.6
)
