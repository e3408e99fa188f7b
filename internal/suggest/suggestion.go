// Package suggest provides the autosuggest item type, the two lookup
// backends that produce it (synthetic prefix table and remote endpoint),
// and the server-side service that merges chat-history matches with
// AI-generated completions.
//
// Matching policy is deliberately backend-defined: the synthetic backend
// applies strict prefix matching, while message search uses tiered substring
// scoring. The coordinator does not care.
package suggest

import "context"

// Suggestion origins.
const (
	SourceHistory = "history" // drawn from prior messages in the chat
	SourceAI      = "ai"      // generated by a completion provider
	SourceCanned  = "canned"  // static phrase table (synthetic backend)
)

// Suggestion is a single autosuggest candidate.
type Suggestion struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// Response is the wire envelope for GET /api/suggest.
type Response struct {
	Suggestions []Suggestion `json:"suggestions"`
	Query       string       `json:"query"`
}

// History supplies prefix-matching message bodies from stored chat history.
// Implemented by the storage layer.
type History interface {
	MessagePrefixes(ctx context.Context, chatID, prefix string, limit int) ([]HistoryHit, error)
}

// HistoryHit is one aggregated history match.
type HistoryHit struct {
	Text   string
	Count  int   // how many times the body occurred
	LastMs int64 // most recent occurrence
}

// Completer produces AI completion texts for a partial message. Implemented
// by the provider registry; nil when AI is disabled.
type Completer interface {
	Complete(ctx context.Context, chatID, prefix string, limit int) ([]string, error)
}
