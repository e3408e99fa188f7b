// Package provider implements AI adapters for message completion and
// persona replies. Providers are interchangeable behind one interface; the
// registry picks the first available one unless configuration names an
// explicit choice.
package provider

import (
	"context"
	"time"
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 10 * time.Second

// MessageContext is one prior message passed as conversation context.
type MessageContext struct {
	Sender string
	Body   string
}

// CompleteRequest asks for completions of a partially typed message.
type CompleteRequest struct {
	Prefix         string
	Recent         []MessageContext
	Persona        string // persona id of the chat, empty for plain chats
	MaxSuggestions int
}

// CompleteResponse carries completion candidates.
type CompleteResponse struct {
	ProviderName string
	Texts        []string
	LatencyMs    int64
}

// ReplyRequest asks for a persona's reply to the latest user message.
type ReplyRequest struct {
	SystemPrompt string
	Recent       []MessageContext
	UserMessage  string
}

// ReplyResponse carries the generated reply.
type ReplyResponse struct {
	ProviderName string
	Text         string
	LatencyMs    int64
}

// Provider is an AI backend.
type Provider interface {
	// Name returns the provider name (e.g. "openai", "scripted").
	Name() string

	// Available reports whether the provider can serve requests (API key
	// present, endpoint configured).
	Available() bool

	// Complete produces up to MaxSuggestions completions of req.Prefix.
	Complete(ctx context.Context, req *CompleteRequest) (*CompleteResponse, error)

	// Reply produces a persona reply to req.UserMessage.
	Reply(ctx context.Context, req *ReplyRequest) (*ReplyResponse, error)
}
