package server

import (
	"context"
	"errors"

	"github.com/parleychat/parley/internal/provider"
	"github.com/parleychat/parley/internal/storage"
)

// ErrNoProvider is returned when every registered provider is unavailable.
var ErrNoProvider = errors.New("no AI provider available")

// AICompleter adapts the provider registry to suggest.Completer, enriching
// completion requests with the chat's persona and recent messages.
type AICompleter struct {
	store     *storage.Store
	providers *provider.Registry
}

// NewAICompleter creates the adapter.
func NewAICompleter(store *storage.Store, providers *provider.Registry) *AICompleter {
	return &AICompleter{store: store, providers: providers}
}

// Complete implements suggest.Completer.
func (a *AICompleter) Complete(ctx context.Context, chatID, prefix string, limit int) ([]string, error) {
	active := a.providers.Active()
	if active == nil {
		return nil, ErrNoProvider
	}

	req := &provider.CompleteRequest{
		Prefix:         prefix,
		MaxSuggestions: limit,
	}
	if chatID != "" {
		if chat, err := a.store.GetChat(ctx, chatID); err == nil {
			req.Persona = chat.Persona
		}
		if msgs, err := a.store.ListMessages(ctx, chatID, 0); err == nil {
			if len(msgs) > replyContextWindow {
				msgs = msgs[len(msgs)-replyContextWindow:]
			}
			for _, m := range msgs {
				req.Recent = append(req.Recent, provider.MessageContext{Sender: m.Sender, Body: m.Body})
			}
		}
	}

	resp, err := active.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Texts, nil
}
