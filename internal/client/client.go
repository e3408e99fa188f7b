// Package client is the thin HTTP client the TUI and one-shot CLI commands
// use to talk to parleyd. Search and suggest lookups go through the remote
// backends in internal/search and internal/suggest instead; this client
// covers the chat, persona, and game surfaces.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/parleychat/parley/internal/game"
	"github.com/parleychat/parley/internal/persona"
	"github.com/parleychat/parley/internal/storage"
)

// Client talks to one parleyd instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given base URL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Ping checks the daemon liveness endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/", nil, nil)
}

// Version returns the daemon version.
func (c *Client) Version(ctx context.Context) (string, error) {
	var out struct {
		Version string `json:"version"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/version", nil, &out); err != nil {
		return "", err
	}
	return out.Version, nil
}

// CreateChat creates a chat, optionally bound to a persona.
func (c *Client) CreateChat(ctx context.Context, title, personaID string) (*storage.Chat, error) {
	var chat storage.Chat
	err := c.do(ctx, http.MethodPost, "/api/chats",
		map[string]string{"title": title, "persona": personaID}, &chat)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// ListChats returns all chats, newest first.
func (c *Client) ListChats(ctx context.Context) ([]storage.Chat, error) {
	var out struct {
		Chats []storage.Chat `json:"chats"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/chats", nil, &out); err != nil {
		return nil, err
	}
	return out.Chats, nil
}

// ListMessages returns a chat's messages, oldest first.
func (c *Client) ListMessages(ctx context.Context, chatID string) ([]storage.Message, error) {
	var out struct {
		Messages []storage.Message `json:"messages"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/chats/"+chatID+"/messages", nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// SendResult is the response to SendMessage: the stored message plus the
// persona reply, when the chat has one.
type SendResult struct {
	Message storage.Message  `json:"message"`
	Reply   *storage.Message `json:"reply"`
}

// SendMessage posts a message to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID, sender, body string) (*SendResult, error) {
	var out SendResult
	err := c.do(ctx, http.MethodPost, "/api/chats/"+chatID+"/messages",
		map[string]string{"sender": sender, "body": body}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Personas lists the available chat personas.
func (c *Client) Personas(ctx context.Context) ([]persona.Persona, error) {
	var out struct {
		Personas []persona.Persona `json:"personas"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/personas", nil, &out); err != nil {
		return nil, err
	}
	return out.Personas, nil
}

// StartGame opens a new word-guess session.
func (c *Client) StartGame(ctx context.Context) (*game.Session, error) {
	var sess game.Session
	if err := c.do(ctx, http.MethodPost, "/api/games", nil, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// GuessWord submits a guess for a session.
func (c *Client) GuessWord(ctx context.Context, gameID, word string) (*game.Session, error) {
	var sess game.Session
	err := c.do(ctx, http.MethodPost, "/api/games/"+gameID+"/guess",
		map[string]string{"word": word}, &sess)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &envelope) == nil && envelope.Error != "" {
			return fmt.Errorf("parleyd: %s", envelope.Error)
		}
		return fmt.Errorf("parleyd: status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
