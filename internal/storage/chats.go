package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrChatNotFound is returned when a chat id does not exist.
var ErrChatNotFound = errors.New("chat not found")

// Chat is one conversation, optionally bound to a persona.
type Chat struct {
	ChatID    string `json:"chat_id"`
	Title     string `json:"title"`
	Persona   string `json:"persona,omitempty"`
	CreatedMs int64  `json:"created_ms"`
}

// Message is one chat message.
type Message struct {
	MessageID string `json:"message_id"`
	ChatID    string `json:"chat_id"`
	Sender    string `json:"sender"`
	Body      string `json:"body"`
	SentMs    int64  `json:"sent_ms"`
}

// CreateChat inserts a chat, generating its id and timestamp when unset.
func (s *Store) CreateChat(ctx context.Context, chat *Chat) error {
	if chat == nil {
		return errors.New("chat cannot be nil")
	}
	if strings.TrimSpace(chat.Title) == "" {
		return errors.New("title is required")
	}
	if chat.ChatID == "" {
		chat.ChatID = uuid.NewString()
	}
	if chat.CreatedMs == 0 {
		chat.CreatedMs = time.Now().UnixMilli()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chats (chat_id, title, persona, created_ms)
		VALUES (?, ?, ?, ?)
	`, chat.ChatID, chat.Title, chat.Persona, chat.CreatedMs)
	if err != nil {
		return fmt.Errorf("create chat: %w", err)
	}
	return nil
}

// GetChat fetches one chat by id.
func (s *Store) GetChat(ctx context.Context, chatID string) (*Chat, error) {
	var c Chat
	err := s.db.QueryRowContext(ctx, `
		SELECT chat_id, title, persona, created_ms FROM chats WHERE chat_id = ?
	`, chatID).Scan(&c.ChatID, &c.Title, &c.Persona, &c.CreatedMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	return &c, nil
}

// ListChats returns all chats, newest first.
func (s *Store) ListChats(ctx context.Context) ([]Chat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chat_id, title, persona, created_ms FROM chats ORDER BY created_ms DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var chats []Chat
	for rows.Next() {
		var c Chat
		if err := rows.Scan(&c.ChatID, &c.Title, &c.Persona, &c.CreatedMs); err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// DeleteChat removes a chat and, via cascade, its messages.
func (s *Store) DeleteChat(ctx context.Context, chatID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE chat_id = ?`, chatID)
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete chat: rows affected: %w", err)
	}
	if n == 0 {
		return ErrChatNotFound
	}
	return nil
}

// CreateMessage appends a message to a chat, generating id and timestamp
// when unset.
func (s *Store) CreateMessage(ctx context.Context, msg *Message) error {
	if msg == nil {
		return errors.New("message cannot be nil")
	}
	if msg.ChatID == "" {
		return errors.New("chat_id is required")
	}
	if msg.Sender == "" {
		return errors.New("sender is required")
	}
	if strings.TrimSpace(msg.Body) == "" {
		return errors.New("body is required")
	}
	if msg.MessageID == "" {
		msg.MessageID = uuid.NewString()
	}
	if msg.SentMs == 0 {
		msg.SentMs = time.Now().UnixMilli()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (message_id, chat_id, sender, body, sent_ms)
		VALUES (?, ?, ?, ?, ?)
	`, msg.MessageID, msg.ChatID, msg.Sender, msg.Body, msg.SentMs)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return ErrChatNotFound
		}
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// ListMessages returns a chat's messages, oldest first, capped at limit
// (default 200).
func (s *Store) ListMessages(ctx context.Context, chatID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT message_id, chat_id, sender, body, sent_ms
		FROM messages WHERE chat_id = ?
		ORDER BY sent_ms ASC, id ASC
		LIMIT ?
	`, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.MessageID, &m.ChatID, &m.Sender, &m.Body, &m.SentMs); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// CountMessages returns the message total for a chat.
func (s *Store) CountMessages(ctx context.Context, chatID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE chat_id = ?`, chatID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}
