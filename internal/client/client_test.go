package client

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleychat/parley/internal/provider"
	"github.com/parleychat/parley/internal/server"
	"github.com/parleychat/parley/internal/storage"
	"github.com/parleychat/parley/internal/suggest"
)

// newTestDaemon spins up a real server over a temp-dir store, so the client
// is exercised against the actual route table.
func newTestDaemon(t *testing.T) *Client {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "parley.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	providers := provider.NewRegistry(&provider.Scripted{ReplyText: "Indeed."})
	srv := server.New(server.Options{
		Store:     store,
		Providers: providers,
		Suggester: suggest.NewService(store, nil, suggest.ServiceConfig{}),
	})

	ts := httptest.NewServer(srv.GenerateRoutes())
	t.Cleanup(ts.Close)

	return New(ts.URL, time.Second)
}

func TestPingAndVersion(t *testing.T) {
	c := newTestDaemon(t)

	require.NoError(t, c.Ping(t.Context()))

	v, err := c.Version(t.Context())
	require.NoError(t, err)
	assert.NotEmpty(t, v)
}

func TestChatRoundTrip(t *testing.T) {
	c := newTestDaemon(t)

	chat, err := c.CreateChat(t.Context(), "weekend plans", "")
	require.NoError(t, err)
	assert.NotEmpty(t, chat.ChatID)

	res, err := c.SendMessage(t.Context(), chat.ChatID, "me", "beach or hills?")
	require.NoError(t, err)
	assert.Equal(t, "beach or hills?", res.Message.Body)
	assert.Nil(t, res.Reply)

	msgs, err := c.ListMessages(t.Context(), chat.ChatID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	chats, err := c.ListChats(t.Context())
	require.NoError(t, err)
	assert.Len(t, chats, 1)
}

func TestPersonaChatReply(t *testing.T) {
	c := newTestDaemon(t)

	chat, err := c.CreateChat(t.Context(), "holmes", "sherlock")
	require.NoError(t, err)

	res, err := c.SendMessage(t.Context(), chat.ChatID, "me", "A puzzle for you.")
	require.NoError(t, err)
	require.NotNil(t, res.Reply)
	assert.Equal(t, "sherlock", res.Reply.Sender)
	assert.Equal(t, "Indeed.", res.Reply.Body)
}

func TestErrorEnvelopeSurfaces(t *testing.T) {
	c := newTestDaemon(t)

	_, err := c.CreateChat(t.Context(), "x", "elvis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown persona")

	_, err = c.ListMessages(t.Context(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestPersonas(t *testing.T) {
	c := newTestDaemon(t)

	ps, err := c.Personas(t.Context())
	require.NoError(t, err)
	assert.NotEmpty(t, ps)
}

func TestGameRoundTrip(t *testing.T) {
	c := newTestDaemon(t)

	sess, err := c.StartGame(t.Context())
	require.NoError(t, err)

	after, err := c.GuessWord(t.Context(), sess.ID, "crane")
	require.NoError(t, err)
	assert.Equal(t, 1, after.Attempts)

	_, err = c.GuessWord(t.Context(), sess.ID, "no")
	assert.Error(t, err)
}

func TestConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := New(srv.URL, 200*time.Millisecond)
	assert.Error(t, c.Ping(t.Context()))
}
