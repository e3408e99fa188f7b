package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/parleychat/parley/internal/query"
)

// defaultLookupTimeout bounds a single remote lookup. Suggestions may hit an
// AI provider server-side, so the window is wider than search's.
const defaultLookupTimeout = 4 * time.Second

// Remote is the suggest backend that queries parleyd's /api/suggest
// endpoint.
type Remote struct {
	baseURL string
	chatID  string
	limit   int
	client  *http.Client
	timeout time.Duration
}

// NewRemote creates a remote backend scoped to one chat.
func NewRemote(baseURL, chatID string, limit int) *Remote {
	return &Remote{
		baseURL: baseURL,
		chatID:  chatID,
		limit:   limit,
		client:  &http.Client{},
		timeout: defaultLookupTimeout,
	}
}

// Lookup issues GET /api/suggest?q=<text>&chat=<id>&limit=<n>.
func (r *Remote) Lookup(ctx context.Context, text string) ([]Suggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	vals := url.Values{}
	vals.Set("q", text)
	if r.chatID != "" {
		vals.Set("chat", r.chatID)
	}
	if r.limit > 0 {
		vals.Set("limit", strconv.Itoa(r.limit))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		r.baseURL+"/api/suggest?"+vals.Encode(), nil)
	if err != nil {
		return nil, query.Upstreamf(err, "build suggest request")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, query.Classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, query.Upstreamf(
			fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
			"suggest endpoint")
	}

	var decoded Response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, query.Upstreamf(err, "decode suggest response")
	}
	if decoded.Suggestions == nil {
		decoded.Suggestions = []Suggestion{}
	}
	return decoded.Suggestions, nil
}
