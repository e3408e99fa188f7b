package search

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

// defaultLookupTimeout bounds a single remote lookup, covering connection
// establishment and the response body.
const defaultLookupTimeout = 2 * time.Second

// Remote is the search backend that queries parleyd's /api/search endpoint.
// One HTTP call per lookup; transport-level aborts map to the cancelled
// error kind so the coordinator can absorb them.
type Remote struct {
	baseURL string
	limit   int
	client  *http.Client
	timeout time.Duration
}

// NewRemote creates a remote backend against baseURL (e.g.
// "http://127.0.0.1:7351"). limit caps the requested result count.
func NewRemote(baseURL string, limit int) *Remote {
	return &Remote{
		baseURL: baseURL,
		limit:   limit,
		client:  &http.Client{},
		timeout: defaultLookupTimeout,
	}
}

// Lookup issues GET /api/search?q=<text>&limit=<n> and decodes the ranked
// result list.
func (r *Remote) Lookup(ctx context.Context, text string) ([]Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	vals := url.Values{}
	vals.Set("q", text)
	if r.limit > 0 {
		vals.Set("limit", strconv.Itoa(r.limit))
	}
	endpoint := r.baseURL + "/api/search?" + vals.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, query.Upstreamf(err, "build search request")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		// Do wraps context errors; Classify sorts cancel from timeout from
		// genuine transport failure.
		return nil, query.Classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, query.Upstreamf(
			fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
			"search endpoint")
	}

	var decoded Response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, query.Upstreamf(err, "decode search response")
	}
	if decoded.Items == nil {
		decoded.Items = []Result{}
	}
	return decoded.Items, nil
}
