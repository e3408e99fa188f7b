package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com"
	defaultOpenAIModel   = "gpt-4o-mini"
	openAIKeyEnv         = "OPENAI_API_KEY"
)

// OpenAIProvider talks to an OpenAI-compatible chat completions endpoint.
type OpenAIProvider struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// OpenAIOption customizes the provider.
type OpenAIOption func(*OpenAIProvider)

// WithBaseURL points the provider at a different endpoint (local inference
// servers, tests).
func WithBaseURL(u string) OpenAIOption {
	return func(p *OpenAIProvider) { p.baseURL = strings.TrimRight(u, "/") }
}

// WithModel overrides the default model.
func WithModel(m string) OpenAIOption {
	return func(p *OpenAIProvider) {
		if m != "" {
			p.model = m
		}
	}
}

// WithAPIKey sets the key explicitly instead of reading the environment.
func WithAPIKey(k string) OpenAIOption {
	return func(p *OpenAIProvider) { p.apiKey = k }
}

// NewOpenAIProvider creates the provider, reading the API key from
// OPENAI_API_KEY unless overridden.
func NewOpenAIProvider(opts ...OpenAIOption) *OpenAIProvider {
	p := &OpenAIProvider{
		baseURL: defaultOpenAIBaseURL,
		model:   defaultOpenAIModel,
		apiKey:  os.Getenv(openAIKeyEnv),
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string { return "openai" }

// Available implements Provider.
func (p *OpenAIProvider) Available() bool { return p.apiKey != "" }

// Complete implements Provider.
func (p *OpenAIProvider) Complete(ctx context.Context, req *CompleteRequest) (*CompleteResponse, error) {
	start := time.Now()

	n := req.MaxSuggestions
	if n <= 0 {
		n = 3
	}
	system := "You complete chat messages. Given the partial message, produce up to " +
		fmt.Sprint(n) + " natural completions of the whole message, one per line, " +
		"no numbering, no quotes, no commentary."
	if req.Persona != "" {
		system += " The conversation partner is " + req.Persona + "."
	}

	content, err := p.chat(ctx, system, historyLines(req.Recent)+"Partial message: "+req.Prefix)
	if err != nil {
		return nil, err
	}

	texts := parseLines(content, n)
	return &CompleteResponse{
		ProviderName: p.Name(),
		Texts:        texts,
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}

// Reply implements Provider.
func (p *OpenAIProvider) Reply(ctx context.Context, req *ReplyRequest) (*ReplyResponse, error) {
	start := time.Now()

	system := req.SystemPrompt
	if system == "" {
		system = "You are a friendly chat participant. Keep replies short."
	}

	content, err := p.chat(ctx, system, historyLines(req.Recent)+req.UserMessage)
	if err != nil {
		return nil, err
	}

	return &ReplyResponse{
		ProviderName: p.Name(),
		Text:         strings.TrimSpace(content),
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// chat runs one chat-completions round trip and returns the first choice.
func (p *OpenAIProvider) chat(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openai: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("openai: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai: status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("openai: decode response: %w", err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("openai: api error: %s", decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices")
	}
	return decoded.Choices[0].Message.Content, nil
}

// historyLines renders recent messages as context lines for the prompt.
func historyLines(recent []MessageContext) string {
	if len(recent) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Recent conversation:\n")
	for _, m := range recent {
		b.WriteString(m.Sender)
		b.WriteString(": ")
		b.WriteString(m.Body)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return b.String()
}

// parseLines splits model output into at most n clean suggestion lines,
// stripping list markers and wrapping quotes.
func parseLines(content string, n int) []string {
	out := make([]string, 0, n)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•0123456789. ")
		line = strings.Trim(line, "`\"'")
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == n {
			break
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
