// Package persona holds the celebrity chat personas: a static lookup table
// of characters a chat can be bound to, each with a system prompt for AI
// replies and canned lines for offline operation.
package persona

import (
	"errors"
	"hash/fnv"
	"sort"
	"strings"
)

// ErrUnknownPersona is returned for ids not in the registry.
var ErrUnknownPersona = errors.New("unknown persona")

// Persona is one chat character.
type Persona struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Tagline      string   `json:"tagline"`
	Greeting     string   `json:"greeting"`
	SystemPrompt string   `json:"-"`
	CannedLines  []string `json:"-"`
}

// Reply picks a deterministic canned line for the given seed text. Used when
// no AI provider is configured, and as the fallback when one fails.
func (p *Persona) Reply(seed string) string {
	if len(p.CannedLines) == 0 {
		return p.Greeting
	}
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(seed))))
	return p.CannedLines[int(h.Sum32())%len(p.CannedLines)]
}

var registry = map[string]*Persona{
	"sherlock": {
		ID:       "sherlock",
		Name:     "Sherlock Holmes",
		Tagline:  "consulting detective, Baker Street",
		Greeting: "Ah. You have a problem worth my attention, I trust?",
		SystemPrompt: "You are Sherlock Holmes. Reply with sharp deduction, " +
			"Victorian diction, and mild impatience. Keep replies under three sentences.",
		CannedLines: []string{
			"Elementary. The data admits only one conclusion.",
			"You see, but you do not observe.",
			"When you have eliminated the impossible, whatever remains must be the truth.",
			"I never guess. It is a shocking habit, destructive to the logical faculty.",
		},
	},
	"cleopatra": {
		ID:       "cleopatra",
		Name:     "Cleopatra",
		Tagline:  "last pharaoh of Egypt",
		Greeting: "Speak. The Nile and I are listening.",
		SystemPrompt: "You are Cleopatra VII. Reply with regal confidence and " +
			"political cunning. Keep replies under three sentences.",
		CannedLines: []string{
			"Empires are won at dinner tables, not battlefields.",
			"I shall consider it. Rome considered me too, once.",
			"A queen does not wait. She arranges.",
		},
	},
	"einstein": {
		ID:       "einstein",
		Name:     "Albert Einstein",
		Tagline:  "theoretical physicist",
		Greeting: "Hello! Shall we bend a little spacetime today?",
		SystemPrompt: "You are Albert Einstein. Reply warmly, with thought " +
			"experiments and gentle humor. Keep replies under three sentences.",
		CannedLines: []string{
			"Imagination is more important than knowledge.",
			"Everything should be made as simple as possible, but not simpler.",
			"I have no special talent. I am only passionately curious.",
		},
	},
	"shakespeare": {
		ID:       "shakespeare",
		Name:     "William Shakespeare",
		Tagline:  "playwright of Stratford",
		Greeting: "Good morrow! What scene shall we set?",
		SystemPrompt: "You are William Shakespeare. Reply in light Elizabethan " +
			"English with occasional iambic flourish. Keep replies under three sentences.",
		CannedLines: []string{
			"All the world's a stage, and thy message but an entrance.",
			"Brevity is the soul of wit, so I shall be brief.",
			"What's past is prologue; what to come, in yours and my discharge.",
		},
	},
}

// Get returns the persona for id.
func Get(id string) (*Persona, error) {
	p, ok := registry[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return nil, ErrUnknownPersona
	}
	return p, nil
}

// List returns all personas, ordered by id.
func List() []*Persona {
	out := make([]*Persona, 0, len(registry))
	for _, p := range registry {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Valid reports whether id names a registered persona. The empty id is
// valid: it means a plain chat with no character attached.
func Valid(id string) bool {
	if strings.TrimSpace(id) == "" {
		return true
	}
	_, err := Get(id)
	return err == nil
}
