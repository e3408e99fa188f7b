// Package game implements a small word-guess game: guess a five-letter word
// in a bounded number of attempts, with per-letter feedback after each guess.
package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// WordLength is the fixed answer length.
	WordLength = 5
	// MaxAttempts bounds the guesses per session.
	MaxAttempts = 6
)

// Mark is the per-letter feedback for a guess.
type Mark string

const (
	// MarkHit means the letter is correct and in the right position.
	MarkHit Mark = "hit"
	// MarkNear means the letter occurs in the answer at another position.
	MarkNear Mark = "near"
	// MarkMiss means the letter does not occur in the answer.
	MarkMiss Mark = "miss"
)

// Status is the session lifecycle state.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

var (
	// ErrBadGuess is returned for guesses that are not exactly WordLength
	// letters.
	ErrBadGuess = errors.New("guess must be five letters")
	// ErrFinished is returned when guessing on a won or lost session.
	ErrFinished = errors.New("game already finished")
	// ErrNotFound is returned for unknown session ids.
	ErrNotFound = errors.New("game not found")
)

// Guess is one scored attempt.
type Guess struct {
	Word  string `json:"word"`
	Marks []Mark `json:"marks"`
}

// Session is one game in progress.
type Session struct {
	ID        string  `json:"id"`
	Status    Status  `json:"status"`
	Attempts  int     `json:"attempts"`
	Remaining int     `json:"remaining"`
	Guesses   []Guess `json:"guesses"`
	// Answer is revealed only once the session is finished.
	Answer string `json:"answer,omitempty"`

	answer string
}

var defaultWords = []string{
	"apple", "brave", "cloud", "dream", "eagle",
	"flame", "ghost", "heart", "ivory", "joker",
	"knife", "lemon", "mirth", "noble", "ocean",
	"piano", "quill", "river", "stone", "tiger",
	"umbra", "vivid", "whale", "xenon", "yield",
	"zesty", "amber", "blaze", "crisp", "dusty",
}

// Score marks each guess letter against the answer. Repeated letters consume
// answer occurrences: a letter is near only while unmatched occurrences
// remain after hits are taken out.
func Score(answer, guess string) []Mark {
	marks := make([]Mark, WordLength)
	remaining := make(map[byte]int, WordLength)

	for i := 0; i < WordLength; i++ {
		if guess[i] == answer[i] {
			marks[i] = MarkHit
		} else {
			remaining[answer[i]]++
		}
	}
	for i := 0; i < WordLength; i++ {
		if marks[i] == MarkHit {
			continue
		}
		if remaining[guess[i]] > 0 {
			marks[i] = MarkNear
			remaining[guess[i]]--
		} else {
			marks[i] = MarkMiss
		}
	}
	return marks
}

// NormalizeGuess lowercases and validates a raw guess.
func NormalizeGuess(raw string) (string, error) {
	w := strings.ToLower(strings.TrimSpace(raw))
	if len(w) != WordLength {
		return "", ErrBadGuess
	}
	for i := 0; i < WordLength; i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return "", ErrBadGuess
		}
	}
	return w, nil
}

// Registry holds live sessions keyed by id.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	words    []string
	rng      *rand.Rand
}

// NewRegistry creates a registry over the default word list.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		words:    defaultWords,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewRegistryWithWords creates a registry over a custom word list. Every word
// must be exactly WordLength lowercase letters.
func NewRegistryWithWords(words []string) (*Registry, error) {
	if len(words) == 0 {
		return nil, errors.New("empty word list")
	}
	for _, w := range words {
		if _, err := NormalizeGuess(w); err != nil {
			return nil, fmt.Errorf("bad word %q: %w", w, err)
		}
	}
	r := NewRegistry()
	r.words = words
	return r, nil
}

// Start creates a new session with a randomly chosen answer.
func (r *Registry) Start() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &Session{
		ID:        uuid.NewString(),
		Status:    StatusPlaying,
		Remaining: MaxAttempts,
		answer:    r.words[r.rng.Intn(len(r.words))],
	}
	r.sessions[s.ID] = s
	return s
}

// Get returns a snapshot of the session.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.snapshot(), nil
}

// Guess scores a guess against the session and advances its state.
func (r *Registry) Guess(id, raw string) (*Session, error) {
	word, err := NormalizeGuess(raw)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if s.Status != StatusPlaying {
		return nil, ErrFinished
	}

	marks := Score(s.answer, word)
	s.Guesses = append(s.Guesses, Guess{Word: word, Marks: marks})
	s.Attempts++
	s.Remaining = MaxAttempts - s.Attempts

	if word == s.answer {
		s.Status = StatusWon
	} else if s.Attempts >= MaxAttempts {
		s.Status = StatusLost
	}
	return s.snapshot(), nil
}

func (s *Session) snapshot() *Session {
	out := *s
	out.Guesses = append([]Guess(nil), s.Guesses...)
	if out.Status != StatusPlaying {
		out.Answer = s.answer
	}
	return &out
}
