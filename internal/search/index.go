// Package search provides the secondary search index the catalog keeps in
// lockstep with item approval state. The syncer treats the index as an opaque
// upsert/delete target; this package supplies the contract plus a
// deterministic, concurrency-safe in-memory implementation:
//
//   - No logging in the library (callers decide how/what to log)
//   - Clear, documented types and functional options (Option pattern)
//   - Unicode-aware tokenization with optional stop-word removal
//   - Mutable object store guarded by an RWMutex (safe for concurrent use)
//   - Deterministic scoring and sorting (stable order for ties)
//
// Scoring uses Jaccard similarity between the query token set and each
// object's token set: score = |Q ∩ O| / |Q ∪ O|.
package search

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Record is the denormalized item projection stored in the index. ObjectID is
// the index key (the item id); the remaining fields are what a storefront
// needs to render a hit without touching the primary store.
type Record struct {
	ObjectID  string  `json:"objectID"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Currency  string  `json:"currency"`
	VenueID   string  `json:"venue_id"`
	VenueName string  `json:"venue_name"`
	City      string  `json:"city"`
	District  string  `json:"district"`
	Text      string  `json:"text"` // lowercase searchable concatenation
}

// Result is a ranked record with its similarity score.
type Result struct {
	Record Record
	Score  float64
}

// Index is the contract the syncer and the search endpoint depend on.
// Implementations must be safe for concurrent use. Upsert and Delete are
// idempotent: re-sending the same record or deleting an absent id is a no-op
// success, which is what lets the syncer tolerate duplicated deliveries.
type Index interface {
	Upsert(ctx context.Context, rec Record) error
	Delete(ctx context.Context, objectID string) error
	Search(ctx context.Context, query string, k int) ([]Result, error)
}

// ----------------------------------------------------------------------------
// Options

type Option func(*config)

type config struct {
	stopwords map[string]struct{}
	maxK      int
}

func defaultConfig() config {
	return config{
		stopwords: nil,
		maxK:      100,
	}
}

// WithStopwords removes the given words from both stored and query token sets.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

// WithMaxK caps how many results a single Search call may return.
func WithMaxK(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxK = n
		}
	}
}

// ----------------------------------------------------------------------------
// In-memory implementation

type entry struct {
	rec    Record
	tokens map[string]struct{}
	tLen   int
}

// Memory is the in-memory Index. The zero value is not usable; construct it
// with NewMemory.
type Memory struct {
	cfg config

	mu      sync.RWMutex
	objects map[string]entry
}

// NewMemory returns an empty in-memory index.
func NewMemory(opts ...Option) *Memory {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Memory{cfg: cfg, objects: make(map[string]entry)}
}

// Upsert stores or replaces the record keyed by rec.ObjectID.
func (m *Memory) Upsert(_ context.Context, rec Record) error {
	text := rec.Text
	if strings.TrimSpace(text) == "" {
		text = Searchable(rec.Name, rec.VenueName, rec.City, rec.District)
		rec.Text = text
	}
	toks := tokenize(text, m.cfg.stopwords)

	m.mu.Lock()
	m.objects[rec.ObjectID] = entry{rec: rec, tokens: toks, tLen: len(toks)}
	m.mu.Unlock()
	return nil
}

// Delete removes the record keyed by objectID. Deleting an absent id is a
// no-op success.
func (m *Memory) Delete(_ context.Context, objectID string) error {
	m.mu.Lock()
	delete(m.objects, objectID)
	m.mu.Unlock()
	return nil
}

// Contains reports whether objectID is currently indexed. Exposed for
// invariant checks in tests and for the health endpoint.
func (m *Memory) Contains(objectID string) bool {
	m.mu.RLock()
	_, ok := m.objects[objectID]
	m.mu.RUnlock()
	return ok
}

// Len returns the number of indexed objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	n := len(m.objects)
	m.mu.RUnlock()
	return n
}

// Search returns up to k best-matching records by Jaccard similarity.
func (m *Memory) Search(_ context.Context, q string, k int) ([]Result, error) {
	if strings.TrimSpace(q) == "" {
		return nil, nil
	}
	if k <= 0 {
		k = 20
	}
	if k > m.cfg.maxK {
		k = m.cfg.maxK
	}
	qTokens := tokenize(q, m.cfg.stopwords)
	if len(qTokens) == 0 {
		return nil, nil
	}
	qLen := len(qTokens)

	m.mu.RLock()
	buf := make([]Result, 0, len(m.objects))
	for _, e := range m.objects {
		over := overlap(qTokens, e.tokens)
		if over == 0 {
			continue
		}
		union := float64(qLen + e.tLen - over)
		if union <= 0 {
			continue
		}
		score := float64(over) / union
		if score <= 0 {
			continue
		}
		buf = append(buf, Result{Record: e.rec, Score: score})
	}
	m.mu.RUnlock()

	if len(buf) == 0 {
		return nil, nil
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].Score != buf[b].Score {
			return buf[a].Score > buf[b].Score
		}
		return buf[a].Record.ObjectID < buf[b].Record.ObjectID
	})

	if k > len(buf) {
		k = len(buf)
	}
	return buf[:k], nil
}

// ----------------------------------------------------------------------------
// Helpers

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*|\p{N}+`)

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	s = strings.ToLower(s)
	words := wordRE.FindAllString(s, -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		if stop != nil {
			if _, skip := stop[w]; skip {
				continue
			}
		}
		out[w] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := 0
	if len(a) > len(b) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
