// Package identity matches incoming performance records to canonical player
// identities. Matching runs per scoping context (club); identities in
// different scopes are never compared, so the same name at two clubs yields
// two distinct identities.
package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/crease-io/crease/internal/domain/model"
	"github.com/crease-io/crease/internal/domain/namekey"
)

// Decision tags the outcome of a resolution attempt.
type Decision int

const (
	// Matched means an existing identity was found.
	Matched Decision = iota
	// NoCandidate means no identity cleared the similarity threshold; the
	// caller should create a new identity.
	NoCandidate
	// Ambiguous means two distinct candidates scored within the ambiguity
	// margin of each other; the record needs manual review.
	Ambiguous
)

func (d Decision) String() string {
	switch d {
	case Matched:
		return "matched"
	case NoCandidate:
		return "no_candidate"
	case Ambiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// Resolution is the outcome of resolving one RawPerformance.
type Resolution struct {
	Decision   Decision
	Identity   *model.PlayerIdentity // set when Decision == Matched
	Similarity float64               // best similarity observed, [0, 1]
}

// variant is one normalized name ever seen for an identity.
type variant struct {
	key namekey.Name
}

// entry pairs an identity with its parsed name variants.
type entry struct {
	identity *model.PlayerIdentity
	variants []variant
}

// scope holds the searchable identity set for one club. The mutex is held
// for the full duration of a resolution decision so two records cannot race
// into creating the same identity twice.
type scope struct {
	mu         sync.Mutex
	entries    map[string]*entry // identity id -> entry
	bySourceID map[string]string // source player id -> identity id
}

// Registry is the in-memory identity store and resolver.
type Registry struct {
	mu     sync.RWMutex
	scopes map[string]*scope

	similarityThreshold float64
	ambiguityMargin     float64
}

// NewRegistry creates a registry with configuration options.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		scopes:              make(map[string]*scope),
		similarityThreshold: defaultSimilarityThreshold,
		ambiguityMargin:     defaultAmbiguityMargin,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) scopeFor(club string) *scope {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scopes[club]
	if !ok {
		s = &scope{
			entries:    make(map[string]*entry),
			bySourceID: make(map[string]string),
		}
		r.scopes[club] = s
	}
	return s
}

// Resolve matches perf against the identities known for its club scope.
// Precedence: source-id equality first (authoritative, overrides any name
// mismatch), then fingerprint similarity with the initial-compatibility
// rule. On a successful match the incoming raw name and source id are
// appended to the identity's variant sets.
func (r *Registry) Resolve(ctx context.Context, perf *model.RawPerformance) (Resolution, error) {
	if err := ctx.Err(); err != nil {
		return Resolution{}, fmt.Errorf("resolve cancelled: %w", err)
	}

	s := r.scopeFor(perf.Club)
	s.mu.Lock()
	defer s.mu.Unlock()

	// 1. Exact id match.
	if perf.SourcePlayerID != "" {
		if id, ok := s.bySourceID[perf.SourcePlayerID]; ok {
			e := s.entries[id]
			s.absorb(e, perf)
			return Resolution{Decision: Matched, Identity: e.identity, Similarity: 1.0}, nil
		}
	}

	// 2. Fingerprint similarity across every known variant of every candidate.
	incoming := namekey.Normalize(perf.RawName)
	var (
		best       *entry
		bestScore  float64
		second     *entry
		secondBest float64
	)
	for _, e := range s.entries {
		score := 0.0
		for _, v := range e.variants {
			if sim := similarity(incoming, v.key); sim > score {
				score = sim
			}
		}
		switch {
		case best == nil || score > bestScore:
			second, secondBest = best, bestScore
			best, bestScore = e, score
		case second == nil || score > secondBest:
			second, secondBest = e, score
		}
	}

	if best == nil || bestScore < r.similarityThreshold {
		return Resolution{Decision: NoCandidate, Similarity: bestScore}, nil
	}
	// Ambiguity guard: a close runner-up means no automatic match.
	if second != nil && bestScore-secondBest <= r.ambiguityMargin {
		return Resolution{Decision: Ambiguous, Similarity: bestScore}, nil
	}

	s.absorb(best, perf)
	return Resolution{Decision: Matched, Identity: best.identity, Similarity: bestScore}, nil
}

// Create registers a brand-new identity for perf in its club scope and
// returns it. Intended for records that resolved to NoCandidate.
func (r *Registry) Create(ctx context.Context, perf *model.RawPerformance) (*model.PlayerIdentity, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("create cancelled: %w", err)
	}

	s := r.scopeFor(perf.Club)
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	ident := &model.PlayerIdentity{
		ID:            id,
		CanonicalName: strings.Join(strings.Fields(perf.RawName), " "),
	}
	e := &entry{identity: ident}
	s.entries[id] = e
	s.absorb(e, perf)
	return ident, nil
}

// Get returns the identity with the given id in club, or ErrUnknownPlayer.
func (r *Registry) Get(ctx context.Context, club, id string) (*model.PlayerIdentity, error) {
	r.mu.RLock()
	s, ok := r.scopes[club]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("club %q: %w", club, ErrUnknownScope)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("id %q: %w", id, ErrUnknownPlayer)
	}
	return e.identity, nil
}

// Find returns the identity with the given id across all scopes.
func (r *Registry) Find(ctx context.Context, id string) (*model.PlayerIdentity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.scopes {
		s.mu.Lock()
		e, ok := s.entries[id]
		s.mu.Unlock()
		if ok {
			return e.identity, nil
		}
	}
	return nil, fmt.Errorf("id %q: %w", id, ErrUnknownPlayer)
}

// All returns every identity in the given club scope, for the persistence
// collaborator to save.
func (r *Registry) All(ctx context.Context, club string) []*model.PlayerIdentity {
	r.mu.RLock()
	s, ok := r.scopes[club]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.PlayerIdentity, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.identity)
	}
	return out
}

// absorb appends the record's name variant and source id to the identity.
// Caller holds the scope lock.
func (s *scope) absorb(e *entry, perf *model.RawPerformance) {
	raw := strings.Join(strings.Fields(perf.RawName), " ")
	if raw != "" && !e.identity.HasVariant(raw) {
		e.identity.NameVariants = append(e.identity.NameVariants, raw)
		e.variants = append(e.variants, variant{key: namekey.Normalize(raw)})
	}
	if perf.SourcePlayerID != "" && !e.identity.HasSourceID(perf.SourcePlayerID) {
		e.identity.SourceIDs = append(e.identity.SourceIDs, perf.SourcePlayerID)
		s.bySourceID[perf.SourcePlayerID] = e.identity.ID
	}
}

// similarity scores two normalized names in [0, 1]. Identical surnames with
// an initial on one side matching the other side's given name force 1.0,
// so "Jan de Vries" and "J. de Vries" compare as equal.
func similarity(a, b namekey.Name) float64 {
	if initialCompatible(a, b) || initialCompatible(b, a) {
		return 1.0
	}
	return editRatio(a.Fingerprint, b.Fingerprint)
}

// initialCompatible reports whether a's given name is a bare initial that
// matches the first letter of b's given name, with identical surnames.
func initialCompatible(a, b namekey.Name) bool {
	return a.GivenIsInitial() &&
		b.GivenInitial() != 0 &&
		a.GivenInitial() == b.GivenInitial() &&
		a.SurnameKey() != "" &&
		a.SurnameKey() == b.SurnameKey()
}

// editRatio is a normalized Levenshtein similarity: 1 - distance/maxLen.
func editRatio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(a, b))/float64(longest)
}

// levenshtein computes edit distance with a two-row dynamic program.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			curr[j] = m
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
