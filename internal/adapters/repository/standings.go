package repository

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/crease-io/crease/pkg/metrics"
)

// Treap-based, in-memory season standings.
//
// Ordering: cumulative points DESC, then player id ASC (deterministic).
// The BST comparator treats "less" as "ranks earlier", so an in-order
// traversal produces the standings from best to worst. Subtree sizes give
// O(log n) rank queries.

// pointsScale converts float64 point totals to fixed point so ordering is
// exact. Base points are sums of quarter-point rates and ratio factors; six
// decimals is ample.
const pointsScale = 1_000_000

type pointsFP int64

func toFixedPoint(x float64) pointsFP {
	if math.IsNaN(x) {
		return 0
	}
	scaled := x * pointsScale
	if scaled > float64(math.MaxInt64) {
		return pointsFP(math.MaxInt64)
	}
	if scaled < float64(math.MinInt64) {
		return pointsFP(math.MinInt64)
	}
	return pointsFP(math.Round(scaled))
}

func toFloat(x pointsFP) float64 {
	return float64(x) / pointsScale
}

// node is one treap node; priorities are random, sizes maintained for
// order-statistic queries.
type node struct {
	id     string
	points pointsFP
	prio   uint64
	left   *node
	right  *node
	size   int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less reports whether (aPoints, aID) ranks earlier than (bPoints, bID).
func less(aPoints pointsFP, aID string, bPoints pointsFP, bID string) bool {
	if aPoints != bPoints {
		return aPoints > bPoints
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, points pointsFP, prio uint64) *node {
	if n == nil {
		return &node{id: id, points: points, prio: prio, size: 1}
	}
	if less(points, id, n.points, n.id) {
		n.left = insert(n.left, id, points, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, points, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, points pointsFP) *node {
	if n == nil {
		return nil
	}
	if points == n.points && id == n.id {
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, points)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, points)
		}
	} else if less(points, id, n.points, n.id) {
		n.left = deleteNode(n.left, id, points)
	} else {
		n.right = deleteNode(n.right, id, points)
	}
	fix(n)
	return n
}

// position returns the zero-based in-order position of (points, id).
func position(n *node, id string, points pointsFP) int {
	pos := 0
	for n != nil {
		if points == n.points && id == n.id {
			return pos + nsize(n.left)
		}
		if less(points, id, n.points, n.id) {
			n = n.left
		} else {
			pos += nsize(n.left) + 1
			n = n.right
		}
	}
	return -1
}

// collectTopN appends up to limit entries in rank order.
func collectTopN(n *node, limit int, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, Entry{PlayerID: n.id, Points: toFloat(n.points)})
	}
	collectTopN(n.right, limit, out)
}

// Snapshot is an immutable view of the standings, rebuilt periodically.
type Snapshot struct {
	RankByPlayer   map[string]int
	PointsByPlayer map[string]float64
	TopCache       []Entry
}

// TreapStore implements Store over a single treap plus a totals map.
type TreapStore struct {
	mu               sync.RWMutex
	root             *node
	totals           map[string]pointsFP
	rng              *rand.Rand
	snapshotInterval time.Duration
	topCacheSize     int

	snapshot atomic.Pointer[Snapshot]

	wg       sync.WaitGroup
	stopChan chan struct{}
}

// Default standings store configuration constants.
const (
	defaultSnapshotInterval = time.Second
	defaultTopCacheSize     = 500
)

// NewTreapStore constructs a standings store with configuration options.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		snapshotInterval: defaultSnapshotInterval,
		topCacheSize:     defaultTopCacheSize,
		totals:           make(map[string]pointsFP),
		rng:              rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // priorities need no cryptographic strength
	}
	for _, opt := range opts {
		opt(s)
	}

	s.stopChan = make(chan struct{})
	s.startPeriodicSnapshots(ctx)
	return s
}

func (s *TreapStore) startPeriodicSnapshots(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.snapshotInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.publishSnapshot()
			}
		}
	}()
}

func (s *TreapStore) publishSnapshot() {
	start := time.Now()
	s.mu.RLock()

	topCache := make([]Entry, 0, s.topCacheSize)
	collectTopN(s.root, s.topCacheSize, &topCache)

	all := make([]Entry, 0, len(s.totals))
	collectTopN(s.root, len(s.totals), &all)
	assignRanksWithTies(all)

	rankByPlayer := make(map[string]int, len(all))
	pointsByPlayer := make(map[string]float64, len(all))
	for _, e := range all {
		rankByPlayer[e.PlayerID] = e.Rank
		pointsByPlayer[e.PlayerID] = e.Points
	}
	for i := range topCache {
		topCache[i].Rank = rankByPlayer[topCache[i].PlayerID]
	}
	s.mu.RUnlock()

	s.snapshot.Store(&Snapshot{
		RankByPlayer:   rankByPlayer,
		PointsByPlayer: pointsByPlayer,
		TopCache:       topCache,
	})

	ms := float64(time.Since(start).Milliseconds())
	metrics.RecordStandingsSnapshotRebuildDuration(ms)
	metrics.UpdateStandingsSnapshotLastUnix(float64(time.Now().Unix()))
	metrics.IncrementStandingsSnapshotCount()
}

// Close stops the snapshot goroutine.
func (s *TreapStore) Close() error {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// AddPoints accumulates points on the player's season total in O(log n).
func (s *TreapStore) AddPoints(ctx context.Context, playerID string, points float64) (float64, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStandingsUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	delta := toFixedPoint(points)

	s.mu.Lock()
	old, existed := s.totals[playerID]
	if existed {
		s.root = deleteNode(s.root, playerID, old)
	}
	total := old + delta
	s.totals[playerID] = total
	s.root = insert(s.root, playerID, total, s.rng.Uint64())
	count := len(s.totals)
	s.mu.Unlock()

	metrics.RecordStandingsUpdate()
	if !existed {
		metrics.UpdateStandingsPlayersTotal(count)
	}
	return toFloat(total), nil
}

// Total returns the player's season total.
func (s *TreapStore) Total(ctx context.Context, playerID string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total, ok := s.totals[playerID]
	return toFloat(total), ok
}

// Rank returns the player's standings entry in O(log n), with ties sharing
// a rank.
func (s *TreapStore) Rank(ctx context.Context, playerID string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStandingsQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	total, ok := s.totals[playerID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrNotFound
	}

	// Tied players share the rank of the first (lowest id) among them, so
	// rank by the position of the first node at this point total.
	pos := position(s.root, playerID, total)
	first := firstAtPoints(s.root, total)
	if first >= 0 && first < pos {
		pos = first
	}
	return Entry{Rank: pos + 1, PlayerID: playerID, Points: toFloat(total)}, nil
}

// firstAtPoints returns the in-order position of the first node holding the
// given point total, or -1.
func firstAtPoints(n *node, points pointsFP) int {
	pos := 0
	best := -1
	for n != nil {
		switch {
		case n.points == points:
			best = pos + nsize(n.left)
			n = n.left
		case n.points > points:
			pos += nsize(n.left) + 1
			n = n.right
		default:
			n = n.left
		}
	}
	return best
}

// TopN returns the top n standings entries, best first.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStandingsQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, n)
	collectTopN(s.root, n, &out)
	assignRanksWithTies(out)
	return out, nil
}

// Count returns the number of players with a season total.
func (s *TreapStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.totals)
}

// LatestSnapshot returns the most recently published snapshot, or nil.
func (s *TreapStore) LatestSnapshot() *Snapshot {
	return s.snapshot.Load()
}

// assignRanksWithTies assigns competition ranks: equal point totals share
// the rank of the first position among them, and the next distinct total
// resumes at its own position.
func assignRanksWithTies(entries []Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Points != entries[i-1].Points {
			rank = i + 1
		}
		entries[i].Rank = rank
	}
}
