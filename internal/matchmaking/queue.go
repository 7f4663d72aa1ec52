package matchmaking

import (
	"sort"
	"sync"
	"time"

	"github.com/codeduel-vn/codeduel/internal/domains/entities"
	"github.com/codeduel-vn/codeduel/pkg/logging"
	"go.uber.org/zap"
)

// Pairing is two queue entries pulled out together for a match.
type Pairing struct {
	A entities.QueueEntry
	B entities.QueueEntry
}

type Config struct {
	BaseTolerance float64
	WidenStep     float64
	WidenEvery    time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseTolerance: 100,
		WidenStep:     50,
		WidenEvery:    10 * time.Second,
	}
}

// Queue holds waiting players keyed by id. All operations serialize on a
// single mutex; entries never leave the queue except through a pairing or
// an explicit Leave.
type Queue struct {
	mu      sync.Mutex
	entries map[string]*entities.QueueEntry
	config  Config

	now func() time.Time
}

func NewQueue(config Config) *Queue {
	if config.BaseTolerance <= 0 {
		config = DefaultConfig()
	}
	// Tick divides by WidenEvery; a zero interval must never reach it.
	if config.WidenEvery <= 0 {
		config.WidenEvery = DefaultConfig().WidenEvery
	}
	return &Queue{
		entries: make(map[string]*entities.QueueEntry),
		config:  config,
		now:     time.Now,
	}
}

// Join enqueues the player, or returns an immediate pairing when a waiting
// entry of the same match type is already within tolerance. A re-join
// replaces the prior entry and resets its wait.
func (q *Queue) Join(entry entities.QueueEntry) *Pairing {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry.JoinedAt = q.now()
	entry.ToleranceRadius = q.config.BaseTolerance
	delete(q.entries, entry.PlayerId)

	var best *entities.QueueEntry
	for _, waiting := range q.entries {
		if waiting.MatchType != entry.MatchType {
			continue
		}
		gap := absGap(entry.Rating, waiting.Rating)
		if gap > max(entry.ToleranceRadius, waiting.ToleranceRadius) {
			continue
		}
		if best == nil || closer(entry.Rating, waiting, best) {
			best = waiting
		}
	}
	if best != nil {
		delete(q.entries, best.PlayerId)
		logging.Info("immediate pairing",
			zap.String("player_id", entry.PlayerId),
			zap.String("opponent_id", best.PlayerId),
		)
		return &Pairing{A: entry, B: *best}
	}

	q.entries[entry.PlayerId] = &entry
	return nil
}

// Leave removes the player's entry if present.
func (q *Queue) Leave(playerId string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.entries, playerId)
}

// Reinstate puts two entries back after a failed pairing, keeping their
// original joinedAt so accumulated tolerance is not lost.
func (q *Queue) Reinstate(a, b entities.QueueEntry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries[a.PlayerId] = &a
	q.entries[b.PlayerId] = &b
}

// Tick widens every entry's tolerance by wait time, then pairs the first
// adjacent pair (by ascending rating, ties by earlier joinedAt) whose gap
// fits the wider of the two tolerances. At most one pairing per tick.
func (q *Queue) Tick() *Pairing {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	sorted := make([]*entities.QueueEntry, 0, len(q.entries))
	for _, entry := range q.entries {
		waited := now.Sub(entry.JoinedAt)
		steps := float64(waited / q.config.WidenEvery)
		tolerance := q.config.BaseTolerance + q.config.WidenStep*steps
		if tolerance > entry.ToleranceRadius {
			entry.ToleranceRadius = tolerance
		}
		sorted = append(sorted, entry)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Rating != sorted[j].Rating {
			return sorted[i].Rating < sorted[j].Rating
		}
		return sorted[i].JoinedAt.Before(sorted[j].JoinedAt)
	})

	for i := 0; i+1 < len(sorted); i++ {
		a, b := sorted[i], sorted[i+1]
		if a.MatchType != b.MatchType {
			continue
		}
		gap := absGap(a.Rating, b.Rating)
		if gap > max(a.ToleranceRadius, b.ToleranceRadius) {
			continue
		}
		delete(q.entries, a.PlayerId)
		delete(q.entries, b.PlayerId)
		logging.Info("pairing on tick",
			zap.String("player_a", a.PlayerId),
			zap.String("player_b", b.PlayerId),
			zap.Float64("gap", gap),
		)
		return &Pairing{A: *a, B: *b}
	}
	return nil
}

// Waiting reports whether the player currently has a queue entry.
func (q *Queue) Waiting(playerId string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.entries[playerId]
	return ok
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

func absGap(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

func closer(rating float64, candidate, current *entities.QueueEntry) bool {
	cg, bg := absGap(rating, candidate.Rating), absGap(rating, current.Rating)
	if cg != bg {
		return cg < bg
	}
	return candidate.JoinedAt.Before(current.JoinedAt)
}
