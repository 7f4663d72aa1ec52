package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/codeduel-vn/codeduel/internal/domains/entities"
	"github.com/redis/go-redis/v9"
)

// Store is the append-only code snapshot collaborator, backed by one Redis
// list per player per match. Snapshots are consumed once, when the replay
// is assembled, then expired.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(addr, password string, db int) *Store {
	return &Store{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: 24 * time.Hour,
	}
}

func key(matchId, playerId string) string {
	return fmt.Sprintf("snapshots:%s:%s", matchId, playerId)
}

// Append records one snapshot. Timestamps are assigned by the caller.
func (s *Store) Append(ctx context.Context, snap entities.CodeSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	k := key(snap.MatchId, snap.PlayerId)
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, k, data)
	pipe.Expire(ctx, k, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append snapshot: %w", err)
	}
	return nil
}

// ListSnapshots returns the player's snapshots for a match in append order.
func (s *Store) ListSnapshots(ctx context.Context, matchId, playerId string) ([]entities.CodeSnapshot, error) {
	raw, err := s.rdb.LRange(ctx, key(matchId, playerId), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	snaps := make([]entities.CodeSnapshot, 0, len(raw))
	for _, item := range raw {
		var snap entities.CodeSnapshot
		if err := json.Unmarshal([]byte(item), &snap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// Purge drops both players' snapshot lists once the replay is durable.
func (s *Store) Purge(ctx context.Context, matchId string, playerIds ...string) error {
	keys := make([]string, 0, len(playerIds))
	for _, playerId := range playerIds {
		keys = append(keys, key(matchId, playerId))
	}
	return s.rdb.Del(ctx, keys...).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
