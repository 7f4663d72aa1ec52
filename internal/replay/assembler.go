package replay

import (
	"context"
	"sort"

	"github.com/codeduel-vn/codeduel/internal/domains/entities"
	"github.com/codeduel-vn/codeduel/pkg/logging"
	"go.uber.org/zap"
)

const (
	EventSnapshot   = "snapshot"
	EventSubmission = "submission"
	EventMatchEnd   = "match_end"
)

// SnapshotSource reads back a player's appended code snapshots for one
// match, in append order.
type SnapshotSource interface {
	ListSnapshots(ctx context.Context, matchId, playerId string) ([]entities.CodeSnapshot, error)
}

type Assembler struct {
	snapshots SnapshotSource
}

func NewAssembler(snapshots SnapshotSource) *Assembler {
	return &Assembler{snapshots: snapshots}
}

// Assemble merges both players' snapshot timelines and the match's
// submission events into one time-ordered replay. Snapshot reads are best
// effort: a failed read leaves that timeline empty rather than failing the
// replay.
func (a *Assembler) Assemble(
	ctx context.Context,
	match entities.Match,
	submissions []entities.Submission,
) entities.Replay {
	timelineA := a.timeline(ctx, match.MatchId, match.PlayerAId)
	timelineB := a.timeline(ctx, match.MatchId, match.PlayerBId)

	events := make([]entities.ReplayEvent, 0, len(timelineA)+len(timelineB)+len(submissions)+1)
	for _, snap := range timelineA {
		events = append(events, snapshotEvent(snap))
	}
	for _, snap := range timelineB {
		events = append(events, snapshotEvent(snap))
	}
	for _, sub := range submissions {
		events = append(events, entities.ReplayEvent{
			Type:      EventSubmission,
			PlayerId:  sub.PlayerId,
			Timestamp: sub.SubmittedAt,
			Outcome:   string(sub.Verdict.Outcome),
			Score:     sub.Verdict.ScorePercent,
		})
	}
	endedAt := match.DecidedAt
	if endedAt.IsZero() {
		endedAt = match.Deadline
	}
	events = append(events, entities.ReplayEvent{
		Type:      EventMatchEnd,
		PlayerId:  match.WinnerId,
		Timestamp: endedAt,
		Outcome:   match.Reason,
	})

	// Stable: snapshots were appended first, so on equal timestamps a
	// player's code state precedes the submission built from it.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	return entities.Replay{
		MatchId:         match.MatchId,
		PlayerATimeline: timelineA,
		PlayerBTimeline: timelineB,
		Events:          events,
	}
}

func (a *Assembler) timeline(ctx context.Context, matchId, playerId string) []entities.CodeSnapshot {
	snaps, err := a.snapshots.ListSnapshots(ctx, matchId, playerId)
	if err != nil {
		logging.Error("failed to read snapshot timeline",
			zap.String("match_id", matchId),
			zap.String("player_id", playerId),
			zap.Error(err),
		)
		return nil
	}
	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].Timestamp.Before(snaps[j].Timestamp)
	})
	return snaps
}

func snapshotEvent(snap entities.CodeSnapshot) entities.ReplayEvent {
	return entities.ReplayEvent{
		Type:      EventSnapshot,
		PlayerId:  snap.PlayerId,
		Timestamp: snap.Timestamp,
	}
}
