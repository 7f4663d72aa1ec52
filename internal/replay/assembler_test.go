package replay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/codeduel-vn/codeduel/internal/domains/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSnapshots struct {
	byPlayer map[string][]entities.CodeSnapshot
	err      error
}

func (s *stubSnapshots) ListSnapshots(_ context.Context, _, playerId string) ([]entities.CodeSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byPlayer[playerId], nil
}

func at(sec int) time.Time {
	return time.Date(2025, 6, 1, 12, 0, sec, 0, time.UTC)
}

func TestAssembleOrdersEvents(t *testing.T) {
	source := &stubSnapshots{byPlayer: map[string][]entities.CodeSnapshot{
		"a": {
			{MatchId: "m1", PlayerId: "a", Code: "v2", Timestamp: at(20)},
			{MatchId: "m1", PlayerId: "a", Code: "v1", Timestamp: at(5)},
		},
		"b": {
			{MatchId: "m1", PlayerId: "b", Code: "w1", Timestamp: at(10)},
		},
	}}
	match := entities.Match{
		MatchId:   "m1",
		PlayerAId: "a",
		PlayerBId: "b",
		WinnerId:  "a",
		Reason:    "correct solution",
		Deadline:  at(60),
		DecidedAt: at(35),
	}
	submissions := []entities.Submission{
		{
			MatchId: "m1", PlayerId: "a", SubmittedAt: at(30),
			Verdict: entities.JudgeVerdict{Outcome: entities.OutcomeAccepted, ScorePercent: 100},
		},
	}

	got := NewAssembler(source).Assemble(context.Background(), match, submissions)

	// Unsorted source timelines come back time-ordered.
	require.Len(t, got.PlayerATimeline, 2)
	assert.Equal(t, "v1", got.PlayerATimeline[0].Code)
	assert.Equal(t, "v2", got.PlayerATimeline[1].Code)

	require.Len(t, got.Events, 5)
	var last time.Time
	for _, ev := range got.Events {
		assert.False(t, ev.Timestamp.Before(last), "events out of order")
		last = ev.Timestamp
	}
	assert.Equal(t, EventMatchEnd, got.Events[4].Type)
	assert.Equal(t, "a", got.Events[4].PlayerId)
	assert.Equal(t, "correct solution", got.Events[4].Outcome)
	// An early win ends the replay at decision time, not the deadline.
	assert.Equal(t, at(35), got.Events[4].Timestamp)
}

func TestAssembleSnapshotBeforeSubmissionOnTie(t *testing.T) {
	source := &stubSnapshots{byPlayer: map[string][]entities.CodeSnapshot{
		"a": {{MatchId: "m1", PlayerId: "a", Code: "final", Timestamp: at(30)}},
	}}
	match := entities.Match{MatchId: "m1", PlayerAId: "a", PlayerBId: "b", Deadline: at(60)}
	submissions := []entities.Submission{
		{MatchId: "m1", PlayerId: "a", SubmittedAt: at(30)},
	}

	got := NewAssembler(source).Assemble(context.Background(), match, submissions)

	require.Len(t, got.Events, 3)
	assert.Equal(t, EventSnapshot, got.Events[0].Type)
	assert.Equal(t, EventSubmission, got.Events[1].Type)
}

func TestAssembleSurvivesSnapshotFailure(t *testing.T) {
	source := &stubSnapshots{err: errors.New("redis down")}
	match := entities.Match{MatchId: "m1", PlayerAId: "a", PlayerBId: "b", Deadline: at(60)}

	got := NewAssembler(source).Assemble(context.Background(), match, nil)

	assert.Empty(t, got.PlayerATimeline)
	assert.Empty(t, got.PlayerBTimeline)
	require.Len(t, got.Events, 1)
	assert.Equal(t, EventMatchEnd, got.Events[0].Type)
}
