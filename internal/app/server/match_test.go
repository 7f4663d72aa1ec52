package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/codeduel-vn/codeduel/internal/domains/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubJudge maps submitted code verbatim to a canned verdict.
type stubJudge struct {
	verdicts map[string]entities.JudgeVerdict
}

func (s *stubJudge) Evaluate(_ context.Context, code, _ string, _ []entities.TestCase) entities.JudgeVerdict {
	return s.verdicts[code]
}

type sentEvent struct {
	playerId string
	event    interface{}
}

type recorder struct {
	mu        sync.Mutex
	events    []sentEvent
	saved     []entities.Submission
	finalized []*Match
}

func (r *recorder) notify(playerId string, event interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sentEvent{playerId: playerId, event: event})
}

func (r *recorder) save(sub entities.Submission) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, sub)
}

func (r *recorder) finalize(m *Match) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finalized = append(r.finalized, m)
}

func (r *recorder) finalizeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.finalized)
}

func (r *recorder) eventsFor(playerId string) []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []interface{}
	for _, ev := range r.events {
		if ev.playerId == playerId {
			out = append(out, ev.event)
		}
	}
	return out
}

func accepted() entities.JudgeVerdict {
	return entities.JudgeVerdict{
		PassedCount: 1, TotalCount: 1, ScorePercent: 100,
		Outcome: entities.OutcomeAccepted,
	}
}

func wrong(score float64) entities.JudgeVerdict {
	return entities.JudgeVerdict{
		PassedCount: 0, TotalCount: 1, ScorePercent: score,
		Outcome: entities.OutcomeWrongAnswer,
	}
}

func newTestMatch(j evaluator) (*Match, *recorder) {
	rec := &recorder{}
	m := &Match{
		id:        "m1",
		matchType: "ranked",
		players:   [2]*player{newPlayer("a", "Alice", nil), newPlayer("b", "Bao", nil)},
		ratings: [2]entities.UserRating{
			{UserId: "a", Rating: 1200, MatchesPlayed: 5},
			{UserId: "b", Rating: 1200, MatchesPlayed: 5},
		},
		problem: entities.Problem{
			ProblemId:        "p1",
			TimeLimitSeconds: 3600, // far enough out that only explicit calls fire
			TestCases:        []entities.TestCase{{ExpectedOutput: "x"}},
		},
		status:          entities.MatchWaiting,
		latest:          make(map[string]entities.Submission),
		jobCh:           make(chan submissionJob, submissionBacklog),
		judge:           j,
		notify:          rec.notify,
		saveSubmission:  rec.save,
		finalizeHandler: rec.finalize,
		clock:           time.Now,
	}
	return m, rec
}

func waitDecided(t *testing.T, rec *recorder) {
	t.Helper()
	require.Eventually(t, func() bool {
		return rec.finalizeCount() == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestAcceptedSubmissionFinalizesMatch(t *testing.T) {
	m, rec := newTestMatch(&stubJudge{verdicts: map[string]entities.JudgeVerdict{
		"winning": accepted(),
	}})
	m.begin()

	require.NoError(t, m.submit("a", "python", "winning"))
	waitDecided(t, rec)

	assert.Equal(t, "a", m.winnerId)
	assert.Equal(t, ReasonCorrectSolution, m.reason)
	assert.Equal(t, entities.MatchCompleted, m.record().Status)
	require.Len(t, rec.saved, 1)
	assert.Equal(t, "a", rec.saved[0].PlayerId)
}

func TestSubmitterSeesResultBeforeOpponentSummary(t *testing.T) {
	m, rec := newTestMatch(&stubJudge{verdicts: map[string]entities.JudgeVerdict{
		"partial": wrong(40),
	}})
	m.begin()

	require.NoError(t, m.submit("a", "python", "partial"))
	require.Eventually(t, func() bool {
		return len(rec.eventsFor("b")) >= 2 // match_started + opponent_submitted
	}, 2*time.Second, 5*time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	resultIdx, summaryIdx := -1, -1
	for i, ev := range rec.events {
		switch ev.event.(type) {
		case submissionResultEvent:
			resultIdx = i
		case opponentSubmittedEvent:
			summaryIdx = i
		}
	}
	require.GreaterOrEqual(t, resultIdx, 0)
	require.GreaterOrEqual(t, summaryIdx, 0)
	assert.Less(t, resultIdx, summaryIdx, "submitter must see their verdict first")

	summary := rec.events[summaryIdx].event.(opponentSubmittedEvent)
	assert.Equal(t, "b", rec.events[summaryIdx].playerId)
	assert.Equal(t, 40.0, summary.ScorePercent)
	assert.False(t, m.isDecided(), "wrong answer must not end the match")
}

func TestSubmitBeforeStartRejected(t *testing.T) {
	m, _ := newTestMatch(&stubJudge{})
	assert.ErrorIs(t, m.submit("a", "python", "code"), ErrMatchNotStarted)
}

func TestLateSubmissionAfterTimeoutRejected(t *testing.T) {
	m, rec := newTestMatch(&stubJudge{verdicts: map[string]entities.JudgeVerdict{
		"late-winner": accepted(),
	}})
	m.begin()

	m.resolveTimeout() // deadline fires first: no submissions, no contest
	waitDecided(t, rec)
	require.Equal(t, "", m.winnerId)
	require.Equal(t, ReasonNoContest, m.reason)

	err := m.submit("a", "python", "late-winner")
	assert.ErrorIs(t, err, ErrMatchDecided)

	// The settled outcome is immutable.
	assert.Equal(t, 1, rec.finalizeCount())
	assert.Equal(t, "", m.winnerId)
	assert.Equal(t, ReasonNoContest, m.reason)
}

func TestFinalizeExactlyOnceUnderConcurrentTriggers(t *testing.T) {
	m, rec := newTestMatch(&stubJudge{})
	m.begin()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.finalize("a", ReasonCorrectSolution)
		}()
		go func() {
			defer wg.Done()
			m.resolveTimeout()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, rec.finalizeCount())
	assert.True(t, m.isDecided())
}

func TestTimeoutResolution(t *testing.T) {
	tests := []struct {
		name       string
		scoreA     *float64
		scoreB     *float64
		wantWinner string
		wantReason string
	}{
		{
			name:       "no submissions is a no-contest draw",
			wantWinner: "",
			wantReason: ReasonNoContest,
		},
		{
			name:       "lone submitter wins by default",
			scoreA:     ptr(60.0),
			wantWinner: "a",
			wantReason: ReasonOpponentNoSubmission,
		},
		{
			name:       "lone submitter wins by default (other side)",
			scoreB:     ptr(10.0),
			wantWinner: "b",
			wantReason: ReasonOpponentNoSubmission,
		},
		{
			name:       "higher score wins",
			scoreA:     ptr(75.0),
			scoreB:     ptr(40.0),
			wantWinner: "a",
			wantReason: ReasonHigherScore,
		},
		{
			name:       "equal scores draw",
			scoreA:     ptr(50.0),
			scoreB:     ptr(50.0),
			wantWinner: "",
			wantReason: ReasonEqualScores,
		},
		{
			name:       "equal zero scores draw",
			scoreA:     ptr(0.0),
			scoreB:     ptr(0.0),
			wantWinner: "",
			wantReason: ReasonEqualScores,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, rec := newTestMatch(&stubJudge{})
			m.begin()

			m.mu.Lock()
			if tt.scoreA != nil {
				m.latest["a"] = entities.Submission{
					PlayerId: "a", MatchId: m.id,
					Verdict: entities.JudgeVerdict{ScorePercent: *tt.scoreA},
				}
			}
			if tt.scoreB != nil {
				m.latest["b"] = entities.Submission{
					PlayerId: "b", MatchId: m.id,
					Verdict: entities.JudgeVerdict{ScorePercent: *tt.scoreB},
				}
			}
			m.mu.Unlock()

			m.resolveTimeout()
			waitDecided(t, rec)

			record := m.record()
			assert.Equal(t, tt.wantWinner, record.WinnerId)
			assert.Equal(t, tt.wantReason, record.Reason)
			assert.Equal(t, entities.MatchCompleted, record.Status)
		})
	}
}

func TestEverySubmissionIsRecorded(t *testing.T) {
	m, rec := newTestMatch(&stubJudge{verdicts: map[string]entities.JudgeVerdict{
		"try1": wrong(20),
		"try2": wrong(60),
	}})
	m.begin()

	require.NoError(t, m.submit("a", "python", "try1"))
	require.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return len(rec.saved) == 1
	}, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, m.submit("a", "python", "try2"))
	require.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return len(rec.saved) == 2
	}, 2*time.Second, 5*time.Millisecond)

	// Both attempts are durably recorded; only the latest counts for
	// timeout resolution.
	assert.Len(t, m.allSubmissions(), 2)
	final := m.finalSubmission("a")
	require.NotNil(t, final)
	assert.Equal(t, 60.0, final.Verdict.ScorePercent)
}

func ptr[T any](v T) *T {
	return &v
}
