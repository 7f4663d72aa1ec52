package server

import (
	"context"
	"sync"
	"time"

	"github.com/codeduel-vn/codeduel/internal/domains/entities"
	"github.com/codeduel-vn/codeduel/pkg/logging"
	"github.com/codeduel-vn/codeduel/pkg/utils"
	"go.uber.org/zap"
)

// Finalize reasons, surfaced verbatim in match_end events and records.
const (
	ReasonCorrectSolution      = "correct solution"
	ReasonHigherScore          = "higher score at timeout"
	ReasonEqualScores          = "equal scores at timeout"
	ReasonOpponentNoSubmission = "opponent made no submission"
	ReasonNoContest            = "no submissions"
)

const submissionBacklog = 8

type submissionJob struct {
	playerId string
	language string
	code     string
}

// evaluator is the code judge as seen by the match loop.
type evaluator interface {
	Evaluate(ctx context.Context, code, language string, cases []entities.TestCase) entities.JudgeVerdict
}

// Match drives one duel through Waiting -> InProgress -> Completed. A
// single goroutine consumes jobCh so submission handling is serialized per
// match; the deadline timer and finalize share the mutex-guarded decided
// flag, so exactly one finalize path wins.
type Match struct {
	id        string
	matchType string
	players   [2]*player
	ratings   [2]entities.UserRating
	problem   entities.Problem

	status   entities.MatchStatus
	startAt  time.Time
	deadline time.Time

	latest      map[string]entities.Submission
	submissions []entities.Submission

	jobCh     chan submissionJob
	timer     *time.Timer
	decided   bool
	decidedAt time.Time
	winnerId  string
	reason    string
	mu        sync.Mutex

	judge           evaluator
	notify          func(playerId string, event interface{})
	saveSubmission  func(entities.Submission)
	finalizeHandler func(*Match)
	clock           func() time.Time
}

// begin moves the match out of the countdown: arms the deadline timer and
// starts the submission loop.
func (m *Match) begin() {
	m.mu.Lock()
	if m.decided {
		m.mu.Unlock()
		return
	}
	timeLimit := time.Duration(m.problem.TimeLimitSeconds) * time.Second
	m.status = entities.MatchInProgress
	m.startAt = m.clock()
	m.deadline = m.startAt.Add(timeLimit)
	m.timer = time.AfterFunc(timeLimit, m.resolveTimeout)
	startAt, deadline := m.startAt, m.deadline
	m.mu.Unlock()

	go m.run()

	for _, p := range m.players {
		m.notify(p.Id, matchStartedEvent{
			Type:      "match_started",
			MatchId:   m.id,
			StartTime: startAt,
			Deadline:  deadline,
			Problem:   m.problem.Summary(),
		})
	}
	logging.Info("match started",
		zap.String("match_id", m.id),
		zap.Time("deadline", deadline),
	)
}

// submit queues a submission for judging. The send happens under the
// mutex, so it can never race the close in finalize.
func (m *Match) submit(playerId, language, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.decided {
		return ErrMatchDecided
	}
	if m.status != entities.MatchInProgress {
		return ErrMatchNotStarted
	}
	select {
	case m.jobCh <- submissionJob{playerId: playerId, language: language, code: code}:
		return nil
	default:
		return ErrTooManyPending
	}
}

func (m *Match) run() {
	for job := range m.jobCh {
		m.process(job)
	}
}

func (m *Match) process(job submissionJob) {
	m.mu.Lock()
	if m.decided {
		m.mu.Unlock()
		m.notify(job.playerId, errorEvent(ErrStatusMatchDecided, "match already decided"))
		return
	}
	startAt := m.startAt
	m.mu.Unlock()

	m.notify(job.playerId, submissionReceivedEvent{Type: "submission_received", MatchId: m.id})

	verdict := m.judge.Evaluate(context.Background(), job.code, job.language, m.problem.TestCases)
	now := m.clock()
	submission := entities.Submission{
		SubmissionId:      utils.GenerateUUID(),
		MatchId:           m.id,
		PlayerId:          job.playerId,
		Language:          job.language,
		Code:              job.code,
		Verdict:           verdict,
		SubmittedAt:       now,
		ElapsedSinceStart: now.Sub(startAt),
	}

	m.mu.Lock()
	if m.decided {
		// The deadline settled the match while this submission was being
		// judged; the outcome must not change.
		m.mu.Unlock()
		m.notify(job.playerId, errorEvent(ErrStatusMatchDecided, "match already decided"))
		return
	}
	m.latest[job.playerId] = submission
	m.submissions = append(m.submissions, submission)
	m.mu.Unlock()

	m.saveSubmission(submission)

	// Submitter sees their full verdict before the opponent learns
	// anything; the opponent gets the redacted summary only.
	m.notify(job.playerId, submissionResultEvent{
		Type:    "submission_result",
		MatchId: m.id,
		Verdict: verdict,
	})
	m.notify(m.opponentOf(job.playerId), opponentSubmittedEvent{
		Type:         "opponent_submitted",
		MatchId:      m.id,
		PassedCount:  verdict.PassedCount,
		TotalCount:   verdict.TotalCount,
		ScorePercent: verdict.ScorePercent,
	})

	logging.Info("submission judged",
		zap.String("match_id", m.id),
		zap.String("player_id", job.playerId),
		zap.String("outcome", string(verdict.Outcome)),
		zap.Float64("score", verdict.ScorePercent),
	)

	if verdict.Outcome == entities.OutcomeAccepted {
		m.finalize(job.playerId, ReasonCorrectSolution)
	}
}

// resolveTimeout settles the match from the players' final recorded
// submissions once the deadline fires.
func (m *Match) resolveTimeout() {
	m.mu.Lock()
	if m.decided || m.status != entities.MatchInProgress {
		m.mu.Unlock()
		return
	}
	subA, hasA := m.latest[m.players[0].Id]
	subB, hasB := m.latest[m.players[1].Id]
	m.mu.Unlock()

	switch {
	case !hasA && !hasB:
		m.finalize("", ReasonNoContest)
	case hasA && !hasB:
		m.finalize(m.players[0].Id, ReasonOpponentNoSubmission)
	case hasB && !hasA:
		m.finalize(m.players[1].Id, ReasonOpponentNoSubmission)
	case subA.Verdict.ScorePercent > subB.Verdict.ScorePercent:
		m.finalize(m.players[0].Id, ReasonHigherScore)
	case subB.Verdict.ScorePercent > subA.Verdict.ScorePercent:
		m.finalize(m.players[1].Id, ReasonHigherScore)
	default:
		m.finalize("", ReasonEqualScores)
	}
}

// finalize is the single completion path. The check-and-set on decided
// runs before any side effect, so a last-second accepted submission and a
// concurrently firing deadline cannot both settle the match.
func (m *Match) finalize(winnerId, reason string) {
	m.mu.Lock()
	if m.decided {
		m.mu.Unlock()
		return
	}
	m.decided = true
	m.decidedAt = m.clock()
	m.status = entities.MatchCompleted
	m.winnerId = winnerId
	m.reason = reason
	if m.timer != nil {
		m.timer.Stop()
	}
	close(m.jobCh)
	m.mu.Unlock()

	logging.Info("match decided",
		zap.String("match_id", m.id),
		zap.String("winner_id", winnerId),
		zap.String("reason", reason),
	)
	m.finalizeHandler(m)
}

func (m *Match) isDecided() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decided
}

func (m *Match) opponentOf(playerId string) string {
	if m.players[0].Id == playerId {
		return m.players[1].Id
	}
	return m.players[0].Id
}

func (m *Match) hasPlayer(playerId string) bool {
	return m.players[0].Id == playerId || m.players[1].Id == playerId
}

// languageAllowed checks the submission language against the problem's
// supported set; an empty set allows any language the judge can run.
func (m *Match) languageAllowed(language string) bool {
	if len(m.problem.Languages) == 0 {
		return true
	}
	for _, lang := range m.problem.Languages {
		if lang == language {
			return true
		}
	}
	return false
}

// finalSubmission returns the player's latest recorded submission, if any.
func (m *Match) finalSubmission(playerId string) *entities.Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub, ok := m.latest[playerId]; ok {
		return &sub
	}
	return nil
}

func (m *Match) allSubmissions() []entities.Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entities.Submission, len(m.submissions))
	copy(out, m.submissions)
	return out
}

// record builds the durable match row. Only meaningful once decided.
func (m *Match) record() entities.Match {
	m.mu.Lock()
	defer m.mu.Unlock()
	return entities.Match{
		MatchId:   m.id,
		PlayerAId: m.players[0].Id,
		PlayerBId: m.players[1].Id,
		ProblemId: m.problem.ProblemId,
		MatchType: m.matchType,
		StartTime: m.startAt,
		Deadline:  m.deadline,
		DecidedAt: m.decidedAt,
		WinnerId:  m.winnerId,
		Reason:    m.reason,
		Status:    m.status,
	}
}
