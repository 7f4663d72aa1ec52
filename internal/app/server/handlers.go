package server

import (
	"context"
	"errors"
	"time"

	"github.com/codeduel-vn/codeduel/internal/aws/storage"
	"github.com/codeduel-vn/codeduel/internal/domains/entities"
	"github.com/codeduel-vn/codeduel/internal/matchmaking"
	"github.com/codeduel-vn/codeduel/pkg/logging"
	"github.com/codeduel-vn/codeduel/pkg/rating"
	"github.com/codeduel-vn/codeduel/pkg/utils"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const collaboratorTimeout = 5 * time.Second

// Handler for when a player sends a message
func (s *server) handleWebSocketMessage(p *player, pl payload) {
	switch pl.Type {
	case "join_queue":
		s.handleJoinQueue(p, pl.Data)
	case "leave_queue":
		s.handleLeaveQueue(p)
	case "submit_solution":
		s.handleSubmitSolution(p, pl.Data)
	case "code_snapshot":
		s.handleCodeSnapshot(p, pl.Data)
	default:
		logging.Info("invalid payload type", zap.String("type", pl.Type))
		p.writeJson(errorEvent(ErrStatusInvalidPayload, "unknown message type"))
	}
}

func (s *server) handleJoinQueue(p *player, data map[string]string) {
	if _, busy := s.inMatch.Load(p.Id); busy {
		p.writeJson(errorEvent(ErrStatusAlreadyInMatch, "already in an active match"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
	defer cancel()
	row, err := s.storage.GetUserRating(ctx, p.Id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			p.writeJson(errorEvent(ErrStatusUnregisteredPlayer, "no rating profile for player"))
		} else {
			logging.Error("failed to load rating row", zap.String("player_id", p.Id), zap.Error(err))
			p.writeJson(errorEvent(ErrStatusMatchmakingFailed, "could not load player profile"))
		}
		return
	}
	p.DisplayName = row.DisplayName

	matchType := data["matchType"]
	if matchType == "" {
		matchType = "ranked"
	}
	entry := entities.QueueEntry{
		PlayerId:      p.Id,
		DisplayName:   row.DisplayName,
		Rating:        row.Rating,
		MatchesPlayed: row.MatchesPlayed,
		MatchType:     matchType,
	}
	pairing := s.queue.Join(entry)
	if pairing == nil && s.evictIfPaired(p) {
		return
	}

	p.writeJson(queueJoinedEvent{
		Type:            "queue_joined",
		MatchType:       matchType,
		ToleranceRadius: s.config.Matchmaking.BaseTolerance,
	})
	logging.Info("player queued",
		zap.String("player_id", p.Id),
		zap.String("match_type", matchType),
		zap.Float64("rating", row.Rating),
	)

	if pairing != nil {
		s.handlePairing(*pairing)
	}
}

// evictIfPaired drops the player's queue entry when a concurrent pairing
// marked them busy between the in-match guard and the enqueue.
func (s *server) evictIfPaired(p *player) bool {
	if _, busy := s.inMatch.Load(p.Id); !busy {
		return false
	}
	s.queue.Leave(p.Id)
	p.writeJson(errorEvent(ErrStatusAlreadyInMatch, "already in an active match"))
	return true
}

func (s *server) handleLeaveQueue(p *player) {
	s.queue.Leave(p.Id)
	p.writeJson(queueLeftEvent{Type: "queue_left"})
}

// Handler for when two queue entries pair up. Problem selection failure
// returns both players to the queue with their wait preserved.
func (s *server) handlePairing(pairing matchmaking.Pairing) {
	matchId := utils.GenerateUUID()
	// Mark both players busy before anything can fail, then sweep the
	// queue: a join racing this pairing either lands before the sweep and
	// is removed here, or after it and sees the busy mark on its re-check.
	s.inMatch.Store(pairing.A.PlayerId, matchId)
	s.inMatch.Store(pairing.B.PlayerId, matchId)
	s.queue.Leave(pairing.A.PlayerId)
	s.queue.Leave(pairing.B.PlayerId)

	ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
	defer cancel()

	problem, err := s.storage.PickActiveProblem(ctx)
	if err != nil {
		logging.Error("problem selection failed, re-queueing pair",
			zap.String("player_a", pairing.A.PlayerId),
			zap.String("player_b", pairing.B.PlayerId),
			zap.Error(err),
		)
		s.unpair(pairing)
		s.sendToPlayer(pairing.A.PlayerId, errorEvent(ErrStatusMatchmakingFailed, "no problem available, still queued"))
		s.sendToPlayer(pairing.B.PlayerId, errorEvent(ErrStatusMatchmakingFailed, "no problem available, still queued"))
		return
	}

	rowA, errA := s.storage.GetUserRating(ctx, pairing.A.PlayerId)
	rowB, errB := s.storage.GetUserRating(ctx, pairing.B.PlayerId)
	if errA != nil || errB != nil {
		logging.Error("rating lookup failed, re-queueing pair",
			zap.NamedError("error_a", errA),
			zap.NamedError("error_b", errB),
		)
		s.unpair(pairing)
		return
	}

	match := s.newMatch(matchId, pairing, [2]entities.UserRating{rowA, rowB}, problem)
	s.matches.Store(matchId, match)

	countdown := s.config.CountdownSeconds
	s.sendToPlayer(pairing.A.PlayerId, matchFoundEvent{
		Type:    "match_found",
		MatchId: matchId,
		Opponent: opponentSummary{
			PlayerId:    pairing.B.PlayerId,
			DisplayName: rowB.DisplayName,
			Rating:      rowB.Rating,
		},
		Problem:          problem.Summary(),
		CountdownSeconds: countdown,
	})
	s.sendToPlayer(pairing.B.PlayerId, matchFoundEvent{
		Type:    "match_found",
		MatchId: matchId,
		Opponent: opponentSummary{
			PlayerId:    pairing.A.PlayerId,
			DisplayName: rowA.DisplayName,
			Rating:      rowA.Rating,
		},
		Problem:          problem.Summary(),
		CountdownSeconds: countdown,
	})

	logging.Info("match created",
		zap.String("match_id", matchId),
		zap.String("player_a", pairing.A.PlayerId),
		zap.String("player_b", pairing.B.PlayerId),
		zap.String("problem_id", problem.ProblemId),
	)

	// Both clients see the opponent and problem during the countdown;
	// the deadline only starts once it elapses.
	time.AfterFunc(time.Duration(countdown)*time.Second, match.begin)
}

func (s *server) handleSubmitSolution(p *player, data map[string]string) {
	matchId := data["matchId"]
	value, loaded := s.matches.Load(matchId)
	if !loaded {
		p.writeJson(errorEvent(ErrStatusUnknownMatch, "unknown match"))
		return
	}
	match := value.(*Match)
	if !match.hasPlayer(p.Id) {
		p.writeJson(errorEvent(ErrStatusNotAPlayer, "not a player in this match"))
		return
	}
	language, code := data["language"], data["code"]
	if language == "" || code == "" {
		p.writeJson(errorEvent(ErrStatusInvalidPayload, "language and code are required"))
		return
	}
	if !match.languageAllowed(language) {
		p.writeJson(errorEvent(ErrStatusBadLanguage, "language not supported for this problem"))
		return
	}

	switch err := match.submit(p.Id, language, code); {
	case errors.Is(err, ErrMatchDecided):
		p.writeJson(errorEvent(ErrStatusMatchDecided, "match already decided"))
	case errors.Is(err, ErrMatchNotStarted):
		p.writeJson(errorEvent(ErrStatusMatchNotStarted, "match has not started"))
	case errors.Is(err, ErrTooManyPending):
		p.writeJson(errorEvent(ErrStatusSubmissionBacklog, "too many submissions pending"))
	}
}

// Handler for code snapshots: append-only, fire and forget. Failures are
// logged and never surfaced to the player.
func (s *server) handleCodeSnapshot(p *player, data map[string]string) {
	matchId, code := data["matchId"], data["code"]
	if matchId == "" {
		return
	}
	timestamp, err := time.Parse(time.RFC3339, data["timestamp"])
	if err != nil {
		timestamp = time.Now()
	}
	snap := entities.CodeSnapshot{
		MatchId:   matchId,
		PlayerId:  p.Id,
		Code:      code,
		Timestamp: timestamp,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
		defer cancel()
		if err := s.snapshots.Append(ctx, snap); err != nil {
			logging.Error("failed to append code snapshot",
				zap.String("match_id", matchId),
				zap.String("player_id", p.Id),
				zap.Error(err),
			)
		}
	}()
}

// Handler for when a player connection closes. A reconnect replaces the
// player's conn, so the replaced loop's teardown must not touch the live
// session: only the loop that still owns the conn tears down.
func (s *server) handlePlayerDisconnect(p *player, conn *websocket.Conn) {
	if !p.owns(conn) {
		return
	}
	s.queue.Leave(p.Id)
	p.close()
	// An in-match disconnect does not end the match; the deadline still
	// governs. Keep the registry entry so a reconnect picks it back up.
	if _, busy := s.inMatch.Load(p.Id); !busy {
		s.players.Delete(p.Id)
	}
}

// Handler for durably recording a submission attempt.
func (s *server) handleSaveSubmission(submission entities.Submission) {
	ctx, cancel := context.WithTimeout(context.Background(), collaboratorTimeout)
	defer cancel()
	if err := s.storage.PutSubmission(ctx, submission); err != nil {
		logging.Error("failed to persist submission",
			zap.String("submission_id", submission.SubmissionId),
			zap.String("match_id", submission.MatchId),
			zap.Error(err),
		)
	}
}

// Handler for when a match is decided. Computes the rating settlement,
// persists everything, assembles the replay, and emits match_end to both
// sides. Persistence failures are logged for reconciliation and never
// block the emit.
func (s *server) handleMatchEnd(m *Match) {
	record := m.record()

	scoreA := rating.Draw
	switch record.WinnerId {
	case record.PlayerAId:
		scoreA = rating.Win
	case record.PlayerBId:
		scoreA = rating.Loss
	}
	change := rating.Compute(m.ratings[0], m.ratings[1], scoreA)

	updatedA := applyOutcome(m.ratings[0], change.DeltaA, scoreA)
	updatedB := applyOutcome(m.ratings[1], change.DeltaB, 1-scoreA)

	ctx, cancel := context.WithTimeout(context.Background(), 3*collaboratorTimeout)
	defer cancel()

	if err := retryOnce(func() error { return s.storage.PutUserRating(ctx, updatedA) }); err != nil {
		logging.Error("failed to persist rating", zap.String("player_id", updatedA.UserId), zap.Error(err))
	}
	if err := retryOnce(func() error { return s.storage.PutUserRating(ctx, updatedB) }); err != nil {
		logging.Error("failed to persist rating", zap.String("player_id", updatedB.UserId), zap.Error(err))
	}
	if err := retryOnce(func() error { return s.storage.PutMatchRecord(ctx, record, change) }); err != nil {
		logging.Error("failed to persist match record", zap.String("match_id", record.MatchId), zap.Error(err))
	}

	matchReplay := s.assembler.Assemble(ctx, record, m.allSubmissions())
	if err := retryOnce(func() error { return s.storage.PutReplay(ctx, matchReplay) }); err != nil {
		logging.Error("failed to persist replay", zap.String("match_id", record.MatchId), zap.Error(err))
	} else if err := s.snapshots.Purge(ctx, record.MatchId, record.PlayerAId, record.PlayerBId); err != nil {
		logging.Error("failed to purge snapshots", zap.String("match_id", record.MatchId), zap.Error(err))
	}

	var winnerId *string
	if record.WinnerId != "" {
		winnerId = &record.WinnerId
	}
	event := matchEndEvent{
		Type:     "match_end",
		MatchId:  record.MatchId,
		WinnerId: winnerId,
		Reason:   record.Reason,
		PerPlayer: map[string]playerOutcome{
			record.PlayerAId: {
				RatingBefore:    change.RatingABefore,
				RatingAfter:     updatedA.Rating,
				Delta:           change.DeltaA,
				FinalSubmission: m.finalSubmission(record.PlayerAId),
			},
			record.PlayerBId: {
				RatingBefore:    change.RatingBBefore,
				RatingAfter:     updatedB.Rating,
				Delta:           change.DeltaB,
				FinalSubmission: m.finalSubmission(record.PlayerBId),
			},
		},
	}
	s.sendToPlayer(record.PlayerAId, event)
	s.sendToPlayer(record.PlayerBId, event)

	s.removeMatch(m)
	logging.Info("match settled",
		zap.String("match_id", record.MatchId),
		zap.String("winner_id", record.WinnerId),
		zap.String("reason", record.Reason),
		zap.Float64("delta_a", change.DeltaA),
		zap.Float64("delta_b", change.DeltaB),
	)
}

func applyOutcome(row entities.UserRating, delta, score float64) entities.UserRating {
	row.Rating += delta
	row.MatchesPlayed++
	switch score {
	case rating.Win:
		row.Wins++
	case rating.Loss:
		row.Losses++
	default:
		row.Draws++
	}
	return row
}
