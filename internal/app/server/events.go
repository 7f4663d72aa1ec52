package server

import (
	"time"

	"github.com/codeduel-vn/codeduel/internal/domains/entities"
)

// Inbound message envelope.
type payload struct {
	Type string            `json:"type"`
	Data map[string]string `json:"data"`
}

type errorResponse struct {
	Type   string `json:"type"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

func errorEvent(status, message string) errorResponse {
	return errorResponse{Type: "error", Status: status, Error: message}
}

type queueJoinedEvent struct {
	Type            string  `json:"type"`
	MatchType       string  `json:"matchType"`
	ToleranceRadius float64 `json:"toleranceRadius"`
}

type queueLeftEvent struct {
	Type string `json:"type"`
}

type opponentSummary struct {
	PlayerId    string  `json:"playerId"`
	DisplayName string  `json:"displayName"`
	Rating      float64 `json:"rating"`
}

type matchFoundEvent struct {
	Type             string                  `json:"type"`
	MatchId          string                  `json:"matchId"`
	Opponent         opponentSummary         `json:"opponentSummary"`
	Problem          entities.ProblemSummary `json:"problemSummary"`
	CountdownSeconds int                     `json:"countdownSeconds"`
}

type matchStartedEvent struct {
	Type      string                  `json:"type"`
	MatchId   string                  `json:"matchId"`
	StartTime time.Time               `json:"startTime"`
	Deadline  time.Time               `json:"deadline"`
	Problem   entities.ProblemSummary `json:"problemSummary"`
}

type submissionReceivedEvent struct {
	Type    string `json:"type"`
	MatchId string `json:"matchId"`
}

type submissionResultEvent struct {
	Type    string                `json:"type"`
	MatchId string                `json:"matchId"`
	Verdict entities.JudgeVerdict `json:"judgeVerdict"`
}

// opponentSubmittedEvent is the redacted view: score and pass count only,
// never code or per-test content.
type opponentSubmittedEvent struct {
	Type         string  `json:"type"`
	MatchId      string  `json:"matchId"`
	PassedCount  int     `json:"passedCount"`
	TotalCount   int     `json:"totalCount"`
	ScorePercent float64 `json:"scorePercent"`
}

type playerOutcome struct {
	RatingBefore    float64              `json:"ratingBefore"`
	RatingAfter     float64              `json:"ratingAfter"`
	Delta           float64              `json:"delta"`
	FinalSubmission *entities.Submission `json:"finalSubmission"`
}

type matchEndEvent struct {
	Type      string                   `json:"type"`
	MatchId   string                   `json:"matchId"`
	WinnerId  *string                  `json:"winnerId"`
	Reason    string                   `json:"reason"`
	PerPlayer map[string]playerOutcome `json:"perPlayer"`
}
