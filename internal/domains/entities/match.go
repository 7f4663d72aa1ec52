package entities

import "time"

type MatchStatus string

const (
	MatchWaiting    MatchStatus = "Waiting"
	MatchInProgress MatchStatus = "InProgress"
	MatchCompleted  MatchStatus = "Completed"
)

// Match is the durable record of a duel. WinnerId is empty for a draw.
type Match struct {
	MatchId   string      `dynamodbav:"MatchId" json:"matchId"`
	PlayerAId string      `dynamodbav:"PlayerAId" json:"playerAId"`
	PlayerBId string      `dynamodbav:"PlayerBId" json:"playerBId"`
	ProblemId string      `dynamodbav:"ProblemId" json:"problemId"`
	MatchType string      `dynamodbav:"MatchType" json:"matchType"`
	StartTime time.Time   `dynamodbav:"StartTime" json:"startTime"`
	Deadline  time.Time   `dynamodbav:"Deadline" json:"deadline"`
	DecidedAt time.Time   `dynamodbav:"DecidedAt" json:"decidedAt"`
	WinnerId  string      `dynamodbav:"WinnerId" json:"winnerId"`
	Reason    string      `dynamodbav:"Reason" json:"reason"`
	Status    MatchStatus `dynamodbav:"Status" json:"status"`
}
