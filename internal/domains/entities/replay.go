package entities

import "time"

// CodeSnapshot is one append-only capture of a player's in-progress code.
type CodeSnapshot struct {
	MatchId   string    `dynamodbav:"MatchId" json:"matchId"`
	PlayerId  string    `dynamodbav:"PlayerId" json:"playerId"`
	Code      string    `dynamodbav:"Code" json:"code"`
	Timestamp time.Time `dynamodbav:"Timestamp" json:"timestamp"`
}

type ReplayEvent struct {
	Type      string    `dynamodbav:"Type" json:"type"`
	PlayerId  string    `dynamodbav:"PlayerId" json:"playerId"`
	Timestamp time.Time `dynamodbav:"Timestamp" json:"timestamp"`
	Outcome   string    `dynamodbav:"Outcome" json:"outcome,omitempty"`
	Score     float64   `dynamodbav:"Score" json:"score"`
}

// Replay is assembled once, after the match completes.
type Replay struct {
	MatchId         string         `dynamodbav:"MatchId" json:"matchId"`
	PlayerATimeline []CodeSnapshot `dynamodbav:"PlayerATimeline" json:"playerATimeline"`
	PlayerBTimeline []CodeSnapshot `dynamodbav:"PlayerBTimeline" json:"playerBTimeline"`
	Events          []ReplayEvent  `dynamodbav:"Events" json:"events"`
}
