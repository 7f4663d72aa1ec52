package entities

import "time"

type Submission struct {
	SubmissionId      string        `dynamodbav:"SubmissionId" json:"submissionId"`
	MatchId           string        `dynamodbav:"MatchId" json:"matchId"`
	PlayerId          string        `dynamodbav:"PlayerId" json:"playerId"`
	Language          string        `dynamodbav:"Language" json:"language"`
	Code              string        `dynamodbav:"Code" json:"code"`
	Verdict           JudgeVerdict  `dynamodbav:"Verdict" json:"judgeVerdict"`
	SubmittedAt       time.Time     `dynamodbav:"SubmittedAt" json:"submittedAt"`
	ElapsedSinceStart time.Duration `dynamodbav:"ElapsedSinceStart" json:"elapsedSinceStart"`
}
