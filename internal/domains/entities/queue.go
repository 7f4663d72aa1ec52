package entities

import "time"

// QueueEntry is one waiting player. ToleranceRadius is the widest rating
// gap the matchmaker currently accepts for this entry; it only grows while
// the entry waits.
type QueueEntry struct {
	PlayerId        string    `json:"playerId"`
	DisplayName     string    `json:"displayName"`
	Rating          float64   `json:"rating"`
	MatchesPlayed   int       `json:"matchesPlayed"`
	MatchType       string    `json:"desiredMatchType"`
	JoinedAt        time.Time `json:"joinedAt"`
	ToleranceRadius float64   `json:"toleranceRadius"`
}
