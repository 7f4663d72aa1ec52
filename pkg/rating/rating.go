package rating

import (
	"math"

	"github.com/codeduel-vn/codeduel/internal/domains/entities"
)

// Actual match scores for player A.
const (
	Win  = 1.0
	Loss = 0.0
	Draw = 0.5
)

// ExpectedScore returns the Elo expected score for a player rated ratingA
// against an opponent rated ratingB.
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1 / (1 + math.Pow(10, (ratingB-ratingA)/400))
}

// KFactor is a decreasing step function of career experience: new
// competitors move fast, veterans are floored at 16.
func KFactor(matchesPlayed int) float64 {
	switch {
	case matchesPlayed < 10:
		return 48
	case matchesPlayed < 20:
		return 32
	case matchesPlayed < 30:
		return 24
	}
	return 16
}

// Compute settles one match. scoreA is player A's actual score (Win, Loss
// or Draw); player B's score is its complement. Deltas are rounded to
// whole points, each side scaled by its own K-factor.
func Compute(a, b entities.UserRating, scoreA float64) entities.RatingChange {
	expectedA := ExpectedScore(a.Rating, b.Rating)
	expectedB := 1 - expectedA
	scoreB := 1 - scoreA
	return entities.RatingChange{
		PlayerAId:      a.UserId,
		PlayerBId:      b.UserId,
		RatingABefore:  a.Rating,
		RatingBBefore:  b.Rating,
		DeltaA:         math.Round(KFactor(a.MatchesPlayed) * (scoreA - expectedA)),
		DeltaB:         math.Round(KFactor(b.MatchesPlayed) * (scoreB - expectedB)),
		ExpectedScoreA: expectedA,
	}
}
