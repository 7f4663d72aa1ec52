package entities

// RatingChange records one completed match's rating settlement,
// computed once from both sides' pre-match state.
type RatingChange struct {
	PlayerAId      string  `dynamodbav:"PlayerAId" json:"playerAId"`
	PlayerBId      string  `dynamodbav:"PlayerBId" json:"playerBId"`
	RatingABefore  float64 `dynamodbav:"RatingABefore" json:"ratingABefore"`
	RatingBBefore  float64 `dynamodbav:"RatingBBefore" json:"ratingBBefore"`
	DeltaA         float64 `dynamodbav:"DeltaA" json:"deltaA"`
	DeltaB         float64 `dynamodbav:"DeltaB" json:"deltaB"`
	ExpectedScoreA float64 `dynamodbav:"ExpectedScoreA" json:"expectedScoreA"`
}
