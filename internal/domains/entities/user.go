package entities

// UserRating is the identity collaborator's view of a player: current
// skill rating plus career counters.
type UserRating struct {
	UserId        string  `dynamodbav:"UserId" json:"userId"`
	DisplayName   string  `dynamodbav:"DisplayName" json:"displayName"`
	Rating        float64 `dynamodbav:"Rating" json:"rating"`
	Wins          int     `dynamodbav:"Wins" json:"wins"`
	Losses        int     `dynamodbav:"Losses" json:"losses"`
	Draws         int     `dynamodbav:"Draws" json:"draws"`
	MatchesPlayed int     `dynamodbav:"MatchesPlayed" json:"matchesPlayed"`
}
