package storage

import "github.com/aws/aws-sdk-go-v2/service/dynamodb"

// Tables names the DynamoDB tables backing the persistence collaborators.
type Tables struct {
	UserRatings string
	Problems    string
	Matches     string
	Submissions string
	Replays     string
}

func DefaultTables() Tables {
	return Tables{
		UserRatings: "UserRatings",
		Problems:    "Problems",
		Matches:     "Matches",
		Submissions: "Submissions",
		Replays:     "Replays",
	}
}

type Client struct {
	dynamodb *dynamodb.Client
	tables   Tables
}

func NewClient(dynamoClient *dynamodb.Client, tables Tables) *Client {
	if tables.UserRatings == "" {
		tables = DefaultTables()
	}
	return &Client{
		dynamodb: dynamoClient,
		tables:   tables,
	}
}
