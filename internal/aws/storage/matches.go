package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/codeduel-vn/codeduel/internal/domains/entities"
)

// PutMatchRecord persists the durable outcome of a completed match,
// together with its rating settlement.
func (c *Client) PutMatchRecord(
	ctx context.Context,
	match entities.Match,
	change entities.RatingChange,
) error {
	record := struct {
		entities.Match
		RatingChange entities.RatingChange `dynamodbav:"RatingChange"`
	}{Match: match, RatingChange: change}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal match record: %w", err)
	}
	_, err = c.dynamodb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tables.Matches),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put match record: %w", err)
	}
	return nil
}
