package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/codeduel-vn/codeduel/internal/domains/entities"
)

// PutSubmission durably records one submission attempt. Every attempt is
// kept, not just the latest per player.
func (c *Client) PutSubmission(ctx context.Context, submission entities.Submission) error {
	item, err := attributevalue.MarshalMap(submission)
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %w", err)
	}
	_, err = c.dynamodb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tables.Submissions),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put submission: %w", err)
	}
	return nil
}
