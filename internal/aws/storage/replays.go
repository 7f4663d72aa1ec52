package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/codeduel-vn/codeduel/internal/domains/entities"
)

func (c *Client) PutReplay(ctx context.Context, replay entities.Replay) error {
	item, err := attributevalue.MarshalMap(replay)
	if err != nil {
		return fmt.Errorf("failed to marshal replay: %w", err)
	}
	_, err = c.dynamodb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tables.Replays),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put replay: %w", err)
	}
	return nil
}
