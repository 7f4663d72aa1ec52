package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/codeduel-vn/codeduel/internal/domains/entities"
)

var ErrUserNotFound = errors.New("user not found")

// GetUserRating fetches a player's rating row from the identity store.
func (c *Client) GetUserRating(ctx context.Context, userId string) (entities.UserRating, error) {
	output, err := c.dynamodb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tables.UserRatings),
		Key: map[string]types.AttributeValue{
			"UserId": &types.AttributeValueMemberS{Value: userId},
		},
	})
	if err != nil {
		return entities.UserRating{}, fmt.Errorf("failed to get user rating: %w", err)
	}
	if output.Item == nil {
		return entities.UserRating{}, ErrUserNotFound
	}
	var rating entities.UserRating
	if err := attributevalue.UnmarshalMap(output.Item, &rating); err != nil {
		return entities.UserRating{}, fmt.Errorf("failed to unmarshal user rating: %w", err)
	}
	return rating, nil
}

// PutUserRating writes back the full rating row, counters included.
func (c *Client) PutUserRating(ctx context.Context, rating entities.UserRating) error {
	item, err := attributevalue.MarshalMap(rating)
	if err != nil {
		return fmt.Errorf("failed to marshal user rating: %w", err)
	}
	_, err = c.dynamodb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tables.UserRatings),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put user rating: %w", err)
	}
	return nil
}
