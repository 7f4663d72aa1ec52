package storage

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/codeduel-vn/codeduel/internal/domains/entities"
)

var ErrNoActiveProblem = errors.New("no active problem available")

// PickActiveProblem returns a random problem from the active pool.
func (c *Client) PickActiveProblem(ctx context.Context) (entities.Problem, error) {
	output, err := c.dynamodb.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(c.tables.Problems),
		FilterExpression: aws.String("Active = :active"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":active": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		return entities.Problem{}, fmt.Errorf("failed to scan problems: %w", err)
	}
	if len(output.Items) == 0 {
		return entities.Problem{}, ErrNoActiveProblem
	}
	var problem entities.Problem
	item := output.Items[rand.Intn(len(output.Items))]
	if err := attributevalue.UnmarshalMap(item, &problem); err != nil {
		return entities.Problem{}, fmt.Errorf("failed to unmarshal problem: %w", err)
	}
	return problem, nil
}
