// Package dynamo stores filter snapshots in a DynamoDB table keyed by
// view (pk) and entry ID (sk).
package dynamo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ProyectAquanqa/panelsearch"
	"github.com/ProyectAquanqa/panelsearch/store"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Item is the stored representation of an entry.
type Item struct {
	View      string `dynamodbav:"pk"`
	ID        string `dynamodbav:"sk"`
	Payload   string `dynamodbav:"payload"`
	CreatedAt int64  `dynamodbav:"created_at"`
}

// Store implements store.Store.
type Store struct {
	client API
	table  string
	now    func() time.Time
}

var _ store.Store = (*Store)(nil)

// New creates a store over table.
func New(client API, table string) *Store {
	return &Store{client: client, table: table, now: time.Now}
}

// Save implements store.Store.
func (s *Store) Save(ctx context.Context, view string, snap panelsearch.Snapshot) (string, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal snapshot")
	}

	now := s.now()
	record := Item{
		View:      view,
		ID:        store.NewID(now),
		Payload:   string(payload),
		CreatedAt: now.UnixNano(),
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal snapshot item")
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to put item in DynamoDB")
	}
	return record.ID, nil
}

// Load implements store.Store.
func (s *Store) Load(ctx context.Context, view, id string) (*store.Entry, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       key(view, id),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get item from DynamoDB")
	}
	if len(out.Item) == 0 {
		return nil, panelsearch.ErrNotFound
	}
	return decode(out.Item)
}

// Latest implements store.Store.
func (s *Store) Latest(ctx context.Context, view string) (*store.Entry, error) {
	items, err := s.query(ctx, view, aws.Int32(1))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, panelsearch.ErrNotFound
	}
	return decode(items[0])
}

// List implements store.Store.
func (s *Store) List(ctx context.Context, view string) ([]store.Entry, error) {
	items, err := s.query(ctx, view, nil)
	if err != nil {
		return nil, err
	}
	entries := make([]store.Entry, 0, len(items))
	for _, item := range items {
		e, err := decode(item)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, nil
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, view, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       key(view, id),
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete item from DynamoDB")
	}
	return nil
}

// query pages through the entries of view, newest first since sort keys
// are time ordered.
func (s *Store) query(ctx context.Context, view string, limit *int32) ([]map[string]types.AttributeValue, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("pk = :view"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":view": &types.AttributeValueMemberS{Value: view},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            limit,
	}

	var items []map[string]types.AttributeValue
	for {
		out, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, errors.Wrap(err, "failed to query DynamoDB")
		}
		items = append(items, out.Items...)
		if limit != nil || len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func key(view, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: view},
		"sk": &types.AttributeValueMemberS{Value: id},
	}
}

func decode(av map[string]types.AttributeValue) (*store.Entry, error) {
	var item Item
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal snapshot item")
	}
	e := &store.Entry{
		ID:        item.ID,
		View:      item.View,
		CreatedAt: time.Unix(0, item.CreatedAt),
	}
	if err := json.Unmarshal([]byte(item.Payload), &e.Snapshot); err != nil {
		return nil, err
	}
	return e, nil
}
