// Package dynamodb implements the content store against a single DynamoDB
// table. This is the only layer that should have knowledge of DynamoDB
// specifics.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gangablog-backend/application/ports"
	"gangablog-backend/domain/content"
	appErrors "gangablog-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// Index names on the content table
const (
	slugIndexName  = "SlugIndex"  // GSI1 - slug lookups
	stateIndexName = "StateIndex" // GSI2 - published listing, newest first
)

// ddbItem is the storage shape of one content item
type ddbItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`

	ItemID       string   `dynamodbav:"ItemID"`
	Title        string   `dynamodbav:"Title"`
	Slug         string   `dynamodbav:"Slug"`
	Description  string   `dynamodbav:"Description,omitempty"`
	Body         string   `dynamodbav:"Body"`
	ImageURL     string   `dynamodbav:"ImageURL,omitempty"`
	Tags         []string `dynamodbav:"Tags,omitempty"`
	CategoryID   string   `dynamodbav:"CategoryID,omitempty"`
	CategorySlug string   `dynamodbav:"CategorySlug,omitempty"`
	CategoryName string   `dynamodbav:"CategoryName,omitempty"`
	State        string   `dynamodbav:"State"`
	ScheduledAt  string   `dynamodbav:"ScheduledAt,omitempty"`
	CreatedAt    string   `dynamodbav:"CreatedAt"`
	UpdatedAt    string   `dynamodbav:"UpdatedAt"`
	PublishedAt  string   `dynamodbav:"PublishedAt,omitempty"`

	// GSI1: SLUG#<slug> / ITEM#<id>
	GSI1PK string `dynamodbav:"GSI1PK"`
	GSI1SK string `dynamodbav:"GSI1SK"`

	// GSI2: STATE#<state> / <publishedAt RFC3339>, so a descending query
	// yields newest first
	GSI2PK string `dynamodbav:"GSI2PK"`
	GSI2SK string `dynamodbav:"GSI2SK"`
}

// ContentStore implements ports.ContentStore on DynamoDB
type ContentStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

var _ ports.ContentStore = (*ContentStore)(nil)

// NewContentStore creates a DynamoDB-backed content store
func NewContentStore(client *dynamodb.Client, tableName string, logger *zap.Logger) *ContentStore {
	return &ContentStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// GetByID fetches one item by identity
func (s *ContentStore) GetByID(ctx context.Context, id string) (*content.Item, error) {
	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: itemPK(id)},
		"SK": &types.AttributeValueMemberS{Value: "META"},
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       key,
	})
	if err != nil {
		return nil, storeError(fmt.Sprintf("get item %s", id), err)
	}
	if out.Item == nil {
		return nil, appErrors.NewNotFound(fmt.Sprintf("item %s not found", id))
	}

	return parseItem(out.Item)
}

// GetBySlug fetches one item by its stored slug via the slug index
func (s *ContentStore) GetBySlug(ctx context.Context, slug string) (*content.Item, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value("SLUG#" + slug))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, appErrors.NewInternal("failed to build slug query", err)
	}

	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		IndexName:                 aws.String(slugIndexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, storeError(fmt.Sprintf("query slug %s", slug), err)
	}
	if len(out.Items) == 0 {
		return nil, appErrors.NewNotFound(fmt.Sprintf("no item with slug %s", slug))
	}

	return parseItem(out.Items[0])
}

// ListPublished returns up to limit published items, newest first
func (s *ContentStore) ListPublished(ctx context.Context, limit int) ([]*content.Item, error) {
	keyCond := expression.Key("GSI2PK").
		Equal(expression.Value("STATE#" + string(content.StatePublished)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, appErrors.NewInternal("failed to build published query", err)
	}

	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		IndexName:                 aws.String(stateIndexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, storeError("query published items", err)
	}

	return parseItems(out.Items)
}

// ListByCategory returns up to limit published items in one category,
// newest first. Filtering happens on the state index because category
// rails are small and read rarely relative to the published listing.
func (s *ContentStore) ListByCategory(ctx context.Context, categorySlug string, limit int) ([]*content.Item, error) {
	keyCond := expression.Key("GSI2PK").
		Equal(expression.Value("STATE#" + string(content.StatePublished)))
	filter := expression.Name("CategorySlug").Equal(expression.Value(categorySlug))
	expr, err := expression.NewBuilder().
		WithKeyCondition(keyCond).
		WithFilter(filter).
		Build()
	if err != nil {
		return nil, appErrors.NewInternal("failed to build category query", err)
	}

	items := make([]*content.Item, 0, limit)
	var lastKey map[string]types.AttributeValue
	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.tableName),
			IndexName:                 aws.String(stateIndexName),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ScanIndexForward:          aws.Bool(false),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, storeError(fmt.Sprintf("query category %s", categorySlug), err)
		}

		parsed, err := parseItems(out.Items)
		if err != nil {
			return nil, err
		}
		for _, item := range parsed {
			items = append(items, item)
			if len(items) >= limit {
				return items, nil
			}
		}

		lastKey = out.LastEvaluatedKey
		if lastKey == nil {
			return items, nil
		}
	}
}

// ListCategoriesInUse projects the distinct categories of published items
func (s *ContentStore) ListCategoriesInUse(ctx context.Context) ([]content.Category, error) {
	items, err := s.ListPublished(ctx, 500)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]content.Category)
	for _, item := range items {
		if item.CategorySlug == "" {
			continue
		}
		seen[item.CategorySlug] = content.Category{
			ID:   item.CategoryID,
			Slug: item.CategorySlug,
			Name: item.CategoryName,
		}
	}

	categories := make([]content.Category, 0, len(seen))
	for _, c := range seen {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Slug < categories[j].Slug })
	return categories, nil
}

// Put writes or replaces one item. Used by ingestion tooling and tests;
// the serving path never writes content.
func (s *ContentStore) Put(ctx context.Context, item *content.Item) error {
	record := toDDBItem(item)
	av, err := attributevalue.MarshalMap(record)
	if err != nil {
		return appErrors.NewInternal(fmt.Sprintf("failed to marshal item %s", item.ID), err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return storeError(fmt.Sprintf("put item %s", item.ID), err)
	}
	return nil
}

// storeError wraps a DynamoDB failure, surfacing the service error code
// when the SDK exposes one.
func storeError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return appErrors.NewInternal(
			fmt.Sprintf("%s failed with %s", op, apiErr.ErrorCode()), err)
	}
	return appErrors.NewInternal(op+" failed", err)
}

func itemPK(id string) string {
	return "ITEM#" + id
}

func toDDBItem(item *content.Item) ddbItem {
	record := ddbItem{
		PK:           itemPK(item.ID),
		SK:           "META",
		ItemID:       item.ID,
		Title:        item.Title,
		Slug:         item.Slug,
		Description:  item.Description,
		Body:         item.Body,
		ImageURL:     item.ImageURL,
		Tags:         item.Tags,
		CategoryID:   item.CategoryID,
		CategorySlug: item.CategorySlug,
		CategoryName: item.CategoryName,
		State:        string(item.State),
		CreatedAt:    item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    item.UpdatedAt.UTC().Format(time.RFC3339),
		GSI1PK:       "SLUG#" + item.CanonicalSlug(),
		GSI1SK:       itemPK(item.ID),
		GSI2PK:       "STATE#" + string(item.State),
		GSI2SK:       item.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if item.ScheduledAt != nil {
		record.ScheduledAt = item.ScheduledAt.UTC().Format(time.RFC3339)
	}
	if item.PublishedAt != nil {
		record.PublishedAt = item.PublishedAt.UTC().Format(time.RFC3339)
		record.GSI2SK = record.PublishedAt
	}
	return record
}

func parseItems(raw []map[string]types.AttributeValue) ([]*content.Item, error) {
	items := make([]*content.Item, 0, len(raw))
	for _, av := range raw {
		item, err := parseItem(av)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func parseItem(av map[string]types.AttributeValue) (*content.Item, error) {
	var record ddbItem
	if err := attributevalue.UnmarshalMap(av, &record); err != nil {
		return nil, appErrors.NewInternal("failed to unmarshal content item", err)
	}

	item := &content.Item{
		ID:           record.ItemID,
		Title:        record.Title,
		Slug:         record.Slug,
		Description:  record.Description,
		Body:         record.Body,
		ImageURL:     record.ImageURL,
		Tags:         record.Tags,
		CategoryID:   record.CategoryID,
		CategorySlug: record.CategorySlug,
		CategoryName: record.CategoryName,
		State:        content.PublicationState(record.State),
	}

	item.CreatedAt = parseTime(record.CreatedAt)
	item.UpdatedAt = parseTime(record.UpdatedAt)
	if record.ScheduledAt != "" {
		t := parseTime(record.ScheduledAt)
		item.ScheduledAt = &t
	}
	if record.PublishedAt != "" {
		t := parseTime(record.PublishedAt)
		item.PublishedAt = &t
	}
	return item, nil
}

func parseTime(value string) time.Time {
	t, _ := time.Parse(time.RFC3339, value)
	return t
}
