package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"awsoramazon/backend/types"
)

// DynamoAPI is the subset of the DynamoDB client the store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoStore keeps questions and idempotency records in a single table
// keyed by PK/SK, with expiry through the table's ttl attribute.
type DynamoStore struct {
	client DynamoAPI
	table  string
	Now    func() time.Time
}

func NewDynamoStore(client DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table, Now: time.Now}
}

// NewDynamoStoreFromEnv builds a client from the default AWS credential chain.
func NewDynamoStoreFromEnv(ctx context.Context, table string) (*DynamoStore, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return NewDynamoStore(dynamodb.NewFromConfig(cfg), table), nil
}

func isConditionFailure(err error) bool {
	var ccf *dbtypes.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func (s *DynamoStore) unixNow() string {
	return strconv.FormatInt(s.Now().Unix(), 10)
}

func (s *DynamoStore) decode(item map[string]dbtypes.AttributeValue) (types.Question, error) {
	var qi questionItem
	if err := attributevalue.UnmarshalMap(item, &qi); err != nil {
		return types.Question{}, fmt.Errorf("failed to unmarshal question: %w", err)
	}
	return normalize(qi.Question), nil
}

// GetQuestion looks a question up by id, falling back to a slug or namespace match.
func (s *DynamoStore) GetQuestion(ctx context.Context, idOrSlug string) (*types.Question, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       keyAttributes(questionSK(idOrSlug)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	if out.Item != nil {
		q, err := s.decode(out.Item)
		if err != nil {
			return nil, err
		}
		if !q.Expired(s.Now()) {
			return &q, nil
		}
	}

	p := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		FilterExpression:       aws.String("#slug = :value OR #ns = :value"),
		ExpressionAttributeNames: map[string]string{
			"#slug": "slug",
			"#ns":   "namespace",
		},
		ExpressionAttributeValues: map[string]dbtypes.AttributeValue{
			":pk":     &dbtypes.AttributeValueMemberS{Value: QuestionPK},
			":prefix": &dbtypes.AttributeValueMemberS{Value: QuestionPrefix},
			":value":  &dbtypes.AttributeValueMemberS{Value: idOrSlug},
		},
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query questions by slug: %w", err)
		}
		for _, item := range page.Items {
			q, err := s.decode(item)
			if err != nil {
				return nil, err
			}
			if !q.Expired(s.Now()) {
				return &q, nil
			}
		}
	}
	return nil, ErrNotFound
}

// ListQuestions returns one page of questions, soft-deleted ones included.
func (s *DynamoStore) ListQuestions(ctx context.Context, query ListQuery) (*types.QuestionPage, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]dbtypes.AttributeValue{
			":pk":     &dbtypes.AttributeValueMemberS{Value: QuestionPK},
			":prefix": &dbtypes.AttributeValueMemberS{Value: QuestionPrefix},
		},
		Limit: aws.Int32(int32(ClampLimit(query.Limit))),
	}
	if k := decodeCursor(query.Cursor); k != nil {
		input.ExclusiveStartKey = keyAttributes(k.SK)
	}
	if query.Namespace != "" {
		input.FilterExpression = aws.String("#ns = :ns")
		input.ExpressionAttributeNames = map[string]string{"#ns": "namespace"}
		input.ExpressionAttributeValues[":ns"] = &dbtypes.AttributeValueMemberS{Value: query.Namespace}
	}

	out, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	page := &types.QuestionPage{Items: make([]types.Question, 0, len(out.Items))}
	for _, item := range out.Items {
		q, err := s.decode(item)
		if err != nil {
			return nil, err
		}
		if q.Expired(s.Now()) {
			continue
		}
		page.Items = append(page.Items, q)
	}
	if len(out.LastEvaluatedKey) > 0 {
		var k itemKey
		if err := attributevalue.UnmarshalMap(out.LastEvaluatedKey, &k); err != nil {
			return nil, fmt.Errorf("failed to unmarshal continuation key: %w", err)
		}
		page.NextCursor = encodeCursor(&k)
	}
	return page, nil
}

// LoadBank returns active questions in sort-key order, capped at bankLimit.
func (s *DynamoStore) LoadBank(ctx context.Context) ([]types.Question, error) {
	p := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]dbtypes.AttributeValue{
			":pk":     &dbtypes.AttributeValueMemberS{Value: QuestionPK},
			":prefix": &dbtypes.AttributeValueMemberS{Value: QuestionPrefix},
		},
		Limit: aws.Int32(bankLimit),
	})

	var bank []types.Question
	for p.HasMorePages() && len(bank) < bankLimit {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query question bank: %w", err)
		}
		for _, item := range page.Items {
			q, err := s.decode(item)
			if err != nil {
				return nil, err
			}
			if q.State() != types.StateActive {
				continue
			}
			bank = append(bank, q)
			if len(bank) == bankLimit {
				break
			}
		}
	}
	return bank, nil
}

// CreateQuestion writes q only if nothing live occupies its key.
func (s *DynamoStore) CreateQuestion(ctx context.Context, q types.Question) error {
	item, err := attributevalue.MarshalMap(questionItem{PK: QuestionPK, SK: questionSK(q.ID), Question: q})
	if err != nil {
		return fmt.Errorf("failed to marshal question: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(s.table),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(SK) OR #ttl <= :now"),
		ExpressionAttributeNames: map[string]string{"#ttl": "ttl"},
		ExpressionAttributeValues: map[string]dbtypes.AttributeValue{
			":now": &dbtypes.AttributeValueMemberN{Value: s.unixNow()},
		},
	})
	if isConditionFailure(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to save question: %w", err)
	}
	return nil
}

// ReplaceQuestion overwrites a question whose stored etag still equals expectedETag.
func (s *DynamoStore) ReplaceQuestion(ctx context.Context, q types.Question, expectedETag string) error {
	item, err := attributevalue.MarshalMap(questionItem{PK: QuestionPK, SK: questionSK(q.ID), Question: q})
	if err != nil {
		return fmt.Errorf("failed to marshal question: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(s.table),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_exists(SK) AND (attribute_not_exists(#etag) OR #etag = :etag)"),
		ExpressionAttributeNames: map[string]string{"#etag": "etag"},
		ExpressionAttributeValues: map[string]dbtypes.AttributeValue{
			":etag": &dbtypes.AttributeValueMemberS{Value: expectedETag},
		},
	})
	if isConditionFailure(err) {
		return ErrPreconditionFailed
	}
	if err != nil {
		return fmt.Errorf("failed to replace question: %w", err)
	}
	return nil
}

// MarkDeleted flags a question and schedules it for the table's expiry sweep.
func (s *DynamoStore) MarkDeleted(ctx context.Context, id string, expiresAt time.Time) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.table),
		Key:                 keyAttributes(questionSK(id)),
		UpdateExpression:    aws.String("SET #ttl = :ttl, #deleted = :deleted"),
		ConditionExpression: aws.String("attribute_exists(SK)"),
		ExpressionAttributeNames: map[string]string{
			"#ttl":     "ttl",
			"#deleted": "deleted",
		},
		ExpressionAttributeValues: map[string]dbtypes.AttributeValue{
			":ttl":     &dbtypes.AttributeValueMemberN{Value: strconv.FormatInt(expiresAt.Unix(), 10)},
			":deleted": &dbtypes.AttributeValueMemberBOOL{Value: true},
		},
	})
	if isConditionFailure(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to mark question deleted: %w", err)
	}
	return nil
}

func (s *DynamoStore) FindResponse(ctx context.Context, key string) (*types.StoredResponse, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       keyAttributes(idempotencySK(key)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get idempotency record: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}
	var rec idempotencyItem
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal idempotency record: %w", err)
	}
	if rec.TTL > 0 && rec.TTL <= s.Now().Unix() {
		return nil, nil
	}
	return &rec.Response, nil
}

// SaveResponse keeps the first response stored under key and reports whether
// this call was the one that stored it.
func (s *DynamoStore) SaveResponse(ctx context.Context, key string, resp types.StoredResponse, ttl time.Duration) (bool, error) {
	item, err := attributevalue.MarshalMap(idempotencyItem{
		PK:       QuestionPK,
		SK:       idempotencySK(key),
		Response: resp,
		TTL:      s.Now().Add(ttl).Unix(),
	})
	if err != nil {
		return false, fmt.Errorf("failed to marshal idempotency record: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(s.table),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(SK) OR #ttl <= :now"),
		ExpressionAttributeNames: map[string]string{"#ttl": "ttl"},
		ExpressionAttributeValues: map[string]dbtypes.AttributeValue{
			":now": &dbtypes.AttributeValueMemberN{Value: s.unixNow()},
		},
	})
	if isConditionFailure(err) {
		log.Printf("Idempotency key %s already recorded, keeping the first response", key)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to save idempotency record: %w", err)
	}
	return true, nil
}
