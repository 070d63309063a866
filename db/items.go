package db

import (
	"encoding/base64"
	"encoding/json"
	"errors"

	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"awsoramazon/backend/types"
)

const (
	QuestionPK        = "QUESTION"
	QuestionPrefix    = "QUESTION#"
	IdempotencyPrefix = "IDEMPOTENCY#"

	// bankLimit caps how many questions a quiz is drawn from.
	bankLimit = 200

	DefaultListLimit = 20
	MaxListLimit     = 50
)

var (
	ErrNotFound           = errors.New("question not found")
	ErrConflict           = errors.New("question already exists")
	ErrPreconditionFailed = errors.New("etag does not match")
)

type ListQuery struct {
	Limit     *int
	Cursor    string
	Namespace string
}

// ClampLimit bounds a list page size to [1, MaxListLimit].
func ClampLimit(limit *int) int {
	if limit == nil {
		return DefaultListLimit
	}
	if *limit < 1 {
		return 1
	}
	if *limit > MaxListLimit {
		return MaxListLimit
	}
	return *limit
}

type itemKey struct {
	PK string `json:"PK" dynamodbav:"PK"`
	SK string `json:"SK" dynamodbav:"SK"`
}

type questionItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	types.Question
}

type idempotencyItem struct {
	PK       string               `dynamodbav:"PK"`
	SK       string               `dynamodbav:"SK"`
	Response types.StoredResponse `dynamodbav:"response"`
	TTL      int64                `dynamodbav:"ttl"`
}

func questionSK(id string) string {
	return QuestionPrefix + id
}

func idempotencySK(key string) string {
	return IdempotencyPrefix + key
}

func keyAttributes(sk string) map[string]dbtypes.AttributeValue {
	return map[string]dbtypes.AttributeValue{
		"PK": &dbtypes.AttributeValueMemberS{Value: QuestionPK},
		"SK": &dbtypes.AttributeValueMemberS{Value: sk},
	}
}

func normalize(q types.Question) types.Question {
	if q.Slug == "" {
		q.Slug = q.ID
	}
	return q
}

// encodeCursor turns a continuation key into an opaque token.
func encodeCursor(k *itemKey) string {
	if k == nil || k.SK == "" {
		return ""
	}
	raw, err := json.Marshal(k)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(raw)
}

// decodeCursor returns nil for empty or malformed tokens; listing then restarts.
func decodeCursor(cursor string) *itemKey {
	if cursor == "" {
		return nil
	}
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return nil
	}
	var k itemKey
	if err := json.Unmarshal(raw, &k); err != nil || k.SK == "" {
		return nil
	}
	return &k
}
