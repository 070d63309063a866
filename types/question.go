package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

type Choice string

const (
	ChoiceAWS    Choice = "aws"
	ChoiceAmazon Choice = "amazon"
)

// Choices is the fixed answer pair offered for every question.
var Choices = []Choice{ChoiceAWS, ChoiceAmazon}

func (c Choice) Valid() bool {
	return c == ChoiceAWS || c == ChoiceAmazon
}

type State string

const (
	StateActive   State = "active"
	StateExpiring State = "expiring"
)

type Question struct {
	ID        string `json:"id" dynamodbav:"id"`
	Slug      string `json:"slug" dynamodbav:"slug"`
	Text      string `json:"text" dynamodbav:"text"`
	Answer    Choice `json:"answer" dynamodbav:"answer"`
	Namespace string `json:"namespace,omitempty" dynamodbav:"namespace,omitempty"`
	UpdatedAt int64  `json:"updatedAt" dynamodbav:"updatedAt"`               // Unix milliseconds
	ETag      string `json:"etag,omitempty" dynamodbav:"etag,omitempty"`     // content fingerprint
	ExpiresAt int64  `json:"expiresAt,omitempty" dynamodbav:"ttl,omitempty"` // Unix seconds, set on soft delete
	Deleted   bool   `json:"deleted,omitempty" dynamodbav:"deleted,omitempty"`
}

// State reports whether the question is live or waiting for the expiry sweep.
func (q Question) State() State {
	if q.Deleted || q.ExpiresAt > 0 {
		return StateExpiring
	}
	return StateActive
}

// Expired reports whether the stored expiry has already passed at now.
func (q Question) Expired(now time.Time) bool {
	return q.ExpiresAt > 0 && q.ExpiresAt <= now.Unix()
}

// Fingerprint derives the ETag of a question revision.
func Fingerprint(id string, updatedAt int64, text string, answer Choice) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%s:%s", id, updatedAt, text, answer)))
	return hex.EncodeToString(sum[:])
}

// QuestionInput is the create/replace payload.
type QuestionInput struct {
	ID        string `json:"id" yaml:"id"`
	Slug      string `json:"slug,omitempty" yaml:"slug"`
	Text      string `json:"text" yaml:"text"`
	Answer    Choice `json:"answer" yaml:"answer"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace"`
}

// Revision builds the stored question for id at the given instant.
func (in QuestionInput) Revision(id string, at time.Time) Question {
	updatedAt := at.UnixMilli()
	slug := in.Slug
	if slug == "" {
		slug = id
	}
	return Question{
		ID:        id,
		Slug:      slug,
		Text:      in.Text,
		Answer:    in.Answer,
		Namespace: in.Namespace,
		UpdatedAt: updatedAt,
		ETag:      Fingerprint(id, updatedAt, in.Text, in.Answer),
	}
}

type QuestionPage struct {
	Items      []Question `json:"items"`
	NextCursor string     `json:"nextCursor,omitempty"`
}
