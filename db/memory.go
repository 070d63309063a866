package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"awsoramazon/backend/types"
)

type memoryResponse struct {
	resp      types.StoredResponse
	expiresAt time.Time
}

// MemoryStore is an in-process stand-in for the DynamoDB table. Expired
// entries behave as if the expiry sweep already removed them.
type MemoryStore struct {
	mu        sync.Mutex
	questions map[string]types.Question
	responses map[string]memoryResponse
	Now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		questions: map[string]types.Question{},
		responses: map[string]memoryResponse{},
		Now:       time.Now,
	}
}

// live returns unexpired questions sorted the way the table sorts its keys.
func (m *MemoryStore) live() []types.Question {
	now := m.Now()
	out := make([]types.Question, 0, len(m.questions))
	for _, q := range m.questions {
		if !q.Expired(now) {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return questionSK(out[i].ID) < questionSK(out[j].ID) })
	return out
}

func (m *MemoryStore) GetQuestion(_ context.Context, idOrSlug string) (*types.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q, ok := m.questions[idOrSlug]; ok && !q.Expired(m.Now()) {
		q = normalize(q)
		return &q, nil
	}
	for _, q := range m.live() {
		if q.Slug == idOrSlug || q.Namespace == idOrSlug {
			q = normalize(q)
			return &q, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListQuestions(_ context.Context, query ListQuery) (*types.QuestionPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	limit := ClampLimit(query.Limit)
	var after string
	if k := decodeCursor(query.Cursor); k != nil {
		after = k.SK
	}

	page := &types.QuestionPage{Items: []types.Question{}}
	var last string
	more := false
	for _, q := range m.live() {
		sk := questionSK(q.ID)
		if sk <= after {
			continue
		}
		if query.Namespace != "" && q.Namespace != query.Namespace {
			continue
		}
		if len(page.Items) == limit {
			more = true
			break
		}
		page.Items = append(page.Items, normalize(q))
		last = sk
	}
	if more {
		page.NextCursor = encodeCursor(&itemKey{PK: QuestionPK, SK: last})
	}
	return page, nil
}

func (m *MemoryStore) LoadBank(_ context.Context) ([]types.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var bank []types.Question
	for _, q := range m.live() {
		if q.State() != types.StateActive {
			continue
		}
		bank = append(bank, normalize(q))
		if len(bank) == bankLimit {
			break
		}
	}
	return bank, nil
}

func (m *MemoryStore) CreateQuestion(_ context.Context, q types.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.questions[q.ID]; ok && !existing.Expired(m.Now()) {
		return ErrConflict
	}
	m.questions[q.ID] = q
	return nil
}

func (m *MemoryStore) ReplaceQuestion(_ context.Context, q types.Question, expectedETag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.questions[q.ID]
	if !ok || existing.Expired(m.Now()) {
		return ErrPreconditionFailed
	}
	if existing.ETag != "" && existing.ETag != expectedETag {
		return ErrPreconditionFailed
	}
	m.questions[q.ID] = q
	return nil
}

func (m *MemoryStore) MarkDeleted(_ context.Context, id string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok || q.Expired(m.Now()) {
		return ErrNotFound
	}
	q.ExpiresAt = expiresAt.Unix()
	q.Deleted = true
	m.questions[id] = q
	return nil
}

func (m *MemoryStore) FindResponse(_ context.Context, key string) (*types.StoredResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.responses[key]
	if !ok || !m.Now().Before(rec.expiresAt) {
		return nil, nil
	}
	resp := rec.resp
	return &resp, nil
}

func (m *MemoryStore) SaveResponse(_ context.Context, key string, resp types.StoredResponse, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.responses[key]; ok && m.Now().Before(rec.expiresAt) {
		return false, nil
	}
	m.responses[key] = memoryResponse{resp: resp, expiresAt: m.Now().Add(ttl)}
	return true, nil
}
