package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/domain"
)

const (
	draftKeyPrefix  = "docforge:outline:" // docforge:outline:{document_id}
	DefaultDraftTTL = 24 * time.Hour
)

// DraftStore keeps at most one pending outline draft per document. Drafts are
// scratch data: they expire and are never part of the committed document.
type DraftStore interface {
	Save(ctx context.Context, d *domain.OutlineDraft) error
	Get(ctx context.Context, documentID string) (*domain.OutlineDraft, error)
	Delete(ctx context.Context, documentID string) error
}

// RedisDraftStore stores drafts as JSON values with a TTL.
type RedisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &RedisDraftStore{client: client, ttl: ttl}
}

func (r *RedisDraftStore) Save(ctx context.Context, d *domain.OutlineDraft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal outline draft: %w", err)
	}
	if err := r.client.Set(ctx, draftKey(d.DocumentID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save outline draft: %w", err)
	}
	return nil
}

func (r *RedisDraftStore) Get(ctx context.Context, documentID string) (*domain.OutlineDraft, error) {
	data, err := r.client.Get(ctx, draftKey(documentID)).Bytes()
	if err == redis.Nil {
		return nil, domain.NotFound("outline draft for document " + documentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outline draft: %w", err)
	}

	var d domain.OutlineDraft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal outline draft: %w", err)
	}
	return &d, nil
}

func (r *RedisDraftStore) Delete(ctx context.Context, documentID string) error {
	if err := r.client.Del(ctx, draftKey(documentID)).Err(); err != nil {
		return fmt.Errorf("failed to delete outline draft: %w", err)
	}
	return nil
}

func draftKey(documentID string) string {
	return draftKeyPrefix + documentID
}

type memoryDraft struct {
	draft     domain.OutlineDraft
	expiresAt time.Time
}

// MemoryDraftStore is the in-process DraftStore.
type MemoryDraftStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	drafts map[string]memoryDraft
	now    func() time.Time
}

func NewMemoryDraftStore(ttl time.Duration) *MemoryDraftStore {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &MemoryDraftStore{
		ttl:    ttl,
		drafts: make(map[string]memoryDraft),
		now:    time.Now,
	}
}

func (m *MemoryDraftStore) Save(ctx context.Context, d *domain.OutlineDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *d
	cp.Titles = append([]string(nil), d.Titles...)
	m.drafts[d.DocumentID] = memoryDraft{draft: cp, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryDraftStore) Get(ctx context.Context, documentID string) (*domain.OutlineDraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.drafts[documentID]
	if !ok || m.now().After(e.expiresAt) {
		delete(m.drafts, documentID)
		return nil, domain.NotFound("outline draft for document " + documentID)
	}
	out := e.draft
	out.Titles = append([]string(nil), e.draft.Titles...)
	return &out, nil
}

func (m *MemoryDraftStore) Delete(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.drafts, documentID)
	return nil
}
