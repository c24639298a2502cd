package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/utils"
	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used for local development and tests.
// All state is guarded by a single mutex, so every call observes the latest
// successful write.
type MemoryStore struct {
	mu        sync.Mutex
	projects  map[string]*domain.Project
	documents map[string]*domain.Document
	sections  map[string]*domain.Section
	byDoc     map[string][]string // document id -> section ids in order
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects:  make(map[string]*domain.Project),
		documents: make(map[string]*domain.Document),
		sections:  make(map[string]*domain.Section),
		byDoc:     make(map[string][]string),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) CreateProject(ctx context.Context, p *domain.Project, titles []string) ([]domain.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var id string
	for i := 0; i < 5; i++ {
		cand, err := utils.NewTextID(ProjectIDPrefix)
		if err != nil {
			return nil, err
		}
		if _, taken := m.projects[cand]; !taken {
			id = cand
			break
		}
	}
	if id == "" {
		return nil, fmt.Errorf("failed to generate unique project id")
	}

	p.ID = id
	p.DocumentID = uuid.New().String()
	p.CreatedAt = m.now()

	stored := *p
	m.projects[p.ID] = &stored
	m.documents[p.DocumentID] = &domain.Document{
		ID:        p.DocumentID,
		ProjectID: p.ID,
		Type:      p.DocumentType,
	}
	if len(titles) == 0 {
		return nil, nil
	}
	return m.insertSectionsLocked(p.DocumentID, titles), nil
}

func (m *MemoryStore) GetProject(ctx context.Context, ownerID, projectID string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[projectID]
	if !ok || p.OwnerID != ownerID {
		return nil, domain.NotFound("project " + projectID)
	}
	out := *p
	return &out, nil
}

func (m *MemoryStore) ListProjects(ctx context.Context, ownerID string) ([]domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Project, 0, 16)
	for _, p := range m.projects {
		if p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) DeleteProject(ctx context.Context, ownerID, projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[projectID]
	if !ok || p.OwnerID != ownerID {
		return domain.NotFound("project " + projectID)
	}
	for _, sid := range m.byDoc[p.DocumentID] {
		delete(m.sections, sid)
	}
	delete(m.byDoc, p.DocumentID)
	delete(m.documents, p.DocumentID)
	delete(m.projects, projectID)
	return nil
}

func (m *MemoryStore) GetDocument(ctx context.Context, ownerID, documentID string) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.documents[documentID]
	if !ok {
		return nil, domain.NotFound("document " + documentID)
	}
	p := m.projects[d.ProjectID]
	if p == nil || p.OwnerID != ownerID {
		return nil, domain.NotFound("document " + documentID)
	}
	out := *d
	out.ProjectTitle = p.Title
	out.ProjectDescription = p.Description
	return &out, nil
}

func (m *MemoryStore) CreateSections(ctx context.Context, documentID string, titles []string) ([]domain.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.documents[documentID]; !ok {
		return nil, domain.NotFound("document " + documentID)
	}
	if len(m.byDoc[documentID]) > 0 {
		return nil, domain.Conflictf("document %s already has sections", documentID)
	}
	return m.insertSectionsLocked(documentID, titles), nil
}

func (m *MemoryStore) insertSectionsLocked(documentID string, titles []string) []domain.Section {
	now := m.now()
	out := make([]domain.Section, 0, len(titles))
	ids := make([]string, 0, len(titles))
	for i, title := range titles {
		s := &domain.Section{
			ID:                uuid.New().String(),
			DocumentID:        documentID,
			Title:             title,
			Order:             i,
			State:             domain.StateEmpty,
			Comments:          []domain.Comment{},
			RefinementHistory: []domain.RefinementEntry{},
			UpdatedAt:         now,
		}
		m.sections[s.ID] = s
		ids = append(ids, s.ID)
		out = append(out, copySection(s))
	}
	m.byDoc[documentID] = ids
	return out
}

func (m *MemoryStore) ListSections(ctx context.Context, documentID string) ([]domain.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := m.byDoc[documentID]
	out := make([]domain.Section, 0, len(ids))
	for _, id := range ids {
		out = append(out, copySection(m.sections[id]))
	}
	return out, nil
}

func (m *MemoryStore) GetSection(ctx context.Context, ownerID, sectionID string) (*domain.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sections[sectionID]
	if !ok || !m.ownsDocumentLocked(ownerID, s.DocumentID) {
		return nil, domain.NotFound("section " + sectionID)
	}
	out := copySection(s)
	return &out, nil
}

func (m *MemoryStore) ownsDocumentLocked(ownerID, documentID string) bool {
	d, ok := m.documents[documentID]
	if !ok {
		return false
	}
	p, ok := m.projects[d.ProjectID]
	return ok && p.OwnerID == ownerID
}

func (m *MemoryStore) BeginTransition(ctx context.Context, sectionID string, from []domain.GenerationState, to domain.GenerationState) (*domain.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sections[sectionID]
	if !ok {
		return nil, domain.NotFound("section " + sectionID)
	}
	if !domain.StateIn(s.State, from) {
		return nil, domain.StateConflict(sectionID, s.State)
	}
	before := copySection(s)
	s.State = to
	s.UpdatedAt = m.now()
	return &before, nil
}

func (m *MemoryStore) CompleteTransition(ctx context.Context, c Completion) (*domain.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sections[c.SectionID]
	if !ok {
		return nil, domain.NotFound("section " + c.SectionID)
	}
	if s.State != c.From {
		return nil, domain.StateConflict(c.SectionID, s.State)
	}
	content := c.Content
	s.Content = &content
	s.State = c.To
	if c.History != nil {
		s.RefinementHistory = append(s.RefinementHistory, *c.History)
	}
	s.UpdatedAt = m.now()
	out := copySection(s)
	return &out, nil
}

func (m *MemoryStore) RevertTransition(ctx context.Context, sectionID string, from, to domain.GenerationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sections[sectionID]
	if !ok || s.State != from {
		return nil
	}
	s.State = to
	s.UpdatedAt = m.now()
	return nil
}

func (m *MemoryStore) SetFeedback(ctx context.Context, sectionID string, f domain.Feedback) (*domain.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sections[sectionID]
	if !ok {
		return nil, domain.NotFound("section " + sectionID)
	}
	s.Feedback = f
	s.UpdatedAt = m.now()
	out := copySection(s)
	return &out, nil
}

func (m *MemoryStore) AddComment(ctx context.Context, sectionID string, c domain.Comment) (*domain.Section, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sections[sectionID]
	if !ok {
		return nil, domain.NotFound("section " + sectionID)
	}
	s.Comments = append(s.Comments, c)
	s.UpdatedAt = m.now()
	out := copySection(s)
	return &out, nil
}

// copySection detaches the returned value from the store's slices and pointers.
func copySection(s *domain.Section) domain.Section {
	out := *s
	if s.Content != nil {
		c := *s.Content
		out.Content = &c
	}
	out.Comments = append([]domain.Comment{}, s.Comments...)
	out.RefinementHistory = append([]domain.RefinementEntry{}, s.RefinementHistory...)
	return out
}
