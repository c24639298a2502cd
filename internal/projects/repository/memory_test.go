package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/repository"
)

func newProject(t *testing.T, store *repository.MemoryStore, owner string, titles ...string) (*domain.Project, []domain.Section) {
	t.Helper()
	p := &domain.Project{OwnerID: owner, Title: "Q3 Report", DocumentType: domain.DocumentTypeDOCX}
	sections, err := store.CreateProject(context.Background(), p, titles)
	require.NoError(t, err)
	return p, sections
}

func TestMemoryStore_Projects(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()

	a, _ := newProject(t, store, "user-1")
	time.Sleep(time.Millisecond)
	b, _ := newProject(t, store, "user-1")
	newProject(t, store, "user-2")

	t.Run("list is scoped to the owner and ordered by creation", func(t *testing.T) {
		projects, err := store.ListProjects(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, projects, 2)
		assert.Equal(t, a.ID, projects[0].ID)
		assert.Equal(t, b.ID, projects[1].ID)
	})

	t.Run("other owners cannot see the project", func(t *testing.T) {
		_, err := store.GetProject(ctx, "user-2", a.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = store.GetDocument(ctx, "user-2", a.DocumentID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("document carries project title and type", func(t *testing.T) {
		d, err := store.GetDocument(ctx, "user-1", a.DocumentID)
		require.NoError(t, err)
		assert.Equal(t, a.ID, d.ProjectID)
		assert.Equal(t, "Q3 Report.docx", d.Filename())
	})

	t.Run("delete cascades", func(t *testing.T) {
		p, sections := newProject(t, store, "user-3", "Intro")
		require.NoError(t, store.DeleteProject(ctx, "user-3", p.ID))

		_, err := store.GetDocument(ctx, "user-3", p.DocumentID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = store.GetSection(ctx, "user-3", sections[0].ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		err = store.DeleteProject(ctx, "user-3", p.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestMemoryStore_CreateSections(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	p, _ := newProject(t, store, "user-1")

	sections, err := store.CreateSections(ctx, p.DocumentID, []string{"A", "B", "C"})
	require.NoError(t, err)
	require.Len(t, sections, 3)

	listed, err := store.ListSections(ctx, p.DocumentID)
	require.NoError(t, err)
	for i, s := range listed {
		assert.Equal(t, i, s.Order)
		assert.Equal(t, sections[i].ID, s.ID)
		assert.Equal(t, domain.StateEmpty, s.State)
	}

	_, err = store.CreateSections(ctx, p.DocumentID, []string{"D"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = store.CreateSections(ctx, "missing", []string{"D"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryStore_Transitions(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	_, sections := newProject(t, store, "user-1", "Intro")
	id := sections[0].ID

	before, err := store.BeginTransition(ctx, id, domain.GenerateFrom, domain.StateGenerating)
	require.NoError(t, err)
	assert.Equal(t, domain.StateEmpty, before.State)

	_, err = store.BeginTransition(ctx, id, domain.GenerateFrom, domain.StateGenerating)
	assert.ErrorIs(t, err, domain.ErrConflict)

	s, err := store.CompleteTransition(ctx, repository.Completion{
		SectionID: id, From: domain.StateGenerating, To: domain.StateGenerated, Content: "draft",
	})
	require.NoError(t, err)
	assert.Equal(t, "draft", s.ContentOrEmpty())

	_, err = store.BeginTransition(ctx, id, domain.RefineFrom, domain.StateRefining)
	require.NoError(t, err)
	require.NoError(t, store.RevertTransition(ctx, id, domain.StateRefining, domain.StateGenerated))

	got, err := store.GetSection(ctx, "user-1", id)
	require.NoError(t, err)
	assert.Equal(t, domain.StateGenerated, got.State)
	assert.Equal(t, "draft", got.ContentOrEmpty())

	// revert only applies while the transient state is still current
	require.NoError(t, store.RevertTransition(ctx, id, domain.StateRefining, domain.StateEmpty))
	got, _ = store.GetSection(ctx, "user-1", id)
	assert.Equal(t, domain.StateGenerated, got.State)
}

func TestMemoryStore_BeginTransitionIsExclusive(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	_, sections := newProject(t, store, "user-1", "Intro")

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.BeginTransition(ctx, sections[0].ID, domain.GenerateFrom, domain.StateGenerating); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestMemoryStore_ReturnedSectionsAreCopies(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	_, sections := newProject(t, store, "user-1", "Intro")

	s, err := store.AddComment(ctx, sections[0].ID, domain.Comment{Text: "first"})
	require.NoError(t, err)
	s.Comments[0].Text = "mutated"

	got, err := store.GetSection(ctx, "user-1", sections[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Comments[0].Text)
}
