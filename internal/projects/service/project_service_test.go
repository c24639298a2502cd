package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/auth"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/service"
)

func TestProjectService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		sess auth.Session
		in   service.CreateProjectInput
		want error
	}{
		{"empty title", alice, service.CreateProjectInput{Title: "  ", DocumentType: "docx"}, domain.ErrValidation},
		{"bad type", alice, service.CreateProjectInput{Title: "Q3", DocumentType: "pdf"}, domain.ErrValidation},
		{"blank section title", alice, service.CreateProjectInput{Title: "Q3", DocumentType: "docx", Sections: []string{"A", " "}}, domain.ErrValidation},
		{"no session", auth.Session{}, service.CreateProjectInput{Title: "Q3", DocumentType: "docx"}, domain.ErrAuth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.projects.Create(ctx, tt.sess, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	projects, err := f.projects.List(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, projects, "failed creates must not leave projects behind")
}

func TestProjectService_CreateWithDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	desc := "  quarterly numbers "
	p, sections, err := f.projects.Create(ctx, alice, service.CreateProjectInput{
		Title:        " Q3 Report ",
		Description:  &desc,
		DocumentType: "DOCX",
	})
	require.NoError(t, err)
	assert.Equal(t, "Q3 Report", p.Title)
	require.NotNil(t, p.Description)
	assert.Equal(t, "quarterly numbers", *p.Description)
	assert.Equal(t, domain.DocumentTypeDOCX, p.DocumentType)
	assert.Empty(t, sections)

	doc, err := f.assembler.GetDocument(ctx, alice, p.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, doc.ProjectID)
	assert.Equal(t, domain.DocumentTypeDOCX, doc.Type)
	assert.Empty(t, doc.Sections)
}

func TestProjectService_ListIsOwnerScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, _ := f.project(t, "First")
	second, _ := f.project(t, "Second")
	_, _, err := f.projects.Create(ctx, bob, service.CreateProjectInput{Title: "Bob's", DocumentType: "pptx"})
	require.NoError(t, err)

	projects, err := f.projects.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, first.ID, projects[0].ID)
	assert.Equal(t, second.ID, projects[1].ID)

	_, err = f.projects.Get(ctx, bob, first.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectService_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, sections := f.project(t, "Q3 Report", "Introduction", "Body")
	_, err := f.assembler.ProposeOutline(ctx, alice, p.DocumentID, "ignored")
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, f.projects.Delete(ctx, alice, p.ID))

	_, err = f.assembler.GetDocument(ctx, alice, p.DocumentID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	for _, s := range sections {
		_, err = f.engine.GetSection(ctx, alice, s.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	}

	err = f.projects.Delete(ctx, alice, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectService_DeleteOtherOwner(t *testing.T) {
	f := newFixture(t)
	p, _ := f.project(t, "Mine")

	err := f.projects.Delete(context.Background(), bob, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.projects.Get(context.Background(), alice, p.ID)
	assert.NoError(t, err)
}
