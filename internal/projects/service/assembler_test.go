package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/domain"
)

func assertContiguous(t *testing.T, sections []domain.Section) {
	t.Helper()
	for i, s := range sections {
		assert.Equal(t, i, s.Order)
		assert.Equal(t, domain.StateEmpty, s.State)
		assert.Nil(t, s.Content)
	}
}

func TestAssembler_CommitManual(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, _ := f.project(t, "Q3 Report")

	_, err := f.assembler.CommitManual(ctx, alice, p.DocumentID, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	sections, err := f.assembler.CommitManual(ctx, alice, p.DocumentID, domain.DefaultManualTitles())
	require.NoError(t, err)
	require.Len(t, sections, 3)
	assertContiguous(t, sections)

	listed, err := f.assembler.ListSections(ctx, alice, p.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, sections, listed)

	_, err = f.assembler.CommitManual(ctx, alice, p.DocumentID, []string{"Again"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.assembler.CommitManual(ctx, bob, p.DocumentID, []string{"X"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAssembler_OutlineAccept(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, _ := f.project(t, "Q3 Report")
	f.gen.outlines = [][]string{{"Intro", "Numbers"}, {"Summary", "Revenue", "Risks"}}

	first, err := f.assembler.ProposeOutline(ctx, alice, p.DocumentID, "quarterly results")
	require.NoError(t, err)
	assert.Equal(t, []string{"Intro", "Numbers"}, first.Titles)

	// proposing never creates sections
	doc, err := f.assembler.GetDocument(ctx, alice, p.DocumentID)
	require.NoError(t, err)
	assert.Empty(t, doc.Sections)

	second, err := f.assembler.ProposeOutline(ctx, alice, p.DocumentID, "quarterly results")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	current, err := f.assembler.GetOutline(ctx, alice, p.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, current.ID)

	_, err = f.assembler.AcceptOutline(ctx, alice, p.DocumentID, first.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	sections, err := f.assembler.AcceptOutline(ctx, alice, p.DocumentID, second.ID)
	require.NoError(t, err)
	require.Len(t, sections, 3)
	assertContiguous(t, sections)
	assert.Equal(t, "Revenue", sections[1].Title)

	_, err = f.assembler.GetOutline(ctx, alice, p.DocumentID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAssembler_OutlineEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, _ := f.project(t, "Kickoff")

	d, err := f.assembler.ProposeOutline(ctx, alice, p.DocumentID, "project kickoff")
	require.NoError(t, err)

	_, err = f.assembler.ReviseOutline(ctx, alice, p.DocumentID, d.ID, []string{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.assembler.ReviseOutline(ctx, alice, p.DocumentID, "stale", []string{"A"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	edited := []string{"Summary", d.Titles[0], "Timeline"}
	revised, err := f.assembler.ReviseOutline(ctx, alice, p.DocumentID, d.ID, edited)
	require.NoError(t, err)
	assert.Equal(t, edited, revised.Titles)
	assert.Equal(t, d.ID, revised.ID)

	sections, err := f.assembler.AcceptOutline(ctx, alice, p.DocumentID, d.ID)
	require.NoError(t, err)
	require.Len(t, sections, 3)
	assert.Equal(t, "Timeline", sections[2].Title)
	assertContiguous(t, sections)
}

func TestAssembler_OutlineDiscard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, _ := f.project(t, "Kickoff")

	d, err := f.assembler.ProposeOutline(ctx, alice, p.DocumentID, "project kickoff")
	require.NoError(t, err)
	require.NoError(t, f.assembler.DiscardOutline(ctx, alice, p.DocumentID))

	_, err = f.assembler.AcceptOutline(ctx, alice, p.DocumentID, d.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	doc, err := f.assembler.GetDocument(ctx, alice, p.DocumentID)
	require.NoError(t, err)
	assert.Empty(t, doc.Sections)

	// the manual flow is still available
	sections, err := f.assembler.CommitManual(ctx, alice, p.DocumentID, []string{"Welcome"})
	require.NoError(t, err)
	assert.Len(t, sections, 1)
}

func TestAssembler_OutlineUpstreamFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, _ := f.project(t, "Kickoff")
	f.gen.outlineErr = errBackend

	_, err := f.assembler.ProposeOutline(ctx, alice, p.DocumentID, "project kickoff")
	require.ErrorIs(t, err, domain.ErrUpstream)
	assert.ErrorIs(t, err, errBackend, "cause is kept")

	var upErr *domain.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, "propose_outline", upErr.Op)

	_, err = f.assembler.GetOutline(ctx, alice, p.DocumentID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	doc, err := f.assembler.GetDocument(ctx, alice, p.DocumentID)
	require.NoError(t, err)
	assert.Empty(t, doc.Sections)
}

func TestAssembler_OutlineValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, _ := f.project(t, "Kickoff")

	_, err := f.assembler.ProposeOutline(ctx, alice, p.DocumentID, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.assembler.ProposeOutline(ctx, alice, "missing", "topic")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.assembler.AcceptOutline(ctx, alice, p.DocumentID, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAssembler_DraftOutlineDoesNotPersist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d, err := f.assembler.DraftOutline(ctx, alice, "a product launch", "pptx")
	require.NoError(t, err)
	assert.Empty(t, d.DocumentID)
	assert.Equal(t, domain.DocumentTypePPTX, d.DocumentType)
	assert.NotEmpty(t, d.Titles)

	projects, err := f.projects.List(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, projects)

	_, err = f.assembler.DraftOutline(ctx, alice, "launch", "odt")
	assert.ErrorIs(t, err, domain.ErrValidation)

	f.gen.outlineErr = errBackend
	_, err = f.assembler.DraftOutline(ctx, alice, "launch", "pptx")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
