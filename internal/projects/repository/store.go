package repository

import (
	"context"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/domain"
)

// ProjectIDPrefix prefixes generated project ids.
const ProjectIDPrefix = "docf"

// Store persists projects, their documents and sections.
//
// Lookups taking an ownerID treat entities of other owners as missing. Section
// mutations take an already authorised section id.
type Store interface {
	// CreateProject creates the project, its document and (optionally) its
	// sections in one atomic step. It fills in p's ids and timestamps.
	CreateProject(ctx context.Context, p *domain.Project, titles []string) ([]domain.Section, error)
	GetProject(ctx context.Context, ownerID, projectID string) (*domain.Project, error)
	ListProjects(ctx context.Context, ownerID string) ([]domain.Project, error)
	DeleteProject(ctx context.Context, ownerID, projectID string) error

	GetDocument(ctx context.Context, ownerID, documentID string) (*domain.Document, error)
	// CreateSections creates the whole section set of a document, ordered
	// 0..n-1. It fails with ErrConflict if the document already has sections.
	CreateSections(ctx context.Context, documentID string, titles []string) ([]domain.Section, error)
	ListSections(ctx context.Context, documentID string) ([]domain.Section, error)

	GetSection(ctx context.Context, ownerID, sectionID string) (*domain.Section, error)
	// BeginTransition moves a section into a transient state if its current
	// state is one of from. It returns the section as it was before the move.
	BeginTransition(ctx context.Context, sectionID string, from []domain.GenerationState, to domain.GenerationState) (*domain.Section, error)
	CompleteTransition(ctx context.Context, c Completion) (*domain.Section, error)
	// RevertTransition puts a section back into its pre-call state. Content is
	// left untouched.
	RevertTransition(ctx context.Context, sectionID string, from, to domain.GenerationState) error
	SetFeedback(ctx context.Context, sectionID string, f domain.Feedback) (*domain.Section, error)
	AddComment(ctx context.Context, sectionID string, c domain.Comment) (*domain.Section, error)
}

// Completion finishes a transient state with new content.
type Completion struct {
	SectionID string
	From      domain.GenerationState
	To        domain.GenerationState
	Content   string
	History   *domain.RefinementEntry
}
