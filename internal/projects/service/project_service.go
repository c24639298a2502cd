package service

import (
	"context"
	"strings"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/auth"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/logging"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/repository"
)

// ProjectService is the project registry: every project owns exactly one
// document, created with it.
type ProjectService struct {
	store  repository.Store
	drafts repository.DraftStore
}

func NewProjectService(store repository.Store, drafts repository.DraftStore) *ProjectService {
	return &ProjectService{store: store, drafts: drafts}
}

type CreateProjectInput struct {
	Title        string
	Description  *string
	DocumentType string
	// Sections optionally commits the section titles in the same step.
	Sections []string
}

// Create validates the input and creates Project, Document and (if given)
// Sections atomically.
func (s *ProjectService) Create(ctx context.Context, sess auth.Session, in CreateProjectInput) (*domain.Project, []domain.Section, error) {
	if err := requireSession(sess); err != nil {
		return nil, nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, nil, domain.Validationf("title is required")
	}
	docType, err := domain.ParseDocumentType(in.DocumentType)
	if err != nil {
		return nil, nil, err
	}

	var titles []string
	if len(in.Sections) > 0 {
		if titles, err = domain.NormalizeTitles(in.Sections); err != nil {
			return nil, nil, err
		}
	}

	p := &domain.Project{
		OwnerID:      sess.UserID,
		Title:        title,
		Description:  trimOptional(in.Description),
		DocumentType: docType,
	}
	sections, err := s.store.CreateProject(ctx, p, titles)
	if err != nil {
		logging.NewLogger(ctx).LogError("create_project", err)
		return nil, nil, err
	}

	logging.NewLogger(ctx).LogInfof("create_project", "project=%s document=%s sections=%d", p.ID, p.DocumentID, len(sections))
	return p, sections, nil
}

// List returns the caller's projects in creation order.
func (s *ProjectService) List(ctx context.Context, sess auth.Session) ([]domain.Project, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return s.store.ListProjects(ctx, sess.UserID)
}

func (s *ProjectService) Get(ctx context.Context, sess auth.Session, projectID string) (*domain.Project, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return s.store.GetProject(ctx, sess.UserID, projectID)
}

// Delete removes the project with its document and sections. A missing id
// is NotFound, not a no-op.
func (s *ProjectService) Delete(ctx context.Context, sess auth.Session, projectID string) error {
	if err := requireSession(sess); err != nil {
		return err
	}

	p, err := s.store.GetProject(ctx, sess.UserID, projectID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteProject(ctx, sess.UserID, projectID); err != nil {
		return err
	}

	if s.drafts != nil {
		if err := s.drafts.Delete(ctx, p.DocumentID); err != nil {
			logging.NewLogger(ctx).LogWarnf("delete_project", "drop outline draft of %s: %v", p.DocumentID, err)
		}
	}
	return nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
