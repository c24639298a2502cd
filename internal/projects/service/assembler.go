package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/auth"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/generation"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/logging"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/repository"
)

// Assembler builds a document's section set exactly once, either from a
// manual title list or from a reviewed outline draft.
type Assembler struct {
	store  repository.Store
	drafts repository.DraftStore
	gen    Generator
	now    func() time.Time
}

func NewAssembler(store repository.Store, drafts repository.DraftStore, gen Generator) *Assembler {
	return &Assembler{
		store:  store,
		drafts: drafts,
		gen:    gen,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// GetDocument returns the document with its sections in order.
func (a *Assembler) GetDocument(ctx context.Context, sess auth.Session, documentID string) (*domain.Document, error) {
	doc, err := a.document(ctx, sess, documentID)
	if err != nil {
		return nil, err
	}
	sections, err := a.store.ListSections(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	doc.Sections = sections
	return doc, nil
}

func (a *Assembler) ListSections(ctx context.Context, sess auth.Session, documentID string) ([]domain.Section, error) {
	doc, err := a.GetDocument(ctx, sess, documentID)
	if err != nil {
		return nil, err
	}
	return doc.Sections, nil
}

// CommitManual creates one section per title, ordered by position.
func (a *Assembler) CommitManual(ctx context.Context, sess auth.Session, documentID string, titles []string) ([]domain.Section, error) {
	doc, err := a.document(ctx, sess, documentID)
	if err != nil {
		return nil, err
	}
	titles, err = domain.NormalizeTitles(titles)
	if err != nil {
		return nil, err
	}

	sections, err := a.store.CreateSections(ctx, doc.ID, titles)
	if err != nil {
		return nil, err
	}

	// a pending proposal can no longer be accepted
	a.dropDraft(ctx, doc.ID)
	return sections, nil
}

// DraftOutline asks for an outline without touching any stored entity. It
// backs the project-less flow where the draft is committed together with a
// new project.
func (a *Assembler) DraftOutline(ctx context.Context, sess auth.Session, topic, documentType string) (*domain.OutlineDraft, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, domain.Validationf("topic is required")
	}
	docType, err := domain.ParseDocumentType(documentType)
	if err != nil {
		return nil, err
	}

	return a.propose(ctx, sess, "", topic, docType)
}

// ProposeOutline requests an outline for the document and stores it as the
// document's pending draft, replacing any earlier one. No section is created.
func (a *Assembler) ProposeOutline(ctx context.Context, sess auth.Session, documentID, topic string) (*domain.OutlineDraft, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, domain.Validationf("topic is required")
	}
	doc, err := a.document(ctx, sess, documentID)
	if err != nil {
		return nil, err
	}
	if err := a.requireUnassembled(ctx, doc.ID); err != nil {
		return nil, err
	}

	d, err := a.propose(ctx, sess, doc.ID, topic, doc.Type)
	if err != nil {
		return nil, err
	}
	if err := a.drafts.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (a *Assembler) propose(ctx context.Context, sess auth.Session, documentID, topic string, docType domain.DocumentType) (*domain.OutlineDraft, error) {
	titles, err := a.gen.ProposeOutline(ctx, sess, generation.OutlineRequest{
		DocumentID:   documentID,
		Topic:        topic,
		DocumentType: string(docType),
	})
	if err != nil {
		logging.NewLogger(ctx).LogError("propose_outline", err)
		return nil, upstream("propose_outline", err)
	}
	titles, err = domain.NormalizeTitles(titles)
	if err != nil {
		return nil, upstream("propose_outline", err)
	}

	now := a.now()
	return &domain.OutlineDraft{
		ID:           uuid.New().String(),
		DocumentID:   documentID,
		Topic:        topic,
		DocumentType: docType,
		Titles:       titles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// GetOutline returns the document's pending draft.
func (a *Assembler) GetOutline(ctx context.Context, sess auth.Session, documentID string) (*domain.OutlineDraft, error) {
	doc, err := a.document(ctx, sess, documentID)
	if err != nil {
		return nil, err
	}
	return a.drafts.Get(ctx, doc.ID)
}

// ReviseOutline replaces the draft's titles (rename, reorder, add, remove).
// draftID must name the current draft.
func (a *Assembler) ReviseOutline(ctx context.Context, sess auth.Session, documentID, draftID string, titles []string) (*domain.OutlineDraft, error) {
	doc, err := a.document(ctx, sess, documentID)
	if err != nil {
		return nil, err
	}
	titles, err = domain.NormalizeTitles(titles)
	if err != nil {
		return nil, err
	}
	d, err := a.currentDraft(ctx, doc.ID, draftID)
	if err != nil {
		return nil, err
	}

	d.Titles = titles
	d.UpdatedAt = a.now()
	if err := a.drafts.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// AcceptOutline commits the current draft as the document's sections.
func (a *Assembler) AcceptOutline(ctx context.Context, sess auth.Session, documentID, draftID string) ([]domain.Section, error) {
	doc, err := a.document(ctx, sess, documentID)
	if err != nil {
		return nil, err
	}
	d, err := a.currentDraft(ctx, doc.ID, draftID)
	if err != nil {
		return nil, err
	}

	sections, err := a.store.CreateSections(ctx, doc.ID, d.Titles)
	if err != nil {
		return nil, err
	}
	a.dropDraft(ctx, doc.ID)
	return sections, nil
}

// DiscardOutline drops the pending draft. The document stays empty and a
// manual commit or a new proposal may follow.
func (a *Assembler) DiscardOutline(ctx context.Context, sess auth.Session, documentID string) error {
	doc, err := a.document(ctx, sess, documentID)
	if err != nil {
		return err
	}
	return a.drafts.Delete(ctx, doc.ID)
}

func (a *Assembler) document(ctx context.Context, sess auth.Session, documentID string) (*domain.Document, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return a.store.GetDocument(ctx, sess.UserID, documentID)
}

func (a *Assembler) requireUnassembled(ctx context.Context, documentID string) error {
	existing, err := a.store.ListSections(ctx, documentID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return domain.Conflictf("document %s already has sections", documentID)
	}
	return nil
}

func (a *Assembler) currentDraft(ctx context.Context, documentID, draftID string) (*domain.OutlineDraft, error) {
	if strings.TrimSpace(draftID) == "" {
		return nil, domain.Validationf("draft_id is required")
	}
	d, err := a.drafts.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if d.ID != draftID {
		return nil, domain.Conflictf("outline draft %s was replaced by %s", draftID, d.ID)
	}
	return d, nil
}

func (a *Assembler) dropDraft(ctx context.Context, documentID string) {
	if err := a.drafts.Delete(ctx, documentID); err != nil {
		logging.NewLogger(ctx).LogWarnf("outline", "drop draft of %s: %v", documentID, err)
	}
}
