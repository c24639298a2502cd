package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/auth"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/generation"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/logging"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/metrics"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/repository"
)

// Engine drives the per-section generation state machine. State lives in the
// store, keyed by section id; at most one generate or refine call is in
// flight per section and a second one is rejected, not queued.
type Engine struct {
	store  repository.Store
	gen    Generator
	events repository.Broker
	now    func() time.Time
}

func NewEngine(store repository.Store, gen Generator, events repository.Broker) *Engine {
	return &Engine{
		store:  store,
		gen:    gen,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (e *Engine) GetSection(ctx context.Context, sess auth.Session, sectionID string) (*domain.Section, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return e.store.GetSection(ctx, sess.UserID, sectionID)
}

// Generate produces the first content of an EMPTY section.
func (e *Engine) Generate(ctx context.Context, sess auth.Session, sectionID string) (*domain.Section, error) {
	log := logging.NewLogger(ctx)

	sec, doc, err := e.load(ctx, sess, sectionID)
	if err != nil {
		return nil, err
	}

	if _, err := e.begin(ctx, sec, domain.GenerateFrom, domain.StateGenerating); err != nil {
		return nil, err
	}

	text, err := e.gen.GenerateSection(ctx, sess, generation.SectionRequest{
		SectionID:          sec.ID,
		SectionTitle:       sec.Title,
		ProjectTitle:       doc.ProjectTitle,
		ProjectDescription: deref(doc.ProjectDescription),
		DocumentType:       string(doc.Type),
	})
	if err != nil {
		log.LogErrorf("generate", "section=%s: %v", sec.ID, err)
		e.revert(ctx, sec, domain.StateGenerating, domain.StateEmpty)
		return nil, upstream("generate_section", err)
	}

	out, err := e.complete(ctx, sec, repository.Completion{
		SectionID: sec.ID,
		From:      domain.StateGenerating,
		To:        domain.StateGenerated,
		Content:   text,
	}, domain.StateEmpty)
	if err != nil {
		return nil, err
	}

	log.LogInfof("generate", "section=%s generated", sec.ID)
	return out, nil
}

// Refine replaces the content of a generated section following instruction.
func (e *Engine) Refine(ctx context.Context, sess auth.Session, sectionID, instruction string) (*domain.Section, error) {
	log := logging.NewLogger(ctx)

	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil, domain.Validationf("instruction is required")
	}

	sec, _, err := e.load(ctx, sess, sectionID)
	if err != nil {
		return nil, err
	}

	before, err := e.begin(ctx, sec, domain.RefineFrom, domain.StateRefining)
	if err != nil {
		return nil, err
	}
	previous := before.ContentOrEmpty()

	text, err := e.gen.RefineSection(ctx, sess, generation.RefineRequest{
		SectionID:      sec.ID,
		SectionTitle:   sec.Title,
		Instruction:    instruction,
		CurrentContent: previous,
	})
	if err != nil {
		log.LogErrorf("refine", "section=%s: %v", sec.ID, err)
		e.revert(ctx, sec, domain.StateRefining, before.State)
		return nil, upstream("refine_section", err)
	}

	out, err := e.complete(ctx, sec, repository.Completion{
		SectionID: sec.ID,
		From:      domain.StateRefining,
		To:        domain.StateRefined,
		Content:   text,
		History: &domain.RefinementEntry{
			Instruction:     instruction,
			PreviousContent: previous,
			CreatedAt:       e.now(),
		},
	}, before.State)
	if err != nil {
		return nil, err
	}

	log.LogInfof("refine", "section=%s refined", sec.ID)
	return out, nil
}

// SetFeedback records the reader's verdict; content and state are untouched.
func (e *Engine) SetFeedback(ctx context.Context, sess auth.Session, sectionID, feedback string) (*domain.Section, error) {
	f, err := domain.ParseFeedback(feedback)
	if err != nil {
		return nil, err
	}
	sec, err := e.GetSection(ctx, sess, sectionID)
	if err != nil {
		return nil, err
	}
	return e.store.SetFeedback(ctx, sec.ID, f)
}

// AddComment appends a free-text comment; content and state are untouched.
func (e *Engine) AddComment(ctx context.Context, sess auth.Session, sectionID, text string) (*domain.Section, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.Validationf("comment text is required")
	}
	sec, err := e.GetSection(ctx, sess, sectionID)
	if err != nil {
		return nil, err
	}
	return e.store.AddComment(ctx, sec.ID, domain.Comment{Text: text, CreatedAt: e.now()})
}

func (e *Engine) load(ctx context.Context, sess auth.Session, sectionID string) (*domain.Section, *domain.Document, error) {
	sec, err := e.GetSection(ctx, sess, sectionID)
	if err != nil {
		return nil, nil, err
	}
	doc, err := e.store.GetDocument(ctx, sess.UserID, sec.DocumentID)
	if err != nil {
		return nil, nil, err
	}
	return sec, doc, nil
}

func (e *Engine) begin(ctx context.Context, sec *domain.Section, from []domain.GenerationState, to domain.GenerationState) (*domain.Section, error) {
	before, err := e.store.BeginTransition(ctx, sec.ID, from, to)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			metrics.RecordConflict()
		}
		return nil, err
	}
	e.publish(ctx, sec, to)
	return before, nil
}

func (e *Engine) complete(ctx context.Context, sec *domain.Section, c repository.Completion, restore domain.GenerationState) (*domain.Section, error) {
	// the upstream call has succeeded; storing its result must not depend on
	// the caller still waiting
	out, err := e.store.CompleteTransition(context.WithoutCancel(ctx), c)
	if err != nil {
		logging.NewLogger(ctx).LogErrorf("complete_transition", "section=%s: %v", sec.ID, err)
		e.revert(ctx, sec, c.From, restore)
		return nil, err
	}
	e.publish(ctx, sec, c.To)
	return out, nil
}

// revert puts a section back to its pre-call state even when ctx is already
// cancelled.
func (e *Engine) revert(ctx context.Context, sec *domain.Section, from, to domain.GenerationState) {
	bg := context.WithoutCancel(ctx)
	if err := e.store.RevertTransition(bg, sec.ID, from, to); err != nil {
		logging.NewLogger(ctx).LogErrorf("revert_transition", "section=%s %s->%s: %v", sec.ID, from, to, err)
		return
	}
	e.publish(bg, sec, to)
}

func (e *Engine) publish(ctx context.Context, sec *domain.Section, state domain.GenerationState) {
	if e.events == nil {
		return
	}
	ev := domain.SectionEvent{
		DocumentID: sec.DocumentID,
		SectionID:  sec.ID,
		State:      state,
		At:         e.now(),
	}
	if err := e.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		logging.NewLogger(ctx).LogWarnf("section_event", "publish %s for %s: %v", state, sec.ID, err)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
