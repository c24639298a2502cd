package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/utils"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const sectionColumns = `id, document_id, title, position, content, generation_state, feedback, comments, refinement_history, updated_at`

// PostgresStore provides persistence operations for projects, documents and sections.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateProject inserts the project, its document and any initial sections in
// one transaction, retrying on a public id collision.
func (r *PostgresStore) CreateProject(ctx context.Context, p *domain.Project, titles []string) ([]domain.Section, error) {
	if p.OwnerID == "" {
		return nil, fmt.Errorf("owner uid required")
	}

	for i := 0; i < 5; i++ {
		id, err := utils.NewTextID(ProjectIDPrefix)
		if err != nil {
			return nil, err
		}

		sections, err := r.createProjectTx(ctx, id, p, titles)
		if err == nil {
			return sections, nil
		}

		// unique violation on the project id → retry
		if isUniqueViolation(err, "projects_pkey") {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("failed to generate unique project id")
}

func (r *PostgresStore) createProjectTx(ctx context.Context, id string, p *domain.Project, titles []string) ([]domain.Section, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var createdAt time.Time
	err = tx.QueryRowContext(ctx, `
insert into projects (id, owner_uid, title, description, document_type)
values ($1, $2, $3, $4, $5)
returning created_at
`, id, p.OwnerID, p.Title, p.Description, string(p.DocumentType)).Scan(&createdAt)
	if err != nil {
		return nil, err
	}

	documentID := uuid.New().String()
	if _, err := tx.ExecContext(ctx, `
insert into documents (id, project_id)
values ($1, $2)
`, documentID, id); err != nil {
		return nil, err
	}

	var sections []domain.Section
	if len(titles) > 0 {
		sections, err = insertSections(ctx, tx, documentID, titles)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	p.ID = id
	p.DocumentID = documentID
	p.CreatedAt = createdAt
	return sections, nil
}

func insertSections(ctx context.Context, tx *sql.Tx, documentID string, titles []string) ([]domain.Section, error) {
	now := time.Now().UTC()
	q := psql.Insert("sections").
		Columns("id", "document_id", "title", "position", "generation_state", "updated_at")

	out := make([]domain.Section, 0, len(titles))
	for i, title := range titles {
		s := domain.Section{
			ID:                uuid.New().String(),
			DocumentID:        documentID,
			Title:             title,
			Order:             i,
			State:             domain.StateEmpty,
			Comments:          []domain.Comment{},
			RefinementHistory: []domain.RefinementEntry{},
			UpdatedAt:         now,
		}
		q = q.Values(s.ID, documentID, title, i, string(domain.StateEmpty), now)
		out = append(out, s)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build section insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresStore) GetProject(ctx context.Context, ownerID, projectID string) (*domain.Project, error) {
	const q = `
select p.id, p.owner_uid, p.title, p.description, p.document_type, d.id, p.created_at
from projects p
join documents d on d.project_id = p.id
where p.id = $1 and p.owner_uid = $2
`
	p, err := scanProject(r.db.QueryRowContext(ctx, q, projectID, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("project " + projectID)
		}
		return nil, err
	}
	return p, nil
}

// ListProjects returns the owner's projects, oldest first.
func (r *PostgresStore) ListProjects(ctx context.Context, ownerID string) ([]domain.Project, error) {
	query, args, err := psql.
		Select("p.id", "p.owner_uid", "p.title", "p.description", "p.document_type", "d.id", "p.created_at").
		From("projects p").
		Join("documents d on d.project_id = p.id").
		Where(sq.Eq{"p.owner_uid": ownerID}).
		OrderBy("p.created_at asc", "p.id asc").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteProject removes the project; documents and sections go with it via
// on delete cascade.
func (r *PostgresStore) DeleteProject(ctx context.Context, ownerID, projectID string) error {
	const q = `
delete from projects
where id = $1 and owner_uid = $2
`
	result, err := r.db.ExecContext(ctx, q, projectID, ownerID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("project " + projectID)
	}
	return nil
}

func (r *PostgresStore) GetDocument(ctx context.Context, ownerID, documentID string) (*domain.Document, error) {
	const q = `
select d.id, d.project_id, p.document_type, p.title, p.description
from documents d
join projects p on p.id = d.project_id
where d.id = $1 and p.owner_uid = $2
`
	var (
		d           domain.Document
		docType     string
		description sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, documentID, ownerID).
		Scan(&d.ID, &d.ProjectID, &docType, &d.ProjectTitle, &description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("document " + documentID)
		}
		return nil, err
	}
	d.Type = domain.DocumentType(docType)
	if description.Valid {
		d.ProjectDescription = &description.String
	}
	return &d, nil
}

func (r *PostgresStore) CreateSections(ctx context.Context, documentID string, titles []string) ([]domain.Section, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var locked string
	err = tx.QueryRowContext(ctx, `
select id
from documents
where id = $1
for update
`, documentID).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("document " + documentID)
		}
		return nil, err
	}

	var existing int
	if err := tx.QueryRowContext(ctx, `
select count(*)
from sections
where document_id = $1
`, documentID).Scan(&existing); err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, domain.Conflictf("document %s already has sections", documentID)
	}

	sections, err := insertSections(ctx, tx, documentID, titles)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return sections, nil
}

func (r *PostgresStore) ListSections(ctx context.Context, documentID string) ([]domain.Section, error) {
	query, args, err := psql.
		Select(sectionColumns).
		From("sections").
		Where(sq.Eq{"document_id": documentID}).
		OrderBy("position asc").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Section, 0, 8)
	for rows.Next() {
		s, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresStore) GetSection(ctx context.Context, ownerID, sectionID string) (*domain.Section, error) {
	const q = `
select s.id, s.document_id, s.title, s.position, s.content, s.generation_state,
       s.feedback, s.comments, s.refinement_history, s.updated_at
from sections s
join documents d on d.id = s.document_id
join projects p on p.id = d.project_id
where s.id = $1 and p.owner_uid = $2
`
	s, err := scanSection(r.db.QueryRowContext(ctx, q, sectionID, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("section " + sectionID)
		}
		return nil, err
	}
	return s, nil
}

// lockSection reads a section inside tx, holding its row lock until commit.
func lockSection(ctx context.Context, tx *sql.Tx, sectionID string) (*domain.Section, error) {
	s, err := scanSection(tx.QueryRowContext(ctx, `
select `+sectionColumns+`
from sections
where id = $1
for update
`, sectionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("section " + sectionID)
		}
		return nil, err
	}
	return s, nil
}

// BeginTransition is a compare-and-set on generation_state under a row lock,
// so concurrent callers for the same section are serialised and only one wins.
func (r *PostgresStore) BeginTransition(ctx context.Context, sectionID string, from []domain.GenerationState, to domain.GenerationState) (*domain.Section, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	before, err := lockSection(ctx, tx, sectionID)
	if err != nil {
		return nil, err
	}
	if !domain.StateIn(before.State, from) {
		return nil, domain.StateConflict(sectionID, before.State)
	}

	if _, err := tx.ExecContext(ctx, `
update sections
set generation_state = $2, updated_at = now()
where id = $1
`, sectionID, string(to)); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return before, nil
}

func (r *PostgresStore) CompleteTransition(ctx context.Context, c Completion) (*domain.Section, error) {
	history := []domain.RefinementEntry{}
	if c.History != nil {
		history = append(history, *c.History)
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal refinement history: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	current, err := lockSection(ctx, tx, c.SectionID)
	if err != nil {
		return nil, err
	}
	if current.State != c.From {
		return nil, domain.StateConflict(c.SectionID, current.State)
	}

	s, err := scanSection(tx.QueryRowContext(ctx, `
update sections
set content = $2,
    generation_state = $3,
    refinement_history = refinement_history || $4::jsonb,
    updated_at = now()
where id = $1
returning `+sectionColumns+`
`, c.SectionID, c.Content, string(c.To), string(historyJSON)))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *PostgresStore) RevertTransition(ctx context.Context, sectionID string, from, to domain.GenerationState) error {
	const q = `
update sections
set generation_state = $3, updated_at = now()
where id = $1 and generation_state = $2
`
	_, err := r.db.ExecContext(ctx, q, sectionID, string(from), string(to))
	return err
}

func (r *PostgresStore) SetFeedback(ctx context.Context, sectionID string, f domain.Feedback) (*domain.Section, error) {
	s, err := scanSection(r.db.QueryRowContext(ctx, `
update sections
set feedback = $2, updated_at = now()
where id = $1
returning `+sectionColumns+`
`, sectionID, string(f)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("section " + sectionID)
		}
		return nil, err
	}
	return s, nil
}

func (r *PostgresStore) AddComment(ctx context.Context, sectionID string, c domain.Comment) (*domain.Section, error) {
	commentJSON, err := json.Marshal([]domain.Comment{c})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal comment: %w", err)
	}

	s, err := scanSection(r.db.QueryRowContext(ctx, `
update sections
set comments = comments || $2::jsonb, updated_at = now()
where id = $1
returning `+sectionColumns+`
`, sectionID, string(commentJSON)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound("section " + sectionID)
		}
		return nil, err
	}
	return s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p           domain.Project
		description sql.NullString
		docType     string
	)
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &description, &docType, &p.DocumentID, &p.CreatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		p.Description = &description.String
	}
	p.DocumentType = domain.DocumentType(docType)
	return &p, nil
}

func scanSection(row rowScanner) (*domain.Section, error) {
	var (
		s        domain.Section
		content  sql.NullString
		state    string
		feedback string
		comments []byte
		history  []byte
	)
	if err := row.Scan(&s.ID, &s.DocumentID, &s.Title, &s.Order, &content, &state,
		&feedback, &comments, &history, &s.UpdatedAt); err != nil {
		return nil, err
	}

	if content.Valid {
		s.Content = &content.String
	}
	s.State = domain.GenerationState(state)
	s.Feedback = domain.Feedback(feedback)

	s.Comments = []domain.Comment{}
	if len(comments) > 0 {
		if err := json.Unmarshal(comments, &s.Comments); err != nil {
			return nil, fmt.Errorf("failed to unmarshal comments: %w", err)
		}
	}
	s.RefinementHistory = []domain.RefinementEntry{}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &s.RefinementHistory); err != nil {
			return nil, fmt.Errorf("failed to unmarshal refinement history: %w", err)
		}
	}
	return &s, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
