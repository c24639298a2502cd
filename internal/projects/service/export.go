package service

import (
	"context"
	"sort"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/auth"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/exporter"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/logging"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/repository"
)

// Artifact is a rendered document ready to be served as a download.
type Artifact struct {
	Filename  string
	MediaType string
	Content   []byte
}

type ExportService struct {
	store    repository.Store
	exporter Exporter
}

func NewExportService(store repository.Store, exp Exporter) *ExportService {
	return &ExportService{store: store, exporter: exp}
}

// Export renders the document from a snapshot of its sections taken at call
// time. Sections without content are rendered empty; sections being refined
// contribute their last committed content.
func (s *ExportService) Export(ctx context.Context, sess auth.Session, documentID string) (*Artifact, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	doc, err := s.store.GetDocument(ctx, sess.UserID, documentID)
	if err != nil {
		return nil, err
	}
	sections, err := s.store.ListSections(ctx, doc.ID)
	if err != nil {
		return nil, err
	}

	req := BuildExportRequest(doc, sections)
	content, err := s.exporter.Export(ctx, sess, req)
	if err != nil {
		logging.NewLogger(ctx).LogErrorf("export", "document=%s: %v", doc.ID, err)
		return nil, upstream("export", err)
	}

	return &Artifact{
		Filename:  doc.Filename(),
		MediaType: exporter.MediaType(string(doc.Type)),
		Content:   content,
	}, nil
}

// BuildExportRequest orders sections by position and fills absent content with "".
func BuildExportRequest(doc *domain.Document, sections []domain.Section) exporter.Request {
	ordered := append([]domain.Section(nil), sections...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	out := exporter.Request{
		DocumentID:  doc.ID,
		Title:       doc.ProjectTitle,
		Description: deref(doc.ProjectDescription),
		Format:      string(doc.Type),
		Sections:    make([]exporter.Section, 0, len(ordered)),
	}
	for _, sec := range ordered {
		out.Sections = append(out.Sections, exporter.Section{
			Order:   sec.Order,
			Title:   sec.Title,
			Content: sec.ContentOrEmpty(),
		})
	}
	return out
}
