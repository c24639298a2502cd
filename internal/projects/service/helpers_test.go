package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/auth"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/exporter"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/generation"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/repository"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/service"
)

var (
	alice = auth.Session{UserID: "alice", Credential: "token-a"}
	bob   = auth.Session{UserID: "bob", Credential: "token-b"}

	errBackend = errors.New("backend unavailable")
)

// fakeGenerator returns deterministic text and can be told to fail or to
// hold a call until released.
type fakeGenerator struct {
	mu          sync.Mutex
	outlines    [][]string
	outlineErr  error
	generateErr error
	refineErr   error
	delay       time.Duration
	hold        chan struct{}
	started     chan string

	generateCalls int32
	refineCalls   int32
}

func (g *fakeGenerator) ProposeOutline(ctx context.Context, s auth.Session, req generation.OutlineRequest) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.outlineErr != nil {
		return nil, g.outlineErr
	}
	if len(g.outlines) == 0 {
		return []string{"Overview of " + req.Topic, "Details", "Summary"}, nil
	}
	out := g.outlines[0]
	g.outlines = g.outlines[1:]
	return out, nil
}

func (g *fakeGenerator) wait(ctx context.Context, id string) error {
	if g.started != nil {
		g.started <- id
	}
	if g.hold != nil {
		select {
		case <-g.hold:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	return nil
}

func (g *fakeGenerator) GenerateSection(ctx context.Context, s auth.Session, req generation.SectionRequest) (string, error) {
	atomic.AddInt32(&g.generateCalls, 1)
	if err := g.wait(ctx, req.SectionID); err != nil {
		return "", err
	}
	if g.generateErr != nil {
		return "", g.generateErr
	}
	return fmt.Sprintf("content of %s for %s", req.SectionTitle, req.ProjectTitle), nil
}

func (g *fakeGenerator) RefineSection(ctx context.Context, s auth.Session, req generation.RefineRequest) (string, error) {
	atomic.AddInt32(&g.refineCalls, 1)
	if err := g.wait(ctx, req.SectionID); err != nil {
		return "", err
	}
	if g.refineErr != nil {
		return "", g.refineErr
	}
	return fmt.Sprintf("%s (%s)", req.CurrentContent, req.Instruction), nil
}

type captureExporter struct {
	last exporter.Request
	err  error
}

func (e *captureExporter) Export(ctx context.Context, s auth.Session, req exporter.Request) ([]byte, error) {
	e.last = req
	if e.err != nil {
		return nil, e.err
	}
	return []byte("PK-" + req.Format), nil
}

type fixture struct {
	store     *repository.MemoryStore
	drafts    *repository.MemoryDraftStore
	broker    *repository.MemoryBroker
	gen       *fakeGenerator
	exp       *captureExporter
	projects  *service.ProjectService
	assembler *service.Assembler
	engine    *service.Engine
	exports   *service.ExportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  repository.NewMemoryStore(),
		drafts: repository.NewMemoryDraftStore(time.Hour),
		broker: repository.NewMemoryBroker(),
		gen:    &fakeGenerator{},
		exp:    &captureExporter{},
	}
	f.projects = service.NewProjectService(f.store, f.drafts)
	f.assembler = service.NewAssembler(f.store, f.drafts, f.gen)
	f.engine = service.NewEngine(f.store, f.gen, f.broker)
	f.exports = service.NewExportService(f.store, f.exp)
	return f
}

// project creates a docx project for alice with the given manual titles.
func (f *fixture) project(t *testing.T, title string, sections ...string) (*domain.Project, []domain.Section) {
	t.Helper()
	p, secs, err := f.projects.Create(context.Background(), alice, service.CreateProjectInput{
		Title:        title,
		DocumentType: "docx",
		Sections:     sections,
	})
	require.NoError(t, err)
	return p, secs
}
