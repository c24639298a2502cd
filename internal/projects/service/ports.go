package service

import (
	"context"
	"errors"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/auth"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/exporter"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/generation"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/domain"
)

// Generator is the external text generation service.
type Generator interface {
	ProposeOutline(ctx context.Context, s auth.Session, req generation.OutlineRequest) ([]string, error)
	GenerateSection(ctx context.Context, s auth.Session, req generation.SectionRequest) (string, error)
	RefineSection(ctx context.Context, s auth.Session, req generation.RefineRequest) (string, error)
}

// Exporter renders an assembled document to its binary format.
type Exporter interface {
	Export(ctx context.Context, s auth.Session, req exporter.Request) ([]byte, error)
}

func requireSession(s auth.Session) error {
	if !s.Authenticated() {
		return domain.ErrAuth
	}
	return nil
}

// upstream gives a collaborator failure the UpstreamError shape, keeping its cause.
func upstream(op string, err error) error {
	if errors.Is(err, domain.ErrUpstream) {
		return err
	}
	return domain.Upstream(op, err)
}
