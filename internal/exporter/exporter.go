package exporter

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/auth"
)

var (
	ErrNoExporter         = errors.New("no exporter for format")
	ErrIncompleteArtifact = errors.New("renderer returned an incomplete document")
)

var mediaTypes = map[string]string{
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// MediaType returns the OOXML content type for format.
func MediaType(format string) string {
	if mt, ok := mediaTypes[format]; ok {
		return mt
	}
	return "application/octet-stream"
}

type Section struct {
	Order   int    `json:"order"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Request is everything a renderer needs; sections are already in order.
type Request struct {
	DocumentID  string    `json:"document_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Format      string    `json:"format"`
	Sections    []Section `json:"sections"`
}

type Exporter interface {
	Format() string
	Export(ctx context.Context, s auth.Session, req Request) ([]byte, error)
}

type Registry struct{ byFormat map[string]Exporter }

func NewRegistry(exporters ...Exporter) *Registry {
	r := &Registry{byFormat: map[string]Exporter{}}
	for _, e := range exporters {
		r.Register(e)
	}
	return r
}

func (r *Registry) Register(e Exporter) { r.byFormat[e.Format()] = e }

func (r *Registry) Get(format string) (Exporter, bool) {
	e, ok := r.byFormat[format]
	return e, ok
}

// Export dispatches to the exporter registered for req.Format.
func (r *Registry) Export(ctx context.Context, s auth.Session, req Request) ([]byte, error) {
	e, ok := r.Get(req.Format)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoExporter, req.Format)
	}
	return e.Export(ctx, s, req)
}

// ValidatePackage checks that b is a complete OOXML package: a readable zip
// with a [Content_Types].xml part.
func ValidatePackage(b []byte) error {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIncompleteArtifact, err)
	}
	for _, f := range zr.File {
		if f.Name == "[Content_Types].xml" {
			return nil
		}
	}
	return fmt.Errorf("%w: missing [Content_Types].xml", ErrIncompleteArtifact)
}
