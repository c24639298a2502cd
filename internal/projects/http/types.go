package http

import (
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/repository"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/service"
)

// Handler bundles the dependencies for project, document and section endpoints.
type Handler struct {
	projects  *service.ProjectService
	assembler *service.Assembler
	engine    *service.Engine
	exports   *service.ExportService
	events    repository.Broker
}

func New(projects *service.ProjectService, assembler *service.Assembler, engine *service.Engine, exports *service.ExportService, events repository.Broker) *Handler {
	return &Handler{
		projects:  projects,
		assembler: assembler,
		engine:    engine,
		exports:   exports,
		events:    events,
	}
}

type createProjectReq struct {
	Title        string   `json:"title"`
	Description  *string  `json:"description"`
	DocumentType string   `json:"document_type"`
	Sections     []string `json:"sections"`
}

type draftOutlineReq struct {
	Topic        string `json:"topic"`
	DocumentType string `json:"document_type"`
}

type titlesReq struct {
	Titles []string `json:"titles"`
}

type proposeOutlineReq struct {
	Topic string `json:"topic"`
}

type reviseOutlineReq struct {
	DraftID string   `json:"draft_id"`
	Titles  []string `json:"titles"`
}

type acceptOutlineReq struct {
	DraftID string `json:"draft_id"`
}

type refineReq struct {
	Instruction string `json:"instruction"`
}

type feedbackReq struct {
	Feedback string `json:"feedback"`
}

type commentReq struct {
	Text string `json:"text"`
}
