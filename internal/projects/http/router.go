package http

import "github.com/gin-gonic/gin"

// Register attaches project, outline, document and section routes to rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	projects := rg.Group("/projects")
	projects.POST("", h.createProject)
	projects.GET("", h.listProjects)
	projects.GET("/:id", h.getProject)
	projects.DELETE("/:id", h.deleteProject)

	// project-less outline proposal
	rg.POST("/outlines", h.draftOutline)

	documents := rg.Group("/documents")
	documents.GET("/:id", h.getDocument)
	documents.GET("/:id/sections", h.listSections)
	documents.POST("/:id/sections", h.commitSections)
	documents.POST("/:id/outline", h.proposeOutline)
	documents.GET("/:id/outline", h.getOutline)
	documents.PUT("/:id/outline", h.reviseOutline)
	documents.DELETE("/:id/outline", h.discardOutline)
	documents.POST("/:id/outline/accept", h.acceptOutline)
	documents.GET("/:id/events", h.streamEvents)
	documents.GET("/:id/export", h.export)

	sections := rg.Group("/sections")
	sections.GET("/:id", h.getSection)
	sections.POST("/:id/generate", h.generate)
	sections.POST("/:id/refine", h.refine)
	sections.PUT("/:id/feedback", h.feedback)
	sections.POST("/:id/comments", h.comment)
}
