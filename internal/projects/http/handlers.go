package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/auth"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/service"
)

func (h *Handler) createProject(c *gin.Context) {
	var req createProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	p, sections, err := h.projects.Create(c.Request.Context(), auth.SessionFrom(c), service.CreateProjectInput{
		Title:        req.Title,
		Description:  req.Description,
		DocumentType: req.DocumentType,
		Sections:     req.Sections,
	})
	if err != nil {
		writeError(c, "create_project", err)
		return
	}

	body := gin.H{"ok": true, "project": p}
	if len(sections) > 0 {
		body["sections"] = sections
	}
	c.JSON(http.StatusCreated, body)
}

func (h *Handler) listProjects(c *gin.Context) {
	items, err := h.projects.List(c.Request.Context(), auth.SessionFrom(c))
	if err != nil {
		writeError(c, "list_projects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) getProject(c *gin.Context) {
	p, err := h.projects.Get(c.Request.Context(), auth.SessionFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, "get_project", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) deleteProject(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), auth.SessionFrom(c), c.Param("id")); err != nil {
		writeError(c, "delete_project", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
