package http

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/auth"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/logging"
)

func (h *Handler) getDocument(c *gin.Context) {
	doc, err := h.assembler.GetDocument(c.Request.Context(), auth.SessionFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, "get_document", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "document": doc})
}

func (h *Handler) listSections(c *gin.Context) {
	sections, err := h.assembler.ListSections(c.Request.Context(), auth.SessionFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, "list_sections", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "sections": sections})
}

// commitSections stores a manually entered outline.
func (h *Handler) commitSections(c *gin.Context) {
	var req titlesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	sections, err := h.assembler.CommitManual(c.Request.Context(), auth.SessionFrom(c), c.Param("id"), req.Titles)
	if err != nil {
		writeError(c, "commit_sections", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "sections": sections})
}

func (h *Handler) draftOutline(c *gin.Context) {
	var req draftOutlineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	draft, err := h.assembler.DraftOutline(c.Request.Context(), auth.SessionFrom(c), req.Topic, req.DocumentType)
	if err != nil {
		writeError(c, "draft_outline", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "outline": draft})
}

func (h *Handler) proposeOutline(c *gin.Context) {
	var req proposeOutlineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	draft, err := h.assembler.ProposeOutline(c.Request.Context(), auth.SessionFrom(c), c.Param("id"), req.Topic)
	if err != nil {
		writeError(c, "propose_outline", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "outline": draft})
}

func (h *Handler) getOutline(c *gin.Context) {
	draft, err := h.assembler.GetOutline(c.Request.Context(), auth.SessionFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, "get_outline", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "outline": draft})
}

func (h *Handler) reviseOutline(c *gin.Context) {
	var req reviseOutlineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	draft, err := h.assembler.ReviseOutline(c.Request.Context(), auth.SessionFrom(c), c.Param("id"), req.DraftID, req.Titles)
	if err != nil {
		writeError(c, "revise_outline", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "outline": draft})
}

func (h *Handler) acceptOutline(c *gin.Context) {
	var req acceptOutlineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	sections, err := h.assembler.AcceptOutline(c.Request.Context(), auth.SessionFrom(c), c.Param("id"), req.DraftID)
	if err != nil {
		writeError(c, "accept_outline", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "sections": sections})
}

func (h *Handler) discardOutline(c *gin.Context) {
	if err := h.assembler.DiscardOutline(c.Request.Context(), auth.SessionFrom(c), c.Param("id")); err != nil {
		writeError(c, "discard_outline", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// export serves the rendered document as a download.
func (h *Handler) export(c *gin.Context) {
	artifact, err := h.exports.Export(c.Request.Context(), auth.SessionFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, "export", err)
		return
	}

	logging.NewLogger(c.Request.Context()).LogInfof("export", "document=%s bytes=%d", c.Param("id"), len(artifact.Content))
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Filename}))
	c.Data(http.StatusOK, artifact.MediaType, artifact.Content)
}
