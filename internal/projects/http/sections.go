package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/auth"
)

func (h *Handler) getSection(c *gin.Context) {
	s, err := h.engine.GetSection(c.Request.Context(), auth.SessionFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, "get_section", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "section": s})
}

// generate blocks until the backend answers; a second call for the same
// section while this one runs gets 409.
func (h *Handler) generate(c *gin.Context) {
	s, err := h.engine.Generate(c.Request.Context(), auth.SessionFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, "generate_section", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "section": s})
}

func (h *Handler) refine(c *gin.Context) {
	var req refineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	s, err := h.engine.Refine(c.Request.Context(), auth.SessionFrom(c), c.Param("id"), req.Instruction)
	if err != nil {
		writeError(c, "refine_section", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "section": s})
}

func (h *Handler) feedback(c *gin.Context) {
	var req feedbackReq
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	s, err := h.engine.SetFeedback(c.Request.Context(), auth.SessionFrom(c), c.Param("id"), req.Feedback)
	if err != nil {
		writeError(c, "section_feedback", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "section": s})
}

func (h *Handler) comment(c *gin.Context) {
	var req commentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c)
		return
	}

	s, err := h.engine.AddComment(c.Request.Context(), auth.SessionFrom(c), c.Param("id"), req.Text)
	if err != nil {
		writeError(c, "section_comment", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "section": s})
}
