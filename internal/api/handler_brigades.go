package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-management-backend/internal/model"
	"fleet-management-backend/internal/store"
)

type createBrigadeRequest struct {
	Name    string   `json:"name" binding:"required"`
	Members []string `json:"members"`
}

// ListBrigades handles GET /api/brigades.
func (h *Handler) ListBrigades(c *gin.Context) {
	brigades, err := h.store.ListBrigades(c.Request.Context())
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, brigades)
}

// CreateBrigade handles POST /api/brigades.
func (h *Handler) CreateBrigade(c *gin.Context) {
	var req createBrigadeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	brigade, err := h.store.CreateBrigade(c.Request.Context(), model.Brigade{
		Name:    req.Name,
		Members: model.StringList(req.Members),
	})
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, brigade)
}

// UpdateBrigade handles PATCH /api/brigades/:id.
func (h *Handler) UpdateBrigade(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var patch store.BrigadePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	brigade, err := h.store.UpdateBrigade(c.Request.Context(), id, patch)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, brigade)
}

// DeleteBrigade handles DELETE /api/brigades/:id. Machines and workers that
// reference the brigade keep their brigadeId.
func (h *Handler) DeleteBrigade(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.store.DeleteBrigade(c.Request.Context(), id); err != nil {
		storeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
