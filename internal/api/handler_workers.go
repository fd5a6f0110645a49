package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleet-management-backend/internal/model"
	"fleet-management-backend/internal/store"
)

type createWorkerRequest struct {
	FirstName string    `json:"firstName" binding:"required"`
	LastName  string    `json:"lastName" binding:"required"`
	StartDate time.Time `json:"startDate" binding:"required"`
	BrigadeID *int64    `json:"brigadeId"`
}

// ListWorkers handles GET /api/workers.
func (h *Handler) ListWorkers(c *gin.Context) {
	workers, err := h.store.ListWorkers(c.Request.Context())
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, workers)
}

// CreateWorker handles POST /api/workers.
func (h *Handler) CreateWorker(c *gin.Context) {
	var req createWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	worker, err := h.store.CreateWorker(c.Request.Context(), model.Worker{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		StartDate: req.StartDate,
		BrigadeID: req.BrigadeID,
	})
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, worker)
}

// UpdateWorker handles PATCH /api/workers/:id.
func (h *Handler) UpdateWorker(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var patch store.WorkerPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	worker, err := h.store.UpdateWorker(c.Request.Context(), id, patch)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, worker)
}

// DeleteWorker handles DELETE /api/workers/:id.
func (h *Handler) DeleteWorker(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.store.DeleteWorker(c.Request.Context(), id); err != nil {
		storeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
