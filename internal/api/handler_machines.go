package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-management-backend/internal/model"
	"fleet-management-backend/internal/notification"
	"fleet-management-backend/internal/store"
)

type createMachineRequest struct {
	Type         string              `json:"type" binding:"required"`
	Brand        string              `json:"brand" binding:"required"`
	Model        string              `json:"model" binding:"required"`
	SerialNumber string              `json:"serialNumber" binding:"required"`
	Status       model.MachineStatus `json:"status" binding:"required,oneof=free in_use repair"`
	BrigadeID    *int64              `json:"brigadeId"`
}

// ListMachines handles GET /api/machines.
func (h *Handler) ListMachines(c *gin.Context) {
	machines, err := h.store.ListMachines(c.Request.Context())
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, machines)
}

// CreateMachine handles POST /api/machines.
func (h *Handler) CreateMachine(c *gin.Context) {
	var req createMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	machine, err := h.store.CreateMachine(c.Request.Context(), model.Machine{
		Type:         req.Type,
		Brand:        req.Brand,
		Model:        req.Model,
		SerialNumber: req.SerialNumber,
		Status:       req.Status,
		BrigadeID:    req.BrigadeID,
	})
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, machine)
}

// UpdateMachine handles PATCH /api/machines/:id.
func (h *Handler) UpdateMachine(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var patch store.MachinePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	machine, err := h.store.UpdateMachine(c.Request.Context(), id, patch)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, machine)
}

// DeleteMachine handles DELETE /api/machines/:id.
func (h *Handler) DeleteMachine(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.store.DeleteMachine(c.Request.Context(), id); err != nil {
		storeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type updateStatusRequest struct {
	Status model.MachineStatus `json:"status" binding:"required,oneof=free in_use repair"`
}

// UpdateMachineStatus handles PATCH /api/machines/:id/status. The status
// change and its history record are written as one unit by the store; the
// notification dispatch happens after, fire-and-forget.
func (h *Handler) UpdateMachineStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	machine, err := h.store.UpdateMachineStatus(c.Request.Context(), id, req.Status, h.actingUserID)
	if err != nil {
		storeError(c, err)
		return
	}

	if h.pool != nil {
		h.pool.Dispatch(notification.Job{MachineID: id, Status: req.Status})
	}
	c.JSON(http.StatusOK, machine)
}

type updateBrigadeRequest struct {
	BrigadeID *int64 `json:"brigadeId"`
}

// UpdateMachineBrigade handles PATCH /api/machines/:id/brigade. A null
// brigadeId unassigns the machine; the brigade's existence is not checked.
func (h *Handler) UpdateMachineBrigade(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req updateBrigadeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	machine, err := h.store.UpdateMachineBrigade(c.Request.Context(), id, req.BrigadeID)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, machine)
}

// GetMachineHistory handles GET /api/machines/:id/history, newest first.
func (h *Handler) GetMachineHistory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	records, err := h.store.ListMachineHistory(c.Request.Context(), id)
	if err != nil {
		storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}
