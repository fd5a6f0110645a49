package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"fleet-management-backend/internal/notification"
	"fleet-management-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store        store.Store
	pool         *notification.WorkerPool
	webpush      *webpush.Options
	actingUserID int64
}

// NewHandler creates a new API handler. pool may be nil when web push is not
// configured.
func NewHandler(s store.Store, pool *notification.WorkerPool, webpushOptions *webpush.Options, actingUserID int64) *Handler {
	return &Handler{
		store:        s,
		pool:         pool,
		webpush:      webpushOptions,
		actingUserID: actingUserID,
	}
}

// idParam parses the :id path parameter, aborting with 400 on garbage.
func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// storeError translates store failures into HTTP responses: ErrNotFound maps
// to 404, anything else is a 500.
func storeError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
