package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"fleet-management-backend/config"
	"fleet-management-backend/internal/mw"
	"fleet-management-backend/internal/notification"
	"fleet-management-backend/internal/store"
)

// NewRouter creates and configures a new Gin router. pool and webpushOptions
// may be nil when web push is not configured.
func NewRouter(s store.Store, pool *notification.WorkerPool, webpushOptions *webpush.Options, cfg config.ServerConfig) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, pool, webpushOptions, cfg.ActingUserID)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(ttl, 2*ttl)
	// Applied to the whole group so mutations flush cached GET responses.
	caching := mw.Cache(cacheStore, ttl)

	api := r.Group("/api")
	api.Use(rateLimiter, caching)
	{
		api.GET("/machines", handler.ListMachines)
		api.POST("/machines", handler.CreateMachine)
		api.PATCH("/machines/:id", handler.UpdateMachine)
		api.DELETE("/machines/:id", handler.DeleteMachine)
		api.PATCH("/machines/:id/status", handler.UpdateMachineStatus)
		api.PATCH("/machines/:id/brigade", handler.UpdateMachineBrigade)
		api.GET("/machines/:id/history", handler.GetMachineHistory)

		api.GET("/brigades", handler.ListBrigades)
		api.POST("/brigades", handler.CreateBrigade)
		api.PATCH("/brigades/:id", handler.UpdateBrigade)
		api.DELETE("/brigades/:id", handler.DeleteBrigade)

		api.GET("/workers", handler.ListWorkers)
		api.POST("/workers", handler.CreateWorker)
		api.PATCH("/workers/:id", handler.UpdateWorker)
		api.DELETE("/workers/:id", handler.DeleteWorker)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
