package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-management-backend/config"
	"fleet-management-backend/internal/store"
)

func TestSubscriptionLifecycle(t *testing.T) {
	router := newTestRouter(store.NewMemStore())

	w := doJSON(t, router, http.MethodPut, "/api/subscriptions", gin.H{
		"endpoint":            "https://push.example/1",
		"p256dh":              "key",
		"auth":                "auth",
		"subscribed_machines": []int64{1, 2},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/subscriptions?endpoint=https://push.example/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		SubscribedMachines []int64 `json:"subscribed_machines"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []int64{1, 2}, resp.SubscribedMachines)

	w = doJSON(t, router, http.MethodDelete, "/api/subscriptions", gin.H{"endpoint": "https://push.example/1"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/subscriptions?endpoint=https://push.example/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscriptionValidation(t *testing.T) {
	router := newTestRouter(store.NewMemStore())

	w := doJSON(t, router, http.MethodPut, "/api/subscriptions", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/subscriptions", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetVAPIDPublicKey(t *testing.T) {
	t.Run("unconfigured", func(t *testing.T) {
		router := newTestRouter(store.NewMemStore())
		w := doJSON(t, router, http.MethodGet, "/api/vapid_public_key", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("configured", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		router := NewRouter(store.NewMemStore(), nil, &webpush.Options{VAPIDPublicKey: "pub"}, config.ServerConfig{
			RateLimitPerSec: 1000,
			RateLimitBurst:  1000,
			CacheTTLSeconds: 60,
			ActingUserID:    1,
		})
		w := doJSON(t, router, http.MethodGet, "/api/vapid_public_key", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"public_key":"pub"}`, w.Body.String())
	})
}
