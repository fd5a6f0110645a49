package mw

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
)

func newCachedRouter() (*gin.Engine, *int) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	store := cache.New(time.Minute, 2*time.Minute)
	r.Use(Cache(store, time.Minute))

	hits := 0
	r.GET("/items", func(c *gin.Context) {
		hits++
		c.String(http.StatusOK, fmt.Sprintf("generation %d", hits))
	})
	r.POST("/items", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.POST("/broken", func(c *gin.Context) {
		c.Status(http.StatusBadRequest)
	})
	return r, &hits
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func post(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestCacheServesRepeatedGets(t *testing.T) {
	r, hits := newCachedRouter()

	first := get(r, "/items")
	second := get(r, "/items")

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, *hits, "second GET should be served from cache")
}

func TestCacheFlushedByMutation(t *testing.T) {
	r, hits := newCachedRouter()

	get(r, "/items")
	post(r, "/items")
	fresh := get(r, "/items")

	assert.Equal(t, 2, *hits, "GET after a successful mutation should miss the cache")
	assert.Equal(t, "generation 2", fresh.Body.String())
}

func TestCacheKeptOnFailedMutation(t *testing.T) {
	r, hits := newCachedRouter()

	get(r, "/items")
	post(r, "/broken")
	get(r, "/items")

	assert.Equal(t, 1, *hits, "a failed mutation should not flush the cache")
}
