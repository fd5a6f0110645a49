package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-management-backend/internal/store"
)

// brigadeResponse mirrors the wire shape, including the derived memberCount.
type brigadeResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Members     []string `json:"members"`
	MemberCount int      `json:"memberCount"`
}

func TestBrigadeLifecycle(t *testing.T) {
	router := newTestRouter(store.NewMemStore())

	w := doJSON(t, router, http.MethodPost, "/api/brigades", gin.H{
		"name":    "Alpha",
		"members": []string{"A", "B", "C"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var brigade brigadeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &brigade))
	assert.Equal(t, int64(1), brigade.ID)
	assert.Equal(t, "Alpha", brigade.Name)
	assert.Equal(t, 3, brigade.MemberCount)

	// shrinking members shrinks the derived count
	w = doJSON(t, router, http.MethodPatch, "/api/brigades/1", gin.H{"members": []string{"A"}})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &brigade))
	assert.Equal(t, 1, brigade.MemberCount)
	assert.Equal(t, []string{"A"}, brigade.Members)
	assert.Equal(t, "Alpha", brigade.Name)

	w = doJSON(t, router, http.MethodDelete, "/api/brigades/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, router, http.MethodDelete, "/api/brigades/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateBrigadeValidation(t *testing.T) {
	router := newTestRouter(store.NewMemStore())

	w := doJSON(t, router, http.MethodPost, "/api/brigades", gin.H{"members": []string{"A"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBrigadeWithoutMembers(t *testing.T) {
	router := newTestRouter(store.NewMemStore())

	w := doJSON(t, router, http.MethodPost, "/api/brigades", gin.H{"name": "Beta"})
	require.Equal(t, http.StatusOK, w.Code)

	var brigade brigadeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &brigade))
	assert.Equal(t, 0, brigade.MemberCount)
	assert.NotNil(t, brigade.Members)
	assert.Empty(t, brigade.Members)
}
