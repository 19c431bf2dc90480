package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/havenpath/service-placement/internal/domain"
)

func respondWith(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestRespondError_VersionConflictIsNotClassified(t *testing.T) {
	code, body := respondWith(t, domain.NewVersionConflictError("booking was modified by another transaction"))

	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "conflict: booking was modified by another transaction", body["error"])
	assert.NotContains(t, body, "conflict")
}

func TestRespondError_DateConflictIsClassified(t *testing.T) {
	code, body := respondWith(t, domain.NewDateConflictError("Conflicting Booking: 6b84b3a5"))

	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "These dates conflict with an existing booking", body["error"])

	conflict, ok := body["conflict"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "6b84b3a5", conflict["conflicting_entity_id"])
	assert.Equal(t, "booking", conflict["conflicting_entity_type"])
}

func TestRespondError_BlockedError(t *testing.T) {
	code, body := respondWith(t, domain.NewBlockedError("14 September 2026", "id-1", "PL-K4T7XQ"))

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "14 September 2026", body["blocking_date"])
	assert.Equal(t, "PL-K4T7XQ", body["blocking_entity_reference"])
}
