package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationEndpoints(t *testing.T) {
	s, _ := setupConversationServer(t)

	// bob was notified of the request, alice of the acceptance.
	w, response := s.do(t, http.MethodGet, "/api/v1/notifications/unread-count", "bob", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), dataMap(t, response)["unread_count"])

	w, response = s.do(t, http.MethodGet, "/api/v1/notifications?is_read=false", "bob", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := dataList(t, response)
	require.Len(t, list, 1)
	notification := list[0].(map[string]interface{})
	assert.Equal(t, "post", notification["related_content_type"])
	assert.Equal(t, "vent-1", notification["related_content_id"])
	id := notification["id"].(string)

	w, response = s.do(t, http.MethodPatch, "/api/v1/notifications/"+id+"/read", "alice", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOTIFICATION_NOT_FOUND", errorCode(response))

	w, response = s.do(t, http.MethodPatch, "/api/v1/notifications/"+id+"/read", "bob", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, dataMap(t, response)["is_read"])

	w, response = s.do(t, http.MethodPatch, "/api/v1/notifications/read-all", "alice", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), dataMap(t, response)["marked_read"])

	w, _ = s.do(t, http.MethodDelete, "/api/v1/notifications/"+id, "bob", "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, response = s.do(t, http.MethodGet, "/api/v1/notifications?limit=500", "bob", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(response))
}
