package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/havenline/vent-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openConversation drives the request/accept flow over HTTP.
func (s *testServer) openConversation(t *testing.T, senderID, receiverID, postID string) string {
	t.Helper()

	w, created := s.do(t, http.MethodPost, "/api/v1/message-requests", senderID, "", map[string]interface{}{
		"receiver_id":     receiverID,
		"post_id":         postID,
		"initial_message": "first words",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	requestID := dataMap(t, created)["id"].(string)

	w, response := s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/message-requests/%s/respond", requestID), receiverID, "", map[string]interface{}{"action": "accept"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return dataMap(t, response)["conversation_id"].(string)
}

func setupConversationServer(t *testing.T) (*testServer, string) {
	t.Helper()
	s := setupTestServer(t)
	s.seedUser(t, "alice", "Alice", models.RoleUser)
	s.seedUser(t, "bob", "Bob", models.RoleUser)
	s.seedUser(t, "mallory", "Mallory", models.RoleUser)
	s.seedVentPost(t, "vent-1", "bob")
	return s, s.openConversation(t, "alice", "bob", "vent-1")
}

func TestSendMessage(t *testing.T) {
	s, conversationID := setupConversationServer(t)
	path := fmt.Sprintf("/api/v1/conversations/%s/messages", conversationID)

	tests := []struct {
		name           string
		userID         string
		path           string
		body           map[string]interface{}
		expectedStatus int
		expectedError  string
	}{
		{name: "Participant sends a message", userID: "bob", path: path, body: map[string]interface{}{"content": "thanks"}, expectedStatus: http.StatusCreated},
		{name: "Outsider is forbidden", userID: "mallory", path: path, body: map[string]interface{}{"content": "hi"}, expectedStatus: http.StatusForbidden, expectedError: "NOT_A_PARTICIPANT"},
		{name: "Unknown conversation", userID: "bob", path: "/api/v1/conversations/missing/messages", body: map[string]interface{}{"content": "hi"}, expectedStatus: http.StatusNotFound, expectedError: "CONVERSATION_NOT_FOUND"},
		{name: "Missing content", userID: "bob", path: path, body: map[string]interface{}{}, expectedStatus: http.StatusBadRequest, expectedError: "VALIDATION_ERROR"},
		{name: "Blank content", userID: "bob", path: path, body: map[string]interface{}{"content": "   "}, expectedStatus: http.StatusBadRequest, expectedError: "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, response := s.do(t, http.MethodPost, tt.path, tt.userID, "", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorCode(response))
				return
			}
			data := dataMap(t, response)
			assert.Equal(t, "sent", data["status"])
			assert.Equal(t, tt.userID, data["sender_id"])
		})
	}
}

func TestListMessagesMarksRead(t *testing.T) {
	s, conversationID := setupConversationServer(t)
	path := fmt.Sprintf("/api/v1/conversations/%s/messages", conversationID)

	w, response := s.do(t, http.MethodGet, path, "bob", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	messages := dataList(t, response)
	require.Len(t, messages, 1)
	first := messages[0].(map[string]interface{})
	assert.Equal(t, "first words", first["content"])
	assert.Equal(t, "read", first["status"])

	w, response = s.do(t, http.MethodGet, path, "mallory", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "NOT_A_PARTICIPANT", errorCode(response))
}

func TestListConversationsEndpoint(t *testing.T) {
	s, conversationID := setupConversationServer(t)

	w, response := s.do(t, http.MethodGet, "/api/v1/conversations", "bob", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := dataList(t, response)
	require.Len(t, list, 1)

	summary := list[0].(map[string]interface{})
	assert.Equal(t, conversationID, summary["id"])
	assert.Equal(t, "alice", summary["other_user_id"])
	assert.Equal(t, "Alice", summary["other_user_name"])
	assert.Equal(t, float64(1), summary["unread_count"])
	assert.NotNil(t, summary["last_message"])
}

func TestUpdateMessageStatusEndpoint(t *testing.T) {
	s, conversationID := setupConversationServer(t)

	var message models.Message
	require.NoError(t, s.db.Where("conversation_id = ?", conversationID).First(&message).Error)
	path := fmt.Sprintf("/api/v1/messages/%d", message.ID)

	w, response := s.do(t, http.MethodPatch, path, "alice", "", map[string]interface{}{"status": "read"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "CANNOT_UPDATE_OWN_MESSAGE", errorCode(response))

	w, response = s.do(t, http.MethodPatch, path, "bob", "", map[string]interface{}{"status": "shouted"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_STATUS", errorCode(response))

	w, response = s.do(t, http.MethodPatch, path, "bob", "", map[string]interface{}{"status": "delivered"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "delivered", dataMap(t, response)["status"])

	w, response = s.do(t, http.MethodPatch, path, "bob", "", map[string]interface{}{"status": "sent"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", errorCode(response))

	w, response = s.do(t, http.MethodPatch, "/api/v1/messages/abc", "bob", "", map[string]interface{}{"status": "read"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "MESSAGE_NOT_FOUND", errorCode(response))

	w, response = s.do(t, http.MethodPatch, "/api/v1/messages/99999", "bob", "", map[string]interface{}{"status": "read"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "MESSAGE_NOT_FOUND", errorCode(response))
}
