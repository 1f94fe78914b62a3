package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/black940514/chatbot-project/internal/model"
	"github.com/black940514/chatbot-project/internal/repository"
	"github.com/black940514/chatbot-project/internal/service"
)

func newConversationRouter(sessions *repository.SessionStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewConversationHandler(service.NewConversationService(sessions))
	r := gin.New()
	r.GET("/api/v1/conversations/:session_id", h.GetHistory)
	r.POST("/api/v1/conversations/:session_id/clear", h.ClearHistory)
	r.DELETE("/api/v1/conversations/:session_id", h.DeleteSession)
	return r
}

func TestConversationHandler_GetHistory(t *testing.T) {
	sessions := repository.NewSessionStore(5, nil)
	sessions.Append("s1", model.RoleUser, "환불은 어떻게 하나요?")
	sessions.Append("s1", model.RoleAssistant, "마이페이지에서 신청할 수 있습니다.")
	router := newConversationRouter(sessions)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/conversations/s1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []model.ChatMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "환불은 어떻게 하나요?", resp.Data[0].Content)
}

func TestConversationHandler_ClearKeepsSession(t *testing.T) {
	sessions := repository.NewSessionStore(5, nil)
	sessions.Append("s1", model.RoleUser, "질문")
	router := newConversationRouter(sessions)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/conversations/s1/clear", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sessions.History("s1"))
}

func TestConversationHandler_DeleteSession(t *testing.T) {
	sessions := repository.NewSessionStore(5, nil)
	sessions.Append("s1", model.RoleUser, "질문")
	router := newConversationRouter(sessions)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/conversations/s1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sessions.History("s1"))
}
