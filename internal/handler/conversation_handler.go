package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/black940514/chatbot-project/internal/service"
)

// ConversationHandler 는 대화 히스토리 관련 API 요청을 처리한다.
type ConversationHandler struct {
	service service.ConversationService
}

// NewConversationHandler 는 ConversationHandler 를 생성한다.
func NewConversationHandler(service service.ConversationService) *ConversationHandler {
	return &ConversationHandler{service: service}
}

// GetHistory 는 세션의 대화 히스토리를 반환한다.
func (h *ConversationHandler) GetHistory(c *gin.Context) {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "session_id 는 필수입니다",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    h.service.GetHistory(sessionID),
	})
}

// ClearHistory 는 세션을 유지한 채 히스토리만 비운다.
func (h *ConversationHandler) ClearHistory(c *gin.Context) {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "session_id 는 필수입니다",
			"data":    nil,
		})
		return
	}

	h.service.ClearHistory(sessionID)
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    nil,
	})
}

// DeleteSession 은 세션을 완전히 제거한다.
func (h *ConversationHandler) DeleteSession(c *gin.Context) {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "session_id 는 필수입니다",
			"data":    nil,
		})
		return
	}

	h.service.DeleteSession(sessionID)
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    nil,
	})
}
