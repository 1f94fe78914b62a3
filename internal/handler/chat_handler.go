// Package handler 는 HTTP 요청을 처리하는 컨트롤러 계층이다.
package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/black940514/chatbot-project/internal/service"
	"github.com/black940514/chatbot-project/pkg/log"
	"github.com/black940514/chatbot-project/pkg/token"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 모든 오리진 허용
	},
}

// ChatHandler 는 채팅 REST 요청과 웹소켓 연결을 처리한다.
type ChatHandler struct {
	chatService   service.ChatService
	ticketManager *token.TicketManager
	// 연결별 정지 플래그
	stopFlags sync.Map // key: 연결 포인터 문자열, value: bool
}

// NewChatHandler 는 ChatHandler 를 생성한다.
func NewChatHandler(chatService service.ChatService, ticketManager *token.TicketManager) *ChatHandler {
	return &ChatHandler{
		chatService:   chatService,
		ticketManager: ticketManager,
	}
}

// chatRequest 는 단건 채팅 요청 본문이다.
type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" binding:"required"`
}

// Chat 은 단건 질의응답 요청을 처리한다.
// session_id 가 없으면 새 세션을 발급한다.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "message 필드는 필수입니다",
			"data":    nil,
		})
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	answer, err := h.chatService.Answer(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		log.Errorf("채팅 응답 생성 실패 (session=%s): %v", req.SessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "답변 생성에 실패했습니다. 잠시 후 다시 시도해 주세요.",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    answer,
	})
}

// IssueTicket 은 웹소켓 접속용 단기 티켓을 발급한다.
func (h *ChatHandler) IssueTicket(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ticket, err := h.ticketManager.IssueTicket(sessionID)
	if err != nil {
		log.Errorf("웹소켓 티켓 발급 실패: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "티켓 발급에 실패했습니다",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    gin.H{"ticket": ticket, "session_id": sessionID},
	})
}

// Handle 은 웹소켓 연결 하나를 처리한다. 티켓의 세션으로 대화를 잇고,
// {"type":"stop"} 제어 메시지로 진행 중인 스트림을 중단할 수 있다.
func (h *ChatHandler) Handle(c *gin.Context) {
	claims, err := h.ticketManager.VerifyTicket(c.Param("ticket"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    http.StatusUnauthorized,
			"message": "유효하지 않은 티켓입니다",
			"data":    nil,
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Errorf("웹소켓 업그레이드 실패: %v", err)
		return
	}
	defer conn.Close()

	sessionID := claims.SessionID
	log.Infof("웹소켓 연결 수립, session: %s", sessionID)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("웹소켓 메시지 수신 실패: %v", err)
			break
		}

		// JSON 정지 지시: {"type":"stop"}
		if len(message) > 0 && message[0] == '{' {
			var ctrl map[string]interface{}
			if err := json.Unmarshal(message, &ctrl); err == nil {
				if t, ok := ctrl["type"].(string); ok && t == "stop" {
					h.stopFlags.Store(connKey(conn), true)
					resp := map[string]interface{}{
						"type":      "stop",
						"message":   "응답이 중단되었습니다",
						"timestamp": time.Now().UnixMilli(),
						"date":      time.Now().Format("2006-01-02T15:04:05"),
					}
					b, _ := json.Marshal(resp)
					_ = conn.WriteMessage(websocket.TextMessage, b)
					continue
				}
			}
		}

		shouldStop := func() bool {
			v, ok := h.stopFlags.Load(connKey(conn))
			return ok && v.(bool)
		}
		// 직전 턴의 플래그 제거
		h.stopFlags.Delete(connKey(conn))

		if err := h.chatService.StreamResponse(c.Request.Context(), sessionID, string(message), conn, shouldStop); err != nil {
			log.Errorf("스트리밍 응답 처리 실패 (session=%s): %v", sessionID, err)
			errResp := map[string]string{"error": "답변 생성에 실패했습니다. 잠시 후 다시 시도해 주세요."}
			b, _ := json.Marshal(errResp)
			_ = conn.WriteMessage(websocket.TextMessage, b)
			resp := map[string]interface{}{
				"type":      "completion",
				"status":    "finished",
				"message":   "응답이 완료되었습니다",
				"timestamp": time.Now().UnixMilli(),
				"date":      time.Now().Format("2006-01-02T15:04:05"),
			}
			cb, _ := json.Marshal(resp)
			_ = conn.WriteMessage(websocket.TextMessage, cb)
			break
		}
	}
}

func connKey(conn *websocket.Conn) string {
	return fmt.Sprintf("%p", conn)
}
