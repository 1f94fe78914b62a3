package service

import (
	"github.com/black940514/chatbot-project/internal/model"
	"github.com/black940514/chatbot-project/internal/repository"
)

// ConversationService 는 대화 히스토리 관련 비즈니스 로직 인터페이스다.
type ConversationService interface {
	GetHistory(sessionID string) []model.ChatMessage
	ClearHistory(sessionID string)
	DeleteSession(sessionID string)
}

type conversationService struct {
	sessions *repository.SessionStore
}

// NewConversationService 는 ConversationService 를 생성한다.
func NewConversationService(sessions *repository.SessionStore) ConversationService {
	return &conversationService{sessions: sessions}
}

// GetHistory 는 세션의 전체 대화 히스토리를 반환한다.
func (s *conversationService) GetHistory(sessionID string) []model.ChatMessage {
	return s.sessions.History(sessionID)
}

// ClearHistory 는 세션을 유지한 채 히스토리만 비운다.
func (s *conversationService) ClearHistory(sessionID string) {
	s.sessions.Clear(sessionID)
}

// DeleteSession 은 세션을 제거한다.
func (s *conversationService) DeleteSession(sessionID string) {
	s.sessions.Delete(sessionID)
}
