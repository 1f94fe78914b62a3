package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/black940514/chatbot-project/internal/model"
	"github.com/black940514/chatbot-project/internal/repository"
	"github.com/black940514/chatbot-project/pkg/llm"
	"github.com/black940514/chatbot-project/pkg/log"
)

// ChatAnswer 는 단건 채팅 응답이다.
type ChatAnswer struct {
	SessionID string                  `json:"session_id"`
	Answer    string                  `json:"answer"`
	InDomain  bool                    `json:"in_domain"`
	Sources   []model.RetrievalResult `json:"sources,omitempty"`
	FollowUps FollowUps               `json:"follow_ups"`
}

// ChatService 는 채팅 파이프라인의 오케스트레이션 인터페이스다.
type ChatService interface {
	Answer(ctx context.Context, sessionID, query string) (*ChatAnswer, error)
	StreamResponse(ctx context.Context, sessionID, query string, sink llm.MessageWriter, shouldStop func() bool) error
}

type chatService struct {
	classifier DomainClassifier
	retrieval  RetrievalService
	followUps  FollowUpService
	llmClient  llm.Client
	sessions   *repository.SessionStore
	topK       int
}

// NewChatService 는 ChatService 인스턴스를 생성한다.
func NewChatService(
	classifier DomainClassifier,
	retrieval RetrievalService,
	followUps FollowUpService,
	llmClient llm.Client,
	sessions *repository.SessionStore,
	topK int,
) ChatService {
	if topK <= 0 {
		topK = 3
	}
	return &chatService{
		classifier: classifier,
		retrieval:  retrieval,
		followUps:  followUps,
		llmClient:  llmClient,
		sessions:   sessions,
		topK:       topK,
	}
}

// Answer 는 질문을 분류하고, 도메인 안이면 검색 근거와 히스토리를 붙여
// 답변을 생성한다. 도메인 안 질문의 검색 실패는 빈 근거로 때우지 않고
// 에러로 올린다.
func (s *chatService) Answer(ctx context.Context, sessionID, query string) (*ChatAnswer, error) {
	inDomain, err := s.classifier.IsDomainQuestion(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("도메인 판별 실패: %w", err)
	}

	if !inDomain {
		answer := outOfDomainResponse
		s.saveTurn(sessionID, query, answer)
		return &ChatAnswer{
			SessionID: sessionID,
			Answer:    answer,
			InDomain:  false,
			FollowUps: FollowUps{Questions: defaultFollowUps, UsedDefault: true},
		}, nil
	}

	results, err := s.retrieval.Retrieve(ctx, query, s.topK)
	if err != nil {
		return nil, fmt.Errorf("FAQ 검색 실패: %w", err)
	}

	answer, err := s.llmClient.Complete(ctx, s.composeMessages(sessionID, query, results), nil)
	if err != nil {
		return nil, fmt.Errorf("답변 생성 실패: %w", err)
	}

	s.saveTurn(sessionID, query, answer)
	return &ChatAnswer{
		SessionID: sessionID,
		Answer:    answer,
		InDomain:  true,
		Sources:   results,
		FollowUps: s.followUps.Generate(ctx, query, answer),
	}, nil
}

// StreamResponse 는 같은 파이프라인을 웹소켓 스트리밍으로 수행한다.
// sink 로 분할 전송한 뒤 후속 질문과 완료 통지를 내려보낸다.
func (s *chatService) StreamResponse(ctx context.Context, sessionID, query string, sink llm.MessageWriter, shouldStop func() bool) error {
	inDomain, err := s.classifier.IsDomainQuestion(ctx, query)
	if err != nil {
		return fmt.Errorf("도메인 판별 실패: %w", err)
	}

	answerBuilder := &strings.Builder{}
	interceptor := &wsWriterInterceptor{sink: sink, writer: answerBuilder, shouldStop: shouldStop}

	if !inDomain {
		if err := interceptor.WriteMessage(websocket.TextMessage, []byte(outOfDomainResponse)); err != nil {
			return err
		}
		sendFollowUps(sink, FollowUps{Questions: defaultFollowUps, UsedDefault: true})
		sendCompletion(sink)
		s.saveTurn(sessionID, query, outOfDomainResponse)
		return nil
	}

	results, err := s.retrieval.Retrieve(ctx, query, s.topK)
	if err != nil {
		return fmt.Errorf("FAQ 검색 실패: %w", err)
	}

	if err := s.llmClient.StreamChatMessages(ctx, s.composeMessages(sessionID, query, results), nil, interceptor); err != nil {
		return err
	}

	fullAnswer := answerBuilder.String()
	sendFollowUps(sink, s.followUps.Generate(ctx, query, fullAnswer))
	sendCompletion(sink)

	if len(fullAnswer) > 0 {
		// 원 요청이 취소되어도 완성된 답변은 히스토리에 남긴다.
		s.saveTurn(sessionID, query, fullAnswer)
	}
	return nil
}

// composeMessages 는 system 프롬프트, 세션 히스토리, 근거가 붙은 질문을
// LLM 메시지 목록으로 조립한다.
func (s *chatService) composeMessages(sessionID, query string, results []model.RetrievalResult) []llm.Message {
	history := s.sessions.ContextForLLM(sessionID)
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: "system", Content: systemPrompt()})
	for _, m := range history {
		msgs = append(msgs, llm.Message{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, llm.Message{Role: model.RoleUser, Content: buildQAPrompt(query, results)})
	return msgs
}

// saveTurn 은 문답 한 쌍을 세션에 기록한다.
func (s *chatService) saveTurn(sessionID, query, answer string) {
	s.sessions.Append(sessionID, model.RoleUser, query)
	s.sessions.Append(sessionID, model.RoleAssistant, answer)
}

// wsWriterInterceptor 는 sink 로 나가는 분할 응답을 가로채 전체 답변을
// 누적하고, 분할 본문을 {"chunk":"..."} JSON 으로 감싼다.
type wsWriterInterceptor struct {
	sink       llm.MessageWriter
	writer     *strings.Builder
	shouldStop func() bool
}

// WriteMessage 는 llm.MessageWriter 를 만족한다.
func (w *wsWriterInterceptor) WriteMessage(messageType int, data []byte) error {
	if w.shouldStop != nil && w.shouldStop() {
		// 정지 플래그가 서면 전송을 건너뛴다
		return nil
	}
	w.writer.Write(data)
	payload := map[string]string{"chunk": string(data)}
	b, _ := json.Marshal(payload)
	return w.sink.WriteMessage(messageType, b)
}

// sendFollowUps 는 후속 질문 목록을 내려보낸다.
func sendFollowUps(sink llm.MessageWriter, followUps FollowUps) {
	notif := map[string]interface{}{
		"type":         "follow_ups",
		"questions":    followUps.Questions,
		"used_default": followUps.UsedDefault,
	}
	b, _ := json.Marshal(notif)
	if err := sink.WriteMessage(websocket.TextMessage, b); err != nil {
		log.Errorf("후속 질문 전송 실패: %v", err)
	}
}

// sendCompletion 은 완료 통지 JSON 을 내려보낸다.
func sendCompletion(sink llm.MessageWriter) {
	notif := map[string]interface{}{
		"type":      "completion",
		"status":    "finished",
		"message":   "응답이 완료되었습니다",
		"timestamp": time.Now().UnixMilli(),
		"date":      time.Now().Format("2006-01-02T15:04:05"),
	}
	b, _ := json.Marshal(notif)
	_ = sink.WriteMessage(websocket.TextMessage, b)
}
