// Package repository 는 데이터 접근 계층을 제공한다.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/black940514/chatbot-project/internal/model"
	"github.com/black940514/chatbot-project/pkg/log"
)

// snapshotKey 는 전체 세션 스냅샷이 저장되는 Redis 해시 키다.
const snapshotKey = "faq:sessions:snapshot"

// session 은 세션 하나의 상태다. mu 가 messages 에 대한
// append/trim 읽기-수정-쓰기를 직렬화한다.
type session struct {
	mu       sync.Mutex
	messages []model.ChatMessage
	maxPairs int
}

// trimLocked 은 메시지 수가 2*maxPairs 를 넘으면 앞에서부터 버린다.
// 호출자는 mu 를 잡고 있어야 한다.
func (s *session) trimLocked() {
	limit := s.maxPairs * 2
	if len(s.messages) > limit {
		s.messages = s.messages[len(s.messages)-limit:]
	}
}

// SessionStore 는 세션별 대화 히스토리를 보관한다.
// 맵 자체는 RWMutex 로, 각 세션의 메시지는 세션별 뮤텍스로 보호되어
// 서로 다른 세션의 요청은 경합 없이 진행된다.
type SessionStore struct {
	mu              sync.RWMutex
	sessions        map[string]*session
	defaultMaxPairs int
	redisClient     *redis.Client
}

// NewSessionStore 는 SessionStore 를 생성한다.
// redisClient 가 nil 이면 스냅샷 영속화는 비활성화된다.
func NewSessionStore(defaultMaxPairs int, redisClient *redis.Client) *SessionStore {
	if defaultMaxPairs <= 0 {
		defaultMaxPairs = 5
	}
	return &SessionStore{
		sessions:        make(map[string]*session),
		defaultMaxPairs: defaultMaxPairs,
		redisClient:     redisClient,
	}
}

// getOrCreate 는 세션을 찾거나 지연 생성한다. maxPairs 는 생성 시에만
// 적용되고, 0 이하면 기본값을 쓴다.
func (st *SessionStore) getOrCreate(sessionID string, maxPairs int) *session {
	st.mu.RLock()
	s, ok := st.sessions[sessionID]
	st.mu.RUnlock()
	if ok {
		return s
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[sessionID]; ok {
		return s
	}
	if maxPairs <= 0 {
		maxPairs = st.defaultMaxPairs
	}
	s = &session{maxPairs: maxPairs}
	st.sessions[sessionID] = s
	return s
}

// GetOrCreate 는 세션이 없으면 기본 maxPairs 로 만든다.
func (st *SessionStore) GetOrCreate(sessionID string) {
	st.getOrCreate(sessionID, 0)
}

// GetOrCreateWithMaxPairs 는 세션 생성 시 maxPairs 를 오버라이드한다.
// 이미 있는 세션의 한도는 바꾸지 않는다.
func (st *SessionStore) GetOrCreateWithMaxPairs(sessionID string, maxPairs int) {
	st.getOrCreate(sessionID, maxPairs)
}

// Append 는 메시지를 추가하고 즉시 한도를 적용한다.
// 같은 세션에 대한 append/trim 은 세션 뮤텍스로 직렬화된다.
func (st *SessionStore) Append(sessionID, role, content string) {
	s := st.getOrCreate(sessionID, 0)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, model.ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	s.trimLocked()
}

// History 는 세션 전체 메시지의 사본을 반환한다.
func (st *SessionStore) History(sessionID string) []model.ChatMessage {
	s := st.getOrCreate(sessionID, 0)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// ContextForLLM 은 타임스탬프를 뺀 role/content 목록을 반환한다.
func (st *SessionStore) ContextForLLM(sessionID string) []model.LLMMessage {
	s := st.getOrCreate(sessionID, 0)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.LLMMessage, 0, len(s.messages))
	for _, m := range s.messages {
		out = append(out, model.LLMMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

// Clear 는 세션의 메시지를 비우되 세션 자체는 유지한다.
func (st *SessionStore) Clear(sessionID string) {
	st.mu.RLock()
	s, ok := st.sessions[sessionID]
	st.mu.RUnlock()
	if !ok {
		return
	}
	s.mu.Lock()
	s.messages = nil
	s.mu.Unlock()
}

// Delete 는 세션을 완전히 제거한다.
func (st *SessionStore) Delete(sessionID string) {
	st.mu.Lock()
	delete(st.sessions, sessionID)
	st.mu.Unlock()
}

// SaveSnapshot 은 모든 세션을 Redis 해시로 내보낸다.
// session_id 를 필드 키로, SessionSnapshot JSON 을 값으로 쓴다.
func (st *SessionStore) SaveSnapshot(ctx context.Context) error {
	if st.redisClient == nil {
		return nil
	}

	st.mu.RLock()
	snapshots := make(map[string]interface{}, len(st.sessions))
	for id, s := range st.sessions {
		s.mu.Lock()
		msgs := make([]model.ChatMessage, len(s.messages))
		copy(msgs, s.messages)
		s.mu.Unlock()

		data, err := json.Marshal(model.SessionSnapshot{SessionID: id, Messages: msgs})
		if err != nil {
			st.mu.RUnlock()
			return fmt.Errorf("세션 스냅샷 직렬화 실패: %w", err)
		}
		snapshots[id] = data
	}
	st.mu.RUnlock()

	if err := st.redisClient.Del(ctx, snapshotKey).Err(); err != nil {
		return fmt.Errorf("기존 스냅샷 삭제 실패: %w", err)
	}
	if len(snapshots) == 0 {
		return nil
	}
	if err := st.redisClient.HSet(ctx, snapshotKey, snapshots).Err(); err != nil {
		return fmt.Errorf("세션 스냅샷 저장 실패: %w", err)
	}
	log.Infof("[SessionStore] 세션 %d건 스냅샷 저장 완료", len(snapshots))
	return nil
}

// LoadSnapshot 은 Redis 스냅샷으로 메모리 상태를 통째로 교체한다.
// 병합하지 않는다.
func (st *SessionStore) LoadSnapshot(ctx context.Context) error {
	if st.redisClient == nil {
		return nil
	}

	entries, err := st.redisClient.HGetAll(ctx, snapshotKey).Result()
	if err != nil {
		return fmt.Errorf("세션 스냅샷 조회 실패: %w", err)
	}

	sessions := make(map[string]*session, len(entries))
	for id, raw := range entries {
		var snap model.SessionSnapshot
		if err := json.Unmarshal([]byte(raw), &snap); err != nil {
			return fmt.Errorf("세션 '%s' 스냅샷 파싱 실패: %w", id, err)
		}
		sessions[id] = &session{
			messages: snap.Messages,
			maxPairs: st.defaultMaxPairs,
		}
	}

	st.mu.Lock()
	st.sessions = sessions
	st.mu.Unlock()
	log.Infof("[SessionStore] 세션 %d건 스냅샷 복원 완료", len(sessions))
	return nil
}
