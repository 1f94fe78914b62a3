// Package model 은 애플리케이션의 데이터 모델을 정의한다.
package model

import "time"

// 메시지 역할 상수. user 또는 assistant 만 사용한다.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage 는 세션 히스토리의 단일 메시지다.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// LLMMessage 는 생성 모델 입력 포맷으로, 타임스탬프를 제외한
// role/content 쌍이다.
type LLMMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SessionSnapshot 은 세션 하나의 영속화 레코드다.
// 타임스탬프는 JSON 직렬화 시 RFC3339(ISO-8601) 로 기록된다.
type SessionSnapshot struct {
	SessionID string        `json:"session_id"`
	Messages  []ChatMessage `json:"messages"`
}
