package service

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/black940514/chatbot-project/pkg/llm"
	"github.com/black940514/chatbot-project/pkg/log"
)

// defaultFollowUps 는 생성 실패 시 쓰는 고정 후속 질문이다.
var defaultFollowUps = []string{
	"다른 도움이 필요하신가요?",
	"더 궁금한 점이 있으신가요?",
}

// reJSONArray 는 응답 본문에서 첫 JSON 배열을 추출한다.
var reJSONArray = regexp.MustCompile(`(?s)\[.*\]`)

// FollowUps 는 후속 질문 생성 결과다. UsedDefault 는 생성이 실패해
// 고정 질문으로 대체되었음을 나타낸다.
type FollowUps struct {
	Questions   []string `json:"questions"`
	UsedDefault bool     `json:"used_default"`
}

// FollowUpService 는 직전 문답 기반 후속 질문 생성을 담당한다.
type FollowUpService interface {
	Generate(ctx context.Context, question, answer string) FollowUps
}

type followUpService struct {
	llmClient llm.Client
	count     int
}

// NewFollowUpService 는 FollowUpService 인스턴스를 생성한다.
func NewFollowUpService(llmClient llm.Client, count int) FollowUpService {
	if count <= 0 {
		count = 2
	}
	return &followUpService{llmClient: llmClient, count: count}
}

// Generate 는 후속 질문을 만든다. 생성이나 파싱이 실패해도 에러를
// 올리지 않고 고정 질문으로 대체한다.
func (s *followUpService) Generate(ctx context.Context, question, answer string) FollowUps {
	messages := []llm.Message{
		{Role: "system", Content: "You are a helpful QnA assistant that generates follow-up questions in Korean."},
		{Role: "user", Content: buildFollowUpPrompt(question, answer, s.count)},
	}

	content, err := s.llmClient.Complete(ctx, messages, nil)
	if err != nil {
		log.Errorf("후속 질문 생성 실패: %v", err)
		return FollowUps{Questions: defaultFollowUps, UsedDefault: true}
	}

	questions, ok := s.parseQuestions(content)
	if !ok {
		log.Warnf("후속 질문 응답 파싱 실패, 기본 질문으로 대체: %q", content)
		return FollowUps{Questions: defaultFollowUps, UsedDefault: true}
	}
	return FollowUps{Questions: questions}
}

// parseQuestions 는 응답에서 JSON 배열을 찾아 최대 count 개를 돌려준다.
func (s *followUpService) parseQuestions(content string) ([]string, bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "[") {
		match := reJSONArray.FindString(content)
		if match == "" {
			return nil, false
		}
		content = match
	}

	var questions []string
	if err := json.Unmarshal([]byte(content), &questions); err != nil {
		return nil, false
	}
	if len(questions) == 0 {
		return nil, false
	}
	if len(questions) > s.count {
		questions = questions[:s.count]
	}
	return questions, true
}
