package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/black940514/chatbot-project/internal/model"
	"github.com/black940514/chatbot-project/internal/repository"
)

// fakeClassifier 는 고정 판정을 돌려주는 도메인 분류기 페이크다.
type fakeClassifier struct {
	inDomain bool
	err      error
}

func (f *fakeClassifier) IsDomainQuestion(_ context.Context, _ string) (bool, error) {
	return f.inDomain, f.err
}

// fakeRetrieval 은 고정 검색 결과를 돌려주는 페이크다.
type fakeRetrieval struct {
	results []model.RetrievalResult
	err     error
	calls   int
}

func (f *fakeRetrieval) Retrieve(_ context.Context, _ string, _ int) ([]model.RetrievalResult, error) {
	f.calls++
	return f.results, f.err
}

// fakeFollowUpService 는 고정 후속 질문을 돌려준다.
type fakeFollowUpService struct {
	result FollowUps
}

func (f *fakeFollowUpService) Generate(_ context.Context, _, _ string) FollowUps {
	return f.result
}

// memWriter 는 내려보낸 메시지를 모으는 sink 페이크다.
type memWriter struct {
	messages [][]byte
}

func (m *memWriter) WriteMessage(_ int, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)
	m.messages = append(m.messages, buf)
	return nil
}

func sampleResults() []model.RetrievalResult {
	return []model.RetrievalResult{
		{Question: "판매자 등록 서류", Answer: "사업자 등록증이 필요합니다.", Similarity: 0.82},
		{Question: "등록 처리 기간", Answer: "영업일 기준 2일 걸립니다.", Similarity: 0.74},
	}
}

func newTestChatService(classifier DomainClassifier, retrieval RetrievalService, llmClient *fakeLLM, sessions *repository.SessionStore) ChatService {
	return NewChatService(
		classifier,
		retrieval,
		&fakeFollowUpService{result: FollowUps{Questions: []string{"서류 목록을 더 알려드릴까요?"}}},
		llmClient,
		sessions,
		3,
	)
}

func TestChatService_AnswerInDomain(t *testing.T) {
	retrieval := &fakeRetrieval{results: sampleResults()}
	llmClient := &fakeLLM{completion: "사업자 등록증과 통신판매업 신고증이 필요합니다."}
	sessions := repository.NewSessionStore(5, nil)
	svc := newTestChatService(&fakeClassifier{inDomain: true}, retrieval, llmClient, sessions)

	got, err := svc.Answer(context.Background(), "s1", "판매자 등록에 필요한 서류가 뭔가요?")
	require.NoError(t, err)

	assert.True(t, got.InDomain)
	assert.Equal(t, "사업자 등록증과 통신판매업 신고증이 필요합니다.", got.Answer)
	assert.Len(t, got.Sources, 2)
	assert.Equal(t, []string{"서류 목록을 더 알려드릴까요?"}, got.FollowUps.Questions)

	// system + 근거 붙은 user 프롬프트로 호출되어야 한다.
	require.Len(t, llmClient.lastMsgs, 2)
	assert.Equal(t, "system", llmClient.lastMsgs[0].Role)
	assert.Contains(t, llmClient.lastMsgs[1].Content, "판매자 등록에 필요한 서류가 뭔가요?")
	assert.Contains(t, llmClient.lastMsgs[1].Content, "[FAQ 1]")
	assert.Contains(t, llmClient.lastMsgs[1].Content, "사업자 등록증이 필요합니다.")

	history := sessions.History("s1")
	require.Len(t, history, 2)
	assert.Equal(t, model.RoleUser, history[0].Role)
	assert.Equal(t, model.RoleAssistant, history[1].Role)
}

func TestChatService_AnswerOutOfDomain(t *testing.T) {
	retrieval := &fakeRetrieval{results: sampleResults()}
	sessions := repository.NewSessionStore(5, nil)
	svc := newTestChatService(&fakeClassifier{inDomain: false}, retrieval, &fakeLLM{}, sessions)

	got, err := svc.Answer(context.Background(), "s1", "오늘 저녁 메뉴 추천해줘")
	require.NoError(t, err)

	assert.False(t, got.InDomain)
	assert.Contains(t, got.Answer, "스마트 스토어 FAQ를 위한 챗봇입니다")
	assert.Empty(t, got.Sources)
	assert.True(t, got.FollowUps.UsedDefault)
	// 도메인 밖 질문은 검색을 수행하지 않는다.
	assert.Zero(t, retrieval.calls)
	assert.Len(t, sessions.History("s1"), 2)
}

func TestChatService_AnswerRetrievalFailureSurfaces(t *testing.T) {
	retrievalErr := errors.New("vector index down")
	sessions := repository.NewSessionStore(5, nil)
	svc := newTestChatService(&fakeClassifier{inDomain: true}, &fakeRetrieval{err: retrievalErr}, &fakeLLM{}, sessions)

	// 도메인 안 질문의 검색 실패는 빈 근거 답변으로 숨기지 않는다.
	_, err := svc.Answer(context.Background(), "s1", "환불 규정 알려주세요")
	require.Error(t, err)
	assert.ErrorIs(t, err, retrievalErr)
	assert.Empty(t, sessions.History("s1"))
}

func TestChatService_AnswerCarriesHistory(t *testing.T) {
	llmClient := &fakeLLM{completion: "추가 답변입니다."}
	sessions := repository.NewSessionStore(5, nil)
	sessions.Append("s1", model.RoleUser, "이전 질문")
	sessions.Append("s1", model.RoleAssistant, "이전 답변")
	svc := newTestChatService(&fakeClassifier{inDomain: true}, &fakeRetrieval{results: sampleResults()}, llmClient, sessions)

	_, err := svc.Answer(context.Background(), "s1", "그럼 다음 단계는요?")
	require.NoError(t, err)

	// system, 이전 문답 2건, 새 질문 순서.
	require.Len(t, llmClient.lastMsgs, 4)
	assert.Equal(t, "이전 질문", llmClient.lastMsgs[1].Content)
	assert.Equal(t, "이전 답변", llmClient.lastMsgs[2].Content)
}

func TestChatService_StreamResponseWrapsChunks(t *testing.T) {
	llmClient := &fakeLLM{streamed: []string{"사업자 등록증", "이 필요합니다."}}
	sessions := repository.NewSessionStore(5, nil)
	svc := newTestChatService(&fakeClassifier{inDomain: true}, &fakeRetrieval{results: sampleResults()}, llmClient, sessions)

	sink := &memWriter{}
	err := svc.StreamResponse(context.Background(), "s1", "등록 서류가 뭔가요?", sink, nil)
	require.NoError(t, err)

	// 분할 2건 + follow_ups + completion.
	require.Len(t, sink.messages, 4)
	var chunk map[string]string
	require.NoError(t, json.Unmarshal(sink.messages[0], &chunk))
	assert.Equal(t, "사업자 등록증", chunk["chunk"])

	var followUps map[string]interface{}
	require.NoError(t, json.Unmarshal(sink.messages[2], &followUps))
	assert.Equal(t, "follow_ups", followUps["type"])

	var completion map[string]interface{}
	require.NoError(t, json.Unmarshal(sink.messages[3], &completion))
	assert.Equal(t, "completion", completion["type"])

	history := sessions.History("s1")
	require.Len(t, history, 2)
	assert.Equal(t, "사업자 등록증이 필요합니다.", history[1].Content)
}

func TestChatService_StreamResponseOutOfDomain(t *testing.T) {
	retrieval := &fakeRetrieval{}
	sessions := repository.NewSessionStore(5, nil)
	svc := newTestChatService(&fakeClassifier{inDomain: false}, retrieval, &fakeLLM{}, sessions)

	sink := &memWriter{}
	err := svc.StreamResponse(context.Background(), "s1", "로또 번호 알려줘", sink, nil)
	require.NoError(t, err)

	require.Len(t, sink.messages, 3)
	var chunk map[string]string
	require.NoError(t, json.Unmarshal(sink.messages[0], &chunk))
	assert.Contains(t, chunk["chunk"], "스마트 스토어 FAQ를 위한 챗봇입니다")
	assert.Zero(t, retrieval.calls)
}

func TestChatService_StreamResponseStopFlagSuppressesDelivery(t *testing.T) {
	llmClient := &fakeLLM{streamed: []string{"전달되면 안 되는 분할"}}
	sessions := repository.NewSessionStore(5, nil)
	svc := newTestChatService(&fakeClassifier{inDomain: true}, &fakeRetrieval{results: sampleResults()}, llmClient, sessions)

	sink := &memWriter{}
	err := svc.StreamResponse(context.Background(), "s1", "질문", sink, func() bool { return true })
	require.NoError(t, err)

	// 분할은 억제되고 follow_ups/completion 통지만 내려간다.
	require.Len(t, sink.messages, 2)
	assert.Empty(t, sessions.History("s1"))
}

func TestChatService_StreamResponseClassifierErrorSurfaces(t *testing.T) {
	classifyErr := errors.New("classifier backend down")
	svc := newTestChatService(&fakeClassifier{err: classifyErr}, &fakeRetrieval{}, &fakeLLM{}, repository.NewSessionStore(5, nil))

	err := svc.StreamResponse(context.Background(), "s1", "질문", &memWriter{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, classifyErr)
}
