package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/black940514/chatbot-project/pkg/llm"
)

// fakeLLM 은 고정 응답을 돌려주는 LLM 클라이언트 페이크다.
type fakeLLM struct {
	completion string
	err        error
	streamed   []string
	lastMsgs   []llm.Message
}

func (f *fakeLLM) Complete(_ context.Context, messages []llm.Message, _ *llm.GenerationParams) (string, error) {
	f.lastMsgs = messages
	return f.completion, f.err
}

func (f *fakeLLM) StreamChatMessages(_ context.Context, messages []llm.Message, _ *llm.GenerationParams, writer llm.MessageWriter) error {
	f.lastMsgs = messages
	if f.err != nil {
		return f.err
	}
	for _, chunk := range f.streamed {
		if err := writer.WriteMessage(1, []byte(chunk)); err != nil {
			return err
		}
	}
	return nil
}

func TestFollowUpService_ParsesCleanJSONArray(t *testing.T) {
	client := &fakeLLM{completion: `["배송 조회는 어떻게 하나요?", "반품 절차도 알려드릴까요?"]`}
	svc := NewFollowUpService(client, 2)

	got := svc.Generate(context.Background(), "배송비는 누가 부담하나요?", "판매자 설정에 따라 다릅니다.")
	assert.False(t, got.UsedDefault)
	assert.Equal(t, []string{"배송 조회는 어떻게 하나요?", "반품 절차도 알려드릴까요?"}, got.Questions)
}

func TestFollowUpService_ExtractsArrayFromSurroundingText(t *testing.T) {
	client := &fakeLLM{completion: "다음과 같은 후속 질문을 제안합니다.\n[\"정산 주기는 어떻게 되나요?\", \"수수료율이 궁금하신가요?\"]\n참고하세요."}
	svc := NewFollowUpService(client, 2)

	got := svc.Generate(context.Background(), "정산은 언제 되나요?", "영업일 기준 2일 후 정산됩니다.")
	assert.False(t, got.UsedDefault)
	require.Len(t, got.Questions, 2)
	assert.Equal(t, "정산 주기는 어떻게 되나요?", got.Questions[0])
}

func TestFollowUpService_TruncatesToRequestedCount(t *testing.T) {
	client := &fakeLLM{completion: `["질문1", "질문2", "질문3", "질문4"]`}
	svc := NewFollowUpService(client, 2)

	got := svc.Generate(context.Background(), "질문", "답변")
	assert.Equal(t, []string{"질문1", "질문2"}, got.Questions)
}

func TestFollowUpService_MalformedOutputFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name       string
		completion string
	}{
		{name: "배열 없음", completion: "후속 질문을 만들 수 없습니다."},
		{name: "깨진 JSON", completion: `["질문1", "질문2"`},
		{name: "빈 배열", completion: `[]`},
		{name: "빈 응답", completion: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFollowUpService(&fakeLLM{completion: tt.completion}, 2)
			got := svc.Generate(context.Background(), "질문", "답변")
			assert.True(t, got.UsedDefault)
			assert.Equal(t, defaultFollowUps, got.Questions)
		})
	}
}

func TestFollowUpService_LLMErrorIsMasked(t *testing.T) {
	svc := NewFollowUpService(&fakeLLM{err: errors.New("llm unavailable")}, 2)

	// 생성 실패는 호출자에게 에러로 드러나지 않는다.
	got := svc.Generate(context.Background(), "질문", "답변")
	assert.True(t, got.UsedDefault)
	assert.Equal(t, defaultFollowUps, got.Questions)
}

func TestFollowUpService_PromptCarriesDialogue(t *testing.T) {
	client := &fakeLLM{completion: `["추가 질문이 있으신가요?"]`}
	svc := NewFollowUpService(client, 2)

	svc.Generate(context.Background(), "등록 절차가 궁금해요", "사업자 등록증이 필요합니다.")
	require.Len(t, client.lastMsgs, 2)
	assert.Contains(t, client.lastMsgs[1].Content, "등록 절차가 궁금해요")
	assert.Contains(t, client.lastMsgs[1].Content, "사업자 등록증이 필요합니다.")
}
