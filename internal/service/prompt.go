package service

import (
	"fmt"
	"strings"

	"github.com/black940514/chatbot-project/internal/config"
	"github.com/black940514/chatbot-project/internal/model"
)

// defaultSystemPrompt 는 설정에 규칙이 없을 때 쓰는 기본 시스템 프롬프트다.
const defaultSystemPrompt = `당신은 네이버 스마트스토어 FAQ를 기반으로 하는 챗봇입니다.
스마트스토어 관련 질문에 정확하고 친절하게 답변해 주세요.
스마트스토어와 관련 없는 질문에는 답변하지 말고, 스마트스토어 관련 질문을 해달라고 안내해 주세요.
답변은 간결하고 명확하게 제공하되, 필요한 정보를 모두 포함해야 합니다.
답변 끝에는 추가 질문이나 도움이 필요한지 물어보세요.`

// outOfDomainResponse 는 도메인 밖 질문에 대한 고정 안내문이다.
const outOfDomainResponse = `죄송합니다. 저는 스마트 스토어 FAQ를 위한 챗봇입니다. 스마트 스토어에 대한 질문을 부탁드립니다.
예를 들어 아래와 같은 질문은 도와드릴 수 있어요:
- 스마트스토어 판매자 등록 절차는?
- 배송비는 누가 부담하나요?`

// systemPrompt 는 설정의 규칙이 있으면 그것을, 없으면 기본값을 쓴다.
func systemPrompt() string {
	if rules := strings.TrimSpace(config.Conf.LLM.Prompt.Rules); rules != "" {
		return rules
	}
	return defaultSystemPrompt
}

// buildQAPrompt 는 검색된 FAQ 항목을 근거 자료로 붙인 질의 프롬프트를 만든다.
func buildQAPrompt(question string, results []model.RetrievalResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "질문: %s\n\n", question)
	b.WriteString("다음은 관련 FAQ 정보입니다:\n\n")
	for i, r := range results {
		fmt.Fprintf(&b, "[FAQ %d]\n", i+1)
		fmt.Fprintf(&b, "질문: %s\n", r.Question)
		fmt.Fprintf(&b, "답변: %s\n\n", r.Answer)
	}
	b.WriteString("위 FAQ 정보를 참고해서 질문에 답해주세요. 관련 내용이 없으면 모른다고 말하고 스마트스토어 고객센터를 안내해 주세요.")
	return b.String()
}

// buildFollowUpPrompt 는 직전 문답을 바탕으로 후속 질문 생성을 요청하는
// 프롬프트를 만든다. 출력 형식은 JSON 배열로 고정한다.
func buildFollowUpPrompt(question, answer string, n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "사용자 질문: %s\n", question)
	fmt.Fprintf(&b, "답변: %s\n\n", answer)
	fmt.Fprintf(&b, "위 대화를 바탕으로 사용자가 궁금해할만한 다른 내용 %d개를 만들어 주세요.\n", n)
	b.WriteString("스마트스토어 관련 질문이어야 하며, 답변과 연관된 주제로 해 주세요.\n")
	b.WriteString(`형식: ["질문1", "질문2"]`)
	return b.String()
}
