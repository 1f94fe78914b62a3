package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/black940514/chatbot-project/internal/model"
)

func TestCleanText(t *testing.T) {
	got := CleanText("<p>상품  등록은 판매자 센터에서</p>\n합니다.")
	assert.Equal(t, "상품 등록은 판매자 센터에서 합니다.", got)
}

func TestRemoveFAQBoilerplate(t *testing.T) {
	raw := "반품 절차는 판매자 센터에서 진행합니다. 위 도움말이 도움이 되었나요? 별점을 남겨주세요 도움말 닫기"
	got := RemoveFAQBoilerplate(raw)
	assert.Equal(t, "반품 절차는 판매자 센터에서 진행합니다.", got)
}

func TestPreprocessPairs(t *testing.T) {
	pairs := []model.QnAPair{
		{Question: "배송비는 누가 부담하나요?", Answer: "<b>판매자가</b> 설정한 배송 정책을 따릅니다."},
		{Question: "짧음", Answer: "정상적인 길이의 답변입니다."},                  // 질문 길이 미달
		{Question: "환불 기간은 얼마나 걸리나요?", Answer: "3일"},               // 답변 길이 미달
		{Question: "배송비는 누가 부담하나요?", Answer: "중복 질문이라 버려져야 하는 답변."}, // 중복
		{Question: "  정산 주기는 어떻게 되나요?  ", Answer: "정산은 구매 확정 후 영업일 기준 1일 뒤 진행됩니다."},
	}

	got := PreprocessPairs(pairs)
	assert.Len(t, got, 2)

	assert.Equal(t, "배송비는 누가 부담하나요?", got[0].Question)
	assert.Equal(t, "판매자가 설정한 배송 정책을 따릅니다.", got[0].Answer)
	assert.Equal(t, "정산 주기는 어떻게 되나요?", got[1].Question)
}
