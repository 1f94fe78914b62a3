package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKoreanSegmenterSentences(t *testing.T) {
	seg := NewKoreanSegmenter()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "종결 어미와 부호 혼합",
			text: "배송비는 판매자가 부담합니다. 단, 도서산간 지역은 예외입니다! 자세한 내용은 고객센터에 문의하세요. 정말 그런가요?",
			want: []string{
				"배송비는 판매자가 부담합니다.",
				"단, 도서산간 지역은 예외입니다!",
				"자세한 내용은 고객센터에 문의하세요.",
				"정말 그런가요?",
			},
		},
		{
			name: "닫는 따옴표 뒤 경계",
			text: `담당자는 "처리되었습니다." 라고 답했다.`,
			want: []string{`담당자는 "처리되었습니다."`, "라고 답했다."},
		},
		{
			name: "경계 없음",
			text: "종결 부호가 없는 한 덩어리 텍스트",
			want: []string{"종결 부호가 없는 한 덩어리 텍스트"},
		},
		{
			name: "후행 공백 정리",
			text: "첫 문장입니다.   둘째 문장입니다.  ",
			want: []string{"첫 문장입니다.", "둘째 문장입니다."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, seg.Sentences(tt.text))
		})
	}
}

func TestKoreanSegmenterSentencesEmpty(t *testing.T) {
	seg := NewKoreanSegmenter()
	assert.Nil(t, seg.Sentences("   "))
	assert.Nil(t, seg.Sentences(""))
}

func TestKoreanSegmenterWords(t *testing.T) {
	seg := NewKoreanSegmenter()
	got := seg.Words("배송비는  누가   부담하나요?")
	assert.Equal(t, []string{"배송비는", "누가", "부담하나요?"}, got)
}
