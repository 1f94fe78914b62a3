package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/black940514/chatbot-project/internal/model"
)

// 전처리에서 걸러낼 최소 길이. 너무 짧은 항목은 검색 품질을 해친다.
const (
	minQuestionLen = 5
	minAnswerLen   = 10
)

var (
	reHTMLTag    = regexp.MustCompile(`<.*?>`)
	reOddSpace   = regexp.MustCompile("[ ​　]")
	reWhitespace = regexp.MustCompile(`\s+`)

	// FAQ 원문 답변 꼬리에 붙는 도움말 보일러플레이트
	reHelpFooter   = regexp.MustCompile(`(?s)위 도움말이 도움이 되었나요\?.*?도움말 닫기`)
	reHelpKeywords = regexp.MustCompile(`(?s)관련 도움말/키워드.*?도움말 닫기`)
)

// CleanText 는 HTML 태그와 비정상 공백을 제거하고 공백을 정규화한다.
func CleanText(text string) string {
	text = reHTMLTag.ReplaceAllString(text, "")
	text = reOddSpace.ReplaceAllString(text, " ")
	text = reWhitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// RemoveFAQBoilerplate 는 답변 끝의 도움말 안내 문구를 제거한다.
func RemoveFAQBoilerplate(text string) string {
	text = reHelpFooter.ReplaceAllString(text, "")
	text = reHelpKeywords.ReplaceAllString(text, "")
	return CleanText(text)
}

// PreprocessPairs 는 원본 QnA 쌍을 정제한다.
// 텍스트 정리 후 최소 길이 미달 항목을 거르고, 정제된 질문 기준으로
// 중복을 제거한다(먼저 나온 항목 유지).
func PreprocessPairs(pairs []model.QnAPair) []model.QnAPair {
	seen := make(map[string]struct{}, len(pairs))
	result := make([]model.QnAPair, 0, len(pairs))

	for _, p := range pairs {
		q := CleanText(p.Question)
		a := RemoveFAQBoilerplate(p.Answer)
		if q == "" || a == "" {
			continue
		}
		if utf8.RuneCountInString(q) < minQuestionLen || utf8.RuneCountInString(a) < minAnswerLen {
			continue
		}
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		result = append(result, model.QnAPair{Question: q, Answer: a})
	}
	return result
}
