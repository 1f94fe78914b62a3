// Package chunker 는 FAQ 질문/답변 쌍을 토큰 예산에 맞게 분할한다.
package chunker

import (
	"regexp"
	"strings"
)

// Segmenter 는 텍스트 분할 규칙을 추상화한다.
// 청커의 패킹 로직이 언어별 분할 규칙과 분리되도록
// 언어/스크립트별 구현을 갈아끼울 수 있다.
type Segmenter interface {
	// Sentences 는 텍스트를 문장 단위로 나눈다. 경계를 찾지 못하면
	// 전체 텍스트를 문장 하나로 반환한다.
	Sentences(text string) []string
	// Words 는 텍스트를 어절 단위로 나눈다.
	Words(text string) []string
}

// koreanSegmenter 는 한국어 FAQ 코퍼스용 문장 분할기다.
// 종결 부호(. ? !)와 그 뒤의 닫는 따옴표, 그리고
// 다./요./니다./세요. 같은 종결 어미 뒤의 공백을 문장 경계로 본다.
type koreanSegmenter struct {
	boundary *regexp.Regexp
}

// 경계 패턴: 종결 부호(선택적 닫는 따옴표 포함) 뒤의 공백.
// 종결 어미(다/요/니다/세요)는 항상 마침표와 함께 나타나므로
// 동일한 패턴으로 처리된다.
const boundaryPattern = `([.!?…]["'”’]?)\s+`

// NewKoreanSegmenter 는 한국어 문장 분할기를 생성한다.
func NewKoreanSegmenter() Segmenter {
	return &koreanSegmenter{boundary: regexp.MustCompile(boundaryPattern)}
}

// Sentences 는 문단을 문장 리스트로 나눈다.
func (s *koreanSegmenter) Sentences(text string) []string {
	marked := s.boundary.ReplaceAllString(text, "$1\x1f")
	parts := strings.Split(marked, "\x1f")

	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	if len(sentences) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}
	return sentences
}

// Words 는 공백 기준으로 어절을 나눈다.
func (s *koreanSegmenter) Words(text string) []string {
	return strings.Fields(text)
}
