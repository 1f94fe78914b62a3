// Package tokenizer provides token counting under a named model's
// tokenization scheme. It is used only for chunk budget accounting.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Counter 는 토큰 수 계산 인터페이스다. 청커가 예산 계산에만 사용한다.
type Counter interface {
	CountTokens(text string) int
	Model() string
}

type tiktokenCounter struct {
	model    string
	encoding *tiktoken.Tiktoken
}

// NewCounter 는 모델명에 해당하는 tiktoken 인코딩을 로드한다.
// 모델을 인식하지 못하면 cl100k_base 로 폴백한다.
func NewCounter(model string) (Counter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("토크나이저 인코딩 로드 실패: %w", err)
		}
	}
	return &tiktokenCounter{model: model, encoding: enc}, nil
}

// CountTokens 는 주어진 텍스트의 토큰 수를 반환한다.
func (c *tiktokenCounter) CountTokens(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// Model 은 이 카운터가 기준으로 삼는 모델명을 반환한다.
func (c *tiktokenCounter) Model() string {
	return c.model
}
