package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/black940514/chatbot-project/internal/model"
)

// fieldCounter 는 어절 수를 토큰 수로 취급하는 테스트용 카운터다.
type fieldCounter struct{}

func (fieldCounter) CountTokens(text string) int { return len(strings.Fields(text)) }
func (fieldCounter) Model() string               { return "test-counter" }

// makeSentence 는 고유하고 어절 수가 정확히 words 개인 한국어풍 문장을 만든다.
// 마지막 어절이 "마칩니다." 로 끝나 분할기가 같은 경계로 다시 나눈다.
func makeSentence(id, words int) string {
	if words < 2 {
		panic("sentence needs at least 2 words")
	}
	parts := make([]string, 0, words)
	parts = append(parts, fmt.Sprintf("문장%02d는", id))
	for i := 0; i < words-2; i++ {
		parts = append(parts, fmt.Sprintf("어절%02d_%02d", id, i))
	}
	parts = append(parts, fmt.Sprintf("여기서%02d마칩니다.", id))
	return strings.Join(parts, " ")
}

func newTestChunker(maxTokens int, overlapRatio float64) *Chunker {
	return New(fieldCounter{}, NewKoreanSegmenter(), maxTokens, overlapRatio)
}

func TestChunkPairNoOpFastPath(t *testing.T) {
	c := newTestChunker(50, 0.2)
	pair := model.QnAPair{
		Question: "배송비는 누가 부담하나요?",
		Answer:   "기본적으로 판매자가 설정한 배송 정책을 따릅니다.",
	}

	chunks, err := c.ChunkPair(pair)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, pair.Question, chunks[0].Question)
	assert.Equal(t, pair.Answer, chunks[0].AnswerFragment)
	assert.Equal(t, pair.Question, chunks[0].OriginalQuestion)
}

func TestChunkPairOversizedQuestion(t *testing.T) {
	c := newTestChunker(10, 0.2)
	// 질문 6 어절 > 10/2, 답변은 예산 초과를 일으킬 만큼 길게
	pair := model.QnAPair{
		Question: "하나 둘 셋 넷 다섯 여섯",
		Answer:   makeSentence(1, 8) + " " + makeSentence(2, 8),
	}

	_, err := c.ChunkPair(pair)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOversizedQuestion)
}

// scenarioPair 는 스펙 시나리오용 10문장 200토큰 답변 쌍을 만든다.
// 문장 어절 수: 20 16 4 30 30 30 30 14 14 12 (합계 200)
func scenarioPair(t *testing.T) (model.QnAPair, []string) {
	t.Helper()
	sizes := []int{20, 16, 4, 30, 30, 30, 30, 14, 14, 12}
	sentences := make([]string, len(sizes))
	total := 0
	for i, n := range sizes {
		sentences[i] = makeSentence(i+1, n)
		total += n
	}
	require.Equal(t, 200, total)
	pair := model.QnAPair{
		Question: "환불 정책 은 무엇 인가 요?", // 6 토큰
		Answer:   strings.Join(sentences, " "),
	}
	return pair, sentences
}

func TestChunkPairBudgetInvariant(t *testing.T) {
	const budget = 50
	c := newTestChunker(budget, 0.2)
	pair, _ := scenarioPair(t)
	counter := fieldCounter{}

	chunks, err := c.ChunkPair(pair)
	require.NoError(t, err)

	for _, ch := range chunks {
		got := counter.CountTokens(ch.Question) + counter.CountTokens(ch.AnswerFragment)
		assert.LessOrEqual(t, got, budget, "청크 예산 초과: %q", ch.AnswerFragment)
	}
}

func TestChunkPairKoreanScenario(t *testing.T) {
	// B=50, 질문 6토큰, 10문장 200토큰, r=0.2
	c := newTestChunker(50, 0.2)
	pair, sentences := scenarioPair(t)

	chunks, err := c.ChunkPair(pair)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(chunks), 4)

	// 두 번째 청크는 첫 청크 꼬리 문장(문장03)의 중복으로 시작해야 한다
	require.Greater(t, len(chunks), 1)
	assert.True(t, strings.HasPrefix(chunks[1].AnswerFragment, sentences[2]),
		"두 번째 청크가 겹침 문장으로 시작하지 않음: %q", chunks[1].AnswerFragment)

	for _, ch := range chunks {
		assert.Equal(t, pair.Question, ch.Question)
		assert.Equal(t, pair.Question, ch.OriginalQuestion)
	}
}

func TestChunkPairRoundTripUnderOverlapRemoval(t *testing.T) {
	c := newTestChunker(50, 0.2)
	seg := NewKoreanSegmenter()
	pair, original := scenarioPair(t)

	chunks, err := c.ChunkPair(pair)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	// 겹침 문장을 걷어내고 이어붙이면 원본 문장 순서가 복원되어야 한다.
	// 문장이 모두 고유하므로 이미 본 문장은 겹침으로 간주한다.
	seen := make(map[string]struct{})
	var reconstructed []string
	for _, ch := range chunks {
		for _, s := range seg.Sentences(ch.AnswerFragment) {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			reconstructed = append(reconstructed, s)
		}
	}
	assert.Equal(t, original, reconstructed)
}

func TestChunkPairOverlapBounds(t *testing.T) {
	c := newTestChunker(50, 0.2)
	seg := NewKoreanSegmenter()
	pair, _ := scenarioPair(t)

	chunks, err := c.ChunkPair(pair)
	require.NoError(t, err)

	for i := 1; i < len(chunks); i++ {
		prev := seg.Sentences(chunks[i-1].AnswerFragment)
		curr := seg.Sentences(chunks[i].AnswerFragment)

		// 앞쪽에서 직전 청크와 겹치는 문장 수를 센다
		prevSet := make(map[string]struct{}, len(prev))
		for _, s := range prev {
			prevSet[s] = struct{}{}
		}
		overlap := 0
		for _, s := range curr {
			if _, ok := prevSet[s]; !ok {
				break
			}
			overlap++
		}
		// 겹침은 예산이 허용하는 한 붙지만, 직전 청크 문장 수를 넘을 수 없다
		assert.LessOrEqual(t, overlap, len(prev))
	}
}

func TestChunkPairWordGranularityFallback(t *testing.T) {
	const budget = 50
	c := newTestChunker(budget, 0)
	counter := fieldCounter{}

	// 경계 부호 없는 60어절 문장 하나: 문장 패킹이 불가능한 병적 케이스
	words := make([]string, 60)
	for i := range words {
		words[i] = fmt.Sprintf("어절%02d", i)
	}
	pair := model.QnAPair{
		Question: "질문 네 어절 입니다",
		Answer:   strings.Join(words, " "),
	}

	chunks, err := c.ChunkPair(pair)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for _, ch := range chunks {
		got := counter.CountTokens(ch.Question) + counter.CountTokens(ch.AnswerFragment)
		assert.LessOrEqual(t, got, budget)
	}

	// 어절 순서가 보존되어야 한다
	var joined []string
	for _, ch := range chunks {
		joined = append(joined, strings.Fields(ch.AnswerFragment)...)
	}
	assert.Equal(t, words, joined)
}

func TestPrepareCorpusAssignsDenseIDsAndSkipsOversized(t *testing.T) {
	c := newTestChunker(10, 0)

	pairs := []model.QnAPair{
		{Question: "짧은 질문", Answer: "짧은 답변 입니다"},
		// 질문 7어절 > 10/2: 건너뛰어야 한다
		{Question: "과하게 길고 장황한 일곱 어절 질문 입니다", Answer: makeSentence(1, 9) + " " + makeSentence(2, 9)},
		{Question: "둘째 질문", Answer: makeSentence(3, 7) + " " + makeSentence(4, 7)},
	}

	chunks := c.PrepareCorpus(pairs)
	require.NotEmpty(t, chunks)

	// 건너뛴 쌍의 질문은 어떤 청크에도 나타나지 않는다
	for _, ch := range chunks {
		assert.NotEqual(t, pairs[1].Question, ch.OriginalQuestion)
	}

	// ChunkID 는 0부터 빈틈없이 이어진다
	for i, ch := range chunks {
		assert.Equal(t, i, ch.ChunkID)
	}

	// 둘째 질문은 예산(10-2=8) 대비 문장 2개(7+7)라 두 청크 이상이어야 한다
	var secondCount int
	for _, ch := range chunks {
		if ch.OriginalQuestion == pairs[2].Question {
			secondCount++
		}
	}
	assert.GreaterOrEqual(t, secondCount, 2)
}

func TestChunkPairNoOverlapWhenRatioZero(t *testing.T) {
	c := newTestChunker(50, 0)
	seg := NewKoreanSegmenter()
	pair, original := scenarioPair(t)

	chunks, err := c.ChunkPair(pair)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	var all []string
	for _, ch := range chunks {
		all = append(all, seg.Sentences(ch.AnswerFragment)...)
	}
	assert.Equal(t, original, all)
}
