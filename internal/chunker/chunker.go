package chunker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/black940514/chatbot-project/internal/model"
	"github.com/black940514/chatbot-project/pkg/log"
	"github.com/black940514/chatbot-project/pkg/tokenizer"
)

// ErrOversizedQuestion 은 질문 하나의 토큰 수가 청크 예산의 절반을
// 초과할 때 반환된다. 해당 쌍만 실패하며, 코퍼스 처리는 계속된다.
var ErrOversizedQuestion = errors.New("질문 토큰 수가 청크 예산의 절반을 초과")

// Chunker 는 QnA 쌍을 토큰 예산 B 이내의 청크로 분할한다.
// 질문은 분할하지 않고 모든 청크에 그대로 붙이며,
// 인접 청크 사이에는 overlapRatio 비율의 문장 중복을 둔다.
type Chunker struct {
	counter      tokenizer.Counter
	seg          Segmenter
	maxTokens    int
	overlapRatio float64
}

// New 는 Chunker 를 생성한다. overlapRatio 는 [0,1) 범위로 잘라낸다.
func New(counter tokenizer.Counter, seg Segmenter, maxTokens int, overlapRatio float64) *Chunker {
	if overlapRatio < 0 {
		overlapRatio = 0
	}
	if overlapRatio >= 1 {
		overlapRatio = 0.99
	}
	return &Chunker{
		counter:      counter,
		seg:          seg,
		maxTokens:    maxTokens,
		overlapRatio: overlapRatio,
	}
}

// ChunkPair 는 QnA 쌍 하나를 청크 시퀀스로 분할한다.
// 반환되는 모든 청크는 tokens(question)+tokens(answer_fragment) <= B 를
// 만족한다. ChunkID 는 여기서 부여하지 않는다 (PrepareCorpus 참조).
func (c *Chunker) ChunkPair(pair model.QnAPair) ([]model.Chunk, error) {
	questionTokens := c.counter.CountTokens(pair.Question)
	answerTokens := c.counter.CountTokens(pair.Answer)

	// 예산 이내면 분할 없이 그대로 반환
	if questionTokens+answerTokens <= c.maxTokens {
		return []model.Chunk{{
			Question:         pair.Question,
			AnswerFragment:   pair.Answer,
			OriginalQuestion: pair.Question,
		}}, nil
	}

	// 질문만으로 예산 절반을 넘으면 답변이 들어갈 자리가 없다
	if questionTokens > c.maxTokens/2 {
		return nil, fmt.Errorf("%w: %d 토큰 (최대 %d)", ErrOversizedQuestion, questionTokens, c.maxTokens/2)
	}

	available := c.maxTokens - questionTokens
	sentences := c.seg.Sentences(pair.Answer)

	raw := c.packSentences(sentences, available)
	overlapped := c.applyOverlap(raw, questionTokens)

	chunks := make([]model.Chunk, 0, len(overlapped))
	for _, answer := range overlapped {
		chunks = append(chunks, model.Chunk{
			Question:         pair.Question,
			AnswerFragment:   answer,
			OriginalQuestion: pair.Question,
		})
	}
	return chunks, nil
}

// packSentences 는 문장을 탐욕적으로 채워 답변 조각들을 만든다.
// 단일 문장이 예산을 넘으면 어절 단위 패킹으로 내려간다.
func (c *Chunker) packSentences(sentences []string, available int) []string {
	var chunks []string
	var current []string
	currentTokens := 0

	for _, sentence := range sentences {
		tokens := c.counter.CountTokens(sentence)
		if currentTokens+tokens <= available {
			current = append(current, sentence)
			currentTokens += tokens
			continue
		}

		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
		}
		current = []string{sentence}
		currentTokens = tokens

		// 문장 혼자서도 예산을 넘는 경우: 어절 단위로 쪼갠다
		if tokens > available {
			full, rest, restTokens := c.packWords(sentence, available)
			chunks = append(chunks, full...)
			if len(rest) > 0 {
				current = rest
				currentTokens = restTokens
			} else {
				current = nil
				currentTokens = 0
			}
		}
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// packWords 는 병적으로 긴 문장 하나를 어절 단위로 패킹한다.
// 가득 찬 조각들과, 다음 청크로 이어질 잔여 어절을 반환한다.
func (c *Chunker) packWords(sentence string, available int) (full []string, rest []string, restTokens int) {
	var temp []string
	tempTokens := 0

	for _, word := range c.seg.Words(sentence) {
		wordTokens := c.counter.CountTokens(word + " ")
		if tempTokens+wordTokens <= available {
			temp = append(temp, word)
			tempTokens += wordTokens
			continue
		}
		full = append(full, strings.Join(temp, " "))
		temp = []string{word}
		tempTokens = wordTokens
	}
	return full, temp, tempTokens
}

// applyOverlap 은 청크 i>0 의 앞에 직전 청크 꼬리 문장들을 붙인다.
// 붙인 뒤 예산을 넘으면 앞쪽 겹침 문장부터 하나씩 떼어낸다.
// 첫 청크에는 겹침을 붙이지 않는다.
func (c *Chunker) applyOverlap(raw []string, questionTokens int) []string {
	if len(raw) <= 1 || c.overlapRatio <= 0 {
		return raw
	}

	overlapped := make([]string, 0, len(raw))
	overlapped = append(overlapped, raw[0])

	for i := 1; i < len(raw); i++ {
		prevSentences := c.seg.Sentences(raw[i-1])

		overlapCount := int(float64(len(prevSentences)) * c.overlapRatio)
		if overlapCount < 1 {
			overlapCount = 1
		}
		if overlapCount > len(prevSentences) {
			overlapCount = len(prevSentences)
		}
		overlapSentences := prevSentences[len(prevSentences)-overlapCount:]

		answer := joinOverlap(overlapSentences, raw[i])
		for c.counter.CountTokens(answer)+questionTokens > c.maxTokens && len(overlapSentences) > 0 {
			overlapSentences = overlapSentences[1:]
			answer = joinOverlap(overlapSentences, raw[i])
		}
		overlapped = append(overlapped, answer)
	}
	return overlapped
}

func joinOverlap(overlapSentences []string, current string) string {
	if len(overlapSentences) == 0 {
		return current
	}
	return strings.Join(overlapSentences, " ") + " " + current
}

// PrepareCorpus 는 전처리된 QnA 쌍 전체를 청킹하고, 생성 순서대로
// 코퍼스 전역의 0 기반 ChunkID 를 부여한다.
// 질문이 과대한 쌍은 건너뛰고 로그만 남긴다. 나머지 처리는 계속된다.
func (c *Chunker) PrepareCorpus(pairs []model.QnAPair) []model.Chunk {
	chunks := make([]model.Chunk, 0, len(pairs))
	chunkID := 0
	skipped := 0

	for _, pair := range pairs {
		pairChunks, err := c.ChunkPair(pair)
		if err != nil {
			log.Warnf("[Chunker] 청킹 실패로 항목 건너뜀, question: '%s', error: %v", pair.Question, err)
			skipped++
			continue
		}
		for _, ch := range pairChunks {
			ch.ChunkID = chunkID
			chunkID++
			chunks = append(chunks, ch)
		}
	}

	log.Infof("[Chunker] 코퍼스 청킹 완료, 쌍 %d건 -> 청크 %d개 (건너뜀 %d건)", len(pairs), len(chunks), skipped)
	return chunks
}
