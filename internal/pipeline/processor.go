// Package pipeline 은 FAQ 코퍼스 색인의 핵심 흐름을 정의한다.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/black940514/chatbot-project/internal/chunker"
	"github.com/black940514/chatbot-project/internal/config"
	"github.com/black940514/chatbot-project/internal/model"
	"github.com/black940514/chatbot-project/internal/repository"
	"github.com/black940514/chatbot-project/pkg/embedding"
	"github.com/black940514/chatbot-project/pkg/es"
	"github.com/black940514/chatbot-project/pkg/log"
	"github.com/black940514/chatbot-project/pkg/storage"
	"github.com/black940514/chatbot-project/pkg/tasks"
)

// Processor 는 코퍼스 색인에 필요한 의존성과 로직을 묶는다.
type Processor struct {
	chunker         *chunker.Chunker
	embeddingClient embedding.Client
	esCfg           config.ElasticsearchConfig
	minioCfg        config.MinIOConfig
	embeddingCfg    config.EmbeddingConfig
	chunkRepo       repository.ChunkRepository
}

// NewProcessor 는 Processor 인스턴스를 생성한다.
func NewProcessor(
	ck *chunker.Chunker,
	embeddingClient embedding.Client,
	esCfg config.ElasticsearchConfig,
	minioCfg config.MinIOConfig,
	embeddingCfg config.EmbeddingConfig,
	chunkRepo repository.ChunkRepository,
) *Processor {
	return &Processor{
		chunker:         ck,
		embeddingClient: embeddingClient,
		esCfg:           esCfg,
		minioCfg:        minioCfg,
		embeddingCfg:    embeddingCfg,
		chunkRepo:       chunkRepo,
	}
}

// Process 는 코퍼스 색인의 메인 함수다.
func (p *Processor) Process(ctx context.Context, task tasks.IndexCorpusTask) error {
	log.Infof("[Processor] 코퍼스 색인 시작, Object: %s, Rebuild: %v, RequestedBy: %s",
		task.CorpusObject, task.Rebuild, task.RequestedBy)

	// 0. 재구축이면 기존 컬렉션을 비운다
	if task.Rebuild {
		log.Infof("[Processor] 재구축 요청, 컬렉션 '%s' 초기화", p.esCfg.CollectionName)
		if err := es.DropCollection(ctx, p.esCfg.CollectionName, p.embeddingCfg.Dimensions); err != nil {
			return fmt.Errorf("컬렉션 초기화 실패: %w", err)
		}
	}

	// 1. MinIO 에서 코퍼스 파일 다운로드
	log.Infof("[Processor] 1단계: MinIO 에서 코퍼스 다운로드, Bucket: %s, Object: %s",
		p.minioCfg.BucketName, task.CorpusObject)
	raw, err := storage.FetchObject(ctx, p.minioCfg.BucketName, task.CorpusObject)
	if err != nil {
		log.Errorf("[Processor] 코퍼스 다운로드 실패, Object: %s, Error: %v", task.CorpusObject, err)
		return fmt.Errorf("MinIO 코퍼스 다운로드 실패: %w", err)
	}
	if len(raw) == 0 {
		log.Warnf("[Processor] 코퍼스 '%s' 내용이 비어 있어 처리 중단", task.CorpusObject)
		return errors.New("코퍼스 내용이 비어 있음")
	}

	// 2. 파싱과 전처리
	pairs, err := parseCorpus(raw)
	if err != nil {
		return fmt.Errorf("코퍼스 파싱 실패: %w", err)
	}
	log.Infof("[Processor] 2단계: 원본 문답 %d쌍 파싱 완료", len(pairs))
	pairs = chunker.PreprocessPairs(pairs)
	log.Infof("[Processor] 2단계: 전처리 후 %d쌍 유지", len(pairs))
	if len(pairs) == 0 {
		return errors.New("전처리 후 남은 문답이 없음")
	}

	// 3. 청킹
	chunks := p.chunker.PrepareCorpus(pairs)
	log.Infof("[Processor] 3단계: 청크 %d건 생성", len(chunks))
	if len(chunks) == 0 {
		return errors.New("생성된 청크가 없음")
	}

	// 1차: 청크 텍스트와 메타데이터를 DB 에 저장
	// 재실행 시 중복 누적을 막기 위해 기존 레코드를 먼저 지운다 (멱등)
	if err := p.chunkRepo.DeleteByCorpusObject(task.CorpusObject); err != nil {
		log.Warnf("[Processor] faq_chunks 기존 레코드 정리 실패 (corpus_object=%s): %v", task.CorpusObject, err)
	}
	records := make([]*model.FAQChunkRecord, 0, len(chunks))
	for _, c := range chunks {
		records = append(records, &model.FAQChunkRecord{
			CorpusObject:     task.CorpusObject,
			ChunkID:          c.ChunkID,
			Question:         c.Question,
			AnswerFragment:   c.AnswerFragment,
			OriginalQuestion: c.OriginalQuestion,
			ModelVersion:     p.embeddingCfg.Model,
		})
	}
	if err := p.chunkRepo.BatchCreate(records); err != nil {
		log.Errorf("[Processor] 1차: 청크 DB 일괄 저장 실패, Error: %v", err)
		return fmt.Errorf("청크 일괄 저장 실패: %w", err)
	}
	log.Infof("[Processor] 1차: 청크 %d건 DB 저장 완료", len(records))

	// 2차: DB 에서 읽어 임베딩 후 ES 에 색인
	saved, err := p.chunkRepo.FindByCorpusObject(task.CorpusObject)
	if err != nil {
		log.Errorf("[Processor] 2차: DB 청크 조회 실패, Error: %v", err)
		return fmt.Errorf("DB 청크 조회 실패: %w", err)
	}

	indexed := 0
	for i, record := range saved {
		// 질문 텍스트를 임베딩하고 답변 조각은 메타데이터로만 싣는다
		vector, err := p.embeddingClient.CreateEmbedding(ctx, record.Question)
		if err != nil {
			// 개별 청크 실패는 배치를 중단시키지 않는다
			log.Errorf("[Processor] 청크 %d 임베딩 실패, 건너뜀: %v", record.ChunkID, err)
			continue
		}

		doc := model.FAQDocument{
			ID:               fmt.Sprintf("faq_%d", record.ChunkID),
			Question:         record.Question,
			Answer:           record.AnswerFragment,
			OriginalQuestion: record.OriginalQuestion,
			Vector:           vector,
			ModelVersion:     p.embeddingCfg.Model,
		}
		if err := es.IndexDocument(ctx, p.esCfg.CollectionName, doc); err != nil {
			log.Errorf("[Processor] 청크 %d ES 색인 실패, 건너뜀: %v", record.ChunkID, err)
			continue
		}
		indexed++
		if (i+1)%100 == 0 {
			log.Infof("[Processor] 진행 상황: %d/%d 청크 색인", i+1, len(saved))
		}
	}
	if indexed == 0 {
		return errors.New("색인에 성공한 청크가 없음")
	}

	log.Infof("[Processor] 코퍼스 색인 완료, Object: %s, 색인 %d/%d건", task.CorpusObject, indexed, len(saved))
	return nil
}

// parseCorpus 는 코퍼스 JSON 을 문답 쌍으로 변환한다.
// {"질문": "답변", ...} 객체 형식과 [{"question","answer"}] 배열 형식을
// 모두 받는다. 객체 형식은 키 순서가 없으므로 질문 기준으로 정렬해
// 청크 ID 부여를 결정적으로 만든다.
func parseCorpus(raw []byte) ([]model.QnAPair, error) {
	var asMap map[string]string
	if err := json.Unmarshal(raw, &asMap); err == nil {
		questions := make([]string, 0, len(asMap))
		for q := range asMap {
			questions = append(questions, q)
		}
		sort.Strings(questions)
		pairs := make([]model.QnAPair, 0, len(questions))
		for _, q := range questions {
			pairs = append(pairs, model.QnAPair{Question: q, Answer: asMap[q]})
		}
		return pairs, nil
	}

	var asList []model.QnAPair
	if err := json.Unmarshal(raw, &asList); err != nil {
		return nil, fmt.Errorf("지원하지 않는 코퍼스 형식: %w", err)
	}
	return asList, nil
}
