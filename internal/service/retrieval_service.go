// Package service 는 애플리케이션의 비즈니스 로직 계층이다.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/black940514/chatbot-project/internal/model"
	"github.com/black940514/chatbot-project/pkg/embedding"
	"github.com/black940514/chatbot-project/pkg/es"
)

// VectorIndex 는 벡터 유사도 조회 인터페이스다.
// 거리 값은 작을수록 가깝다는 규약을 따른다.
type VectorIndex interface {
	Query(ctx context.Context, vector []float32, k int) (*es.QueryResult, error)
}

// esVectorIndex 는 Elasticsearch 컬렉션을 VectorIndex 로 감싼다.
type esVectorIndex struct {
	collectionName string
}

// NewESVectorIndex 는 지정한 컬렉션을 조회하는 VectorIndex 를 만든다.
func NewESVectorIndex(collectionName string) VectorIndex {
	return &esVectorIndex{collectionName: collectionName}
}

func (i *esVectorIndex) Query(ctx context.Context, vector []float32, k int) (*es.QueryResult, error) {
	return es.Query(ctx, i.collectionName, vector, k)
}

// RetrievalService 는 질의와 유사한 FAQ 항목을 조회하는 인터페이스다.
type RetrievalService interface {
	Retrieve(ctx context.Context, query string, topK int) ([]model.RetrievalResult, error)
}

type retrievalService struct {
	embedder embedding.Client
	index    VectorIndex
}

// NewRetrievalService 는 RetrievalService 인스턴스를 생성한다.
func NewRetrievalService(embedder embedding.Client, index VectorIndex) RetrievalService {
	return &retrievalService{embedder: embedder, index: index}
}

// Retrieve 는 질의를 임베딩해 상위 topK 항목을 반환한다.
// 유사도는 1 - 거리 로 환산하며, 인덱스가 돌려준 순서를 그대로 유지한다.
func (s *retrievalService) Retrieve(ctx context.Context, query string, topK int) ([]model.RetrievalResult, error) {
	vector, err := s.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("질의 임베딩 실패: %w", err)
	}

	qr, err := s.index.Query(ctx, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("벡터 조회 실패: %w", err)
	}

	results := make([]model.RetrievalResult, 0, len(qr.Documents))
	for i, doc := range qr.Documents {
		results = append(results, model.RetrievalResult{
			Question:         doc,
			Answer:           qr.Metadatas[i].Answer,
			OriginalQuestion: qr.Metadatas[i].OriginalQuestion,
			Similarity:       1.0 - qr.Distances[i],
		})
	}
	return results, nil
}

// DomainClassifier 는 질문이 FAQ 도메인에 속하는지 판별한다.
type DomainClassifier interface {
	IsDomainQuestion(ctx context.Context, query string) (bool, error)
}

type domainClassifier struct {
	retrieval RetrievalService
	keywords  []string
	threshold float64
}

// NewDomainClassifier 는 키워드 목록과 유사도 임계값으로 분류기를 만든다.
func NewDomainClassifier(retrieval RetrievalService, keywords []string, threshold float64) DomainClassifier {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}
	return &domainClassifier{retrieval: retrieval, keywords: lowered, threshold: threshold}
}

// IsDomainQuestion 은 2단계로 판별한다. 키워드가 부분 문자열로 나타나면
// 임베딩 없이 즉시 도메인으로 판정하고, 아니면 최상위 1건을 조회해
// 유사도가 임계값 이상인지 본다.
func (c *domainClassifier) IsDomainQuestion(ctx context.Context, query string) (bool, error) {
	lowered := strings.ToLower(query)
	for _, kw := range c.keywords {
		if strings.Contains(lowered, kw) {
			return true, nil
		}
	}

	results, err := c.retrieval.Retrieve(ctx, query, 1)
	if err != nil {
		return false, fmt.Errorf("도메인 판별용 조회 실패: %w", err)
	}
	if len(results) == 0 {
		return false, nil
	}
	return results[0].Similarity >= c.threshold, nil
}
