// Package es 는 Elasticsearch 를 벡터 인덱스로 쓰는 어댑터를 제공한다.
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/black940514/chatbot-project/internal/config"
	"github.com/black940514/chatbot-project/internal/model"
	"github.com/black940514/chatbot-project/pkg/log"
)

var ESClient *elasticsearch.Client

// Metadata 는 인덱스 문서에 함께 저장되는 부가 정보다.
type Metadata struct {
	Answer           string `json:"answer"`
	OriginalQuestion string `json:"original_question"`
}

// QueryResult 는 최근접 조회 결과의 평행 배열이다.
// Documents[i], Metadatas[i], Distances[i] 가 같은 문서를 가리키며,
// 세 배열의 길이는 이 어댑터 경계에서 검증된다.
type QueryResult struct {
	Documents []string
	Metadatas []Metadata
	Distances []float64
}

// InitES 는 Elasticsearch 클라이언트를 초기화하고,
// 컬렉션(인덱스)이 없으면 빈 컬렉션을 만든다.
func InitES(esCfg config.ElasticsearchConfig, dims int) error {
	cfg := elasticsearch.Config{
		Addresses: []string{esCfg.Addresses},
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return err
	}
	ESClient = client
	return EnsureCollection(esCfg.CollectionName, dims)
}

// EnsureCollection 은 컬렉션이 없을 때만 생성한다.
// 컬렉션 부재는 오류가 아니라 빈 컬렉션 생성으로 처리한다.
func EnsureCollection(collectionName string, dims int) error {
	res, err := ESClient.Indices.Exists([]string{collectionName})
	if err != nil {
		log.Errorf("컬렉션 존재 확인 실패: %v", err)
		return err
	}
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("컬렉션 '%s' 이미 존재", collectionName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		log.Errorf("컬렉션 '%s' 확인 중 예상치 못한 상태 코드: %d", collectionName, res.StatusCode)
		return fmt.Errorf("컬렉션 확인 중 예상치 못한 상태 코드: %d", res.StatusCode)
	}

	// 질문 텍스트를 본문으로, 답변/원본 질문을 메타데이터로 보관한다.
	// dense_vector 는 cosine 유사도로 색인한다.
	mapping := fmt.Sprintf(`{
		"mappings": {
			"properties": {
				"id": { "type": "keyword" },
				"question": { "type": "text" },
				"answer": { "type": "text", "index": false },
				"original_question": { "type": "text", "index": false },
				"vector": {
					"type": "dense_vector",
					"dims": %d,
					"index": true,
					"similarity": "cosine"
				},
				"model_version": { "type": "keyword" }
			}
		}
	}`, dims)

	res, err = ESClient.Indices.Create(
		collectionName,
		ESClient.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		log.Errorf("컬렉션 '%s' 생성 실패: %v", collectionName, err)
		return err
	}
	if res.IsError() {
		log.Errorf("컬렉션 '%s' 생성 시 Elasticsearch 오류: %s", collectionName, res.String())
		return errors.New("컬렉션 생성 시 Elasticsearch 오류")
	}

	log.Infof("컬렉션 '%s' 생성 완료", collectionName)
	return nil
}

// IndexDocument 는 FAQ 문서 하나를 색인한다. 같은 ID 로 다시 색인하면
// 덮어쓴다 (upsert).
func IndexDocument(ctx context.Context, collectionName string, doc model.FAQDocument) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      collectionName,
		DocumentID: doc.ID,
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, ESClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("문서 색인 실패: %s", res.String())
		return errors.New("failed to index document")
	}
	return nil
}

// Query 는 쿼리 벡터의 최근접 k 개 문서를 조회한다.
// cosineSimilarity + 1.0 을 점수로 쓰므로 점수는 [0,2] 범위이고
// 내림차순 정렬이 곧 근접 순이다. distance = 2 - score = 1 - cosine 으로
// [0,2] 에 묶인다.
func Query(ctx context.Context, collectionName string, vector []float32, k int) (*QueryResult, error) {
	esQuery := map[string]interface{}{
		"size": k,
		"query": map[string]interface{}{
			"script_score": map[string]interface{}{
				"query": map[string]interface{}{"match_all": map[string]interface{}{}},
				"script": map[string]interface{}{
					"source": "cosineSimilarity(params.query_vector, 'vector') + 1.0",
					"params": map[string]interface{}{"query_vector": vector},
				},
			},
		},
		"_source": []string{"question", "answer", "original_question"},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := ESClient.Search(
		ESClient.Search.WithContext(ctx),
		ESClient.Search.WithIndex(collectionName),
		ESClient.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.String())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Score  float64 `json:"_score"`
				Source struct {
					Question         string `json:"question"`
					Answer           string `json:"answer"`
					OriginalQuestion string `json:"original_question"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	result := &QueryResult{
		Documents: make([]string, 0, len(esResponse.Hits.Hits)),
		Metadatas: make([]Metadata, 0, len(esResponse.Hits.Hits)),
		Distances: make([]float64, 0, len(esResponse.Hits.Hits)),
	}
	for _, hit := range esResponse.Hits.Hits {
		result.Documents = append(result.Documents, hit.Source.Question)
		result.Metadatas = append(result.Metadatas, Metadata{
			Answer:           hit.Source.Answer,
			OriginalQuestion: hit.Source.OriginalQuestion,
		})
		result.Distances = append(result.Distances, 2.0-hit.Score)
	}

	if len(result.Documents) != len(result.Metadatas) || len(result.Documents) != len(result.Distances) {
		return nil, errors.New("index returned misaligned result arrays")
	}
	return result, nil
}

// Count 는 컬렉션의 문서 수를 반환한다.
func Count(ctx context.Context, collectionName string) (int, error) {
	res, err := ESClient.Count(
		ESClient.Count.WithContext(ctx),
		ESClient.Count.WithIndex(collectionName),
	)
	if err != nil {
		return 0, fmt.Errorf("elasticsearch count failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("elasticsearch returned an error: %s", res.String())
	}

	var countResponse struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&countResponse); err != nil {
		return 0, fmt.Errorf("failed to decode count response: %w", err)
	}
	return countResponse.Count, nil
}

// DropCollection 은 컬렉션 전체를 삭제한 뒤 빈 컬렉션을 다시 만든다.
// 개별 문서 삭제는 지원하지 않는다.
func DropCollection(ctx context.Context, collectionName string, dims int) error {
	res, err := ESClient.Indices.Delete(
		[]string{collectionName},
		ESClient.Indices.Delete.WithContext(ctx),
		ESClient.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch delete index failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch returned an error: %s", res.String())
	}

	log.Infof("컬렉션 '%s' 삭제 완료", collectionName)
	return EnsureCollection(collectionName, dims)
}
