// Package model 은 애플리케이션의 데이터 모델을 정의한다.
package model

// QnAPair 는 FAQ 코퍼스의 원본 질문/답변 쌍이다.
// 질문 텍스트가 코퍼스 내에서 해당 쌍의 식별자 역할을 한다.
type QnAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Chunk 는 토큰 예산에 맞게 분할된 QnA 조각이다.
// 질문은 절대 분할하지 않으므로 Question 은 항상 OriginalQuestion 과 같고,
// 답변만 AnswerFragment 로 나뉜다. ChunkID 는 코퍼스 전체에 걸쳐
// 0부터 순서대로 부여된다.
type Chunk struct {
	ChunkID          int    `json:"chunk_id"`
	Question         string `json:"question"`
	AnswerFragment   string `json:"answer_fragment"`
	OriginalQuestion string `json:"original_question"`
}

// RetrievalResult 는 벡터 인덱스 조회 결과 한 건이다.
// Similarity 는 1 - distance 로 계산된 파생값이며 저장되지 않는다.
type RetrievalResult struct {
	Question         string  `json:"question"`
	Answer           string  `json:"answer"`
	OriginalQuestion string  `json:"original_question"`
	Similarity       float64 `json:"similarity"`
}

// FAQDocument 는 Elasticsearch 에 저장되는 문서 구조다.
// 문서 본문은 청크의 질문 텍스트이고, 답변 조각과 원본 질문은
// 메타데이터로 함께 저장된다. ID 는 "faq_<chunk_id>" 형식이다.
type FAQDocument struct {
	ID               string    `json:"id"`
	Question         string    `json:"question"`
	Answer           string    `json:"answer"`
	OriginalQuestion string    `json:"original_question"`
	Vector           []float32 `json:"vector"`
	ModelVersion     string    `json:"model_version"`
}
