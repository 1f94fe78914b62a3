// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

// IndexCorpusTask 는 FAQ 코퍼스 색인 작업의 페이로드다.
// CorpusObject 는 MinIO 버킷 내 코퍼스 JSON 의 오브젝트 키이고,
// Rebuild 가 true 면 색인 전에 기존 컬렉션을 비운다.
type IndexCorpusTask struct {
	CorpusObject string `json:"corpus_object"`
	Rebuild      bool   `json:"rebuild"`
	RequestedBy  string `json:"requested_by"`
}
