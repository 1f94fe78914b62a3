package model

// FAQChunkRecord 는 faq_chunks 테이블과 대응된다.
// 색인 파이프라인 1단계에서 청크 텍스트를 보관하고,
// 2단계에서 이를 읽어 임베딩/색인한다.
type FAQChunkRecord struct {
	ID               uint   `gorm:"primaryKey;autoIncrement;column:id"`
	CorpusObject     string `gorm:"type:varchar(255);not null;index;column:corpus_object"`
	ChunkID          int    `gorm:"not null;column:chunk_id"`
	Question         string `gorm:"type:text;not null;column:question"`
	AnswerFragment   string `gorm:"type:text;not null;column:answer_fragment"`
	OriginalQuestion string `gorm:"type:text;not null;column:original_question"`
	ModelVersion     string `gorm:"type:varchar(50);column:model_version"`
}

func (FAQChunkRecord) TableName() string {
	return "faq_chunks"
}
