package repository

import (
	"gorm.io/gorm"

	"github.com/black940514/chatbot-project/internal/model"
)

// ChunkRepository 는 faq_chunks 테이블에 대한 데이터 접근 인터페이스다.
type ChunkRepository interface {
	BatchCreate(records []*model.FAQChunkRecord) error
	FindByCorpusObject(corpusObject string) ([]*model.FAQChunkRecord, error)
	CountByCorpusObject(corpusObject string) (int64, error)
	DeleteByCorpusObject(corpusObject string) error
}

type chunkRepository struct {
	db *gorm.DB
}

// NewChunkRepository 는 ChunkRepository 인스턴스를 생성한다.
func NewChunkRepository(db *gorm.DB) ChunkRepository {
	return &chunkRepository{db: db}
}

// BatchCreate 는 청크 레코드를 일괄 저장한다.
func (r *chunkRepository) BatchCreate(records []*model.FAQChunkRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.CreateInBatches(records, 100).Error // 100건 단위 배치
}

// FindByCorpusObject 는 코퍼스 객체 기준으로 청크 레코드를 조회한다.
func (r *chunkRepository) FindByCorpusObject(corpusObject string) ([]*model.FAQChunkRecord, error) {
	var records []*model.FAQChunkRecord
	err := r.db.Where("corpus_object = ?", corpusObject).Order("chunk_id ASC").Find(&records).Error
	return records, err
}

// CountByCorpusObject 는 코퍼스 객체의 청크 건수를 반환한다.
func (r *chunkRepository) CountByCorpusObject(corpusObject string) (int64, error) {
	var count int64
	err := r.db.Model(&model.FAQChunkRecord{}).Where("corpus_object = ?", corpusObject).Count(&count).Error
	return count, err
}

// DeleteByCorpusObject 는 코퍼스 객체의 청크 레코드를 모두 삭제한다.
func (r *chunkRepository) DeleteByCorpusObject(corpusObject string) error {
	return r.db.Where("corpus_object = ?", corpusObject).Delete(&model.FAQChunkRecord{}).Error
}
