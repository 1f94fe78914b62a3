package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/black940514/chatbot-project/internal/config"
	"github.com/black940514/chatbot-project/internal/repository"
	"github.com/black940514/chatbot-project/pkg/es"
	"github.com/black940514/chatbot-project/pkg/kafka"
	"github.com/black940514/chatbot-project/pkg/log"
	"github.com/black940514/chatbot-project/pkg/tasks"
)

// AdminHandler 는 색인 관리용 API 를 처리한다.
type AdminHandler struct {
	chunkRepo repository.ChunkRepository
}

// NewAdminHandler 는 AdminHandler 를 생성한다.
func NewAdminHandler(chunkRepo repository.ChunkRepository) *AdminHandler {
	return &AdminHandler{chunkRepo: chunkRepo}
}

// IndexStats 는 벡터 컬렉션과 청크 테이블의 현황을 반환한다.
func (h *AdminHandler) IndexStats(c *gin.Context) {
	collectionName := config.Conf.Elasticsearch.CollectionName
	corpusObject := config.Conf.Chunking.CorpusObject

	docCount, err := es.Count(c.Request.Context(), collectionName)
	if err != nil {
		log.Errorf("컬렉션 문서 수 조회 실패: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "색인 현황 조회에 실패했습니다",
			"data":    nil,
		})
		return
	}

	chunkCount, err := h.chunkRepo.CountByCorpusObject(corpusObject)
	if err != nil {
		log.Errorf("청크 레코드 수 조회 실패: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "색인 현황 조회에 실패했습니다",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"collection":     collectionName,
			"corpus_object":  corpusObject,
			"document_count": docCount,
			"chunk_count":    chunkCount,
		},
	})
}

// reindexRequest 는 재색인 요청 본문이다.
type reindexRequest struct {
	CorpusObject string `json:"corpus_object"`
	Rebuild      bool   `json:"rebuild"`
}

// Reindex 는 코퍼스 색인 작업을 Kafka 로 발행한다.
// 실제 색인은 컨슈머가 비동기로 수행한다.
func (h *AdminHandler) Reindex(c *gin.Context) {
	var req reindexRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    http.StatusBadRequest,
				"message": "잘못된 요청 본문입니다",
				"data":    nil,
			})
			return
		}
	}
	if req.CorpusObject == "" {
		req.CorpusObject = config.Conf.Chunking.CorpusObject
	}

	task := tasks.IndexCorpusTask{
		CorpusObject: req.CorpusObject,
		Rebuild:      req.Rebuild,
		RequestedBy:  c.ClientIP(),
	}
	if err := kafka.ProduceIndexTask(task); err != nil {
		log.Errorf("색인 작업 발행 실패: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "색인 작업 발행에 실패했습니다",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"code":    http.StatusAccepted,
		"message": "색인 작업이 접수되었습니다",
		"data":    gin.H{"corpus_object": task.CorpusObject, "rebuild": task.Rebuild},
	})
}

// DropIndex 는 벡터 컬렉션을 비우고 다시 만든다.
func (h *AdminHandler) DropIndex(c *gin.Context) {
	collectionName := config.Conf.Elasticsearch.CollectionName
	dims := config.Conf.Embedding.Dimensions

	if err := es.DropCollection(c.Request.Context(), collectionName, dims); err != nil {
		log.Errorf("컬렉션 초기화 실패: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "컬렉션 초기화에 실패했습니다",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    gin.H{"collection": collectionName},
	})
}
