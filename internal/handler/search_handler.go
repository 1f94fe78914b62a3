package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/black940514/chatbot-project/internal/service"
	"github.com/black940514/chatbot-project/pkg/log"
)

// SearchHandler 는 FAQ 검색과 도메인 판별 API 를 처리한다.
type SearchHandler struct {
	retrieval  service.RetrievalService
	classifier service.DomainClassifier
	defaultK   int
}

// NewSearchHandler 는 SearchHandler 를 생성한다.
func NewSearchHandler(retrieval service.RetrievalService, classifier service.DomainClassifier, defaultK int) *SearchHandler {
	if defaultK <= 0 {
		defaultK = 3
	}
	return &SearchHandler{retrieval: retrieval, classifier: classifier, defaultK: defaultK}
}

// Search 는 질의와 유사한 FAQ 항목을 조회한다.
func (h *SearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "q 파라미터는 필수입니다",
			"data":    nil,
		})
		return
	}

	topK := h.defaultK
	if raw := c.Query("top_k"); raw != "" {
		if k, err := strconv.Atoi(raw); err == nil && k > 0 {
			topK = k
		}
	}

	results, err := h.retrieval.Retrieve(c.Request.Context(), query, topK)
	if err != nil {
		log.Errorf("FAQ 검색 실패 (q=%q): %v", query, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "검색에 실패했습니다",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    results,
	})
}

// CheckDomain 은 질문이 FAQ 도메인에 속하는지 판별한다.
func (h *SearchHandler) CheckDomain(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "q 파라미터는 필수입니다",
			"data":    nil,
		})
		return
	}

	inDomain, err := h.classifier.IsDomainQuestion(c.Request.Context(), query)
	if err != nil {
		log.Errorf("도메인 판별 실패 (q=%q): %v", query, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "도메인 판별에 실패했습니다",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    gin.H{"in_domain": inDomain},
	})
}
