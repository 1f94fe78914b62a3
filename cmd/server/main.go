// Package main 은 애플리케이션 진입점이다.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/black940514/chatbot-project/internal/chunker"
	"github.com/black940514/chatbot-project/internal/config"
	"github.com/black940514/chatbot-project/internal/handler"
	"github.com/black940514/chatbot-project/internal/middleware"
	"github.com/black940514/chatbot-project/internal/model"
	"github.com/black940514/chatbot-project/internal/pipeline"
	"github.com/black940514/chatbot-project/internal/repository"
	"github.com/black940514/chatbot-project/internal/service"
	"github.com/black940514/chatbot-project/pkg/database"
	"github.com/black940514/chatbot-project/pkg/embedding"
	"github.com/black940514/chatbot-project/pkg/es"
	"github.com/black940514/chatbot-project/pkg/kafka"
	"github.com/black940514/chatbot-project/pkg/llm"
	"github.com/black940514/chatbot-project/pkg/log"
	"github.com/black940514/chatbot-project/pkg/storage"
	"github.com/black940514/chatbot-project/pkg/token"
	"github.com/black940514/chatbot-project/pkg/tokenizer"
)

func main() {
	// 1. 설정 초기화
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 로거 초기화
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("로거 초기화 완료")

	// 3. 데이터베이스와 외부 스토리지 초기화
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	storage.InitMinIO(cfg.MinIO)
	if err := es.InitES(cfg.Elasticsearch, cfg.Embedding.Dimensions); err != nil {
		log.Errorf("Elasticsearch 초기화 실패: %s", err)
		return
	}
	kafka.InitProducer(cfg.Kafka)

	if err := database.DB.AutoMigrate(&model.FAQChunkRecord{}); err != nil {
		log.Fatalf("faq_chunks 테이블 마이그레이션 실패: %v", err)
	}

	// 4. Repository 초기화
	chunkRepo := repository.NewChunkRepository(database.DB)
	sessionStore := repository.NewSessionStore(cfg.Conversation.MaxPairs, database.RDB)

	// 이전 구동 시점의 세션을 복원한다
	if err := sessionStore.LoadSnapshot(context.Background()); err != nil {
		log.Warnf("세션 스냅샷 복원 실패, 빈 상태로 시작: %v", err)
	}

	// 5. Service 초기화 (의존성 주입)
	ticketManager := token.NewTicketManager(cfg.JWT.Secret, cfg.JWT.TicketExpireMinutes)
	embeddingClient := embedding.NewClient(cfg.Embedding)
	llmClient := llm.NewClient(cfg.LLM)

	counter, err := tokenizer.NewCounter(cfg.Chunking.TokenizerModel)
	if err != nil {
		log.Fatalf("토크나이저 초기화 실패: %v", err)
	}
	faqChunker := chunker.New(counter, chunker.NewKoreanSegmenter(),
		cfg.Chunking.MaxTokensPerChunk, cfg.Chunking.OverlapRatio)

	retrievalService := service.NewRetrievalService(
		embeddingClient, service.NewESVectorIndex(cfg.Elasticsearch.CollectionName))
	classifier := service.NewDomainClassifier(
		retrievalService, cfg.Retrieval.DomainKeywords, cfg.Retrieval.DomainThreshold)
	followUpService := service.NewFollowUpService(llmClient, cfg.Retrieval.FollowUpCount)
	conversationService := service.NewConversationService(sessionStore)
	chatService := service.NewChatService(
		classifier, retrievalService, followUpService, llmClient, sessionStore, cfg.Retrieval.TopK)

	// 6. 코퍼스 색인 파이프라인 초기화
	processor := pipeline.NewProcessor(
		faqChunker,
		embeddingClient,
		cfg.Elasticsearch,
		cfg.MinIO,
		cfg.Embedding,
		chunkRepo,
	)

	// 7. 백그라운드 Kafka 컨슈머 기동
	go kafka.StartConsumer(cfg.Kafka, processor)

	// 8. Gin 모드 설정과 라우터 생성
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 9. 라우트 등록
	chatHandler := handler.NewChatHandler(chatService, ticketManager)
	conversationHandler := handler.NewConversationHandler(conversationService)
	searchHandler := handler.NewSearchHandler(retrievalService, classifier, cfg.Retrieval.TopK)
	adminHandler := handler.NewAdminHandler(chunkRepo)

	apiV1 := r.Group("/api/v1")
	{
		apiV1.POST("/chat", chatHandler.Chat)
		apiV1.GET("/chat/ticket", chatHandler.IssueTicket)

		conversations := apiV1.Group("/conversations")
		{
			conversations.GET("/:session_id", conversationHandler.GetHistory)
			conversations.POST("/:session_id/clear", conversationHandler.ClearHistory)
			conversations.DELETE("/:session_id", conversationHandler.DeleteSession)
		}

		search := apiV1.Group("/search")
		{
			search.GET("", searchHandler.Search)
			search.GET("/domain", searchHandler.CheckDomain)
		}

		admin := apiV1.Group("/admin")
		{
			admin.GET("/index/stats", adminHandler.IndexStats)
			admin.POST("/index/reindex", adminHandler.Reindex)
			admin.DELETE("/index", adminHandler.DropIndex)
		}
	}
	// 웹소켓 채팅 (티켓 인증)
	r.GET("/chat/:ticket", chatHandler.Handle)

	// HTTP 서버 기동과 우아한 종료
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("서비스 시작: %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 서비스 리슨 실패: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("종료 신호 수신, 서비스를 닫는 중...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 서버 종료 실패: %v", err)
	}

	// 종료 전에 세션 상태를 Redis 로 내보낸다
	if err := sessionStore.SaveSnapshot(ctx); err != nil {
		log.Errorf("세션 스냅샷 저장 실패: %v", err)
	}

	log.Info("서비스가 정상 종료되었습니다")
}
