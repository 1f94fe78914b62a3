// Package kafka 는 색인 작업 큐(Kafka)와의 상호작용을 제공한다.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/black940514/chatbot-project/internal/config"
	"github.com/black940514/chatbot-project/pkg/database"
	"github.com/black940514/chatbot-project/pkg/log"
	"github.com/black940514/chatbot-project/pkg/tasks"
)

// TaskProcessor 는 색인 작업을 처리할 수 있는 서비스의 인터페이스다.
// 컨슈머를 구체적인 파이프라인 구현과 분리한다.
type TaskProcessor interface {
	Process(ctx context.Context, task tasks.IndexCorpusTask) error
}

var producer *kafka.Writer

// InitProducer 는 Kafka 프로듀서를 초기화한다.
func InitProducer(cfg config.KafkaConfig) {
	producer = &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka 프로듀서 초기화 완료")
}

// ProduceIndexTask 는 코퍼스 색인 작업을 Kafka 로 보낸다.
func ProduceIndexTask(task tasks.IndexCorpusTask) error {
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return err
	}

	return producer.WriteMessages(context.Background(),
		kafka.Message{
			Value: taskBytes,
		},
	)
}

// StartConsumer 는 색인 작업 컨슈머 루프를 시작한다.
// 작업 실패는 Redis 에 시도 횟수를 기록하고, 3회 이상 실패하면
// offset 을 커밋해 재시도를 중단한다.
func StartConsumer(cfg config.KafkaConfig, processor TaskProcessor) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Brokers},
		Topic:    cfg.Topic,
		GroupID:  "faq-chatbot-indexer",
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})

	log.Infof("Kafka 컨슈머 시작, topic '%s' 구독 중", cfg.Topic)

	for {
		m, err := r.FetchMessage(context.Background())
		if err != nil {
			log.Error("Kafka 메시지 읽기 실패", err)
			break
		}

		log.Infof("Kafka 메시지 수신: offset %d", m.Offset)

		var task tasks.IndexCorpusTask
		if err := json.Unmarshal(m.Value, &task); err != nil {
			log.Errorf("Kafka 메시지 파싱 불가: %v, value: %s", err, string(m.Value))
			// 포맷 오류 메시지는 바로 커밋해 큐가 막히지 않게 한다
			if err := r.CommitMessages(context.Background(), m); err != nil {
				log.Errorf("오류 메시지 커밋 실패: %v", err)
			}
			continue
		}

		log.Infof("색인 작업 시작: object=%s, rebuild=%v", task.CorpusObject, task.Rebuild)
		if err := processor.Process(context.Background(), task); err != nil {
			log.Errorf("색인 작업 실패: object=%s, error: %v", task.CorpusObject, err)
			attemptsKey := fmt.Sprintf("kafka:attempts:%s", task.CorpusObject)
			attempts, incErr := database.RDB.Incr(context.Background(), attemptsKey).Result()
			if incErr == nil {
				_ = database.RDB.Expire(context.Background(), attemptsKey, 24*time.Hour).Err()
			}
			if incErr != nil {
				// Redis 장애 시에는 offset 을 커밋하지 않아 Kafka 재시도에 맡긴다
				continue
			}
			if attempts >= 3 {
				log.Errorf("색인 작업 3회 이상 실패, 재시도 중단: object=%s", task.CorpusObject)
				if err := r.CommitMessages(context.Background(), m); err != nil {
					log.Errorf("Kafka offset 커밋 실패: %v", err)
				}
			}
		} else {
			log.Infof("색인 작업 완료: object=%s", task.CorpusObject)
			_ = database.RDB.Del(context.Background(), fmt.Sprintf("kafka:attempts:%s", task.CorpusObject)).Err()
			if err := r.CommitMessages(context.Background(), m); err != nil {
				log.Errorf("Kafka offset 커밋 실패: %v", err)
			}
		}
	}

	if err := r.Close(); err != nil {
		log.Fatalf("Kafka 컨슈머 종료 실패: %v", err)
	}
}
