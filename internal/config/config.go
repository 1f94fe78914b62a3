// Package config 는 애플리케이션 설정 로딩을 담당한다.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// 전역 설정 변수. config.yaml 에서 로드된 모든 설정을 담는다.
var Conf Config

// Config 는 애플리케이션 전체 설정 구조체로, config.yaml 과 대응된다.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Log           LogConfig           `mapstructure:"log"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	Embedding     EmbeddingConfig     `mapstructure:"embedding"`
	LLM           LLMConfig           `mapstructure:"llm"`
	Chunking      ChunkingConfig      `mapstructure:"chunking"`
	Retrieval     RetrievalConfig     `mapstructure:"retrieval"`
	Conversation  ConversationConfig  `mapstructure:"conversation"`
}

// ServerConfig 는 HTTP 서버 관련 설정.
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 는 모든 데이터베이스 연결 설정.
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 는 MySQL 연결 설정.
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 는 Redis 연결 설정.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig 는 웹소켓 티켓 서명용 JWT 설정.
type JWTConfig struct {
	Secret              string `mapstructure:"secret"`
	TicketExpireMinutes int    `mapstructure:"ticket_expire_minutes"`
}

// LogConfig 는 로깅 설정.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// KafkaConfig 는 색인 작업 큐 설정.
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

// ElasticsearchConfig 는 벡터 인덱스(Elasticsearch) 설정.
type ElasticsearchConfig struct {
	Addresses      string `mapstructure:"addresses"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	CollectionName string `mapstructure:"collection_name"`
}

// MinIOConfig 는 FAQ 원본 코퍼스를 보관하는 오브젝트 스토리지 설정.
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// EmbeddingConfig 는 임베딩 모델 설정.
type EmbeddingConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
}

// LLMConfig 는 생성 모델 설정.
type LLMConfig struct {
	APIKey     string              `mapstructure:"api_key"`
	BaseURL    string              `mapstructure:"base_url"`
	Model      string              `mapstructure:"model"`
	Generation LLMGenerationConfig `mapstructure:"generation"`
	Prompt     LLMPromptConfig     `mapstructure:"prompt"`
}

// LLMGenerationConfig 는 생성 파라미터 (선택).
type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// LLMPromptConfig 는 시스템 프롬프트 오버라이드 (선택).
type LLMPromptConfig struct {
	Rules string `mapstructure:"rules"`
}

// ChunkingConfig 는 QnA 청킹 파라미터.
type ChunkingConfig struct {
	MaxTokensPerChunk int     `mapstructure:"max_tokens_per_chunk"`
	OverlapRatio      float64 `mapstructure:"overlap_ratio"`
	TokenizerModel    string  `mapstructure:"tokenizer_model"`
	CorpusObject      string  `mapstructure:"corpus_object"`
}

// RetrievalConfig 는 검색/도메인 판별 파라미터.
type RetrievalConfig struct {
	TopK            int      `mapstructure:"top_k"`
	DomainThreshold float64  `mapstructure:"domain_threshold"`
	DomainKeywords  []string `mapstructure:"domain_keywords"`
	FollowUpCount   int      `mapstructure:"follow_up_count"`
}

// ConversationConfig 는 세션 히스토리 설정.
type ConversationConfig struct {
	MaxPairs int `mapstructure:"max_pairs"`
}

// Init 은 지정 경로의 YAML 설정 파일을 읽어 Conf 에 채운다.
func Init(configPath string) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("설정 파일 읽기 실패: %w", err))
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("설정 파싱 실패: %w", err))
	}
}
