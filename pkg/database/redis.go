package database

import (
	"context"

	"github.com/go-redis/redis/v8"

	"github.com/black940514/chatbot-project/pkg/log"
)

var RDB *redis.Client

// InitRedis 는 Redis 클라이언트를 초기화하고 연결을 확인한다.
func InitRedis(addr, password string, db int) {
	RDB = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if err := RDB.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to redis", err)
	}

	log.Info("Redis client connected successfully")
}
