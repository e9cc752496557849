package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"lingua_edu_backend/internal/config"

	"github.com/go-redis/redis/v8"
)

// InitRedis 建立 Redis 连接并探活。这里只承载阶梯缓存这类可丢数据，
// 超时宁可收紧让缓存层快速回源，不能拖慢请求链路。
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, err
	}

	log.Println("Redis connection established")
	return rdb, nil
}
