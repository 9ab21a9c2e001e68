package redis

import (
	"strconv"

	"auditlink_chat/internal/config"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

var cacheService AsyncCacheService

// Init connects to Redis and starts the async cache worker pool.
func Init() {
	conf := config.GetConfig()
	addr := conf.RedisConfig.Host + ":" + strconv.Itoa(conf.RedisConfig.Port)

	redisClient = redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     conf.RedisConfig.Password,
		DB:           conf.RedisConfig.Db,
		PoolSize:     50,
		MinIdleConns: 15,
	})

	cacheService = NewRedisCache(redisClient, 15, 3000)
}

// GetCacheService returns the process-wide cache service for injection
// into the service layer.
func GetCacheService() AsyncCacheService {
	return cacheService
}
