package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"auditlink_chat/internal/config"
	dao "auditlink_chat/internal/dao/mysql"
	myredis "auditlink_chat/internal/dao/redis"
	"auditlink_chat/internal/handler"
	"auditlink_chat/internal/https_server"
	"auditlink_chat/internal/infrastructure/logger"
	"auditlink_chat/internal/service"
	"auditlink_chat/internal/service/chat"
	"auditlink_chat/pkg/util/jwt"
	"auditlink_chat/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	conf := config.GetConfig()

	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("logger initialised")

	snowflake.Init(conf.SnowflakeConfig.MachineID)
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)

	repos := dao.Init()
	zap.L().Info("mysql initialised")

	myredis.Init()
	cache := myredis.GetCacheService()
	zap.L().Info("redis initialised")

	svcs := service.NewServices(repos, cache)

	chatServer := chat.NewChatServer(chat.ChatServerConfig{
		Mode:        conf.KafkaConfig.MessageMode,
		ThreadRepo:  repos.Thread,
		MessageRepo: repos.Message,
		UserRepo:    repos.User,
		Cache:       cache,
	})
	go chatServer.Start()
	zap.L().Info("chat server started", zap.String("mode", conf.KafkaConfig.MessageMode))

	if err := handler.InitTrans(); err != nil {
		zap.L().Fatal("validator translator init failed", zap.Error(err))
	}

	handlers := handler.NewHandlers(svcs, chatServer.Hub, repos.User)
	engine := https_server.Init(handlers)

	go func() {
		addr := fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port)
		if err := engine.Run(addr); err != nil {
			zap.L().Fatal("http server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	chatServer.Close()
	zap.L().Info("server shut down")
}
