package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Lavizord/gridbattle/internal/config"
	"github.com/Lavizord/gridbattle/internal/httpapi"
	"github.com/Lavizord/gridbattle/internal/logger"
	"github.com/Lavizord/gridbattle/internal/redisdb"
	"github.com/Lavizord/gridbattle/internal/userservice"
)

var redisClient *redisdb.RedisClient
var name = "UserService"

func init() {
	config.LoadConfig()
	logger.SetLevel(config.Cfg.Log.Level)
	client, err := redisdb.NewRedisClient(config.Cfg.Redis.Addr, config.Cfg.Redis.DB)
	if err != nil {
		logger.Default.Fatalf("[%s-Redis] Error initializing Redis client: %v", name, err)
	}
	redisClient = client
}

func main() {
	defer logger.Sync()
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := httpapi.WithCors(userservice.NewHandler(redisClient).Router(), config.Cfg.Cors.AllowedOrigins)
	if err := httpapi.ListenAndServe(ctx, name, config.Cfg.Port("userservice", 3001), handler); err != nil {
		logger.Default.Fatalf("[%s] - %v", name, err)
	}
}
