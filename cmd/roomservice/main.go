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
	"github.com/Lavizord/gridbattle/internal/restclient"
	"github.com/Lavizord/gridbattle/internal/roomservice"
)

var redisClient *redisdb.RedisClient
var name = "RoomService"

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

	// User ids are checked against the user service.
	users := restclient.New(config.Cfg.URL("userservice", "http://localhost:3001"), "", "")
	handler := httpapi.WithCors(roomservice.NewHandler(redisClient, users).Router(), config.Cfg.Cors.AllowedOrigins)
	if err := httpapi.ListenAndServe(ctx, name, config.Cfg.Port("roomservice", 3002), handler); err != nil {
		logger.Default.Fatalf("[%s] - %v", name, err)
	}
}
