package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Lavizord/gridbattle/internal/config"
	"github.com/Lavizord/gridbattle/internal/gameservice"
	"github.com/Lavizord/gridbattle/internal/httpapi"
	"github.com/Lavizord/gridbattle/internal/logger"
	"github.com/Lavizord/gridbattle/internal/postgrescli"
	"github.com/Lavizord/gridbattle/internal/redisdb"
	"github.com/Lavizord/gridbattle/internal/restclient"
)

var redisClient *redisdb.RedisClient
var postgresClient *postgrescli.PostgresCli
var name = "GameService"

func init() {
	config.LoadConfig()
	logger.SetLevel(config.Cfg.Log.Level)
	client, err := redisdb.NewRedisClient(config.Cfg.Redis.Addr, config.Cfg.Redis.DB)
	if err != nil {
		logger.Default.Fatalf("[%s-Redis] Error initializing Redis client: %v", name, err)
	}
	redisClient = client

	if !config.Cfg.PostgresEnabled() {
		logger.Default.Infof("[%s-PostgreSQL] not configured, finished games are not recorded", name)
		return
	}
	sqlcliente, err := postgrescli.NewPostgresCli(
		config.Cfg.Postgres.User,
		config.Cfg.Postgres.Password,
		config.Cfg.Postgres.DBName,
		config.Cfg.Postgres.Host,
		config.Cfg.Postgres.Port,
	)
	if err != nil {
		logger.Default.Fatalf("[%s-PostgreSQL] Error initializing POSTGRES client: %v", name, err)
	}
	postgresClient = sqlcliente
}

func main() {
	defer logger.Sync()
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var ledger gameservice.ResultRecorder
	if postgresClient != nil {
		defer postgresClient.Close()
		ledger = postgresClient
	}

	rooms := restclient.New("", config.Cfg.URL("roomservice", "http://localhost:3002"), "")
	service := gameservice.NewService(redisClient, rooms, ledger)
	hub := gameservice.NewHub(service)
	go hub.Run(ctx)

	handler := httpapi.WithCors(gameservice.NewHandler(service, hub).Router(), config.Cfg.Cors.AllowedOrigins)
	if err := httpapi.ListenAndServe(ctx, name, config.Cfg.Port("gameservice", 3003), handler); err != nil {
		logger.Default.Fatalf("[%s] - %v", name, err)
	}
}
