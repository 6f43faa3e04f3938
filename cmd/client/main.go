package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Lavizord/gridbattle/internal/config"
	"github.com/Lavizord/gridbattle/internal/logger"
	"github.com/Lavizord/gridbattle/internal/messages"
	"github.com/Lavizord/gridbattle/internal/realtime"
	"github.com/Lavizord/gridbattle/internal/restclient"
	"github.com/Lavizord/gridbattle/internal/session"
	"github.com/Lavizord/gridbattle/internal/terminal"
)

var name = "Client"

// The client runs without a config file too, against local services.
func loadConfig() *config.Config {
	cfg := &config.Config{Services: map[string]config.Service{}}
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		loaded, err := config.ReadConfig(path)
		if err != nil {
			logger.Default.Fatalf("[%s] - %v", name, err)
		}
		cfg = loaded
	}
	level := cfg.Log.Level
	if level == "" {
		level = "warn"
	}
	logger.SetLevel(level)
	return cfg
}

func main() {
	defer logger.Sync()
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rest := restclient.New(
		cfg.URL("userservice", "http://localhost:3001"),
		cfg.URL("roomservice", "http://localhost:3002"),
		cfg.URL("gameservice", "http://localhost:3003"),
	)

	events := make(chan messages.Event, 64)
	conn, err := realtime.Dial(ctx, cfg.WSURL("gameservice", "ws://localhost:3003/ws"), func(e messages.Event) {
		events <- e
	})
	if err != nil {
		logger.Default.Fatalf("[%s] - %v", name, err)
	}
	defer conn.Close()

	view := terminal.NewView(os.Stdout)
	sess := session.New(rest, conn, view)
	go func() {
		for {
			select {
			case e := <-events:
				sess.HandleEvent(e)
			case <-conn.Done():
				view.Alert("connection to the game service lost")
				stop()
				return
			}
		}
	}()

	if err := terminal.NewLoop(sess, view, os.Stdout).Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		logger.Default.Errorf("[%s] - %v", name, err)
	}
}
