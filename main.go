package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bellapacxx/inzo-lotto/bot"
	"github.com/bellapacxx/inzo-lotto/config"
	"github.com/bellapacxx/inzo-lotto/routes"
	"github.com/bellapacxx/inzo-lotto/services"
	"github.com/bellapacxx/inzo-lotto/store"
	"github.com/bellapacxx/inzo-lotto/utils/logger"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// openStore picks the round state backend named by STORE_DRIVER.
func openStore(cfg config.Config) (store.Store, error) {
	if cfg.StoreDriver == config.StorePostgres {
		db, err := config.ConnectDB(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store.NewGormStore(db), nil
	}
	return store.NewFileStore(cfg.DataFile), nil
}

// setupRouter initializes Gin routes and middleware
func setupRouter(cfg config.Config, deps routes.Deps) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, deps)
	return r
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		log.Fatalf("[FATAL] Invalid LOG_LEVEL: %v", err)
	}
	defer logger.Sync()

	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("[FATAL] Failed to open store: %v", err)
	}

	lottery := services.NewLottery(cfg, st, nil)
	hub := services.NewHub()
	lottery.OnDraw(hub.PublishOutcome)

	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		log.Fatalf("[FATAL] Failed to create Discord session: %v", err)
	}
	dg.Identify.Intents = bot.Intents

	b := bot.New(dg, lottery)
	scheduler := services.NewScheduler(lottery, b, cfg.CheckSchedule)
	b.WhenReady(func() {
		if err := scheduler.Start(); err != nil {
			logger.Errorf("start scheduler: %v", err)
		}
	})
	b.Register(dg)

	if err := dg.Open(); err != nil {
		log.Fatalf("[FATAL] Failed to connect to Discord: %v", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: setupRouter(cfg, routes.Deps{Lottery: lottery, Hub: hub, AllowedOrigins: cfg.AllowedOrigins}),
	}
	go func() {
		logger.Infof("🚀 InzoLotto keep-alive server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[FATAL] Failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down")

	scheduler.Stop()
	b.Close()
	hub.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("http shutdown: %v", err)
	}
	if err := dg.Close(); err != nil {
		logger.Errorf("discord close: %v", err)
	}
}
