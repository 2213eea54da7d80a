package main

import (
	"log"

	"anoa.com/cpquest/internal/app"
	"anoa.com/cpquest/internal/bootstrap"
	"anoa.com/cpquest/internal/config"
	"anoa.com/cpquest/internal/server"
	"anoa.com/cpquest/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect(cfg.DatabaseURL)
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := bootstrap.SeedBadges(db); err != nil {
		log.Fatalf("failed to seed badges: %v", err)
	}

	redisClient := database.ConnectRedis(cfg.RedisURL)

	a, err := app.New(cfg, db, redisClient)
	if err != nil {
		log.Fatalf("failed to build app: %v", err)
	}

	srv := server.NewServer(a)
	log.Printf("🚀 Listening on :%s (%s)", cfg.Port, cfg.AppEnv)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}
