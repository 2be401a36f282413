package main

import (
	"log"
	"net/http"
	"os"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"neuro-arena/internal/config"
	"neuro-arena/internal/db"
	"neuro-arena/internal/server"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	var conn *gorm.DB
	if os.Getenv("DATABASE_URL") != "" {
		opened, err := db.Open(cfg)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		if err := db.Migrate(opened); err != nil {
			log.Fatalf("database migration failed: %v", err)
		}
		conn = opened
	} else {
		log.Println("DATABASE_URL not set, running without score persistence")
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
	} else {
		log.Println("REDIS_ADDR not set, serving leaderboards from postgres only")
	}

	addr := ":8080"
	if env := os.Getenv("PORT"); env != "" {
		addr = ":" + env
	}

	srv := server.New(conn, rdb, cfg)
	log.Printf("neuro-arena server listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}
