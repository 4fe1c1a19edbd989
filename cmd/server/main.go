package main

import (
	"log"

	"github.com/gaitlab/gait-backend-go/internal/api"
	"github.com/gaitlab/gait-backend-go/internal/config"
	"github.com/gaitlab/gait-backend-go/internal/database"
)

func main() {
	cfg := config.Load()

	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	r := api.SetupRouter(cfg)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
