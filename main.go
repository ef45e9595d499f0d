package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"consignpos/m/internal/api"
	"consignpos/m/internal/config"
	"consignpos/m/internal/database"
	"consignpos/m/internal/migrations"
	"consignpos/m/internal/seed"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	db := database.Connect(cfg.DatabaseDSN)
	defer db.Close()

	migrations.Run(db)
	seed.EnsureAdmin(db, cfg.AdminEmail, cfg.AdminPassword)

	handler := api.New(db, cfg)

	log.Printf("ConsignPOS server starting on :%s", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, handler.Router()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
