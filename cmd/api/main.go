package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/salonworks/booking-api/internal/config"
	dbpkg "github.com/salonworks/booking-api/internal/db"
	"github.com/salonworks/booking-api/internal/routes"
)

func main() {

	cfg := config.Load()
	db := dbpkg.NewDB(cfg)

	if err := dbpkg.SeedAdmin(db, cfg); err != nil {
		log.Fatalf("failed to seed admin user: %v", err)
	}

	r := gin.Default()

	routes.RegisterRoutes(r, db, cfg)

	log.Printf("Server running on %s", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
