// @title           Photogenie API
// @version         1.0
// @description     Image sharing service: posts with categories and tags, view and download accounting, live feed events.
// @host            localhost:8080
// @schemes         http https
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"log"
	"net/http"
	"photogenie/internal/api"
	"photogenie/internal/config"
	"photogenie/internal/database"
	"photogenie/internal/events"
	"photogenie/internal/storage"
	"photogenie/internal/websocket"
	"time"

	"photogenie/docs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Could not load configuration: %v", err)
	}

	ctx := context.Background()
	dbpool, err := database.NewPool(ctx, cfg.DB.Source, cfg.DB.MaxConns)
	if err != nil {
		log.Fatalf("Could not connect to the database: %v", err)
	}
	defer dbpool.Close()

	if err := dbpool.Ping(ctx); err != nil {
		log.Fatalf("Could not ping the database: %v", err)
	}
	log.Println("Connected to the database")

	localStorage, err := storage.NewLocalStorage(cfg.Storage.Path)
	if err != nil {
		log.Fatalf("Could not initialise local storage: %v", err)
	}
	log.Printf("Images will be stored in: %s", cfg.Storage.Path)

	wsHub := websocket.NewHub()
	go wsHub.Run()

	publishers := events.Fanout{wsHub}
	if cfg.NATS.URL != "" {
		nc, err := events.ConnectNATS(cfg.NATS.URL, 5, 2*time.Second)
		if err != nil {
			log.Printf("WARN: NATS unavailable, feed events stay local: %v", err)
		} else {
			defer nc.Close()
			publishers = append(publishers, events.NewNATSPublisher(nc, cfg.NATS.SubjectPrefix))
			log.Printf("Publishing feed events to NATS at %s", cfg.NATS.URL)
		}
	}

	docs.SwaggerInfo.Host = cfg.AppHost

	store := database.NewStore(dbpool)
	server := api.NewServer(cfg, store, localStorage, wsHub, publishers)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Starting server on %s", cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Could not start server: %v", err)
	}
}
