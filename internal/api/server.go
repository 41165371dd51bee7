package api

import (
	"photogenie/internal/config"
	"photogenie/internal/database"
	"photogenie/internal/events"
	"photogenie/internal/storage"
	"photogenie/internal/websocket"
)

type Server struct {
	config    *config.Config
	store     *database.Store
	storage   *storage.LocalStorage
	wsHub     *websocket.Hub
	publisher events.Publisher
	limiter   *IPRateLimiter
}

// NewServer wires the HTTP handlers. A nil publisher means events only reach
// websocket clients.
func NewServer(cfg *config.Config, store *database.Store, storage *storage.LocalStorage, wsHub *websocket.Hub, publisher events.Publisher) *Server {
	if publisher == nil {
		publisher = wsHub
	}
	return &Server{
		config:    cfg,
		store:     store,
		storage:   storage,
		wsHub:     wsHub,
		publisher: publisher,
		limiter:   NewIPRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window),
	}
}
