package api

import (
	"log"
	"net/http"
	"photogenie/internal/auth"
	"photogenie/internal/websocket"
)

// ServeWsHandler subscribes the caller to the live feed. The feed is public;
// a token, when given, only labels the connection with its user.
func (s *Server) ServeWsHandler(w http.ResponseWriter, r *http.Request) {
	var userID int64
	if tokenString := r.URL.Query().Get("token"); tokenString != "" {
		claims, err := auth.VerifyJWT(tokenString, s.config.JWT.Secret)
		if err != nil {
			log.Printf("WS connection attempt with invalid token: %v", err)
			writeDetail(w, http.StatusUnauthorized, detailInvalidToken)
			return
		}
		userID = claims.UserID
	}

	conn, err := websocket.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}

	client := websocket.NewClient(s.wsHub, conn, userID)
	s.wsHub.Register <- client

	go client.ReadPump()
	go client.WritePump()
}
