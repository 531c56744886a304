package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/fencelab/fencing-system/live"
	"github.com/fencelab/fencing-system/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS для WebSocket решается на уровне reverse proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub *live.Hub
}

func NewWebSocketHandler(hub *live.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// StandingsHandler обрабатывает GET /ws/standings/{bracket}: подписка
// на живые обновления таблицы категории.
func (h *WebSocketHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	bracket := models.Bracket(chi.URLParam(r, "bracket"))
	if !bracket.Valid() {
		badRequestResponse(w, r, errors.New("unknown bracket"))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам пишет ответ при ошибке.
		return
	}

	client := live.NewClient(h.hub, conn, string(bracket))
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
