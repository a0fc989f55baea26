package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/studyai/quiz-api/internal/service"
	ws "github.com/studyai/quiz-api/internal/websocket"
)

// WSHandler обрабатывает WebSocket-подключения к событиям викторин
type WSHandler struct {
	hub         *ws.Hub
	quizService *service.QuizService
	upgrader    gorillaws.Upgrader
}

// NewWSHandler создает новый обработчик WebSocket-подключений
func NewWSHandler(hub *ws.Hub, quizService *service.QuizService) *WSHandler {
	return &WSHandler{
		hub:         hub,
		quizService: quizService,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Браузерные клиенты подключаются с разных origin,
			// доступ контролируется JWT, а не origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Subscribe подключает клиента к событиям викторины
// GET /api/quizzes/:id/events (WebSocket upgrade)
func (h *WSHandler) Subscribe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c)
	if !ok {
		return
	}

	// Подписка подчиняется тем же правилам доступа, что и прохождение
	if _, err := h.quizService.GetQuizForTaking(quizID, userID); err != nil {
		respondError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WSHandler] Не удалось обновить соединение user=%d quiz=%d: %v", userID, quizID, err)
		return
	}

	client := ws.NewClient(h.hub, conn, userID, quizID)
	go client.WritePump()
	go client.ReadPump()
}
