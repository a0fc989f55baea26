package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/studyai/quiz-api/internal/notification"
)

// Hub раздает события шины уведомлений подключенным WebSocket-клиентам.
// Клиенты группируются по викторинам: событие quiz:{id} доставляется
// только подписчикам этой викторины.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[uint]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	events     <-chan notification.Event
}

// NewHub создает новый хаб поверх канала событий шины
func NewHub(events <-chan notification.Event) *Hub {
	return &Hub{
		rooms:      make(map[uint]map[*Client]bool),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		events:     events,
	}
}

// Run обрабатывает регистрацию клиентов и доставку событий до отмены контекста
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[client.quizID]
			if !ok {
				room = make(map[*Client]bool)
				h.rooms[client.quizID] = room
			}
			room[client] = true
			h.mu.Unlock()
			log.Printf("[Hub] Клиент user=%d подключен к викторине #%d", client.userID, client.quizID)

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.quizID]; ok {
				if _, exists := room[client]; exists {
					delete(room, client)
					close(client.send)
					if len(room) == 0 {
						delete(h.rooms, client.quizID)
					}
				}
			}
			h.mu.Unlock()

		case event, ok := <-h.events:
			if !ok {
				h.closeAll()
				return
			}
			h.broadcast(event)
		}
	}
}

// broadcast доставляет событие всем клиентам комнаты викторины.
// Медленные клиенты пропускают событие: доставка best-effort.
func (h *Hub) broadcast(event notification.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Hub] Ошибка сериализации события %s: %v", event.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[event.QuizID] {
		select {
		case client.send <- data:
		default:
			log.Printf("[Hub] Буфер клиента user=%d переполнен, событие %s пропущено", client.userID, event.Type)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for quizID, room := range h.rooms {
		for client := range room {
			close(client.send)
		}
		delete(h.rooms, quizID)
	}
}
