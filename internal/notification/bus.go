package notification

import (
	"fmt"
	"time"
)

// Типы событий викторины
const (
	EventQuizStarted    = "quiz:started"
	EventQuizSubmission = "quiz:submission"
	EventQuizCompleted  = "quiz:completed"
	EventQuizCancelled  = "quiz:cancelled"
)

// Event представляет событие, рассылаемое участникам викторины
type Event struct {
	Type      string      `json:"type"`
	QuizID    uint        `json:"quiz_id"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Bus определяет контракт шины уведомлений.
// Публикация best-effort, at-most-once: ошибки логируются и никогда
// не приводят к сбою основной операции.
type Bus interface {
	// Publish отправляет событие в канал викторины
	Publish(event Event)
	// Close освобождает ресурсы шины
	Close() error
}

// QuizChannel возвращает имя канала для событий конкретной викторины
func QuizChannel(quizID uint) string {
	return fmt.Sprintf("quiz:%d", quizID)
}

// NewEvent создает событие с текущим временем
func NewEvent(eventType string, quizID uint, payload interface{}) Event {
	return Event{
		Type:      eventType,
		QuizID:    quizID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}
