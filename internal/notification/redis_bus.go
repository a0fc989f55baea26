package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-redis/redis/v8"
)

// RedisBus реализует Bus поверх Redis pub/sub.
// Каждая викторина получает собственный канал quiz:{id}.
type RedisBus struct {
	client redis.UniversalClient
	ctx    context.Context
}

// NewRedisBus создает шину уведомлений на Redis pub/sub
func NewRedisBus(client redis.UniversalClient) (*RedisBus, error) {
	if client == nil {
		return nil, fmt.Errorf("Redis client cannot be nil for RedisBus")
	}
	return &RedisBus{
		client: client,
		ctx:    context.Background(),
	}, nil
}

// Publish отправляет событие в канал викторины.
// Ошибки публикации логируются и проглатываются: уведомления best-effort
// и не должны ломать основную операцию.
func (b *RedisBus) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[RedisBus] Ошибка сериализации события %s для викторины #%d: %v", event.Type, event.QuizID, err)
		return
	}
	if err := b.client.Publish(b.ctx, QuizChannel(event.QuizID), data).Err(); err != nil {
		log.Printf("[RedisBus] Ошибка публикации события %s для викторины #%d: %v", event.Type, event.QuizID, err)
	}
}

// Subscribe подписывается на каналы всех викторин (паттерн quiz:*).
// Используется WebSocket-хабом для доставки событий подключенным клиентам.
func (b *RedisBus) Subscribe(ctx context.Context) (<-chan Event, error) {
	pubsub := b.client.PSubscribe(ctx, "quiz:*")

	// Проверяем, что подписка установлена
	if _, err := pubsub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("failed to subscribe to quiz channels: %w", err)
	}

	events := make(chan Event, 64)
	go func() {
		defer close(events)
		defer pubsub.Close()
		for msg := range pubsub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("[RedisBus] Пропущено некорректное сообщение в канале %s: %v", msg.Channel, err)
				continue
			}
			select {
			case events <- event:
			default:
				// Переполнение буфера: событие отбрасывается, доставка best-effort
				log.Printf("[RedisBus] Буфер событий переполнен, событие %s отброшено", event.Type)
			}
		}
	}()

	return events, nil
}

// Close освобождает ресурсы шины. Сам Redis-клиент закрывается владельцем.
func (b *RedisBus) Close() error {
	return nil
}

// NoopBus реализует Bus без реальной доставки. Используется в тестах
// и когда Redis не сконфигурирован.
type NoopBus struct{}

// Publish ничего не делает
func (b *NoopBus) Publish(event Event) {
	log.Printf("[NoopBus] Событие %s для викторины #%d (доставка отключена)", event.Type, event.QuizID)
}

// Close ничего не делает
func (b *NoopBus) Close() error { return nil }
