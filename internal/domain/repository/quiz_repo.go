package repository

import (
	"time"

	"github.com/studyai/quiz-api/internal/domain/entity"
)

// QuizFilters определяет фильтры для поиска викторин
type QuizFilters struct {
	Status     string // Фильтр по статусу (draft, scheduled, active, completed, cancelled)
	Difficulty string // Фильтр по сложности (easy, medium, hard)
	Search     string // Поиск по названию/теме
}

// QuizRepository определяет методы для работы с викторинами
type QuizRepository interface {
	// Create сохраняет викторину вместе с вопросами атомарно.
	// Возвращает ErrAccessCodeTaken при нарушении уникальности кода доступа.
	Create(quiz *entity.Quiz) error
	GetByID(id uint) (*entity.Quiz, error)
	GetWithQuestions(id uint) (*entity.Quiz, error)
	// GetByAccessCode возвращает приватную викторину по коду доступа
	GetByAccessCode(code string) (*entity.Quiz, error)
	UpdateStatus(quizID uint, status string) error
	// UpdateScheduleInfo точечно обновляет scheduled_at и status без full Save
	UpdateScheduleInfo(quizID uint, scheduledAt time.Time, status string) error
	// ListVisible возвращает публичные викторины, викторины созданные пользователем
	// и викторины, к которым он присоединился - без дубликатов, с общим количеством
	ListVisible(userID uint, filters QuizFilters, limit, offset int) ([]entity.Quiz, int64, error)
	Delete(id uint) error
}
