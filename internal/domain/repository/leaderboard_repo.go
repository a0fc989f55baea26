package repository

import (
	"github.com/studyai/quiz-api/internal/domain/entity"
	"gorm.io/gorm"
)

// LeaderboardRepository определяет методы для работы с таблицей лидеров
type LeaderboardRepository interface {
	// Rebuild полностью перестраивает таблицу лидеров викторины внутри транзакции:
	// удаляет старые записи и вставляет новый упорядоченный снимок.
	Rebuild(tx *gorm.DB, quizID uint, entries []entity.LeaderboardEntry) error
	GetByQuizID(quizID uint) ([]entity.LeaderboardEntry, error)
}
