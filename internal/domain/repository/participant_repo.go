package repository

import (
	"github.com/studyai/quiz-api/internal/domain/entity"
)

// ParticipantRepository определяет методы для работы с участниками викторин
type ParticipantRepository interface {
	Create(participant *entity.Participant) error
	GetByQuizAndUser(quizID, userID uint) (*entity.Participant, error)
	GetByQuizID(quizID uint) ([]entity.Participant, error)
	// GetCompletedByQuizID возвращает участников с завершенной попыткой
	GetCompletedByQuizID(quizID uint) ([]entity.Participant, error)
	CountByQuizID(quizID uint) (int64, error)
	Update(participant *entity.Participant) error
}
