package repository

import (
	"github.com/studyai/quiz-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с вопросами
type QuestionRepository interface {
	GetByQuizID(quizID uint) ([]entity.Question, error)
	CreateBatch(questions []entity.Question) error
}
