package postgres

import (
	"gorm.io/gorm"

	"github.com/studyai/quiz-api/internal/domain/entity"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// GetByQuizID возвращает все вопросы викторины в исходном порядке
func (r *QuestionRepo) GetByQuizID(quizID uint) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.Where("quiz_id = ?", quizID).Order("position ASC, id ASC").Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// CreateBatch сохраняет вопросы пакетом
func (r *QuestionRepo) CreateBatch(questions []entity.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.Create(&questions).Error
}
