package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/studyai/quiz-api/internal/domain/entity"
	apperrors "github.com/studyai/quiz-api/internal/pkg/errors"
)

// ParticipantRepo реализует repository.ParticipantRepository
type ParticipantRepo struct {
	db *gorm.DB
}

// NewParticipantRepo создает новый репозиторий участников
func NewParticipantRepo(db *gorm.DB) *ParticipantRepo {
	return &ParticipantRepo{db: db}
}

// Create сохраняет нового участника
func (r *ParticipantRepo) Create(participant *entity.Participant) error {
	return r.db.Create(participant).Error
}

// GetByQuizAndUser возвращает участника викторины по паре (quizID, userID)
func (r *ParticipantRepo) GetByQuizAndUser(quizID, userID uint) (*entity.Participant, error) {
	var participant entity.Participant
	err := r.db.Where("quiz_id = ? AND user_id = ?", quizID, userID).First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &participant, nil
}

// GetByQuizID возвращает всех участников викторины
func (r *ParticipantRepo) GetByQuizID(quizID uint) ([]entity.Participant, error) {
	var participants []entity.Participant
	err := r.db.Where("quiz_id = ?", quizID).Order("joined_at ASC").Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

// GetCompletedByQuizID возвращает участников с завершенной попыткой
func (r *ParticipantRepo) GetCompletedByQuizID(quizID uint) ([]entity.Participant, error) {
	var participants []entity.Participant
	err := r.db.Where("quiz_id = ? AND completed_at IS NOT NULL", quizID).Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

// CountByQuizID возвращает общее число участников викторины
func (r *ParticipantRepo) CountByQuizID(quizID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Participant{}).Where("quiz_id = ?", quizID).Count(&count).Error
	return count, err
}

// Update сохраняет изменения участника
func (r *ParticipantRepo) Update(participant *entity.Participant) error {
	return r.db.Save(participant).Error
}
