package postgres

import (
	"gorm.io/gorm"

	"github.com/studyai/quiz-api/internal/domain/entity"
)

// LeaderboardRepo реализует repository.LeaderboardRepository
type LeaderboardRepo struct {
	db *gorm.DB
}

// NewLeaderboardRepo создает новый репозиторий таблицы лидеров
func NewLeaderboardRepo(db *gorm.DB) *LeaderboardRepo {
	return &LeaderboardRepo{db: db}
}

// Rebuild полностью перестраивает таблицу лидеров викторины внутри переданной транзакции.
// Инкрементального обновления нет намеренно: одна новая завершенная попытка
// может сдвинуть ранг каждого участника ниже нее.
func (r *LeaderboardRepo) Rebuild(tx *gorm.DB, quizID uint, entries []entity.LeaderboardEntry) error {
	if err := tx.Where("quiz_id = ?", quizID).Delete(&entity.LeaderboardEntry{}).Error; err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	return tx.Create(&entries).Error
}

// GetByQuizID возвращает таблицу лидеров викторины в порядке рангов
func (r *LeaderboardRepo) GetByQuizID(quizID uint) ([]entity.LeaderboardEntry, error) {
	var entries []entity.LeaderboardEntry
	err := r.db.Where("quiz_id = ?", quizID).Order("rank ASC").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
