package postgres

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/studyai/quiz-api/internal/domain/entity"
	"github.com/studyai/quiz-api/internal/domain/repository"
	apperrors "github.com/studyai/quiz-api/internal/pkg/errors"
)

// QuizRepo реализует repository.QuizRepository
type QuizRepo struct {
	db *gorm.DB
}

// NewQuizRepo создает новый репозиторий викторин
func NewQuizRepo(db *gorm.DB) *QuizRepo {
	return &QuizRepo{db: db}
}

// Create сохраняет викторину вместе с вопросами в одной транзакции (gorm associations).
// Нарушение уникальности access_code транслируется в repository.ErrAccessCodeTaken,
// чтобы сервис мог перегенерировать код и повторить попытку.
func (r *QuizRepo) Create(quiz *entity.Quiz) error {
	if err := r.db.Create(quiz).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %q", repository.ErrAccessCodeTaken, derefCode(quiz.AccessCode))
		}
		return err
	}
	return nil
}

// GetByID возвращает викторину по ID
func (r *QuizRepo) GetByID(id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.First(&quiz, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

// GetWithQuestions возвращает викторину вместе с вопросами в исходном порядке
func (r *QuizRepo) GetWithQuestions(id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.position ASC, questions.id ASC")
	}).First(&quiz, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

// GetByAccessCode возвращает приватную викторину по коду доступа
func (r *QuizRepo) GetByAccessCode(code string) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.Where("access_code = ?", code).First(&quiz).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

// UpdateStatus обновляет статус викторины
func (r *QuizRepo) UpdateStatus(quizID uint, status string) error {
	return r.db.Model(&entity.Quiz{}).
		Where("id = ?", quizID).
		Update("status", status).
		Error
}

// UpdateScheduleInfo точечно обновляет scheduled_at и status без полного Save
func (r *QuizRepo) UpdateScheduleInfo(quizID uint, scheduledAt time.Time, status string) error {
	return r.db.Model(&entity.Quiz{}).
		Where("id = ?", quizID).
		Updates(map[string]interface{}{
			"scheduled_at": scheduledAt,
			"status":       status,
		}).Error
}

// ListVisible возвращает объединение: публичные викторины, викторины созданные
// пользователем и викторины, к которым он присоединился. Дубликаты исключаются
// самим условием OR - каждая викторина попадает в выборку ровно один раз.
func (r *QuizRepo) ListVisible(userID uint, filters repository.QuizFilters, limit, offset int) ([]entity.Quiz, int64, error) {
	query := r.db.Model(&entity.Quiz{}).
		Where("visibility = ? OR creator_id = ? OR id IN (SELECT quiz_id FROM participants WHERE user_id = ?)",
			entity.QuizVisibilityPublic, userID, userID)

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Difficulty != "" {
		query = query.Where("difficulty = ?", filters.Difficulty)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where("title ILIKE ? OR topic ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var quizzes []entity.Quiz
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&quizzes).Error
	if err != nil {
		return nil, 0, err
	}

	return quizzes, total, nil
}

// Delete удаляет викторину
func (r *QuizRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.Quiz{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// isUniqueViolation проверяет Postgres unique violation (23505) для pgconn и lib/pq драйверов
func isUniqueViolation(err error) bool {
	// pgx/v5 driver (pgconn.PgError)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// lib/pq driver (pq.Error)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}

func derefCode(code *string) string {
	if code == nil {
		return ""
	}
	return *code
}
