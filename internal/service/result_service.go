package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/studyai/quiz-api/internal/domain/entity"
	"github.com/studyai/quiz-api/internal/domain/repository"
	"github.com/studyai/quiz-api/internal/notification"
	apperrors "github.com/studyai/quiz-api/internal/pkg/errors"
)

// Время жизни кеша таблицы лидеров
const leaderboardCacheTTL = 30 * time.Second

// SubmitResult представляет итог отправки ответов
type SubmitResult struct {
	Score      int `json:"score"`
	Percentage int `json:"percentage"`
	Rank       int `json:"rank"`
}

// QuizAnalytics представляет производные счетчики викторины
type QuizAnalytics struct {
	TotalAttempts  int `json:"total_attempts"`
	AverageScore   int `json:"average_score"`
	CompletionRate int `json:"completion_rate"`
}

// ResultService предоставляет методы для работы с результатами и таблицей лидеров
type ResultService struct {
	participantRepo repository.ParticipantRepository
	leaderboardRepo repository.LeaderboardRepository
	quizRepo        repository.QuizRepository
	cacheRepo       repository.CacheRepository
	bus             notification.Bus
	db              *gorm.DB
}

// NewResultService создает новый сервис результатов
func NewResultService(
	participantRepo repository.ParticipantRepository,
	leaderboardRepo repository.LeaderboardRepository,
	quizRepo repository.QuizRepository,
	cacheRepo repository.CacheRepository,
	bus notification.Bus,
	db *gorm.DB,
) *ResultService {
	return &ResultService{
		participantRepo: participantRepo,
		leaderboardRepo: leaderboardRepo,
		quizRepo:        quizRepo,
		cacheRepo:       cacheRepo,
		bus:             bus,
		db:              db,
	}
}

// SubmitAnswers обрабатывает отправку ответов участником.
//
// Вся операция выполняется в одной транзакции с блокировкой строки викторины
// (SELECT ... FOR UPDATE): две одновременные отправки по одной викторине
// сериализуются, и пересчет таблицы лидеров всегда видит последнюю запись.
// Разные викторины не конкурируют между собой.
//
// Пересдача полностью замещает предыдущую попытку. Счетчик total_attempts
// растет при каждой отправке, включая пересдачи. Ответов может быть меньше,
// чем вопросов - недостающие считаются неправильными.
func (s *ResultService) SubmitAnswers(quizID, userID uint, answers []AnswerSubmission, totalTimeSec int) (*SubmitResult, error) {
	if totalTimeSec < 0 {
		return nil, fmt.Errorf("%w: total time cannot be negative", apperrors.ErrValidation)
	}

	var result SubmitResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Блокируем строку викторины - сериализация отправок по quiz id
		var quiz entity.Quiz
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&quiz, quizID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return err
		}

		if !quiz.IsActive() {
			return fmt.Errorf("%w: quiz is %s, submissions are accepted only while active", apperrors.ErrConflict, quiz.Status)
		}

		var questions []entity.Question
		if err := tx.Where("quiz_id = ?", quizID).Order("position ASC, id ASC").Find(&questions).Error; err != nil {
			return fmt.Errorf("failed to load questions: %w", err)
		}

		var participant entity.Participant
		if err := tx.Where("quiz_id = ? AND user_id = ?", quizID, userID).First(&participant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: join the quiz before submitting answers", apperrors.ErrForbidden)
			}
			return err
		}

		// Пересдача: предыдущая попытка полностью сбрасывается
		if participant.HasCompleted() {
			participant.ResetAttempt()
		}

		records, score, correctCount := scoreAnswers(questions, answers)
		now := time.Now()

		participant.Answers = records
		participant.Score = score
		participant.Percentage = roundPercent(correctCount, len(questions))
		participant.CompletedAt = &now
		participant.TotalTimeSec = totalTimeSec

		if err := tx.Save(&participant).Error; err != nil {
			return fmt.Errorf("failed to save participant attempt: %w", err)
		}

		// Счетчик событий отправки, не уникальных участников
		if err := tx.Model(&entity.Quiz{}).Where("id = ?", quizID).
			Update("total_attempts", gorm.Expr("total_attempts + 1")).Error; err != nil {
			return fmt.Errorf("failed to increment attempts: %w", err)
		}

		ranks, err := s.recomputeLeaderboard(tx, quizID)
		if err != nil {
			return err
		}

		result = SubmitResult{
			Score:      participant.Score,
			Percentage: participant.Percentage,
			Rank:       ranks[userID],
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Кеш таблицы лидеров устарел
	if s.cacheRepo != nil {
		if err := s.cacheRepo.Delete(leaderboardCacheKey(quizID)); err != nil {
			log.Printf("[ResultService] Не удалось сбросить кеш таблицы лидеров викторины #%d: %v", quizID, err)
		}
	}

	s.bus.Publish(notification.NewEvent(notification.EventQuizSubmission, quizID, map[string]interface{}{
		"user_id": userID,
		"score":   result.Score,
	}))

	log.Printf("[ResultService] Участник #%d отправил ответы в викторине #%d: score=%d percentage=%d rank=%d",
		userID, quizID, result.Score, result.Percentage, result.Rank)
	return &result, nil
}

// recomputeLeaderboard полностью перестраивает таблицу лидеров викторины
// внутри переданной транзакции и обновляет производную аналитику.
//
// Пересчет всегда полный: одна новая завершенная попытка может сместить
// ранг любого участника. Ранги записываются и в participants, и в снимок
// leaderboard_entries - оба представления обязаны совпадать.
// Возвращает отображение userID → rank.
func (s *ResultService) recomputeLeaderboard(tx *gorm.DB, quizID uint) (map[uint]int, error) {
	var completed []entity.Participant
	if err := tx.Where("quiz_id = ? AND completed_at IS NOT NULL", quizID).Find(&completed).Error; err != nil {
		return nil, fmt.Errorf("failed to load completed participants: %w", err)
	}

	var totalParticipants int64
	if err := tx.Model(&entity.Participant{}).Where("quiz_id = ?", quizID).Count(&totalParticipants).Error; err != nil {
		return nil, fmt.Errorf("failed to count participants: %w", err)
	}

	ranked := rankCompleted(completed)
	ranks := make(map[uint]int, len(ranked))
	scoreSum := 0

	for _, p := range ranked {
		ranks[p.UserID] = p.Rank
		scoreSum += p.Score
		if err := tx.Model(&entity.Participant{}).Where("id = ?", p.ID).
			Update("rank", p.Rank).Error; err != nil {
			return nil, fmt.Errorf("failed to update participant rank: %w", err)
		}
	}

	// Имена пользователей для снимка таблицы лидеров
	usernames, err := s.loadUsernames(tx, ranked)
	if err != nil {
		return nil, err
	}

	entries := make([]entity.LeaderboardEntry, 0, len(ranked))
	for _, p := range ranked {
		entries = append(entries, entity.LeaderboardEntry{
			QuizID:       quizID,
			UserID:       p.UserID,
			Username:     usernames[p.UserID],
			Score:        p.Score,
			Percentage:   p.Percentage,
			CompletedAt:  *p.CompletedAt,
			TotalTimeSec: p.TotalTimeSec,
			Rank:         p.Rank,
		})
	}

	if err := s.leaderboardRepo.Rebuild(tx, quizID, entries); err != nil {
		return nil, fmt.Errorf("failed to rebuild leaderboard: %w", err)
	}

	// Аналитика: среднее по завершившим, доля завершивших от всех участников.
	// Деление на ноль исключено явными проверками.
	averageScore := roundAverage(scoreSum, len(ranked))
	completionRate := roundPercent(len(ranked), int(totalParticipants))

	if err := tx.Model(&entity.Quiz{}).Where("id = ?", quizID).
		Updates(map[string]interface{}{
			"average_score":   averageScore,
			"completion_rate": completionRate,
		}).Error; err != nil {
		return nil, fmt.Errorf("failed to update quiz analytics: %w", err)
	}

	return ranks, nil
}

// loadUsernames возвращает отображение userID → username для снимка таблицы лидеров
func (s *ResultService) loadUsernames(tx *gorm.DB, participants []entity.Participant) (map[uint]string, error) {
	if len(participants) == 0 {
		return map[uint]string{}, nil
	}

	ids := make([]uint, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.UserID)
	}

	var users []entity.User
	if err := tx.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load usernames: %w", err)
	}

	usernames := make(map[uint]string, len(users))
	for _, u := range users {
		usernames[u.ID] = u.Username
	}
	return usernames, nil
}

// GetLeaderboard возвращает таблицу лидеров викторины.
// Короткоживущий кеш в Redis снимает нагрузку с БД на горячих викторинах;
// кеш сбрасывается при каждой отправке ответов.
func (s *ResultService) GetLeaderboard(quizID uint) ([]entity.LeaderboardEntry, error) {
	if _, err := s.quizRepo.GetByID(quizID); err != nil {
		return nil, err
	}

	cacheKey := leaderboardCacheKey(quizID)
	if s.cacheRepo != nil {
		var cached []entity.LeaderboardEntry
		if err := s.cacheRepo.GetJSON(cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	entries, err := s.leaderboardRepo.GetByQuizID(quizID)
	if err != nil {
		return nil, err
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetJSON(cacheKey, entries, leaderboardCacheTTL); err != nil {
			log.Printf("[ResultService] Не удалось закешировать таблицу лидеров викторины #%d: %v", quizID, err)
		}
	}

	return entries, nil
}

// GetParticipantResult возвращает результат участника в викторине
func (s *ResultService) GetParticipantResult(quizID, userID uint) (*entity.Participant, error) {
	return s.participantRepo.GetByQuizAndUser(quizID, userID)
}

// GetQuizAnalytics возвращает производные счетчики викторины
func (s *ResultService) GetQuizAnalytics(quizID uint) (*QuizAnalytics, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}
	return &QuizAnalytics{
		TotalAttempts:  quiz.TotalAttempts,
		AverageScore:   quiz.AverageScore,
		CompletionRate: quiz.CompletionRate,
	}, nil
}

func leaderboardCacheKey(quizID uint) string {
	return fmt.Sprintf("quiz:%d:leaderboard", quizID)
}
