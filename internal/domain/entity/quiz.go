package entity

import (
	"time"
)

// Константы статусов викторины
const (
	QuizStatusDraft     = "draft"
	QuizStatusScheduled = "scheduled"
	QuizStatusActive    = "active"
	QuizStatusCompleted = "completed"
	QuizStatusCancelled = "cancelled"
)

// Константы видимости викторины
const (
	QuizVisibilityPublic  = "public"
	QuizVisibilityPrivate = "private"
)

// Константы сложности викторины
const (
	QuizDifficultyEasy   = "easy"
	QuizDifficultyMedium = "medium"
	QuizDifficultyHard   = "hard"
)

// Quiz представляет викторину - корневой агрегат.
// Инвариант: AccessCode заполнен тогда и только тогда, когда Visibility == private,
// и уникален среди всех приватных викторин (частичный уникальный индекс в БД).
type Quiz struct {
	ID              uint               `gorm:"primaryKey" json:"id"`
	Title           string             `gorm:"size:100;not null" json:"title"`
	Topic           string             `gorm:"size:100;not null" json:"topic"`
	Difficulty      string             `gorm:"size:10;not null;default:'medium'" json:"difficulty"`
	CreatorID       uint               `gorm:"not null;index" json:"creator_id"`
	Visibility      string             `gorm:"size:10;not null;default:'public';index" json:"visibility"`
	AccessCode      *string            `gorm:"size:12;uniqueIndex" json:"access_code,omitempty"`
	Status          string             `gorm:"size:20;not null;default:'draft';index" json:"status"`
	AIGenerated     bool               `gorm:"not null;default:false" json:"ai_generated"`
	ScheduledAt     *time.Time         `gorm:"index" json:"scheduled_at,omitempty"`
	DurationMinutes int                `gorm:"not null;default:0" json:"duration_minutes"`
	TotalAttempts   int                `gorm:"not null;default:0" json:"total_attempts"`
	AverageScore    int                `gorm:"not null;default:0" json:"average_score"`
	CompletionRate  int                `gorm:"not null;default:0" json:"completion_rate"`
	Questions       []Question         `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
	Participants    []Participant      `gorm:"foreignKey:QuizID" json:"participants,omitempty"`
	Leaderboard     []LeaderboardEntry `gorm:"foreignKey:QuizID" json:"leaderboard,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Quiz) TableName() string {
	return "quizzes"
}

// IsActive проверяет, активна ли викторина
func (q *Quiz) IsActive() bool {
	return q.Status == QuizStatusActive
}

// IsCompleted проверяет, завершена ли викторина
func (q *Quiz) IsCompleted() bool {
	return q.Status == QuizStatusCompleted
}

// IsPrivate проверяет, является ли викторина приватной
func (q *Quiz) IsPrivate() bool {
	return q.Visibility == QuizVisibilityPrivate
}

// IsCreator проверяет, является ли пользователь создателем викторины
func (q *Quiz) IsCreator(userID uint) bool {
	return q.CreatorID == userID
}

// CanStart проверяет, допустим ли переход draft|scheduled → active
func (q *Quiz) CanStart() bool {
	return q.Status == QuizStatusDraft || q.Status == QuizStatusScheduled
}

// CanCancel проверяет, допустим ли переход draft|scheduled → cancelled
func (q *Quiz) CanCancel() bool {
	return q.Status == QuizStatusDraft || q.Status == QuizStatusScheduled
}

// MatchesAccessCode проверяет код доступа приватной викторины.
// Создатель всегда имеет неявный доступ.
func (q *Quiz) MatchesAccessCode(code string) bool {
	return q.AccessCode != nil && *q.AccessCode == code
}

// ValidDifficulty проверяет значение сложности
func ValidDifficulty(d string) bool {
	return d == QuizDifficultyEasy || d == QuizDifficultyMedium || d == QuizDifficultyHard
}

// ValidVisibility проверяет значение видимости
func ValidVisibility(v string) bool {
	return v == QuizVisibilityPublic || v == QuizVisibilityPrivate
}
