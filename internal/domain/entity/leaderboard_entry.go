package entity

import (
	"time"
)

// LeaderboardEntry представляет снимок позиции участника в таблице лидеров.
// Таблица полностью перестраивается при каждой завершенной отправке ответов
// и может отставать от participants до следующего пересчета.
type LeaderboardEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	QuizID       uint      `gorm:"not null;index" json:"quiz_id"`
	UserID       uint      `gorm:"not null" json:"user_id"`
	Username     string    `gorm:"size:50;not null" json:"username"`
	Score        int       `gorm:"not null;default:0" json:"score"`
	Percentage   int       `gorm:"not null;default:0" json:"percentage"`
	CompletedAt  time.Time `gorm:"not null" json:"completed_at"`
	TotalTimeSec int       `gorm:"not null;default:0" json:"total_time_sec"`
	Rank         int       `gorm:"not null;index:idx_leaderboard_quiz_rank" json:"rank"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (LeaderboardEntry) TableName() string {
	return "leaderboard_entries"
}
