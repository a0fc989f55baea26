package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// AnswerRecord представляет ответ участника на один вопрос
type AnswerRecord struct {
	QuestionIndex  int  `json:"question_index"`
	SelectedOption int  `json:"selected_option"`
	IsCorrect      bool `json:"is_correct"`
	TimeSpentSec   int  `json:"time_spent_sec"`
}

// AnswerRecordList - пользовательский тип для хранения ответов участника в JSONB
type AnswerRecordList []AnswerRecord

// Scan реализует интерфейс sql.Scanner для AnswerRecordList
func (a *AnswerRecordList) Scan(value interface{}) error {
	if value == nil {
		*a = AnswerRecordList{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*a = AnswerRecordList{}
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Value реализует интерфейс driver.Valuer для AnswerRecordList
func (a AnswerRecordList) Value() (driver.Value, error) {
	if len(a) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

// Participant представляет участника викторины.
// Один участник на пользователя: уникальный составной индекс (quiz_id, user_id).
// Rank == 0 означает, что участник еще не попал в таблицу лидеров.
type Participant struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	QuizID       uint             `gorm:"not null;index;uniqueIndex:idx_quiz_user" json:"quiz_id"`
	UserID       uint             `gorm:"not null;index;uniqueIndex:idx_quiz_user" json:"user_id"`
	JoinedAt     time.Time        `gorm:"not null" json:"joined_at"`
	Answers      AnswerRecordList `gorm:"type:jsonb;not null;default:'[]'" json:"answers"`
	Score        int              `gorm:"not null;default:0" json:"score"`
	Percentage   int              `gorm:"not null;default:0" json:"percentage"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
	TotalTimeSec int              `gorm:"not null;default:0" json:"total_time_sec"`
	Rank         int              `gorm:"not null;default:0" json:"rank"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Participant) TableName() string {
	return "participants"
}

// HasCompleted проверяет, есть ли у участника завершенная попытка
func (p *Participant) HasCompleted() bool {
	return p.CompletedAt != nil
}

// ResetAttempt сбрасывает результаты предыдущей попытки перед пересдачей.
// Повторная отправка полностью замещает предыдущую, а не накапливается.
func (p *Participant) ResetAttempt() {
	p.Answers = AnswerRecordList{}
	p.Score = 0
	p.Percentage = 0
	p.CompletedAt = nil
	p.TotalTimeSec = 0
	p.Rank = 0
}
