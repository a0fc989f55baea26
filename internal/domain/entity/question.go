package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Ограничения на вопрос
const (
	MinOptionsPerQuestion = 2
	MaxOptionsPerQuestion = 6

	DefaultQuestionPoints       = 1
	DefaultQuestionTimeLimitSec = 30
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
// Используется GORM для записи StringArray в JSONB в базе
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// Question представляет вопрос в викторине.
// Вопросы фиксируются при создании викторины и не имеют собственного жизненного цикла.
type Question struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	QuizID        uint        `gorm:"not null;index" json:"quiz_id"`
	Position      int         `gorm:"not null;default:0" json:"position"`
	Text          string      `gorm:"size:500;not null" json:"text"`
	Options       StringArray `gorm:"type:jsonb;not null" json:"options"`
	CorrectOption int         `gorm:"not null" json:"-"` // Скрыто от клиента
	Explanation   string      `gorm:"size:1000;not null;default:''" json:"-"`
	Points        int         `gorm:"not null;default:1" json:"points"`
	TimeLimitSec  int         `gorm:"not null;default:30" json:"time_limit_sec"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsCorrect проверяет, является ли выбранный вариант правильным
func (q *Question) IsCorrect(selectedOption int) bool {
	return selectedOption == q.CorrectOption
}

// IsValidOption проверяет, является ли выбранный вариант допустимым
func (q *Question) IsValidOption(selectedOption int) bool {
	return selectedOption >= 0 && selectedOption < len(q.Options)
}

// OptionsCount возвращает количество вариантов ответа
func (q *Question) OptionsCount() int {
	return len(q.Options)
}

// ApplyDefaults подставляет значения по умолчанию для points и time_limit_sec
func (q *Question) ApplyDefaults() {
	if q.Points <= 0 {
		q.Points = DefaultQuestionPoints
	}
	if q.TimeLimitSec <= 0 {
		q.TimeLimitSec = DefaultQuestionTimeLimitSec
	}
}

// Validate проверяет инварианты вопроса:
// непустой текст, 2-6 вариантов, правильный ответ в пределах вариантов.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return errors.New("question text is required")
	}
	if len(q.Options) < MinOptionsPerQuestion || len(q.Options) > MaxOptionsPerQuestion {
		return fmt.Errorf("question must have between %d and %d options, got %d",
			MinOptionsPerQuestion, MaxOptionsPerQuestion, len(q.Options))
	}
	if !q.IsValidOption(q.CorrectOption) {
		return fmt.Errorf("correct option %d is out of bounds for %d options",
			q.CorrectOption, len(q.Options))
	}
	return nil
}
