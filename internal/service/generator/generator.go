package generator

import (
	"context"
	"fmt"
	"strings"
)

// GeneratedQuestion представляет вопрос, полученный от генератора, до валидации
type GeneratedQuestion struct {
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_answer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Generator определяет контракт генератора вопросов.
// Реализация может вернуть меньше count элементов, некорректные элементы
// или ошибку - вызывающая сторона обязана валидировать каждый элемент.
type Generator interface {
	GenerateQuestions(ctx context.Context, topic, difficulty string, count int) ([]GeneratedQuestion, error)
}

// ValidateGenerated проверяет каждый сгенерированный вопрос против инвариантов:
// непустой текст, 2-6 вариантов, правильный ответ в пределах вариантов.
// Отклоняет весь набор при первом нарушении - частичное принятие недопустимо.
func ValidateGenerated(questions []GeneratedQuestion, expectedCount int) error {
	if len(questions) == 0 {
		return fmt.Errorf("generator returned no questions")
	}
	if len(questions) < expectedCount {
		return fmt.Errorf("generator returned %d questions, expected %d", len(questions), expectedCount)
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("question #%d: text is empty", i+1)
		}
		if len(q.Options) < 2 || len(q.Options) > 6 {
			return fmt.Errorf("question #%d: %d options, expected 2-6", i+1, len(q.Options))
		}
		if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
			return fmt.Errorf("question #%d: correct answer %d out of bounds for %d options",
				i+1, q.CorrectOption, len(q.Options))
		}
	}
	return nil
}
