package generator

import (
	"context"
	"fmt"
)

// TemplateGenerator - детерминированный запасной генератор.
// Используется, когда LLM недоступен или вернул некорректный набор.
// Вопросы являются заглушками и явно помечаются как не-AI на уровне викторины.
type TemplateGenerator struct{}

// NewTemplateGenerator создает шаблонный генератор
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

// GenerateQuestions возвращает count шаблонных вопросов по теме.
// Результат детерминирован: одинаковый вход дает одинаковый выход.
func (g *TemplateGenerator) GenerateQuestions(ctx context.Context, topic, difficulty string, count int) ([]GeneratedQuestion, error) {
	if count <= 0 {
		return nil, fmt.Errorf("question count must be positive, got %d", count)
	}

	questions := make([]GeneratedQuestion, 0, count)
	for i := 1; i <= count; i++ {
		questions = append(questions, GeneratedQuestion{
			Text: fmt.Sprintf("Question %d: which statement about %s is correct? (%s)", i, topic, difficulty),
			Options: []string{
				fmt.Sprintf("Key fact %d about %s", i, topic),
				fmt.Sprintf("Common misconception %d about %s", i, topic),
				fmt.Sprintf("Unrelated statement %d", i),
				fmt.Sprintf("Partially true statement %d", i),
			},
			CorrectOption: 0,
			Explanation:   fmt.Sprintf("Placeholder explanation for question %d about %s. Edit before publishing.", i, topic),
		})
	}
	return questions, nil
}
