package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuestions(count int) []GeneratedQuestion {
	questions := make([]GeneratedQuestion, count)
	for i := range questions {
		questions[i] = GeneratedQuestion{
			Text:          "Question?",
			Options:       []string{"A", "B", "C", "D"},
			CorrectOption: 0,
		}
	}
	return questions
}

func TestValidateGenerated(t *testing.T) {
	tests := []struct {
		name      string
		questions []GeneratedQuestion
		expected  int
		wantErr   bool
	}{
		{"valid set", validQuestions(3), 3, false},
		{"more than expected is fine", validQuestions(5), 3, false},
		{"empty set", nil, 3, true},
		{"fewer than expected", validQuestions(2), 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGenerated(tt.questions, tt.expected)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateGeneratedRejectsWholeSet(t *testing.T) {
	// Один некорректный элемент отклоняет весь набор
	questions := validQuestions(3)
	questions[1].CorrectOption = 7

	assert.Error(t, ValidateGenerated(questions, 3))

	questions = validQuestions(3)
	questions[2].Text = "  "
	assert.Error(t, ValidateGenerated(questions, 3))

	questions = validQuestions(3)
	questions[0].Options = []string{"only one"}
	assert.Error(t, ValidateGenerated(questions, 3))
}

func TestTemplateGeneratorDeterministic(t *testing.T) {
	g := NewTemplateGenerator()
	ctx := context.Background()

	first, err := g.GenerateQuestions(ctx, "Go", "medium", 5)
	require.NoError(t, err)
	second, err := g.GenerateQuestions(ctx, "Go", "medium", 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 5)

	// Результат проходит ту же валидацию, что и AI-вопросы
	assert.NoError(t, ValidateGenerated(first, 5))
}

func TestTemplateGeneratorInvalidCount(t *testing.T) {
	g := NewTemplateGenerator()

	_, err := g.GenerateQuestions(context.Background(), "Go", "easy", 0)
	assert.Error(t, err)
}

func TestParseQuestionsJSON(t *testing.T) {
	raw := `[{"question":"Q1?","options":["A","B"],"correct_answer":1,"explanation":"because"}]`

	questions, err := ParseQuestionsJSON(raw)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Q1?", questions[0].Text)
	assert.Equal(t, 1, questions[0].CorrectOption)
	assert.Equal(t, "because", questions[0].Explanation)
}

func TestParseQuestionsJSONMarkdownFence(t *testing.T) {
	raw := "```json\n[{\"question\":\"Q1?\",\"options\":[\"A\",\"B\"],\"correct_answer\":0}]\n```"

	questions, err := ParseQuestionsJSON(raw)
	require.NoError(t, err)
	assert.Len(t, questions, 1)
}

func TestParseQuestionsJSONWithProse(t *testing.T) {
	raw := "Here are your questions:\n[{\"question\":\"Q1?\",\"options\":[\"A\",\"B\"],\"correct_answer\":0}]\nEnjoy!"

	questions, err := ParseQuestionsJSON(raw)
	require.NoError(t, err)
	assert.Len(t, questions, 1)
}

func TestParseQuestionsJSONNoArray(t *testing.T) {
	_, err := ParseQuestionsJSON("I cannot generate questions right now.")
	assert.Error(t, err)
}
