package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyai/quiz-api/internal/domain/entity"
)

func makeQuestions(correct []int, points []int) []entity.Question {
	questions := make([]entity.Question, len(correct))
	for i := range correct {
		questions[i] = entity.Question{
			Position:      i,
			Text:          "Q?",
			Options:       entity.StringArray{"A", "B", "C", "D"},
			CorrectOption: correct[i],
			Points:        points[i],
		}
	}
	return questions
}

func TestScoreAnswers(t *testing.T) {
	// Три вопроса: 1, 2 и 1 очко; правильные варианты 0, 1, 0.
	// Ответы 0, 1, 1: два правильных, счет 1+2=3, процент round(2/3*100)=67.
	questions := makeQuestions([]int{0, 1, 0}, []int{1, 2, 1})
	answers := []AnswerSubmission{
		{SelectedOption: 0, TimeSpentSec: 10},
		{SelectedOption: 1, TimeSpentSec: 15},
		{SelectedOption: 1, TimeSpentSec: 5},
	}

	records, score, correctCount := scoreAnswers(questions, answers)

	require.Len(t, records, 3)
	assert.Equal(t, 3, score)
	assert.Equal(t, 2, correctCount)
	assert.Equal(t, 67, roundPercent(correctCount, len(questions)))

	assert.True(t, records[0].IsCorrect)
	assert.True(t, records[1].IsCorrect)
	assert.False(t, records[2].IsCorrect)
	assert.Equal(t, 15, records[1].TimeSpentSec)
}

func TestScoreAnswersShortSubmission(t *testing.T) {
	// Ответов меньше, чем вопросов: недостающие считаются неправильными
	questions := makeQuestions([]int{0, 0, 0}, []int{1, 1, 1})
	answers := []AnswerSubmission{{SelectedOption: 0}}

	records, score, correctCount := scoreAnswers(questions, answers)

	assert.Len(t, records, 1)
	assert.Equal(t, 1, score)
	assert.Equal(t, 1, correctCount)
	assert.Equal(t, 33, roundPercent(correctCount, len(questions)))
}

func TestScoreAnswersInvalidOption(t *testing.T) {
	// Вариант за пределами options - неправильный ответ, не ошибка
	questions := makeQuestions([]int{0}, []int{1})
	answers := []AnswerSubmission{{SelectedOption: 99}}

	records, score, correctCount := scoreAnswers(questions, answers)

	require.Len(t, records, 1)
	assert.False(t, records[0].IsCorrect)
	assert.Zero(t, score)
	assert.Zero(t, correctCount)
}

func TestScoreAnswersExtraAnswersIgnored(t *testing.T) {
	questions := makeQuestions([]int{0}, []int{1})
	answers := []AnswerSubmission{{SelectedOption: 0}, {SelectedOption: 1}, {SelectedOption: 2}}

	records, score, _ := scoreAnswers(questions, answers)

	assert.Len(t, records, 1)
	assert.Equal(t, 1, score)
}

func TestRoundPercent(t *testing.T) {
	assert.Equal(t, 0, roundPercent(0, 0))
	assert.Equal(t, 0, roundPercent(5, 0))
	assert.Equal(t, 100, roundPercent(3, 3))
	assert.Equal(t, 67, roundPercent(2, 3))
	assert.Equal(t, 33, roundPercent(1, 3))
	// Половина округляется вверх: 1/8 = 12.5% → 13
	assert.Equal(t, 13, roundPercent(1, 8))
	assert.Equal(t, 50, roundPercent(1, 2))
}

func TestRoundAverage(t *testing.T) {
	assert.Equal(t, 0, roundAverage(10, 0))
	assert.Equal(t, 5, roundAverage(10, 2))
	// 7/2 = 3.5 → 4
	assert.Equal(t, 4, roundAverage(7, 2))
}

func TestRankCompleted(t *testing.T) {
	now := time.Now()
	participants := []entity.Participant{
		{ID: 1, UserID: 10, Score: 5, TotalTimeSec: 100, CompletedAt: &now},
		{ID: 2, UserID: 20, Score: 8, TotalTimeSec: 200, CompletedAt: &now},
		{ID: 3, UserID: 30, Score: 5, TotalTimeSec: 50, CompletedAt: &now},
		{ID: 4, UserID: 40, Score: 5, TotalTimeSec: 50, CompletedAt: &now},
	}

	ranked := rankCompleted(participants)

	require.Len(t, ranked, 4)

	// Наибольший счет первый
	assert.Equal(t, uint(20), ranked[0].UserID)
	assert.Equal(t, 1, ranked[0].Rank)

	// При равном счете меньшее время выше
	assert.Equal(t, uint(30), ranked[1].UserID)
	assert.Equal(t, 2, ranked[1].Rank)

	// Полное равенство: меньший userID выше
	assert.Equal(t, uint(40), ranked[2].UserID)
	assert.Equal(t, 3, ranked[2].Rank)

	assert.Equal(t, uint(10), ranked[3].UserID)
	assert.Equal(t, 4, ranked[3].Rank)

	// Исходный срез не модифицируется
	assert.Zero(t, participants[0].Rank)
}

func TestRankCompletedEmpty(t *testing.T) {
	ranked := rankCompleted(nil)
	assert.Empty(t, ranked)
}
