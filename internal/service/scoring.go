package service

import (
	"math"
	"sort"

	"github.com/studyai/quiz-api/internal/domain/entity"
)

// AnswerSubmission представляет один ответ участника в порядке вопросов викторины
type AnswerSubmission struct {
	SelectedOption int `json:"selected_option"`
	TimeSpentSec   int `json:"time_spent_sec"`
}

// scoreAnswers подсчитывает результат попытки.
// Ответы сопоставляются с вопросами по индексу; вопросы без ответа
// (answers короче questions) считаются неправильными, а не ошибкой.
// Лишние ответы за пределами списка вопросов игнорируются.
// Возвращает записи ответов, суммарный счет в очках и количество правильных ответов.
func scoreAnswers(questions []entity.Question, answers []AnswerSubmission) (entity.AnswerRecordList, int, int) {
	records := make(entity.AnswerRecordList, 0, len(questions))
	score := 0
	correctCount := 0

	for i := range questions {
		if i >= len(answers) {
			break
		}
		question := &questions[i]
		isCorrect := question.IsValidOption(answers[i].SelectedOption) && question.IsCorrect(answers[i].SelectedOption)
		if isCorrect {
			correctCount++
			score += question.Points
		}
		records = append(records, entity.AnswerRecord{
			QuestionIndex:  i,
			SelectedOption: answers[i].SelectedOption,
			IsCorrect:      isCorrect,
			TimeSpentSec:   answers[i].TimeSpentSec,
		})
	}

	return records, score, correctCount
}

// roundPercent возвращает round(part/total*100) с округлением половины вверх.
// При total == 0 возвращает 0.
// Процент считается от количества правильных ответов, а не от очков.
func roundPercent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// roundAverage возвращает round(sum/count), 0 при count == 0
func roundAverage(sum, count int) int {
	if count <= 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(count)))
}

// rankCompleted сортирует завершивших участников для таблицы лидеров:
// счет по убыванию, при равенстве - меньшее затраченное время выше.
// Возвращает отсортированную копию с проставленными рангами 1..K.
func rankCompleted(participants []entity.Participant) []entity.Participant {
	ranked := make([]entity.Participant, len(participants))
	copy(ranked, participants)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].TotalTimeSec != ranked[j].TotalTimeSec {
			return ranked[i].TotalTimeSec < ranked[j].TotalTimeSec
		}
		// Финальный детерминированный критерий при полном равенстве
		return ranked[i].UserID < ranked[j].UserID
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
