package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuizLifecycleChecks(t *testing.T) {
	tests := []struct {
		status    string
		canStart  bool
		canCancel bool
		isActive  bool
	}{
		{QuizStatusDraft, true, true, false},
		{QuizStatusScheduled, true, true, false},
		{QuizStatusActive, false, false, true},
		{QuizStatusCompleted, false, false, false},
		{QuizStatusCancelled, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			q := Quiz{Status: tt.status}
			assert.Equal(t, tt.canStart, q.CanStart())
			assert.Equal(t, tt.canCancel, q.CanCancel())
			assert.Equal(t, tt.isActive, q.IsActive())
		})
	}
}

func TestQuizMatchesAccessCode(t *testing.T) {
	code := "AB12CD"
	q := Quiz{Visibility: QuizVisibilityPrivate, AccessCode: &code}

	assert.True(t, q.MatchesAccessCode("AB12CD"))
	assert.False(t, q.MatchesAccessCode("ab12cd"))
	assert.False(t, q.MatchesAccessCode(""))

	// Публичная викторина без кода не матчится ни на что
	public := Quiz{Visibility: QuizVisibilityPublic}
	assert.False(t, public.MatchesAccessCode("AB12CD"))
	assert.False(t, public.MatchesAccessCode(""))
}

func TestQuizIsCreator(t *testing.T) {
	q := Quiz{CreatorID: 42}

	assert.True(t, q.IsCreator(42))
	assert.False(t, q.IsCreator(7))
}

func TestValidDifficultyAndVisibility(t *testing.T) {
	assert.True(t, ValidDifficulty("easy"))
	assert.True(t, ValidDifficulty("medium"))
	assert.True(t, ValidDifficulty("hard"))
	assert.False(t, ValidDifficulty("extreme"))
	assert.False(t, ValidDifficulty(""))

	assert.True(t, ValidVisibility("public"))
	assert.True(t, ValidVisibility("private"))
	assert.False(t, ValidVisibility("hidden"))
}
