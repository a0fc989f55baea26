package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionValidate(t *testing.T) {
	tests := []struct {
		name     string
		question Question
		wantErr  bool
	}{
		{
			name: "valid question",
			question: Question{
				Text:          "What is the capital of France?",
				Options:       StringArray{"Paris", "London", "Berlin", "Madrid"},
				CorrectOption: 0,
			},
			wantErr: false,
		},
		{
			name: "empty text",
			question: Question{
				Text:          "   ",
				Options:       StringArray{"A", "B"},
				CorrectOption: 0,
			},
			wantErr: true,
		},
		{
			name: "too few options",
			question: Question{
				Text:          "Question?",
				Options:       StringArray{"Only one"},
				CorrectOption: 0,
			},
			wantErr: true,
		},
		{
			name: "too many options",
			question: Question{
				Text:          "Question?",
				Options:       StringArray{"A", "B", "C", "D", "E", "F", "G"},
				CorrectOption: 0,
			},
			wantErr: true,
		},
		{
			name: "correct option out of bounds",
			question: Question{
				Text:          "Question?",
				Options:       StringArray{"A", "B", "C"},
				CorrectOption: 3,
			},
			wantErr: true,
		},
		{
			name: "negative correct option",
			question: Question{
				Text:          "Question?",
				Options:       StringArray{"A", "B"},
				CorrectOption: -1,
			},
			wantErr: true,
		},
		{
			name: "minimum two options",
			question: Question{
				Text:          "True or false?",
				Options:       StringArray{"True", "False"},
				CorrectOption: 1,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.question.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuestionApplyDefaults(t *testing.T) {
	q := Question{Text: "Q?", Options: StringArray{"A", "B"}}
	q.ApplyDefaults()

	assert.Equal(t, DefaultQuestionPoints, q.Points)
	assert.Equal(t, DefaultQuestionTimeLimitSec, q.TimeLimitSec)

	// Явно заданные значения не перетираются
	q2 := Question{Text: "Q?", Options: StringArray{"A", "B"}, Points: 5, TimeLimitSec: 60}
	q2.ApplyDefaults()

	assert.Equal(t, 5, q2.Points)
	assert.Equal(t, 60, q2.TimeLimitSec)
}

func TestQuestionIsCorrect(t *testing.T) {
	q := Question{
		Text:          "Q?",
		Options:       StringArray{"A", "B", "C"},
		CorrectOption: 1,
	}

	assert.True(t, q.IsCorrect(1))
	assert.False(t, q.IsCorrect(0))
	assert.False(t, q.IsCorrect(2))
}

func TestQuestionIsValidOption(t *testing.T) {
	q := Question{Options: StringArray{"A", "B", "C"}}

	assert.True(t, q.IsValidOption(0))
	assert.True(t, q.IsValidOption(2))
	assert.False(t, q.IsValidOption(-1))
	assert.False(t, q.IsValidOption(3))
}

func TestStringArrayScanValue(t *testing.T) {
	original := StringArray{"Paris", "London"}

	value, err := original.Value()
	require.NoError(t, err)

	var scanned StringArray
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, original, scanned)

	// NULL из базы дает пустой массив
	var fromNull StringArray
	require.NoError(t, fromNull.Scan(nil))
	assert.Equal(t, StringArray{}, fromNull)

	// Пустой массив сериализуется в '[]', а не null
	empty := StringArray{}
	v, err := empty.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)
}
