package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/studyai/quiz-api/internal/domain/entity"
	"github.com/studyai/quiz-api/internal/domain/repository"
	"github.com/studyai/quiz-api/internal/notification"
	apperrors "github.com/studyai/quiz-api/internal/pkg/errors"
	"github.com/studyai/quiz-api/internal/service/generator"
)

// ============================================================================
// Моки репозиториев
// ============================================================================

// MockQuizRepository реализует repository.QuizRepository
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) Create(quiz *entity.Quiz) error {
	args := m.Called(quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) GetByID(id uint) (*entity.Quiz, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetWithQuestions(id uint) (*entity.Quiz, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetByAccessCode(code string) (*entity.Quiz, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepository) UpdateStatus(quizID uint, status string) error {
	args := m.Called(quizID, status)
	return args.Error(0)
}

func (m *MockQuizRepository) UpdateScheduleInfo(quizID uint, scheduledAt time.Time, status string) error {
	args := m.Called(quizID, scheduledAt, status)
	return args.Error(0)
}

func (m *MockQuizRepository) ListVisible(userID uint, filters repository.QuizFilters, limit, offset int) ([]entity.Quiz, int64, error) {
	args := m.Called(userID, filters, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Quiz), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuizRepository) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockQuestionRepository реализует repository.QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) GetByQuizID(quizID uint) ([]entity.Question, error) {
	args := m.Called(quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) CreateBatch(questions []entity.Question) error {
	args := m.Called(questions)
	return args.Error(0)
}

// MockParticipantRepository реализует repository.ParticipantRepository
type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) Create(participant *entity.Participant) error {
	args := m.Called(participant)
	return args.Error(0)
}

func (m *MockParticipantRepository) GetByQuizAndUser(quizID, userID uint) (*entity.Participant, error) {
	args := m.Called(quizID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Participant), args.Error(1)
}

func (m *MockParticipantRepository) GetByQuizID(quizID uint) ([]entity.Participant, error) {
	args := m.Called(quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Participant), args.Error(1)
}

func (m *MockParticipantRepository) GetCompletedByQuizID(quizID uint) ([]entity.Participant, error) {
	args := m.Called(quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Participant), args.Error(1)
}

func (m *MockParticipantRepository) CountByQuizID(quizID uint) (int64, error) {
	args := m.Called(quizID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockParticipantRepository) Update(participant *entity.Participant) error {
	args := m.Called(participant)
	return args.Error(0)
}

// stubGenerator позволяет подменить поведение генератора в тестах
type stubGenerator struct {
	questions []generator.GeneratedQuestion
	err       error
}

func (g *stubGenerator) GenerateQuestions(ctx context.Context, topic, difficulty string, count int) ([]generator.GeneratedQuestion, error) {
	return g.questions, g.err
}

// ============================================================================
// Хелперы
// ============================================================================

func validQuestionInputs() []QuestionInput {
	return []QuestionInput{
		{Text: "Q1?", Options: []string{"A", "B", "C", "D"}, CorrectOption: 0},
		{Text: "Q2?", Options: []string{"A", "B"}, CorrectOption: 1, Points: 2},
	}
}

func generatedQuestions(count int) []generator.GeneratedQuestion {
	questions := make([]generator.GeneratedQuestion, count)
	for i := range questions {
		questions[i] = generator.GeneratedQuestion{
			Text:          "Generated?",
			Options:       []string{"A", "B", "C", "D"},
			CorrectOption: 0,
		}
	}
	return questions
}

func newQuizServiceForTest(quizRepo *MockQuizRepository, questionRepo *MockQuestionRepository, participantRepo *MockParticipantRepository, llm generator.Generator) *QuizService {
	return NewQuizService(quizRepo, questionRepo, participantRepo, llm, generator.NewTemplateGenerator(), &notification.NoopBus{})
}

// expectCreatorJoin настраивает идемпотентное добавление создателя участником
func expectCreatorJoin(participantRepo *MockParticipantRepository, quizID, userID uint) {
	participantRepo.On("GetByQuizAndUser", quizID, userID).Return(nil, apperrors.ErrNotFound).Once()
	participantRepo.On("Create", mock.AnythingOfType("*entity.Participant")).Return(nil).Once()
}

// ============================================================================
// CreateQuiz
// ============================================================================

func TestCreateQuizManual(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, nil)

	quizRepo.On("Create", mock.AnythingOfType("*entity.Quiz")).Run(func(args mock.Arguments) {
		args.Get(0).(*entity.Quiz).ID = 1
	}).Return(nil).Once()
	expectCreatorJoin(participantRepo, 1, 42)

	quiz, err := svc.CreateQuiz(context.Background(), 42, CreateQuizParams{
		Topic:      "Go",
		Difficulty: "medium",
		Questions:  validQuestionInputs(),
	})

	require.NoError(t, err)
	assert.Equal(t, entity.QuizStatusDraft, quiz.Status)
	assert.Equal(t, entity.QuizVisibilityPublic, quiz.Visibility)
	assert.False(t, quiz.AIGenerated)
	assert.Equal(t, "Go - medium Quiz", quiz.Title)
	assert.Nil(t, quiz.AccessCode)
	require.Len(t, quiz.Questions, 2)

	// Умолчания points и time_limit_sec подставлены
	assert.Equal(t, 1, quiz.Questions[0].Points)
	assert.Equal(t, 30, quiz.Questions[0].TimeLimitSec)
	assert.Equal(t, 2, quiz.Questions[1].Points)

	quizRepo.AssertExpectations(t)
	participantRepo.AssertExpectations(t)
}

func TestCreateQuizManualRejectsWholeBatch(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, nil)

	inputs := validQuestionInputs()
	inputs = append(inputs, QuestionInput{Text: "Bad", Options: []string{"only one"}, CorrectOption: 0})

	_, err := svc.CreateQuiz(context.Background(), 42, CreateQuizParams{
		Topic:      "Go",
		Difficulty: "easy",
		Questions:  inputs,
	})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	// Никакого частичного создания
	quizRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestCreateQuizValidation(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, nil)

	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name   string
		params CreateQuizParams
	}{
		{"empty topic", CreateQuizParams{Difficulty: "easy", Questions: validQuestionInputs()}},
		{"invalid difficulty", CreateQuizParams{Topic: "Go", Difficulty: "impossible", Questions: validQuestionInputs()}},
		{"invalid visibility", CreateQuizParams{Topic: "Go", Difficulty: "easy", Visibility: "secret", Questions: validQuestionInputs()}},
		{"scheduled in the past", CreateQuizParams{Topic: "Go", Difficulty: "easy", Questions: validQuestionInputs(), ScheduledAt: &past}},
		{"no questions on manual path", CreateQuizParams{Topic: "Go", Difficulty: "easy"}},
		{"ai count too large", CreateQuizParams{Topic: "Go", Difficulty: "easy", UseAI: true, QuestionCount: 51}},
		{"ai count zero", CreateQuizParams{Topic: "Go", Difficulty: "easy", UseAI: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateQuiz(context.Background(), 42, tt.params)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestCreateQuizAISuccess(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	llm := &stubGenerator{questions: generatedQuestions(3)}
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, llm)

	quizRepo.On("Create", mock.AnythingOfType("*entity.Quiz")).Run(func(args mock.Arguments) {
		args.Get(0).(*entity.Quiz).ID = 7
	}).Return(nil).Once()
	expectCreatorJoin(participantRepo, 7, 42)

	quiz, err := svc.CreateQuiz(context.Background(), 42, CreateQuizParams{
		Topic:         "History",
		Difficulty:    "hard",
		UseAI:         true,
		QuestionCount: 3,
	})

	require.NoError(t, err)
	assert.True(t, quiz.AIGenerated)
	assert.Len(t, quiz.Questions, 3)
}

func TestCreateQuizAIFallback(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	llm := &stubGenerator{err: errors.New("llm timeout")}
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, llm)

	quizRepo.On("Create", mock.AnythingOfType("*entity.Quiz")).Run(func(args mock.Arguments) {
		args.Get(0).(*entity.Quiz).ID = 7
	}).Return(nil).Once()
	expectCreatorJoin(participantRepo, 7, 42)

	quiz, err := svc.CreateQuiz(context.Background(), 42, CreateQuizParams{
		Topic:         "History",
		Difficulty:    "easy",
		UseAI:         true,
		QuestionCount: 4,
	})

	require.NoError(t, err)
	// Фолбэк виден вызывающей стороне
	assert.False(t, quiz.AIGenerated)
	assert.Len(t, quiz.Questions, 4)
}

func TestCreateQuizAIInvalidSetFallsBack(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)

	// LLM вернул вопрос с правильным ответом за пределами вариантов
	bad := generatedQuestions(2)
	bad[1].CorrectOption = 9
	llm := &stubGenerator{questions: bad}
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, llm)

	quizRepo.On("Create", mock.AnythingOfType("*entity.Quiz")).Run(func(args mock.Arguments) {
		args.Get(0).(*entity.Quiz).ID = 7
	}).Return(nil).Once()
	expectCreatorJoin(participantRepo, 7, 42)

	quiz, err := svc.CreateQuiz(context.Background(), 42, CreateQuizParams{
		Topic:         "Math",
		Difficulty:    "medium",
		UseAI:         true,
		QuestionCount: 2,
	})

	require.NoError(t, err)
	assert.False(t, quiz.AIGenerated)
}

func TestCreateQuizPrivateAccessCodeRetry(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, nil)

	// Первая вставка ловит коллизию кода, вторая проходит
	quizRepo.On("Create", mock.AnythingOfType("*entity.Quiz")).Return(repository.ErrAccessCodeTaken).Once()
	quizRepo.On("Create", mock.AnythingOfType("*entity.Quiz")).Run(func(args mock.Arguments) {
		args.Get(0).(*entity.Quiz).ID = 3
	}).Return(nil).Once()
	expectCreatorJoin(participantRepo, 3, 42)

	quiz, err := svc.CreateQuiz(context.Background(), 42, CreateQuizParams{
		Topic:      "Go",
		Difficulty: "medium",
		Visibility: entity.QuizVisibilityPrivate,
		Questions:  validQuestionInputs(),
	})

	require.NoError(t, err)
	require.NotNil(t, quiz.AccessCode)
	assert.Len(t, *quiz.AccessCode, 6)
	quizRepo.AssertExpectations(t)
}

// ============================================================================
// JoinQuiz
// ============================================================================

func TestJoinQuizIdempotent(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, nil)

	quiz := &entity.Quiz{ID: 1, Status: entity.QuizStatusActive, Visibility: entity.QuizVisibilityPublic}
	existing := &entity.Participant{ID: 5, QuizID: 1, UserID: 42}

	quizRepo.On("GetByID", uint(1)).Return(quiz, nil)
	participantRepo.On("GetByQuizAndUser", uint(1), uint(42)).Return(existing, nil)

	participant, err := svc.JoinQuiz(42, 1, "")

	require.NoError(t, err)
	assert.Equal(t, existing, participant)
	participantRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestJoinQuizByAccessCode(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, nil)

	code := "AB12CD"
	quiz := &entity.Quiz{ID: 2, Status: entity.QuizStatusDraft, Visibility: entity.QuizVisibilityPrivate, AccessCode: &code}

	quizRepo.On("GetByAccessCode", "AB12CD").Return(quiz, nil)
	participantRepo.On("GetByQuizAndUser", uint(2), uint(42)).Return(nil, apperrors.ErrNotFound)
	participantRepo.On("Create", mock.AnythingOfType("*entity.Participant")).Return(nil)

	participant, err := svc.JoinQuiz(42, 0, "AB12CD")

	require.NoError(t, err)
	assert.Equal(t, uint(2), participant.QuizID)
	assert.Equal(t, uint(42), participant.UserID)
}

func TestJoinQuizPrivateWrongCode(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, nil)

	code := "AB12CD"
	quiz := &entity.Quiz{ID: 2, CreatorID: 1, Status: entity.QuizStatusDraft, Visibility: entity.QuizVisibilityPrivate, AccessCode: &code}
	quizRepo.On("GetByID", uint(2)).Return(quiz, nil)

	_, err := svc.JoinQuiz(42, 2, "WRONG1")

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	participantRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestJoinQuizCreatorSkipsAccessCode(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, nil)

	code := "AB12CD"
	quiz := &entity.Quiz{ID: 2, CreatorID: 42, Status: entity.QuizStatusDraft, Visibility: entity.QuizVisibilityPrivate, AccessCode: &code}
	quizRepo.On("GetByID", uint(2)).Return(quiz, nil)
	participantRepo.On("GetByQuizAndUser", uint(2), uint(42)).Return(nil, apperrors.ErrNotFound)
	participantRepo.On("Create", mock.AnythingOfType("*entity.Participant")).Return(nil)

	_, err := svc.JoinQuiz(42, 2, "")

	assert.NoError(t, err)
}

func TestJoinQuizTerminalStatus(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, nil)

	for _, status := range []string{entity.QuizStatusCompleted, entity.QuizStatusCancelled} {
		quiz := &entity.Quiz{ID: 3, Status: status, Visibility: entity.QuizVisibilityPublic}
		quizRepo.On("GetByID", uint(3)).Return(quiz, nil).Once()

		_, err := svc.JoinQuiz(42, 3, "")
		assert.ErrorIs(t, err, apperrors.ErrConflict, "status %s", status)
	}
}

func TestJoinQuizRequiresIDOrCode(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, nil)

	_, err := svc.JoinQuiz(42, 0, "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

// ============================================================================
// Переходы статусов
// ============================================================================

func TestStartQuiz(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, nil)

	quiz := &entity.Quiz{ID: 1, CreatorID: 42, Status: entity.QuizStatusDraft}
	quizRepo.On("GetByID", uint(1)).Return(quiz, nil)
	quizRepo.On("UpdateStatus", uint(1), entity.QuizStatusActive).Return(nil)

	updated, err := svc.StartQuiz(1, 42)

	require.NoError(t, err)
	assert.Equal(t, entity.QuizStatusActive, updated.Status)
	quizRepo.AssertExpectations(t)
}

func TestStartQuizOnlyCreator(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, nil)

	quiz := &entity.Quiz{ID: 1, CreatorID: 42, Status: entity.QuizStatusDraft}
	quizRepo.On("GetByID", uint(1)).Return(quiz, nil)

	_, err := svc.StartQuiz(1, 7)

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	quizRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestStartQuizInvalidTransition(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, nil)

	for _, status := range []string{entity.QuizStatusActive, entity.QuizStatusCompleted, entity.QuizStatusCancelled} {
		quiz := &entity.Quiz{ID: 1, CreatorID: 42, Status: status}
		quizRepo.On("GetByID", uint(1)).Return(quiz, nil).Once()

		_, err := svc.StartQuiz(1, 42)
		assert.ErrorIs(t, err, apperrors.ErrConflict, "status %s", status)
	}
}

func TestCancelQuizFromActive(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, nil)

	// Активную викторину отменить нельзя, только завершить
	quiz := &entity.Quiz{ID: 1, CreatorID: 42, Status: entity.QuizStatusActive}
	quizRepo.On("GetByID", uint(1)).Return(quiz, nil)

	_, err := svc.CancelQuiz(1, 42)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestCompleteQuiz(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, nil)

	quiz := &entity.Quiz{ID: 1, CreatorID: 42, Status: entity.QuizStatusActive}
	quizRepo.On("GetByID", uint(1)).Return(quiz, nil)
	quizRepo.On("UpdateStatus", uint(1), entity.QuizStatusCompleted).Return(nil)

	updated, err := svc.CompleteQuiz(1, 42)

	require.NoError(t, err)
	assert.Equal(t, entity.QuizStatusCompleted, updated.Status)
}

func TestScheduleQuiz(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, nil)

	quiz := &entity.Quiz{ID: 1, CreatorID: 42, Status: entity.QuizStatusDraft}
	at := time.Now().Add(2 * time.Hour)
	quizRepo.On("GetByID", uint(1)).Return(quiz, nil)
	quizRepo.On("UpdateScheduleInfo", uint(1), at, entity.QuizStatusScheduled).Return(nil)

	updated, err := svc.ScheduleQuiz(1, 42, at)

	require.NoError(t, err)
	assert.Equal(t, entity.QuizStatusScheduled, updated.Status)
	require.NotNil(t, updated.ScheduledAt)
	assert.Equal(t, at, *updated.ScheduledAt)
}

func TestScheduleQuizInPast(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, nil)

	quiz := &entity.Quiz{ID: 1, CreatorID: 42, Status: entity.QuizStatusDraft}
	quizRepo.On("GetByID", uint(1)).Return(quiz, nil)

	_, err := svc.ScheduleQuiz(1, 42, time.Now().Add(-time.Minute))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

// ============================================================================
// GetQuizForTaking
// ============================================================================

func TestGetQuizForTakingPrivateRequiresJoin(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, nil)

	quiz := &entity.Quiz{ID: 1, CreatorID: 7, Visibility: entity.QuizVisibilityPrivate}
	quizRepo.On("GetByID", uint(1)).Return(quiz, nil)
	participantRepo.On("GetByQuizAndUser", uint(1), uint(42)).Return(nil, apperrors.ErrNotFound)

	_, err := svc.GetQuizForTaking(1, 42)

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	questionRepo.AssertNotCalled(t, "GetByQuizID", mock.Anything)
}

func TestGetQuizForTakingLoadsQuestions(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, nil)

	quiz := &entity.Quiz{ID: 1, CreatorID: 7, Visibility: entity.QuizVisibilityPublic}
	questions := []entity.Question{{ID: 10, QuizID: 1, Text: "Q?", Options: entity.StringArray{"A", "B"}}}

	quizRepo.On("GetByID", uint(1)).Return(quiz, nil)
	questionRepo.On("GetByQuizID", uint(1)).Return(questions, nil)

	got, err := svc.GetQuizForTaking(1, 42)

	require.NoError(t, err)
	assert.Len(t, got.Questions, 1)
}

// ============================================================================
// InviteParticipant
// ============================================================================

type stubEmailService struct {
	sent []string
	err  error
}

func (s *stubEmailService) SendQuizInvite(ctx context.Context, toEmail, quizTitle, accessCode string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, toEmail)
	return nil
}

func TestInviteParticipant(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, nil)
	email := &stubEmailService{}
	svc.SetEmailService(email)

	code := "AB12CD"
	quiz := &entity.Quiz{ID: 1, CreatorID: 42, Visibility: entity.QuizVisibilityPrivate, AccessCode: &code}
	quizRepo.On("GetByID", uint(1)).Return(quiz, nil)

	require.NoError(t, svc.InviteParticipant(context.Background(), 1, 42, "friend@test.com"))
	assert.Equal(t, []string{"friend@test.com"}, email.sent)

	// Не создатель не может приглашать
	err := svc.InviteParticipant(context.Background(), 1, 7, "friend@test.com")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestInviteParticipantPublicQuiz(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, nil)
	svc.SetEmailService(&stubEmailService{})

	quiz := &entity.Quiz{ID: 1, CreatorID: 42, Visibility: entity.QuizVisibilityPublic}
	quizRepo.On("GetByID", uint(1)).Return(quiz, nil)

	err := svc.InviteParticipant(context.Background(), 1, 42, "friend@test.com")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestInviteParticipantSendFailure(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, nil)
	svc.SetEmailService(&stubEmailService{err: errors.New("resend is down")})

	code := "AB12CD"
	quiz := &entity.Quiz{ID: 1, CreatorID: 42, Visibility: entity.QuizVisibilityPrivate, AccessCode: &code}
	quizRepo.On("GetByID", uint(1)).Return(quiz, nil)

	err := svc.InviteParticipant(context.Background(), 1, 42, "friend@test.com")
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

// ============================================================================
// ListQuizzes
// ============================================================================

func TestListQuizzesClampsPagination(t *testing.T) {
	quizRepo := new(MockQuizRepository)
	questionRepo := new(MockQuestionRepository)
	participantRepo := new(MockParticipantRepository)
	svc := newQuizServiceForTest(quizRepo, questionRepo, participantRepo, nil)

	quizRepo.On("ListVisible", uint(42), repository.QuizFilters{}, 100, 0).
		Return([]entity.Quiz{}, int64(0), nil)

	_, _, err := svc.ListQuizzes(42, repository.QuizFilters{}, -1, 500)

	require.NoError(t, err)
	quizRepo.AssertExpectations(t)
}
