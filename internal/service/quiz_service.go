package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/studyai/quiz-api/internal/domain/entity"
	"github.com/studyai/quiz-api/internal/domain/repository"
	"github.com/studyai/quiz-api/internal/notification"
	apperrors "github.com/studyai/quiz-api/internal/pkg/errors"
	"github.com/studyai/quiz-api/internal/service/generator"
)

const (
	// Длина кода доступа приватной викторины
	accessCodeLength = 6

	// Максимум попыток перегенерации кода доступа при коллизии
	maxAccessCodeRetries = 5

	// Ограничения на количество вопросов при AI-генерации
	minGeneratedQuestions = 1
	maxGeneratedQuestions = 50
)

// QuizService предоставляет методы для работы с викторинами
type QuizService struct {
	quizRepo        repository.QuizRepository
	questionRepo    repository.QuestionRepository
	participantRepo repository.ParticipantRepository
	llm             generator.Generator
	fallback        generator.Generator
	bus             notification.Bus
	emailService    EmailService
}

// SetEmailService включает отправку приглашений по email
func (s *QuizService) SetEmailService(emailService EmailService) {
	s.emailService = emailService
}

// NewQuizService создает новый сервис викторин.
// llm может быть nil - тогда AI-путь сразу использует шаблонный генератор.
func NewQuizService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	participantRepo repository.ParticipantRepository,
	llm generator.Generator,
	fallback generator.Generator,
	bus notification.Bus,
) *QuizService {
	return &QuizService{
		quizRepo:        quizRepo,
		questionRepo:    questionRepo,
		participantRepo: participantRepo,
		llm:             llm,
		fallback:        fallback,
		bus:             bus,
	}
}

// QuestionInput представляет вопрос в запросе на ручное создание викторины
type QuestionInput struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
	Explanation   string   `json:"explanation"`
	Points        int      `json:"points"`
	TimeLimitSec  int      `json:"time_limit_sec"`
}

// CreateQuizParams содержит параметры создания викторины
type CreateQuizParams struct {
	Title           string
	Topic           string
	Difficulty      string
	Visibility      string
	UseAI           bool
	QuestionCount   int             // AI-путь
	Questions       []QuestionInput // Ручной путь
	ScheduledAt     *time.Time
	DurationMinutes int
}

// CreateQuiz создает викторину в статусе draft.
// AI-путь: вопросы запрашиваются у LLM; при ошибке или некорректном наборе
// используется детерминированный шаблонный генератор, и викторина помечается
// ai_generated=false - фолбэк всегда виден вызывающей стороне.
// Ручной путь: весь пакет вопросов отклоняется при первом нарушении инвариантов.
// Создатель добавляется участником на обоих путях.
func (s *QuizService) CreateQuiz(ctx context.Context, creatorID uint, params CreateQuizParams) (*entity.Quiz, error) {
	if strings.TrimSpace(params.Topic) == "" {
		return nil, fmt.Errorf("%w: topic is required", apperrors.ErrValidation)
	}
	if !entity.ValidDifficulty(params.Difficulty) {
		return nil, fmt.Errorf("%w: invalid difficulty %q", apperrors.ErrValidation, params.Difficulty)
	}
	visibility := params.Visibility
	if visibility == "" {
		visibility = entity.QuizVisibilityPublic
	}
	if !entity.ValidVisibility(visibility) {
		return nil, fmt.Errorf("%w: invalid visibility %q", apperrors.ErrValidation, visibility)
	}
	if params.ScheduledAt != nil && params.ScheduledAt.Before(time.Now()) {
		return nil, fmt.Errorf("%w: scheduled time must be in the future", apperrors.ErrValidation)
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		title = fmt.Sprintf("%s - %s Quiz", params.Topic, params.Difficulty)
	}

	var questions []entity.Question
	aiGenerated := false
	var err error

	if params.UseAI {
		questions, aiGenerated, err = s.generateQuestions(ctx, params.Topic, params.Difficulty, params.QuestionCount)
	} else {
		questions, err = buildManualQuestions(params.Questions)
	}
	if err != nil {
		return nil, err
	}

	quiz := &entity.Quiz{
		Title:           title,
		Topic:           params.Topic,
		Difficulty:      params.Difficulty,
		CreatorID:       creatorID,
		Visibility:      visibility,
		Status:          entity.QuizStatusDraft,
		AIGenerated:     aiGenerated,
		ScheduledAt:     params.ScheduledAt,
		DurationMinutes: params.DurationMinutes,
		Questions:       questions,
	}

	if err := s.persistWithAccessCode(quiz); err != nil {
		return nil, err
	}

	// Создатель становится участником на обоих путях создания
	if _, err := s.addParticipant(quiz.ID, creatorID); err != nil {
		log.Printf("[QuizService] Не удалось добавить создателя #%d участником викторины #%d: %v", creatorID, quiz.ID, err)
	}

	log.Printf("[QuizService] Создана викторина #%d (topic=%q, ai=%t, visibility=%s, questions=%d)",
		quiz.ID, quiz.Topic, quiz.AIGenerated, quiz.Visibility, len(quiz.Questions))
	return quiz, nil
}

// generateQuestions запрашивает вопросы у LLM и валидирует каждый элемент.
// Любая ошибка или некорректный набор переключает на шаблонный генератор.
// Возвращаемый флаг сообщает, получены ли вопросы действительно от AI.
func (s *QuizService) generateQuestions(ctx context.Context, topic, difficulty string, count int) ([]entity.Question, bool, error) {
	if count < minGeneratedQuestions || count > maxGeneratedQuestions {
		return nil, false, fmt.Errorf("%w: question count must be between %d and %d",
			apperrors.ErrValidation, minGeneratedQuestions, maxGeneratedQuestions)
	}

	if s.llm != nil {
		generated, err := s.llm.GenerateQuestions(ctx, topic, difficulty, count)
		if err == nil {
			err = generator.ValidateGenerated(generated, count)
		}
		if err == nil {
			return convertGenerated(generated[:count]), true, nil
		}
		log.Printf("[QuizService] AI-генерация не удалась (topic=%q): %v - используется шаблонный генератор", topic, err)
	}

	generated, err := s.fallback.GenerateQuestions(ctx, topic, difficulty, count)
	if err != nil {
		return nil, false, fmt.Errorf("%w: fallback generator failed: %v", apperrors.ErrUpstream, err)
	}
	if err := generator.ValidateGenerated(generated, count); err != nil {
		return nil, false, fmt.Errorf("%w: fallback generator produced invalid questions: %v", apperrors.ErrUpstream, err)
	}
	return convertGenerated(generated[:count]), false, nil
}

// buildManualQuestions валидирует вручную заданные вопросы.
// Весь пакет отклоняется при первом нарушении - частичное создание недопустимо.
func buildManualQuestions(inputs []QuestionInput) ([]entity.Question, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one question is required", apperrors.ErrValidation)
	}

	questions := make([]entity.Question, 0, len(inputs))
	for i, input := range inputs {
		question := entity.Question{
			Position:      i,
			Text:          input.Text,
			Options:       entity.StringArray(input.Options),
			CorrectOption: input.CorrectOption,
			Explanation:   input.Explanation,
			Points:        input.Points,
			TimeLimitSec:  input.TimeLimitSec,
		}
		question.ApplyDefaults()
		if err := question.Validate(); err != nil {
			return nil, fmt.Errorf("%w: question #%d: %v", apperrors.ErrValidation, i+1, err)
		}
		questions = append(questions, question)
	}
	return questions, nil
}

// convertGenerated превращает валидированные сгенерированные вопросы в сущности
func convertGenerated(generated []generator.GeneratedQuestion) []entity.Question {
	questions := make([]entity.Question, 0, len(generated))
	for i, g := range generated {
		question := entity.Question{
			Position:      i,
			Text:          g.Text,
			Options:       entity.StringArray(g.Options),
			CorrectOption: g.CorrectOption,
			Explanation:   g.Explanation,
		}
		question.ApplyDefaults()
		questions = append(questions, question)
	}
	return questions
}

// persistWithAccessCode сохраняет викторину, для приватных генерируя код доступа.
// Уникальность кода гарантирует БД: при коллизии код перегенерируется,
// не более maxAccessCodeRetries попыток.
func (s *QuizService) persistWithAccessCode(quiz *entity.Quiz) error {
	if !quiz.IsPrivate() {
		return s.quizRepo.Create(quiz)
	}

	for attempt := 1; attempt <= maxAccessCodeRetries; attempt++ {
		code := generateAccessCode()
		quiz.AccessCode = &code

		err := s.quizRepo.Create(quiz)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrAccessCodeTaken) {
			return fmt.Errorf("failed to create quiz: %w", err)
		}
		log.Printf("[QuizService] Коллизия кода доступа %q (попытка %d/%d)", code, attempt, maxAccessCodeRetries)
	}
	return fmt.Errorf("%w: could not generate a unique access code after %d attempts",
		apperrors.ErrUpstream, maxAccessCodeRetries)
}

// generateAccessCode возвращает короткий код доступа, производный от UUID
func generateAccessCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return raw[:accessCodeLength]
}

// GetQuizByID возвращает викторину по ID
func (s *QuizService) GetQuizByID(quizID uint) (*entity.Quiz, error) {
	return s.quizRepo.GetByID(quizID)
}

// GetQuizForTaking возвращает викторину с вопросами для прохождения.
// Доступ: публичная викторина, создатель или уже присоединившийся участник.
// Правильные ответы и пояснения скрываются на уровне DTO.
func (s *QuizService) GetQuizForTaking(quizID, userID uint) (*entity.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}

	if quiz.IsPrivate() && !quiz.IsCreator(userID) {
		if _, err := s.participantRepo.GetByQuizAndUser(quizID, userID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: join the quiz with its access code first", apperrors.ErrForbidden)
			}
			return nil, err
		}
	}

	questions, err := s.questionRepo.GetByQuizID(quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	quiz.Questions = questions

	return quiz, nil
}

// ListQuizzes возвращает викторины, видимые пользователю: публичные,
// созданные им и те, к которым он присоединился. Без дубликатов.
func (s *QuizService) ListQuizzes(userID uint, filters repository.QuizFilters, page, pageSize int) ([]entity.Quiz, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	} else if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize
	return s.quizRepo.ListVisible(userID, filters, pageSize, offset)
}

// JoinQuiz добавляет пользователя в участники викторины. Идемпотентно:
// повторное присоединение возвращает существующего участника.
// При quizID == 0 викторина ищется по коду доступа.
// Приватная викторина требует правильный код, кроме создателя.
func (s *QuizService) JoinQuiz(userID, quizID uint, accessCode string) (*entity.Participant, error) {
	var quiz *entity.Quiz
	var err error

	if quizID != 0 {
		quiz, err = s.quizRepo.GetByID(quizID)
	} else if accessCode != "" {
		quiz, err = s.quizRepo.GetByAccessCode(accessCode)
	} else {
		return nil, fmt.Errorf("%w: quiz id or access code is required", apperrors.ErrValidation)
	}
	if err != nil {
		return nil, err
	}

	if quiz.Status == entity.QuizStatusCompleted || quiz.Status == entity.QuizStatusCancelled {
		return nil, fmt.Errorf("%w: quiz is %s", apperrors.ErrConflict, quiz.Status)
	}

	if quiz.IsPrivate() && !quiz.IsCreator(userID) && !quiz.MatchesAccessCode(accessCode) {
		return nil, fmt.Errorf("%w: invalid access code", apperrors.ErrForbidden)
	}

	return s.addParticipant(quiz.ID, userID)
}

// addParticipant создает участника, возвращая существующего при повторном вызове
func (s *QuizService) addParticipant(quizID, userID uint) (*entity.Participant, error) {
	existing, err := s.participantRepo.GetByQuizAndUser(quizID, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	participant := &entity.Participant{
		QuizID:   quizID,
		UserID:   userID,
		JoinedAt: time.Now(),
		Answers:  entity.AnswerRecordList{},
	}
	if err := s.participantRepo.Create(participant); err != nil {
		// Гонка двух одновременных join: уникальный индекс (quiz_id, user_id)
		// отклонил вторую вставку - перечитываем существующую запись
		if created, lookupErr := s.participantRepo.GetByQuizAndUser(quizID, userID); lookupErr == nil {
			return created, nil
		}
		return nil, err
	}
	return participant, nil
}

// StartQuiz переводит викторину draft|scheduled → active. Только создатель.
func (s *QuizService) StartQuiz(quizID, callerID uint) (*entity.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsCreator(callerID) {
		return nil, fmt.Errorf("%w: only the creator can start the quiz", apperrors.ErrForbidden)
	}
	if !quiz.CanStart() {
		return nil, fmt.Errorf("%w: cannot start a quiz in status %q", apperrors.ErrConflict, quiz.Status)
	}

	if err := s.quizRepo.UpdateStatus(quizID, entity.QuizStatusActive); err != nil {
		return nil, fmt.Errorf("failed to start quiz: %w", err)
	}
	quiz.Status = entity.QuizStatusActive

	s.bus.Publish(notification.NewEvent(notification.EventQuizStarted, quizID, map[string]interface{}{
		"title": quiz.Title,
	}))

	log.Printf("[QuizService] Викторина #%d запущена создателем #%d", quizID, callerID)
	return quiz, nil
}

// ScheduleQuiz переводит викторину draft → scheduled на указанное время. Только создатель.
func (s *QuizService) ScheduleQuiz(quizID, callerID uint, scheduledAt time.Time) (*entity.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsCreator(callerID) {
		return nil, fmt.Errorf("%w: only the creator can schedule the quiz", apperrors.ErrForbidden)
	}
	if quiz.Status != entity.QuizStatusDraft && quiz.Status != entity.QuizStatusScheduled {
		return nil, fmt.Errorf("%w: cannot schedule a quiz in status %q", apperrors.ErrConflict, quiz.Status)
	}
	if scheduledAt.Before(time.Now()) {
		return nil, fmt.Errorf("%w: scheduled time must be in the future", apperrors.ErrValidation)
	}

	if err := s.quizRepo.UpdateScheduleInfo(quizID, scheduledAt, entity.QuizStatusScheduled); err != nil {
		return nil, fmt.Errorf("failed to schedule quiz: %w", err)
	}
	quiz.Status = entity.QuizStatusScheduled
	quiz.ScheduledAt = &scheduledAt
	return quiz, nil
}

// CompleteQuiz переводит викторину active → completed. Только создатель.
func (s *QuizService) CompleteQuiz(quizID, callerID uint) (*entity.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsCreator(callerID) {
		return nil, fmt.Errorf("%w: only the creator can complete the quiz", apperrors.ErrForbidden)
	}
	if !quiz.IsActive() {
		return nil, fmt.Errorf("%w: cannot complete a quiz in status %q", apperrors.ErrConflict, quiz.Status)
	}

	if err := s.quizRepo.UpdateStatus(quizID, entity.QuizStatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to complete quiz: %w", err)
	}
	quiz.Status = entity.QuizStatusCompleted

	s.bus.Publish(notification.NewEvent(notification.EventQuizCompleted, quizID, nil))
	log.Printf("[QuizService] Викторина #%d завершена создателем #%d", quizID, callerID)
	return quiz, nil
}

// CancelQuiz переводит викторину draft|scheduled → cancelled. Только создатель. Терминально.
func (s *QuizService) CancelQuiz(quizID, callerID uint) (*entity.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsCreator(callerID) {
		return nil, fmt.Errorf("%w: only the creator can cancel the quiz", apperrors.ErrForbidden)
	}
	if !quiz.CanCancel() {
		return nil, fmt.Errorf("%w: cannot cancel a quiz in status %q", apperrors.ErrConflict, quiz.Status)
	}

	if err := s.quizRepo.UpdateStatus(quizID, entity.QuizStatusCancelled); err != nil {
		return nil, fmt.Errorf("failed to cancel quiz: %w", err)
	}
	quiz.Status = entity.QuizStatusCancelled

	s.bus.Publish(notification.NewEvent(notification.EventQuizCancelled, quizID, nil))
	return quiz, nil
}

// InviteParticipant отправляет код доступа приватной викторины на email.
// Только создатель может приглашать; для публичных викторин код не нужен.
func (s *QuizService) InviteParticipant(ctx context.Context, quizID, callerID uint, email string) error {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return err
	}
	if !quiz.IsCreator(callerID) {
		return fmt.Errorf("%w: only the creator can send invites", apperrors.ErrForbidden)
	}
	if !quiz.IsPrivate() || quiz.AccessCode == nil {
		return fmt.Errorf("%w: invites are only available for private quizzes", apperrors.ErrValidation)
	}
	if s.emailService == nil {
		return fmt.Errorf("%w: email delivery is not configured", apperrors.ErrUpstream)
	}

	if err := s.emailService.SendQuizInvite(ctx, email, quiz.Title, *quiz.AccessCode); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrUpstream, err)
	}
	return nil
}

// GetParticipants возвращает участников викторины
func (s *QuizService) GetParticipants(quizID uint) ([]entity.Participant, error) {
	if _, err := s.quizRepo.GetByID(quizID); err != nil {
		return nil, err
	}
	return s.participantRepo.GetByQuizID(quizID)
}
