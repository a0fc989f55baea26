package dto

import (
	"time"

	"github.com/studyai/quiz-api/internal/domain/entity"
	"github.com/studyai/quiz-api/internal/service"
)

// CreateQuizRequest представляет запрос на создание викторины.
// AI-путь: use_ai=true и question_count; ручной путь: массив questions.
type CreateQuizRequest struct {
	Title           string                  `json:"title"`
	Topic           string                  `json:"topic" binding:"required"`
	Difficulty      string                  `json:"difficulty" binding:"required"`
	Visibility      string                  `json:"visibility"`
	UseAI           bool                    `json:"use_ai"`
	QuestionCount   int                     `json:"question_count"`
	Questions       []service.QuestionInput `json:"questions"`
	ScheduledAt     *time.Time              `json:"scheduled_at"`
	DurationMinutes int                     `json:"duration_minutes"`
}

// ScheduleQuizRequest представляет запрос на планирование викторины
type ScheduleQuizRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

// JoinQuizRequest представляет запрос на присоединение к викторине
type JoinQuizRequest struct {
	QuizID     uint   `json:"quiz_id"`
	AccessCode string `json:"access_code"`
}

// InviteRequest представляет запрос на приглашение в приватную викторину
type InviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// SubmitAnswersRequest представляет запрос на отправку ответов
type SubmitAnswersRequest struct {
	Answers      []service.AnswerSubmission `json:"answers" binding:"required"`
	TotalTimeSec int                        `json:"total_time_sec"`
}

// QuestionResponse представляет вопрос для клиента.
// Правильный ответ и пояснение никогда не попадают в ответ API.
type QuestionResponse struct {
	ID           uint     `json:"id"`
	Position     int      `json:"position"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	Points       int      `json:"points"`
	TimeLimitSec int      `json:"time_limit_sec"`
}

// QuizResponse представляет викторину для клиента
type QuizResponse struct {
	ID              uint               `json:"id"`
	Title           string             `json:"title"`
	Topic           string             `json:"topic"`
	Difficulty      string             `json:"difficulty"`
	CreatorID       uint               `json:"creator_id"`
	Visibility      string             `json:"visibility"`
	AccessCode      *string            `json:"access_code,omitempty"`
	Status          string             `json:"status"`
	AIGenerated     bool               `json:"ai_generated"`
	ScheduledAt     *time.Time         `json:"scheduled_at,omitempty"`
	DurationMinutes int                `json:"duration_minutes"`
	QuestionCount   int                `json:"question_count"`
	Questions       []QuestionResponse `json:"questions,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// NewQuestionResponse создает DTO вопроса без правильного ответа
func NewQuestionResponse(q *entity.Question) QuestionResponse {
	return QuestionResponse{
		ID:           q.ID,
		Position:     q.Position,
		Text:         q.Text,
		Options:      []string(q.Options),
		Points:       q.Points,
		TimeLimitSec: q.TimeLimitSec,
	}
}

// NewQuizResponse создает DTO викторины.
// Код доступа виден только создателю; вопросы включаются, если загружены.
func NewQuizResponse(quiz *entity.Quiz, viewerID uint) QuizResponse {
	resp := QuizResponse{
		ID:              quiz.ID,
		Title:           quiz.Title,
		Topic:           quiz.Topic,
		Difficulty:      quiz.Difficulty,
		CreatorID:       quiz.CreatorID,
		Visibility:      quiz.Visibility,
		Status:          quiz.Status,
		AIGenerated:     quiz.AIGenerated,
		ScheduledAt:     quiz.ScheduledAt,
		DurationMinutes: quiz.DurationMinutes,
		QuestionCount:   len(quiz.Questions),
		CreatedAt:       quiz.CreatedAt,
	}
	if quiz.IsCreator(viewerID) {
		resp.AccessCode = quiz.AccessCode
	}
	for i := range quiz.Questions {
		resp.Questions = append(resp.Questions, NewQuestionResponse(&quiz.Questions[i]))
	}
	return resp
}

// QuizListResponse представляет страницу списка викторин
type QuizListResponse struct {
	Quizzes  []QuizResponse `json:"quizzes"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// NewQuizListResponse создает DTO страницы списка викторин
func NewQuizListResponse(quizzes []entity.Quiz, total int64, page, pageSize int, viewerID uint) QuizListResponse {
	resp := QuizListResponse{
		Quizzes:  make([]QuizResponse, 0, len(quizzes)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for i := range quizzes {
		resp.Quizzes = append(resp.Quizzes, NewQuizResponse(&quizzes[i], viewerID))
	}
	return resp
}

// ParticipantResponse представляет участника викторины
type ParticipantResponse struct {
	ID           uint       `json:"id"`
	QuizID       uint       `json:"quiz_id"`
	UserID       uint       `json:"user_id"`
	JoinedAt     time.Time  `json:"joined_at"`
	Score        int        `json:"score"`
	Percentage   int        `json:"percentage"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	TotalTimeSec int        `json:"total_time_sec"`
	Rank         int        `json:"rank"`
}

// NewParticipantResponse создает DTO участника
func NewParticipantResponse(p *entity.Participant) ParticipantResponse {
	return ParticipantResponse{
		ID:           p.ID,
		QuizID:       p.QuizID,
		UserID:       p.UserID,
		JoinedAt:     p.JoinedAt,
		Score:        p.Score,
		Percentage:   p.Percentage,
		CompletedAt:  p.CompletedAt,
		TotalTimeSec: p.TotalTimeSec,
		Rank:         p.Rank,
	}
}

// ParticipantResultResponse представляет результат участника с его ответами
type ParticipantResultResponse struct {
	ParticipantResponse
	Answers []entity.AnswerRecord `json:"answers"`
}

// NewParticipantResultResponse создает DTO результата участника
func NewParticipantResultResponse(p *entity.Participant) ParticipantResultResponse {
	return ParticipantResultResponse{
		ParticipantResponse: NewParticipantResponse(p),
		Answers:             []entity.AnswerRecord(p.Answers),
	}
}
