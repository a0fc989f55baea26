package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/studyai/quiz-api/internal/domain/entity"
	"github.com/studyai/quiz-api/internal/domain/repository"
	"github.com/studyai/quiz-api/internal/handler/dto"
	apperrors "github.com/studyai/quiz-api/internal/pkg/errors"
	"github.com/studyai/quiz-api/internal/service"
)

// QuizHandler обрабатывает запросы, связанные с викторинами
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler создает новый обработчик викторин
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// CreateQuiz обрабатывает запрос на создание викторины
// POST /api/quizzes
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	quiz, err := h.quizService.CreateQuiz(c.Request.Context(), userID, service.CreateQuizParams{
		Title:           req.Title,
		Topic:           req.Topic,
		Difficulty:      req.Difficulty,
		Visibility:      req.Visibility,
		UseAI:           req.UseAI,
		QuestionCount:   req.QuestionCount,
		Questions:       req.Questions,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuizResponse(quiz, userID))
}

// GetQuiz возвращает викторину с вопросами для прохождения
// GET /api/quizzes/:id
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c)
	if !ok {
		return
	}

	quiz, err := h.quizService.GetQuizForTaking(quizID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz, userID))
}

// ListQuizzes возвращает страницу викторин, видимых пользователю
// GET /api/quizzes?status=&difficulty=&search=&page=&page_size=
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filters := repository.QuizFilters{
		Status:     c.Query("status"),
		Difficulty: c.Query("difficulty"),
		Search:     c.Query("search"),
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	quizzes, total, err := h.quizService.ListQuizzes(userID, filters, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizListResponse(quizzes, total, page, pageSize, userID))
}

// JoinQuiz обрабатывает присоединение к викторине по ID или коду доступа
// POST /api/quizzes/join
func (h *QuizHandler) JoinQuiz(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.JoinQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	participant, err := h.quizService.JoinQuiz(userID, req.QuizID, req.AccessCode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewParticipantResponse(participant))
}

// StartQuiz запускает викторину
// POST /api/quizzes/:id/start
func (h *QuizHandler) StartQuiz(c *gin.Context) {
	h.transition(c, h.quizService.StartQuiz)
}

// CompleteQuiz завершает викторину
// POST /api/quizzes/:id/complete
func (h *QuizHandler) CompleteQuiz(c *gin.Context) {
	h.transition(c, h.quizService.CompleteQuiz)
}

// CancelQuiz отменяет викторину
// POST /api/quizzes/:id/cancel
func (h *QuizHandler) CancelQuiz(c *gin.Context) {
	h.transition(c, h.quizService.CancelQuiz)
}

// ScheduleQuiz планирует запуск викторины на указанное время
// POST /api/quizzes/:id/schedule
func (h *QuizHandler) ScheduleQuiz(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.ScheduleQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	quiz, err := h.quizService.ScheduleQuiz(quizID, userID, req.ScheduledAt)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz, userID))
}

// InviteParticipant отправляет приглашение с кодом доступа по email
// POST /api/quizzes/:id/invite
func (h *QuizHandler) InviteParticipant(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := h.quizService.InviteParticipant(c.Request.Context(), quizID, userID, req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invite sent"})
}

// GetParticipants возвращает участников викторины
// GET /api/quizzes/:id/participants
func (h *QuizHandler) GetParticipants(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	quizID, ok := parseIDParam(c)
	if !ok {
		return
	}

	participants, err := h.quizService.GetParticipants(quizID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]dto.ParticipantResponse, 0, len(participants))
	for i := range participants {
		resp = append(resp, dto.NewParticipantResponse(&participants[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// transition выполняет переход статуса викторины от имени создателя
func (h *QuizHandler) transition(c *gin.Context, op func(quizID, callerID uint) (*entity.Quiz, error)) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c)
	if !ok {
		return
	}

	quiz, err := op(quizID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz, userID))
}

// parseIDParam извлекает числовой :id из пути запроса
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, apperrors.ErrValidation)
		return 0, false
	}
	return uint(id), true
}
