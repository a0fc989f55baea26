package handler

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/studyai/quiz-api/internal/domain/entity"
	"github.com/studyai/quiz-api/internal/handler/dto"
	"github.com/studyai/quiz-api/internal/service"
)

// ResultHandler обрабатывает запросы, связанные с результатами и таблицей лидеров
type ResultHandler struct {
	resultService *service.ResultService
	quizService   *service.QuizService
}

// NewResultHandler создает новый обработчик результатов
func NewResultHandler(resultService *service.ResultService, quizService *service.QuizService) *ResultHandler {
	return &ResultHandler{
		resultService: resultService,
		quizService:   quizService,
	}
}

// SubmitAnswers обрабатывает отправку ответов участником
// POST /api/quizzes/:id/submit
func (h *ResultHandler) SubmitAnswers(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req dto.SubmitAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	result, err := h.resultService.SubmitAnswers(quizID, userID, req.Answers, req.TotalTimeSec)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetLeaderboard возвращает таблицу лидеров викторины
// GET /api/quizzes/:id/leaderboard
func (h *ResultHandler) GetLeaderboard(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	quizID, ok := parseIDParam(c)
	if !ok {
		return
	}

	entries, err := h.resultService.GetLeaderboard(quizID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

// GetMyResult возвращает результат текущего пользователя в викторине
// GET /api/quizzes/:id/results/me
func (h *ResultHandler) GetMyResult(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c)
	if !ok {
		return
	}

	participant, err := h.resultService.GetParticipantResult(quizID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewParticipantResultResponse(participant))
}

// GetAnalytics возвращает производные счетчики викторины
// GET /api/quizzes/:id/analytics
func (h *ResultHandler) GetAnalytics(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	quizID, ok := parseIDParam(c)
	if !ok {
		return
	}

	analytics, err := h.resultService.GetQuizAnalytics(quizID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// ExportLeaderboard выгружает таблицу лидеров в формате xlsx или csv
// GET /api/quizzes/:id/leaderboard/export?format=xlsx|csv
func (h *ResultHandler) ExportLeaderboard(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	quizID, ok := parseIDParam(c)
	if !ok {
		return
	}

	quiz, err := h.quizService.GetQuizByID(quizID)
	if err != nil {
		respondError(c, err)
		return
	}

	entries, err := h.resultService.GetLeaderboard(quizID)
	if err != nil {
		respondError(c, err)
		return
	}

	format := c.DefaultQuery("format", "xlsx")
	switch format {
	case "csv":
		h.writeCSV(c, quiz, entries)
	case "xlsx":
		h.writeXLSX(c, quiz, entries)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported export format %q", format)})
	}
}

var exportHeaders = []string{"Rank", "Username", "Score", "Percentage", "Total Time (sec)", "Completed At"}

func (h *ResultHandler) writeCSV(c *gin.Context, quiz *entity.Quiz, entries []entity.LeaderboardEntry) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="leaderboard_quiz_%d.csv"`, quiz.ID))

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write(exportHeaders)
	for _, e := range entries {
		_ = writer.Write([]string{
			strconv.Itoa(e.Rank),
			e.Username,
			strconv.Itoa(e.Score),
			strconv.Itoa(e.Percentage),
			strconv.Itoa(e.TotalTimeSec),
			e.CompletedAt.Format("2006-01-02 15:04:05"),
		})
	}
	writer.Flush()
}

func (h *ResultHandler) writeXLSX(c *gin.Context, quiz *entity.Quiz, entries []entity.LeaderboardEntry) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("[ResultHandler] Ошибка при закрытии xlsx файла: %v", err)
		}
	}()

	const sheet = "Leaderboard"
	f.SetSheetName("Sheet1", sheet)

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, e := range entries {
		values := []interface{}{e.Rank, e.Username, e.Score, e.Percentage, e.TotalTimeSec, e.CompletedAt.Format("2006-01-02 15:04:05")}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="leaderboard_quiz_%d.xlsx"`, quiz.ID))

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[ResultHandler] Ошибка при выгрузке xlsx таблицы лидеров викторины #%d: %v", quiz.ID, err)
	}
}
