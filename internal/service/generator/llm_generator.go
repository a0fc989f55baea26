package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Config содержит настройки LLM-генератора
type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	TimeoutSec int
}

// LLMGenerator генерирует вопросы через OpenAI-совместимый chat completions API.
// Ответ модели парсится как JSON-массив вопросов и валидируется вызывающей стороной.
type LLMGenerator struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewLLMGenerator создает новый LLM-генератор вопросов
func NewLLMGenerator(cfg Config) (*LLMGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("LLM api key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &LLMGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateQuestions запрашивает у модели count вопросов по теме и сложности.
// Может вернуть ошибку таймаута или некорректный набор - вызывающая сторона
// валидирует результат и решает, переходить ли на шаблонный генератор.
func (g *LLMGenerator) GenerateQuestions(ctx context.Context, topic, difficulty string, count int) ([]GeneratedQuestion, error) {
	prompt := fmt.Sprintf(
		"Generate exactly %d multiple-choice quiz questions about %q with %s difficulty. "+
			"Respond with a JSON array only, no prose. Each element must have fields: "+
			"\"question\" (string), \"options\" (array of 4 strings), "+
			"\"correct_answer\" (0-based index into options), \"explanation\" (string).",
		count, topic, difficulty,
	)

	reqBody := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a quiz question generator. You respond with valid JSON only."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("LLM request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read LLM response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[LLMGenerator] Запрос завершился с кодом %d: %s", resp.StatusCode, truncateForLog(string(body), 200))
		return nil, fmt.Errorf("LLM returned status %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to decode LLM response: %w", err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("LLM error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("LLM returned no choices")
	}

	return ParseQuestionsJSON(chatResp.Choices[0].Message.Content)
}

// ParseQuestionsJSON извлекает JSON-массив вопросов из текста ответа модели.
// Модели иногда оборачивают JSON в markdown-блок - срезаем его перед парсингом.
func ParseQuestionsJSON(content string) ([]GeneratedQuestion, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Страховка: берем подстроку от первой '[' до последней ']'
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("LLM response does not contain a JSON array")
	}

	var questions []GeneratedQuestion
	if err := json.Unmarshal([]byte(content[start:end+1]), &questions); err != nil {
		return nil, fmt.Errorf("failed to parse questions JSON: %w", err)
	}
	return questions, nil
}

func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
