package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chat-search/src/config"
	"chat-search/src/domain"
	"chat-search/src/search"
)

// AIClient клиент для взаимодействия с OpenAI-совместимым API
type AIClient struct {
	config config.AIConfig
	client *http.Client
}

// NewAIClient создает новый экземпляр AI клиента
func NewAIClient(cfg config.AIConfig) (*AIClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("не задан base_url AI API")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("не задана модель AI API")
	}

	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &AIClient{
		config: cfg,
		client: &http.Client{Timeout: timeout},
	}, nil
}

// ComposeAnswer формулирует ответ на вопрос по найденным ранее ответам AI
func (c *AIClient) ComposeAnswer(ctx context.Context, query string, results []domain.SearchResult) (string, error) {
	prompt := BuildPrompt(query, results)

	payload := map[string]interface{}{
		"model":       c.config.Model,
		"messages":    []map[string]string{{"role": "user", "content": prompt}},
		"max_tokens":  c.config.MaxTokens,
		"temperature": c.config.Temperature,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("ошибка маршалинга JSON: %w", err)
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("ошибка создания запроса: %w", err)
	}

	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ошибка API: статус %d, тело: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("ошибка парсинга JSON ответа: %w", err)
	}

	if len(response.Choices) == 0 || strings.TrimSpace(response.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("API вернул пустой ответ")
	}

	return response.Choices[0].Message.Content, nil
}

// BuildPrompt создает промпт на основе запроса и текстов найденных ответов
func BuildPrompt(query string, results []domain.SearchResult) string {
	var sb strings.Builder
	for _, r := range results {
		text := search.ExtractText(r.Content)
		if text == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	return fmt.Sprintf(
		"Ответь на вопрос, используя только информацию из следующего контекста.\n\nКонтекст:\n%s\nВопрос: %s\n\nОтвет:",
		sb.String(), query,
	)
}
