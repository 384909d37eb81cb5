package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-search/src/config"
	"chat-search/src/domain"
)

func TestNewAIClientValidatesConfig(t *testing.T) {
	_, err := NewAIClient(config.AIConfig{Model: "m"})
	assert.Error(t, err)

	_, err = NewAIClient(config.AIConfig{BaseURL: "http://localhost"})
	assert.Error(t, err)
}

func TestBuildPromptUsesExtractedText(t *testing.T) {
	results := []domain.SearchResult{
		{Content: domain.TextContent{Text: "Memoization caches results"}},
		{Content: domain.ImageContent{URL: "x.png"}},
		{Content: domain.DiagramContent{Source: "graph LR; A-->B"}},
	}

	prompt := BuildPrompt("what is memoization", results)
	assert.Contains(t, prompt, "Memoization caches results")
	assert.Contains(t, prompt, "graph LR; A-->B")
	assert.Contains(t, prompt, "Вопрос: what is memoization")
	assert.NotContains(t, prompt, "x.png")
}

func TestComposeAnswer(t *testing.T) {
	var got struct {
		Model    string              `json:"model"`
		Messages []map[string]string `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"content":"Кэширование результатов."}}]}`))
	}))
	defer srv.Close()

	client, err := NewAIClient(config.AIConfig{BaseURL: srv.URL + "/v1/", APIKey: "secret", Model: "test-model"})
	require.NoError(t, err)

	answer, err := client.ComposeAnswer(context.Background(), "memoization", []domain.SearchResult{
		{Content: domain.TextContent{Text: "Memoization caches results"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Кэширование результатов.", answer)
	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Contains(t, got.Messages[0]["content"], "Memoization caches results")
}

func TestComposeAnswerErrors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		},
		"empty choices": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		},
		"invalid json": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			client, err := NewAIClient(config.AIConfig{BaseURL: srv.URL, Model: "m"})
			require.NoError(t, err)

			_, err = client.ComposeAnswer(context.Background(), "query", nil)
			assert.Error(t, err)
		})
	}
}
