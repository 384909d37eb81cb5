package infrastructure

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"chat-search/src/domain"
)

// SeedConversations демонстрационный корпус, покрывающий все типы содержимого
func SeedConversations(now time.Time) []domain.Conversation {
	at := func(minutes int) time.Time {
		return now.Add(time.Duration(minutes) * time.Minute)
	}

	return []domain.Conversation{
		{
			ID:          "conv-react-performance",
			Title:       "Производительность React",
			Description: "Мемоизация и профилирование компонентов",
			CreatedAt:   at(0),
			Messages: []domain.Message{
				{ID: "msg-1", Sender: domain.SenderUser, Timestamp: at(0), Content: domain.TextContent{Text: "How does memoization help React performance?"}},
				{ID: "msg-2", Sender: domain.SenderAI, Timestamp: at(1), Reasoning: "Пользователь спрашивает про useMemo и React.memo",
					Content: domain.TextContent{Text: "Memoization lets React skip recomputing values and re-rendering components whose props did not change. Use useMemo for expensive calculations and React.memo for pure components."}},
				{ID: "msg-3", Sender: domain.SenderUser, Timestamp: at(2), Content: domain.TextContent{Text: "Show me an example"}},
				{ID: "msg-4", Sender: domain.SenderAI, Timestamp: at(3),
					Content: domain.CodeContent{Language: "javascript", Code: "const sorted = useMemo(() => items.sort(compare), [items]);\nexport default React.memo(ItemList);"}},
				{ID: "msg-5", Sender: domain.SenderAI, Timestamp: at(4),
					Content: domain.ChartContent{ChartType: "bar", Title: "Render time", Data: domain.ChartData{
						Labels:   []string{"baseline", "memoized"},
						Datasets: []domain.ChartDataset{{Label: "render milliseconds", Data: []float64{48, 12}}},
					}}},
			},
		},
		{
			ID:          "conv-data-review",
			Title:       "Квартальные данные",
			Description: "Таблицы и сводки продаж",
			CreatedAt:   at(10),
			Messages: []domain.Message{
				{ID: "msg-1", Sender: domain.SenderUser, Timestamp: at(10), Content: domain.TextContent{Text: "Summarize quarterly sales by region"}},
				{ID: "msg-2", Sender: domain.SenderAI, Timestamp: at(11),
					Content: domain.SpreadsheetContent{
						Data: domain.SpreadsheetData{
							Headers: []string{"region", "quarter", "sales"},
							Rows:    [][]string{{"north", "Q1", "120000"}, {"south", "Q1", "95000"}},
						},
						Metadata: domain.SpreadsheetMetadata{Summary: "Quarterly sales by region: north leads with 120000, south at 95000."},
					}},
				{ID: "msg-3", Sender: domain.SenderUser, Timestamp: at(12), Content: domain.TextContent{Text: "And the raw inventory sheet?"}},
				{ID: "msg-4", Sender: domain.SenderAI, Timestamp: at(13),
					Content: domain.SpreadsheetContent{Data: domain.SpreadsheetData{
						Headers: []string{"warehouse", "inventory"},
						Rows:    [][]string{{"rotterdam", "5400"}, {"hamburg", "3100"}},
					}}},
			},
		},
		{
			ID:          "conv-architecture",
			Title:       "Архитектура сервиса",
			Description: "Диаграммы, документы и наброски",
			CreatedAt:   at(20),
			Messages: []domain.Message{
				{ID: "msg-1", Sender: domain.SenderUser, Timestamp: at(20), Content: domain.TextContent{Text: "Draw the request flow of the gateway"}},
				{ID: "msg-2", Sender: domain.SenderAI, Timestamp: at(21),
					ToolUsage: []domain.ToolUsage{{Tool: "diagram_renderer", Input: "mermaid"}},
					Content:   domain.DiagramContent{Notation: "mermaid", Source: "graph LR; Client-->Gateway; Gateway-->AuthService; Gateway-->SearchService"}},
				{ID: "msg-3", Sender: domain.SenderAI, Timestamp: at(22),
					Content: domain.DocumentContent{Title: "gateway.md", Format: "markdown", Text: "The gateway terminates TLS, authenticates requests and routes search traffic to the search service."}},
				{ID: "msg-4", Sender: domain.SenderAI, Timestamp: at(23),
					Content: domain.DrawingContent{URL: "/drawings/gateway.svg", Caption: "Whiteboard sketch of the gateway deployment"}},
				{ID: "msg-5", Sender: domain.SenderAI, Timestamp: at(24),
					Content: domain.DrawingContent{URL: "/drawings/untitled.svg"}},
			},
		},
		{
			ID:          "conv-media",
			Title:       "Медиа",
			Description: "Изображения и аудио",
			CreatedAt:   at(30),
			Messages: []domain.Message{
				{ID: "msg-1", Sender: domain.SenderUser, Timestamp: at(30), Content: domain.ImageContent{URL: "/uploads/cat.png"}},
				{ID: "msg-2", Sender: domain.SenderAI, Timestamp: at(31),
					Content: domain.ImageContent{URL: "/generated/sunset.png", AltText: "sunset", Caption: "Generated sunset over the harbor"}},
				{ID: "msg-3", Sender: domain.SenderAI, Timestamp: at(32),
					Content: domain.AudioContent{URL: "/audio/standup.mp3", DurationSeconds: 42, Transcription: "Standup notes: the memoization refactor shipped and search latency dropped."}},
				{ID: "msg-4", Sender: domain.SenderAI, Timestamp: at(33),
					Content: domain.AudioContent{URL: "/audio/noise.mp3", DurationSeconds: 3}},
			},
		},
	}
}

// Seed сохраняет демонстрационный корпус; существующие беседы пропускаются
func Seed(repo domain.ConversationRepository, now time.Time) (int, error) {
	return importConversations(repo, SeedConversations(now))
}

// ImportFile загружает беседы из JSON-файла (массив бесед с тегированным содержимым)
func ImportFile(repo domain.ConversationRepository, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("ошибка чтения файла: %w", err)
	}

	var convs []domain.Conversation
	if err := json.Unmarshal(data, &convs); err != nil {
		return 0, fmt.Errorf("ошибка парсинга JSON: %w", err)
	}

	return importConversations(repo, convs)
}

func importConversations(repo domain.ConversationRepository, convs []domain.Conversation) (int, error) {
	existing, err := repo.GetAllConversations()
	if err != nil {
		return 0, err
	}

	known := make(map[string]bool, len(existing))
	for _, conv := range existing {
		known[conv.ID] = true
	}

	imported := 0
	for _, conv := range convs {
		if conv.ID == "" {
			return imported, fmt.Errorf("беседа %q без ID", conv.Title)
		}
		if known[conv.ID] {
			continue
		}
		if err := repo.SaveConversation(conv); err != nil {
			return imported, fmt.Errorf("ошибка сохранения беседы %s: %w", conv.ID, err)
		}
		known[conv.ID] = true
		imported++
	}

	return imported, nil
}
