package application

import (
	"context"

	"chat-search/src/domain"
	"chat-search/src/search"
)

// ConversationService интерфейс сервиса поиска по беседам
type ConversationService interface {
	// Search возвращает лучшие ответы AI по запросу
	Search(query string) ([]domain.SearchResult, error)

	// GetAnswer возвращает текст лучшего ответа; false, если совпадений нет
	GetAnswer(query string) (string, bool, error)

	// GetConversationAwareAnswer как GetAnswer, с приоритетом ответов текущей беседы
	GetConversationAwareAnswer(query, conversationID string) (string, bool, error)

	// CreateConversation создает пустую беседу
	CreateConversation(title, description string) (domain.Conversation, error)

	// GetConversation возвращает беседу по ID
	GetConversation(id string) (domain.Conversation, error)

	// ListConversations возвращает все беседы
	ListConversations() ([]domain.Conversation, error)

	// DeleteConversation удаляет беседу вместе с сообщениями
	DeleteConversation(id string) error

	// SendMessage добавляет сообщение пользователя и ответ AI
	SendMessage(ctx context.Context, conversationID, text string) (*Reply, error)

	// Stats возвращает размер корпуса и действующие параметры поиска
	Stats() (Stats, error)
}

// AnswerComposer формулирует ответ по найденным результатам
type AnswerComposer interface {
	ComposeAnswer(ctx context.Context, query string, results []domain.SearchResult) (string, error)
}

// Reply результат отправки сообщения в беседу
type Reply struct {
	UserMessage domain.Message `json:"user_message"`
	AIMessage   domain.Message `json:"ai_message"`
	// Grounded true, если ответ основан на найденных сообщениях
	Grounded bool `json:"grounded"`
}

// Stats размер корпуса и параметры движка
type Stats struct {
	Conversations int           `json:"conversations"`
	Messages      int           `json:"messages"`
	Search        search.Params `json:"search"`
}
