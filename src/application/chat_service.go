package application

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"chat-search/src/domain"
	"chat-search/src/search"

	"github.com/google/uuid"
)

// NoAnswerReply ответ AI, когда в корпусе нет подходящих сообщений
const NoAnswerReply = "Не найдено релевантной информации для запроса."

// ChatService реализация сервиса поиска по беседам.
// Каждый вызов берёт снимок корпуса из репозитория и передаёт его движку.
type ChatService struct {
	repo     domain.ConversationRepository
	engine   *search.Engine
	composer AnswerComposer
	debug    bool
	now      func() time.Time
}

// NewChatService создает новый экземпляр сервиса. composer может быть nil.
func NewChatService(repo domain.ConversationRepository, engine *search.Engine, composer AnswerComposer) *ChatService {
	return &ChatService{
		repo:     repo,
		engine:   engine,
		composer: composer,
		now:      time.Now,
	}
}

// SetDebug включает подробный лог поиска
func (s *ChatService) SetDebug(debug bool) {
	s.debug = debug
}

func (s *ChatService) snapshot() ([]domain.Conversation, error) {
	corpus, err := s.repo.GetAllConversations()
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки бесед: %w", err)
	}
	return corpus, nil
}

// Search возвращает лучшие ответы AI по запросу
func (s *ChatService) Search(query string) ([]domain.SearchResult, error) {
	corpus, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	results := s.engine.Search(corpus, query)
	if s.debug {
		log.Printf("Поиск %q: %d результатов по %d беседам", query, len(results), len(corpus))
	}
	return results, nil
}

// GetAnswer возвращает текст лучшего ответа
func (s *ChatService) GetAnswer(query string) (string, bool, error) {
	corpus, err := s.snapshot()
	if err != nil {
		return "", false, err
	}

	answer, ok := s.engine.GetAnswer(corpus, query)
	return answer, ok, nil
}

// GetConversationAwareAnswer возвращает лучший ответ с приоритетом беседы conversationID
func (s *ChatService) GetConversationAwareAnswer(query, conversationID string) (string, bool, error) {
	corpus, err := s.snapshot()
	if err != nil {
		return "", false, err
	}

	if s.debug {
		if _, found := domain.FindConversation(corpus, conversationID); !found {
			log.Printf("Беседа %s не найдена, ответ без учёта контекста", conversationID)
		}
	}

	answer, ok := s.engine.GetConversationAwareAnswer(corpus, query, conversationID)
	return answer, ok, nil
}

// CreateConversation создает пустую беседу
func (s *ChatService) CreateConversation(title, description string) (domain.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Новая беседа"
	}

	conv := domain.Conversation{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		CreatedAt:   s.now(),
	}

	if err := s.repo.SaveConversation(conv); err != nil {
		return domain.Conversation{}, fmt.Errorf("ошибка создания беседы: %w", err)
	}

	log.Printf("Создана беседа %s (%s)", conv.ID, conv.Title)
	return conv, nil
}

// GetConversation возвращает беседу по ID
func (s *ChatService) GetConversation(id string) (domain.Conversation, error) {
	return s.repo.GetConversation(id)
}

// ListConversations возвращает все беседы
func (s *ChatService) ListConversations() ([]domain.Conversation, error) {
	return s.snapshot()
}

// AppendMessage добавляет сообщение в беседу
func (s *ChatService) AppendMessage(conversationID string, sender domain.Sender, content domain.Content) (domain.Message, error) {
	if !sender.Valid() {
		return domain.Message{}, fmt.Errorf("недопустимый отправитель %q", sender)
	}

	msg := s.newMessage(sender, content)
	if err := s.repo.AppendMessages(conversationID, msg); err != nil {
		return domain.Message{}, fmt.Errorf("ошибка добавления сообщения: %w", err)
	}

	return msg, nil
}

func (s *ChatService) newMessage(sender domain.Sender, content domain.Content) domain.Message {
	return domain.Message{
		ID:        uuid.New().String(),
		Sender:    sender,
		Timestamp: s.now(),
		Content:   content,
	}
}

// SendMessage находит ответ с приоритетом текущей беседы и сохраняет
// сообщение пользователя вместе с ответом AI одной записью.
// Ответ-заглушка помечается Fallback и в поиск не попадает.
func (s *ChatService) SendMessage(ctx context.Context, conversationID, text string) (*Reply, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyQuery
	}

	corpus, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	results, found := s.engine.ConversationAwareResults(corpus, text, conversationID)
	if !found {
		return nil, fmt.Errorf("%w: %s", domain.ErrConversationNotFound, conversationID)
	}

	answer := NoAnswerReply
	grounded := len(results) > 0
	if grounded {
		answer = search.ExtractText(results[0].Content)

		if s.composer != nil {
			composed, err := s.composer.ComposeAnswer(ctx, text, results)
			if err != nil {
				log.Printf("Не удалось сгенерировать ответ, используем найденный: %v", err)
			} else {
				answer = composed
			}
		}
	}

	userMsg := s.newMessage(domain.SenderUser, domain.TextContent{Text: text})
	aiMsg := s.newMessage(domain.SenderAI, domain.TextContent{Text: answer})
	aiMsg.Fallback = !grounded

	if err := s.repo.AppendMessages(conversationID, userMsg, aiMsg); err != nil {
		return nil, fmt.Errorf("ошибка добавления сообщения: %w", err)
	}

	return &Reply{UserMessage: userMsg, AIMessage: aiMsg, Grounded: grounded}, nil
}

// DeleteConversation удаляет беседу вместе с сообщениями
func (s *ChatService) DeleteConversation(id string) error {
	if err := s.repo.DeleteConversation(id); err != nil {
		return fmt.Errorf("ошибка удаления беседы: %w", err)
	}

	log.Printf("Удалена беседа %s", id)
	return nil
}

// Stats возвращает размер корпуса и действующие параметры поиска
func (s *ChatService) Stats() (Stats, error) {
	corpus, err := s.snapshot()
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Conversations: len(corpus), Search: s.engine.Params()}
	for _, conv := range corpus {
		stats.Messages += len(conv.Messages)
	}
	return stats, nil
}

var _ ConversationService = (*ChatService)(nil)
