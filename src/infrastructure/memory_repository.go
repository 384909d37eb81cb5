package infrastructure

import (
	"fmt"
	"sync"
	"time"

	"chat-search/src/domain"
)

// MemoryConversationRepository хранит беседы в памяти процесса.
// Чтение возвращает копии, поэтому снимок корпуса не меняется при последующих записях.
type MemoryConversationRepository struct {
	mu            sync.RWMutex
	conversations []domain.Conversation
}

// NewMemoryConversationRepository создает пустой репозиторий
func NewMemoryConversationRepository() *MemoryConversationRepository {
	return &MemoryConversationRepository{}
}

func (m *MemoryConversationRepository) indexOf(id string) int {
	for i, conv := range m.conversations {
		if conv.ID == id {
			return i
		}
	}
	return -1
}

// SaveConversation сохраняет беседу вместе с сообщениями
func (m *MemoryConversationRepository) SaveConversation(conv domain.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(conv.ID) >= 0 {
		return fmt.Errorf("беседа %s уже существует", conv.ID)
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now()
	}

	m.conversations = append(m.conversations, cloneConversation(conv))
	return nil
}

// AppendMessages добавляет сообщения в конец беседы
func (m *MemoryConversationRepository) AppendMessages(conversationID string, msgs ...domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(conversationID)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrConversationNotFound, conversationID)
	}
	for _, msg := range msgs {
		if msg.Content == nil {
			return fmt.Errorf("сообщение %s: отсутствует содержимое", msg.ID)
		}
	}

	m.conversations[i].Messages = append(m.conversations[i].Messages, msgs...)
	return nil
}

// GetConversation возвращает беседу по ID
func (m *MemoryConversationRepository) GetConversation(id string) (domain.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.indexOf(id)
	if i < 0 {
		return domain.Conversation{}, fmt.Errorf("%w: %s", domain.ErrConversationNotFound, id)
	}
	return cloneConversation(m.conversations[i]), nil
}

// GetAllConversations возвращает снимок корпуса в порядке создания бесед
func (m *MemoryConversationRepository) GetAllConversations() ([]domain.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	convs := make([]domain.Conversation, 0, len(m.conversations))
	for _, conv := range m.conversations {
		convs = append(convs, cloneConversation(conv))
	}
	return convs, nil
}

// DeleteConversation удаляет беседу по ID
func (m *MemoryConversationRepository) DeleteConversation(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrConversationNotFound, id)
	}
	m.conversations = append(m.conversations[:i], m.conversations[i+1:]...)
	return nil
}

// Close ничего не делает; нужен для совместимости с SQLite-репозиторием
func (m *MemoryConversationRepository) Close() error {
	return nil
}

// cloneConversation копирует срез сообщений; содержимое неизменяемо и не копируется
func cloneConversation(conv domain.Conversation) domain.Conversation {
	msgs := make([]domain.Message, len(conv.Messages))
	copy(msgs, conv.Messages)
	conv.Messages = msgs
	return conv
}
