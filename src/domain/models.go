package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrConversationNotFound возвращается, когда беседа с указанным ID отсутствует
	ErrConversationNotFound = errors.New("беседа не найдена")

	// ErrEmptyQuery возвращается транспортным слоем для пустого запроса
	ErrEmptyQuery = errors.New("пустой поисковый запрос")
)

// Sender роль отправителя сообщения
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Valid проверяет, что роль входит в допустимый набор
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderAI
}

// Conversation представляет беседу с упорядоченной историей сообщений
type Conversation struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Messages    []Message `json:"messages"`
	CreatedAt   time.Time `json:"created_at"`
}

// FindConversation возвращает беседу из снимка корпуса по ID
func FindConversation(corpus []Conversation, id string) (Conversation, bool) {
	for _, conv := range corpus {
		if conv.ID == id {
			return conv, true
		}
	}
	return Conversation{}, false
}

// ToolUsage след вызова инструмента, сопровождающий ответ AI
type ToolUsage struct {
	Tool   string `json:"tool"`
	Input  string `json:"input,omitempty"`
	Output string `json:"output,omitempty"`
}

// Message одно сообщение беседы. Содержимое - ровно один вариант Content.
type Message struct {
	ID        string
	Sender    Sender
	Timestamp time.Time
	Content   Content
	Reasoning string
	ToolUsage []ToolUsage
	// Fallback ответ-заглушка без найденного источника; в поиске не участвует
	Fallback bool
}

// messageJSON форма сообщения на проводе; содержимое кодируется отдельно
type messageJSON struct {
	ID        string          `json:"id"`
	Sender    Sender          `json:"sender"`
	Timestamp time.Time       `json:"timestamp"`
	Content   json.RawMessage `json:"content"`
	Reasoning string          `json:"reasoning,omitempty"`
	ToolUsage []ToolUsage     `json:"tool_usage,omitempty"`
	Fallback  bool            `json:"fallback,omitempty"`
}

// MarshalJSON кодирует сообщение вместе с тегированным содержимым
func (m Message) MarshalJSON() ([]byte, error) {
	content, err := MarshalContent(m.Content)
	if err != nil {
		return nil, err
	}

	return json.Marshal(messageJSON{
		ID:        m.ID,
		Sender:    m.Sender,
		Timestamp: m.Timestamp,
		Content:   content,
		Reasoning: m.Reasoning,
		ToolUsage: m.ToolUsage,
		Fallback:  m.Fallback,
	})
}

// UnmarshalJSON декодирует сообщение, проверяя роль и тип содержимого
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw messageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if !raw.Sender.Valid() {
		return fmt.Errorf("сообщение %s: недопустимый отправитель %q", raw.ID, raw.Sender)
	}

	content, err := UnmarshalContent(raw.Content)
	if err != nil {
		return fmt.Errorf("сообщение %s: %w", raw.ID, err)
	}

	*m = Message{
		ID:        raw.ID,
		Sender:    raw.Sender,
		Timestamp: raw.Timestamp,
		Content:   content,
		Reasoning: raw.Reasoning,
		ToolUsage: raw.ToolUsage,
		Fallback:  raw.Fallback,
	}
	return nil
}

// MessageContext соседние сообщения той же беседы
type MessageContext struct {
	PreviousMessage *Message `json:"previous_message,omitempty"`
	NextMessage     *Message `json:"next_message,omitempty"`
}

// SearchResult найденный ответ AI с оценкой релевантности
type SearchResult struct {
	ConversationID string         `json:"conversation_id"`
	MessageID      string         `json:"message_id"`
	Content        Content        `json:"-"`
	RelevanceScore float64        `json:"relevance_score"`
	Context        MessageContext `json:"context"`
}

// MarshalJSON добавляет тегированное содержимое к результату
func (r SearchResult) MarshalJSON() ([]byte, error) {
	content, err := MarshalContent(r.Content)
	if err != nil {
		return nil, err
	}

	type plain SearchResult
	return json.Marshal(struct {
		plain
		Content json.RawMessage `json:"content"`
	}{plain(r), content})
}
