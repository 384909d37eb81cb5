package domain

// ConversationRepository интерфейс для работы с беседами
type ConversationRepository interface {
	// SaveConversation сохраняет беседу вместе с сообщениями
	SaveConversation(conv Conversation) error

	// AppendMessages добавляет сообщения в конец беседы: либо все, либо ни одного
	AppendMessages(conversationID string, msgs ...Message) error

	// GetConversation возвращает беседу по ID
	GetConversation(id string) (Conversation, error)

	// GetAllConversations возвращает снимок корпуса в порядке создания бесед
	GetAllConversations() ([]Conversation, error)

	// DeleteConversation удаляет беседу по ID
	DeleteConversation(id string) error
}
