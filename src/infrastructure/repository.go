package infrastructure

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"chat-search/src/domain"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteConversationRepository реализация репозитория с использованием SQLite
type SQLiteConversationRepository struct {
	db *sqlx.DB
}

// conversationRow строка таблицы conversations
type conversationRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// messageRow строка таблицы messages
type messageRow struct {
	ID             string    `db:"id"`
	ConversationID string    `db:"conversation_id"`
	Seq            int       `db:"seq"`
	Sender         string    `db:"sender"`
	Timestamp      time.Time `db:"timestamp"`
	ContentType    string    `db:"content_type"`
	Content        string    `db:"content"`
	Reasoning      string    `db:"reasoning"`
	ToolUsage      string    `db:"tool_usage"`
	Fallback       bool      `db:"fallback"`
}

// NewSQLiteConversationRepository создает новый экземпляр репозитория
func NewSQLiteConversationRepository(dbPath string) (*SQLiteConversationRepository, error) {
	db, err := sqlx.Connect("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к базе данных: %w", err)
	}

	repo := &SQLiteConversationRepository{db: db}
	err = repo.initSchema()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось инициализировать схему: %w", err)
	}

	return repo, nil
}

// initSchema инициализирует схему базы данных
func (r *SQLiteConversationRepository) initSchema() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT NOT NULL,
			conversation_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			sender TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			content_type TEXT NOT NULL,
			content TEXT NOT NULL,
			reasoning TEXT NOT NULL DEFAULT '',
			tool_usage TEXT NOT NULL DEFAULT '',
			fallback BOOLEAN NOT NULL DEFAULT 0,
			PRIMARY KEY(conversation_id, id),
			FOREIGN KEY(conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
		)`,

		// Порядок сообщений внутри беседы
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_messages_seq ON messages(conversation_id, seq)`,
	}

	for _, tableSQL := range tables {
		_, err := r.db.Exec(tableSQL)
		if err != nil {
			log.Printf("Ошибка выполнения SQL: %s, ошибка: %v", tableSQL, err)
			return fmt.Errorf("ошибка при создании таблицы: %w", err)
		}
	}

	return nil
}

// SaveConversation сохраняет беседу вместе с сообщениями
func (r *SQLiteConversationRepository) SaveConversation(conv domain.Conversation) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("не удалось начать транзакцию: %w", err)
	}
	defer tx.Rollback()

	createdAt := conv.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = tx.NamedExec(
		`INSERT INTO conversations (id, title, description, created_at) VALUES (:id, :title, :description, :created_at)`,
		conversationRow{ID: conv.ID, Title: conv.Title, Description: conv.Description, CreatedAt: createdAt.UTC()},
	)
	if err != nil {
		return fmt.Errorf("не удалось вставить беседу: %w", err)
	}

	for i, msg := range conv.Messages {
		if err := insertMessage(tx, conv.ID, i, msg); err != nil {
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("не удалось зафиксировать транзакцию: %w", err)
	}

	return nil
}

// AppendMessages добавляет сообщения в конец беседы в одной транзакции
func (r *SQLiteConversationRepository) AppendMessages(conversationID string, msgs ...domain.Message) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("не удалось начать транзакцию: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.Get(&exists, `SELECT COUNT(*) FROM conversations WHERE id = ?`, conversationID)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", domain.ErrConversationNotFound, conversationID)
	}

	var next int
	err = tx.Get(&next, `SELECT COALESCE(MAX(seq) + 1, 0) FROM messages WHERE conversation_id = ?`, conversationID)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	for i, msg := range msgs {
		if err := insertMessage(tx, conversationID, next+i, msg); err != nil {
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("не удалось зафиксировать транзакцию: %w", err)
	}

	return nil
}

// insertMessage сериализует содержимое и вставляет сообщение
func insertMessage(tx *sqlx.Tx, conversationID string, seq int, msg domain.Message) error {
	if msg.Content == nil {
		return fmt.Errorf("сообщение %s: отсутствует содержимое", msg.ID)
	}

	content, err := domain.MarshalContent(msg.Content)
	if err != nil {
		return fmt.Errorf("сообщение %s: %w", msg.ID, err)
	}

	toolUsage := ""
	if len(msg.ToolUsage) > 0 {
		data, err := json.Marshal(msg.ToolUsage)
		if err != nil {
			return fmt.Errorf("сообщение %s: ошибка маршалинга JSON: %w", msg.ID, err)
		}
		toolUsage = string(data)
	}

	timestamp := msg.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	_, err = tx.NamedExec(
		`INSERT INTO messages (id, conversation_id, seq, sender, timestamp, content_type, content, reasoning, tool_usage, fallback)
		VALUES (:id, :conversation_id, :seq, :sender, :timestamp, :content_type, :content, :reasoning, :tool_usage, :fallback)`,
		messageRow{
			ID:             msg.ID,
			ConversationID: conversationID,
			Seq:            seq,
			Sender:         string(msg.Sender),
			Timestamp:      timestamp.UTC(),
			ContentType:    string(msg.Content.Type()),
			Content:        string(content),
			Reasoning:      msg.Reasoning,
			ToolUsage:      toolUsage,
			Fallback:       msg.Fallback,
		},
	)
	if err != nil {
		return fmt.Errorf("не удалось вставить сообщение: %w", err)
	}

	return nil
}

// GetConversation возвращает беседу по ID
func (r *SQLiteConversationRepository) GetConversation(id string) (domain.Conversation, error) {
	var row conversationRow
	err := r.db.Get(&row, `SELECT id, title, description, created_at FROM conversations WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Conversation{}, fmt.Errorf("%w: %s", domain.ErrConversationNotFound, id)
	}
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	var rows []messageRow
	err = r.db.Select(&rows, `SELECT * FROM messages WHERE conversation_id = ? ORDER BY seq`, id)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	conv := toConversation(row)
	for _, mr := range rows {
		msg, err := toMessage(mr)
		if err != nil {
			return domain.Conversation{}, err
		}
		conv.Messages = append(conv.Messages, msg)
	}

	return conv, nil
}

// GetAllConversations возвращает снимок корпуса в порядке создания бесед
func (r *SQLiteConversationRepository) GetAllConversations() ([]domain.Conversation, error) {
	var convRows []conversationRow
	err := r.db.Select(&convRows, `SELECT id, title, description, created_at FROM conversations ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	var msgRows []messageRow
	err = r.db.Select(&msgRows, `SELECT * FROM messages ORDER BY conversation_id, seq`)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	byConversation := make(map[string][]domain.Message, len(convRows))
	for _, mr := range msgRows {
		msg, err := toMessage(mr)
		if err != nil {
			return nil, err
		}
		byConversation[mr.ConversationID] = append(byConversation[mr.ConversationID], msg)
	}

	convs := make([]domain.Conversation, 0, len(convRows))
	for _, row := range convRows {
		conv := toConversation(row)
		conv.Messages = byConversation[row.ID]
		convs = append(convs, conv)
	}

	return convs, nil
}

// DeleteConversation удаляет беседу по ID
func (r *SQLiteConversationRepository) DeleteConversation(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("не удалось начать транзакцию: %w", err)
	}
	defer tx.Rollback()

	// Удаляем сообщения беседы
	_, err = tx.Exec("DELETE FROM messages WHERE conversation_id=?", id)
	if err != nil {
		return fmt.Errorf("ошибка удаления сообщений: %w", err)
	}

	res, err := tx.Exec("DELETE FROM conversations WHERE id=?", id)
	if err != nil {
		return fmt.Errorf("ошибка удаления беседы: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrConversationNotFound, id)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("не удалось зафиксировать транзакцию: %w", err)
	}

	return nil
}

// Close закрывает соединение с базой данных
func (r *SQLiteConversationRepository) Close() error {
	return r.db.Close()
}

func toConversation(row conversationRow) domain.Conversation {
	return domain.Conversation{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
	}
}

func toMessage(row messageRow) (domain.Message, error) {
	content, err := domain.UnmarshalContent([]byte(row.Content))
	if err != nil {
		return domain.Message{}, fmt.Errorf("сообщение %s: %w", row.ID, err)
	}

	msg := domain.Message{
		ID:        row.ID,
		Sender:    domain.Sender(row.Sender),
		Timestamp: row.Timestamp,
		Content:   content,
		Reasoning: row.Reasoning,
		Fallback:  row.Fallback,
	}

	if row.ToolUsage != "" {
		if err := json.Unmarshal([]byte(row.ToolUsage), &msg.ToolUsage); err != nil {
			return domain.Message{}, fmt.Errorf("сообщение %s: ошибка парсинга JSON: %w", row.ID, err)
		}
	}

	return msg, nil
}
