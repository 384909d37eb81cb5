package infrastructure

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-search/src/domain"
)

type closableRepository interface {
	domain.ConversationRepository
	Close() error
}

// repositories возвращает обе реализации для общих проверок
func repositories(t *testing.T) map[string]closableRepository {
	t.Helper()

	sqliteRepo, err := NewSQLiteConversationRepository(filepath.Join(t.TempDir(), "test_chat_search.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqliteRepo.Close() })

	return map[string]closableRepository{
		"sqlite": sqliteRepo,
		"memory": NewMemoryConversationRepository(),
	}
}

func TestRepositorySaveAndLoad(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
			conv := domain.Conversation{
				ID:          "conv-1",
				Title:       "Тестовая беседа",
				Description: "Проверка сохранения",
				CreatedAt:   now,
				Messages: []domain.Message{
					{ID: "m1", Sender: domain.SenderUser, Timestamp: now, Content: domain.TextContent{Text: "вопрос"}},
					{ID: "m2", Sender: domain.SenderAI, Timestamp: now.Add(time.Minute), Reasoning: "думаю",
						ToolUsage: []domain.ToolUsage{{Tool: "calculator", Input: "2+2", Output: "4"}},
						Content:   domain.CodeContent{Code: "print(4)", Language: "python"}},
				},
			}

			require.NoError(t, repo.SaveConversation(conv))

			loaded, err := repo.GetConversation("conv-1")
			require.NoError(t, err)
			assert.Equal(t, "Тестовая беседа", loaded.Title)
			assert.True(t, loaded.CreatedAt.Equal(now))
			require.Len(t, loaded.Messages, 2)
			assert.Equal(t, "m1", loaded.Messages[0].ID)
			assert.Equal(t, domain.CodeContent{Code: "print(4)", Language: "python"}, loaded.Messages[1].Content)
			assert.Equal(t, "думаю", loaded.Messages[1].Reasoning)
			assert.Equal(t, []domain.ToolUsage{{Tool: "calculator", Input: "2+2", Output: "4"}}, loaded.Messages[1].ToolUsage)
			assert.True(t, loaded.Messages[1].Timestamp.Equal(now.Add(time.Minute)))
		})
	}
}

func TestRepositoryAppendKeepsOrder(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, repo.SaveConversation(domain.Conversation{ID: "conv-1", Title: "t"}))

			for _, id := range []string{"a", "b", "c"} {
				msg := domain.Message{ID: id, Sender: domain.SenderAI, Content: domain.TextContent{Text: id}}
				require.NoError(t, repo.AppendMessages("conv-1", msg))
			}

			conv, err := repo.GetConversation("conv-1")
			require.NoError(t, err)
			ids := []string{}
			for _, m := range conv.Messages {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, []string{"a", "b", "c"}, ids)

			err = repo.AppendMessages("missing", domain.Message{ID: "x", Sender: domain.SenderAI, Content: domain.TextContent{Text: "x"}})
			assert.True(t, errors.Is(err, domain.ErrConversationNotFound))

			err = repo.AppendMessages("conv-1", domain.Message{ID: "empty", Sender: domain.SenderAI})
			assert.Error(t, err, "сообщение без содержимого не сохраняется")
		})
	}
}

func TestRepositoryAppendBatchIsAtomic(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, repo.SaveConversation(domain.Conversation{ID: "conv-1", Title: "t"}))

			err := repo.AppendMessages("conv-1",
				domain.Message{ID: "q", Sender: domain.SenderUser, Content: domain.TextContent{Text: "вопрос"}},
				domain.Message{ID: "broken", Sender: domain.SenderAI},
			)
			require.Error(t, err)

			conv, err := repo.GetConversation("conv-1")
			require.NoError(t, err)
			assert.Empty(t, conv.Messages, "при ошибке пакет не сохраняется частично")

			require.NoError(t, repo.AppendMessages("conv-1",
				domain.Message{ID: "q", Sender: domain.SenderUser, Content: domain.TextContent{Text: "вопрос"}},
				domain.Message{ID: "a", Sender: domain.SenderAI, Content: domain.TextContent{Text: "заглушка"}, Fallback: true},
			))

			conv, err = repo.GetConversation("conv-1")
			require.NoError(t, err)
			require.Len(t, conv.Messages, 2)
			assert.Equal(t, "q", conv.Messages[0].ID)
			assert.False(t, conv.Messages[0].Fallback)
			assert.True(t, conv.Messages[1].Fallback)
		})
	}
}

func TestRepositoryGetAllPreservesCreationOrder(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			for i, id := range []string{"first", "second", "third"} {
				conv := domain.Conversation{ID: id, Title: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
				require.NoError(t, repo.SaveConversation(conv))
			}

			convs, err := repo.GetAllConversations()
			require.NoError(t, err)
			require.Len(t, convs, 3)
			assert.Equal(t, "first", convs[0].ID)
			assert.Equal(t, "third", convs[2].ID)
			assert.Empty(t, convs[1].Messages)
		})
	}
}

func TestRepositoryDelete(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			conv := domain.Conversation{
				ID:       "conv-1",
				Title:    "t",
				Messages: []domain.Message{{ID: "m1", Sender: domain.SenderAI, Content: domain.TextContent{Text: "x"}}},
			}
			require.NoError(t, repo.SaveConversation(conv))
			require.NoError(t, repo.DeleteConversation("conv-1"))

			_, err := repo.GetConversation("conv-1")
			assert.True(t, errors.Is(err, domain.ErrConversationNotFound))

			err = repo.DeleteConversation("conv-1")
			assert.True(t, errors.Is(err, domain.ErrConversationNotFound))

			convs, err := repo.GetAllConversations()
			require.NoError(t, err)
			assert.Empty(t, convs)
		})
	}
}

func TestRepositoryRejectsDuplicateConversation(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, repo.SaveConversation(domain.Conversation{ID: "dup", Title: "a"}))
			assert.Error(t, repo.SaveConversation(domain.Conversation{ID: "dup", Title: "b"}))
		})
	}
}

func TestMemoryRepositoryReturnsSnapshots(t *testing.T) {
	repo := NewMemoryConversationRepository()
	require.NoError(t, repo.SaveConversation(domain.Conversation{ID: "c"}))

	snapshot, err := repo.GetAllConversations()
	require.NoError(t, err)

	require.NoError(t, repo.AppendMessages("c", domain.Message{ID: "m", Sender: domain.SenderAI, Content: domain.TextContent{Text: "new"}}))
	assert.Empty(t, snapshot[0].Messages, "снимок не должен меняться после записи")
}

func TestSeedCoversAllContentTypes(t *testing.T) {
	seen := map[domain.ContentType]bool{}
	for _, conv := range SeedConversations(time.Now()) {
		for _, msg := range conv.Messages {
			seen[msg.Content.Type()] = true
		}
	}
	for _, ct := range domain.ContentTypes {
		assert.True(t, seen[ct], "демо-корпус должен содержать тип %s", ct)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			n, err := Seed(repo, time.Now())
			require.NoError(t, err)
			assert.Equal(t, len(SeedConversations(time.Now())), n)

			n, err = Seed(repo, time.Now())
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")
	data := `[
		{"id": "imported", "title": "Импорт", "messages": [
			{"id": "m1", "sender": "user", "content": {"type": "text", "text": "hello"}},
			{"id": "m2", "sender": "ai", "content": {"type": "audio", "url": "/a.mp3", "transcription": "hello back"}}
		]}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	repo := NewMemoryConversationRepository()
	n, err := ImportFile(repo, path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	conv, err := repo.GetConversation("imported")
	require.NoError(t, err)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, domain.AudioContent{URL: "/a.mp3", Transcription: "hello back"}, conv.Messages[1].Content)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"id":"x","messages":[{"id":"m","sender":"ai","content":{"type":"video"}}]}]`), 0644))
	_, err = ImportFile(repo, bad)
	assert.True(t, errors.Is(err, domain.ErrUnknownContentType))
}
