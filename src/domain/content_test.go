package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContentCoversAllTypes(t *testing.T) {
	for _, ct := range ContentTypes {
		c, err := NewContent(ct)
		require.NoError(t, err, "тип %s должен поддерживаться", ct)
		assert.Equal(t, ct, c.Type())
	}
}

func TestUnmarshalContentUnknownType(t *testing.T) {
	_, err := UnmarshalContent([]byte(`{"type":"hologram","text":"x"}`))
	assert.True(t, errors.Is(err, ErrUnknownContentType))

	_, err = UnmarshalContent([]byte(`{"text":"без типа"}`))
	assert.True(t, errors.Is(err, ErrUnknownContentType))
}

func TestContentRoundTripKeepsTag(t *testing.T) {
	original := SpreadsheetContent{
		Data: SpreadsheetData{
			Headers: []string{"month", "revenue"},
			Rows:    [][]string{{"jan", "100"}, {"feb", "120"}},
		},
	}

	data, err := MarshalContent(original)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"spreadsheet"`)

	decoded, err := UnmarshalContent(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestMessageUnmarshalValidatesSender(t *testing.T) {
	var msg Message
	err := json.Unmarshal([]byte(`{"id":"m1","sender":"robot","content":{"type":"text","text":"hi"}}`), &msg)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`{"id":"m1","sender":"ai","content":{"type":"code","code":"x := 1","language":"go"}}`), &msg)
	require.NoError(t, err)
	assert.Equal(t, SenderAI, msg.Sender)
	assert.Equal(t, CodeContent{Code: "x := 1", Language: "go"}, msg.Content)
}

func TestSearchResultJSON(t *testing.T) {
	prev := Message{ID: "m1", Sender: SenderUser, Timestamp: time.Unix(0, 0).UTC(), Content: TextContent{Text: "вопрос"}}
	result := SearchResult{
		ConversationID: "c1",
		MessageID:      "m2",
		Content:        TextContent{Text: "ответ"},
		RelevanceScore: 1.5,
		Context:        MessageContext{PreviousMessage: &prev},
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "c1", decoded["conversation_id"])
	assert.Equal(t, 1.5, decoded["relevance_score"])
	assert.Equal(t, map[string]any{"type": "text", "text": "ответ"}, decoded["content"])

	ctx := decoded["context"].(map[string]any)
	assert.Contains(t, ctx, "previous_message")
	assert.NotContains(t, ctx, "next_message")
}

func TestFindConversation(t *testing.T) {
	corpus := []Conversation{{ID: "a"}, {ID: "b"}}

	conv, ok := FindConversation(corpus, "b")
	assert.True(t, ok)
	assert.Equal(t, "b", conv.ID)

	_, ok = FindConversation(corpus, "missing")
	assert.False(t, ok)
}
