package search

import (
	"strings"

	"chat-search/src/domain"
)

// Engine поиск и ранжирование ответов AI по снимку корпуса бесед.
// Engine не хранит состояния между вызовами и не изменяет корпус.
type Engine struct {
	params Params
	scorer Scorer
}

// NewEngine создает движок; некорректные параметры заменяются значениями по умолчанию
func NewEngine(params Params) *Engine {
	params = params.WithDefaults()
	return &Engine{
		params: params,
		scorer: NewScorer(params.MinTermLength),
	}
}

// Params возвращает действующие параметры движка
func (e *Engine) Params() Params {
	return e.params
}

// Scan проходит по всем беседам и собирает сообщения AI с ненулевой оценкой
// в порядке бесед и хронологическом порядке сообщений. Заглушки пропускаются.
func (e *Engine) Scan(corpus []domain.Conversation, query string) []domain.SearchResult {
	results := []domain.SearchResult{}

	terms := e.scorer.Terms(query)
	if len(terms) == 0 {
		return results
	}

	for _, conv := range corpus {
		if len(conv.Messages) == 0 {
			continue
		}

		for i, msg := range conv.Messages {
			if msg.Sender != domain.SenderAI || msg.Fallback {
				continue
			}

			text := ExtractText(msg.Content)
			if text == "" {
				continue
			}

			score := e.scorer.scoreTerms(strings.ToLower(text), terms)
			if score <= 0 {
				continue
			}

			results = append(results, domain.SearchResult{
				ConversationID: conv.ID,
				MessageID:      msg.ID,
				Content:        msg.Content,
				RelevanceScore: float64(score),
				Context:        messageContext(conv.Messages, i),
			})
		}
	}

	return results
}

// messageContext соседние сообщения внутри одной беседы
func messageContext(messages []domain.Message, i int) domain.MessageContext {
	var ctx domain.MessageContext
	if i > 0 {
		prev := messages[i-1]
		ctx.PreviousMessage = &prev
	}
	if i+1 < len(messages) {
		next := messages[i+1]
		ctx.NextMessage = &next
	}
	return ctx
}

// Search возвращает до SearchLimit лучших результатов
func (e *Engine) Search(corpus []domain.Conversation, query string) []domain.SearchResult {
	return Rank(e.Scan(corpus, query), e.params.SearchLimit)
}

// GetAnswer возвращает текст лучшего ответа или false, если совпадений нет
func (e *Engine) GetAnswer(corpus []domain.Conversation, query string) (string, bool) {
	ranked := Rank(e.Scan(corpus, query), e.params.AnswerLimit)
	if len(ranked) == 0 {
		return "", false
	}
	return ExtractText(ranked[0].Content), true
}

// GetConversationAwareAnswer как GetAnswer, но результаты беседы conversationID
// получают множитель BoostFactor. Поиск идёт по всему корпусу; для неизвестной
// беседы используется GetAnswer.
func (e *Engine) GetConversationAwareAnswer(corpus []domain.Conversation, query, conversationID string) (string, bool) {
	ranked, ok := e.ConversationAwareResults(corpus, query, conversationID)
	if !ok {
		return e.GetAnswer(corpus, query)
	}
	if len(ranked) == 0 {
		return "", false
	}
	return ExtractText(ranked[0].Content), true
}

// ConversationAwareResults возвращает усиленную выдачу из ContextLimit результатов.
// Второе значение false, если беседы conversationID нет в корпусе.
func (e *Engine) ConversationAwareResults(corpus []domain.Conversation, query, conversationID string) ([]domain.SearchResult, bool) {
	if _, ok := domain.FindConversation(corpus, conversationID); !ok {
		return nil, false
	}

	ranked := Rank(e.Scan(corpus, query), e.params.ContextLimit)
	return Boost(ranked, conversationID, e.params.BoostFactor), true
}
