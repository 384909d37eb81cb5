package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"chat-search/src/application"
	"chat-search/src/domain"
)

// Handlers HTTP-обработчики API поиска по беседам
type Handlers struct {
	service application.ConversationService
}

// NewHandlers создает обработчики поверх сервиса бесед
func NewHandlers(service application.ConversationService) *Handlers {
	return &Handlers{service: service}
}

// queryParam возвращает непустой параметр q или пишет 400
func queryParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "не указан параметр запроса q"})
		return "", false
	}
	return query, true
}

// HandleSearch возвращает лучшие ответы по параметру q
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query, ok := queryParam(w, r)
	if !ok {
		return
	}

	results, err := h.service.Search(query)
	if err != nil {
		log.Printf("Ошибка поиска: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "ошибка поиска"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": results,
		"total":   len(results),
	})
}

type answerResponse struct {
	Answer *string `json:"answer"`
}

// HandleAnswer отвечает лучшим ответом; с conversation_id используется приоритет беседы
func (h *Handlers) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	query, ok := queryParam(w, r)
	if !ok {
		return
	}

	var (
		answer string
		found  bool
		err    error
	)
	if conversationID := r.URL.Query().Get("conversation_id"); conversationID != "" {
		answer, found, err = h.service.GetConversationAwareAnswer(query, conversationID)
	} else {
		answer, found, err = h.service.GetAnswer(query)
	}
	if err != nil {
		log.Printf("Ошибка получения ответа: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "ошибка получения ответа"})
		return
	}

	resp := answerResponse{}
	if found {
		resp.Answer = &answer
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleListConversations возвращает все беседы
func (h *Handlers) HandleListConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := h.service.ListConversations()
	if err != nil {
		log.Printf("Ошибка получения бесед: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "ошибка получения бесед"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"conversations": convs,
		"total":         len(convs),
	})
}

type createConversationRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// HandleCreateConversation создает пустую беседу
func (h *Handlers) HandleCreateConversation(w http.ResponseWriter, r *http.Request) {
	var req createConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "некорректное тело запроса"})
		return
	}

	conv, err := h.service.CreateConversation(req.Title, req.Description)
	if err != nil {
		log.Printf("Ошибка создания беседы: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "ошибка создания беседы"})
		return
	}

	writeJSON(w, http.StatusCreated, conv)
}

// HandleGetConversation возвращает беседу по ID или 404
func (h *Handlers) HandleGetConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := h.service.GetConversation(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, conv)
}

// HandleDeleteConversation удаляет беседу; 204 при успехе, 404 для неизвестной
func (h *Handlers) HandleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteConversation(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

// HandleSendMessage добавляет сообщение пользователя и ответ AI
func (h *Handlers) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "некорректное тело запроса"})
		return
	}

	reply, err := h.service.SendMessage(r.Context(), r.PathValue("id"), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

// HandleStatus возвращает размер корпуса и параметры поиска
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats()
	if err != nil {
		log.Printf("Ошибка получения статуса: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "ошибка получения статуса"})
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// writeError сопоставляет доменные ошибки со статусами HTTP
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrConversationNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrEmptyQuery):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		log.Printf("Ошибка обработки запроса: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "внутренняя ошибка сервера"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
