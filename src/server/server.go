package server

import (
	"net/http"
	"time"

	"chat-search/src/application"
)

// NewMux регистрирует обработчики API
func NewMux(service application.ConversationService) *http.ServeMux {
	handlers := NewHandlers(service)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/search", handlers.HandleSearch)
	mux.HandleFunc("GET /api/answer", handlers.HandleAnswer)
	mux.HandleFunc("GET /api/conversations", handlers.HandleListConversations)
	mux.HandleFunc("POST /api/conversations", handlers.HandleCreateConversation)
	mux.HandleFunc("GET /api/conversations/{id}", handlers.HandleGetConversation)
	mux.HandleFunc("DELETE /api/conversations/{id}", handlers.HandleDeleteConversation)
	mux.HandleFunc("POST /api/conversations/{id}/messages", handlers.HandleSendMessage)
	mux.HandleFunc("GET /api/status", handlers.HandleStatus)
	return mux
}

// New создает HTTP-сервер на порту port; запуск остаётся за вызывающим
func New(port string, service application.ConversationService) *http.Server {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           NewMux(service),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return srv
}
