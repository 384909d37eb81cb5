package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-search/src/application"
	"chat-search/src/config"
	"chat-search/src/domain"
	"chat-search/src/infrastructure"
	"chat-search/src/infrastructure/ai"
	"chat-search/src/search"
	"chat-search/src/server"

	"github.com/fatih/color"
)

type closableRepository interface {
	domain.ConversationRepository
	Close() error
}

var (
	boldGreen = color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan  = color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow    = color.New(color.FgYellow).SprintFunc()
)

func main() {
	// Определяем флаги командной строки
	configPath := flag.String("config", "config/config.yaml", "Путь к файлу конфигурации")
	dbPath := flag.String("db", "", "Путь к файлу базы данных (перекрывает storage.path)")
	action := flag.String("action", "serve", "Действие: serve, search, answer, seed, import, demo")
	query := flag.String("query", "", "Поисковый запрос (для действий search и answer)")
	conversationID := flag.String("conversation", "", "ID текущей беседы (для действия answer)")
	filePath := flag.String("file", "", "JSON-файл с беседами (для действия import)")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	if *dbPath != "" {
		cfg.Storage.Path = *dbPath
	}

	// Создаем репозиторий
	repo, err := openRepository(cfg.Storage)
	if err != nil {
		log.Fatalf("Ошибка инициализации репозитория: %v", err)
	}
	defer repo.Close()

	// AI клиент необязателен: без него ответом служит найденное сообщение
	var composer application.AnswerComposer
	if cfg.AI.Enabled {
		aiClient, err := ai.NewAIClient(cfg.AI)
		if err != nil {
			log.Fatalf("Ошибка инициализации AI клиента: %v", err)
		}
		composer = aiClient
	}

	// Создаем сервис
	service := application.NewChatService(repo, search.NewEngine(cfg.Search), composer)
	service.SetDebug(cfg.Debug())

	switch *action {
	case "search":
		if *query == "" {
			log.Fatal("Для действия 'search' требуется указать поисковый запрос (-query)")
		}
		if err := handleSearch(service, *query); err != nil {
			log.Fatalf("Ошибка поиска: %v", err)
		}
	case "answer":
		if *query == "" {
			log.Fatal("Для действия 'answer' требуется указать поисковый запрос (-query)")
		}
		if err := handleAnswer(service, *query, *conversationID); err != nil {
			log.Fatalf("Ошибка получения ответа: %v", err)
		}
	case "seed":
		n, err := infrastructure.Seed(repo, time.Now())
		if err != nil {
			log.Fatalf("Ошибка загрузки демо-бесед: %v", err)
		}
		fmt.Printf("Добавлено бесед: %d\n", n)
	case "import":
		if *filePath == "" {
			log.Fatal("Для действия 'import' требуется указать файл (-file)")
		}
		n, err := infrastructure.ImportFile(repo, *filePath)
		if err != nil {
			log.Fatalf("Ошибка импорта: %v", err)
		}
		fmt.Printf("Импортировано бесед: %d\n", n)
	case "demo":
		if err := runDemo(service, repo); err != nil {
			log.Fatalf("Ошибка демонстрации: %v", err)
		}
	case "serve":
		if err := serve(cfg.Server.Port, service); err != nil {
			log.Fatalf("Ошибка сервера: %v", err)
		}
	default:
		fmt.Println("Используйте флаги для выполнения действий:")
		fmt.Println("  -action=serve                                   # HTTP API")
		fmt.Println("  -action=search -query='your query'              # Поиск ответов")
		fmt.Println("  -action=answer -query='...' -conversation=ID    # Лучший ответ")
		fmt.Println("  -action=seed                                    # Демо-беседы")
		fmt.Println("  -action=import -file=corpus.json                # Импорт бесед")
		fmt.Println("  -action=demo                                    # Запустить демо-сессию")
	}
}

// openRepository выбирает хранилище по конфигурации
func openRepository(cfg config.StorageConfig) (closableRepository, error) {
	switch cfg.Driver {
	case "memory":
		repo := infrastructure.NewMemoryConversationRepository()
		if _, err := infrastructure.Seed(repo, time.Now()); err != nil {
			return nil, err
		}
		return repo, nil
	case "sqlite", "":
		return infrastructure.NewSQLiteConversationRepository(cfg.Path)
	default:
		return nil, fmt.Errorf("неизвестный драйвер хранилища %q", cfg.Driver)
	}
}

// serve запускает HTTP API и корректно останавливает его по сигналу
func serve(port string, service *application.ChatService) error {
	srv := server.New(port, service)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("не удалось открыть порт %s: %w", port, err)
	}
	log.Printf("Сервер запущен на http://localhost:%s", port)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Останавливаем сервер...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// handleSearch выводит лучшие найденные ответы
func handleSearch(service *application.ChatService, query string) error {
	fmt.Printf("Выполняем поиск по запросу: '%s'\n", query)

	results, err := service.Search(query)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println(yellow(application.NoAnswerReply))
		return nil
	}

	for i, r := range results {
		fmt.Printf("  %d. [%s %.1f] %s/%s: %s\n", i+1, boldCyan("Score:"), r.RelevanceScore,
			r.ConversationID, r.MessageID, trimString(search.ExtractText(r.Content), 100))
	}
	return nil
}

// handleAnswer выводит лучший ответ, с учётом беседы, если она указана
func handleAnswer(service *application.ChatService, query, conversationID string) error {
	var (
		answer string
		ok     bool
		err    error
	)
	if conversationID != "" {
		answer, ok, err = service.GetConversationAwareAnswer(query, conversationID)
	} else {
		answer, ok, err = service.GetAnswer(query)
	}
	if err != nil {
		return err
	}

	if !ok {
		fmt.Println(yellow(application.NoAnswerReply))
		return nil
	}

	fmt.Printf("%s %s\n", boldGreen("Ответ:"), answer)
	return nil
}

// runDemo запускает демо-сессию
func runDemo(service *application.ChatService, repo domain.ConversationRepository) error {
	fmt.Println(boldGreen("=== Демонстрация поиска по беседам ==="))

	n, err := infrastructure.Seed(repo, time.Now())
	if err != nil {
		return fmt.Errorf("ошибка загрузки демо-бесед: %w", err)
	}
	if n > 0 {
		fmt.Printf("Добавлено демо-бесед: %d\n", n)
	}

	queries := []string{
		"memoization",
		"gateway deployment",
		"rotterdam inventory",
		"kubernetes",
	}

	for _, q := range queries {
		fmt.Printf("\n%s %s\n", boldCyan("Запрос:"), q)
		if err := handleSearch(service, q); err != nil {
			return err
		}
	}

	fmt.Printf("\n%s memoization (беседа conv-media)\n", boldCyan("Запрос с контекстом:"))
	if err := handleAnswer(service, "memoization", "conv-media"); err != nil {
		return err
	}

	return nil
}

// trimString обрезает строку до заданной длины в символах
func trimString(str string, maxLen int) string {
	runes := []rune(str)
	if len(runes) <= maxLen {
		return str
	}
	return string(runes[:maxLen]) + "..."
}
