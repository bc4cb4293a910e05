package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ad/go-telegram-blog/internal/blog"
	"github.com/ad/go-telegram-blog/internal/db"
	"github.com/ad/go-telegram-blog/internal/handlers"
	"github.com/ad/go-telegram-blog/internal/services"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	_ "github.com/joho/godotenv/autoload"
	_ "modernc.org/sqlite"
)

func main() {
	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable is required")
	}

	apiToken := os.Getenv("BOT_API_TOKEN")
	if apiToken == "" {
		log.Fatal("BOT_API_TOKEN environment variable is required")
	}

	apiBase := os.Getenv("API_BASE")
	if apiBase == "" {
		log.Fatal("API_BASE environment variable is required")
	}

	channelID := os.Getenv("TELEGRAM_CHANNEL_ID")

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "blogbot.db"
	}

	sqlDB, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqlDB.Close()

	if err := db.InitSchema(sqlDB); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	dbQueue := db.NewDBQueue(sqlDB)
	defer dbQueue.Close()

	draftRepo := db.NewDraftRepository(dbQueue)
	pubRepo := db.NewPublicationRepository(dbQueue)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	b, err := bot.New(botToken, bot.WithHTTPClient(15*time.Second, httpClient))
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	// Retry getMe with shorter timeout
	var botInfo *tgmodels.User
	for i := 0; i < 3; i++ {
		log.Printf("Attempting to connect to Telegram API (attempt %d/3)...", i+1)
		getMeCtx, getMeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		botInfo, err = b.GetMe(getMeCtx)
		getMeCancel()
		if err == nil {
			break
		}
		log.Printf("Failed to get bot info (attempt %d/3): %v", i+1, err)
		if i < 2 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatalf("Failed to get bot info after 3 attempts: %v", err)
	}

	blogClient := blog.New(apiBase, apiToken)
	msgMgr := services.NewMessageManager(b)
	publisher := services.NewPublisher(b, msgMgr, blogClient, botToken, channelID)
	handler := handlers.NewBotHandler(b, draftRepo, pubRepo, msgMgr, publisher, blogClient)

	b.RegisterHandlerMatchFunc(func(update *tgmodels.Update) bool {
		return true
	}, handler.HandleUpdate, logMiddleware)

	if channelID != "" {
		log.Printf("Bot @%s started. Blog: %s, channel: %s, DB: %s", botInfo.Username, apiBase, channelID, dbPath)
	} else {
		log.Printf("Bot @%s started. Blog: %s, channel reposting disabled, DB: %s", botInfo.Username, apiBase, dbPath)
	}

	b.Start(ctx)
}

func logMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
		if update.Message != nil && update.Message.From != nil {
			log.Printf("[MSG] from=%d text=%q photos=%d", update.Message.From.ID, update.Message.Text, len(update.Message.Photo))
		}
		if update.CallbackQuery != nil {
			log.Printf("[CALLBACK] from=%d data=%q", update.CallbackQuery.From.ID, update.CallbackQuery.Data)
		}
		next(ctx, b, update)
	}
}
