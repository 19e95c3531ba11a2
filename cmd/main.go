package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"roundtable/backend/internal/ai"
	"roundtable/backend/internal/api/handler"
	"roundtable/backend/internal/interview"
	"roundtable/backend/internal/models"
	"roundtable/backend/internal/notify"
	"roundtable/backend/internal/room"
	"roundtable/backend/internal/roomstore"
)

// setupDependencies connects the optional persistence backends. Either
// may be absent: the service degrades to cache-only operation and logs
// a warning instead of refusing to start.
func setupDependencies() (*gorm.DB, *redis.Client) {
	var db *gorm.DB
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			log.Fatalf("Failed to connect PostgreSQL: %v", err)
		}

		// Міграції (Створення таблиць)
		if err := db.AutoMigrate(
			&models.ReportRecord{},
			&models.InterviewRecord{},
		); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("PostgreSQL connection established, migrations complete.")
	} else {
		log.Println("Warning: POSTGRES_DSN not set, archival disabled")
	}

	var rdb *redis.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		})

		// Перевірка з'єднання Redis
		ctx := context.Background()
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Fatalf("Failed to connect Redis: %v", err)
		}
		log.Println("Redis connection established.")
	} else {
		log.Println("Warning: REDIS_ADDR not set, running without Redis mirror")
	}

	return db, rdb
}

func main() {
	log.Println("Starting RoundTable Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}

	// 1. Ініціалізація залежностей
	db, rdb := setupDependencies()
	store := roomstore.NewService(db, rdb)

	aiClient := ai.NewClientFromEnv()
	if aiClient == nil {
		log.Println("Warning: OPENAI_API_KEY not set, using offline evaluation and question banks")
	}

	// Typed-nil guard: a nil *ai.Client must become a nil interface so
	// the services take their offline paths.
	var evaluator room.Evaluator
	var generator interview.Generator
	if aiClient != nil {
		evaluator = aiClient
		generator = aiClient
	}
	var notifier room.Notifier
	if tg := notify.NewTelegramNotifierFromEnv(); tg != nil {
		notifier = tg
	}

	// 2. Ініціалізація сервісів
	rooms := room.NewService(store, evaluator, notifier)
	interviews := interview.NewRegistry(generator, store)

	// 3. Налаштування Gin та роутингу
	r := gin.Default()
	h := handler.NewHandler(rooms, interviews, store, aiClient)

	// Кімнати
	r.POST("/rooms", h.CreateRoom)
	r.GET("/rooms/:code", h.RoomState)
	r.POST("/rooms/:code/join", h.JoinRoom)
	r.POST("/rooms/:code/lock", h.LockRoom)
	r.POST("/rooms/:code/unlock", h.UnlockRoom)
	r.POST("/rooms/:code/start", h.StartRoom)
	r.POST("/rooms/:code/submit", h.Submit)
	r.POST("/rooms/:code/next-turn", h.NextTurn)
	r.POST("/rooms/:code/assign-turn", h.AssignTurn)
	r.POST("/rooms/:code/raise-hand", h.RaiseHand)
	r.POST("/rooms/:code/lower-hand", h.LowerHand)
	r.DELETE("/rooms/:code/participants/:id", h.RemoveParticipant)
	r.POST("/rooms/:code/end", h.EndRoom)
	r.GET("/rooms/:code/insights", h.RoomInsights)
	r.GET("/rooms/:code/report", h.Report)
	r.GET("/rooms/:code/report.txt", h.ReportText)
	r.GET("/rooms/:code/report.pdf", h.ReportPDF)
	r.GET("/rooms/:code/qr", h.RoomQR)

	// Інтерв'ю
	r.POST("/interviews", h.StartInterview)
	r.GET("/interviews/:id", h.InterviewState)
	r.POST("/interviews/:id/answer", h.AnswerInterview)
	r.GET("/interviews/:id/transcript", h.InterviewTranscript)
	r.GET("/interviews/:id/transcript.txt", h.InterviewTranscriptText)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	// Запуск HTTP-сервера
	server := &http.Server{
		Addr:           addr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
