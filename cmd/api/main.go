package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/studyai/quiz-api/internal/config"
	"github.com/studyai/quiz-api/internal/handler"
	"github.com/studyai/quiz-api/internal/middleware"
	"github.com/studyai/quiz-api/internal/notification"
	pgRepo "github.com/studyai/quiz-api/internal/repository/postgres"
	redisRepo "github.com/studyai/quiz-api/internal/repository/redis"
	"github.com/studyai/quiz-api/internal/service"
	"github.com/studyai/quiz-api/internal/service/generator"
	ws "github.com/studyai/quiz-api/internal/websocket"
	"github.com/studyai/quiz-api/pkg/auth"
	"github.com/studyai/quiz-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	quizRepo := pgRepo.NewQuizRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	participantRepo := pgRepo.NewParticipantRepo(db)
	leaderboardRepo := pgRepo.NewLeaderboardRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Шина уведомлений поверх Redis pub/sub
	bus, err := notification.NewRedisBus(redisClient)
	if err != nil {
		log.Printf("Failed to initialize notification bus: %v", err)
		os.Exit(1)
	}

	// Контекст жизни фоновых горутин
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// WebSocket-хаб питается событиями шины
	events, err := bus.Subscribe(ctx)
	if err != nil {
		log.Printf("Failed to subscribe to notification bus: %v", err)
		os.Exit(1)
	}
	hub := ws.NewHub(events)
	go hub.Run(ctx)

	// Генераторы вопросов: LLM с детерминированным фолбэком
	var llm generator.Generator
	if cfg.AI.Enabled {
		llmGen, err := generator.NewLLMGenerator(generator.Config{
			BaseURL:    cfg.AI.BaseURL,
			APIKey:     cfg.AI.APIKey,
			Model:      cfg.AI.Model,
			TimeoutSec: cfg.AI.TimeoutSec,
		})
		if err != nil {
			log.Printf("Failed to initialize LLM generator: %v", err)
			os.Exit(1)
		}
		llm = llmGen
	}
	fallback := generator.NewTemplateGenerator()

	// Инициализируем JWT сервис
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWT service: %v", err)
		os.Exit(1)
	}

	// Инициализируем сервисы
	authService := service.NewAuthService(userRepo, jwtService)
	quizService := service.NewQuizService(quizRepo, questionRepo, participantRepo, llm, fallback, bus)
	resultService := service.NewResultService(participantRepo, leaderboardRepo, quizRepo, cacheRepo, bus, db)

	// Email-приглашения включаются только при наличии ключа Resend
	if cfg.Email.ResendAPIKey != "" {
		emailService, err := service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to initialize email service: %v", err)
			os.Exit(1)
		}
		quizService.SetEmailService(emailService)
	} else {
		log.Println("Resend API key is not set, email invites are disabled")
		quizService.SetEmailService(&service.NoopEmailService{})
	}

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService)
	quizHandler := handler.NewQuizHandler(quizService)
	resultHandler := handler.NewResultHandler(resultService, quizService)
	wsHandler := handler.NewWSHandler(hub, quizService)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	router := gin.Default()

	if gin.Mode() == gin.ReleaseMode {
		// Production: не доверять прокси-заголовкам
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/me", authMiddleware.RequireAuth(), authHandler.Me)
		}

		quizzes := api.Group("/quizzes")
		quizzes.Use(authMiddleware.RequireAuth())
		{
			quizzes.POST("", quizHandler.CreateQuiz)
			quizzes.GET("", quizHandler.ListQuizzes)
			quizzes.POST("/join", quizHandler.JoinQuiz)
			quizzes.GET("/:id", quizHandler.GetQuiz)
			quizzes.POST("/:id/schedule", quizHandler.ScheduleQuiz)
			quizzes.POST("/:id/start", quizHandler.StartQuiz)
			quizzes.POST("/:id/complete", quizHandler.CompleteQuiz)
			quizzes.POST("/:id/cancel", quizHandler.CancelQuiz)
			quizzes.POST("/:id/invite", quizHandler.InviteParticipant)
			quizzes.GET("/:id/participants", quizHandler.GetParticipants)

			quizzes.POST("/:id/submit", resultHandler.SubmitAnswers)
			quizzes.GET("/:id/leaderboard", resultHandler.GetLeaderboard)
			quizzes.GET("/:id/leaderboard/export", resultHandler.ExportLeaderboard)
			quizzes.GET("/:id/results/me", resultHandler.GetMyResult)
			quizzes.GET("/:id/analytics", resultHandler.GetAnalytics)

			quizzes.GET("/:id/events", wsHandler.Subscribe)
		}
	}

	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Завершаем фоновые горутины (хаб, подписка на шину)
	cancel()

	if err := bus.Close(); err != nil {
		log.Printf("Error closing notification bus: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
