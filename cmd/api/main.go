package main

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/niveshpath/advisory-backend/internal/infra/database"
	"github.com/niveshpath/advisory-backend/internal/infra/http/handlers"
	"github.com/niveshpath/advisory-backend/internal/infra/http/middleware"
	"github.com/niveshpath/advisory-backend/internal/infra/mail"
	"github.com/niveshpath/advisory-backend/internal/infra/notify"
	"github.com/niveshpath/advisory-backend/internal/infra/queue"
	"github.com/niveshpath/advisory-backend/internal/logger"
	"github.com/niveshpath/advisory-backend/internal/usecase"
)

func main() {
	godotenv.Load()

	log, err := logger.New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"), "advisory-backend")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(
		os.Getenv("RABBITMQ_USER"), os.Getenv("RABBITMQ_PASS"),
		os.Getenv("RABBITMQ_HOST"), os.Getenv("RABBITMQ_PORT"),
	)
	if err != nil {
		log.Fatal("rabbitmq connection failed", zap.Error(err))
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	rdb := redis.NewClient(&redis.Options{Addr: os.Getenv("REDIS_ADDR")})
	defer rdb.Close()

	// repositories
	leadRepo := database.NewLeadRepository(db)
	activityRepo := database.NewActivityRepository(db)
	auditRepo := database.NewAuditRepository(db)
	userRepo := database.NewUserRepository(db)

	// collaborators
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	mailPort, _ := strconv.Atoi(os.Getenv("MAIL_PORT"))
	mailSender := mail.NewEmailSender(
		os.Getenv("MAIL_HOST"), mailPort,
		os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
		os.Getenv("MAIL_FROM"),
	)
	var webhook queue.WebhookNotifier
	if url := os.Getenv("NOTIFY_WEBHOOK_URL"); url != "" {
		webhook = notify.NewWebhookClient(url)
	}

	worker := queue.NewWorker(rabbitMQ.Ch, userRepo, mailSender, webhook, log)
	go worker.Start(queue.QueueName)

	// use cases
	activityLogger := usecase.NewActivityLogger(activityRepo, auditRepo, userRepo, log)
	activityLogger.OnFailure = middleware.RecordActivityLogFailure

	intakeUC := usecase.NewIntakeLeadUseCase(leadRepo, activityLogger, producer, log)
	listUC := usecase.NewListLeadsUseCase(leadRepo)
	outreachUC := usecase.NewUpdateOutreachUseCase(leadRepo, userRepo, activityLogger, producer, log)
	detailsUC := usecase.NewUpdateDetailsUseCase(leadRepo, activityLogger, log)
	lifecycleUC := usecase.NewArchiveLifecycleUseCase(leadRepo, activityRepo, activityLogger, log)
	bulkUC := usecase.NewBulkOpsUseCase(leadRepo, activityRepo, activityLogger, log)

	// handlers
	leadHandler := handlers.NewLeadHandler(intakeUC, listUC, detailsUC, userRepo, log)
	outreachHandler := handlers.NewOutreachHandler(outreachUC, log)
	lifecycleHandler := handlers.NewLifecycleHandler(lifecycleUC, bulkUC, log)
	activityHandler := handlers.NewActivityHandler(activityRepo, log)
	exportHandler := handlers.NewExportHandler(listUC, log)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn, rdb)

	auth := middleware.Auth(os.Getenv("JWT_SECRET"), userRepo)
	rateLimiter := middleware.NewRateLimiter(rdb, 10, time.Minute)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "x-dedupe-minutes"},
	}))

	r.Get("/healthz", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	// public intake
	r.With(rateLimiter.Handler).Post("/leads", leadHandler.HandleIntake)

	// staff surface
	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Post("/leads/ops", leadHandler.HandleIntakeOps)
		r.Get("/leads", leadHandler.HandleList)
		r.Get("/leads/export.xlsx", exportHandler.HandleExport)
		r.Get("/leads/{id}", leadHandler.HandleGet)
		r.Patch("/leads/{id}", leadHandler.HandlePatchDetails)
		r.Patch("/leads/{id}/outreach", outreachHandler.HandlePatch)
		r.Get("/leads/{id}/activities", activityHandler.HandleTimeline)

		r.Delete("/leads/{id}", lifecycleHandler.HandleArchive)
		r.Post("/leads/{id}/restore", lifecycleHandler.HandleRestore)
		r.With(middleware.RequireAdmin).Delete("/leads/{id}/hard", lifecycleHandler.HandlePurge)

		r.Post("/leads/bulk/archive", lifecycleHandler.HandleBulk("archive"))
		r.Post("/leads/bulk/restore", lifecycleHandler.HandleBulk("restore"))
		r.Post("/leads/bulk/transfer", lifecycleHandler.HandleBulk("transfer"))
		r.With(middleware.RequireAdmin).Post("/leads/bulk/hard-delete", lifecycleHandler.HandleBulk("hard-delete"))
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Info("advisory backend listening", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
