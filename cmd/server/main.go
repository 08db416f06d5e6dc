package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nkazmina/learning-log/backend/internal/auth"
	"github.com/nkazmina/learning-log/backend/internal/config"
	"github.com/nkazmina/learning-log/backend/internal/middleware"
	"github.com/nkazmina/learning-log/backend/internal/notes"
	"github.com/nkazmina/learning-log/backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx := context.Background()

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres connect: %v", err)
	}
	defer pgPool.Close()
	pgStore := store.NewPostgresStore(pgPool)
	if err := pgStore.Migrate(ctx); err != nil {
		log.Fatalf("postgres migrate: %v", err)
	}

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer mongoClient.Disconnect(ctx)
	activityStore := store.NewActivityStore(mongoClient.Database(cfg.MongoDB))

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connect: %v", err)
	}
	defer rdb.Close()
	sessions := auth.NewSessionStore(rdb)

	// ── MinIO ────────────────────────────────────────────────
	attachments, err := store.NewAttachmentStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
	)
	if err != nil {
		log.Fatalf("minio connect: %v", err)
	}

	// ── Handlers ─────────────────────────────────────────────
	authHandler := auth.NewHandler(pgStore, sessions)
	notesHandler := notes.NewHandler(pgStore, attachments, activityStore)
	requireAuth := middleware.RequireAuth(sessions, pgStore)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Public pages
	r.Get("/", notesHandler.Topics)
	r.Get("/topics/", notesHandler.Topics)

	// Auth routes
	r.Route("/users", func(r chi.Router) {
		r.Get("/login/", authHandler.LoginPage)
		r.Post("/login/", authHandler.Login)
		r.With(requireAuth).Get("/logout/", authHandler.Logout)
		r.Get("/register/", authHandler.RegisterPage)
		r.Post("/register/", authHandler.Register)
	})

	// Protected note operations
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/topic/{topicID}", notesHandler.Topic)
		r.Get("/new_topic/", notesHandler.NewTopicPage)
		r.Post("/new_topic/", notesHandler.NewTopic)
		r.Get("/new_entry/{topicID}", notesHandler.NewEntryPage)
		r.Post("/new_entry/{topicID}", notesHandler.NewEntry)
		r.Get("/edit_entry/{entryID}", notesHandler.EditEntryPage)
		r.Post("/edit_entry/{entryID}", notesHandler.EditEntry)
		r.Get("/{entryID}/delete/", notesHandler.DeleteEntryPage)
		r.Post("/{entryID}/delete/", notesHandler.DeleteEntry)
		r.Get("/entry/{entryID}/attachment", notesHandler.DownloadAttachment)
		r.Post("/entry/{entryID}/attachment", notesHandler.UploadAttachment)
		r.Get("/activity/", notesHandler.Activity)
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}

	go func() {
		log.Printf("Backend listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
