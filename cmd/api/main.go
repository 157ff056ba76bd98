package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/ncasas/obra-service/internal/config"
	"github.com/ncasas/obra-service/internal/handler"
	"github.com/ncasas/obra-service/internal/integrations/fx"
	"github.com/ncasas/obra-service/internal/middleware"
	"github.com/ncasas/obra-service/internal/notify"
	"github.com/ncasas/obra-service/internal/repository"
	"github.com/ncasas/obra-service/internal/scheduler"
	"github.com/ncasas/obra-service/internal/service"
	"github.com/ncasas/obra-service/internal/storage"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	fxClient := fx.NewClient(cfg, logger)
	sender := notify.NewSender(cfg, logger)
	attachments, err := storage.NewLocal(cfg)
	if err != nil {
		logger.Fatalf("Failed to init attachment storage: %v", err)
	}

	authSvc := service.NewAuthService(repo, cfg.JWTSecret, logger)
	budgetSvc := service.NewBudgetService(repo, sender, logger)
	horizonSvc := service.NewHorizonService(repo, logger)
	catalogSvc := service.NewCatalogService(repo, logger)

	h := handler.NewHandler(authSvc, budgetSvc, horizonSvc, catalogSvc, repo, fxClient, attachments, logger)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.LogMiddleware(logger))

	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/fx/rate", h.FxRate).Methods("GET")

	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/catalogs", h.Catalogs).Methods("GET")
	authRouter.HandleFunc("/movements", h.CreateMovement).Methods("POST")
	authRouter.HandleFunc("/movements", h.ListMovements).Methods("GET")
	authRouter.HandleFunc("/movements/{id}", h.GetMovement).Methods("GET")
	authRouter.HandleFunc("/movements/{id}", h.UpdateMovement).Methods("PUT")
	authRouter.HandleFunc("/movements/{id}", h.DeleteMovement).Methods("DELETE")
	authRouter.HandleFunc("/partidas/{id}/distribute", h.DistributeBudget).Methods("POST")
	authRouter.HandleFunc("/subpartidas/{id}", h.UpdateSubPartida).Methods("PATCH")
	authRouter.HandleFunc("/subpartidas/{id}", h.DeleteSubPartida).Methods("DELETE")
	authRouter.HandleFunc("/projects/{id}/plan", h.PlanView).Methods("GET")
	authRouter.HandleFunc("/projects/{id}/horizons", h.HorizonMatrix).Methods("GET")
	authRouter.HandleFunc("/projects/{id}/horizons/{days:[0-9]+}", h.HorizonBucket).Methods("GET")
	authRouter.HandleFunc("/projects/{id}/horizons/{days:[0-9]+}/movements", h.HorizonDetail).Methods("GET")

	// Receipt attachments
	r.PathPrefix("/attachments/").Handler(
		http.StripPrefix("/attachments/", http.FileServer(http.Dir(attachments.Dir()))))

	// Background jobs
	sched := scheduler.New(repo, repo, horizonSvc, sender, logger)
	if err := sched.Start(); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
