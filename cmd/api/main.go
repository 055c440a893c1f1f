package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spnd-app/spnd-server/internal/audit"
	"github.com/spnd-app/spnd-server/internal/config"
	"github.com/spnd-app/spnd-server/internal/handler"
	"github.com/spnd-app/spnd-server/internal/integrations/googleauth"
	"github.com/spnd-app/spnd-server/internal/middleware"
	"github.com/spnd-app/spnd-server/internal/repository"
	"github.com/spnd-app/spnd-server/internal/service"
	"github.com/spnd-app/spnd-server/internal/utils/email"
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
	_ = godotenv.Load()
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
	if err := repository.RunMigrations(cfg.DBConn); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	verifier := googleauth.NewVerifier(cfg, logger)
	var mailer service.Mailer
	if sender := email.NewSender(cfg, logger); sender != nil {
		mailer = sender
	}
	svc := service.NewService(repo, logger, cfg, verifier, mailer)
	h := handler.NewHandler(svc, logger)

	// Consistency auditor
	auditor := audit.NewAuditor(repo, logger, cfg.RequestTimeout)
	if err := auditor.Start(cfg.AuditSchedule); err != nil {
		logger.Fatalf("Failed to start auditor: %v", err)
	}
	defer auditor.Stop()

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.TimeoutMiddleware(cfg.RequestTimeout))
	// Public routes
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/login/jwt", h.Login).Methods("POST")
	r.HandleFunc("/login/google/mobile", h.GoogleLogin).Methods("POST")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/me", h.Me).Methods("GET")
	authRouter.HandleFunc("/all-incomes", h.ListIncomes).Methods("GET")
	authRouter.HandleFunc("/create-income", h.CreateIncome).Methods("POST")
	authRouter.HandleFunc("/all-expenses", h.ListExpenses).Methods("GET")
	authRouter.HandleFunc("/create-expense", h.CreateExpense).Methods("POST")
	authRouter.HandleFunc("/shared-budgets", h.ListSharedBudgets).Methods("GET")
	authRouter.HandleFunc("/create-sharedBudget", h.CreateSharedBudget).Methods("POST")
	authRouter.HandleFunc("/adding-budget", h.Contribute).Methods("POST")

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
