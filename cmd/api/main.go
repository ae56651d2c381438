package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/divvyup/divvy/internal/config"
	"github.com/divvyup/divvy/internal/database"
	"github.com/divvyup/divvy/internal/expense"
	expensesplit "github.com/divvyup/divvy/internal/expense/split"
	"github.com/divvyup/divvy/internal/group"
	"github.com/divvyup/divvy/internal/notification"
	"github.com/divvyup/divvy/internal/settlement"
	"github.com/divvyup/divvy/internal/user"
	"github.com/divvyup/divvy/pkg/logging"
	mw "github.com/divvyup/divvy/pkg/middleware"
)

// @title        Divvy API
// @version      1.0
// @description  Shared-expense ledger: groups, split expenses, settlements, and simplified debts.
// @BasePath     /api/v1
func main() {
	logging.Setup()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.CreateSchema(db); err != nil {
		slog.Error("failed to create schema", "error", err)
		os.Exit(1)
	}

	slog.Info("connected to database")

	// Split Strategy Factory (Factory Pattern)
	splitFactory := expensesplit.NewSplitStrategyFactory()

	// Notification feature
	notificationRepo := notification.NewRepository(db)
	notificationService := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationService)

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	// Expense feature (with split factory injected)
	expenseRepo := expense.NewRepository(db)
	expenseService := expense.NewService(expenseRepo, splitFactory, notificationService)
	expenseHandler := expense.NewHandler(expenseService)

	// Settlement feature
	settlementRepo := settlement.NewRepository(db)
	settlementService := settlement.NewService(settlementRepo, notificationService)
	settlementHandler := settlement.NewHandler(settlementService)

	// Group feature (balances fold in expenses and settlements)
	groupRepo := group.NewRepository(db)
	groupService := group.NewService(groupRepo, expenseRepo, settlementRepo, notificationService)
	groupHandler := group.NewHandler(groupService)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(mw.UserIdentity)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/users", userHandler.Routes())
		r.Mount("/groups", groupHandler.Routes())
		r.Mount("/expenses", expenseHandler.Routes())
		r.Mount("/settlements", settlementHandler.Routes())
		r.Mount("/notifications", notificationHandler.Routes())
	})

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	slog.Info("server starting", "port", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
