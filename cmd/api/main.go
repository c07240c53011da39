package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "hse-compliance/docs" // Swagger documentation
	"hse-compliance/internal/auth"
	"hse-compliance/internal/config"
	"hse-compliance/internal/database"
	"hse-compliance/internal/email"
	"hse-compliance/internal/handlers"
	"hse-compliance/internal/logger"
	"hse-compliance/internal/middleware"
	"hse-compliance/internal/repository"
	"hse-compliance/internal/scheduler"
	"hse-compliance/internal/service"

	httpSwagger "github.com/swaggo/http-swagger"
)

// @title HSE Compliance API
// @version 1.0
// @description Backend API for supplier HSE questionnaire dispatch, scoring and document compliance tracking

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logger
	logger.Setup(logger.Config{
		Level: cfg.Log.Level,
	})

	slog.Info("Starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"env", cfg.App.Env,
		"log_level", cfg.Log.Level,
	)

	// Initialize database
	db, err := database.New(&cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func(db *database.Database) {
		err := db.Close()
		if err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}(db)

	slog.Info("Database connection established")

	// Run database migrations
	migrator := database.NewMigrationExecutor(db.DB)
	if err := migrator.RunMigrations("./migrations"); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	roleRepo := repository.NewRoleRepository(db.DB)
	sessionRepo := repository.NewSessionRepository(db.DB)
	auditRepo := repository.NewAuditRepository(db.DB)
	questionnaireRepo := repository.NewQuestionnaireRepository(db.DB)
	supplierRepo := repository.NewSupplierRepository(db.DB)
	documentRepo := repository.NewDocumentRepository(db.DB)
	assignmentRepo := repository.NewAssignmentRepository(db.DB)

	// Initialize services
	authService := auth.NewService(&cfg.JWT)
	emailService := email.NewService(&cfg.Email)
	authSvc := service.NewAuthService(userRepo, roleRepo, sessionRepo, auditRepo, authService, &cfg.JWT)
	questionnaireService := service.NewQuestionnaireService(questionnaireRepo, auditRepo)
	supplierService := service.NewSupplierService(supplierRepo, documentRepo, auditRepo)
	dispatchService := service.NewDispatchService(assignmentRepo, questionnaireRepo, supplierRepo, auditRepo, emailService)
	intakeService := service.NewIntakeService(assignmentRepo, supplierRepo, questionnaireRepo, auditRepo)
	reportService := service.NewReportService(assignmentRepo, supplierRepo)

	// Initialize scheduler
	schedulerService := scheduler.NewScheduler(documentRepo, supplierRepo, userRepo, emailService, &cfg.Scheduler)
	schedulerService.Start()
	defer schedulerService.Stop()

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(authService, sessionRepo)
	rbacMw := middleware.NewRBACMiddleware(db.DB)
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authSvc)
	questionnaireHandler := handlers.NewQuestionnaireHandler(questionnaireService)
	supplierHandler := handlers.NewSupplierHandler(supplierService)
	assignmentHandler := handlers.NewAssignmentHandler(dispatchService, intakeService, reportService)
	intakeHandler := handlers.NewIntakeHandler(intakeService)
	auditHandler := handlers.NewAuditHandler(auditRepo)

	// Route helpers
	protected := func(h http.HandlerFunc) http.Handler {
		return authMw.Authenticate(rbacMw.RequireAnyRole("admin", "hse_manager")(h))
	}
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return authMw.Authenticate(rbacMw.RequireRole("admin")(h))
	}

	// Setup router
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/logout", authHandler.Logout)
	mux.Handle("GET /api/v1/auth/me", authMw.Authenticate(http.HandlerFunc(authHandler.Me)))

	// Public intake routes, authenticated by the assignment token alone
	mux.HandleFunc("GET /api/v1/intake/{token}", intakeHandler.GetIntake)
	mux.HandleFunc("POST /api/v1/intake/{token}", intakeHandler.SubmitIntake)

	// Questionnaire routes
	mux.Handle("GET /api/v1/questionnaires", protected(questionnaireHandler.GetAllQuestionnaires))
	mux.Handle("POST /api/v1/questionnaires", protected(questionnaireHandler.CreateQuestionnaire))
	mux.Handle("POST /api/v1/questionnaires/import", protected(questionnaireHandler.ImportQuestionnaire))
	mux.Handle("GET /api/v1/questionnaires/{id}", protected(questionnaireHandler.GetQuestionnaire))
	mux.Handle("PUT /api/v1/questionnaires/{id}", protected(questionnaireHandler.UpdateQuestionnaire))
	mux.Handle("DELETE /api/v1/questionnaires/{id}", protected(questionnaireHandler.DeleteQuestionnaire))
	mux.Handle("POST /api/v1/questionnaires/{id}/publish", protected(questionnaireHandler.PublishQuestionnaire))
	mux.Handle("GET /api/v1/questionnaires/{id}/export", protected(questionnaireHandler.ExportQuestionnaire))
	mux.Handle("POST /api/v1/questionnaires/{id}/areas", protected(questionnaireHandler.CreateArea))
	mux.Handle("PUT /api/v1/areas/{id}", protected(questionnaireHandler.UpdateArea))
	mux.Handle("DELETE /api/v1/areas/{id}", protected(questionnaireHandler.DeleteArea))
	mux.Handle("POST /api/v1/areas/{id}/questions", protected(questionnaireHandler.CreateQuestion))
	mux.Handle("PUT /api/v1/questions/{id}", protected(questionnaireHandler.UpdateQuestion))
	mux.Handle("DELETE /api/v1/questions/{id}", protected(questionnaireHandler.DeleteQuestion))
	mux.Handle("POST /api/v1/questions/{id}/options", protected(questionnaireHandler.CreateOption))
	mux.Handle("PUT /api/v1/options/{id}", protected(questionnaireHandler.UpdateOption))
	mux.Handle("DELETE /api/v1/options/{id}", protected(questionnaireHandler.DeleteOption))

	// Supplier routes
	mux.Handle("GET /api/v1/suppliers", protected(supplierHandler.GetAllSuppliers))
	mux.Handle("POST /api/v1/suppliers", protected(supplierHandler.CreateSupplier))
	mux.Handle("GET /api/v1/suppliers/{id}", protected(supplierHandler.GetSupplier))
	mux.Handle("PUT /api/v1/suppliers/{id}", protected(supplierHandler.UpdateSupplier))
	mux.Handle("DELETE /api/v1/suppliers/{id}", adminOnly(supplierHandler.DeleteSupplier))
	mux.Handle("POST /api/v1/suppliers/{id}/suspend", protected(supplierHandler.SuspendSupplier))
	mux.Handle("POST /api/v1/suppliers/{id}/reinstate", protected(supplierHandler.ReinstateSupplier))
	mux.Handle("GET /api/v1/suppliers/{id}/documents", protected(supplierHandler.GetDocuments))
	mux.Handle("POST /api/v1/suppliers/{id}/documents", protected(supplierHandler.AddDocument))
	mux.Handle("GET /api/v1/suppliers/{id}/report", protected(assignmentHandler.ExportSupplierAssignmentsCSV))
	mux.Handle("POST /api/v1/documents/{id}/renew", protected(supplierHandler.RenewDocument))
	mux.Handle("DELETE /api/v1/documents/{id}", protected(supplierHandler.DeleteDocument))

	// Assignment routes
	mux.Handle("GET /api/v1/assignments", protected(assignmentHandler.GetAllAssignments))
	mux.Handle("POST /api/v1/assignments", protected(assignmentHandler.Dispatch))
	mux.Handle("GET /api/v1/assignments/report", protected(assignmentHandler.ExportAssignmentsCSV))
	mux.Handle("GET /api/v1/assignments/{id}", protected(assignmentHandler.GetAssignment))
	mux.Handle("DELETE /api/v1/assignments/{id}", protected(assignmentHandler.DeleteAssignment))
	mux.Handle("POST /api/v1/assignments/{id}/resend", protected(assignmentHandler.ResendInvitation))
	mux.Handle("PUT /api/v1/assignments/{id}/responses", adminOnly(assignmentHandler.EditResponses))

	// Admin routes
	mux.Handle("GET /api/v1/admin/audit-logs", adminOnly(auditHandler.ListAuditLogs))
	mux.Handle("POST /api/v1/admin/expiry-scan", adminOnly(func(w http.ResponseWriter, r *http.Request) {
		go schedulerService.RunExpiryScan()
		w.WriteHeader(http.StatusAccepted)
	}))

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.HealthCheck(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, err := w.Write([]byte(`{"status":"unhealthy","database":"error"}`))
			if err != nil {
				slog.Error("Failed to write health check response", "error", err)
			}
			return
		}
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(`{"status":"healthy","version":"` + cfg.App.Version + `"}`))
		if err != nil {
			slog.Error("Failed to write health check response", "error", err)
		}
	})

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Apply global middleware
	handler := middleware.LoggingMiddleware(
		middleware.SecurityHeaders(
			corsMw.Handler(
				rateLimiter.Limit(mux),
			),
		),
	)

	// Create server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped")
}
