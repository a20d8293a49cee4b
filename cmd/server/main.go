// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/collabers/backend/internal/auth"
	"github.com/collabers/backend/internal/config"
	"github.com/collabers/backend/internal/domain"
	"github.com/collabers/backend/internal/handlers"
	"github.com/collabers/backend/internal/middleware"
	"github.com/collabers/backend/internal/ratelimit"
	applicationrepo "github.com/collabers/backend/internal/repository/application"
	collaborationrepo "github.com/collabers/backend/internal/repository/collaboration"
	conversationrepo "github.com/collabers/backend/internal/repository/conversation"
	messagerepo "github.com/collabers/backend/internal/repository/message"
	notificationrepo "github.com/collabers/backend/internal/repository/notification"
	profilerepo "github.com/collabers/backend/internal/repository/profile"
	projectrepo "github.com/collabers/backend/internal/repository/project"
	ratelimitrepo "github.com/collabers/backend/internal/repository/ratelimit"
	userrepo "github.com/collabers/backend/internal/repository/user"
	verificationrepo "github.com/collabers/backend/internal/repository/verification"
	"github.com/collabers/backend/internal/services"
	"github.com/collabers/backend/internal/services/email"
	"github.com/collabers/backend/internal/services/user_services"
	"github.com/collabers/backend/internal/services/verification"
)

func main() {
	cfg := config.Load()

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Profile{},
		&domain.VerificationChallenge{},
		&domain.RateLimitWindow{},
		&domain.ProjectPost{},
		&domain.Application{},
		&domain.Collaboration{},
		&domain.Conversation{},
		&domain.Message{},
		&domain.Notification{},
	); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	// --- Repositories ---
	userRepo := userrepo.NewGormUserRepository(db)
	profileRepo := profilerepo.NewGormProfileRepository(db)
	challengeRepo := verificationrepo.NewGormChallengeRepository(db)
	windowRepo := ratelimitrepo.NewGormWindowRepository(db)
	projectRepo := projectrepo.NewGormProjectRepository(db)
	applicationRepo := applicationrepo.NewGormApplicationRepository(db)
	collaborationRepo := collaborationrepo.NewGormCollaborationRepository(db)
	conversationRepo := conversationrepo.NewGormConversationRepository(db)
	messageRepo := messagerepo.NewGormMessageRepository(db)
	notificationRepo := notificationrepo.NewGormNotificationRepository(db)

	// --- Services ---
	issuer, err := auth.NewTokenIssuer([]byte(cfg.JWTSecretKey), cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize token issuer: %v", err)
	}

	verificationConfig := verification.DefaultConfig()
	emailService, err := email.NewService(&email.Config{
		SMTPHost:    cfg.SMTPHost,
		SMTPPort:    cfg.SMTPPort,
		SMTPUser:    cfg.SMTPUser,
		SMTPPass:    cfg.SMTPPass,
		FromAddress: cfg.SMTPFrom,
		FrontendURL: cfg.FrontendURL,
		OTPExpiry:   verificationConfig.OTPExpiry,
		LinkExpiry:  verificationConfig.LinkExpiry,
	}, services.NewLogger("email"))
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize email service: %v", err)
	}

	verificationLimiter := verification.NewRateLimiter(windowRepo)
	verificationService, err := verification.NewService(
		challengeRepo,
		userRepo,
		verificationLimiter,
		emailService,
		services.NewLogger("verification"),
		verificationConfig,
	)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize verification service: %v", err)
	}

	accountService := user_services.NewAccountService(userRepo, issuer, services.NewLogger("account"))
	profileService := user_services.NewProfileService(profileRepo, services.NewLogger("profile"))
	notificationService := services.NewNotificationService(notificationRepo, services.NewLogger("notification"))
	messagingService := services.NewMessagingService(conversationRepo, messageRepo, notificationService, services.NewLogger("messaging"))
	projectService := services.NewProjectService(projectRepo, services.NewLogger("project"))
	applicationService := services.NewApplicationService(
		applicationRepo, collaborationRepo, projectRepo,
		messagingService, notificationService, services.NewLogger("application"))

	// --- Handlers ---
	exposeDevSecrets := !cfg.IsProduction() && cfg.SMTPHost == ""
	authHandler := handlers.NewAuthHandler(accountService, verificationService, cfg.FrontendURL, exposeDevSecrets)
	profileHandler := handlers.NewProfileHandler(profileService, accountService)
	projectHandler := handlers.NewProjectHandler(projectService)
	applicationHandler := handlers.NewApplicationHandler(applicationService)
	conversationHandler := handlers.NewConversationHandler(messagingService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// --- Router Setup ---
	r := mux.NewRouter()
	authMiddleware := middleware.NewJWTMiddleware(issuer, accountService)
	ipLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultAuthConfig())
	defer ipLimiter.Close()

	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.CORSMiddleware(cfg.FrontendURL))
	r.Use(middleware.SecurityHeadersMiddleware)
	r.Use(middleware.RecoverPanic)
	r.Use(middleware.LoggingMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")

	// --- Public auth routes (IP rate limited) ---
	authRouter := r.PathPrefix("/auth").Subrouter()
	guarded := middleware.RateLimitMiddleware(ipLimiter, "auth")
	reset := middleware.AuthSuccessMiddleware(ipLimiter, "auth")

	authRouter.Handle("/register", guarded(reset(http.HandlerFunc(authHandler.Register)))).Methods("POST")
	authRouter.Handle("/login", guarded(reset(http.HandlerFunc(authHandler.Login)))).Methods("POST")
	authRouter.HandleFunc("/refresh", authHandler.Refresh).Methods("POST")
	authRouter.HandleFunc("/verify-link", authHandler.VerifyLink).Methods("GET")
	authRouter.Handle("/request-password-reset", guarded(http.HandlerFunc(authHandler.RequestPasswordReset))).Methods("POST")
	authRouter.Handle("/reset-password-otp", guarded(http.HandlerFunc(authHandler.ResetPasswordOTP))).Methods("POST")
	authRouter.Handle("/reset-password-link", guarded(http.HandlerFunc(authHandler.ResetPasswordLink))).Methods("POST")

	// --- Authenticated routes ---
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware)

	api.HandleFunc("/auth/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/auth/resend-verification", authHandler.ResendVerification).Methods("POST")
	api.HandleFunc("/auth/verify-otp", authHandler.VerifyOTP).Methods("POST")

	api.HandleFunc("/profile", profileHandler.GetMine).Methods("GET")
	api.HandleFunc("/profile", profileHandler.UpdateMine).Methods("PUT")
	api.HandleFunc("/users/{user_id:[0-9]+}", profileHandler.Get).Methods("GET")

	api.HandleFunc("/projects", projectHandler.Create).Methods("POST")
	api.HandleFunc("/projects", projectHandler.List).Methods("GET")
	api.HandleFunc("/projects/{id:[0-9]+}", projectHandler.Get).Methods("GET")
	api.HandleFunc("/projects/{id:[0-9]+}", projectHandler.Update).Methods("PUT")
	api.HandleFunc("/projects/{id:[0-9]+}", projectHandler.Delete).Methods("DELETE")
	api.HandleFunc("/projects/{id:[0-9]+}/status", projectHandler.ChangeStatus).Methods("PATCH")

	api.HandleFunc("/projects/{id:[0-9]+}/apply", applicationHandler.Apply).Methods("POST")
	api.HandleFunc("/projects/{id:[0-9]+}/applications", applicationHandler.ListForProject).Methods("GET")
	api.HandleFunc("/projects/{id:[0-9]+}/team", applicationHandler.Roster).Methods("GET")
	api.HandleFunc("/projects/{id:[0-9]+}/leave", applicationHandler.Leave).Methods("POST")
	api.HandleFunc("/projects/{id:[0-9]+}/team/{user_id:[0-9]+}", applicationHandler.RemoveCollaborator).Methods("DELETE")
	api.HandleFunc("/applications", applicationHandler.ListMine).Methods("GET")
	api.HandleFunc("/applications/{id:[0-9]+}/accept", applicationHandler.Accept).Methods("POST")
	api.HandleFunc("/applications/{id:[0-9]+}/reject", applicationHandler.Reject).Methods("POST")
	api.HandleFunc("/applications/{id:[0-9]+}/withdraw", applicationHandler.Withdraw).Methods("POST")
	api.HandleFunc("/applications/{id:[0-9]+}/discuss", applicationHandler.Discuss).Methods("POST")

	api.HandleFunc("/conversations", conversationHandler.List).Methods("GET")
	api.HandleFunc("/conversations/direct", conversationHandler.StartDirect).Methods("POST")
	api.HandleFunc("/conversations/{id:[0-9]+}/messages", conversationHandler.Send).Methods("POST")
	api.HandleFunc("/conversations/{id:[0-9]+}/messages", conversationHandler.Messages).Methods("GET")

	api.HandleFunc("/notifications", notificationHandler.List).Methods("GET")
	api.HandleFunc("/notifications/read-all", notificationHandler.MarkAllRead).Methods("POST")
	api.HandleFunc("/notifications/{id:[0-9]+}/read", notificationHandler.MarkRead).Methods("POST")

	// --- Background sweep of expired verification challenges ---
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if _, err := verificationService.CleanupExpired(sweepCtx); err != nil {
					log.Printf("challenge cleanup error: %v", err)
				}
			}
		}
	}()

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on :%s (env=%q)", cfg.ServerPort, cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	stopSweep()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
