package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/pssiii/marketing-backend/internal/account"
	accountrepo "github.com/pssiii/marketing-backend/internal/account/repo"
	"github.com/pssiii/marketing-backend/internal/analytics"
	analyticsrepo "github.com/pssiii/marketing-backend/internal/analytics/repo"
	"github.com/pssiii/marketing-backend/internal/notify"
	"github.com/pssiii/marketing-backend/internal/router"
	"github.com/pssiii/marketing-backend/internal/session"
	sessionrepo "github.com/pssiii/marketing-backend/internal/session/repo"
	"github.com/pssiii/marketing-backend/pkg/database"
	"github.com/pssiii/marketing-backend/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting marketing-backend api")

	// init db
	cfg := database.ConfigFromEnv()
	sqlDB, err := database.Connect(cfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer sqlDB.Close()

	// wrap with sqlx for convenience in repos/services
	sqlxDB := sqlx.NewDb(sqlDB, "postgres")

	// repositories
	userRepo := accountrepo.NewUserRepo(sqlxDB)
	sessRepo := sessionrepo.NewSessionRepo(sqlxDB)
	dataRepo := analyticsrepo.NewAnalyticsRepo(sqlxDB)

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer bootCancel()
	if err := userRepo.EnsureTable(bootCtx); err != nil {
		sugar.Fatalf("ensure users table: %v", err)
	}
	if err := sessRepo.EnsureTable(bootCtx); err != nil {
		sugar.Fatalf("ensure sessions table: %v", err)
	}
	if err := dataRepo.EnsureTables(bootCtx); err != nil {
		sugar.Fatalf("ensure analytics tables: %v", err)
	}

	// mail queue
	mailCfg := notify.ConfigFromEnv()
	mailQueue := notify.NewQueue(mailCfg, notify.NewSMTPMailer(mailCfg), sugar)
	mailQueue.Start()

	// services and handlers
	sessions := session.NewService(session.ConfigFromEnv(), sessRepo)
	accounts := account.NewService(userRepo, account.BcryptHasher{Cost: 12}, mailQueue)
	accountHandler := account.NewHandler(accounts, sessions, sugar)
	dataHandler := analytics.NewHandler(analytics.NewService(dataRepo), sugar)

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// periodic cleanup of expired session rows
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := sessRepo.PurgeExpired(context.Background()); err != nil {
					sugar.Warnf("purge sessions: %v", err)
				} else if n > 0 {
					sugar.Debugw("purged expired sessions", "count", n)
				}
			}
		}
	}()

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8431"
	}

	// mount http server
	handler := router.RegisterRoutes(sugar, accountHandler, dataHandler, sessions)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// run server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Infof("listening on %s", addr)

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// shutdown http server
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	// let queued mail drain
	mailQueue.Stop()

	sugar.Info("goodbye")
}
