package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	webAdapter "finance-backoffice/internal/adapters/web"
	"finance-backoffice/internal/ai"
	"finance-backoffice/internal/app"
	"finance-backoffice/internal/core"
	"finance-backoffice/internal/db"
	"finance-backoffice/internal/logger"
	"finance-backoffice/internal/store"
	"finance-backoffice/internal/webhook"
)

func main() {
	_ = godotenv.Load()
	logger.Setup()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer pool.Close()

	docStore := store.NewPostgresStore(pool)
	dueService := core.NewDueService(docStore)
	payrollService := core.NewPayrollService(docStore)

	var agent ai.AgentService
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		agent = ai.NewAgent(apiKey)
	} else {
		log.Warn().Msg("OPENAI_API_KEY is not set; chat is disabled")
	}

	hook := webhook.NewClient(os.Getenv("WEBHOOK_URL"))

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}

	svc := app.NewAppService(docStore, dueService, payrollService, agent, hook, uploadDir)

	if adminPassword := os.Getenv("ADMIN_PASSWORD"); adminPassword != "" {
		adminUser := os.Getenv("ADMIN_USERNAME")
		if adminUser == "" {
			adminUser = "admin"
		}
		if err := svc.EnsureAdminUser(ctx, adminUser, adminPassword); err != nil {
			log.Fatal().Err(err).Msg("admin bootstrap")
		}
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal().Msg("JWT_SECRET environment variable not set")
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	handler := webAdapter.NewHandler(svc, os.Getenv("ALLOWED_ORIGINS"), jwtSecret)

	log.Info().Str("port", port).Msg("server starting")
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}
