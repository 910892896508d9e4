package cmd

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	config "taskboard.dev/taskboard/internal/configs"
	httpapi "taskboard.dev/taskboard/internal/http"
	repository "taskboard.dev/taskboard/internal/repositories"
	"taskboard.dev/taskboard/internal/services"
	"taskboard.dev/taskboard/internal/session"
	"taskboard.dev/taskboard/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the taskboard HTTP API and the attachment janitor",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println(".env file not found, using environment variables")
		}

		cfg := config.Load()

		logger := logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})

		database := config.New(cfg.DatabaseDSN)

		redisClient := config.NewRedisClient(cfg.RedisAddr)
		defer redisClient.Close()
		sessions := session.NewRedisStore(redisClient, cfg.SessionKeyPrefix)

		uploads, err := storage.NewDiskStorage(cfg.UploadDir)
		if err != nil {
			return err
		}

		taskRepo := repository.NewTaskRepository(database)
		userRepo := repository.NewUserRepository(database)
		attachmentRepo := repository.NewAttachmentRepository(database)
		preferenceRepo := repository.NewPreferenceRepository(database)

		sessionTTL := time.Duration(cfg.SessionTTLMinutes) * time.Minute
		authService := services.NewAuthService(userRepo, sessions, cfg.JWTSecret, sessionTTL, logger)
		taskService := services.NewTaskService(taskRepo, logger)
		attachmentService := services.NewAttachmentService(taskRepo, attachmentRepo, uploads, logger)
		preferenceService := services.NewPreferenceService(preferenceRepo)
		userService := services.NewUserService(userRepo, logger)

		janitor := services.NewAttachmentJanitor(
			uploads,
			attachmentRepo,
			time.Duration(cfg.JanitorIntervalSeconds)*time.Second,
			time.Duration(cfg.JanitorMinAgeSeconds)*time.Second,
			logger,
		)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e := echo.New()
		httpapi.Register(e, httpapi.Handlers{
			Auth:       httpapi.NewAuthHandler(authService),
			Task:       httpapi.NewTaskHandler(taskService, attachmentService, preferenceService),
			Preference: httpapi.NewPreferenceHandler(preferenceService),
			Admin:      httpapi.NewAdminHandler(userService),
		}, authService, logger, cfg.RateLimit)

		go func() {
			logger.WithField("addr", cfg.AppURL).Info("HTTP server listening")
			if err := e.Start(cfg.AppURL); err != nil {
				logger.WithError(err).Info("server stopped")
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second,
		)
		defer cancel()

		_ = e.Shutdown(shutdownCtx)
		janitor.Shutdown(shutdownCtx)

		logger.Info("HTTP server and janitor shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
