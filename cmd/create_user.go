package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	config "taskboard.dev/taskboard/internal/configs"
	repository "taskboard.dev/taskboard/internal/repositories"
	"taskboard.dev/taskboard/internal/services"
	"taskboard.dev/taskboard/internal/session"
)

var (
	createUserName     string
	createUserEmail    string
	createUserPassword string
	createUserAdmin    bool
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create an account directly in the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println(".env file not found, using environment variables")
		}

		cfg := config.Load()
		database := config.New(cfg.DatabaseDSN)

		logger := logrus.New()
		userRepo := repository.NewUserRepository(database)
		// No sessions are issued here; the memory store satisfies the
		// service without a redis connection.
		auth := services.NewAuthService(userRepo, session.NewMemoryStore(), cfg.JWTSecret, 0, logger)

		user, err := auth.Register(context.Background(), createUserName, createUserEmail, createUserPassword, createUserAdmin)
		if err != nil {
			return err
		}

		fmt.Printf("created user %s (%s)\n", user.Email, user.ID)
		return nil
	},
}

func init() {
	createUserCmd.Flags().StringVar(&createUserName, "name", "", "display name")
	createUserCmd.Flags().StringVar(&createUserEmail, "email", "", "login email")
	createUserCmd.Flags().StringVar(&createUserPassword, "password", "", "login password")
	createUserCmd.Flags().BoolVar(&createUserAdmin, "admin", false, "grant admin rights")
	_ = createUserCmd.MarkFlagRequired("name")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(createUserCmd)
}
