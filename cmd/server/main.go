package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/rongwang/estate-registry/internal/api"
	"github.com/rongwang/estate-registry/internal/config"
	"github.com/rongwang/estate-registry/internal/metrics"
	"github.com/rongwang/estate-registry/internal/repository"
	"github.com/rongwang/estate-registry/internal/service"
	"github.com/rongwang/estate-registry/internal/utils"
)

const appName = "estate-registry"

func main() {
	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Real estate registry service",
	}

	rootCmd.AddCommand(
		serveCmd(),
		migrateCmd(),
		hashPasswordCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load configuration
			cfg := config.LoadConfig()
			if port, _ := cmd.Flags().GetInt("port"); port != 0 {
				cfg.Server.Port = port
			}

			logger := utils.NewLogger(appName, cfg.Log.Level)

			// Set up database connection
			db, err := config.SetupDatabase(cfg)
			if err != nil {
				return fmt.Errorf("failed to set up database: %w", err)
			}
			defer db.Close()

			if cfg.Auth.AdminPasswordHash == "" {
				logger.Warn("ADMIN_PASSWORD_HASH is not set, write routes will reject every login")
			}

			repo := repository.NewSQLRepository(db)
			m := metrics.New()
			svc := service.NewDefaultService(repo, cfg.Auth, logger, m)
			handler := api.NewHandler(svc, m, logger)

			// Set up Gin router
			gin.SetMode(gin.ReleaseMode)
			router := gin.New()
			router.Use(gin.Recovery(), utils.RequestLogger(logger), api.JWTSecret(cfg.Auth.JWTSecret))
			handler.SetupRoutes(router)

			corsHandler := cors.New(cors.Options{
				AllowedOrigins: cfg.Server.CORSOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
				AllowedHeaders: []string{"Authorization", "Content-Type"},
			}).Handler(router)

			server := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
				Handler:           corsHandler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.WithField("addr", server.Addr).Info("Starting server")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("failed to start server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("Shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().Int("port", 0, "Listen port (overrides SERVER_PORT)")

	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the registry tables if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig()
			logger := utils.NewLogger(appName, cfg.Log.Level)

			// SetupDatabase creates the tables on connect
			db, err := config.SetupDatabase(cfg)
			if err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			defer db.Close()

			logger.WithField("driver", cfg.Database.Driver).Info("Tables are up to date")
			return nil
		},
	}
}

func hashPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cost, _ := cmd.Flags().GetInt("cost")

			hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), cost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}

	cmd.Flags().Int("cost", bcrypt.DefaultCost, "bcrypt cost")

	return cmd
}
