package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskmaster/todo/internal/adapters/repository"
	"github.com/taskmaster/todo/internal/application/services"
	"github.com/taskmaster/todo/internal/domain/entities"
	"github.com/taskmaster/todo/internal/infrastructure/cache"
	"github.com/taskmaster/todo/internal/infrastructure/config"
	"github.com/taskmaster/todo/internal/infrastructure/database"
	"github.com/taskmaster/todo/internal/infrastructure/logger"
	"github.com/taskmaster/todo/internal/infrastructure/server"
	"github.com/taskmaster/todo/internal/ports"
)

// Build information, set with -ldflags "-X ...".
var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const shutdownTimeout = 15 * time.Second

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Todo API server",
		Long:  "Start the Todo API server with all configured routes and middleware",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage database migrations (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *database.Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migration up completed successfully")
				return nil
			})
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *database.Migrator) error {
				if err := m.Down(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migration down completed successfully")
				return nil
			})
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *database.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Current migration version: %d\n", version)
				fmt.Fprintf(cmd.OutOrStdout(), "Dirty: %t\n", dirty)
				return nil
			})
		},
	})

	return migrateCmd
}

// NewUserCommand creates the user management command
func NewUserCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
		Long:  "Create users without going through the HTTP API",
	}

	var req ports.RegisterRequest
	createUserCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Email == "" || req.Password == "" {
				return errors.New("email and password are required")
			}
			return createUser(cmd, req)
		},
	}

	createUserCmd.Flags().StringVar(&req.Email, "email", "", "User email (required)")
	createUserCmd.Flags().StringVar(&req.Password, "password", "", "User password (required)")
	createUserCmd.Flags().StringVar(&req.FirstName, "first-name", "", "User first name")
	createUserCmd.Flags().StringVar(&req.LastName, "last-name", "", "User last name")

	userCmd.AddCommand(createUserCmd)
	return userCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Todo API version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Todo API %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Build Date: %s\n", BuildDate)
			fmt.Fprintf(cmd.OutOrStdout(), "Git Commit: %s\n", GitCommit)
		},
	}
}

func runServer(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	db, err := database.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		appLogger.Infow("Database migrations applied", "driver", db.Driver())
	}

	var statsCache ports.StatsCache = cache.NoopStatsCache{}
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisStatsCache(cfg.Redis)
		if err != nil {
			return err
		}
		defer redisCache.Close()
		statsCache = redisCache
		appLogger.Infow("Stats cache enabled", "addr", cfg.Redis.GetAddr(), "ttl", cfg.Redis.StatsTTL)
	}

	srv, err := server.New(cfg, db, statsCache, entities.SystemClock, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	appLogger.Infow("Starting Todo API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	appLogger.Infow("Server stopped")
	return nil
}

func withMigrator(fn func(*database.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	m, err := database.NewMigrator(db)
	if err != nil {
		return err
	}

	return fn(m)
}

func createUser(cmd *cobra.Command, req ports.RegisterRequest) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	db, err := database.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	authService := services.NewAuthService(repository.NewUserRepository(db.DB), cfg.JWT, entities.SystemClock, appLogger)

	response, err := authService.Register(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "User created successfully:\n")
	fmt.Fprintf(out, "  ID: %s\n", response.User.ID)
	fmt.Fprintf(out, "  Email: %s\n", response.User.Email)
	if req.FirstName != "" {
		fmt.Fprintf(out, "  Name: %s %s\n", req.FirstName, req.LastName)
	}
	return nil
}
