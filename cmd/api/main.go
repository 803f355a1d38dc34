package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskmaster/todo/cmd/api/commands"
)

// @title Todo API
// @version 1.0
// @description Personal todo lists with categories, filtering and statistics

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	rootCmd := &cobra.Command{
		Use:          "todo-api",
		Short:        "Todo API Server",
		Long:         `Todo API is a multi-user todo list backend with categories, filtering, pagination and statistics.`,
		SilenceUsage: true,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
