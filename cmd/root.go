package cmd

import (
	"fmt"
	"log"
	"os"

	"foodtruck-market/pkg/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "foodtruck-market",
	Short: "Food truck marketplace booking service",
	Long: `Booking backend for the food truck marketplace.

Runs the HTTP API, the hold expiry sweeper and schema migrations.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, sweepCmd, migrateCmd)
}

// Execute runs the selected command; "serve" when none is given
func Execute() {
	if len(os.Args) == 1 {
		rootCmd.SetArgs([]string{"serve"})
	}
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// bootstrap loads config and the logger shared by every command
func bootstrap() (*utils.Config, *zap.Logger, error) {
	config, err := utils.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := utils.InitLogger(config.App.Name, config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}

	return config, logger, nil
}
