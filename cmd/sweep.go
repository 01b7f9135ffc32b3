package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Release every expired hold once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()

		app, err := newApplication(config, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		result, err := app.service.Sweeper.Sweep(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d processed=%d reconciled=%d skipped=%d errors=%d\n",
			result.Scanned, result.Processed, result.Reconciled, result.Skipped, len(result.Errors))

		for _, sweepErr := range result.Errors {
			logger.Warn("Booking not swept", zap.Error(sweepErr))
		}
		if len(result.Errors) > 0 {
			return fmt.Errorf("%d bookings failed to sweep", len(result.Errors))
		}
		return nil
	},
}
