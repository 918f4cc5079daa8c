package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"listing-mirror/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "listing-mirror",
	Short: "Listing Mirror Service",
	Long: `Listing Mirror keeps an S3 bucket prefix identical to a remote HTTP
directory listing. It deletes withdrawn files, replaces changed ones and
uploads new ones, and can run once from the CLI or as an HTTP service.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	// Interrupts cancel the running command; pending mirror actions are reported as canceled.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := RootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		// "debug" selects the development config, which prints ISO8601 timestamps.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
