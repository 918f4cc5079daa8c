package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// feedCmd refreshes the population feed.
var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Store the population JSON feed and notify the queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer s.logger.Sync()

		result, err := s.feedService(cmd.Context()).Sync(cmd.Context())
		if err != nil {
			return err
		}
		s.logger.Info("Feed updated",
			zap.String("key", result.Key),
			zap.Int("records", result.Records),
			zap.String("message_id", result.MessageID))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(feedCmd)
}
