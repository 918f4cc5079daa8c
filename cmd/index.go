package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// indexCmd regenerates the index page.
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the presigned index page of the mirror",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer s.logger.Sync()

		svc, err := s.mirrorService()
		if err != nil {
			return err
		}

		result, err := svc.RebuildIndex(cmd.Context())
		if err != nil {
			return err
		}
		s.logger.Info("Index written", zap.String("key", result.Key), zap.Int("objects", result.Objects))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(indexCmd)
}
