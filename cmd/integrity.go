package cmd

import (
	"fmt"

	"listing-mirror/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on the mirror bucket",
	Long:  `Checks that the mirror and feed folders exist, that the index page and feed document are present, and that every mirrored object carries source metadata.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		logg := s.logger
		defer logg.Sync()

		svc := integrity.NewService(s.store, s.cfg.Storage.Bucket, s.integrityTargets(), logg)
		healthy := true

		logg.Info("Running structure check...")
		missing, err := svc.CheckStructure(ctx)
		if err != nil {
			return fmt.Errorf("structure check failed: %w", err)
		}
		if len(missing) > 0 {
			logg.Warn("Missing folders detected", zap.Strings("missing", missing))
			if fixFlag {
				if err := svc.FixStructure(ctx, missing); err != nil {
					return fmt.Errorf("failed to fix structure: %w", err)
				}
				logg.Info("Structure fixed")
			} else {
				healthy = false
			}
		} else {
			logg.Info("Structure check passed")
		}

		logg.Info("Running documents check...")
		docs, err := svc.CheckDocuments(ctx)
		if err != nil {
			return fmt.Errorf("documents check failed: %w", err)
		}
		if len(docs) > 0 {
			logg.Warn("Missing documents detected", zap.Strings("missing", docs))
			healthy = false
		} else {
			logg.Info("Documents check passed")
		}

		logg.Info("Running metadata check...")
		report, err := svc.CheckMetadata(ctx)
		if err != nil {
			return fmt.Errorf("metadata check failed: %w", err)
		}
		if !report.Healthy() {
			logg.Warn("Objects without source metadata",
				zap.Int("checked", report.Checked),
				zap.Strings("missing_size", report.MissingSize),
				zap.Strings("missing_last_modified", report.MissingLastModified))
			healthy = false
		} else {
			logg.Info("Metadata check passed", zap.Int("checked", report.Checked))
		}

		if !healthy {
			return fmt.Errorf("integrity checks reported problems")
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create missing folder markers")
}
