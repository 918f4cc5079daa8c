package cmd

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd lists recorded runs, or shows one run when an id is given.
var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recorded mirror runs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer s.logger.Sync()

		if s.history == nil {
			return errors.New("history requires a configured database (DATABASE_DRIVER)")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if len(args) == 1 {
			run, err := s.history.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return enc.Encode(run)
		}

		runs, err := s.history.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		return enc.Encode(runs)
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
	RootCmd.AddCommand(historyCmd)
}
