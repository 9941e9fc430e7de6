package main

import (
	"github.com/alejandrodnm/oilfield/internal/adapters/notify"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored runs with their decision",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openStorage(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.ListRuns(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		notify.NewConsole(true, false).PrintHistory(runs)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to show")
}
