package main

import (
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent analysis runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	db, dao, err := openRunIndex()
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := dao.History(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		printf(cmd, "No runs recorded yet\n")
		return nil
	}

	for _, rec := range records {
		if rec.Error != "" {
			printf(cmd, "%s  %-20s FAILED: %s\n",
				rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.Subject, rec.Error)
			continue
		}
		printf(cmd, "%s  %-20s %d rows, valid=%t\n",
			rec.CreatedAt.Format("2006-01-02 15:04:05"), rec.Subject, rec.RowCount, rec.Valid)
	}
	return nil
}
