package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database contents and last run time",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if dataStore == nil {
		if err := initStore(); err != nil {
			return err
		}
	}

	ctx := context.Background()

	count, err := dataStore.CountBills(ctx)
	if err != nil {
		return fmt.Errorf("counting bills: %w", err)
	}

	last, ok, err := dataStore.BillStore().LastRunTimestamp(ctx)
	if err != nil {
		return fmt.Errorf("reading last run: %w", err)
	}

	cmd.Printf("Database:     %s\n", dataStore.Path())
	cmd.Printf("Bill records: %d\n", count)
	if ok {
		cmd.Printf("Last run:     %s\n", last.Local().Format("2006-01-02 15:04:05"))
	} else {
		cmd.Println("Last run:     never")
	}
	return nil
}
