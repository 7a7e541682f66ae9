package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/supply-sim/supply-sim/sim/results"
)

var (
	reportDSN   string
	reportLimit int
	reportID    string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "List persisted runs from the MySQL history",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := results.NewMySQLStore(reportDSN)
		if err != nil {
			logrus.Fatalf("Failed to open run history: %v", err)
		}
		defer store.Close()

		ctx := context.Background()

		if reportID != "" {
			rec, err := store.Get(ctx, reportID)
			if err != nil {
				logrus.Fatalf("Failed to fetch run %s: %v", reportID, err)
			}
			printRecord(rec)
			return
		}

		recs, err := store.List(ctx, reportLimit)
		if err != nil {
			logrus.Fatalf("Failed to list runs: %v", err)
		}
		if len(recs) == 0 {
			fmt.Println("No runs recorded.")
			return
		}
		fmt.Printf("%-36s | %-20s | %-10s | %-19s | %12s | %8s | %8s\n",
			"id", "scenario", "seed", "started", "total_cost", "fill", "bullwhip")
		for _, rec := range recs {
			printRecord(rec)
		}
	},
}

func printRecord(rec *results.RunRecord) {
	var cost, fill, bullwhip float64
	if rec.Summary != nil {
		cost = rec.Summary.TotalCost
		fill = rec.Summary.FillRate
		bullwhip = rec.Summary.BullwhipRatio
	}
	started := time.Unix(rec.StartedAt, 0).UTC().Format("2006-01-02 15:04:05")
	fmt.Printf("%-36s | %-20s | %-10d | %-19s | %12.2f | %8.4f | %8.4f\n",
		rec.ID, rec.Scenario, rec.Seed, started, cost, fill, bullwhip)
}

func init() {
	reportCmd.Flags().StringVar(&reportDSN, "mysql-dsn", "", "MySQL DSN of the run history")
	reportCmd.Flags().IntVar(&reportLimit, "limit", 10, "Maximum number of runs to list")
	reportCmd.Flags().StringVar(&reportID, "id", "", "Fetch a single run by ID")
	_ = reportCmd.MarkFlagRequired("mysql-dsn")

	rootCmd.AddCommand(reportCmd)
}
