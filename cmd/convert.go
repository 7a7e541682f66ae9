package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/supply-sim/supply-sim/sim/scenario"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Produce scenario YAML from presets or demand history",
	Long:  "Generate scenario YAML from a built-in preset or from a CSV demand history. Output is written to stdout for piping.",
}

// --- supply-sim convert preset ---

var (
	presetName        string
	presetSeed        int64
	presetHorizonDays int64
)

var convertPresetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Emit a named built-in scenario",
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := scenario.Preset(presetName, presetSeed, presetHorizonDays)
		if err != nil {
			logrus.Fatalf("Preset conversion failed: %v", err)
		}
		writeSpecToStdout(spec)
	},
}

// --- supply-sim convert history ---

var historyPath string

var convertHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Derive demand streams from a CSV demand history",
	Long:  "Read a CSV demand history (day,retailer,product,quantity) and emit a scenario fragment with fitted demand streams. Merge it with a chain definition via `compose`.",
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := scenario.ConvertDemandHistory(historyPath)
		if err != nil {
			logrus.Fatalf("History conversion failed: %v", err)
		}
		writeSpecToStdout(spec)
	},
}

func init() {
	convertPresetCmd.Flags().StringVar(&presetName, "name", "", "Preset name (e.g., bullwhip, electronics)")
	convertPresetCmd.Flags().Int64Var(&presetSeed, "seed", 42, "Scenario seed")
	convertPresetCmd.Flags().Int64Var(&presetHorizonDays, "horizon-days", 84, "Simulation horizon in days")
	_ = convertPresetCmd.MarkFlagRequired("name")

	convertHistoryCmd.Flags().StringVar(&historyPath, "file", "", "Path to CSV demand history")
	_ = convertHistoryCmd.MarkFlagRequired("file")

	convertCmd.AddCommand(convertPresetCmd)
	convertCmd.AddCommand(convertHistoryCmd)

	rootCmd.AddCommand(convertCmd)
}
