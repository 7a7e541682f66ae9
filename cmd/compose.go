package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/supply-sim/supply-sim/sim/scenario"
)

var composeFromPaths []string

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Merge multiple scenario fragments into one",
	Long:  "Load multiple scenario YAML files and merge their products, agents, demand streams, and disruptions. Output is written to stdout.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(composeFromPaths) == 0 {
			logrus.Fatalf("at least one --from flag is required")
		}

		var specs []*scenario.ScenarioSpec
		for _, path := range composeFromPaths {
			spec, err := scenario.LoadScenarioSpec(path)
			if err != nil {
				logrus.Fatalf("Failed to load spec %s: %v", path, err)
			}
			specs = append(specs, spec)
		}

		merged, err := scenario.ComposeSpecs(specs)
		if err != nil {
			logrus.Fatalf("Compose failed: %v", err)
		}
		writeSpecToStdout(merged)
	},
}

func writeSpecToStdout(spec *scenario.ScenarioSpec) {
	data, err := yaml.Marshal(spec)
	if err != nil {
		logrus.Fatalf("YAML marshal failed: %v", err)
	}
	fmt.Print(string(data))
}

func init() {
	composeCmd.Flags().StringArrayVar(&composeFromPaths, "from", nil, "Path to scenario YAML file (can be repeated)")
	_ = composeCmd.MarkFlagRequired("from")

	rootCmd.AddCommand(composeCmd)
}
