package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/supply-sim/supply-sim/sim"
	"github.com/supply-sim/supply-sim/sim/results"
	"github.com/supply-sim/supply-sim/sim/scenario"
	"github.com/supply-sim/supply-sim/sim/trace"
)

var (
	// CLI flags for the run command
	scenarioPath string // Path to the scenario YAML
	runPreset    string // Built-in preset used when no scenario file is given
	seedOverride int64  // Override scenario seed (0 = keep spec value)
	horizonDays  int64  // Override horizon in days (0 = keep spec value)
	logLevel     string // Log verbosity level
	traceLevel   string // Override trace level (none, decisions; empty = keep spec value)
	outputPath   string // Where to write the summary JSON (empty = stdout)
	traceOutput  string // Where to write the decision trace JSON (empty = skip)

	// CLI flags for optional result sinks
	mysqlDSN  string // MySQL DSN for run history (empty = disabled)
	redisAddr string // Redis address for the recent-runs cache (empty = disabled)
	amqpURL   string // RabbitMQ URL for run publishing (empty = disabled)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "supply-sim",
	Short: "Discrete-event simulator for multi-echelon supply chains",
}

// runCmd executes one simulation from a scenario file
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a supply chain simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		spec, err := loadRunSpec()
		if err != nil {
			logrus.Fatalf("Failed to load scenario: %v", err)
		}
		if seedOverride != 0 {
			spec.Seed = seedOverride
		}
		if horizonDays > 0 {
			spec.HorizonDays = horizonDays
			spec.HorizonTicks = 0
		}
		if traceLevel != "" {
			spec.Trace = traceLevel
		}

		logrus.Infof("Starting simulation: scenario=%s seed=%d horizon=%d ticks, %d agents",
			spec.Name, spec.Seed, spec.Horizon(), len(spec.Agents))

		startTime := time.Now()

		s, err := scenario.Build(spec)
		if err != nil {
			logrus.Fatalf("Failed to build simulator: %v", err)
		}
		summary := s.Run()

		logrus.Infof("Simulation complete in %v.", time.Since(startTime))

		if err := writeSummary(summary, outputPath); err != nil {
			logrus.Fatalf("Failed to write summary: %v", err)
		}
		if st := s.Tracer(); st != nil && st.Enabled() {
			ts := trace.Summarize(st)
			logrus.Infof("Trace captured: %d reviews, %d demands, %d shipments, %d delay alerts",
				ts.TotalReviews, ts.DemandArrivals, ts.Shipments, ts.DelayAlerts)
			if traceOutput != "" {
				if err := writeTrace(st, traceOutput); err != nil {
					logrus.Fatalf("Failed to write trace: %v", err)
				}
			}
		}

		rec := results.NewRunRecord(spec.Name, spec.Seed, summary)
		rec.ElapsedMS = time.Since(startTime).Milliseconds()
		persistRun(rec)
	},
}

// Defaults for preset runs when the seed and horizon flags are left unset.
const (
	defaultPresetSeed = 42
	defaultPresetDays = 84
)

// loadRunSpec resolves the scenario for `run`. An explicit YAML file
// wins; otherwise the named built-in preset is generated in memory.
func loadRunSpec() (*scenario.ScenarioSpec, error) {
	if scenarioPath != "" {
		return scenario.LoadScenarioSpec(scenarioPath)
	}
	seed := seedOverride
	if seed == 0 {
		seed = defaultPresetSeed
	}
	days := horizonDays
	if days <= 0 {
		days = defaultPresetDays
	}
	logrus.Infof("No scenario file given, running built-in preset %q", runPreset)
	return scenario.Preset(runPreset, seed, days)
}

// writeSummary renders the metrics summary as indented JSON, to a file
// when path is set and to stdout otherwise.
func writeSummary(summary *sim.Summary, path string) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func writeTrace(st *trace.SimulationTrace, path string) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// persistRun sends the record to every configured sink. Sinks are best
// effort: a failure is logged and the run result is still on stdout.
func persistRun(rec *results.RunRecord) {
	ctx := context.Background()

	if mysqlDSN != "" {
		store, err := results.NewMySQLStore(mysqlDSN)
		if err != nil {
			logrus.Warnf("MySQL sink unavailable: %v", err)
		} else {
			if err := store.Save(ctx, rec); err != nil {
				logrus.Warnf("MySQL save failed: %v", err)
			}
			_ = store.Close()
		}
	}

	if redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		cache := results.NewRecentCache(client, "", 0)
		if err := cache.Push(ctx, rec); err != nil {
			logrus.Warnf("Redis sink failed: %v", err)
		} else if improved, err := cache.PushBest(ctx, rec); err != nil {
			logrus.Warnf("Redis best-run update failed: %v", err)
		} else if improved {
			logrus.Infof("New best cost for scenario %q: %.2f", rec.Scenario, rec.Summary.TotalCost)
		}
		_ = client.Close()
	}

	if amqpURL != "" {
		pub, err := results.NewAMQPPublisher(results.AMQPConfig{URL: amqpURL, Durable: true})
		if err != nil {
			logrus.Warnf("AMQP sink unavailable: %v", err)
		} else {
			if err := pub.Publish(ctx, rec); err != nil {
				logrus.Warnf("AMQP publish failed: %v", err)
			}
			_ = pub.Close()
		}
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to scenario YAML file (omit to run a built-in preset)")
	runCmd.Flags().StringVar(&runPreset, "preset", "bullwhip", "Built-in preset used when --scenario is not given")
	runCmd.Flags().Int64Var(&seedOverride, "seed", 0, "Override scenario seed (0 = use spec)")
	runCmd.Flags().Int64Var(&horizonDays, "horizon-days", 0, "Override simulation horizon in days (0 = use spec)")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&traceLevel, "trace", "", "Override trace level (none, decisions)")
	runCmd.Flags().StringVar(&outputPath, "output", "", "Write summary JSON to this file instead of stdout")
	runCmd.Flags().StringVar(&traceOutput, "trace-output", "", "Write the decision trace JSON to this file")
	runCmd.Flags().StringVar(&mysqlDSN, "mysql-dsn", "", "MySQL DSN for persisting run history")
	runCmd.Flags().StringVar(&redisAddr, "redis-addr", "", "Redis address for the recent-runs cache")
	runCmd.Flags().StringVar(&amqpURL, "amqp-url", "", "RabbitMQ URL for publishing run records")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
