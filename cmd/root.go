package cmd

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/polysamo/quantumnet/server"
	"github.com/polysamo/quantumnet/store"
)

const (
	packRoundRobin = "round-robin"
	packChunked    = "chunked"
)

var (
	// Shared flags
	logLevel     string // Log verbosity level
	scenarioPath string // Scenario YAML; built-in 3x3 grid when empty
	policyPath   string // Policy bundle YAML
	traceLevel   string // Decision trace level (none, decisions)
	seed         int64  // Overrides the scenario seeds when set

	// Output flags for run and slices
	metricsCSV string // Network metrics CSV output path
	dbPath     string // SQLite ledger path

	// slices flags
	packing string // Slice packing strategy

	// serve flags
	listenAddr string // HTTP listen address
	preload    bool   // Admit the scenario workload before serving
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "quantumnet",
	Short: "Timeslot admission and route reservation for quantum networks",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

func mustEnvironment(cmd *cobra.Command) *environment {
	opts := environmentOptions{
		ScenarioPath: scenarioPath,
		PolicyPath:   policyPath,
		TraceLevel:   traceLevel,
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed = &seed
	}
	env, err := newEnvironment(opts)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	return env
}

// runCmd admits the workload through the controller and executes it
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Schedule and execute the scenario workload with the controller",
	Run: func(cmd *cobra.Command, args []string) {
		env := mustEnvironment(cmd)
		ctrl, report, err := runController(env, os.Stdout)
		if err != nil {
			logrus.Fatalf("run failed: %v", err)
		}
		rows := store.RowsFromLedgers(ctrl.Executed(), ctrl.Failed())
		if err := env.finish("controller", report, rows, runOutputs{MetricsCSV: metricsCSV, DBPath: dbPath}, os.Stdout); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// slicesCmd packs the workload into static slices and executes it
var slicesCmd = &cobra.Command{
	Use:   "slices",
	Short: "Schedule and execute the scenario workload over static slices",
	Run: func(cmd *cobra.Command, args []string) {
		env := mustEnvironment(cmd)
		schedule, summary, err := runSlices(env, packing, os.Stdout)
		if err != nil {
			logrus.Fatalf("slice run failed: %v", err)
		}
		report := sliceRunReport(summary, len(schedule))
		if err := env.finish("slices", report, store.RowsFromSchedule(schedule), runOutputs{MetricsCSV: metricsCSV, DBPath: dbPath}, os.Stdout); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// serveCmd exposes a controller over HTTP
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a controller over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		env := mustEnvironment(cmd)
		ctrl := env.controller()
		if preload {
			reqs, err := env.requests()
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			for _, req := range reqs {
				ctrl.SubmitRequest(req)
			}
		}

		deps := server.Deps{Controller: ctrl, Network: env.network}
		if dbPath != "" {
			ledger, err := store.Open(dbPath)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			defer func() { _ = ledger.Close() }()
			deps.Store = ledger
		}
		if logrus.GetLevel() < logrus.DebugLevel {
			gin.SetMode(gin.ReleaseMode)
		}
		logrus.Infof("listening on %s", listenAddr)
		if err := server.NewRouter(deps).Run(listenAddr); err != nil {
			logrus.Fatalf("server stopped: %v", err)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&scenarioPath, "scenario", "", "Scenario YAML (topology, network, workload, slices)")
	rootCmd.PersistentFlags().StringVar(&policyPath, "policy", "", "Policy bundle YAML (prioritizer, max_attempts, max_probe, trace)")
	rootCmd.PersistentFlags().StringVar(&traceLevel, "trace", "", "Decision trace level (none, decisions)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 42, "Seed for workload generation and resource fidelities")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite ledger to record the run in")

	for _, c := range []*cobra.Command{runCmd, slicesCmd} {
		c.Flags().StringVar(&metricsCSV, "metrics-csv", "", "Write network metrics as CSV to this path")
	}
	slicesCmd.Flags().StringVar(&packing, "pack", packRoundRobin, "Slice packing strategy (round-robin, chunked)")

	serveCmd.Flags().StringVar(&listenAddr, "addr", ":8080", "HTTP listen address")
	serveCmd.Flags().BoolVar(&preload, "preload", false, "Submit the scenario workload before serving")

	rootCmd.AddCommand(runCmd, slicesCmd, serveCmd)
}
