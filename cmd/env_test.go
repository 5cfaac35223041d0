package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polysamo/quantumnet/sched"
	"github.com/polysamo/quantumnet/store"
)

func testEnvironment(t *testing.T, opts environmentOptions) *environment {
	t.Helper()
	opts.Registerer = prometheus.NewRegistry()
	env, err := newEnvironment(opts)
	require.NoError(t, err)
	return env
}

func TestNewEnvironment_SeedOverride(t *testing.T) {
	s := int64(7)
	env := testEnvironment(t, environmentOptions{Seed: &s})

	assert.Equal(t, int64(7), env.scenario.Workload.Seed)
	assert.Equal(t, int64(7), env.scenario.Network.Seed)
}

func TestNewEnvironment_InvalidPolicy(t *testing.T) {
	_, err := newEnvironment(environmentOptions{TraceLevel: "verbose", Registerer: prometheus.NewRegistry()})
	assert.Error(t, err)
}

func TestRunController_AccountsForEveryRequest(t *testing.T) {
	// GIVEN the default scenario with decision tracing
	env := testEnvironment(t, environmentOptions{TraceLevel: "decisions"})
	var out bytes.Buffer

	// WHEN the controller runs the workload
	ctrl, report, err := runController(env, &out)
	require.NoError(t, err)

	// THEN every request is either executed or failed, and nothing stays scheduled
	assert.Equal(t, env.scenario.Workload.NumRequests, report.Success+report.Failed)
	assert.Zero(t, report.Pending)
	assert.Zero(t, report.Scheduled)
	assert.Len(t, ctrl.Executed(), report.Success)
	assert.Contains(t, out.String(), "=== Request Report ===")
}

func TestRunController_SameSeedSameReport(t *testing.T) {
	_, first, err := runController(testEnvironment(t, environmentOptions{}), &bytes.Buffer{})
	require.NoError(t, err)
	_, second, err := runController(testEnvironment(t, environmentOptions{}), &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRunSlices(t *testing.T) {
	// GIVEN one slice per default client
	path := writeScenario(t, `
slices:
  clients: [0, 2, 6]
  server: 8
  protocols: [AC_BQC, BFK_BQC, QKD_E91]
  paths:
    - [0, 1, 2, 5, 8]
    - [2, 5, 8]
    - [6, 7, 8]
`)
	for _, pack := range []string{packRoundRobin, packChunked} {
		t.Run(pack, func(t *testing.T) {
			env := testEnvironment(t, environmentOptions{ScenarioPath: path})
			var out bytes.Buffer

			// WHEN packed and executed
			schedule, summary, err := runSlices(env, pack, &out)
			require.NoError(t, err)

			// THEN every request ran over its slice
			assert.Equal(t, 10, summary.Success+summary.Failed)
			assert.Zero(t, summary.Pending)
			for _, reqs := range schedule {
				for _, r := range reqs {
					assert.NotEmpty(t, r.SliceID)
					assert.Equal(t, r.Destination, r.SlicePath[len(r.SlicePath)-1])
				}
			}
			assert.Contains(t, out.String(), "=== Slice Report ===")
		})
	}
}

func TestRunSlices_Errors(t *testing.T) {
	env := testEnvironment(t, environmentOptions{})
	_, _, err := runSlices(env, packRoundRobin, &bytes.Buffer{})
	assert.Error(t, err, "no slices section")

	path := writeScenario(t, `
slices:
  clients: [0]
  server: 8
  protocols: [QKD_E91]
  paths: [[0, 1, 2, 5, 8]]
`)
	env = testEnvironment(t, environmentOptions{ScenarioPath: path})
	_, _, err = runSlices(env, packRoundRobin, &bytes.Buffer{})
	assert.Error(t, err, "no request matches the only slice")
}

func TestFinish_WritesCSVAndLedger(t *testing.T) {
	// GIVEN a completed controller run
	env := testEnvironment(t, environmentOptions{TraceLevel: "decisions"})
	ctrl, report, err := runController(env, &bytes.Buffer{})
	require.NoError(t, err)
	dir := t.TempDir()
	outs := runOutputs{MetricsCSV: filepath.Join(dir, "metrics.csv"), DBPath: filepath.Join(dir, "runs.db")}
	var out bytes.Buffer

	// WHEN finished with both sinks
	err = env.finish("controller", report, store.RowsFromLedgers(ctrl.Executed(), ctrl.Failed()), outs, &out)
	require.NoError(t, err)

	// THEN the CSV, the ledger and the printed summaries are all there
	data, err := os.ReadFile(outs.MetricsCSV)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "metric,value\n"))
	assert.Contains(t, out.String(), "=== Network Metrics ===")
	assert.Contains(t, out.String(), "=== Decision Trace ===")

	ledger, err := store.Open(outs.DBPath)
	require.NoError(t, err)
	defer func() { _ = ledger.Close() }()
	runs, err := ledger.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run, err := ledger.GetRun(runs[0].ID)
	require.NoError(t, err)
	assert.Len(t, run.Executions, report.Success+report.Failed)
}

func TestSliceRunReport(t *testing.T) {
	r := sliceRunReport(sched.SliceSummary{Success: 3, Failed: 1, Pending: 2}, 4)
	assert.Equal(t, sched.Report{Success: 3, Failed: 1, Scheduled: 2, ScheduledTimeslots: 4}, r)
}
