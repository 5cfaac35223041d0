package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/polysamo/quantumnet/network"
	"github.com/polysamo/quantumnet/sched"
	"github.com/polysamo/quantumnet/sched/metrics"
	"github.com/polysamo/quantumnet/sched/trace"
	"github.com/polysamo/quantumnet/store"
	"github.com/polysamo/quantumnet/workload"
)

// environment is the wired set of components one command runs against.
type environment struct {
	scenario  *ScenarioConfig
	bundle    *sched.PolicyBundle
	topology  *network.Topology
	clock     *sched.Clock
	network   *network.Network
	trace     *trace.DecisionTrace
	collector *metrics.Collector
}

// environmentOptions are the CLI inputs that shape an environment.
type environmentOptions struct {
	ScenarioPath string
	PolicyPath   string
	TraceLevel   string // overrides the bundle's trace level when set
	Seed         *int64 // overrides workload and network seeds when set
	Registerer   prometheus.Registerer
}

func newEnvironment(opts environmentOptions) (*environment, error) {
	scenario := DefaultScenario()
	if opts.ScenarioPath != "" {
		loaded, err := LoadScenario(opts.ScenarioPath)
		if err != nil {
			return nil, err
		}
		scenario = *loaded
	}
	if opts.Seed != nil {
		scenario.Workload.Seed = *opts.Seed
		scenario.Network.Seed = *opts.Seed
	}
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	bundle := &sched.PolicyBundle{}
	if opts.PolicyPath != "" {
		loaded, err := sched.LoadPolicyBundle(opts.PolicyPath)
		if err != nil {
			return nil, err
		}
		bundle = loaded
	}
	if opts.TraceLevel != "" {
		bundle.Trace = opts.TraceLevel
	}
	if err := bundle.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}

	topo, err := scenario.BuildTopology()
	if err != nil {
		return nil, fmt.Errorf("building topology: %w", err)
	}
	clock := sched.NewClock()
	net, err := network.NewNetwork(topo, scenario.Network, clock)
	if err != nil {
		return nil, err
	}
	collector, err := metrics.NewCollector(opts.Registerer)
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	env := &environment{
		scenario:  &scenario,
		bundle:    bundle,
		topology:  topo,
		clock:     clock,
		network:   net,
		collector: collector,
	}
	if bundle.Trace != "" {
		env.trace = trace.NewDecisionTrace(trace.TraceLevel(bundle.Trace))
	}
	return env, nil
}

// controller builds a Controller routed and executed by the simulated network.
func (e *environment) controller() *sched.Controller {
	cfg := sched.ControllerConfig{
		Oracle:   e.network,
		Executor: e.network,
		Pool:     e.network,
		Clock:    e.clock,
		Metrics:  e.collector,
	}
	e.bundle.Apply(&cfg)
	cfg.Trace = e.trace
	return sched.NewController(cfg)
}

func (e *environment) requests() ([]*sched.Request, error) {
	reqs, err := workload.GenerateRequests(&e.scenario.Workload)
	if err != nil {
		return nil, fmt.Errorf("generating workload: %w", err)
	}
	return reqs, nil
}

// runController admits every generated request through the controller and
// executes the resulting schedule.
func runController(env *environment, out io.Writer) (*sched.Controller, sched.Report, error) {
	reqs, err := env.requests()
	if err != nil {
		return nil, sched.Report{}, err
	}
	ctrl := env.controller()
	attempts := env.bundle.Attempts(sched.DefaultMaxAttempts)
	for _, req := range reqs {
		ctrl.Enqueue(req)
		ctrl.ProcessPending(attempts)
	}
	ctrl.RunAll()
	report := ctrl.Report()
	report.Print(out)
	return ctrl, report, nil
}

// runSlices assigns generated requests to the configured slices, packs them
// with the named strategy and executes the schedule.
func runSlices(env *environment, pack string, out io.Writer) (sched.Schedule, sched.SliceSummary, error) {
	var summary sched.SliceSummary
	if env.scenario.Slices == nil {
		return nil, summary, fmt.Errorf("scenario has no slices section")
	}
	paths, err := env.scenario.SlicePaths(env.topology)
	if err != nil {
		return nil, summary, err
	}
	ss := sched.NewSliceScheduler(env.network, env.network, env.clock, env.trace)
	sc := env.scenario.Slices
	if err := ss.ConfigureSlices(sc.Clients, sc.Server, sc.Protocols, paths); err != nil {
		return nil, summary, err
	}
	reqs, err := env.requests()
	if err != nil {
		return nil, summary, err
	}
	if err := ss.AssignBySlice(reqs); err != nil {
		return nil, summary, err
	}

	var schedule sched.Schedule
	switch pack {
	case packRoundRobin:
		queues, err := ss.GroupBySlice(reqs)
		if err != nil {
			return nil, summary, err
		}
		schedule = ss.PackRoundRobin(queues)
	case packChunked:
		schedule, err = ss.PackChunked(reqs)
		if err != nil {
			return nil, summary, err
		}
	default:
		return nil, summary, fmt.Errorf("unknown packing %q", pack)
	}
	if err := ss.ExecuteSchedule(schedule); err != nil {
		return nil, summary, err
	}

	summary = sched.SliceReport(schedule)
	fmt.Fprintln(out, "=== Slice Report ===")
	fmt.Fprintf(out, "Timeslots : %d\n", len(schedule))
	fmt.Fprintf(out, "Executed  : %d\n", summary.Success)
	fmt.Fprintf(out, "Failed    : %d\n", summary.Failed)
	fmt.Fprintf(out, "Pending   : %d\n", summary.Pending)
	return schedule, summary, nil
}

// runOutputs are the optional sinks of a finished run.
type runOutputs struct {
	MetricsCSV string
	DBPath     string
}

// finish prints network metrics and the trace summary, then writes the
// optional CSV and ledger outputs.
func (e *environment) finish(mode string, report sched.Report, rows []store.ExecutionRow, outs runOutputs, out io.Writer) error {
	m := e.network.Metrics()
	fmt.Fprintln(out)
	m.Print(out)

	if e.trace.Enabled() {
		fmt.Fprintln(out)
		printTraceSummary(out, trace.Summarize(e.trace))
	}

	if outs.MetricsCSV != "" {
		f, err := os.Create(outs.MetricsCSV)
		if err != nil {
			return fmt.Errorf("creating metrics csv: %w", err)
		}
		if err := m.WriteCSV(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("writing metrics csv: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		logrus.Infof("network metrics written to %s", outs.MetricsCSV)
	}

	if outs.DBPath != "" {
		ledger, err := store.Open(outs.DBPath)
		if err != nil {
			return err
		}
		defer func() { _ = ledger.Close() }()
		id, err := ledger.SaveRun(store.RunInput{
			Mode:    mode,
			Seed:    e.scenario.Workload.Seed,
			Report:  report,
			Rows:    rows,
			Network: &m,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nRun saved as %s\n", id)
	}
	return nil
}

func printTraceSummary(w io.Writer, s *trace.TraceSummary) {
	fmt.Fprintln(w, "=== Decision Trace ===")
	fmt.Fprintf(w, "Admission attempts : %d\n", s.AdmissionAttempts)
	fmt.Fprintf(w, "Admitted           : %d (%d shared)\n", s.AdmittedCount, s.SharedCount)
	fmt.Fprintf(w, "Rejected           : %d\n", s.RejectedCount)
	fmt.Fprintf(w, "Executed / failed  : %d / %d\n", s.ExecutedCount, s.FailedCount)
	fmt.Fprintf(w, "Mean route length  : %.2f\n", s.MeanRouteLength)
	if len(s.FailureReasons) == 0 {
		return
	}
	reasons := make([]string, 0, len(s.FailureReasons))
	for r := range s.FailureReasons {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	fmt.Fprintln(w, "Failure reasons:")
	for _, r := range reasons {
		fmt.Fprintf(w, "- %s: %d\n", r, s.FailureReasons[r])
	}
}

// sliceRunReport expresses a slice summary in the controller's Report shape
// so both modes persist the same way.
func sliceRunReport(summary sched.SliceSummary, timeslots int) sched.Report {
	return sched.Report{
		Success:            summary.Success,
		Failed:             summary.Failed,
		Scheduled:          summary.Pending,
		ScheduledTimeslots: timeslots,
	}
}
