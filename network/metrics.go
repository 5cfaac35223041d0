package network

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

type usage struct {
	executions int
	failures   int
	eprsUsed   int
	qubitsUsed int
	fidelities []float64 // final fidelity per execution that consumed resources
	routeHops  []int
}

// Metrics is a point-in-time summary of network usage.
type Metrics struct {
	Timeslot        int     `json:"timeslot"`
	Executions      int     `json:"executions"`
	Failures        int     `json:"failures"`
	EPRsUsed        int     `json:"eprs_used"`
	QubitsUsed      int     `json:"qubits_used"`
	MeanFidelity    float64 `json:"mean_fidelity"`
	MeanRouteLength float64 `json:"mean_route_length"` // hops
}

// Metrics returns the usage accumulated since the network was created.
func (n *Network) Metrics() Metrics {
	n.mu.Lock()
	defer n.mu.Unlock()
	m := Metrics{
		Timeslot:     n.timeslot,
		Executions:   n.stats.executions,
		Failures:     n.stats.failures,
		EPRsUsed:     n.stats.eprsUsed,
		QubitsUsed:   n.stats.qubitsUsed,
		MeanFidelity: mean(n.stats.fidelities),
	}
	if len(n.stats.routeHops) > 0 {
		total := 0
		for _, h := range n.stats.routeHops {
			total += h
		}
		m.MeanRouteLength = float64(total) / float64(len(n.stats.routeHops))
	}
	return m
}

func (m Metrics) rows() [][2]string {
	return [][2]string{
		{"timeslot", strconv.Itoa(m.Timeslot)},
		{"executions", strconv.Itoa(m.Executions)},
		{"failures", strconv.Itoa(m.Failures)},
		{"eprs_used", strconv.Itoa(m.EPRsUsed)},
		{"qubits_used", strconv.Itoa(m.QubitsUsed)},
		{"mean_fidelity", strconv.FormatFloat(m.MeanFidelity, 'f', 6, 64)},
		{"mean_route_length", strconv.FormatFloat(m.MeanRouteLength, 'f', 6, 64)},
	}
}

// WriteCSV writes the metrics as metric,value rows under a header.
func (m Metrics) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"metric", "value"}); err != nil {
		return err
	}
	for _, row := range m.rows() {
		if err := cw.Write([]string{row[0], row[1]}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Print writes the metrics one per line.
func (m Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Network Metrics ===")
	for _, row := range m.rows() {
		fmt.Fprintf(w, "%-18s: %s\n", row[0], row[1])
	}
}
