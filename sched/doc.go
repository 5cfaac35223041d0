// Package sched provides the request admission, timeslot scheduling and
// route-reservation engine for the quantum network simulator.
//
// # Reading Guide
//
// Start with these files to understand the engine:
//   - request.go: Request lifecycle (unscheduled → scheduled → executed | failed), Path and Link keys
//   - reservation.go: LinkReservationTable, the only shared mutable state in the engine
//   - controller.go: admission state machine (share the current timeslot or probe for the next free one)
//   - executor.go: timeslot execution, ledgers and reporting
//   - slices.go: static slice-based placement that bypasses the reservation table
//
// # Collaborators
//
// The engine never computes routes, never runs protocols and never models
// physical resources. It consumes them through small interfaces:
//   - RoutingOracle: shortest valid route between two nodes
//   - ResourceExecutor: runs an admitted request over its path
//   - ResourcePool: refills simulated resources between timeslots
//
// Simulated implementations live in the network package. Tests use fakes.
//
// # Time
//
// Clock is a discrete timeslot counter owned by the run. Advancing it is the
// only form of time passing; listeners registered with OnAdvance apply
// resource aging in collaborators.
package sched
