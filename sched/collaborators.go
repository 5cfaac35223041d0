package sched

// RoutingOracle computes routes between nodes. The engine never computes
// shortest paths itself.
type RoutingOracle interface {
	// ShortestValidRoute returns the route from src to dst, or false if none exists.
	ShortestValidRoute(src, dst int) (Path, bool)
}

// ResourceExecutor runs an admitted request over its reserved path.
// A false ok with a non-empty reason records that reason in the failed ledger.
// A non-nil err is treated as a failure whose reason is the error text.
type ResourceExecutor interface {
	Execute(req *Request, path Path) (ok bool, reason string, err error)
}

// ResourcePool refills simulated resources between executed timeslots.
type ResourcePool interface {
	ResetBetweenTimeslots()
}

// NopPool is a ResourcePool that does nothing.
type NopPool struct{}

func (NopPool) ResetBetweenTimeslots() {}
