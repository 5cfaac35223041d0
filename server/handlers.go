package server

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/polysamo/quantumnet/sched"
	"github.com/polysamo/quantumnet/store"
	"github.com/polysamo/quantumnet/workload"
)

// RequestView is the JSON form of a sched.Request.
type RequestView struct {
	ID          string `json:"id"`
	Source      int    `json:"source"`
	Destination int    `json:"destination"`
	Demand      int    `json:"demand"`
	Complexity  int    `json:"complexity"`
	Depth       int    `json:"depth"`
	Protocol    string `json:"protocol"`
	Scenario    int    `json:"scenario,omitempty"`
	SliceID     string `json:"slice_id,omitempty"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
}

func viewOf(r sched.Request) RequestView {
	return RequestView{
		ID:          r.ID,
		Source:      r.Source,
		Destination: r.Destination,
		Demand:      r.Demand,
		Complexity:  r.Complexity,
		Depth:       r.Depth,
		Protocol:    r.Protocol,
		Scenario:    r.Scenario,
		SliceID:     r.SliceID,
		Status:      string(r.Status),
		Reason:      r.Reason,
	}
}

func viewsOf(reqs []sched.Request) []RequestView {
	views := make([]RequestView, len(reqs))
	for i, r := range reqs {
		views[i] = viewOf(r)
	}
	return views
}

// SubmitBody is the payload of POST /requests.
type SubmitBody struct {
	ID          string `json:"id"`
	Source      *int   `json:"source" binding:"required"`
	Destination *int   `json:"destination" binding:"required"`
	Demand      int    `json:"demand" binding:"min=1"`
	Complexity  int    `json:"complexity" binding:"min=0"`
	Depth       int    `json:"depth" binding:"min=0"`
	Protocol    string `json:"protocol"`
	Scenario    int    `json:"scenario" binding:"min=0"`
}

// TimeslotView lists the requests admitted into one timeslot.
type TimeslotView struct {
	Timeslot int           `json:"timeslot"`
	Requests []RequestView `json:"requests"`
}

type handler struct {
	deps Deps
}

func (h *handler) health(c *gin.Context) {
	success(c, gin.H{"status": "up", "timeslot": h.deps.Controller.Clock().Current()})
}

func (h *handler) report(c *gin.Context) {
	success(c, h.deps.Controller.Report())
}

func (h *handler) timeslots(c *gin.Context) {
	snap := h.deps.Controller.ScheduleSnapshot()
	views := make([]TimeslotView, 0, len(snap))
	for _, ts := range snap {
		views = append(views, TimeslotView{Timeslot: ts.Timeslot, Requests: viewsOf(ts.Requests)})
	}
	success(c, views)
}

func (h *handler) pending(c *gin.Context) {
	success(c, viewsOf(h.deps.Controller.PendingSnapshot()))
}

func (h *handler) submit(c *gin.Context) {
	var body SubmitBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, CodeValidationError, err.Error())
		return
	}
	if body.Protocol != "" && !workload.IsValidProtocol(body.Protocol) {
		fail(c, CodeValidationError, "unknown protocol "+strconv.Quote(body.Protocol))
		return
	}
	if body.ID == "" {
		body.ID = uuid.NewString()
	}
	req := sched.NewRequest(body.ID, *body.Source, *body.Destination, body.Demand, body.Complexity, body.Protocol)
	req.Depth = body.Depth
	req.Scenario = body.Scenario
	h.deps.Controller.SubmitRequest(req)
	success(c, viewOf(h.deps.Controller.SnapshotOf(req)))
}

func (h *handler) run(c *gin.Context) {
	h.deps.Controller.RunAll()
	success(c, h.deps.Controller.Report())
}

func (h *handler) networkMetrics(c *gin.Context) {
	if h.deps.Network == nil {
		fail(c, CodeNotFound, "no simulated network attached")
		return
	}
	success(c, h.deps.Network.Metrics())
}

func (h *handler) traceSummary(c *gin.Context) {
	summary, ok := h.deps.Controller.TraceSummary()
	if !ok {
		fail(c, CodeNotFound, "decision tracing is disabled")
		return
	}
	success(c, summary)
}

func (h *handler) listRuns(c *gin.Context) {
	if h.deps.Store == nil {
		fail(c, CodeNotFound, "ledger store not configured")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		fail(c, CodeValidationError, "limit must be an integer")
		return
	}
	runs, err := h.deps.Store.ListRuns(limit)
	if err != nil {
		fail(c, CodeError, err.Error())
		return
	}
	success(c, runs)
}

func (h *handler) getRun(c *gin.Context) {
	if h.deps.Store == nil {
		fail(c, CodeNotFound, "ledger store not configured")
		return
	}
	run, err := h.deps.Store.GetRun(c.Param("id"))
	if errors.Is(err, store.ErrRunNotFound) {
		fail(c, CodeNotFound, err.Error())
		return
	}
	if err != nil {
		fail(c, CodeError, err.Error())
		return
	}
	success(c, run)
}

func (h *handler) failedRows(c *gin.Context) {
	if h.deps.Store == nil {
		fail(c, CodeNotFound, "ledger store not configured")
		return
	}
	id := c.Param("id")
	if _, err := h.deps.Store.GetRun(id); err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			fail(c, CodeNotFound, err.Error())
			return
		}
		fail(c, CodeError, err.Error())
		return
	}
	rows, err := h.deps.Store.FailedRows(id)
	if err != nil {
		fail(c, CodeError, err.Error())
		return
	}
	success(c, rows)
}
