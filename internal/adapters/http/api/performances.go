// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/crease-io/crease/internal/app"
	"github.com/crease-io/crease/internal/domain/model"
)

// PerformancesHandler handles performance record submissions.
type PerformancesHandler struct {
	deps Dependencies
}

// NewPerformancesHandler creates a new performances handler.
func NewPerformancesHandler(deps Dependencies) *PerformancesHandler {
	return &PerformancesHandler{deps: deps}
}

// HandlePostPerformance handles POST /performances requests. Records are
// acknowledged and scored asynchronously by the worker pool.
func (h *PerformancesHandler) HandlePostPerformance(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_performance"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req performanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Enqueue handles idempotency: a duplicate record id is acknowledged
	// without being queued again.
	rec := req.toModel()
	if ok := h.deps.Enqueue(r.Context(), rec); !ok {
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

// batchRequest mirrors the wire schema for POST /performances/batch.
type batchRequest struct {
	Records []performanceRequest `json:"records"`
}

// HandlePostBatch handles POST /performances/batch requests. The batch is
// scored synchronously and a per-record report is returned. Invalid or
// ambiguous records never abort the batch.
func (h *PerformancesHandler) HandlePostBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_batch"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(req.Records) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("empty batch")))
		return
	}

	// A record failing wire-shape validation is rejected on its own; the
	// rest of the batch still gets scored.
	recs := make([]model.RawPerformance, 0, len(req.Records))
	malformed := make(map[int]string)
	for i := range req.Records {
		if err := req.Records[i].validate(); err != nil {
			malformed[i] = err.Error()
			continue
		}
		recs = append(recs, req.Records[i].toModel())
	}

	report := h.deps.ProcessBatch(r.Context(), recs)
	if len(malformed) > 0 {
		report = spliceMalformed(report, req.Records, malformed)
	}
	writeJSON(w, http.StatusOK, report)
}

// spliceMalformed re-inserts wire-shape rejections into the batch report at
// their original positions so the results mirror the submitted order.
func spliceMalformed(report service.BatchReport, records []performanceRequest, malformed map[int]string) service.BatchReport {
	merged := make([]service.RecordResult, 0, len(records))
	next := 0
	for i := range records {
		if detail, ok := malformed[i]; ok {
			merged = append(merged, service.RecordResult{
				RecordID: records[i].RecordID,
				Status:   service.StatusRejected,
				Detail:   detail,
			})
			continue
		}
		if next < len(report.Results) {
			merged = append(merged, report.Results[next])
			next++
		}
	}
	report.Results = merged
	report.Submitted = len(records)
	report.Rejected += len(malformed)
	return report
}
