// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"time"

	service "github.com/crease-io/crease/internal/app"
)

// ReviewDependencies defines the interface for the manual review list.
type ReviewDependencies interface {
	Review(ctx context.Context) []service.ReviewItem
}

// ReviewHandler handles manual review list requests.
type ReviewHandler struct {
	deps ReviewDependencies
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(deps ReviewDependencies) *ReviewHandler {
	return &ReviewHandler{deps: deps}
}

// reviewItemResponse mirrors the wire schema for one parked record.
type reviewItemResponse struct {
	RecordID   string    `json:"record_id"`
	Name       string    `json:"name"`
	Club       string    `json:"club"`
	Grade      string    `json:"grade"`
	Reason     string    `json:"reason"`
	Similarity float64   `json:"similarity"`
	ParkedAt   time.Time `json:"parked_at"`
}

// HandleGetReview handles GET /review requests.
func (h *ReviewHandler) HandleGetReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	items := h.deps.Review(r.Context())
	out := make([]reviewItemResponse, 0, len(items))
	for i := range items {
		it := &items[i]
		out = append(out, reviewItemResponse{
			RecordID:   it.Record.RecordID,
			Name:       it.Record.RawName,
			Club:       it.Record.Club,
			Grade:      it.Record.GradeName,
			Reason:     it.Reason,
			Similarity: it.Similarity,
			ParkedAt:   it.ParkedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
