package handler

import (
	"net/http"

	"foodhub/internal/model"
	"foodhub/internal/service"

	"github.com/rs/zerolog"
)

// ReviewHandler handles review-related HTTP requests.
type ReviewHandler struct {
	service service.ReviewService
	logger  zerolog.Logger
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(service service.ReviewService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  logger.With().Str("handler", "review").Logger(),
	}
}

// SubmitReviewResponse is returned after a review is recorded.
type SubmitReviewResponse struct {
	Success      bool    `json:"success"`
	Message      string  `json:"message"`
	Rating       float64 `json:"rating"`
	TotalReviews int     `json:"totalReviews"`
}

// Submit handles POST /api/reviews requests.
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r, h.logger)
	if !ok {
		return
	}

	var req model.ReviewRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	summary, err := h.service.SubmitReview(r.Context(), p.UserID, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, SubmitReviewResponse{
		Success:      true,
		Message:      "Thank you for your review",
		Rating:       summary.Rating,
		TotalReviews: summary.TotalReviews,
	})
}
