package handler

import (
	"net/http"

	"foodhub/internal/model"
	"foodhub/internal/service"

	"github.com/rs/zerolog"
)

// CatalogHandler handles menu item and restaurant HTTP requests.
type CatalogHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(service service.CatalogService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With().Str("handler", "catalog").Logger(),
	}
}

// GetMenuItem handles GET /api/menu-items/{id} requests.
func (h *CatalogHandler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}

	view, err := h.service.GetMenuItem(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// UpdateMenuItem handles PATCH /api/menu-items/{id} requests.
func (h *CatalogHandler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}

	var update model.MenuItemUpdate
	if !decodeJSON(w, r, &update, h.logger) {
		return
	}

	if _, err := h.service.UpdateMenuItem(r.Context(), p.UserID, id, &update); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Menu item updated"})
}

// DeleteRestaurant handles DELETE /api/restaurants/{id} requests.
func (h *CatalogHandler) DeleteRestaurant(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.DeleteRestaurant(r.Context(), p.UserID, id); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Restaurant deleted"})
}
