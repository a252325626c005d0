package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/haggle/pkg/storage"
)

// ShopSummary is what a player needs to pick a shop.
type ShopSummary struct {
	File          string  `json:"file"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	ContentRating string  `json:"content_rating"`
	MaxClients    int     `json:"max_clients"`
	NeededGains   float64 `json:"needed_gains"`
}

type ShopsHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewShopsHandler(storage storage.Storage, logger *slog.Logger) *ShopsHandler {
	return &ShopsHandler{storage: storage, logger: logger}
}

// ServeHTTP handles shop listing
// Routes:
// GET /v1/shops        - Map of shop name to file
// GET /v1/shops/{file} - One shop's summary
func (h *ShopsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	file := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/shops"), "/")
	if file == "" {
		shops, err := h.storage.ListShops(r.Context())
		if err != nil {
			h.logger.Error("Failed to list shops", "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to list shops.")
			return
		}
		writeJSON(w, h.logger, http.StatusOK, shops)
		return
	}

	sh, err := h.storage.GetShop(r.Context(), file)
	if err != nil {
		if errors.Is(err, storage.ErrShopNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Shop not found.")
			return
		}
		h.logger.Error("Failed to load shop", "error", err, "file", file)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load shop.")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, ShopSummary{
		File:          file,
		Name:          sh.Name,
		Description:   sh.Description,
		ContentRating: sh.ContentRating,
		MaxClients:    sh.Game.MaxClients,
		NeededGains:   sh.Game.NeededGains,
	})
}
