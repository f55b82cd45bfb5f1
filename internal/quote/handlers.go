package quote

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-kasir/internal/common"
)

// Handler exposes quote computation over HTTP.
type Handler struct {
	Service *Service
	Logger  zerolog.Logger
}

// Create handles POST /api/v1/quotes.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_JSON", "request body is not valid json", nil)
		return
	}
	res, err := h.Service.Compute(r.Context(), req)
	if err != nil {
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
			return
		}
		h.Logger.Error().Err(err).Msg("compute quote")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "compute quote failed", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": res})
}
