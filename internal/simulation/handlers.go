package simulation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-kasir/internal/common"
	"github.com/noah-isme/backend-kasir/internal/quote"
)

// Handler exposes simulation runs and the admin listing over HTTP.
type Handler struct {
	Service   *Service
	ListLimit int
	Logger    zerolog.Logger
}

// Create handles POST /api/v1/simulations. The quote is computed
// synchronously; persistence happens on the worker, hence 202.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "simulation service not configured", nil)
		return
	}
	var req quote.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_JSON", "request body is not valid json", nil)
		return
	}
	res, err := h.Service.Run(r.Context(), req)
	if err != nil {
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
			return
		}
		h.Logger.Error().Err(err).Msg("run simulation")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "run simulation failed", nil)
		return
	}
	common.JSON(w, http.StatusAccepted, map[string]any{"data": res})
}

// AdminList handles GET /api/v1/admin/simulations.
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "simulation service not configured", nil)
		return
	}
	page, perPage := common.ParsePagination(r, h.ListLimit)
	records, total, err := h.Service.List(r.Context(), int32(perPage), int32((page-1)*perPage))
	if err != nil {
		h.Logger.Error().Err(err).Msg("list simulations")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "list simulations failed", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": records,
		"meta": common.Pagination{Page: page, PerPage: perPage, TotalItems: int(total)},
	})
}
