package rules

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-kasir/internal/common"
	"github.com/noah-isme/backend-kasir/internal/db"
	"github.com/noah-isme/backend-kasir/internal/events"
	"github.com/noah-isme/backend-kasir/internal/obs"
)

// EventSink receives domain events emitted on catalog reloads.
type EventSink interface {
	Emit(ctx context.Context, topic string, aggregateID pgtype.UUID, payload any) (db.DomainEvent, error)
}

// Handler exposes the discount catalog over HTTP.
type Handler struct {
	Service *Service
	Events  EventSink
	Logger  zerolog.Logger
}

// List handles GET /api/v1/discounts.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "rules service not configured", nil)
		return
	}
	catalog, err := h.Service.Catalog(r.Context())
	if err != nil {
		h.Logger.Error().Err(err).Msg("load rule catalog")
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "load rule catalog failed", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": catalog})
}

// Reload handles POST /api/v1/admin/rules/reload.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "rules service not configured", nil)
		return
	}
	catalog, err := h.Service.Reload(r.Context())
	if err != nil {
		recordReload("error")
		h.Logger.Error().Err(err).Msg("reload rule catalog")
		common.JSONError(w, http.StatusUnprocessableEntity, "RELOAD_FAILED", "reload rule catalog failed", map[string]any{"error": err.Error()})
		return
	}
	recordReload("ok")
	subject, _ := common.AdminSubject(r.Context())
	h.Logger.Info().Str("subject", subject).Int("rules", len(catalog)).Msg("rule catalog reloaded")
	h.emitReloaded(r.Context(), subject, len(catalog))
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"rules": len(catalog)}})
}

func (h *Handler) emitReloaded(ctx context.Context, subject string, count int) {
	if h.Events == nil {
		return
	}
	var aggregate pgtype.UUID
	if err := aggregate.Scan(uuid.NewString()); err != nil {
		return
	}
	payload := map[string]any{"subject": subject, "rules": count}
	if _, err := h.Events.Emit(ctx, events.TopicRulesReloaded, aggregate, payload); err != nil {
		h.Logger.Warn().Err(err).Msg("emit rules.reloaded")
	}
}

func recordReload(result string) {
	if obs.RulesReloadTotal != nil {
		obs.RulesReloadTotal.WithLabelValues(result).Inc()
	}
}
