package simulation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-kasir/internal/db"
	"github.com/noah-isme/backend-kasir/internal/events"
	"github.com/noah-isme/backend-kasir/internal/obs"
)

// SimulationStore persists simulation runs.
type SimulationStore interface {
	InsertSimulation(ctx context.Context, cart, result []byte) (db.Simulation, error)
}

// EventSink receives domain events emitted after persistence.
type EventSink interface {
	Emit(ctx context.Context, topic string, aggregateID pgtype.UUID, payload any) (db.DomainEvent, error)
}

// Recorder is the worker-side handler for simulation:record tasks.
type Recorder struct {
	Store  SimulationStore
	Events EventSink
	Logger zerolog.Logger
}

// HandleRecord persists one simulation run. Malformed payloads are dropped
// without retry; storage failures are retried by asynq.
func (r *Recorder) HandleRecord(ctx context.Context, task *asynq.Task) error {
	if r == nil || r.Store == nil {
		return errors.New("simulation recorder not configured")
	}
	var payload RecordPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		recordSimulation("malformed")
		return fmt.Errorf("decode record payload: %v: %w", err, asynq.SkipRetry)
	}
	sim, err := r.Store.InsertSimulation(ctx, payload.Cart, payload.Result)
	if err != nil {
		recordSimulation("error")
		return fmt.Errorf("insert simulation: %w", err)
	}
	recordSimulation("ok")

	if r.Events != nil && sim.ID.Valid {
		eventPayload := map[string]any{"cartBytes": len(payload.Cart), "resultBytes": len(payload.Result)}
		if _, err := r.Events.Emit(ctx, events.TopicSimulationRecorded, sim.ID, eventPayload); err != nil {
			r.Logger.Warn().Err(err).Msg("emit simulation.recorded")
		}
	}
	return nil
}

func recordSimulation(result string) {
	if obs.SimulationRecordedTotal != nil {
		obs.SimulationRecordedTotal.WithLabelValues(result).Inc()
	}
}
