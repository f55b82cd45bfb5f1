package simulation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-kasir/internal/db"
	"github.com/noah-isme/backend-kasir/internal/quote"
)

// QuoteComputer prices a cart.
type QuoteComputer interface {
	Compute(ctx context.Context, req quote.Request) (quote.Result, error)
}

// TaskEnqueuer submits background tasks. Satisfied by *asynq.Client.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Querier captures the database methods required for listing simulations.
type Querier interface {
	ListSimulations(ctx context.Context, arg db.ListSimulationsParams) ([]db.Simulation, error)
	CountSimulations(ctx context.Context) (int64, error)
}

// Record is one persisted simulation in API form.
type Record struct {
	ID        string          `json:"id"`
	Cart      json.RawMessage `json:"cart"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Service runs simulations: it computes a quote synchronously and hands the
// run to the worker for persistence, so the write never sits on the request
// path.
type Service struct {
	Quotes   QuoteComputer
	Tasks    TaskEnqueuer
	Q        Querier
	Queue    string
	MaxRetry int
	Logger   zerolog.Logger
}

// Run computes the quote for the submitted cart and enqueues the record task.
func (s *Service) Run(ctx context.Context, req quote.Request) (quote.Result, error) {
	if s == nil || s.Quotes == nil || s.Tasks == nil {
		return quote.Result{}, errors.New("simulation service not configured")
	}
	res, err := s.Quotes.Compute(ctx, req)
	if err != nil {
		return quote.Result{}, err
	}

	cart, err := json.Marshal(req.Cart)
	if err != nil {
		return quote.Result{}, fmt.Errorf("encode cart: %w", err)
	}
	result, err := json.Marshal(res)
	if err != nil {
		return quote.Result{}, fmt.Errorf("encode result: %w", err)
	}
	task, err := NewRecordTask(cart, result)
	if err != nil {
		return quote.Result{}, fmt.Errorf("build record task: %w", err)
	}
	opts := []asynq.Option{asynq.MaxRetry(s.MaxRetry)}
	if s.Queue != "" {
		opts = append(opts, asynq.Queue(s.Queue))
	}
	info, err := s.Tasks.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return quote.Result{}, fmt.Errorf("enqueue simulation record: %w", err)
	}
	s.Logger.Debug().Str("task_id", info.ID).Str("quote_id", res.QuoteID).Msg("simulation record enqueued")
	return res, nil
}

// List returns persisted simulations, newest first, with the total count for
// pagination.
func (s *Service) List(ctx context.Context, limit, offset int32) ([]Record, int64, error) {
	if s == nil || s.Q == nil {
		return nil, 0, errors.New("simulation service not configured")
	}
	rows, err := s.Q.ListSimulations(ctx, db.ListSimulationsParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, fmt.Errorf("list simulations: %w", err)
	}
	total, err := s.Q.CountSimulations(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count simulations: %w", err)
	}
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := Record{
			Cart:   json.RawMessage(row.Cart),
			Result: json.RawMessage(row.Result),
		}
		if row.ID.Valid {
			rec.ID = uuid.UUID(row.ID.Bytes).String()
		}
		if row.CreatedAt.Valid {
			rec.CreatedAt = row.CreatedAt.Time
		}
		records = append(records, rec)
	}
	return records, total, nil
}
