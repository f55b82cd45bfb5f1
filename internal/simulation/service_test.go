package simulation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-kasir/internal/db"
	"github.com/noah-isme/backend-kasir/internal/pricing"
	"github.com/noah-isme/backend-kasir/internal/quote"
)

type stubQuotes struct {
	res quote.Result
	err error
}

func (s *stubQuotes) Compute(context.Context, quote.Request) (quote.Result, error) {
	return s.res, s.err
}

type stubEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (s *stubEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.tasks = append(s.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type()}, nil
}

type stubQuerier struct {
	rows  []db.Simulation
	total int64
}

func (s *stubQuerier) ListSimulations(context.Context, db.ListSimulationsParams) ([]db.Simulation, error) {
	return s.rows, nil
}

func (s *stubQuerier) CountSimulations(context.Context) (int64, error) {
	return s.total, nil
}

func TestRunComputesAndEnqueues(t *testing.T) {
	enq := &stubEnqueuer{}
	svc := &Service{
		Quotes:   &stubQuotes{res: quote.Result{QuoteID: "q-1", CartTotal: 1400, Payable: 1300}},
		Tasks:    enq,
		Queue:    "simulations",
		MaxRetry: 3,
	}

	res, err := svc.Run(context.Background(), quote.Request{Cart: []quote.CartEntry{{ProductID: "P1"}}})
	require.NoError(t, err)
	require.Equal(t, "q-1", res.QuoteID)

	require.Len(t, enq.tasks, 1)
	require.Equal(t, TaskTypeRecord, enq.tasks[0].Type())
	var payload RecordPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &payload))
	require.JSONEq(t, `[{"productId":"P1","qty":0}]`, string(payload.Cart))
	var recorded quote.Result
	require.NoError(t, json.Unmarshal(payload.Result, &recorded))
	require.Equal(t, pricing.Money(1300), recorded.Payable)
}

func TestRunSurfacesQuoteError(t *testing.T) {
	svc := &Service{
		Quotes: &stubQuotes{err: errors.New("bad cart")},
		Tasks:  &stubEnqueuer{},
	}

	_, err := svc.Run(context.Background(), quote.Request{})
	require.Error(t, err)
}

func TestRunSurfacesEnqueueError(t *testing.T) {
	svc := &Service{
		Quotes: &stubQuotes{res: quote.Result{QuoteID: "q-1"}},
		Tasks:  &stubEnqueuer{err: errors.New("redis down")},
	}

	_, err := svc.Run(context.Background(), quote.Request{Cart: []quote.CartEntry{{ProductID: "P1"}}})
	require.ErrorContains(t, err, "enqueue simulation record")
}

func TestListMapsRows(t *testing.T) {
	now := time.Now()
	var id pgtype.UUID
	require.NoError(t, id.Scan("6f1f4b2a-8f25-4b0e-9d35-54dca45d1a50"))
	svc := &Service{
		Quotes: &stubQuotes{},
		Tasks:  &stubEnqueuer{},
		Q: &stubQuerier{
			rows: []db.Simulation{{
				ID:        id,
				Cart:      []byte(`[{"productId":"P1"}]`),
				Result:    []byte(`{"payable":700}`),
				CreatedAt: pgtype.Timestamptz{Time: now, Valid: true},
			}},
			total: 7,
		},
	}

	records, total, err := svc.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Equal(t, int64(7), total)
	require.Len(t, records, 1)
	require.Equal(t, "6f1f4b2a-8f25-4b0e-9d35-54dca45d1a50", records[0].ID)
	require.JSONEq(t, `{"payable":700}`, string(records[0].Result))
	require.WithinDuration(t, now, records[0].CreatedAt, time.Second)
}
