package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-kasir/internal/db"
)

type stubStore struct {
	inserted []db.InsertDomainEventParams
	err      error
}

func (s *stubStore) InsertDomainEvent(_ context.Context, arg db.InsertDomainEventParams) (db.DomainEvent, error) {
	if s.err != nil {
		return db.DomainEvent{}, s.err
	}
	s.inserted = append(s.inserted, arg)
	return db.DomainEvent{
		Topic:       arg.Topic,
		AggregateID: arg.AggregateID,
		Payload:     arg.Payload,
	}, nil
}

type stubNotifier struct {
	seen []db.DomainEvent
	err  error
}

func (n *stubNotifier) Notify(_ context.Context, ev db.DomainEvent) error {
	n.seen = append(n.seen, ev)
	return n.err
}

func testAggregateID(t *testing.T) pgtype.UUID {
	t.Helper()
	var id pgtype.UUID
	require.NoError(t, id.Scan(uuid.NewString()))
	return id
}

func TestBusEmitPersistsAndNotifies(t *testing.T) {
	store := &stubStore{}
	notifier := &stubNotifier{}
	bus := &Bus{Store: store, Notifiers: []Notifier{notifier}}

	ev, err := bus.Emit(context.Background(), TopicQuoteComputed, testAggregateID(t), map[string]any{"total": 1400})
	require.NoError(t, err)
	require.Equal(t, TopicQuoteComputed, ev.Topic)

	require.Len(t, store.inserted, 1)
	require.JSONEq(t, `{"total":1400}`, string(store.inserted[0].Payload))
	require.Len(t, notifier.seen, 1)
}

func TestBusEmitRequiresTopicAndAggregate(t *testing.T) {
	bus := &Bus{Store: &stubStore{}}

	_, err := bus.Emit(context.Background(), "  ", testAggregateID(t), nil)
	require.Error(t, err)

	_, err = bus.Emit(context.Background(), TopicRulesReloaded, pgtype.UUID{}, nil)
	require.Error(t, err)
}

func TestBusEmitRawPayloadMustBeJSON(t *testing.T) {
	bus := &Bus{Store: &stubStore{}}

	_, err := bus.Emit(context.Background(), TopicSimulationRecorded, testAggregateID(t), []byte("not json"))
	require.Error(t, err)

	store := &stubStore{}
	bus.Store = store
	_, err = bus.Emit(context.Background(), TopicSimulationRecorded, testAggregateID(t), json.RawMessage(`{"ok":true}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(store.inserted[0].Payload))
}

func TestBusEmitCollectsNotifierErrors(t *testing.T) {
	store := &stubStore{}
	bad := &stubNotifier{err: errors.New("boom")}
	good := &stubNotifier{}
	bus := &Bus{Store: store, Notifiers: []Notifier{bad, good}}

	ev, err := bus.Emit(context.Background(), TopicQuoteComputed, testAggregateID(t), nil)
	require.Error(t, err)
	require.Equal(t, TopicQuoteComputed, ev.Topic)
	require.Len(t, good.seen, 1)
}
