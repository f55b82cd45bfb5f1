package quote

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-kasir/internal/common"
	"github.com/noah-isme/backend-kasir/internal/db"
	"github.com/noah-isme/backend-kasir/internal/events"
	"github.com/noah-isme/backend-kasir/internal/pricing"
)

type stubRules struct {
	rules []pricing.Rule
	err   error
}

func (s *stubRules) Catalog(context.Context) ([]pricing.Rule, error) {
	return s.rules, s.err
}

type stubCatalog struct {
	items []pricing.Item
	err   error
}

func (s *stubCatalog) Items(context.Context) ([]pricing.Item, error) {
	return s.items, s.err
}

type captureSink struct {
	topics   []string
	payloads []any
}

func (c *captureSink) Emit(_ context.Context, topic string, _ pgtype.UUID, payload any) (db.DomainEvent, error) {
	c.topics = append(c.topics, topic)
	c.payloads = append(c.payloads, payload)
	return db.DomainEvent{Topic: topic}, nil
}

func testItems() []pricing.Item {
	return []pricing.Item{
		{ID: "P1", Name: "Kopi", Price: 700, Category: "drinks"},
		{ID: "P2", Name: "Teh", Price: 700, Category: "drinks"},
		{ID: "P3", Name: "Roti", Price: 400, Category: "bakery", Brand: "Sari"},
	}
}

func TestComputeExpandsQuantitiesAndSumsTotals(t *testing.T) {
	svc := NewService(
		&stubRules{rules: []pricing.Rule{{
			ID: "D1", Type: pricing.ThresholdByCategory, Category: "drinks",
			Threshold: 1000, Amount: 100, Stackable: true,
		}}},
		&stubCatalog{items: testItems()},
	)
	sink := &captureSink{}
	svc.Events = sink

	res, err := svc.Compute(context.Background(), Request{Cart: []CartEntry{
		{ProductID: "P1", Qty: 2},
		{ProductID: "P3"},
	}})
	require.NoError(t, err)
	require.NotEmpty(t, res.QuoteID)
	require.Len(t, res.Invoices, 1)
	require.Len(t, res.Invoices[0].Items, 3)
	require.Equal(t, pricing.Money(1800), res.CartTotal)
	require.Equal(t, pricing.Money(100), res.TotalDiscount)
	require.Equal(t, pricing.Money(1700), res.Payable)
	require.Equal(t, []string{events.TopicQuoteComputed}, sink.topics)
}

func TestComputeSplitsExclusiveIntoOwnInvoice(t *testing.T) {
	svc := NewService(
		&stubRules{rules: []pricing.Rule{{
			ID: "B1", Type: pricing.Bundle, Items: []string{"P1", "P2"},
			Amount: 300, Exclusive: true,
		}}},
		&stubCatalog{items: testItems()},
	)

	res, err := svc.Compute(context.Background(), Request{Cart: []CartEntry{
		{ProductID: "P1"}, {ProductID: "P2"}, {ProductID: "P3"},
	}})
	require.NoError(t, err)
	require.Len(t, res.Invoices, 2)
	require.Equal(t, pricing.Money(1100), res.Invoices[0].FinalPrice)
	require.Equal(t, pricing.Money(400), res.Invoices[1].FinalPrice)
	require.Equal(t, pricing.Money(1800), res.CartTotal)
	require.Equal(t, pricing.Money(1500), res.Payable)
}

func TestComputeRejectsUnknownProduct(t *testing.T) {
	svc := NewService(&stubRules{}, &stubCatalog{items: testItems()})

	_, err := svc.Compute(context.Background(), Request{Cart: []CartEntry{
		{ProductID: "P1"}, {ProductID: "NOPE"},
	}})
	require.ErrorIs(t, err, ErrUnknownProduct)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "UNKNOWN_PRODUCT", appErr.Code)
}

func TestComputeRejectsEmptyCart(t *testing.T) {
	svc := NewService(&stubRules{}, &stubCatalog{items: testItems()})

	_, err := svc.Compute(context.Background(), Request{})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "VALIDATION", appErr.Code)
}

func TestComputeSurfacesRuleLoadFailure(t *testing.T) {
	svc := NewService(
		&stubRules{err: errors.New("db down")},
		&stubCatalog{items: testItems()},
	)

	_, err := svc.Compute(context.Background(), Request{Cart: []CartEntry{{ProductID: "P1"}}})
	require.Error(t, err)
	require.False(t, common.IsAppError(err))
}
