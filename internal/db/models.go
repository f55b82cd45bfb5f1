package db

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// Product is a catalog row. Brand is optional.
type Product struct {
	ID       string
	Name     string
	Category string
	Brand    pgtype.Text
	Price    int64
}

// DiscountRule is one row of the discount catalog. Position carries the
// catalog order, which is semantically significant for the solver.
type DiscountRule struct {
	ID          string
	RuleType    string
	Category    string
	Brand       string
	ProductID   string
	BundleItems []string
	Threshold   int64
	MinCount    int32
	Amount      int64
	PercentBps  int32
	Exclusive   bool
	Stackable   bool
	RuleGroup   string
	Position    int32
}

// Simulation is a persisted quote run: the submitted cart and the computed
// invoice split, both as JSON.
type Simulation struct {
	ID        pgtype.UUID
	Cart      []byte
	Result    []byte
	CreatedAt pgtype.Timestamptz
}

// DomainEvent is an emitted platform event.
type DomainEvent struct {
	ID          pgtype.UUID
	Topic       string
	AggregateID pgtype.UUID
	Payload     []byte
	OccurredAt  pgtype.Timestamptz
}
