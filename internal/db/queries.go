package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX abstracts pgx pools, connections, and transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries bundles all SQL executed by the service.
type Queries struct {
	db DBTX
}

// New constructs Queries on top of the provided connection source.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns Queries bound to the given transaction.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

const listProducts = `
SELECT id, name, category, brand, price
FROM products
ORDER BY id
`

// ListProducts returns the full product catalog.
func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Brand, &p.Price); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

const listDiscountRules = `
SELECT id, rule_type, category, brand, product_id, bundle_items,
       threshold, min_count, amount, percent_bps,
       exclusive, stackable, rule_group, position
FROM discount_rules
ORDER BY position, id
`

// ListDiscountRules returns the rule catalog in catalog order.
func (q *Queries) ListDiscountRules(ctx context.Context) ([]DiscountRule, error) {
	rows, err := q.db.Query(ctx, listDiscountRules)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DiscountRule
	for rows.Next() {
		var r DiscountRule
		if err := rows.Scan(
			&r.ID, &r.RuleType, &r.Category, &r.Brand, &r.ProductID, &r.BundleItems,
			&r.Threshold, &r.MinCount, &r.Amount, &r.PercentBps,
			&r.Exclusive, &r.Stackable, &r.RuleGroup, &r.Position,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const insertSimulation = `
INSERT INTO simulations (cart, result)
VALUES ($1, $2)
RETURNING id, cart, result, created_at
`

// InsertSimulation persists one quote run.
func (q *Queries) InsertSimulation(ctx context.Context, cart, result []byte) (Simulation, error) {
	var s Simulation
	err := q.db.QueryRow(ctx, insertSimulation, cart, result).
		Scan(&s.ID, &s.Cart, &s.Result, &s.CreatedAt)
	return s, err
}

const listSimulations = `
SELECT id, cart, result, created_at
FROM simulations
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`

// ListSimulationsParams pages through persisted simulations.
type ListSimulationsParams struct {
	Limit  int32
	Offset int32
}

// ListSimulations returns the most recent simulations first.
func (q *Queries) ListSimulations(ctx context.Context, arg ListSimulationsParams) ([]Simulation, error) {
	rows, err := q.db.Query(ctx, listSimulations, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Simulation
	for rows.Next() {
		var s Simulation
		if err := rows.Scan(&s.ID, &s.Cart, &s.Result, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

const countSimulations = `SELECT count(*) FROM simulations`

// CountSimulations returns the total number of persisted simulations.
func (q *Queries) CountSimulations(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countSimulations).Scan(&n)
	return n, err
}

const insertDomainEvent = `
INSERT INTO domain_events (topic, aggregate_id, payload)
VALUES ($1, $2, $3)
RETURNING id, topic, aggregate_id, payload, occurred_at
`

// InsertDomainEventParams carries the event row to persist.
type InsertDomainEventParams struct {
	Topic       string
	AggregateID pgtype.UUID
	Payload     []byte
}

// InsertDomainEvent appends one domain event.
func (q *Queries) InsertDomainEvent(ctx context.Context, arg InsertDomainEventParams) (DomainEvent, error) {
	var ev DomainEvent
	err := q.db.QueryRow(ctx, insertDomainEvent, arg.Topic, arg.AggregateID, arg.Payload).
		Scan(&ev.ID, &ev.Topic, &ev.AggregateID, &ev.Payload, &ev.OccurredAt)
	return ev, err
}
