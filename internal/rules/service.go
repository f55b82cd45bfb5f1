package rules

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-kasir/internal/db"
	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// ErrMalformedRule indicates a catalog row failed schema validation.
var ErrMalformedRule = errors.New("rules: malformed rule")

// Querier captures the database methods required by the rules service.
type Querier interface {
	ListDiscountRules(ctx context.Context) ([]db.DiscountRule, error)
}

// record mirrors one catalog row for structural validation. Per-type field
// requirements are checked separately because they depend on rule_type.
type record struct {
	ID         string `validate:"required"`
	RuleType   string `validate:"required,oneof=threshold_by_category count_threshold bundle single_item category_percent brand_percent time_limited"`
	Threshold  int64  `validate:"gte=0"`
	MinCount   int32  `validate:"gte=0"`
	Amount     int64  `validate:"gte=0"`
	PercentBps int32  `validate:"gte=0,lte=10000"`
}

// Service loads the discount rule catalog from the database, validates it at
// load time, and serves an immutable in-memory snapshot to the solver. The
// snapshot is refreshed when the TTL elapses or on explicit reload.
type Service struct {
	Q   Querier
	TTL time.Duration
	Now func() time.Time

	validate *validator.Validate

	mu       sync.RWMutex
	snapshot []pricing.Rule
	loadedAt time.Time
}

// NewService constructs a rules service.
func NewService(q Querier, ttl time.Duration) *Service {
	return &Service{Q: q, TTL: ttl, validate: validator.New()}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Catalog returns the current rule snapshot in catalog order, loading it from
// the database when stale. The returned slice must be treated as read-only.
func (s *Service) Catalog(ctx context.Context) ([]pricing.Rule, error) {
	s.mu.RLock()
	fresh := s.snapshot != nil && (s.TTL <= 0 || s.now().Sub(s.loadedAt) < s.TTL)
	snapshot := s.snapshot
	s.mu.RUnlock()
	if fresh {
		return snapshot, nil
	}
	return s.Reload(ctx)
}

// Reload replaces the snapshot with freshly loaded catalog rows. A malformed
// row aborts the whole reload so a half-validated catalog never reaches the
// solver.
func (s *Service) Reload(ctx context.Context) ([]pricing.Rule, error) {
	if s == nil || s.Q == nil {
		return nil, errors.New("rules service not configured")
	}
	rows, err := s.Q.ListDiscountRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("load discount rules: %w", err)
	}
	catalog := make([]pricing.Rule, 0, len(rows))
	for _, row := range rows {
		rule, err := s.fromRow(row)
		if err != nil {
			return nil, err
		}
		catalog = append(catalog, rule)
	}
	s.mu.Lock()
	s.snapshot = catalog
	s.loadedAt = s.now()
	s.mu.Unlock()
	return catalog, nil
}

func (s *Service) fromRow(row db.DiscountRule) (pricing.Rule, error) {
	rec := record{
		ID:         row.ID,
		RuleType:   row.RuleType,
		Threshold:  row.Threshold,
		MinCount:   row.MinCount,
		Amount:     row.Amount,
		PercentBps: row.PercentBps,
	}
	if err := s.validate.Struct(rec); err != nil {
		return pricing.Rule{}, fmt.Errorf("%w: %s: %v", ErrMalformedRule, row.ID, err)
	}
	if err := checkTypeFields(row); err != nil {
		return pricing.Rule{}, fmt.Errorf("%w: %s: %v", ErrMalformedRule, row.ID, err)
	}
	return pricing.Rule{
		ID:         row.ID,
		Type:       pricing.RuleType(row.RuleType),
		Category:   row.Category,
		Brand:      row.Brand,
		ProductID:  row.ProductID,
		Items:      row.BundleItems,
		Threshold:  row.Threshold,
		Count:      int(row.MinCount),
		Amount:     row.Amount,
		PercentBps: row.PercentBps,
		Exclusive:  row.Exclusive,
		Stackable:  row.Stackable,
		Group:      row.RuleGroup,
	}, nil
}

// checkTypeFields enforces the fields each rule variant requires. The solver
// itself treats missing fields as "rule does not apply"; rejecting them here
// keeps broken catalog rows out of the hot path entirely.
func checkTypeFields(row db.DiscountRule) error {
	hasValue := row.Amount > 0 || row.PercentBps > 0
	switch pricing.RuleType(row.RuleType) {
	case pricing.ThresholdByCategory:
		if row.Category == "" {
			return errors.New("category is required")
		}
		if row.Amount <= 0 {
			return errors.New("amount is required")
		}
	case pricing.CountThreshold:
		if row.MinCount <= 0 {
			return errors.New("min_count is required")
		}
		if row.Category == "" && len(row.BundleItems) == 0 {
			return errors.New("category or bundle_items is required")
		}
		if row.Amount <= 0 {
			return errors.New("amount is required")
		}
	case pricing.Bundle:
		if len(row.BundleItems) == 0 {
			return errors.New("bundle_items is required")
		}
		if !hasValue {
			return errors.New("amount or percent_bps is required")
		}
	case pricing.SingleItem:
		if row.ProductID == "" {
			return errors.New("product_id is required")
		}
		if !hasValue {
			return errors.New("amount or percent_bps is required")
		}
	case pricing.CategoryPercent:
		if row.Category == "" {
			return errors.New("category is required")
		}
		if row.PercentBps <= 0 {
			return errors.New("percent_bps is required")
		}
	case pricing.BrandPercent:
		if row.Brand == "" {
			return errors.New("brand is required")
		}
		if row.PercentBps <= 0 {
			return errors.New("percent_bps is required")
		}
	case pricing.TimeLimited:
		if row.PercentBps <= 0 {
			return errors.New("percent_bps is required")
		}
	}
	return nil
}
