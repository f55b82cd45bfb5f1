package quote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-kasir/internal/common"
	"github.com/noah-isme/backend-kasir/internal/db"
	"github.com/noah-isme/backend-kasir/internal/events"
	"github.com/noah-isme/backend-kasir/internal/obs"
	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// ErrUnknownProduct indicates the cart referenced a product id that is not in
// the catalog.
var ErrUnknownProduct = errors.New("quote: unknown product")

// RuleSource supplies the current discount catalog in catalog order.
type RuleSource interface {
	Catalog(ctx context.Context) ([]pricing.Rule, error)
}

// CatalogSource supplies the product catalog as solver items.
type CatalogSource interface {
	Items(ctx context.Context) ([]pricing.Item, error)
}

// EventSink receives domain events emitted after a quote is computed.
type EventSink interface {
	Emit(ctx context.Context, topic string, aggregateID pgtype.UUID, payload any) (db.DomainEvent, error)
}

// CartEntry is one product line in a quote request. Qty defaults to one unit
// when omitted.
type CartEntry struct {
	ProductID string `json:"productId" validate:"required"`
	Qty       int    `json:"qty" validate:"gte=0,lte=100"`
}

// Request is the quote request payload.
type Request struct {
	Cart []CartEntry `json:"cart" validate:"required,min=1,max=200,dive"`
}

// Result is the computed quote: the ordered invoice split plus cart-level
// totals.
type Result struct {
	QuoteID       string            `json:"quoteId"`
	Invoices      []pricing.Invoice `json:"invoices"`
	CartTotal     pricing.Money     `json:"cartTotal"`
	TotalDiscount pricing.Money     `json:"totalDiscount"`
	Payable       pricing.Money     `json:"payable"`
}

// Service computes quotes: it expands the requested cart into catalog-priced
// units, splits it into invoices against the rule snapshot, and emits a
// quote.computed event.
type Service struct {
	Rules   RuleSource
	Catalog CatalogSource
	Events  EventSink
	Logger  zerolog.Logger

	validate *validator.Validate
}

// NewService constructs a quote service.
func NewService(rules RuleSource, catalog CatalogSource) *Service {
	return &Service{Rules: rules, Catalog: catalog, validate: validator.New()}
}

// Compute prices the requested cart. Invalid payloads and unknown product ids
// return an AppError; engine evaluation itself never fails.
func (s *Service) Compute(ctx context.Context, req Request) (Result, error) {
	if s == nil || s.Rules == nil || s.Catalog == nil {
		return Result{}, errors.New("quote service not configured")
	}
	if err := s.validate.Struct(req); err != nil {
		recordQuote("invalid")
		return Result{}, common.NewAppError("VALIDATION", "invalid quote request", http.StatusBadRequest, err)
	}

	units, err := s.ExpandCart(ctx, req.Cart)
	if err != nil {
		recordQuote("invalid")
		return Result{}, err
	}
	rules, err := s.Rules.Catalog(ctx)
	if err != nil {
		recordQuote("error")
		return Result{}, fmt.Errorf("load rule catalog: %w", err)
	}

	invoices := pricing.Split(units, rules)
	res := Result{
		QuoteID:  uuid.NewString(),
		Invoices: invoices,
	}
	for _, inv := range invoices {
		res.CartTotal += inv.OriginalTotal
		res.TotalDiscount += inv.TotalDiscount
		res.Payable += inv.FinalPrice
	}

	recordQuote("ok")
	if obs.QuoteInvoices != nil {
		obs.QuoteInvoices.Observe(float64(len(invoices)))
	}
	if obs.QuoteDiscountTotal != nil {
		obs.QuoteDiscountTotal.Add(float64(res.TotalDiscount))
	}
	s.emitComputed(ctx, res, len(units))
	return res, nil
}

// ExpandCart resolves cart entries against the catalog and expands quantities
// into one solver item per unit, preserving request order.
func (s *Service) ExpandCart(ctx context.Context, cart []CartEntry) ([]pricing.Item, error) {
	products, err := s.Catalog.Items(ctx)
	if err != nil {
		return nil, fmt.Errorf("load product catalog: %w", err)
	}
	byID := make(map[string]pricing.Item, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var units []pricing.Item
	var unknown []string
	for _, entry := range cart {
		p, ok := byID[entry.ProductID]
		if !ok {
			unknown = append(unknown, entry.ProductID)
			continue
		}
		qty := entry.Qty
		if qty == 0 {
			qty = 1
		}
		for i := 0; i < qty; i++ {
			units = append(units, p)
		}
	}
	if len(unknown) > 0 {
		appErr := common.NewAppError("UNKNOWN_PRODUCT", "cart references unknown products", http.StatusUnprocessableEntity, ErrUnknownProduct)
		appErr.Details = map[string]any{"productIds": unknown}
		return nil, appErr
	}
	return units, nil
}

func (s *Service) emitComputed(ctx context.Context, res Result, cartSize int) {
	if s.Events == nil {
		return
	}
	var aggregate pgtype.UUID
	if err := aggregate.Scan(res.QuoteID); err != nil {
		return
	}
	payload := map[string]any{
		"cartSize":      cartSize,
		"invoices":      len(res.Invoices),
		"cartTotal":     res.CartTotal,
		"totalDiscount": res.TotalDiscount,
		"payable":       res.Payable,
	}
	if _, err := s.Events.Emit(ctx, events.TopicQuoteComputed, aggregate, payload); err != nil {
		s.Logger.Warn().Err(err).Str("quote_id", res.QuoteID).Msg("emit quote.computed")
	}
}

func recordQuote(result string) {
	if obs.QuoteTotal != nil {
		obs.QuoteTotal.WithLabelValues(result).Inc()
	}
}
