package recommend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-kasir/internal/common"
	"github.com/noah-isme/backend-kasir/internal/obs"
	"github.com/noah-isme/backend-kasir/internal/pricing"
	"github.com/noah-isme/backend-kasir/internal/quote"
)

// RuleSource supplies the current discount catalog in catalog order.
type RuleSource interface {
	Catalog(ctx context.Context) ([]pricing.Rule, error)
}

// CatalogSource supplies the product catalog as solver items.
type CatalogSource interface {
	Items(ctx context.Context) ([]pricing.Item, error)
}

// CartExpander resolves a requested cart into priced solver units.
type CartExpander interface {
	ExpandCart(ctx context.Context, cart []quote.CartEntry) ([]pricing.Item, error)
}

// Request is the recommendation request payload.
type Request struct {
	Cart []quote.CartEntry `json:"cart" validate:"required,min=1,max=200,dive"`
}

// Candidate is one scored add-on suggestion. Savings is the discount the
// candidate unlocks on top of its own price: what the cart pays now, plus the
// candidate's sticker price, minus what the enlarged cart would pay.
type Candidate struct {
	ProductID    string        `json:"productId"`
	Name         string        `json:"name"`
	Price        pricing.Money `json:"price"`
	Savings      pricing.Money `json:"savings"`
	PayableAfter pricing.Money `json:"payableAfter"`
}

// Result holds the base cart payable and the top-scoring candidates in
// descending savings order.
type Result struct {
	BasePayable pricing.Money `json:"basePayable"`
	Candidates  []Candidate   `json:"candidates"`
}

// Service scores catalog products as cart add-ons by re-running the invoice
// split with each candidate included and comparing payable totals.
type Service struct {
	Rules         RuleSource
	Catalog       CatalogSource
	Carts         CartExpander
	TopN          int
	MaxCandidates int

	validate *validator.Validate
}

// NewService constructs a recommendation service.
func NewService(rules RuleSource, catalog CatalogSource, carts CartExpander, topN, maxCandidates int) *Service {
	return &Service{
		Rules:         rules,
		Catalog:       catalog,
		Carts:         carts,
		TopN:          topN,
		MaxCandidates: maxCandidates,
		validate:      validator.New(),
	}
}

// Compute scores every catalog product not already in the cart and returns the
// top candidates that unlock positive savings.
func (s *Service) Compute(ctx context.Context, req Request) (Result, error) {
	if s == nil || s.Rules == nil || s.Catalog == nil || s.Carts == nil {
		return Result{}, errors.New("recommend service not configured")
	}
	if err := s.validate.Struct(req); err != nil {
		recordRecommendation("invalid")
		return Result{}, common.NewAppError("VALIDATION", "invalid recommendation request", http.StatusBadRequest, err)
	}

	units, err := s.Carts.ExpandCart(ctx, req.Cart)
	if err != nil {
		recordRecommendation("invalid")
		return Result{}, err
	}
	rules, err := s.Rules.Catalog(ctx)
	if err != nil {
		recordRecommendation("error")
		return Result{}, fmt.Errorf("load rule catalog: %w", err)
	}
	products, err := s.Catalog.Items(ctx)
	if err != nil {
		recordRecommendation("error")
		return Result{}, fmt.Errorf("load product catalog: %w", err)
	}

	basePayable := payable(pricing.Split(units, rules))

	inCart := make(map[string]bool, len(req.Cart))
	for _, entry := range req.Cart {
		inCart[entry.ProductID] = true
	}

	var candidates []Candidate
	scored := 0
	for _, p := range products {
		if inCart[p.ID] {
			continue
		}
		if s.MaxCandidates > 0 && scored >= s.MaxCandidates {
			break
		}
		scored++

		enlarged := make([]pricing.Item, 0, len(units)+1)
		enlarged = append(enlarged, units...)
		enlarged = append(enlarged, p)
		after := payable(pricing.Split(enlarged, rules))

		savings := basePayable + p.Price - after
		if savings <= 0 {
			continue
		}
		candidates = append(candidates, Candidate{
			ProductID:    p.ID,
			Name:         p.Name,
			Price:        p.Price,
			Savings:      savings,
			PayableAfter: after,
		})
	}

	// Stable sort keeps catalog order on equal savings.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Savings > candidates[j].Savings
	})
	if s.TopN > 0 && len(candidates) > s.TopN {
		candidates = candidates[:s.TopN]
	}

	recordRecommendation("ok")
	return Result{BasePayable: basePayable, Candidates: candidates}, nil
}

func payable(invoices []pricing.Invoice) pricing.Money {
	var total pricing.Money
	for _, inv := range invoices {
		total += inv.FinalPrice
	}
	return total
}

func recordRecommendation(result string) {
	if obs.RecommendationTotal != nil {
		obs.RecommendationTotal.WithLabelValues(result).Inc()
	}
}
