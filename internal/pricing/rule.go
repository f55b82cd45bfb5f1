package pricing

// Money represents a monetary value stored in minor units.
type Money = int64

// RuleType identifies a discount rule variant.
type RuleType string

// Known discount rule variants.
const (
	ThresholdByCategory RuleType = "threshold_by_category"
	CountThreshold      RuleType = "count_threshold"
	Bundle              RuleType = "bundle"
	SingleItem          RuleType = "single_item"
	CategoryPercent     RuleType = "category_percent"
	BrandPercent        RuleType = "brand_percent"
	TimeLimited         RuleType = "time_limited"
)

// Item describes one unit of a product inside a cart. Two items may share the
// same ID (multiple units of the same product); they are still distinct for
// consumption tracking, which is positional.
type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Price    Money  `json:"price"`
	Category string `json:"category"`
	Brand    string `json:"brand,omitempty"`
}

// Rule is a discount rule record. Each variant reads only the fields relevant
// to its type; the remaining fields are ignored. PercentBps is the discount
// rate in basis points (1000 = 10% off). A rule carrying PercentBps > 0 is
// percent-based, otherwise Amount is the flat discount value.
type Rule struct {
	ID         string   `json:"id"`
	Type       RuleType `json:"type"`
	Category   string   `json:"category,omitempty"`
	Brand      string   `json:"brand,omitempty"`
	ProductID  string   `json:"productId,omitempty"`
	Items      []string `json:"items,omitempty"`
	Threshold  Money    `json:"threshold,omitempty"`
	Count      int      `json:"count,omitempty"`
	Amount     Money    `json:"amount,omitempty"`
	PercentBps int32    `json:"percentBps,omitempty"`
	Exclusive  bool     `json:"exclusive"`
	Stackable  bool     `json:"stackable"`
	Group      string   `json:"group,omitempty"`
}

// percentOf returns the discounted portion of total at the rule's rate.
// Integer division truncates toward zero, so the computed discount never
// exceeds the true price reduction.
func percentOf(total Money, bps int32) Money {
	if total <= 0 || bps <= 0 {
		return 0
	}
	return total * Money(bps) / 10000
}

// Evaluate returns the discount amount the rule would contribute when applied
// to exactly the provided items. It is pure and never fails: an unrecognised
// type, or a rule missing the fields its type requires, yields 0 and is
// treated as "rule does not apply".
func Evaluate(items []Item, r Rule) Money {
	switch r.Type {
	case ThresholdByCategory:
		if r.Category == "" {
			return 0
		}
		var sum Money
		for _, it := range items {
			if it.Category == r.Category {
				sum += it.Price
			}
		}
		if sum >= r.Threshold {
			return r.Amount
		}
		return 0

	case CountThreshold:
		if r.Count <= 0 {
			return 0
		}
		matched := 0
		switch {
		case r.Category != "":
			for _, it := range items {
				if it.Category == r.Category {
					matched++
				}
			}
		case len(r.Items) > 0:
			wanted := idSet(r.Items)
			for _, it := range items {
				if wanted[it.ID] {
					matched++
				}
			}
		default:
			return 0
		}
		if matched >= r.Count {
			return r.Amount
		}
		return 0

	case Bundle:
		if len(r.Items) == 0 {
			return 0
		}
		present := make(map[string]bool, len(items))
		var matchedSum Money
		wanted := idSet(r.Items)
		for _, it := range items {
			present[it.ID] = true
			if wanted[it.ID] {
				matchedSum += it.Price
			}
		}
		for _, id := range r.Items {
			if !present[id] {
				return 0
			}
		}
		if r.PercentBps > 0 {
			return percentOf(matchedSum, r.PercentBps)
		}
		return r.Amount

	case SingleItem:
		if r.ProductID == "" {
			return 0
		}
		for _, it := range items {
			if it.ID != r.ProductID {
				continue
			}
			// First matching unit only; quantity does not multiply.
			if r.PercentBps > 0 {
				return percentOf(it.Price, r.PercentBps)
			}
			return r.Amount
		}
		return 0

	case CategoryPercent:
		if r.Category == "" {
			return 0
		}
		var sum Money
		for _, it := range items {
			if it.Category == r.Category {
				sum += it.Price
			}
		}
		return percentOf(sum, r.PercentBps)

	case BrandPercent:
		if r.Brand == "" {
			return 0
		}
		var sum Money
		for _, it := range items {
			if it.Brand == r.Brand {
				sum += it.Price
			}
		}
		return percentOf(sum, r.PercentBps)

	case TimeLimited:
		var sum Money
		for _, it := range items {
			sum += it.Price
		}
		return percentOf(sum, r.PercentBps)
	}
	return 0
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
