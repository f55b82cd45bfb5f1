package pricing

// AppliedRule records one rule that contributed to an invoice.
type AppliedRule struct {
	RuleID string   `json:"ruleId"`
	Type   RuleType `json:"type"`
	Amount Money    `json:"amount"`
}

// Invoice is one priced sub-bill covering a subset of the cart.
type Invoice struct {
	Items         []Item        `json:"items"`
	Applied       []AppliedRule `json:"appliedRules"`
	OriginalTotal Money         `json:"originalTotal"`
	TotalDiscount Money         `json:"totalDiscount"`
	FinalPrice    Money         `json:"finalPrice"`
}

// Solve prices a single invoice over the given items, selecting the winning
// combination of rules. Selection runs in strict tiers:
//
//  1. Exclusive rules, in catalog order; the first one yielding a positive
//     amount wins the whole invoice outright.
//  2. Non-stackable rules compete winner-take-all; the first rule holding the
//     maximum amount wins if that amount is positive.
//  3. Grouped stackable rules: within each group only the best-amount member
//     applies (first one wins ties).
//  4. Ungrouped stackable rules all apply additively.
//
// Catalog order is semantically significant: it is the tie-break at every
// tier, so the same inputs always produce the same invoice.
func Solve(items []Item, rules []Rule) Invoice {
	inv := Invoice{Items: items}
	for _, it := range items {
		inv.OriginalTotal += it.Price
	}

	// Tier 1: first exclusive rule that fires takes the invoice.
	for _, r := range rules {
		if !r.Exclusive {
			continue
		}
		if amt := Evaluate(items, r); amt > 0 {
			return inv.apply(AppliedRule{RuleID: r.ID, Type: r.Type, Amount: amt})
		}
	}

	// Tier 2: best non-stackable rule, explicit loop so ties resolve to the
	// earliest catalog entry.
	var best *AppliedRule
	for _, r := range rules {
		if r.Exclusive || r.Stackable {
			continue
		}
		amt := Evaluate(items, r)
		if amt > 0 && (best == nil || amt > best.Amount) {
			best = &AppliedRule{RuleID: r.ID, Type: r.Type, Amount: amt}
		}
	}
	if best != nil {
		return inv.apply(*best)
	}

	// Tier 3: keep the best member per group, groups ordered by first
	// appearance in the catalog.
	var groupOrder []string
	grouped := map[string][]Rule{}
	var ungrouped []Rule
	for _, r := range rules {
		if r.Exclusive || !r.Stackable {
			continue
		}
		if r.Group == "" {
			ungrouped = append(ungrouped, r)
			continue
		}
		if _, seen := grouped[r.Group]; !seen {
			groupOrder = append(groupOrder, r.Group)
		}
		grouped[r.Group] = append(grouped[r.Group], r)
	}
	applied := make([]AppliedRule, 0, len(groupOrder)+len(ungrouped))
	for _, name := range groupOrder {
		var winner *AppliedRule
		for _, r := range grouped[name] {
			amt := Evaluate(items, r)
			if winner == nil || amt > winner.Amount {
				winner = &AppliedRule{RuleID: r.ID, Type: r.Type, Amount: amt}
			}
		}
		if winner != nil && winner.Amount > 0 {
			applied = append(applied, *winner)
		}
	}

	// Tier 4: everything else stacks.
	for _, r := range ungrouped {
		if amt := Evaluate(items, r); amt > 0 {
			applied = append(applied, AppliedRule{RuleID: r.ID, Type: r.Type, Amount: amt})
		}
	}

	return inv.apply(applied...)
}

func (inv Invoice) apply(rules ...AppliedRule) Invoice {
	inv.Applied = rules
	for _, ar := range rules {
		inv.TotalDiscount += ar.Amount
	}
	inv.FinalPrice = inv.OriginalTotal - inv.TotalDiscount
	if inv.FinalPrice < 0 {
		inv.FinalPrice = 0
	}
	return inv
}

// Split partitions the cart into one or more independent invoices. Exclusive
// rules are walked in catalog order: each one that matches a non-empty subset
// of the still-unconsumed items, and evaluates to a positive amount over that
// subset, opens its own invoice and consumes every matched unit. Whatever
// remains is priced as one final invoice against the non-exclusive rules.
//
// Consumption is tracked by item position, not by id, so duplicate-id units
// are handled correctly. A matching exclusive rule consumes all matching
// units, including surplus units beyond what the rule strictly needs.
//
// Every input item lands in exactly one invoice; an empty cart yields an
// empty result.
func Split(cart []Item, catalog []Rule) []Invoice {
	var exclusive, normal []Rule
	for _, r := range catalog {
		if r.Exclusive {
			exclusive = append(exclusive, r)
		} else {
			normal = append(normal, r)
		}
	}

	consumed := make([]bool, len(cart))
	var invoices []Invoice

	for _, r := range exclusive {
		idx := matchExclusive(cart, consumed, r)
		if len(idx) == 0 {
			continue
		}
		matched := make([]Item, 0, len(idx))
		for _, i := range idx {
			matched = append(matched, cart[i])
		}
		if Evaluate(matched, r) <= 0 {
			continue
		}
		for _, i := range idx {
			consumed[i] = true
		}
		invoices = append(invoices, Solve(matched, []Rule{r}))
	}

	var remaining []Item
	for i, it := range cart {
		if !consumed[i] {
			remaining = append(remaining, it)
		}
	}
	if len(remaining) > 0 {
		invoices = append(invoices, Solve(remaining, normal))
	}
	return invoices
}

// matchExclusive selects the unconsumed cart positions an exclusive rule
// would pull into its own invoice. Rule types without a match predicate
// select nothing.
func matchExclusive(cart []Item, consumed []bool, r Rule) []int {
	var idx []int
	add := func(pred func(Item) bool) {
		for i, it := range cart {
			if !consumed[i] && pred(it) {
				idx = append(idx, i)
			}
		}
	}
	switch r.Type {
	case Bundle:
		if len(r.Items) == 0 {
			return nil
		}
		wanted := idSet(r.Items)
		add(func(it Item) bool { return wanted[it.ID] })
	case SingleItem:
		if r.ProductID == "" {
			return nil
		}
		add(func(it Item) bool { return it.ID == r.ProductID })
	case CategoryPercent:
		if r.Category == "" {
			return nil
		}
		add(func(it Item) bool { return it.Category == r.Category })
	case BrandPercent:
		if r.Brand == "" {
			return nil
		}
		add(func(it Item) bool { return it.Brand == r.Brand })
	case TimeLimited:
		add(func(Item) bool { return true })
	}
	return idx
}
