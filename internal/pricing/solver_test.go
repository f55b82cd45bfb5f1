package pricing

import "testing"

func checkInvoice(t *testing.T, inv Invoice) {
	t.Helper()
	var total Money
	for _, it := range inv.Items {
		total += it.Price
	}
	if inv.OriginalTotal != total {
		t.Fatalf("original total %d does not match item sum %d", inv.OriginalTotal, total)
	}
	var discount Money
	for _, ar := range inv.Applied {
		discount += ar.Amount
	}
	if inv.TotalDiscount != discount {
		t.Fatalf("total discount %d does not match applied sum %d", inv.TotalDiscount, discount)
	}
	want := inv.OriginalTotal - inv.TotalDiscount
	if want < 0 {
		want = 0
	}
	if inv.FinalPrice != want {
		t.Fatalf("final price %d, want %d", inv.FinalPrice, want)
	}
}

func TestSolveThresholdScenario(t *testing.T) {
	cart := []Item{
		{ID: "P1", Price: 600, Category: "food"},
		{ID: "P2", Price: 500, Category: "food"},
		{ID: "P3", Price: 300, Category: "clothes"},
	}
	rules := []Rule{
		{ID: "D1", Type: ThresholdByCategory, Category: "food", Threshold: 1000, Amount: 100, Stackable: true},
	}
	result := Split(cart, rules)
	if len(result) != 1 {
		t.Fatalf("expected one invoice, got %d", len(result))
	}
	inv := result[0]
	checkInvoice(t, inv)
	if inv.OriginalTotal != 1400 || inv.TotalDiscount != 100 || inv.FinalPrice != 1300 {
		t.Fatalf("got totals %d/%d/%d, want 1400/100/1300", inv.OriginalTotal, inv.TotalDiscount, inv.FinalPrice)
	}
	if len(inv.Applied) != 1 || inv.Applied[0].RuleID != "D1" {
		t.Fatalf("expected D1 applied, got %+v", inv.Applied)
	}
}

func TestSolveExclusiveFirstMatchWins(t *testing.T) {
	items := []Item{{ID: "P1", Price: 1000, Category: "food"}}
	rules := []Rule{
		{ID: "D1", Type: SingleItem, ProductID: "P1", Amount: 50, Exclusive: true},
		{ID: "D2", Type: SingleItem, ProductID: "P1", Amount: 500, Exclusive: true},
		{ID: "D3", Type: TimeLimited, PercentBps: 9000, Stackable: true},
	}
	inv := Solve(items, rules)
	checkInvoice(t, inv)
	if len(inv.Applied) != 1 || inv.Applied[0].RuleID != "D1" {
		t.Fatalf("first exclusive rule must win outright, got %+v", inv.Applied)
	}
	if inv.FinalPrice != 950 {
		t.Fatalf("final price %d, want 950", inv.FinalPrice)
	}
}

func TestSolveNonStackableMaxWithTieBreak(t *testing.T) {
	items := []Item{{ID: "P1", Price: 400, Category: "food"}}
	rules := []Rule{
		{ID: "D1", Type: SingleItem, ProductID: "P1", Amount: 15},
		{ID: "D2", Type: SingleItem, ProductID: "P1", Amount: 15},
		{ID: "D3", Type: SingleItem, ProductID: "P1", Amount: 10},
	}
	inv := Solve(items, rules)
	checkInvoice(t, inv)
	if len(inv.Applied) != 1 || inv.Applied[0].RuleID != "D1" {
		t.Fatalf("ties must resolve to the earlier catalog entry, got %+v", inv.Applied)
	}
}

func TestSolveGroupPicksBestAndTieBreakFollowsCatalogOrder(t *testing.T) {
	items := []Item{{ID: "P1", Price: 500, Category: "food"}}
	a := Rule{ID: "D1", Type: SingleItem, ProductID: "P1", Amount: 15, Stackable: true, Group: "promo"}
	b := Rule{ID: "D2", Type: SingleItem, ProductID: "P1", Amount: 15, Stackable: true, Group: "promo"}

	inv := Solve(items, []Rule{a, b})
	checkInvoice(t, inv)
	if len(inv.Applied) != 1 || inv.Applied[0].RuleID != "D1" {
		t.Fatalf("expected D1 to win the group, got %+v", inv.Applied)
	}

	// Reordering the catalog flips the winner.
	inv = Solve(items, []Rule{b, a})
	if len(inv.Applied) != 1 || inv.Applied[0].RuleID != "D2" {
		t.Fatalf("expected D2 after reorder, got %+v", inv.Applied)
	}
}

func TestSolveStacksUngroupedRules(t *testing.T) {
	items := []Item{
		{ID: "P1", Price: 600, Category: "food", Brand: "acme"},
		{ID: "P2", Price: 400, Category: "food", Brand: "acme"},
	}
	rules := []Rule{
		{ID: "D1", Type: ThresholdByCategory, Category: "food", Threshold: 1000, Amount: 100, Stackable: true},
		{ID: "D2", Type: BrandPercent, Brand: "acme", PercentBps: 1000, Stackable: true},
		{ID: "D3", Type: SingleItem, ProductID: "P9", Amount: 50, Stackable: true},
	}
	inv := Solve(items, rules)
	checkInvoice(t, inv)
	if len(inv.Applied) != 2 {
		t.Fatalf("expected D1 and D2 to stack, got %+v", inv.Applied)
	}
	if inv.TotalDiscount != 200 || inv.FinalPrice != 800 {
		t.Fatalf("got %d/%d, want discount 200 final 800", inv.TotalDiscount, inv.FinalPrice)
	}
}

func TestSolveClampsFinalPriceAtZero(t *testing.T) {
	items := []Item{{ID: "P1", Price: 100}}
	rules := []Rule{
		{ID: "D1", Type: SingleItem, ProductID: "P1", Amount: 90, Stackable: true},
		{ID: "D2", Type: Bundle, Items: []string{"P1"}, Amount: 80, Stackable: true},
	}
	inv := Solve(items, rules)
	if inv.FinalPrice != 0 {
		t.Fatalf("final price must clamp at zero, got %d", inv.FinalPrice)
	}
	if inv.TotalDiscount != 170 {
		t.Fatalf("total discount %d, want 170", inv.TotalDiscount)
	}
}

func TestSplitNoRulesBaseline(t *testing.T) {
	cart := []Item{
		{ID: "P1", Price: 250, Category: "food"},
		{ID: "P2", Price: 750, Category: "clothes"},
	}
	result := Split(cart, nil)
	if len(result) != 1 {
		t.Fatalf("expected exactly one invoice, got %d", len(result))
	}
	inv := result[0]
	checkInvoice(t, inv)
	if inv.TotalDiscount != 0 || inv.FinalPrice != 1000 {
		t.Fatalf("baseline must be undiscounted, got %+v", inv)
	}
}

func TestSplitEmptyCart(t *testing.T) {
	if result := Split(nil, []Rule{{ID: "D1", Type: TimeLimited, PercentBps: 1000, Exclusive: true}}); len(result) != 0 {
		t.Fatalf("empty cart must yield zero invoices, got %d", len(result))
	}
}

func TestSplitExclusiveBundleConsumesWholeCart(t *testing.T) {
	cart := []Item{
		{ID: "P1", Price: 1000},
		{ID: "P2", Price: 500},
	}
	rules := []Rule{
		{ID: "D2", Type: Bundle, Items: []string{"P1", "P2"}, Amount: 300, Exclusive: true},
	}
	result := Split(cart, rules)
	if len(result) != 1 {
		t.Fatalf("all items consumed, no main invoice expected; got %d invoices", len(result))
	}
	inv := result[0]
	checkInvoice(t, inv)
	if len(inv.Items) != 2 || inv.TotalDiscount != 300 || inv.FinalPrice != 1200 {
		t.Fatalf("unexpected invoice %+v", inv)
	}
}

func TestSplitExclusivePrecedenceFollowsCatalogOrder(t *testing.T) {
	cart := []Item{
		{ID: "X", Price: 400},
		{ID: "Y", Price: 600},
	}
	// A matches {X} first; B needs {X, Y} and must never see X again.
	rules := []Rule{
		{ID: "A", Type: SingleItem, ProductID: "X", Amount: 40, Exclusive: true},
		{ID: "B", Type: Bundle, Items: []string{"X", "Y"}, Amount: 300, Exclusive: true},
	}
	result := Split(cart, rules)
	if len(result) != 2 {
		t.Fatalf("expected A's invoice plus the remainder, got %d invoices", len(result))
	}
	first := result[0]
	if len(first.Applied) != 1 || first.Applied[0].RuleID != "A" {
		t.Fatalf("expected A's invoice first, got %+v", first.Applied)
	}
	if len(first.Items) != 1 || first.Items[0].ID != "X" {
		t.Fatalf("A must consume only X, got %+v", first.Items)
	}
	// B's bundle is incomplete without X, so the remainder is undiscounted.
	second := result[1]
	if len(second.Items) != 1 || second.Items[0].ID != "Y" || second.TotalDiscount != 0 {
		t.Fatalf("unexpected remainder invoice %+v", second)
	}
}

func TestSplitPartitionByIdentityWithDuplicateIDs(t *testing.T) {
	// Three units of P1: the exclusive rule consumes every matching unit,
	// not just the one its discount strictly needs.
	cart := []Item{
		{ID: "P1", Price: 100, Category: "food"},
		{ID: "P1", Price: 100, Category: "food"},
		{ID: "P1", Price: 100, Category: "food"},
		{ID: "P2", Price: 900, Category: "clothes"},
	}
	rules := []Rule{
		{ID: "D1", Type: SingleItem, ProductID: "P1", Amount: 20, Exclusive: true},
		{ID: "D2", Type: ThresholdByCategory, Category: "clothes", Threshold: 500, Amount: 50, Stackable: true},
	}
	result := Split(cart, rules)
	if len(result) != 2 {
		t.Fatalf("expected two invoices, got %d", len(result))
	}
	if len(result[0].Items) != 3 {
		t.Fatalf("exclusive match must consume all three P1 units, got %d", len(result[0].Items))
	}
	total := 0
	for _, inv := range result {
		checkInvoice(t, inv)
		total += len(inv.Items)
	}
	if total != len(cart) {
		t.Fatalf("partition lost or duplicated items: %d of %d", total, len(cart))
	}
}

func TestSplitTimeLimitedExclusiveSweepsRemainder(t *testing.T) {
	cart := []Item{
		{ID: "P1", Price: 300, Category: "food"},
		{ID: "P2", Price: 700, Category: "clothes"},
	}
	rules := []Rule{
		{ID: "D1", Type: TimeLimited, PercentBps: 1000, Exclusive: true},
		{ID: "D2", Type: ThresholdByCategory, Category: "food", Threshold: 100, Amount: 10, Stackable: true},
	}
	result := Split(cart, rules)
	if len(result) != 1 {
		t.Fatalf("time-limited exclusive should sweep the whole cart, got %d invoices", len(result))
	}
	inv := result[0]
	checkInvoice(t, inv)
	if inv.TotalDiscount != 100 {
		t.Fatalf("total discount %d, want 100", inv.TotalDiscount)
	}
}
