package report

import (
	"math"
	"testing"

	"expensedash/internal/core"
)

func TestDeriveGrandTotalIsListDerived(t *testing.T) {
	d := NewDeriver("02/01/2006")
	records := []core.Expense{
		{ID: 1, Header: "Server", Category: core.CategoryOperation, Cost: "100.50", Date: "2024-01-03"},
		{ID: 2, Header: "Misc", Category: core.CategoryOther, Cost: "49.50", Date: "2024-01-10"},
	}
	// Summary deliberately disagrees with the list; the total must still come
	// from the records.
	summary := []core.CategorySummary{
		{Category: core.CategoryOperation, Total: 90},
		{Category: core.CategoryOther, Total: 10},
	}

	v := d.Derive(records, summary)
	if v.Total != "150.50" || v.TotalCents != 15050 {
		t.Fatalf("expected total 150.50, got %q (%d cents)", v.Total, v.TotalCents)
	}
}

func TestDeriveChartShares(t *testing.T) {
	d := NewDeriver("02/01/2006")
	summary := []core.CategorySummary{
		{Category: core.CategoryOperation, Total: 100.50},
		{Category: core.CategoryOther, Total: 49.50},
	}
	v := d.Derive(nil, summary)

	if len(v.Chart) != 2 {
		t.Fatalf("expected 2 slices, got %d", len(v.Chart))
	}
	if got := math.Round(v.Chart[0].Share*1000) / 1000; got != 0.67 {
		// 100.50/150.00 = 0.67
		t.Fatalf("operation share = %v, want 0.67", got)
	}
	if got := math.Round(v.Chart[1].Share*1000) / 1000; got != 0.33 {
		t.Fatalf("other share = %v, want 0.33", got)
	}
	var sum float64
	for _, s := range v.Chart {
		sum += s.Share
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("shares should sum to 1, got %v", sum)
	}
}

func TestDeriveZeroSumShares(t *testing.T) {
	d := NewDeriver("02/01/2006")
	summary := []core.CategorySummary{
		{Category: core.CategoryOperation, Total: 0},
		{Category: core.CategoryFinancial, Total: 0},
	}
	v := d.Derive(nil, summary)
	for _, s := range v.Chart {
		if s.Share != 0 {
			t.Fatalf("zero-sum summary must yield zero shares, got %v", s.Share)
		}
	}
}

func TestDerivePartialSummaryCoverage(t *testing.T) {
	d := NewDeriver("02/01/2006")
	records := []core.Expense{
		{ID: 1, Header: "a", Category: core.CategoryFinancial, Cost: "10.00", Date: "2024-01-01"},
	}
	// The source of truth may omit categories with no records; one slice is fine.
	summary := []core.CategorySummary{{Category: core.CategoryFinancial, Total: 10}}
	v := d.Derive(records, summary)
	if len(v.Chart) != 1 || v.Chart[0].Share != 1 {
		t.Fatalf("unexpected chart: %+v", v.Chart)
	}
}

func TestDeriveRowsPreserveOrderAndFormat(t *testing.T) {
	d := NewDeriver("02/01/2006")
	records := []core.Expense{
		{ID: 9, Header: "second-by-date", Cost: "5", Date: "2024-03-02", Category: core.CategoryOther},
		{ID: 3, Header: "first-by-date", Cost: "7.5", Date: "2024-01-15", Category: core.CategoryOperation},
	}
	v := d.Derive(records, nil)

	if len(v.Rows) != 2 || v.Rows[0].ID != 9 || v.Rows[1].ID != 3 {
		t.Fatalf("rows must keep server order, got %+v", v.Rows)
	}
	if v.Rows[0].Cost != "5.00" || v.Rows[1].Cost != "7.50" {
		t.Fatalf("costs must carry two fractional digits, got %q %q", v.Rows[0].Cost, v.Rows[1].Cost)
	}
	if v.Rows[1].DisplayDate != "15/01/2024" {
		t.Fatalf("display date = %q, want 15/01/2024", v.Rows[1].DisplayDate)
	}
	if v.Rows[1].Date != "2024-01-15" {
		t.Fatalf("stored date must stay untouched, got %q", v.Rows[1].Date)
	}
}

func TestDeriveMalformedCostAndDate(t *testing.T) {
	d := NewDeriver("02/01/2006")
	records := []core.Expense{
		{ID: 1, Header: "ok", Cost: "10.00", Date: "2024-01-01", Category: core.CategoryOther},
		{ID: 2, Header: "bad", Cost: "oops", Date: "yesterday", Category: core.CategoryOther},
	}
	v := d.Derive(records, nil)
	if v.Total != "10.00" {
		t.Fatalf("unparseable cost should contribute zero, total = %q", v.Total)
	}
	if v.Rows[1].DisplayDate != "yesterday" {
		t.Fatalf("unparseable date should display raw, got %q", v.Rows[1].DisplayDate)
	}
}

func TestDeriveMemoization(t *testing.T) {
	d := NewDeriver("02/01/2006")
	records := []core.Expense{{ID: 1, Header: "a", Cost: "1.00", Date: "2024-01-01", Category: core.CategoryOther}}
	summary := []core.CategorySummary{{Category: core.CategoryOther, Total: 1}}

	first := d.Derive(records, summary)
	second := d.Derive(records, summary)
	if first.Total != second.Total || len(first.Rows) != len(second.Rows) {
		t.Fatalf("memoized result diverged: %+v vs %+v", first, second)
	}
	if d.memo.Size() != 1 {
		t.Fatalf("expected a single memo entry, got %d", d.memo.Size())
	}

	// Different input must miss the memo and produce a fresh view.
	records[0].Cost = "2.00"
	third := d.Derive(records, summary)
	if third.Total != "2.00" {
		t.Fatalf("expected recomputed total 2.00, got %q", third.Total)
	}
}
