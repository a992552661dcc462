package domain

import "testing"

func TestClassifyStockBoundaries(t *testing.T) {
	tests := []struct {
		current, min int64
		want         StockHealth
	}{
		{-3, 10, StockOutOfStock},
		{0, 10, StockOutOfStock},
		{0, 0, StockOutOfStock},
		{1, 10, StockLow},
		{10, 10, StockLow},
		{11, 10, StockHealthy},
		{1, 0, StockHealthy},
	}
	for _, tt := range tests {
		if got := ClassifyStock(tt.current, tt.min); got != tt.want {
			t.Errorf("ClassifyStock(%d, %d) = %s, want %s", tt.current, tt.min, got, tt.want)
		}
	}
}

func TestSummarizeStock(t *testing.T) {
	summary, rows := SummarizeStock([]Product{
		{Name: "a", CurrentStock: 0, MinStock: 5},
		{Name: "b", CurrentStock: 5, MinStock: 5},
		{Name: "c", CurrentStock: 6, MinStock: 5},
		{Name: "d", CurrentStock: 50, MinStock: 5},
	})
	want := StockSummary{Total: 4, OutOfStock: 1, Low: 1, Healthy: 2}
	if summary != want {
		t.Fatalf("summary = %+v, want %+v", summary, want)
	}
	if len(rows) != 4 || rows[1].Health != StockLow {
		t.Fatalf("unexpected rows %+v", rows)
	}

	empty, emptyRows := SummarizeStock(nil)
	if empty != (StockSummary{}) || len(emptyRows) != 0 {
		t.Fatalf("empty input should give zero summary, got %+v", empty)
	}
}
