package domain

import "time"

// StockHealth classifies a product's current stock against its minimum.
type StockHealth string

const (
	StockOutOfStock StockHealth = "out_of_stock"
	StockLow        StockHealth = "low"
	StockHealthy    StockHealth = "healthy"
)

// ClassifyStock reports the health for a stock level. Being exactly at the
// minimum counts as low.
func ClassifyStock(current, min int64) StockHealth {
	switch {
	case current <= 0:
		return StockOutOfStock
	case current <= min:
		return StockLow
	default:
		return StockHealthy
	}
}

// Product is a stocked item.
type Product struct {
	ID             string    `json:"id"`
	SKU            string    `json:"sku"`
	Name           string    `json:"name"`
	CurrentStock   int64     `json:"current_stock"`
	MinStock       int64     `json:"min_stock"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (p *Product) Health() StockHealth {
	return ClassifyStock(p.CurrentStock, p.MinStock)
}

func (p *Product) Validate() error {
	if p == nil || p.Name == "" {
		return Invalidf("product name is required")
	}
	if p.CurrentStock < 0 || p.MinStock < 0 {
		return Invalidf("stock levels must be non-negative")
	}
	return nil
}

// StockSummary counts products per health class.
type StockSummary struct {
	Total      int `json:"total"`
	OutOfStock int `json:"out_of_stock"`
	Low        int `json:"low"`
	Healthy    int `json:"healthy"`
}

// ProductHealth pairs a product with its classification.
type ProductHealth struct {
	Product Product     `json:"product"`
	Health  StockHealth `json:"health"`
}

// SummarizeStock classifies every product of the snapshot.
func SummarizeStock(products []Product) (StockSummary, []ProductHealth) {
	summary := StockSummary{Total: len(products)}
	rows := make([]ProductHealth, 0, len(products))
	for _, p := range products {
		health := p.Health()
		switch health {
		case StockOutOfStock:
			summary.OutOfStock++
		case StockLow:
			summary.Low++
		default:
			summary.Healthy++
		}
		rows = append(rows, ProductHealth{Product: p, Health: health})
	}
	return summary, rows
}
