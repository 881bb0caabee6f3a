// Package sale defines the sale ledger entries and the aggregate row types
// produced by grouped queries.
package sale

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used for sale dates on the wire.
const DateLayout = "2006-01-02"

// Sale is an immutable ledger entry. Value is exact decimal currency; it is
// converted to a plain number only at serialization.
type Sale struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	SaleDate   time.Time       `json:"sale_date"`
	Value      decimal.Decimal `json:"value"`
	CreatedAt  time.Time       `json:"created_at"`
}

// DailyTotal is one row of the per-day grouped sum for a single customer.
type DailyTotal struct {
	Date       string
	TotalSales decimal.Decimal
}

// CustomerVolume is the summed sale value for one customer.
type CustomerVolume struct {
	CustomerID  string
	TotalVolume decimal.Decimal
}

// CustomerAverage is the mean sale value for one customer. Customers with
// no sales never produce a row.
type CustomerAverage struct {
	CustomerID   string
	AverageValue decimal.Decimal
}

// CustomerFrequency is the sale count for one customer.
type CustomerFrequency struct {
	CustomerID    string
	PurchaseCount int64
}
