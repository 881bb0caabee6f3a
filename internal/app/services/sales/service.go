// Package sales implements the ledger writes and the grouped statistics.
//
// The three top-customer rankings scan across all customers on purpose: the
// API exposes them as a leaderboard to any authenticated caller. Daily
// statistics are always scoped to the caller's own sales.
package sales

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storyst/salestrack/internal/app/domain/customer"
	"github.com/storyst/salestrack/internal/app/domain/sale"
	"github.com/storyst/salestrack/internal/app/metrics"
	"github.com/storyst/salestrack/internal/app/storage"
	"github.com/storyst/salestrack/internal/errors"
	"github.com/storyst/salestrack/internal/logging"
)

// VolumeLeader is the customer with the greatest summed sale value.
type VolumeLeader struct {
	Customer         *customer.Profile
	TotalSalesVolume decimal.Decimal
}

// AverageLeader is the customer with the greatest mean sale value.
type AverageLeader struct {
	Customer         *customer.Profile
	AverageSaleValue decimal.Decimal
}

// FrequencyLeader is the customer with the most recorded sales.
type FrequencyLeader struct {
	Customer      *customer.Profile
	PurchaseCount int64
}

// Service records sales and computes the aggregate statistics.
type Service struct {
	sales     storage.SaleStore
	customers storage.CustomerStore
	log       *logging.Logger
}

// New constructs a sales service.
func New(sales storage.SaleStore, customers storage.CustomerStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("sales")
	}
	return &Service{
		sales:     sales,
		customers: customers,
		log:       log,
	}
}

// Record appends a sale owned by the authenticated customer. The owner is
// always the identity's customer id, never caller-supplied. A nil saleDate
// defaults to today (UTC). Returns the sale and the owner's public profile.
func (s *Service) Record(ctx context.Context, customerID string, saleDate *time.Time, value decimal.Decimal) (sale.Sale, customer.Profile, error) {
	if customerID == "" {
		return sale.Sale{}, customer.Profile{}, errors.Unauthenticated()
	}
	if !value.IsPositive() {
		// The validation layer rejects this earlier; reaching here is a
		// contract breach by the caller.
		return sale.Sale{}, customer.Profile{}, errors.Validation("Sale value must be a positive number")
	}

	owner, err := s.customers.GetCustomer(ctx, customerID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return sale.Sale{}, customer.Profile{}, errors.NotFound("Customer")
		}
		return sale.Sale{}, customer.Profile{}, errors.Internal("Failed to load customer", err)
	}

	date := time.Now().UTC()
	if saleDate != nil {
		date = *saleDate
	}
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	created, err := s.sales.CreateSale(ctx, sale.Sale{
		CustomerID: customerID,
		SaleDate:   date,
		Value:      value,
	})
	if err != nil {
		return sale.Sale{}, customer.Profile{}, errors.Internal("Failed to record sale", err)
	}

	metrics.RecordSale()
	s.log.WithContext(ctx).WithFields(map[string]interface{}{
		"sale_id":   created.ID,
		"sale_date": created.SaleDate.Format(sale.DateLayout),
	}).Info("sale recorded")
	return created, owner.Profile(), nil
}

// DailyStatistics returns the caller's per-day sale totals, ascending by
// date. Sales of other customers are never included. An empty ledger yields
// an empty slice.
func (s *Service) DailyStatistics(ctx context.Context, customerID string) ([]sale.DailyTotal, error) {
	if customerID == "" {
		return nil, errors.Unauthenticated()
	}

	totals, err := s.sales.SalesByDay(ctx, customerID)
	if err != nil {
		return nil, errors.Internal("Failed to compute daily statistics", err)
	}
	metrics.RecordStatisticsQuery("daily")
	if totals == nil {
		totals = []sale.DailyTotal{}
	}
	return totals, nil
}

// TopByVolume returns the customer with the greatest total sale value, or
// nil when no sales exist.
func (s *Service) TopByVolume(ctx context.Context) (*VolumeLeader, error) {
	top, err := s.sales.TopCustomerByVolume(ctx)
	if err != nil {
		return nil, errors.Internal("Failed to compute top volume customer", err)
	}
	metrics.RecordStatisticsQuery("top_volume")
	if top == nil {
		return nil, nil
	}
	return &VolumeLeader{
		Customer:         s.lookupProfile(ctx, top.CustomerID),
		TotalSalesVolume: top.TotalVolume,
	}, nil
}

// TopByAverage returns the customer with the greatest mean sale value, or
// nil when no sales exist. Customers without sales cannot win: the grouping
// only produces rows for customers that have at least one sale.
func (s *Service) TopByAverage(ctx context.Context) (*AverageLeader, error) {
	top, err := s.sales.TopCustomerByAverage(ctx)
	if err != nil {
		return nil, errors.Internal("Failed to compute top average customer", err)
	}
	metrics.RecordStatisticsQuery("top_average")
	if top == nil {
		return nil, nil
	}
	return &AverageLeader{
		Customer:         s.lookupProfile(ctx, top.CustomerID),
		AverageSaleValue: top.AverageValue,
	}, nil
}

// TopByFrequency returns the customer with the most sales, or nil when no
// sales exist.
func (s *Service) TopByFrequency(ctx context.Context) (*FrequencyLeader, error) {
	top, err := s.sales.TopCustomerByFrequency(ctx)
	if err != nil {
		return nil, errors.Internal("Failed to compute top frequency customer", err)
	}
	metrics.RecordStatisticsQuery("top_frequency")
	if top == nil {
		return nil, nil
	}
	return &FrequencyLeader{
		Customer:      s.lookupProfile(ctx, top.CustomerID),
		PurchaseCount: top.PurchaseCount,
	}, nil
}

// lookupProfile decorates a ranking with directory fields. A missing
// directory entry degrades to a null customer rather than failing the query.
func (s *Service) lookupProfile(ctx context.Context, customerID string) *customer.Profile {
	c, err := s.customers.GetCustomer(ctx, customerID)
	if err != nil {
		s.log.WithContext(ctx).WithError(err).WithField("customer_id", customerID).Warn("ranking enrichment failed")
		return nil
	}
	profile := c.Profile()
	return &profile
}
