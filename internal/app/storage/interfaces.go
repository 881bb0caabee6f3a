// Package storage declares the persistence contracts consumed by the
// application services.
package storage

import (
	"context"
	"errors"

	"github.com/storyst/salestrack/internal/app/domain/customer"
	"github.com/storyst/salestrack/internal/app/domain/sale"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("storage: record not found")

// ErrDuplicateEmail is returned when a write would violate the unique email
// constraint. It must stay distinguishable from generic storage failures.
var ErrDuplicateEmail = errors.New("storage: duplicate email")

// CustomerStore persists customer records.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, c customer.Customer) (customer.Customer, error)
	GetCustomer(ctx context.Context, id string) (customer.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (customer.Customer, error)
	ListCustomers(ctx context.Context) ([]customer.Customer, error)
	UpdateCustomer(ctx context.Context, c customer.Customer) (customer.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
}

// SaleStore persists the append-only sales ledger and answers the grouped
// aggregate queries. Ties on the top queries are broken by customer id
// ascending so results are deterministic. All top queries return (nil, nil)
// on an empty ledger.
type SaleStore interface {
	CreateSale(ctx context.Context, s sale.Sale) (sale.Sale, error)
	SalesByDay(ctx context.Context, customerID string) ([]sale.DailyTotal, error)
	TopCustomerByVolume(ctx context.Context) (*sale.CustomerVolume, error)
	TopCustomerByAverage(ctx context.Context) (*sale.CustomerAverage, error)
	TopCustomerByFrequency(ctx context.Context) (*sale.CustomerFrequency, error)
}
