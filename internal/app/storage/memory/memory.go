// Package memory provides an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended for
// tests and local development.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storyst/salestrack/internal/app/domain/customer"
	"github.com/storyst/salestrack/internal/app/domain/sale"
	"github.com/storyst/salestrack/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces.
type Store struct {
	mu              sync.RWMutex
	customers       map[string]customer.Customer
	customerByEmail map[string]string
	sales           []sale.Sale
}

var _ storage.CustomerStore = (*Store)(nil)
var _ storage.SaleStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		customers:       make(map[string]customer.Customer),
		customerByEmail: make(map[string]string),
	}
}

// --- CustomerStore ----------------------------------------------------------

func (s *Store) CreateCustomer(_ context.Context, c customer.Customer) (customer.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.customerByEmail[c.Email]; exists {
		return customer.Customer{}, storage.ErrDuplicateEmail
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	s.customers[c.ID] = c
	s.customerByEmail[c.Email] = c.ID
	return c, nil
}

func (s *Store) GetCustomer(_ context.Context, id string) (customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return customer.Customer{}, storage.ErrNotFound
	}
	return c, nil
}

func (s *Store) GetCustomerByEmail(_ context.Context, email string) (customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.customerByEmail[email]
	if !ok {
		return customer.Customer{}, storage.ErrNotFound
	}
	return s.customers[id], nil
}

func (s *Store) ListCustomers(_ context.Context) ([]customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]customer.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

func (s *Store) UpdateCustomer(_ context.Context, c customer.Customer) (customer.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.customers[c.ID]
	if !ok {
		return customer.Customer{}, storage.ErrNotFound
	}
	if c.Email != existing.Email {
		if owner, taken := s.customerByEmail[c.Email]; taken && owner != c.ID {
			return customer.Customer{}, storage.ErrDuplicateEmail
		}
		delete(s.customerByEmail, existing.Email)
		s.customerByEmail[c.Email] = c.ID
	}

	c.CreatedAt = existing.CreatedAt
	c.PasswordHash = existing.PasswordHash
	c.UpdatedAt = time.Now().UTC()
	s.customers[c.ID] = c
	return c, nil
}

func (s *Store) DeleteCustomer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[id]
	if !ok {
		return storage.ErrNotFound
	}
	delete(s.customers, id)
	delete(s.customerByEmail, c.Email)
	return nil
}

// --- SaleStore --------------------------------------------------------------

func (s *Store) CreateSale(_ context.Context, entry sale.Sale) (sale.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.SaleDate = truncateToDate(entry.SaleDate)
	entry.CreatedAt = time.Now().UTC()
	s.sales = append(s.sales, entry)
	return entry, nil
}

func (s *Store) SalesByDay(_ context.Context, customerID string) ([]sale.DailyTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sums := make(map[string]decimal.Decimal)
	for _, entry := range s.sales {
		if entry.CustomerID != customerID {
			continue
		}
		day := entry.SaleDate.Format(sale.DateLayout)
		sums[day] = sums[day].Add(entry.Value)
	}

	totals := make([]sale.DailyTotal, 0, len(sums))
	for day, sum := range sums {
		totals = append(totals, sale.DailyTotal{Date: day, TotalSales: sum})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Date < totals[j].Date })
	return totals, nil
}

func (s *Store) TopCustomerByVolume(_ context.Context) (*sale.CustomerVolume, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sums := make(map[string]decimal.Decimal)
	for _, entry := range s.sales {
		sums[entry.CustomerID] = sums[entry.CustomerID].Add(entry.Value)
	}
	top := pickTop(sums, func(a, b decimal.Decimal) int { return a.Cmp(b) })
	if top == "" {
		return nil, nil
	}
	return &sale.CustomerVolume{CustomerID: top, TotalVolume: sums[top]}, nil
}

func (s *Store) TopCustomerByAverage(_ context.Context) (*sale.CustomerAverage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sums := make(map[string]decimal.Decimal)
	counts := make(map[string]int64)
	for _, entry := range s.sales {
		sums[entry.CustomerID] = sums[entry.CustomerID].Add(entry.Value)
		counts[entry.CustomerID]++
	}

	averages := make(map[string]decimal.Decimal, len(sums))
	for id, sum := range sums {
		// Counts are always positive here: only customers with sales have rows.
		averages[id] = sum.Div(decimal.NewFromInt(counts[id]))
	}
	top := pickTop(averages, func(a, b decimal.Decimal) int { return a.Cmp(b) })
	if top == "" {
		return nil, nil
	}
	return &sale.CustomerAverage{CustomerID: top, AverageValue: averages[top]}, nil
}

func (s *Store) TopCustomerByFrequency(_ context.Context) (*sale.CustomerFrequency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, entry := range s.sales {
		counts[entry.CustomerID]++
	}
	top := pickTopInt(counts)
	if top == "" {
		return nil, nil
	}
	return &sale.CustomerFrequency{CustomerID: top, PurchaseCount: counts[top]}, nil
}

// pickTop returns the key with the greatest value, breaking ties by key
// ascending. Empty map yields "".
func pickTop(values map[string]decimal.Decimal, cmp func(a, b decimal.Decimal) int) string {
	var top string
	for id, v := range values {
		if top == "" {
			top = id
			continue
		}
		switch cmp(v, values[top]) {
		case 1:
			top = id
		case 0:
			if strings.Compare(id, top) < 0 {
				top = id
			}
		}
	}
	return top
}

func pickTopInt(values map[string]int64) string {
	var top string
	for id, v := range values {
		if top == "" {
			top = id
			continue
		}
		if v > values[top] || (v == values[top] && id < top) {
			top = id
		}
	}
	return top
}

func truncateToDate(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
