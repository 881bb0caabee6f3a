// Package postgres implements the storage interfaces backed by PostgreSQL.
// The grouped aggregate queries push grouping, ordering, and limit into the
// database; sums and averages stay in NUMERIC space until scanned into
// decimals.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/storyst/salestrack/internal/app/domain/customer"
	"github.com/storyst/salestrack/internal/app/domain/sale"
	"github.com/storyst/salestrack/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.CustomerStore = (*Store)(nil)
var _ storage.SaleStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const uniqueViolation = "23505"

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return storage.ErrDuplicateEmail
	}
	return err
}

// --- CustomerStore ----------------------------------------------------------

func (s *Store) CreateCustomer(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, name, email, password_hash, birth_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.Name, c.Email, c.PasswordHash, c.BirthDate, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return customer.Customer{}, translateError(err)
	}
	return c, nil
}

func (s *Store) GetCustomer(ctx context.Context, id string) (customer.Customer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, birth_date, created_at, updated_at
		FROM customers
		WHERE id = $1
	`, id)
	return scanCustomer(row)
}

func (s *Store) GetCustomerByEmail(ctx context.Context, email string) (customer.Customer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, birth_date, created_at, updated_at
		FROM customers
		WHERE email = $1
	`, email)
	return scanCustomer(row)
}

func (s *Store) ListCustomers(ctx context.Context) ([]customer.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, password_hash, birth_date, created_at, updated_at
		FROM customers
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []customer.Customer
	for rows.Next() {
		var c customer.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.BirthDate, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *Store) UpdateCustomer(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	existing, err := s.GetCustomer(ctx, c.ID)
	if err != nil {
		return customer.Customer{}, err
	}

	c.PasswordHash = existing.PasswordHash
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET name = $2, email = $3, birth_date = $4, updated_at = $5
		WHERE id = $1
	`, c.ID, c.Name, c.Email, c.BirthDate, c.UpdatedAt)
	if err != nil {
		return customer.Customer{}, translateError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return customer.Customer{}, storage.ErrNotFound
	}
	return c, nil
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanCustomer(row *sql.Row) (customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.BirthDate, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return customer.Customer{}, translateError(err)
	}
	return c, nil
}

// --- SaleStore --------------------------------------------------------------

func (s *Store) CreateSale(ctx context.Context, entry sale.Sale) (sale.Sale, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sales (id, customer_id, sale_date, value, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.ID, entry.CustomerID, entry.SaleDate, entry.Value, entry.CreatedAt)
	if err != nil {
		return sale.Sale{}, translateError(err)
	}
	return entry, nil
}

func (s *Store) SalesByDay(ctx context.Context, customerID string) ([]sale.DailyTotal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sale_date, SUM(value)
		FROM sales
		WHERE customer_id = $1
		GROUP BY sale_date
		ORDER BY sale_date ASC
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []sale.DailyTotal
	for rows.Next() {
		var (
			day   time.Time
			total sale.DailyTotal
		)
		if err := rows.Scan(&day, &total.TotalSales); err != nil {
			return nil, err
		}
		total.Date = day.Format(sale.DateLayout)
		totals = append(totals, total)
	}
	return totals, rows.Err()
}

func (s *Store) TopCustomerByVolume(ctx context.Context) (*sale.CustomerVolume, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT customer_id, SUM(value) AS total
		FROM sales
		GROUP BY customer_id
		ORDER BY total DESC, customer_id ASC
		LIMIT 1
	`)

	var top sale.CustomerVolume
	if err := row.Scan(&top.CustomerID, &top.TotalVolume); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &top, nil
}

func (s *Store) TopCustomerByAverage(ctx context.Context) (*sale.CustomerAverage, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT customer_id, AVG(value) AS average
		FROM sales
		GROUP BY customer_id
		ORDER BY average DESC, customer_id ASC
		LIMIT 1
	`)

	var top sale.CustomerAverage
	if err := row.Scan(&top.CustomerID, &top.AverageValue); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &top, nil
}

func (s *Store) TopCustomerByFrequency(ctx context.Context) (*sale.CustomerFrequency, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT customer_id, COUNT(*) AS purchases
		FROM sales
		GROUP BY customer_id
		ORDER BY purchases DESC, customer_id ASC
		LIMIT 1
	`)

	var top sale.CustomerFrequency
	if err := row.Scan(&top.CustomerID, &top.PurchaseCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &top, nil
}
