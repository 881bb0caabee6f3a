package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storyst/salestrack/internal/app/domain/customer"
	"github.com/storyst/salestrack/internal/app/domain/sale"
	"github.com/storyst/salestrack/internal/app/storage"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func addCustomer(t *testing.T, store *Store, id, email string) {
	t.Helper()
	_, err := store.CreateCustomer(context.Background(), customer.Customer{
		ID:    id,
		Name:  "Customer " + id,
		Email: email,
	})
	if err != nil {
		t.Fatalf("create customer %s: %v", id, err)
	}
}

func addSale(t *testing.T, store *Store, customerID, day, value string) {
	t.Helper()
	date, err := time.Parse(sale.DateLayout, day)
	if err != nil {
		t.Fatalf("parse day %q: %v", day, err)
	}
	_, err = store.CreateSale(context.Background(), sale.Sale{
		CustomerID: customerID,
		SaleDate:   date,
		Value:      mustDecimal(t, value),
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	store := New()
	addCustomer(t, store, "c1", "a@x.com")

	_, err := store.CreateCustomer(context.Background(), customer.Customer{Name: "Other", Email: "a@x.com"})
	if err != storage.ErrDuplicateEmail {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestUpdateCustomerKeepsHashAndCreation(t *testing.T) {
	store := New()
	created, err := store.CreateCustomer(context.Background(), customer.Customer{
		Name:         "Alice",
		Email:        "a@x.com",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := store.UpdateCustomer(context.Background(), customer.Customer{
		ID:    created.ID,
		Name:  "Alice Updated",
		Email: "a2@x.com",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PasswordHash != "hash" {
		t.Fatal("password hash must survive updates")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatal("created_at must be immutable")
	}

	// The old email is free again.
	if _, err := store.CreateCustomer(context.Background(), customer.Customer{Name: "Bob", Email: "a@x.com"}); err != nil {
		t.Fatalf("reuse released email: %v", err)
	}
}

func TestSalesByDayGroupsAndOrders(t *testing.T) {
	store := New()
	addCustomer(t, store, "c1", "a@x.com")
	addCustomer(t, store, "c2", "b@x.com")

	addSale(t, store, "c1", "2023-05-02", "200.75")
	addSale(t, store, "c1", "2023-05-01", "100.50")
	addSale(t, store, "c1", "2023-05-01", "50.25")
	addSale(t, store, "c2", "2023-05-01", "999.99")

	totals, err := store.SalesByDay(context.Background(), "c1")
	if err != nil {
		t.Fatalf("sales by day: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("got %d rows, want 2", len(totals))
	}
	if totals[0].Date != "2023-05-01" || totals[1].Date != "2023-05-02" {
		t.Fatalf("dates out of order: %v", totals)
	}
	if !totals[0].TotalSales.Equal(mustDecimal(t, "150.75")) {
		t.Fatalf("day 1 sum = %s, want 150.75", totals[0].TotalSales)
	}
	if !totals[1].TotalSales.Equal(mustDecimal(t, "200.75")) {
		t.Fatalf("day 2 sum = %s, want 200.75", totals[1].TotalSales)
	}
}

func TestTopQueriesEmptyLedger(t *testing.T) {
	store := New()

	if top, err := store.TopCustomerByVolume(context.Background()); err != nil || top != nil {
		t.Fatalf("volume = (%v, %v), want (nil, nil)", top, err)
	}
	if top, err := store.TopCustomerByAverage(context.Background()); err != nil || top != nil {
		t.Fatalf("average = (%v, %v), want (nil, nil)", top, err)
	}
	if top, err := store.TopCustomerByFrequency(context.Background()); err != nil || top != nil {
		t.Fatalf("frequency = (%v, %v), want (nil, nil)", top, err)
	}
	totals, err := store.SalesByDay(context.Background(), "c1")
	if err != nil {
		t.Fatalf("sales by day: %v", err)
	}
	if len(totals) != 0 {
		t.Fatalf("got %d rows, want 0", len(totals))
	}
}

func TestTopCustomerByVolume(t *testing.T) {
	store := New()
	addSale(t, store, "c1", "2023-05-01", "1851.50")
	addSale(t, store, "c2", "2023-05-01", "451.50")

	top, err := store.TopCustomerByVolume(context.Background())
	if err != nil {
		t.Fatalf("top volume: %v", err)
	}
	if top.CustomerID != "c1" {
		t.Fatalf("top = %s, want c1", top.CustomerID)
	}
	if !top.TotalVolume.Equal(mustDecimal(t, "1851.50")) {
		t.Fatalf("volume = %s, want 1851.50", top.TotalVolume)
	}
}

func TestTopTieBreaksByCustomerID(t *testing.T) {
	store := New()
	// Identical volumes, averages, and counts for both customers.
	addSale(t, store, "c2", "2023-05-01", "100.00")
	addSale(t, store, "c1", "2023-05-01", "100.00")

	volume, err := store.TopCustomerByVolume(context.Background())
	if err != nil || volume.CustomerID != "c1" {
		t.Fatalf("volume tie-break = %v (%v), want c1", volume, err)
	}
	average, err := store.TopCustomerByAverage(context.Background())
	if err != nil || average.CustomerID != "c1" {
		t.Fatalf("average tie-break = %v (%v), want c1", average, err)
	}
	frequency, err := store.TopCustomerByFrequency(context.Background())
	if err != nil || frequency.CustomerID != "c1" {
		t.Fatalf("frequency tie-break = %v (%v), want c1", frequency, err)
	}
}

func TestTopCustomerByAverageAndFrequency(t *testing.T) {
	store := New()
	// c1: two sales averaging 150.00; c2: one sale of 200.00.
	addSale(t, store, "c1", "2023-05-01", "100.00")
	addSale(t, store, "c1", "2023-05-02", "200.00")
	addSale(t, store, "c2", "2023-05-01", "200.00")

	average, err := store.TopCustomerByAverage(context.Background())
	if err != nil {
		t.Fatalf("top average: %v", err)
	}
	if average.CustomerID != "c2" {
		t.Fatalf("average top = %s, want c2", average.CustomerID)
	}
	if !average.AverageValue.Equal(mustDecimal(t, "200.00")) {
		t.Fatalf("average = %s, want 200.00", average.AverageValue)
	}

	frequency, err := store.TopCustomerByFrequency(context.Background())
	if err != nil {
		t.Fatalf("top frequency: %v", err)
	}
	if frequency.CustomerID != "c1" || frequency.PurchaseCount != 2 {
		t.Fatalf("frequency top = %+v, want c1 with 2", frequency)
	}
}

func TestSaleDateDefaultsAndTruncates(t *testing.T) {
	store := New()
	created, err := store.CreateSale(context.Background(), sale.Sale{
		CustomerID: "c1",
		Value:      mustDecimal(t, "10.00"),
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if h, m, s := created.SaleDate.Clock(); h != 0 || m != 0 || s != 0 {
		t.Fatalf("sale date not truncated to midnight: %v", created.SaleDate)
	}
}
