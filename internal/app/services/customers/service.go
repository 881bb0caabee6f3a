// Package customers implements registration, login, and the customer
// directory.
package customers

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/storyst/salestrack/internal/app/domain/customer"
	"github.com/storyst/salestrack/internal/app/storage"
	"github.com/storyst/salestrack/internal/auth"
	"github.com/storyst/salestrack/internal/errors"
	"github.com/storyst/salestrack/internal/logging"
)

// bcryptCost matches the cost the original deployment hashed with.
const bcryptCost = 10

// Service manages customer records and credential checks.
type Service struct {
	store storage.CustomerStore
	codec *auth.TokenCodec
	log   *logging.Logger
}

// New constructs a customer service.
func New(store storage.CustomerStore, codec *auth.TokenCodec, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("customers")
	}
	return &Service{
		store: store,
		codec: codec,
		log:   log,
	}
}

// Register creates a customer with a hashed password and issues an identity
// token. A reused email surfaces as a conflict, never a generic failure.
func (s *Service) Register(ctx context.Context, email, password, name string, birthDate time.Time) (customer.Customer, string, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return customer.Customer{}, "", errors.Internal("Failed to hash password", err)
	}

	created, err := s.store.CreateCustomer(ctx, customer.Customer{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		BirthDate:    birthDate,
	})
	if err != nil {
		if stderrors.Is(err, storage.ErrDuplicateEmail) {
			return customer.Customer{}, "", errors.DuplicateEmail(email)
		}
		return customer.Customer{}, "", errors.Internal("Failed to create customer", err)
	}

	token, err := s.codec.Issue(created.ID, created.Email)
	if err != nil {
		return customer.Customer{}, "", err
	}

	s.log.WithContext(ctx).WithField("customer_id", created.ID).Info("customer registered")
	return created, token, nil
}

// Login verifies the credentials and issues an identity token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (customer.Customer, string, error) {
	c, err := s.store.GetCustomerByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return customer.Customer{}, "", errors.InvalidCredentials()
		}
		return customer.Customer{}, "", errors.Internal("Failed to load customer", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)); err != nil {
		s.log.LogSecurityEvent(ctx, "login_failed", map[string]interface{}{"email": email})
		return customer.Customer{}, "", errors.InvalidCredentials()
	}

	token, err := s.codec.Issue(c.ID, c.Email)
	if err != nil {
		return customer.Customer{}, "", err
	}
	return c, token, nil
}

// Get returns the full customer record.
func (s *Service) Get(ctx context.Context, id string) (customer.Customer, error) {
	c, err := s.store.GetCustomer(ctx, id)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return customer.Customer{}, errors.NotFound("Customer")
		}
		return customer.Customer{}, errors.Internal("Failed to load customer", err)
	}
	return c, nil
}

// Profile returns the public projection used to decorate statistics results.
func (s *Service) Profile(ctx context.Context, id string) (customer.Profile, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return customer.Profile{}, err
	}
	return c.Profile(), nil
}

// List returns all customers ordered by creation time.
func (s *Service) List(ctx context.Context) ([]customer.Customer, error) {
	list, err := s.store.ListCustomers(ctx)
	if err != nil {
		return nil, errors.Internal("Failed to list customers", err)
	}
	return list, nil
}

// Update changes name, email, and birth date. Nil fields keep their current
// value. Identity and password hash are immutable here.
func (s *Service) Update(ctx context.Context, id string, name, email *string, birthDate *time.Time) (customer.Customer, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return customer.Customer{}, err
	}

	if name != nil {
		existing.Name = strings.TrimSpace(*name)
	}
	if email != nil {
		existing.Email = strings.TrimSpace(*email)
	}
	if birthDate != nil {
		existing.BirthDate = *birthDate
	}

	updated, err := s.store.UpdateCustomer(ctx, existing)
	if err != nil {
		if stderrors.Is(err, storage.ErrDuplicateEmail) {
			return customer.Customer{}, errors.DuplicateEmail(existing.Email)
		}
		if stderrors.Is(err, storage.ErrNotFound) {
			return customer.Customer{}, errors.NotFound("Customer")
		}
		return customer.Customer{}, errors.Internal("Failed to update customer", err)
	}
	return updated, nil
}

// Delete removes the customer and, through the schema, their sales.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteCustomer(ctx, id); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return errors.NotFound("Customer")
		}
		return errors.Internal("Failed to delete customer", err)
	}
	s.log.WithContext(ctx).WithField("customer_id", id).Info("customer deleted")
	return nil
}
