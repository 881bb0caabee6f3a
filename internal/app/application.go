// Package app wires the domain services to their stores and manages their
// lifecycle.
package app

import (
	"context"

	"github.com/storyst/salestrack/internal/app/services/customers"
	"github.com/storyst/salestrack/internal/app/services/sales"
	"github.com/storyst/salestrack/internal/app/storage"
	"github.com/storyst/salestrack/internal/app/storage/memory"
	"github.com/storyst/salestrack/internal/app/system"
	"github.com/storyst/salestrack/internal/auth"
	"github.com/storyst/salestrack/internal/logging"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Customers storage.CustomerStore
	Sales     storage.SaleStore
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logging.Logger

	Tokens    *auth.TokenCodec
	Customers *customers.Service
	Sales     *sales.Service
}

// New builds a fully initialised application with the provided stores and
// token codec.
func New(stores Stores, codec *auth.TokenCodec, log *logging.Logger) (*Application, error) {
	if log == nil {
		log = logging.NewDefault("app")
	}
	if codec == nil {
		codec = auth.NewTokenCodec([]byte("dev-secret-change-me"), auth.DefaultTTL)
	}

	mem := memory.New()
	if stores.Customers == nil {
		stores.Customers = mem
	}
	if stores.Sales == nil {
		stores.Sales = mem
	}

	manager := system.NewManager()

	customerService := customers.New(stores.Customers, codec, log)
	salesService := sales.New(stores.Sales, stores.Customers, log)

	for _, name := range []string{"customers", "sales"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, err
		}
	}

	return &Application{
		manager:   manager,
		log:       log,
		Tokens:    codec,
		Customers: customerService,
		Sales:     salesService,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
