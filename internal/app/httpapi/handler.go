// Package httpapi exposes the REST API over the application services. It
// owns payload validation and the single canonical response envelope; exact
// decimal values become plain JSON numbers only here, at the serialization
// boundary.
package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	app "github.com/storyst/salestrack/internal/app"
	"github.com/storyst/salestrack/internal/app/domain/customer"
	"github.com/storyst/salestrack/internal/app/domain/sale"
	"github.com/storyst/salestrack/internal/errors"
	"github.com/storyst/salestrack/internal/httputil"
	"github.com/storyst/salestrack/internal/logging"
	"github.com/storyst/salestrack/internal/middleware"
)

// PublicPaths are the routes served without authentication.
var PublicPaths = []string{"/", "/healthz", "/metrics", "/api/auth/register", "/api/auth/login"}

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
	log *logging.Logger
}

// NewHandler returns a router exposing the sales REST API. Authentication is
// applied by the middleware chain in front of it.
func NewHandler(application *app.Application, log *logging.Logger) http.Handler {
	if log == nil {
		log = logging.NewDefault("httpapi")
	}
	h := &handler{app: application, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/", h.root).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/register", h.register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)

	api.HandleFunc("/customers/dashboard", h.dashboard).Methods(http.MethodGet)
	api.HandleFunc("/customers", h.listCustomers).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id}", h.getCustomer).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id}", h.updateCustomer).Methods(http.MethodPut)
	api.HandleFunc("/customers/{id}", h.deleteCustomer).Methods(http.MethodDelete)

	api.HandleFunc("/sales", h.createSale).Methods(http.MethodPost)
	api.HandleFunc("/sales/statistics/daily", h.dailyStatistics).Methods(http.MethodGet)
	api.HandleFunc("/sales/statistics/top-volume-customer", h.topVolume).Methods(http.MethodGet)
	api.HandleFunc("/sales/statistics/top-avg-value-customer", h.topAverage).Methods(http.MethodGet)
	api.HandleFunc("/sales/statistics/top-frequency-customer", h.topFrequency).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteErrorResponse(w, r, http.StatusNotFound, string(errors.CodeNotFound),
			"Endpoint not found. Please check the URL and try again.", nil)
	})

	return r
}

// --- response envelope ------------------------------------------------------

type envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(w http.ResponseWriter, status int, message string, data interface{}) {
	httputil.WriteJSON(w, status, envelope{Status: "success", Message: message, Data: data})
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if svcErr := errors.GetServiceError(err); svcErr == nil || svcErr.HTTPStatus >= 500 {
		h.log.WithContext(r.Context()).WithError(err).Error("request failed")
	}
	httputil.WriteServiceError(w, r, err)
}

// --- DTOs -------------------------------------------------------------------

type customerDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	BirthDate string `json:"birth_date"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toCustomerDTO(c customer.Customer) customerDTO {
	return customerDTO{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		BirthDate: c.BirthDate.Format(sale.DateLayout),
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type saleDTO struct {
	ID         string            `json:"id"`
	CustomerID string            `json:"customer_id"`
	SaleDate   string            `json:"sale_date"`
	Value      float64           `json:"value"`
	CreatedAt  string            `json:"created_at"`
	Customer   *customer.Profile `json:"customer,omitempty"`
}

type dailyEntryDTO struct {
	Date       string  `json:"date"`
	TotalSales float64 `json:"totalSales"`
}

// --- decoding & validation --------------------------------------------------

// decodeJSON parses the body keeping numbers as json.Number so currency
// values never pass through binary floating point.
func decodeJSON(body io.Reader, v interface{}) error {
	dec := json.NewDecoder(body)
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Validation(fmt.Sprintf("Invalid request body: %v", err))
	}
	return nil
}

func parseDate(value, field string) (time.Time, error) {
	t, err := time.Parse(sale.DateLayout, value)
	if err != nil {
		return time.Time{}, errors.Validation(fmt.Sprintf("Invalid %s format. Use YYYY-MM-DD.", field))
	}
	return t, nil
}

func validName(name string) bool { return len(name) >= 3 }

func validEmail(email string) bool {
	at := -1
	for i, r := range email {
		if r == '@' {
			if at >= 0 {
				return false
			}
			at = i
		}
	}
	return at > 0 && at < len(email)-1
}

// identity returns the authenticated customer id or an Unauthenticated error
// when the routing contract was breached.
func identity(r *http.Request) (string, error) {
	id := middleware.CustomerID(r.Context())
	if id == "" {
		return "", errors.Unauthenticated()
	}
	return id, nil
}

// --- liveness ---------------------------------------------------------------

func (h *handler) root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("API is running"))
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- auth -------------------------------------------------------------------

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		Name      string `json:"name"`
		BirthDate string `json:"birthDate"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.fail(w, r, err)
		return
	}
	if payload.Email == "" || payload.Password == "" || payload.Name == "" || payload.BirthDate == "" {
		h.fail(w, r, errors.Validation("email, password, name, and birthDate are required"))
		return
	}
	if !validEmail(payload.Email) {
		h.fail(w, r, errors.Validation("Invalid email format."))
		return
	}
	if !validName(payload.Name) {
		h.fail(w, r, errors.Validation("Name must be at least 3 characters."))
		return
	}
	birthDate, err := parseDate(payload.BirthDate, "birth date")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	created, token, err := h.app.Customers.Register(r.Context(), payload.Email, payload.Password, payload.Name, birthDate)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respond(w, http.StatusCreated, "Customer registered successfully.", map[string]interface{}{
		"customer": toCustomerDTO(created),
		"token":    token,
	})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.fail(w, r, err)
		return
	}
	if payload.Email == "" || payload.Password == "" {
		h.fail(w, r, errors.Validation("email and password are required"))
		return
	}

	c, token, err := h.app.Customers.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respond(w, http.StatusOK, "Customer logged in successfully.", map[string]interface{}{
		"customer": toCustomerDTO(c),
		"token":    token,
	})
}

// --- customers --------------------------------------------------------------

func (h *handler) dashboard(w http.ResponseWriter, r *http.Request) {
	id, err := identity(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	c, err := h.app.Customers.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Customer profile retrieved successfully.", map[string]interface{}{
		"customer": toCustomerDTO(c),
	})
}

func (h *handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Customers.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	dtos := make([]customerDTO, 0, len(list))
	for _, c := range list {
		dtos = append(dtos, toCustomerDTO(c))
	}
	httputil.WriteJSON(w, http.StatusOK, struct {
		Status  string      `json:"status"`
		Results int         `json:"results"`
		Data    interface{} `json:"data"`
	}{
		Status:  "success",
		Results: len(dtos),
		Data:    map[string]interface{}{"customers": dtos},
	})
}

// customerIDParam validates the path id. A malformed UUID reads as an
// unknown customer, matching the persisted key format.
func customerIDParam(r *http.Request) (string, error) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		return "", errors.NotFound("Customer")
	}
	return id, nil
}

func (h *handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := customerIDParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	c, err := h.app.Customers.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Customer retrieved successfully.", map[string]interface{}{
		"customer": toCustomerDTO(c),
	})
}

func (h *handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := customerIDParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var payload struct {
		Name      *string `json:"name"`
		Email     *string `json:"email"`
		BirthDate *string `json:"birth_date"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.fail(w, r, err)
		return
	}
	if payload.Name != nil && !validName(*payload.Name) {
		h.fail(w, r, errors.Validation("Name must be at least 3 characters."))
		return
	}
	if payload.Email != nil && !validEmail(*payload.Email) {
		h.fail(w, r, errors.Validation("Invalid email format."))
		return
	}
	var birthDate *time.Time
	if payload.BirthDate != nil {
		parsed, err := parseDate(*payload.BirthDate, "birth date")
		if err != nil {
			h.fail(w, r, err)
			return
		}
		birthDate = &parsed
	}

	updated, err := h.app.Customers.Update(r.Context(), id, payload.Name, payload.Email, birthDate)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Customer updated successfully.", map[string]interface{}{
		"customer": toCustomerDTO(updated),
	})
}

func (h *handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := customerIDParam(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.app.Customers.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- sales ------------------------------------------------------------------

func (h *handler) createSale(w http.ResponseWriter, r *http.Request) {
	customerID, err := identity(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var payload struct {
		SaleDate *string     `json:"sale_date"`
		Value    json.Number `json:"value"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.fail(w, r, err)
		return
	}
	if payload.Value == "" {
		h.fail(w, r, errors.Validation("value is required"))
		return
	}
	value, err := decimal.NewFromString(payload.Value.String())
	if err != nil || !value.IsPositive() {
		h.fail(w, r, errors.Validation("Sale value must be a positive number."))
		return
	}
	var saleDate *time.Time
	if payload.SaleDate != nil {
		parsed, err := parseDate(*payload.SaleDate, "sale date")
		if err != nil {
			h.fail(w, r, err)
			return
		}
		saleDate = &parsed
	}

	created, owner, err := h.app.Sales.Record(r.Context(), customerID, saleDate, value)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respond(w, http.StatusCreated, "Sale recorded successfully.", map[string]interface{}{
		"sale": saleDTO{
			ID:         created.ID,
			CustomerID: created.CustomerID,
			SaleDate:   created.SaleDate.Format(sale.DateLayout),
			Value:      created.Value.InexactFloat64(),
			CreatedAt:  created.CreatedAt.UTC().Format(time.RFC3339),
			Customer:   &owner,
		},
	})
}

func (h *handler) dailyStatistics(w http.ResponseWriter, r *http.Request) {
	customerID, err := identity(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	totals, err := h.app.Sales.DailyStatistics(r.Context(), customerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	entries := make([]dailyEntryDTO, 0, len(totals))
	for _, t := range totals {
		entries = append(entries, dailyEntryDTO{Date: t.Date, TotalSales: t.TotalSales.InexactFloat64()})
	}
	respond(w, http.StatusOK, "Daily sales statistics retrieved successfully.", map[string]interface{}{
		"statistics": entries,
	})
}

func (h *handler) topVolume(w http.ResponseWriter, r *http.Request) {
	if _, err := identity(r); err != nil {
		h.fail(w, r, err)
		return
	}

	leader, err := h.app.Sales.TopByVolume(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var data interface{}
	if leader != nil {
		data = struct {
			Customer         *customer.Profile `json:"customer"`
			TotalSalesVolume float64           `json:"totalSalesVolume"`
		}{leader.Customer, leader.TotalSalesVolume.InexactFloat64()}
	}
	respond(w, http.StatusOK, "Top volume customer retrieved successfully.", map[string]interface{}{
		"topCustomer": data,
	})
}

func (h *handler) topAverage(w http.ResponseWriter, r *http.Request) {
	if _, err := identity(r); err != nil {
		h.fail(w, r, err)
		return
	}

	leader, err := h.app.Sales.TopByAverage(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var data interface{}
	if leader != nil {
		data = struct {
			Customer         *customer.Profile `json:"customer"`
			AverageSaleValue float64           `json:"averageSaleValue"`
		}{leader.Customer, leader.AverageSaleValue.InexactFloat64()}
	}
	respond(w, http.StatusOK, "Top average value customer retrieved successfully.", map[string]interface{}{
		"topCustomer": data,
	})
}

func (h *handler) topFrequency(w http.ResponseWriter, r *http.Request) {
	if _, err := identity(r); err != nil {
		h.fail(w, r, err)
		return
	}

	leader, err := h.app.Sales.TopByFrequency(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var data interface{}
	if leader != nil {
		data = struct {
			Customer      *customer.Profile `json:"customer"`
			PurchaseCount int64             `json:"purchaseCount"`
		}{leader.Customer, leader.PurchaseCount}
	}
	respond(w, http.StatusOK, "Top frequency customer retrieved successfully.", map[string]interface{}{
		"topCustomer": data,
	})
}
