// Package rest provides the HTTP handlers of the farm store API.
package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	perrors "github.com/abgdnv/farmstore/internal/errors"
	"github.com/abgdnv/farmstore/internal/service"
	"github.com/abgdnv/farmstore/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

const defaultPageLimit = 50

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the business services behind the API.
type Services struct {
	Products  service.ProductService
	Customers service.CustomerService
	Suppliers service.SupplierService
	Sales     service.SaleService
}

type Handler struct {
	services Services
	pinger   Pinger
	validate *validator.Validate
	logger   *slog.Logger
	// saleMiddlewares wrap POST /sales only.
	saleMiddlewares []func(http.Handler) http.Handler
}

// NewHandler creates a new Handler. Optional middlewares wrap the sale creation endpoint.
func NewHandler(services Services, pinger Pinger, logger *slog.Logger, saleMiddlewares ...func(http.Handler) http.Handler) *Handler {
	return &Handler{
		services:        services,
		pinger:          pinger,
		validate:        web.NewValidator(),
		logger:          logger.With("component", "rest"),
		saleMiddlewares: saleMiddlewares,
	}
}

// RegisterRoutes registers the HTTP routes of the API.
// GET /products/{id} and friends look up by natural key; the other verbs take the UUID.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.FindProducts)
			r.Post("/", h.CreateProduct)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.FindProductByBarcode)
				r.Put("/", h.UpdateProduct)
				r.Delete("/", h.DeleteProduct)
				r.Post("/restock", h.RestockProduct)
			})
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.FindCustomers)
			r.Post("/", h.CreateCustomer)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.FindCustomerByNationalID)
				r.Put("/", h.UpdateCustomer)
				r.Delete("/", h.DeleteCustomer)
			})
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", h.FindSuppliers)
			r.Post("/", h.CreateSupplier)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.FindSupplierByTaxID)
				r.Put("/", h.UpdateSupplier)
				r.Delete("/", h.DeleteSupplier)
			})
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", h.FindSales)
			r.With(h.saleMiddlewares...).Post("/", h.CreateSale)
			r.Get("/{id}", h.FindSaleByID)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// HealthCheck answers 200 when the database is reachable and 503 otherwise.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.pinger.Ping(r.Context()); err != nil {
		h.loggerWithReqID(r).ErrorContext(r.Context(), "Database is unreachable", "error", err)
		web.RespondError(w, h.logger, http.StatusServiceUnavailable, "Database is unreachable")
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// respondServiceError maps a service error to its HTTP response.
// notFound is the message of a 404, failure the message of a 500.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, entity string, err error, notFound, failure string) {
	var duplicate *perrors.DuplicateKeyError
	var shortage *perrors.InsufficientStockError
	switch {
	case errors.As(err, &shortage):
		logger.WarnContext(r.Context(), "Insufficient stock", "product_id", shortage.ProductID, "remaining", shortage.Remaining)
		web.RespondJSON(w, logger, http.StatusBadRequest, map[string]any{
			"error":      shortage.Error(),
			"product_id": shortage.ProductID,
			"remaining":  shortage.Remaining,
		})
	case errors.As(err, &duplicate):
		logger.WarnContext(r.Context(), "Duplicate key", "entity", duplicate.Entity, "field", duplicate.Field, "value", duplicate.Value)
		web.RespondError(w, logger, http.StatusBadRequest, duplicate.Error())
	case errors.Is(err, perrors.ErrValidation):
		logger.WarnContext(r.Context(), "Rejected invalid data", "entity", entity, "error", err)
		web.RespondError(w, logger, http.StatusBadRequest, "Invalid "+entity+" data")
	case errors.Is(err, perrors.ErrProductNotFound),
		errors.Is(err, perrors.ErrCustomerNotFound),
		errors.Is(err, perrors.ErrSupplierNotFound),
		errors.Is(err, perrors.ErrSaleNotFound):
		logger.WarnContext(r.Context(), notFound)
		web.RespondError(w, logger, http.StatusNotFound, notFound)
	default:
		logger.ErrorContext(r.Context(), failure, "error", err)
		web.RespondError(w, logger, http.StatusInternalServerError, failure)
	}
}

// decodeValid decodes, normalizes and validates a request body into dst.
// It writes a 400 response and returns false on failure.
func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, logger *slog.Logger, entity string, dst any) bool {
	if !web.DecodeJSON(w, r, logger, dst) {
		return false
	}
	if n, ok := dst.(normalizer); ok {
		n.Normalize()
	}
	if err := h.validate.Struct(dst); err != nil {
		web.RespondValidationError(w, logger, entity, err)
		return false
	}
	return true
}

type normalizer interface {
	Normalize()
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
