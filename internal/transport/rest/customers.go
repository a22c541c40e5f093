package rest

import (
	"fmt"
	"net/http"

	"github.com/abgdnv/farmstore/internal/service"
	"github.com/abgdnv/farmstore/pkg/web"
)

func (h *Handler) FindCustomers(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	page, ok := web.ParsePage(r, w, mLogger, defaultPageLimit)
	if !ok {
		return
	}
	list, err := h.services.Customers.FindAll(r.Context(), page.Offset, page.Limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving customer list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch customers")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindCustomerByNationalID looks a customer up by the national ID in the path.
func (h *Handler) FindCustomerByNationalID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	nationalID := r.PathValue("id")
	found, err := h.services.Customers.FindByNationalID(r.Context(), nationalID)
	if err != nil {
		h.respondServiceError(w, r, mLogger, "customer", err,
			fmt.Sprintf("Customer with national ID %s not found", nationalID),
			fmt.Sprintf("Failed to retrieve customer with national ID %s", nationalID))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto service.CustomerDataDto
	if !h.decodeValid(w, r, mLogger, "customer", &dto) {
		return
	}
	created, err := h.services.Customers.Create(r.Context(), dto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, "customer", err, "Customer not found", "Failed to create customer")
		return
	}
	mLogger.InfoContext(r.Context(), "Customer created successfully", "ID", created.ID)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var dto service.CustomerUpdateDto
	if !h.decodeValid(w, r, mLogger, "customer", &dto) {
		return
	}
	updated, err := h.services.Customers.Update(r.Context(), id, dto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, "customer", err,
			fmt.Sprintf("Customer with ID %s not found", id),
			fmt.Sprintf("Failed to update customer with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Customer updated successfully", "ID", updated.ID)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	if err := h.services.Customers.DeleteByID(r.Context(), id); err != nil {
		h.respondServiceError(w, r, mLogger, "customer", err,
			fmt.Sprintf("Customer with ID %s not found", id),
			fmt.Sprintf("Failed to delete customer with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Customer deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}
