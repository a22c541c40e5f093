package rest

import (
	"fmt"
	"net/http"

	"github.com/abgdnv/farmstore/internal/service"
	"github.com/abgdnv/farmstore/pkg/web"
)

func (h *Handler) FindSuppliers(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	page, ok := web.ParsePage(r, w, mLogger, defaultPageLimit)
	if !ok {
		return
	}
	list, err := h.services.Suppliers.FindAll(r.Context(), page.Offset, page.Limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving supplier list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch suppliers")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindSupplierByTaxID looks a supplier up by the tax ID in the path, ignoring case.
func (h *Handler) FindSupplierByTaxID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	taxID := r.PathValue("id")
	found, err := h.services.Suppliers.FindByTaxID(r.Context(), taxID)
	if err != nil {
		h.respondServiceError(w, r, mLogger, "supplier", err,
			fmt.Sprintf("Supplier with tax ID %s not found", taxID),
			fmt.Sprintf("Failed to retrieve supplier with tax ID %s", taxID))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

func (h *Handler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto service.SupplierDataDto
	if !h.decodeValid(w, r, mLogger, "supplier", &dto) {
		return
	}
	created, err := h.services.Suppliers.Create(r.Context(), dto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, "supplier", err, "Supplier not found", "Failed to create supplier")
		return
	}
	mLogger.InfoContext(r.Context(), "Supplier created successfully", "ID", created.ID)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

func (h *Handler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var dto service.SupplierDataDto
	if !h.decodeValid(w, r, mLogger, "supplier", &dto) {
		return
	}
	updated, err := h.services.Suppliers.Update(r.Context(), id, dto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, "supplier", err,
			fmt.Sprintf("Supplier with ID %s not found", id),
			fmt.Sprintf("Failed to update supplier with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Supplier updated successfully", "ID", updated.ID)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

func (h *Handler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	if err := h.services.Suppliers.DeleteByID(r.Context(), id); err != nil {
		h.respondServiceError(w, r, mLogger, "supplier", err,
			fmt.Sprintf("Supplier with ID %s not found", id),
			fmt.Sprintf("Failed to delete supplier with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Supplier deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}
