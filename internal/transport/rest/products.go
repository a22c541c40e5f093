package rest

import (
	"fmt"
	"net/http"

	"github.com/abgdnv/farmstore/internal/service"
	"github.com/abgdnv/farmstore/pkg/web"
)

// FindProducts lists products, newest first.
func (h *Handler) FindProducts(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	page, ok := web.ParsePage(r, w, mLogger, defaultPageLimit)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to find all products", "limit", page.Limit, "offset", page.Offset)
	list, err := h.services.Products.FindAll(r.Context(), page.Offset, page.Limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindProductByBarcode looks a product up by the barcode in the path.
func (h *Handler) FindProductByBarcode(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	barcode := r.PathValue("id")
	mLogger.DebugContext(r.Context(), "Received request to find product by barcode", "barcode", barcode)
	found, err := h.services.Products.FindByBarcode(r.Context(), barcode)
	if err != nil {
		h.respondServiceError(w, r, mLogger, "product", err,
			fmt.Sprintf("Product with barcode %s not found", barcode),
			fmt.Sprintf("Failed to retrieve product with barcode %s", barcode))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// CreateProduct registers a new product.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto service.ProductCreateDto
	if !h.decodeValid(w, r, mLogger, "product", &dto) {
		return
	}
	created, err := h.services.Products.Create(r.Context(), dto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, "product", err, "Product not found", "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "barcode", created.Barcode)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// UpdateProduct replaces name, price and stock of a product.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var dto service.ProductUpdateDto
	if !h.decodeValid(w, r, mLogger, "product", &dto) {
		return
	}
	updated, err := h.services.Products.Update(r.Context(), id, dto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, "product", err,
			fmt.Sprintf("Product with ID %s not found", id),
			fmt.Sprintf("Failed to update product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", updated.ID)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// RestockProduct adds a quantity to the stock of a product.
func (h *Handler) RestockProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var dto service.RestockDto
	if !h.decodeValid(w, r, mLogger, "restock", &dto) {
		return
	}
	updated, err := h.services.Products.Restock(r.Context(), id, dto.Quantity)
	if err != nil {
		h.respondServiceError(w, r, mLogger, "restock", err,
			fmt.Sprintf("Product with ID %s not found", id),
			fmt.Sprintf("Failed to restock product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product restocked", "ID", updated.ID, "stock", updated.Stock)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// DeleteProduct removes a product. Past sales keep their item snapshot.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	if err := h.services.Products.DeleteByID(r.Context(), id); err != nil {
		h.respondServiceError(w, r, mLogger, "product", err,
			fmt.Sprintf("Product with ID %s not found", id),
			fmt.Sprintf("Failed to delete product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}
