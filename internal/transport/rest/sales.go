package rest

import (
	"fmt"
	"net/http"

	"github.com/abgdnv/farmstore/internal/service"
	"github.com/abgdnv/farmstore/pkg/web"
)

// CreateSale processes a sale. Stock is decremented for every item or for none.
func (h *Handler) CreateSale(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto service.SaleCreateDto
	if !h.decodeValid(w, r, mLogger, "sale", &dto) {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to process sale", "items", len(dto.Items))
	sale, err := h.services.Sales.Process(r.Context(), dto)
	if err != nil {
		h.respondServiceError(w, r, mLogger, "sale", err, "Sale not found", "Failed to process sale")
		return
	}
	mLogger.InfoContext(r.Context(), "Sale recorded", "ID", sale.ID, "total", sale.Total.String())
	web.RespondJSON(w, mLogger, http.StatusCreated, sale)
}

// FindSales lists sales, newest first.
func (h *Handler) FindSales(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	page, ok := web.ParsePage(r, w, mLogger, defaultPageLimit)
	if !ok {
		return
	}
	list, err := h.services.Sales.FindAll(r.Context(), page.Offset, page.Limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving sale list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch sales")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

func (h *Handler) FindSaleByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	sale, err := h.services.Sales.FindByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, r, mLogger, "sale", err,
			fmt.Sprintf("Sale with ID %s not found", id),
			fmt.Sprintf("Failed to retrieve sale with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, sale)
}
