package backend

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/policydesk/backoffice/core"
	"github.com/policydesk/backoffice/core/filter"
	"github.com/policydesk/backoffice/models"
)

func (b *Backend) handleReceiptRoutes(router *mux.Router) {
	router.HandleFunc("/receipts", b.protected(b.receiptCreate)).Methods(http.MethodOptions, http.MethodPost)
	router.HandleFunc("/receipts", b.protected(b.receiptList)).Methods(http.MethodOptions, http.MethodGet)
	router.HandleFunc("/receipts/{id}", b.receiptRead).Methods(http.MethodOptions, http.MethodGet)
	router.HandleFunc("/receipts/{id}", b.protected(b.receiptUpdate)).Methods(http.MethodOptions, http.MethodPatch)
	router.HandleFunc("/receipts/{id}", b.protected(b.receiptDelete)).Methods(http.MethodOptions, http.MethodDelete)
}

func (b *Backend) receiptCreate(w http.ResponseWriter, r *http.Request) {
	var in models.ReceiptInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	receipt, err := b.receipts.CreateReceipt(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b.notify("receipt", core.OperationCreate, receipt)
	writeJSON(w, http.StatusCreated, receipt)
}

func (b *Backend) receiptList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := filter.PageFromQuery(query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	receipts, total, err := b.receipts.ListReceipts(r.Context(), query, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listEnvelope{Data: receipts, Total: total, Page: page.Number, Limit: page.Limit})
}

func (b *Backend) receiptRead(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	receipt, err := b.receipts.GetReceipt(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

func (b *Backend) receiptUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch models.ReceiptPatch
	if err := decodeBodyStrict(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	if err := patch.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	receipt, err := b.receipts.UpdateReceipt(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b.notify("receipt", core.OperationUpdate, receipt)
	writeJSON(w, http.StatusOK, receipt)
}

func (b *Backend) receiptDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := b.receipts.DeleteReceipt(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	b.notify("receipt", core.OperationDelete, map[string]int64{"id": id})
	writeJSON(w, http.StatusOK, map[string]string{"message": "receipt deleted"})
}
