package backend

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/policydesk/backoffice/core"
	"github.com/policydesk/backoffice/core/filter"
	"github.com/policydesk/backoffice/models"
)

func (b *Backend) handleRecordRoutes(router *mux.Router) {
	router.HandleFunc("/records", b.protected(b.recordCreate)).Methods(http.MethodOptions, http.MethodPost)
	router.HandleFunc("/records", b.protected(b.recordList)).Methods(http.MethodOptions, http.MethodGet)
	router.HandleFunc("/records/{id}", b.recordRead).Methods(http.MethodOptions, http.MethodGet)
	router.HandleFunc("/records/{id}", b.protected(b.recordUpdate)).Methods(http.MethodOptions, http.MethodPatch)
	router.HandleFunc("/records/{id}", b.protected(b.recordDelete)).Methods(http.MethodOptions, http.MethodDelete)
}

func (b *Backend) recordCreate(w http.ResponseWriter, r *http.Request) {
	var in models.RecordInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	record, err := b.records.CreateRecord(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b.notify("record", core.OperationCreate, record)
	writeJSON(w, http.StatusCreated, record)
}

func (b *Backend) recordList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := filter.PageFromQuery(query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	records, total, err := b.records.ListRecords(r.Context(), query, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listEnvelope{Data: records, Total: total, Page: page.Number, Limit: page.Limit})
}

func (b *Backend) recordRead(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	record, err := b.records.GetRecord(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (b *Backend) recordUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch models.RecordPatch
	if err := decodeBodyStrict(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	if err := patch.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	record, err := b.records.UpdateRecord(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b.notify("record", core.OperationUpdate, record)
	writeJSON(w, http.StatusOK, record)
}

func (b *Backend) recordDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := b.records.DeleteRecord(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	b.notify("record", core.OperationDelete, map[string]int64{"id": id})
	writeJSON(w, http.StatusOK, map[string]string{"message": "record deleted"})
}
