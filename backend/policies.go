package backend

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/policydesk/backoffice/core"
	"github.com/policydesk/backoffice/core/filter"
	"github.com/policydesk/backoffice/models"
)

func (b *Backend) handlePolicyRoutes(router *mux.Router) {
	router.HandleFunc("/policies", b.protected(b.policyCreate)).Methods(http.MethodOptions, http.MethodPost)
	router.HandleFunc("/policies", b.protected(b.policyList)).Methods(http.MethodOptions, http.MethodGet)
	router.HandleFunc("/policies/{id}", b.policyRead).Methods(http.MethodOptions, http.MethodGet)
	router.HandleFunc("/policies/{id}", b.protected(b.policyUpdate)).Methods(http.MethodOptions, http.MethodPatch)
	router.HandleFunc("/policies/{id}", b.protected(b.policyDelete)).Methods(http.MethodOptions, http.MethodDelete)
}

func (b *Backend) policyCreate(w http.ResponseWriter, r *http.Request) {
	var in models.PolicyInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	policy, err := b.policies.CreatePolicy(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b.notify("policy", core.OperationCreate, policy)
	writeJSON(w, http.StatusCreated, policy)
}

func (b *Backend) policyList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := filter.PageFromQuery(query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	policies, total, err := b.policies.ListPolicies(r.Context(), query, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listEnvelope{Data: policies, Total: total, Page: page.Number, Limit: page.Limit})
}

func (b *Backend) policyRead(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	policy, err := b.policies.GetPolicy(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, policy)
}

func (b *Backend) policyUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var patch models.PolicyPatch
	if err := decodeBodyStrict(r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	if err := patch.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	policy, err := b.policies.UpdatePolicy(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	b.notify("policy", core.OperationUpdate, policy)
	writeJSON(w, http.StatusOK, policy)
}

func (b *Backend) policyDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idFromRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := b.policies.DeletePolicy(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	b.notify("policy", core.OperationDelete, map[string]int64{"id": id})
	writeJSON(w, http.StatusOK, map[string]string{"message": "policy deleted"})
}
