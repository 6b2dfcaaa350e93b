/*Package backend implements the REST interface of the backoffice
service. Routes are registered per resource on a gorilla mux router;
every handler translates the typed errors of the lower layers into the
uniform error body.
*/
package backend

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/policydesk/backoffice/core"
	"github.com/policydesk/backoffice/core/access"
	"github.com/policydesk/backoffice/core/csql"
	"github.com/policydesk/backoffice/core/filter"
	"github.com/policydesk/backoffice/core/logger"
	"github.com/policydesk/backoffice/events"
	"github.com/policydesk/backoffice/models"
	"github.com/policydesk/backoffice/store"
)

// consumer-side views of the store, so handler tests can run on fakes
type policyStore interface {
	CreatePolicy(ctx context.Context, in models.PolicyInput) (*models.Policy, error)
	GetPolicy(ctx context.Context, id int64) (*models.Policy, error)
	ListPolicies(ctx context.Context, values url.Values, page filter.Page) ([]models.Policy, int, error)
	UpdatePolicy(ctx context.Context, id int64, patch models.PolicyPatch) (*models.Policy, error)
	DeletePolicy(ctx context.Context, id int64) error
}

type receiptStore interface {
	CreateReceipt(ctx context.Context, in models.ReceiptInput) (*models.Receipt, error)
	GetReceipt(ctx context.Context, id int64) (*models.Receipt, error)
	ListReceipts(ctx context.Context, values url.Values, page filter.Page) ([]models.Receipt, int, error)
	UpdateReceipt(ctx context.Context, id int64, patch models.ReceiptPatch) (*models.Receipt, error)
	DeleteReceipt(ctx context.Context, id int64) error
}

type recordStore interface {
	CreateRecord(ctx context.Context, in models.RecordInput) (*models.Record, error)
	GetRecord(ctx context.Context, id int64) (*models.Record, error)
	ListRecords(ctx context.Context, values url.Values, page filter.Page) ([]models.Record, int, error)
	UpdateRecord(ctx context.Context, id int64, patch models.RecordPatch) (*models.Record, error)
	DeleteRecord(ctx context.Context, id int64) error
}

type userStore interface {
	CreateUser(ctx context.Context, userID, passwordHash string) (*models.User, error)
	GetUserByUserID(ctx context.Context, userID string) (*models.User, error)
}

// Backend is the REST backend of the backoffice service.
type Backend struct {
	policies      policyStore
	receipts      receiptStore
	records       recordStore
	users         userStore
	notifier      core.Notifier
	jwtSecret     []byte
	tokenValidity time.Duration
}

// Builder is a builder helper for the Backend
type Builder struct {
	// DB is a postgres database. This is mandatory.
	DB *csql.DB
	// Router is a mux router. This is mandatory.
	Router *mux.Router
	// JWTSecret signs and verifies bearer tokens. This is mandatory.
	JWTSecret string
	// TokenValidity is the lifetime of issued tokens. Default is 24h.
	TokenValidity time.Duration
	// Notifier receives mutation notifications. Default logs them.
	Notifier core.Notifier
}

// New realizes the actual backend and adds all routes to the router
// under /api/v1.
func New(bb *Builder) *Backend {
	if bb.DB == nil {
		panic("DB is missing")
	}
	if bb.Router == nil {
		panic("Router is missing")
	}
	if bb.JWTSecret == "" {
		panic("JWTSecret is missing")
	}
	validity := bb.TokenValidity
	if validity == 0 {
		validity = 24 * time.Hour
	}
	notifier := bb.Notifier
	if notifier == nil {
		notifier = events.LogNotifier{}
	}

	s := store.New(bb.DB)
	if err := s.Init(context.Background()); err != nil {
		panic(err)
	}
	b := &Backend{
		policies:      s,
		receipts:      s,
		records:       s,
		users:         s,
		notifier:      notifier,
		jwtSecret:     []byte(bb.JWTSecret),
		tokenValidity: validity,
	}

	logger.AddRequestID(bb.Router)
	router := bb.Router.PathPrefix("/api/v1").Subrouter()
	b.handlePolicyRoutes(router)
	b.handleReceiptRoutes(router)
	b.handleRecordRoutes(router)
	b.handleAuthRoutes(router)
	return b
}

// protected verifies the bearer token and stores the caller identity in
// the request context before invoking the handler.
func (b *Backend) protected(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := access.TokenFromRequest(r)
		if tokenString == "" {
			writeError(w, r, core.AuthError{Message: "missing bearer token"})
			return
		}
		userID, err := access.ParseToken(b.jwtSecret, tokenString)
		if err != nil {
			writeError(w, r, err)
			return
		}
		ctx := access.ContextWithIdentity(r.Context(), userID)
		ctx, _ = logger.ContextWithLoggerIdentity(ctx, userID)
		h(w, r.WithContext(ctx))
	}
}

// listEnvelope is the response body of every list operation. Total is
// the match count before pagination.
type listEnvelope struct {
	Data  interface{} `json:"data"`
	Total int         `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// writeError maps the error taxonomy to status codes. Unexpected errors
// are logged with their details and reported generically.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var validationErr core.ValidationError
	var conflictErr core.ConflictError
	var authErr core.AuthError
	var notFoundErr core.NotFoundError
	switch {
	case errors.As(err, &validationErr):
		status, message = http.StatusBadRequest, validationErr.Error()
	case errors.As(err, &conflictErr):
		status, message = http.StatusBadRequest, conflictErr.Error()
	case errors.As(err, &authErr):
		status, message = http.StatusUnauthorized, authErr.Error()
	case errors.As(err, &notFoundErr):
		status, message = http.StatusNotFound, notFoundErr.Error()
	default:
		logger.FromContext(r.Context()).WithError(err).Error("request failed")
	}
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return core.Validationf("invalid request body: %s", err)
	}
	return nil
}

// decodeBodyStrict rejects unknown fields, used for patches.
func decodeBodyStrict(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return core.Validationf("invalid request body: %s", err)
	}
	return nil
}

// idFromRequest parses the id route variable. A malformed id behaves
// like an unknown one.
func idFromRequest(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, core.NotFoundError{}
	}
	return id, nil
}

// notify publishes a mutation to the configured notifier. Failure to
// serialize never disturbs the response.
func (b *Backend) notify(resource string, operation core.Operation, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		logger.Default().WithError(err).Error("cannot marshal notification payload")
		return
	}
	b.notifier.Notify(resource, operation, payload)
}
