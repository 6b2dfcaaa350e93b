package backend

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/policydesk/backoffice/core"
	"github.com/policydesk/backoffice/core/access"
	"github.com/policydesk/backoffice/core/filter"
	"github.com/policydesk/backoffice/models"
)

const testSecret = "test-secret"

type fakePolicies struct {
	createFn func(in models.PolicyInput) (*models.Policy, error)
	getFn    func(id int64) (*models.Policy, error)
	listFn   func(values url.Values, page filter.Page) ([]models.Policy, int, error)
	updateFn func(id int64, patch models.PolicyPatch) (*models.Policy, error)
	deleteFn func(id int64) error
}

func (f *fakePolicies) CreatePolicy(_ context.Context, in models.PolicyInput) (*models.Policy, error) {
	return f.createFn(in)
}
func (f *fakePolicies) GetPolicy(_ context.Context, id int64) (*models.Policy, error) {
	return f.getFn(id)
}
func (f *fakePolicies) ListPolicies(_ context.Context, values url.Values, page filter.Page) ([]models.Policy, int, error) {
	return f.listFn(values, page)
}
func (f *fakePolicies) UpdatePolicy(_ context.Context, id int64, patch models.PolicyPatch) (*models.Policy, error) {
	return f.updateFn(id, patch)
}
func (f *fakePolicies) DeletePolicy(_ context.Context, id int64) error {
	return f.deleteFn(id)
}

type fakeUsers struct {
	createFn func(userID, passwordHash string) (*models.User, error)
	getFn    func(userID string) (*models.User, error)
}

func (f *fakeUsers) CreateUser(_ context.Context, userID, passwordHash string) (*models.User, error) {
	return f.createFn(userID, passwordHash)
}
func (f *fakeUsers) GetUserByUserID(_ context.Context, userID string) (*models.User, error) {
	return f.getFn(userID)
}

type notification struct {
	resource  string
	operation core.Operation
	payload   []byte
}

type captureNotifier struct {
	notifications []notification
}

func (n *captureNotifier) Notify(resource string, operation core.Operation, payload []byte) {
	n.notifications = append(n.notifications, notification{resource, operation, payload})
}

func newTestBackend(policies *fakePolicies, users *fakeUsers) (*mux.Router, *captureNotifier) {
	notifier := &captureNotifier{}
	b := &Backend{
		policies:      policies,
		users:         users,
		notifier:      notifier,
		jwtSecret:     []byte(testSecret),
		tokenValidity: time.Hour,
	}
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	b.handlePolicyRoutes(api)
	b.handleAuthRoutes(api)
	return router, notifier
}

func authorize(t *testing.T, r *http.Request) {
	token, err := access.NewToken([]byte(testSecret), "anna", time.Hour)
	require.NoError(t, err)
	r.Header.Set("Authorization", "Bearer "+token)
}

func doJSON(t *testing.T, router *mux.Router, method, target string, body interface{}, authorized bool) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	r := httptest.NewRequest(method, target, reader)
	if authorized {
		authorize(t, r)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func testPolicy() *models.Policy {
	return &models.Policy{
		ID:           1,
		PolicyNumber: "OMP-100",
		PolicyDate:   models.NewDate(2024, time.March, 15),
		FirstName:    "Anna",
		LastName:     "Smith",
		Gender:       models.GenderFemale,
	}
}

func testPolicyInput() models.PolicyInput {
	return models.PolicyInput{
		Plan:               "OMP",
		PlanCode:           "12",
		PolicyOffice:       "Dhaka",
		PolicyOfficeCode:   "040",
		PolicyClass:        "Misc",
		PolicyClassCode:    "23",
		PolicyNumber:       "OMP-100",
		PolicyDate:         models.NewDate(2024, time.March, 15),
		PolicyNo:           "P-100",
		FirstName:          "Anna",
		LastName:           "Smith",
		DOB:                models.NewDate(1990, time.June, 1),
		Gender:             models.GenderFemale,
		Address:            "12 Main Street",
		Mobile:             "01700000000",
		Email:              "anna@example.com",
		Passport:           "A1234567",
		Destination:        "Singapore",
		TravelDateFrom:     models.NewDate(2024, time.April, 1),
		TravelDays:         14,
		TravelDateTo:       models.NewDate(2024, time.April, 15),
		CountryOfResidence: "Bangladesh",
		LimitOfCover:       10000,
		Currency:           "USD",
		Premium:            120,
		VAT:                18,
		Total:              138,
	}
}

func TestPolicyCreateRequiresToken(t *testing.T) {
	router, notifier := newTestBackend(&fakePolicies{}, nil)

	w := doJSON(t, router, http.MethodPost, "/api/v1/policies", testPolicyInput(), false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "missing bearer token", errorBody(t, w))
	assert.Empty(t, notifier.notifications)
}

func TestPolicyCreate(t *testing.T) {
	policies := &fakePolicies{
		createFn: func(in models.PolicyInput) (*models.Policy, error) {
			policy := testPolicy()
			policy.PolicyNumber = in.PolicyNumber
			return policy, nil
		},
	}
	router, notifier := newTestBackend(policies, nil)

	w := doJSON(t, router, http.MethodPost, "/api/v1/policies", testPolicyInput(), true)
	assert.Equal(t, http.StatusCreated, w.Code)

	var created models.Policy
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "OMP-100", created.PolicyNumber)

	require.Len(t, notifier.notifications, 1)
	assert.Equal(t, "policy", notifier.notifications[0].resource)
	assert.Equal(t, core.OperationCreate, notifier.notifications[0].operation)
}

func TestPolicyCreateValidation(t *testing.T) {
	router, notifier := newTestBackend(&fakePolicies{}, nil)

	in := testPolicyInput()
	in.Gender = "unknown"
	w := doJSON(t, router, http.MethodPost, "/api/v1/policies", in, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "gender must be one of Male, Female, Other", errorBody(t, w))
	assert.Empty(t, notifier.notifications)
}

func TestPolicyCreateConflict(t *testing.T) {
	policies := &fakePolicies{
		createFn: func(in models.PolicyInput) (*models.Policy, error) {
			return nil, core.Conflictf("policy number '%s' already exists for the year 2024", in.PolicyNumber)
		},
	}
	router, notifier := newTestBackend(policies, nil)

	w := doJSON(t, router, http.MethodPost, "/api/v1/policies", testPolicyInput(), true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "policy number 'OMP-100' already exists for the year 2024", errorBody(t, w))
	assert.Empty(t, notifier.notifications)
}

func TestPolicyList(t *testing.T) {
	policies := &fakePolicies{
		listFn: func(values url.Values, page filter.Page) ([]models.Policy, int, error) {
			assert.Equal(t, "Anna", values.Get("firstName"))
			assert.Equal(t, filter.Page{Number: 2, Limit: 10}, page)
			return []models.Policy{*testPolicy()}, 42, nil
		},
	}
	router, _ := newTestBackend(policies, nil)

	w := doJSON(t, router, http.MethodGet, "/api/v1/policies?firstName=Anna&page=2&limit=10", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data  []models.Policy `json:"data"`
		Total int             `json:"total"`
		Page  int             `json:"page"`
		Limit int             `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 42, envelope.Total)
	assert.Equal(t, 2, envelope.Page)
	assert.Equal(t, 10, envelope.Limit)
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "OMP-100", envelope.Data[0].PolicyNumber)
}

func TestPolicyReadIsPublic(t *testing.T) {
	policies := &fakePolicies{
		getFn: func(id int64) (*models.Policy, error) {
			assert.Equal(t, int64(1), id)
			return testPolicy(), nil
		},
	}
	router, _ := newTestBackend(policies, nil)

	w := doJSON(t, router, http.MethodGet, "/api/v1/policies/1", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPolicyReadMalformedID(t *testing.T) {
	router, _ := newTestBackend(&fakePolicies{}, nil)

	w := doJSON(t, router, http.MethodGet, "/api/v1/policies/abc", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not found", errorBody(t, w))
}

func TestPolicyUpdateRejectsUnknownFields(t *testing.T) {
	router, notifier := newTestBackend(&fakePolicies{}, nil)

	w := doJSON(t, router, http.MethodPatch, "/api/v1/policies/1", map[string]string{"nickname": "Anna"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, notifier.notifications)
}

func TestPolicyUpdate(t *testing.T) {
	premium := 150.0
	policies := &fakePolicies{
		updateFn: func(id int64, patch models.PolicyPatch) (*models.Policy, error) {
			assert.Equal(t, int64(1), id)
			require.NotNil(t, patch.Premium)
			assert.Equal(t, premium, *patch.Premium)
			policy := testPolicy()
			policy.Premium = premium
			return policy, nil
		},
	}
	router, notifier := newTestBackend(policies, nil)

	w := doJSON(t, router, http.MethodPatch, "/api/v1/policies/1", map[string]float64{"premium": premium}, true)
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, notifier.notifications, 1)
	assert.Equal(t, core.OperationUpdate, notifier.notifications[0].operation)
}

func TestPolicyDelete(t *testing.T) {
	policies := &fakePolicies{
		deleteFn: func(id int64) error {
			assert.Equal(t, int64(1), id)
			return nil
		},
	}
	router, notifier := newTestBackend(policies, nil)

	w := doJSON(t, router, http.MethodDelete, "/api/v1/policies/1", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "policy deleted", body["message"])

	require.Len(t, notifier.notifications, 1)
	assert.Equal(t, core.OperationDelete, notifier.notifications[0].operation)
}

func TestPolicyDeleteAlreadyDeleted(t *testing.T) {
	policies := &fakePolicies{
		deleteFn: func(id int64) error {
			return core.NotFoundError{Message: "policy already deleted"}
		},
	}
	router, notifier := newTestBackend(policies, nil)

	w := doJSON(t, router, http.MethodDelete, "/api/v1/policies/1", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "policy already deleted", errorBody(t, w))
	assert.Empty(t, notifier.notifications)
}

func TestRegisterHashesPassword(t *testing.T) {
	var storedHash string
	users := &fakeUsers{
		createFn: func(userID, passwordHash string) (*models.User, error) {
			storedHash = passwordHash
			return &models.User{ID: 1, UserID: userID, PasswordHash: passwordHash}, nil
		},
	}
	router, _ := newTestBackend(nil, users)

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", models.Credentials{UserID: "anna", Password: "secret123"}, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, "secret123", storedHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("secret123")))
}

func TestRegisterConflict(t *testing.T) {
	users := &fakeUsers{
		createFn: func(userID, passwordHash string) (*models.User, error) {
			return nil, core.Conflictf("userid already exists")
		},
	}
	router, _ := newTestBackend(nil, users)

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", models.Credentials{UserID: "anna", Password: "secret123"}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "userid already exists", errorBody(t, w))
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	users := &fakeUsers{
		getFn: func(userID string) (*models.User, error) {
			return &models.User{ID: 1, UserID: userID, PasswordHash: string(hash)}, nil
		},
	}
	router, _ := newTestBackend(nil, users)

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", models.Credentials{UserID: "anna", Password: "secret123"}, false)
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "anna", body["userid"])
	assert.NotContains(t, w.Body.String(), string(hash))

	userID, err := access.ParseToken([]byte(testSecret), body["token"])
	require.NoError(t, err)
	assert.Equal(t, "anna", userID)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	users := &fakeUsers{
		getFn: func(userID string) (*models.User, error) {
			return &models.User{ID: 1, UserID: userID, PasswordHash: string(hash)}, nil
		},
	}
	router, _ := newTestBackend(nil, users)

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", models.Credentials{UserID: "anna", Password: "wrong"}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "wrong user or password", errorBody(t, w))
}

func TestLoginUnknownUser(t *testing.T) {
	users := &fakeUsers{
		getFn: func(userID string) (*models.User, error) {
			return nil, core.NotFoundError{}
		},
	}
	router, _ := newTestBackend(nil, users)

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", models.Credentials{UserID: "nobody", Password: "secret123"}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "wrong user or password", errorBody(t, w))
}

func TestExpiredTokenIsRejected(t *testing.T) {
	router, _ := newTestBackend(&fakePolicies{}, nil)

	token, err := access.NewToken([]byte(testSecret), "anna", -time.Minute)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodDelete, "/api/v1/policies/1", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
