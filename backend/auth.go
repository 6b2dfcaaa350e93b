package backend

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/policydesk/backoffice/core"
	"github.com/policydesk/backoffice/core/access"
	"github.com/policydesk/backoffice/models"
)

func (b *Backend) handleAuthRoutes(router *mux.Router) {
	router.HandleFunc("/auth/register", b.register).Methods(http.MethodOptions, http.MethodPost)
	router.HandleFunc("/auth/login", b.login).Methods(http.MethodOptions, http.MethodPost)
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var credentials models.Credentials
	if err := decodeBody(r, &credentials); err != nil {
		writeError(w, r, err)
		return
	}
	if err := credentials.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(credentials.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := b.users.CreateUser(r.Context(), credentials.UserID, string(hash)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "registration successful"})
}

// login returns 400 on wrong credentials, 401 stays reserved for bearer
// token failures.
func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var credentials models.Credentials
	if err := decodeBody(r, &credentials); err != nil {
		writeError(w, r, err)
		return
	}
	if err := credentials.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	wrongCredentials := core.Validationf("wrong user or password")

	user, err := b.users.GetUserByUserID(r.Context(), credentials.UserID)
	if err != nil {
		var notFoundErr core.NotFoundError
		if errors.As(err, &notFoundErr) {
			writeError(w, r, wrongCredentials)
			return
		}
		writeError(w, r, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credentials.Password)); err != nil {
		writeError(w, r, wrongCredentials)
		return
	}

	token, err := access.NewToken(b.jwtSecret, user.UserID, b.tokenValidity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token, "userid": user.UserID})
}
