package models

import (
	"time"

	"github.com/policydesk/backoffice/core"
)

// User is a credential record. The password hash never leaves the
// service, it is excluded from serialization.
type User struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"userid"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Credentials is the request body for register and login.
type Credentials struct {
	UserID   string `json:"userid"`
	Password string `json:"password"`
}

// Validate checks the credentials for registration.
func (c Credentials) Validate() error {
	if c.UserID == "" {
		return core.Validationf("userid is required")
	}
	if c.Password == "" {
		return core.Validationf("password is required")
	}
	return nil
}
