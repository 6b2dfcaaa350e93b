package models

import (
	"time"

	"github.com/policydesk/backoffice/core"
)

// Record is a generic titled free-text entry. Records carry no natural
// key, duplicates are allowed.
type Record struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecordInput is the request body for creating a record.
type RecordInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Validate checks the input for a new record.
func (in RecordInput) Validate() error {
	if in.Title == "" {
		return core.Validationf("title is required")
	}
	if in.Content == "" {
		return core.Validationf("content is required")
	}
	return nil
}

// RecordPatch is the request body for updating a record.
type RecordPatch struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// Validate checks the fields present in the patch.
func (p RecordPatch) Validate() error {
	if p.Title != nil && *p.Title == "" {
		return core.Validationf("title must not be empty")
	}
	if p.Content != nil && *p.Content == "" {
		return core.Validationf("content must not be empty")
	}
	return nil
}

// Assignments returns the column updates for the fields present in the
// patch, in declaration order.
func (p RecordPatch) Assignments() []Assignment {
	var as []Assignment
	if p.Title != nil {
		as = append(as, Assignment{Column: "title", Value: p.Title})
	}
	if p.Content != nil {
		as = append(as, Assignment{Column: "content", Value: p.Content})
	}
	return as
}

// IsEmpty reports whether the patch contains no fields at all.
func (p RecordPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil
}
