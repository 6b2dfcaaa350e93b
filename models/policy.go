package models

import (
	"net/mail"
	"time"

	"github.com/policydesk/backoffice/core"
)

// Policy is an overseas travel mediclaim policy as stored in the
// policies table. The policy number together with the year of the
// policy date forms the natural key among non-deleted rows.
type Policy struct {
	ID                 int64     `json:"id"`
	Plan               string    `json:"plan"`
	PlanCode           string    `json:"planCode"`
	PolicyOffice       string    `json:"policyOffice"`
	PolicyOfficeCode   string    `json:"policyOfficeCode"`
	PolicyClass        string    `json:"policyClass"`
	PolicyClassCode    string    `json:"policyClassCode"`
	PolicyNumber       string    `json:"policyNumber"`
	PolicyDate         Date      `json:"policyDate"`
	PolicyNo           string    `json:"policyNo"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	DOB                Date      `json:"dob"`
	Gender             string    `json:"gender"`
	Address            string    `json:"address"`
	Mobile             string    `json:"mobile"`
	Email              string    `json:"email"`
	Passport           string    `json:"passport"`
	Destination        string    `json:"destination"`
	TravelDateFrom     Date      `json:"travelDateFrom"`
	TravelDays         int       `json:"travelDays"`
	TravelDateTo       Date      `json:"travelDateTo"`
	CountryOfResidence string    `json:"countryOfResidence"`
	LimitOfCover       float64   `json:"limitOfCover"`
	Currency           string    `json:"currency"`
	Premium            float64   `json:"premium"`
	VAT                float64   `json:"vat"`
	Total              float64   `json:"total"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// PolicyInput is the request body for creating a policy.
type PolicyInput struct {
	Plan               string  `json:"plan"`
	PlanCode           string  `json:"planCode"`
	PolicyOffice       string  `json:"policyOffice"`
	PolicyOfficeCode   string  `json:"policyOfficeCode"`
	PolicyClass        string  `json:"policyClass"`
	PolicyClassCode    string  `json:"policyClassCode"`
	PolicyNumber       string  `json:"policyNumber"`
	PolicyDate         Date    `json:"policyDate"`
	PolicyNo           string  `json:"policyNo"`
	FirstName          string  `json:"firstName"`
	LastName           string  `json:"lastName"`
	DOB                Date    `json:"dob"`
	Gender             string  `json:"gender"`
	Address            string  `json:"address"`
	Mobile             string  `json:"mobile"`
	Email              string  `json:"email"`
	Passport           string  `json:"passport"`
	Destination        string  `json:"destination"`
	TravelDateFrom     Date    `json:"travelDateFrom"`
	TravelDays         int     `json:"travelDays"`
	TravelDateTo       Date    `json:"travelDateTo"`
	CountryOfResidence string  `json:"countryOfResidence"`
	LimitOfCover       float64 `json:"limitOfCover"`
	Currency           string  `json:"currency"`
	Premium            float64 `json:"premium"`
	VAT                float64 `json:"vat"`
	Total              float64 `json:"total"`
}

// Validate checks the input for a new policy.
func (in PolicyInput) Validate() error {
	required := []struct {
		name, value string
	}{
		{"plan", in.Plan},
		{"planCode", in.PlanCode},
		{"policyOffice", in.PolicyOffice},
		{"policyOfficeCode", in.PolicyOfficeCode},
		{"policyClass", in.PolicyClass},
		{"policyClassCode", in.PolicyClassCode},
		{"policyNumber", in.PolicyNumber},
		{"policyNo", in.PolicyNo},
		{"firstName", in.FirstName},
		{"lastName", in.LastName},
		{"gender", in.Gender},
		{"address", in.Address},
		{"mobile", in.Mobile},
		{"email", in.Email},
		{"passport", in.Passport},
		{"destination", in.Destination},
		{"countryOfResidence", in.CountryOfResidence},
		{"currency", in.Currency},
	}
	for _, f := range required {
		if f.value == "" {
			return core.Validationf("%s is required", f.name)
		}
	}
	for _, f := range []struct {
		name string
		date Date
	}{
		{"policyDate", in.PolicyDate},
		{"dob", in.DOB},
		{"travelDateFrom", in.TravelDateFrom},
		{"travelDateTo", in.TravelDateTo},
	} {
		if f.date.IsZero() {
			return core.Validationf("%s is required", f.name)
		}
	}
	if !validGender(in.Gender) {
		return core.Validationf("gender must be one of Male, Female, Other")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return core.Validationf("email '%s' is not a valid address", in.Email)
	}
	if in.TravelDays < 1 {
		return core.Validationf("travelDays must be at least 1")
	}
	if in.TravelDateTo.Before(in.TravelDateFrom.Time) {
		return core.Validationf("travelDateTo must not be before travelDateFrom")
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"limitOfCover", in.LimitOfCover},
		{"premium", in.Premium},
		{"vat", in.VAT},
		{"total", in.Total},
	} {
		if f.value < 0 {
			return core.Validationf("%s must not be negative", f.name)
		}
	}
	return nil
}

// PolicyPatch is the request body for updating a policy. Every field is
// optional; absent fields stay untouched.
type PolicyPatch struct {
	Plan               *string  `json:"plan"`
	PlanCode           *string  `json:"planCode"`
	PolicyOffice       *string  `json:"policyOffice"`
	PolicyOfficeCode   *string  `json:"policyOfficeCode"`
	PolicyClass        *string  `json:"policyClass"`
	PolicyClassCode    *string  `json:"policyClassCode"`
	PolicyNumber       *string  `json:"policyNumber"`
	PolicyDate         *Date    `json:"policyDate"`
	PolicyNo           *string  `json:"policyNo"`
	FirstName          *string  `json:"firstName"`
	LastName           *string  `json:"lastName"`
	DOB                *Date    `json:"dob"`
	Gender             *string  `json:"gender"`
	Address            *string  `json:"address"`
	Mobile             *string  `json:"mobile"`
	Email              *string  `json:"email"`
	Passport           *string  `json:"passport"`
	Destination        *string  `json:"destination"`
	TravelDateFrom     *Date    `json:"travelDateFrom"`
	TravelDays         *int     `json:"travelDays"`
	TravelDateTo       *Date    `json:"travelDateTo"`
	CountryOfResidence *string  `json:"countryOfResidence"`
	LimitOfCover       *float64 `json:"limitOfCover"`
	Currency           *string  `json:"currency"`
	Premium            *float64 `json:"premium"`
	VAT                *float64 `json:"vat"`
	Total              *float64 `json:"total"`
}

// Validate checks the fields present in the patch.
func (p PolicyPatch) Validate() error {
	if p.Gender != nil && !validGender(*p.Gender) {
		return core.Validationf("gender must be one of Male, Female, Other")
	}
	if p.Email != nil {
		if _, err := mail.ParseAddress(*p.Email); err != nil {
			return core.Validationf("email '%s' is not a valid address", *p.Email)
		}
	}
	if p.TravelDays != nil && *p.TravelDays < 1 {
		return core.Validationf("travelDays must be at least 1")
	}
	return nil
}

// TouchesNaturalKey reports whether the patch modifies a field of the
// policy's natural key.
func (p PolicyPatch) TouchesNaturalKey() bool {
	return p.PolicyNumber != nil || p.PolicyDate != nil
}

// Assignments returns the column updates for the fields present in the
// patch, in declaration order.
func (p PolicyPatch) Assignments() []Assignment {
	var as []Assignment
	add := func(column string, present bool, value interface{}) {
		if present {
			as = append(as, Assignment{Column: column, Value: value})
		}
	}
	add("plan", p.Plan != nil, p.Plan)
	add("plan_code", p.PlanCode != nil, p.PlanCode)
	add("policy_office", p.PolicyOffice != nil, p.PolicyOffice)
	add("policy_office_code", p.PolicyOfficeCode != nil, p.PolicyOfficeCode)
	add("policy_class", p.PolicyClass != nil, p.PolicyClass)
	add("policy_class_code", p.PolicyClassCode != nil, p.PolicyClassCode)
	add("policy_number", p.PolicyNumber != nil, p.PolicyNumber)
	add("policy_date", p.PolicyDate != nil, p.PolicyDate)
	add("policy_no", p.PolicyNo != nil, p.PolicyNo)
	add("first_name", p.FirstName != nil, p.FirstName)
	add("last_name", p.LastName != nil, p.LastName)
	add("dob", p.DOB != nil, p.DOB)
	add("gender", p.Gender != nil, p.Gender)
	add("address", p.Address != nil, p.Address)
	add("mobile", p.Mobile != nil, p.Mobile)
	add("email", p.Email != nil, p.Email)
	add("passport", p.Passport != nil, p.Passport)
	add("destination", p.Destination != nil, p.Destination)
	add("travel_date_from", p.TravelDateFrom != nil, p.TravelDateFrom)
	add("travel_days", p.TravelDays != nil, p.TravelDays)
	add("travel_date_to", p.TravelDateTo != nil, p.TravelDateTo)
	add("country_of_residence", p.CountryOfResidence != nil, p.CountryOfResidence)
	add("limit_of_cover", p.LimitOfCover != nil, p.LimitOfCover)
	add("currency", p.Currency != nil, p.Currency)
	add("premium", p.Premium != nil, p.Premium)
	add("vat", p.VAT != nil, p.VAT)
	add("total", p.Total != nil, p.Total)
	return as
}

// IsEmpty reports whether the patch contains no fields at all.
func (p PolicyPatch) IsEmpty() bool {
	return len(p.Assignments()) == 0
}
