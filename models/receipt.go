package models

import (
	"time"

	"github.com/policydesk/backoffice/core"
)

// MOPCheque is the mode of payment that makes the cheque fields mandatory.
const MOPCheque = "Cheque"

// Receipt is a money receipt as stored in the receipts table. A receipt
// has two natural keys among non-deleted rows: the receipt number per
// year of the receipt date, and the settled policy number per year of
// the policy date.
type Receipt struct {
	ID               int64     `json:"id"`
	MROffice         string    `json:"mrOffice"`
	MROfficeCode     string    `json:"mrOfficeCode"`
	MRClass          string    `json:"mrClass"`
	MRClassCode      string    `json:"mrClassCode"`
	MRNumber         string    `json:"mrNumber"`
	MRDate           Date      `json:"mrDate"`
	MRNo             string    `json:"mrNo"`
	ReceivedFrom     string    `json:"receivedFrom"`
	MOP              string    `json:"mop"`
	ChequeNo         *string   `json:"chequeNo"`
	ChequeDate       *Date     `json:"chequeDate"`
	Bank             *string   `json:"bank"`
	BankBranch       *string   `json:"bankBranch"`
	PolicyOffice     string    `json:"policyOffice"`
	PolicyOfficeCode string    `json:"policyOfficeCode"`
	PolicyClass      string    `json:"policyClass"`
	PolicyClassCode  string    `json:"policyClassCode"`
	PolicyNumber     string    `json:"policyNumber"`
	PolicyDate       Date      `json:"policyDate"`
	Coins            string    `json:"coins"`
	PolicyNo         string    `json:"policyNo"`
	Premium          float64   `json:"premium"`
	VAT              *float64  `json:"vat"`
	Total            float64   `json:"total"`
	Stamp            *float64  `json:"stamp"`
	Coinsnet         *float64  `json:"coinsnet"`
	Note             *string   `json:"note"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ReceiptInput is the request body for creating a receipt.
type ReceiptInput struct {
	MROffice         string   `json:"mrOffice"`
	MROfficeCode     string   `json:"mrOfficeCode"`
	MRClass          string   `json:"mrClass"`
	MRClassCode      string   `json:"mrClassCode"`
	MRNumber         string   `json:"mrNumber"`
	MRDate           Date     `json:"mrDate"`
	MRNo             string   `json:"mrNo"`
	ReceivedFrom     string   `json:"receivedFrom"`
	MOP              string   `json:"mop"`
	ChequeNo         *string  `json:"chequeNo"`
	ChequeDate       *Date    `json:"chequeDate"`
	Bank             *string  `json:"bank"`
	BankBranch       *string  `json:"bankBranch"`
	PolicyOffice     string   `json:"policyOffice"`
	PolicyOfficeCode string   `json:"policyOfficeCode"`
	PolicyClass      string   `json:"policyClass"`
	PolicyClassCode  string   `json:"policyClassCode"`
	PolicyNumber     string   `json:"policyNumber"`
	PolicyDate       Date     `json:"policyDate"`
	Coins            string   `json:"coins"`
	PolicyNo         string   `json:"policyNo"`
	Premium          float64  `json:"premium"`
	VAT              *float64 `json:"vat"`
	Total            float64  `json:"total"`
	Stamp            *float64 `json:"stamp"`
	Coinsnet         *float64 `json:"coinsnet"`
	Note             *string  `json:"note"`
}

// Validate checks the input for a new receipt. The cheque fields are
// only mandatory when the mode of payment is Cheque.
func (in ReceiptInput) Validate() error {
	required := []struct {
		name, value string
	}{
		{"mrOffice", in.MROffice},
		{"mrOfficeCode", in.MROfficeCode},
		{"mrClass", in.MRClass},
		{"mrClassCode", in.MRClassCode},
		{"mrNumber", in.MRNumber},
		{"mrNo", in.MRNo},
		{"receivedFrom", in.ReceivedFrom},
		{"mop", in.MOP},
		{"policyOffice", in.PolicyOffice},
		{"policyOfficeCode", in.PolicyOfficeCode},
		{"policyClass", in.PolicyClass},
		{"policyClassCode", in.PolicyClassCode},
		{"policyNumber", in.PolicyNumber},
		{"coins", in.Coins},
		{"policyNo", in.PolicyNo},
	}
	for _, f := range required {
		if f.value == "" {
			return core.Validationf("%s is required", f.name)
		}
	}
	if in.MRDate.IsZero() {
		return core.Validationf("mrDate is required")
	}
	if in.PolicyDate.IsZero() {
		return core.Validationf("policyDate is required")
	}
	if in.MOP == MOPCheque {
		if in.ChequeNo == nil || *in.ChequeNo == "" {
			return core.Validationf("chequeNo is required when mop is Cheque")
		}
		if in.Bank == nil || *in.Bank == "" {
			return core.Validationf("bank is required when mop is Cheque")
		}
	}
	if in.Premium < 0 {
		return core.Validationf("premium must not be negative")
	}
	if in.Total < 0 {
		return core.Validationf("total must not be negative")
	}
	return nil
}

// ReceiptPatch is the request body for updating a receipt. Every field
// is optional; absent fields stay untouched.
type ReceiptPatch struct {
	MROffice         *string  `json:"mrOffice"`
	MROfficeCode     *string  `json:"mrOfficeCode"`
	MRClass          *string  `json:"mrClass"`
	MRClassCode      *string  `json:"mrClassCode"`
	MRNumber         *string  `json:"mrNumber"`
	MRDate           *Date    `json:"mrDate"`
	MRNo             *string  `json:"mrNo"`
	ReceivedFrom     *string  `json:"receivedFrom"`
	MOP              *string  `json:"mop"`
	ChequeNo         *string  `json:"chequeNo"`
	ChequeDate       *Date    `json:"chequeDate"`
	Bank             *string  `json:"bank"`
	BankBranch       *string  `json:"bankBranch"`
	PolicyOffice     *string  `json:"policyOffice"`
	PolicyOfficeCode *string  `json:"policyOfficeCode"`
	PolicyClass      *string  `json:"policyClass"`
	PolicyClassCode  *string  `json:"policyClassCode"`
	PolicyNumber     *string  `json:"policyNumber"`
	PolicyDate       *Date    `json:"policyDate"`
	Coins            *string  `json:"coins"`
	PolicyNo         *string  `json:"policyNo"`
	Premium          *float64 `json:"premium"`
	VAT              *float64 `json:"vat"`
	Total            *float64 `json:"total"`
	Stamp            *float64 `json:"stamp"`
	Coinsnet         *float64 `json:"coinsnet"`
	Note             *string  `json:"note"`
}

// Validate checks the fields present in the patch.
func (p ReceiptPatch) Validate() error {
	if p.Premium != nil && *p.Premium < 0 {
		return core.Validationf("premium must not be negative")
	}
	if p.Total != nil && *p.Total < 0 {
		return core.Validationf("total must not be negative")
	}
	return nil
}

// TouchesMRKey reports whether the patch modifies the receipt-number
// natural key.
func (p ReceiptPatch) TouchesMRKey() bool {
	return p.MRNumber != nil || p.MRDate != nil
}

// TouchesPolicyKey reports whether the patch modifies the settled-policy
// natural key.
func (p ReceiptPatch) TouchesPolicyKey() bool {
	return p.PolicyNumber != nil || p.PolicyDate != nil
}

// Assignments returns the column updates for the fields present in the
// patch, in declaration order.
func (p ReceiptPatch) Assignments() []Assignment {
	var as []Assignment
	add := func(column string, present bool, value interface{}) {
		if present {
			as = append(as, Assignment{Column: column, Value: value})
		}
	}
	add("mr_office", p.MROffice != nil, p.MROffice)
	add("mr_office_code", p.MROfficeCode != nil, p.MROfficeCode)
	add("mr_class", p.MRClass != nil, p.MRClass)
	add("mr_class_code", p.MRClassCode != nil, p.MRClassCode)
	add("mr_number", p.MRNumber != nil, p.MRNumber)
	add("mr_date", p.MRDate != nil, p.MRDate)
	add("mr_no", p.MRNo != nil, p.MRNo)
	add("received_from", p.ReceivedFrom != nil, p.ReceivedFrom)
	add("mop", p.MOP != nil, p.MOP)
	add("cheque_no", p.ChequeNo != nil, p.ChequeNo)
	add("cheque_date", p.ChequeDate != nil, p.ChequeDate)
	add("bank", p.Bank != nil, p.Bank)
	add("bank_branch", p.BankBranch != nil, p.BankBranch)
	add("policy_office", p.PolicyOffice != nil, p.PolicyOffice)
	add("policy_office_code", p.PolicyOfficeCode != nil, p.PolicyOfficeCode)
	add("policy_class", p.PolicyClass != nil, p.PolicyClass)
	add("policy_class_code", p.PolicyClassCode != nil, p.PolicyClassCode)
	add("policy_number", p.PolicyNumber != nil, p.PolicyNumber)
	add("policy_date", p.PolicyDate != nil, p.PolicyDate)
	add("coins", p.Coins != nil, p.Coins)
	add("policy_no", p.PolicyNo != nil, p.PolicyNo)
	add("premium", p.Premium != nil, p.Premium)
	add("vat", p.VAT != nil, p.VAT)
	add("total", p.Total != nil, p.Total)
	add("stamp", p.Stamp != nil, p.Stamp)
	add("coinsnet", p.Coinsnet != nil, p.Coinsnet)
	add("note", p.Note != nil, p.Note)
	return as
}

// IsEmpty reports whether the patch contains no fields at all.
func (p ReceiptPatch) IsEmpty() bool {
	return len(p.Assignments()) == 0
}
