package store

import "github.com/policydesk/backoffice/core/filter"

// policyFilters declares the filterable fields of the policies list.
var policyFilters = filter.Table{
	{Param: "policyNumber", Column: "policy_number", Kind: filter.Partial},
	{Param: "firstName", Column: "first_name", Kind: filter.Partial},
	{Param: "lastName", Column: "last_name", Kind: filter.Partial},
	{Param: "mobile", Column: "mobile", Kind: filter.Partial},
	{Param: "email", Column: "email", Kind: filter.Partial},
	{Param: "passport", Column: "passport", Kind: filter.Partial},
	{Param: "destination", Column: "destination", Kind: filter.Partial},
	{Param: "plan", Column: "plan", Kind: filter.Exact},
	{Param: "planCode", Column: "plan_code", Kind: filter.Exact},
	{Param: "gender", Column: "gender", Kind: filter.Exact},
	{Param: "policyOffice", Column: "policy_office", Kind: filter.Exact},
	{Param: "policyOfficeCode", Column: "policy_office_code", Kind: filter.Exact},
	{Param: "policyClass", Column: "policy_class", Kind: filter.Exact},
	{Param: "policyClassCode", Column: "policy_class_code", Kind: filter.Exact},
	{Param: "policyNo", Column: "policy_no", Kind: filter.Exact},
	{Param: "currency", Column: "currency", Kind: filter.Exact},
	{Param: "countryOfResidence", Column: "country_of_residence", Kind: filter.Exact},
	{Param: "policyDate", Column: "policy_date", Kind: filter.DateRange},
	{Param: "dob", Column: "dob", Kind: filter.DateRange},
	{Param: "premium", Column: "premium", Kind: filter.NumberRange},
	{Param: "vat", Column: "vat", Kind: filter.NumberRange},
	{Param: "total", Column: "total", Kind: filter.NumberRange},
	{Param: "limitOfCover", Column: "limit_of_cover", Kind: filter.NumberRange},
	{Param: "travelDays", Column: "travel_days", Kind: filter.NumberRange},
}

// receiptFilters declares the filterable fields of the receipts list.
var receiptFilters = filter.Table{
	{Param: "mrNumber", Column: "mr_number", Kind: filter.Partial},
	{Param: "policyNumber", Column: "policy_number", Kind: filter.Partial},
	{Param: "receivedFrom", Column: "received_from", Kind: filter.Partial},
	{Param: "bank", Column: "bank", Kind: filter.Partial},
	{Param: "bankBranch", Column: "bank_branch", Kind: filter.Partial},
	{Param: "mrOffice", Column: "mr_office", Kind: filter.Exact},
	{Param: "mrOfficeCode", Column: "mr_office_code", Kind: filter.Exact},
	{Param: "mrClass", Column: "mr_class", Kind: filter.Exact},
	{Param: "mrClassCode", Column: "mr_class_code", Kind: filter.Exact},
	{Param: "mrNo", Column: "mr_no", Kind: filter.Exact},
	{Param: "mop", Column: "mop", Kind: filter.Exact},
	{Param: "policyOffice", Column: "policy_office", Kind: filter.Exact},
	{Param: "policyOfficeCode", Column: "policy_office_code", Kind: filter.Exact},
	{Param: "policyClass", Column: "policy_class", Kind: filter.Exact},
	{Param: "policyClassCode", Column: "policy_class_code", Kind: filter.Exact},
	{Param: "policyNo", Column: "policy_no", Kind: filter.Exact},
	{Param: "mrDate", Column: "mr_date", Kind: filter.DateRange},
	{Param: "chequeDate", Column: "cheque_date", Kind: filter.DateRange},
	{Param: "policyDate", Column: "policy_date", Kind: filter.DateRange},
	{Param: "premium", Column: "premium", Kind: filter.NumberRange},
	{Param: "vat", Column: "vat", Kind: filter.NumberRange},
	{Param: "total", Column: "total", Kind: filter.NumberRange},
	{Param: "stamp", Column: "stamp", Kind: filter.NumberRange},
	{Param: "coinsnet", Column: "coinsnet", Kind: filter.NumberRange},
}

// recordFilters declares the filterable fields of the records list.
var recordFilters = filter.Table{
	{Param: "title", Column: "title", Kind: filter.Partial},
	{Param: "content", Column: "content", Kind: filter.Partial},
}
