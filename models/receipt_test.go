package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validReceiptInput() ReceiptInput {
	return ReceiptInput{
		MROffice:         "Dhaka",
		MROfficeCode:     "040",
		MRClass:          "Misc",
		MRClassCode:      "23",
		MRNumber:         "MR-100",
		MRDate:           NewDate(2024, time.March, 20),
		MRNo:             "M-100",
		ReceivedFrom:     "Anna Smith",
		MOP:              "Cash",
		PolicyOffice:     "Dhaka",
		PolicyOfficeCode: "040",
		PolicyClass:      "Misc",
		PolicyClassCode:  "23",
		PolicyNumber:     "OMP-100",
		PolicyDate:       NewDate(2024, time.March, 15),
		Coins:            "0",
		PolicyNo:         "P-100",
		Premium:          120,
		Total:            138,
	}
}

func TestReceiptInputValidate(t *testing.T) {
	require.NoError(t, validReceiptInput().Validate())

	in := validReceiptInput()
	in.MRNumber = ""
	assert.EqualError(t, in.Validate(), "mrNumber is required")

	in = validReceiptInput()
	in.MRDate = Date{}
	assert.EqualError(t, in.Validate(), "mrDate is required")

	in = validReceiptInput()
	in.Total = -5
	assert.EqualError(t, in.Validate(), "total must not be negative")
}

func TestReceiptInputValidateCheque(t *testing.T) {
	in := validReceiptInput()
	in.MOP = MOPCheque
	assert.EqualError(t, in.Validate(), "chequeNo is required when mop is Cheque")

	chequeNo := "CH-1"
	in.ChequeNo = &chequeNo
	assert.EqualError(t, in.Validate(), "bank is required when mop is Cheque")

	bank := "City Bank"
	in.Bank = &bank
	require.NoError(t, in.Validate())

	// cheque fields stay optional for other modes of payment
	in = validReceiptInput()
	in.MOP = "Cash"
	require.NoError(t, in.Validate())
}

func TestReceiptPatch(t *testing.T) {
	assert.True(t, ReceiptPatch{}.IsEmpty())

	mrNumber := "MR-200"
	patch := ReceiptPatch{MRNumber: &mrNumber}
	assert.True(t, patch.TouchesMRKey())
	assert.False(t, patch.TouchesPolicyKey())

	policyDate := NewDate(2025, time.February, 1)
	patch = ReceiptPatch{PolicyDate: &policyDate}
	assert.False(t, patch.TouchesMRKey())
	assert.True(t, patch.TouchesPolicyKey())

	note := "settled late"
	total := 150.0
	patch = ReceiptPatch{Total: &total, Note: &note}
	assignments := patch.Assignments()
	require.Len(t, assignments, 2)
	assert.Equal(t, "total", assignments[0].Column)
	assert.Equal(t, "note", assignments[1].Column)
}
