package store

import (
	"context"
	"database/sql"
	"errors"
	"net/url"

	"github.com/huandu/go-sqlbuilder"

	"github.com/policydesk/backoffice/core"
	"github.com/policydesk/backoffice/core/csql"
	"github.com/policydesk/backoffice/core/filter"
	"github.com/policydesk/backoffice/models"
)

var receiptColumns = []string{
	"id", "mr_office", "mr_office_code", "mr_class", "mr_class_code",
	"mr_number", "mr_date", "mr_no", "received_from", "mop",
	"cheque_no", "cheque_date", "bank", "bank_branch",
	"policy_office", "policy_office_code", "policy_class",
	"policy_class_code", "policy_number", "policy_date", "coins",
	"policy_no", "premium", "vat", "total", "stamp", "coinsnet", "note",
	"created_at", "updated_at",
}

func scanReceipt(sc scanner) (*models.Receipt, error) {
	var r models.Receipt
	var chequeNo, bank, bankBranch, note sql.NullString
	var chequeDate sql.NullTime
	var vat, stamp, coinsnet sql.NullFloat64

	err := sc.Scan(
		&r.ID, &r.MROffice, &r.MROfficeCode, &r.MRClass, &r.MRClassCode,
		&r.MRNumber, &r.MRDate, &r.MRNo, &r.ReceivedFrom, &r.MOP,
		&chequeNo, &chequeDate, &bank, &bankBranch,
		&r.PolicyOffice, &r.PolicyOfficeCode, &r.PolicyClass,
		&r.PolicyClassCode, &r.PolicyNumber, &r.PolicyDate, &r.Coins,
		&r.PolicyNo, &r.Premium, &vat, &r.Total, &stamp, &coinsnet, &note,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if chequeNo.Valid {
		r.ChequeNo = &chequeNo.String
	}
	if chequeDate.Valid {
		d := models.NewDate(chequeDate.Time.Year(), chequeDate.Time.Month(), chequeDate.Time.Day())
		r.ChequeDate = &d
	}
	if bank.Valid {
		r.Bank = &bank.String
	}
	if bankBranch.Valid {
		r.BankBranch = &bankBranch.String
	}
	if vat.Valid {
		r.VAT = &vat.Float64
	}
	if stamp.Valid {
		r.Stamp = &stamp.Float64
	}
	if coinsnet.Valid {
		r.Coinsnet = &coinsnet.Float64
	}
	if note.Valid {
		r.Note = &note.String
	}
	return &r, nil
}

// checkReceiptKeys runs both uniqueness probes: the receipt number per
// year of the receipt date, and the settled policy number per year of
// the policy date.
func checkReceiptKeys(ctx context.Context, q queryable, mrNumber string, mrYear int64, policyNumber string, policyYear, excludeID int64) error {
	unique, err := uniqueWithinYear(ctx, q, "receipts", "mr_number", "mr_date", mrNumber, mrYear, excludeID)
	if err != nil {
		return err
	}
	if !unique {
		return receiptConflict(mrNumber, mrYear)
	}
	unique, err = uniqueWithinYear(ctx, q, "receipts", "policy_number", "policy_date", policyNumber, policyYear, excludeID)
	if err != nil {
		return err
	}
	if !unique {
		return receiptPolicyConflict(policyNumber, policyYear)
	}
	return nil
}

func receiptViolation(err error, mrNumber string, mrYear int64, policyNumber string, policyYear int64) error {
	switch uniqueViolation(err) {
	case "receipts_mr_number_year":
		return receiptConflict(mrNumber, mrYear)
	case "receipts_policy_number_year":
		return receiptPolicyConflict(policyNumber, policyYear)
	}
	return err
}

// CreateReceipt validates both natural keys, inserts the receipt and
// returns the stored record.
func (s *Store) CreateReceipt(ctx context.Context, in models.ReceiptInput) (*models.Receipt, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	mrYear := int64(in.MRDate.Year())
	policyYear := int64(in.PolicyDate.Year())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := checkReceiptKeys(ctx, tx, in.MRNumber, mrYear, in.PolicyNumber, policyYear, 0); err != nil {
		return nil, err
	}

	query, args := sqlbuilder.Buildf(`INSERT INTO receipts
		(mr_office, mr_office_code, mr_class, mr_class_code,
			mr_number, mr_date, mr_no, received_from, mop,
			cheque_no, cheque_date, bank, bank_branch,
			policy_office, policy_office_code, policy_class,
			policy_class_code, policy_number, policy_date, coins,
			policy_no, premium, vat, total, stamp, coinsnet, note) VALUES
		(%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		RETURNING id, created_at, updated_at`,
		in.MROffice, in.MROfficeCode, in.MRClass, in.MRClassCode,
		in.MRNumber, in.MRDate, in.MRNo, in.ReceivedFrom, in.MOP,
		in.ChequeNo, in.ChequeDate, in.Bank, in.BankBranch,
		in.PolicyOffice, in.PolicyOfficeCode, in.PolicyClass,
		in.PolicyClassCode, in.PolicyNumber, in.PolicyDate, in.Coins,
		in.PolicyNo, in.Premium, in.VAT, in.Total, in.Stamp, in.Coinsnet, in.Note).
		BuildWithFlavor(sqlFlavor)

	r := models.Receipt{
		MROffice:         in.MROffice,
		MROfficeCode:     in.MROfficeCode,
		MRClass:          in.MRClass,
		MRClassCode:      in.MRClassCode,
		MRNumber:         in.MRNumber,
		MRDate:           in.MRDate,
		MRNo:             in.MRNo,
		ReceivedFrom:     in.ReceivedFrom,
		MOP:              in.MOP,
		ChequeNo:         in.ChequeNo,
		ChequeDate:       in.ChequeDate,
		Bank:             in.Bank,
		BankBranch:       in.BankBranch,
		PolicyOffice:     in.PolicyOffice,
		PolicyOfficeCode: in.PolicyOfficeCode,
		PolicyClass:      in.PolicyClass,
		PolicyClassCode:  in.PolicyClassCode,
		PolicyNumber:     in.PolicyNumber,
		PolicyDate:       in.PolicyDate,
		Coins:            in.Coins,
		PolicyNo:         in.PolicyNo,
		Premium:          in.Premium,
		VAT:              in.VAT,
		Total:            in.Total,
		Stamp:            in.Stamp,
		Coinsnet:         in.Coinsnet,
		Note:             in.Note,
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, receiptViolation(err, in.MRNumber, mrYear, in.PolicyNumber, policyYear)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetReceipt returns the receipt with the given id, excluding
// soft-deleted rows.
func (s *Store) GetReceipt(ctx context.Context, id int64) (*models.Receipt, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	sb := sqlFlavor.NewSelectBuilder().Select(receiptColumns...).From("receipts")
	sb.Where(sb.Equal("id", id), "is_deleted = FALSE")
	query, args := sb.Build()

	r, err := scanReceipt(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, csql.ErrNoRows) {
		return nil, core.NotFoundError{}
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListReceipts returns the page of receipts matching the query filters
// together with the total match count before pagination. Ordered by
// receipt date, newest first.
func (s *Store) ListReceipts(ctx context.Context, values url.Values, page filter.Page) ([]models.Receipt, int, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	cb := sqlFlavor.NewSelectBuilder().Select("COUNT(1)").From("receipts")
	cb.Where("is_deleted = FALSE")
	if err := receiptFilters.Apply(cb, values); err != nil {
		return nil, 0, err
	}
	query, args := cb.Build()
	var total int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sb := sqlFlavor.NewSelectBuilder().Select(receiptColumns...).From("receipts")
	sb.Where("is_deleted = FALSE")
	if err := receiptFilters.Apply(sb, values); err != nil {
		return nil, 0, err
	}
	sb.OrderBy("mr_date DESC", "id DESC")
	sb.Limit(page.Limit).Offset(page.Offset())
	query, args = sb.Build()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	receipts := []models.Receipt{}
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, 0, err
		}
		receipts = append(receipts, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return receipts, total, nil
}

// UpdateReceipt applies the patch to the receipt with the given id and
// returns the record as re-read after the commit. Both uniqueness
// checks run again when the patch touches the respective natural key,
// and the cheque field requirement is checked against the state the
// patch produces.
func (s *Store) UpdateReceipt(ctx context.Context, id int64, patch models.ReceiptPatch) (*models.Receipt, error) {
	assignments := patch.Assignments()
	if len(assignments) == 0 {
		return nil, core.Validationf("no valid fields to update")
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var mrNumber, policyNumber, mop string
	var mrDate, policyDate models.Date
	var chequeNo, bank sql.NullString
	sb := sqlFlavor.NewSelectBuilder().Select("mr_number", "mr_date", "policy_number", "policy_date", "mop", "cheque_no", "bank").From("receipts")
	sb.Where(sb.Equal("id", id), "is_deleted = FALSE")
	query, args := sb.Build()
	err = tx.QueryRowContext(ctx, query, args...).Scan(&mrNumber, &mrDate, &policyNumber, &policyDate, &mop, &chequeNo, &bank)
	if errors.Is(err, csql.ErrNoRows) {
		return nil, core.NotFoundError{}
	}
	if err != nil {
		return nil, err
	}

	// the cheque fields must hold for the state the patch produces, not
	// just for the fields it touches
	if patch.MOP != nil {
		mop = *patch.MOP
	}
	effectiveChequeNo := chequeNo.String
	if patch.ChequeNo != nil {
		effectiveChequeNo = *patch.ChequeNo
	}
	effectiveBank := bank.String
	if patch.Bank != nil {
		effectiveBank = *patch.Bank
	}
	if mop == models.MOPCheque {
		if effectiveChequeNo == "" {
			return nil, core.Validationf("chequeNo is required when mop is Cheque")
		}
		if effectiveBank == "" {
			return nil, core.Validationf("bank is required when mop is Cheque")
		}
	}

	if patch.MRNumber != nil {
		mrNumber = *patch.MRNumber
	}
	if patch.MRDate != nil {
		mrDate = *patch.MRDate
	}
	if patch.PolicyNumber != nil {
		policyNumber = *patch.PolicyNumber
	}
	if patch.PolicyDate != nil {
		policyDate = *patch.PolicyDate
	}
	mrYear := int64(mrDate.Year())
	policyYear := int64(policyDate.Year())

	if patch.TouchesMRKey() {
		unique, err := uniqueWithinYear(ctx, tx, "receipts", "mr_number", "mr_date", mrNumber, mrYear, id)
		if err != nil {
			return nil, err
		}
		if !unique {
			return nil, receiptConflict(mrNumber, mrYear)
		}
	}
	if patch.TouchesPolicyKey() {
		unique, err := uniqueWithinYear(ctx, tx, "receipts", "policy_number", "policy_date", policyNumber, policyYear, id)
		if err != nil {
			return nil, err
		}
		if !unique {
			return nil, receiptPolicyConflict(policyNumber, policyYear)
		}
	}

	ub := sqlFlavor.NewUpdateBuilder().Update("receipts")
	for _, a := range assignments {
		ub.SetMore(ub.Assign(a.Column, a.Value))
	}
	ub.SetMore("updated_at = NOW()")
	ub.Where(ub.Equal("id", id), "is_deleted = FALSE")
	query, args = ub.Build()

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, receiptViolation(err, mrNumber, mrYear, policyNumber, policyYear)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, core.NotFoundError{}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetReceipt(ctx, id)
}

// DeleteReceipt flags the receipt as deleted.
func (s *Store) DeleteReceipt(ctx context.Context, id int64) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	ub := sqlFlavor.NewUpdateBuilder().Update("receipts")
	ub.Set("is_deleted = TRUE", "updated_at = NOW()")
	ub.Where(ub.Equal("id", id), "is_deleted = FALSE")
	query, args := ub.Build()

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.deletedState(ctx, "receipts", "receipt", id)
	}
	return nil
}
