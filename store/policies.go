package store

import (
	"context"
	"errors"
	"net/url"

	"github.com/huandu/go-sqlbuilder"

	"github.com/policydesk/backoffice/core"
	"github.com/policydesk/backoffice/core/csql"
	"github.com/policydesk/backoffice/core/filter"
	"github.com/policydesk/backoffice/models"
)

var policyColumns = []string{
	"id", "plan", "plan_code", "policy_office", "policy_office_code",
	"policy_class", "policy_class_code", "policy_number", "policy_date",
	"policy_no", "first_name", "last_name", "dob", "gender", "address",
	"mobile", "email", "passport", "destination", "travel_date_from",
	"travel_days", "travel_date_to", "country_of_residence",
	"limit_of_cover", "currency", "premium", "vat", "total",
	"created_at", "updated_at",
}

func scanPolicy(sc scanner) (*models.Policy, error) {
	var p models.Policy
	err := sc.Scan(
		&p.ID, &p.Plan, &p.PlanCode, &p.PolicyOffice, &p.PolicyOfficeCode,
		&p.PolicyClass, &p.PolicyClassCode, &p.PolicyNumber, &p.PolicyDate,
		&p.PolicyNo, &p.FirstName, &p.LastName, &p.DOB, &p.Gender, &p.Address,
		&p.Mobile, &p.Email, &p.Passport, &p.Destination, &p.TravelDateFrom,
		&p.TravelDays, &p.TravelDateTo, &p.CountryOfResidence,
		&p.LimitOfCover, &p.Currency, &p.Premium, &p.VAT, &p.Total,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePolicy validates the policy number against the year of the
// policy date, inserts the policy and returns the stored record.
func (s *Store) CreatePolicy(ctx context.Context, in models.PolicyInput) (*models.Policy, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	year := int64(in.PolicyDate.Year())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	unique, err := uniqueWithinYear(ctx, tx, "policies", "policy_number", "policy_date", in.PolicyNumber, year, 0)
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, policyConflict(in.PolicyNumber, year)
	}

	query, args := sqlbuilder.Buildf(`INSERT INTO policies
		(plan, plan_code, policy_office, policy_office_code,
			policy_class, policy_class_code, policy_number, policy_date,
			policy_no, first_name, last_name, dob, gender, address,
			mobile, email, passport, destination, travel_date_from,
			travel_days, travel_date_to, country_of_residence,
			limit_of_cover, currency, premium, vat, total) VALUES
		(%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		RETURNING id, created_at, updated_at`,
		in.Plan, in.PlanCode, in.PolicyOffice, in.PolicyOfficeCode,
		in.PolicyClass, in.PolicyClassCode, in.PolicyNumber, in.PolicyDate,
		in.PolicyNo, in.FirstName, in.LastName, in.DOB, in.Gender, in.Address,
		in.Mobile, in.Email, in.Passport, in.Destination, in.TravelDateFrom,
		in.TravelDays, in.TravelDateTo, in.CountryOfResidence,
		in.LimitOfCover, in.Currency, in.Premium, in.VAT, in.Total).
		BuildWithFlavor(sqlFlavor)

	p := models.Policy{
		Plan:               in.Plan,
		PlanCode:           in.PlanCode,
		PolicyOffice:       in.PolicyOffice,
		PolicyOfficeCode:   in.PolicyOfficeCode,
		PolicyClass:        in.PolicyClass,
		PolicyClassCode:    in.PolicyClassCode,
		PolicyNumber:       in.PolicyNumber,
		PolicyDate:         in.PolicyDate,
		PolicyNo:           in.PolicyNo,
		FirstName:          in.FirstName,
		LastName:           in.LastName,
		DOB:                in.DOB,
		Gender:             in.Gender,
		Address:            in.Address,
		Mobile:             in.Mobile,
		Email:              in.Email,
		Passport:           in.Passport,
		Destination:        in.Destination,
		TravelDateFrom:     in.TravelDateFrom,
		TravelDays:         in.TravelDays,
		TravelDateTo:       in.TravelDateTo,
		CountryOfResidence: in.CountryOfResidence,
		LimitOfCover:       in.LimitOfCover,
		Currency:           in.Currency,
		Premium:            in.Premium,
		VAT:                in.VAT,
		Total:              in.Total,
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if uniqueViolation(err) == "policies_number_year" {
			return nil, policyConflict(in.PolicyNumber, year)
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPolicy returns the policy with the given id, excluding soft-deleted
// rows.
func (s *Store) GetPolicy(ctx context.Context, id int64) (*models.Policy, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	sb := sqlFlavor.NewSelectBuilder().Select(policyColumns...).From("policies")
	sb.Where(sb.Equal("id", id), "is_deleted = FALSE")
	query, args := sb.Build()

	p, err := scanPolicy(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, csql.ErrNoRows) {
		return nil, core.NotFoundError{}
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPolicies returns the page of policies matching the query filters
// together with the total match count before pagination. Ordered by
// policy date, newest first.
func (s *Store) ListPolicies(ctx context.Context, values url.Values, page filter.Page) ([]models.Policy, int, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	cb := sqlFlavor.NewSelectBuilder().Select("COUNT(1)").From("policies")
	cb.Where("is_deleted = FALSE")
	if err := policyFilters.Apply(cb, values); err != nil {
		return nil, 0, err
	}
	query, args := cb.Build()
	var total int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sb := sqlFlavor.NewSelectBuilder().Select(policyColumns...).From("policies")
	sb.Where("is_deleted = FALSE")
	if err := policyFilters.Apply(sb, values); err != nil {
		return nil, 0, err
	}
	sb.OrderBy("policy_date DESC", "id DESC")
	sb.Limit(page.Limit).Offset(page.Offset())
	query, args = sb.Build()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	policies := []models.Policy{}
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, 0, err
		}
		policies = append(policies, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return policies, total, nil
}

// UpdatePolicy applies the patch to the policy with the given id and
// returns the record as re-read after the commit. The uniqueness check
// runs again when the patch touches the natural key.
func (s *Store) UpdatePolicy(ctx context.Context, id int64, patch models.PolicyPatch) (*models.Policy, error) {
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

	var currentNumber string
	var currentDate models.Date
	sb := sqlFlavor.NewSelectBuilder().Select("policy_number", "policy_date").From("policies")
	sb.Where(sb.Equal("id", id), "is_deleted = FALSE")
	query, args := sb.Build()
	err = tx.QueryRowContext(ctx, query, args...).Scan(&currentNumber, &currentDate)
	if errors.Is(err, csql.ErrNoRows) {
		return nil, core.NotFoundError{}
	}
	if err != nil {
		return nil, err
	}

	number, date := currentNumber, currentDate
	if patch.PolicyNumber != nil {
		number = *patch.PolicyNumber
	}
	if patch.PolicyDate != nil {
		date = *patch.PolicyDate
	}
	year := int64(date.Year())
	if patch.TouchesNaturalKey() {
		unique, err := uniqueWithinYear(ctx, tx, "policies", "policy_number", "policy_date", number, year, id)
		if err != nil {
			return nil, err
		}
		if !unique {
			return nil, policyConflict(number, year)
		}
	}

	ub := sqlFlavor.NewUpdateBuilder().Update("policies")
	for _, a := range assignments {
		ub.SetMore(ub.Assign(a.Column, a.Value))
	}
	ub.SetMore("updated_at = NOW()")
	ub.Where(ub.Equal("id", id), "is_deleted = FALSE")
	query, args = ub.Build()

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		if uniqueViolation(err) == "policies_number_year" {
			return nil, policyConflict(number, year)
		}
		return nil, err
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
	return s.GetPolicy(ctx, id)
}

// DeletePolicy flags the policy as deleted. Deleting an already deleted
// policy is reported distinctly from deleting an unknown one.
func (s *Store) DeletePolicy(ctx context.Context, id int64) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	ub := sqlFlavor.NewUpdateBuilder().Update("policies")
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
		return s.deletedState(ctx, "policies", "policy", id)
	}
	return nil
}
