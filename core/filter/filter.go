/*Package filter turns request query parameters into SQL conditions.

Every entity declares a filter table, a list of filterable fields with
their query parameter name, database column and match kind. Applying a
table to a select builder adds one bound condition per parameter;
unknown parameters and malformed values are rejected, never silently
dropped.
*/
package filter

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/huandu/go-sqlbuilder"

	"github.com/policydesk/backoffice/core"
	"github.com/policydesk/backoffice/models"
)

// Kind is the match semantics of a filterable field.
type Kind int

const (
	// Partial matches a case-insensitive substring.
	Partial Kind = iota
	// Exact matches the full value.
	Exact
	// DateRange matches an inclusive date interval via the derived
	// parameters <param>From and <param>To.
	DateRange
	// NumberRange matches an inclusive numeric interval via the derived
	// parameters <param>_min and <param>_max.
	NumberRange
)

// Field is one filterable field of an entity.
type Field struct {
	Param  string
	Column string
	Kind   Kind
}

// Table is the full set of filterable fields of an entity.
type Table []Field

// reserved parameters handled by pagination, not by the filter table
func reserved(param string) bool {
	return param == "page" || param == "limit"
}

// Apply adds one condition per recognized query parameter to the select
// builder, in table declaration order so the generated SQL is stable.
// It returns a validation error for malformed or empty values and for
// parameters no field recognizes.
func (t Table) Apply(sb *sqlbuilder.SelectBuilder, values url.Values) error {
	known := map[string]bool{}
	for _, f := range t {
		switch f.Kind {
		case Partial, Exact:
			known[f.Param] = true
		case DateRange:
			known[f.Param+"From"] = true
			known[f.Param+"To"] = true
		case NumberRange:
			known[f.Param+"_min"] = true
			known[f.Param+"_max"] = true
		}
	}
	var unknown, empty []string
	for param := range values {
		if reserved(param) {
			continue
		}
		if !known[param] {
			unknown = append(unknown, param)
		} else if values.Get(param) == "" {
			empty = append(empty, param)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return core.Validationf("unknown filter parameter '%s'", unknown[0])
	}
	if len(empty) > 0 {
		sort.Strings(empty)
		return core.Validationf("empty value for filter parameter '%s'", empty[0])
	}

	for _, f := range t {
		switch f.Kind {
		case Partial:
			if v := values.Get(f.Param); v != "" {
				pattern := "%" + strings.ToLower(v) + "%"
				sb.Where(sb.Like("LOWER("+f.Column+")", pattern))
			}
		case Exact:
			if v := values.Get(f.Param); v != "" {
				sb.Where(sb.Equal(f.Column, v))
			}
		case DateRange:
			from, to := f.Param+"From", f.Param+"To"
			if v := values.Get(from); v != "" {
				d, err := models.ParseDate(v)
				if err != nil {
					return core.Validationf("invalid date '%s' for filter parameter '%s'", v, from)
				}
				sb.Where(sb.GreaterEqualThan(f.Column, d))
			}
			if v := values.Get(to); v != "" {
				d, err := models.ParseDate(v)
				if err != nil {
					return core.Validationf("invalid date '%s' for filter parameter '%s'", v, to)
				}
				sb.Where(sb.LessEqualThan(f.Column, d))
			}
		case NumberRange:
			min, max := f.Param+"_min", f.Param+"_max"
			if v := values.Get(min); v != "" {
				n, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return core.Validationf("invalid number '%s' for filter parameter '%s'", v, min)
				}
				sb.Where(sb.GreaterEqualThan(f.Column, n))
			}
			if v := values.Get(max); v != "" {
				n, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return core.Validationf("invalid number '%s' for filter parameter '%s'", v, max)
				}
				sb.Where(sb.LessEqualThan(f.Column, n))
			}
		}
	}
	return nil
}
