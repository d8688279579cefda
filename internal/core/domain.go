package core

import (
	"errors"
	"strings"
	"time"
)

const (
	CategoryOperation Category = "operation"
	CategoryFinancial Category = "financial"
	CategoryOther     Category = "other"
)

// DateLayout is the wire format for calendar dates. Dates carry no time
// component; the string form is kept as the stored value.
const DateLayout = "2006-01-02"

type (
	// Category classifies an expense. The set is fixed; the server rejects
	// anything else.
	Category string

	// Expense is a single record as returned by the expense service. Cost is
	// kept as the serialized decimal string; parse it only at the point of
	// aggregation or display.
	Expense struct {
		ID          int64    `json:"id"`
		Header      string   `json:"header"`
		Description string   `json:"description"`
		Category    Category `json:"category"`
		Cost        string   `json:"cost"`
		Date        string   `json:"date"`
	}

	// CategorySummary is one aggregate row from the summary endpoint.
	// Categories with no matching records may be absent entirely.
	CategorySummary struct {
		Category Category `json:"category"`
		Total    float64  `json:"total"`
	}

	// Draft is a new expense before submission. It has no identity; the
	// server assigns one on create.
	Draft struct {
		Header      string   `json:"header"`
		Description string   `json:"description"`
		Category    Category `json:"category"`
		Cost        string   `json:"cost"`
		Date        string   `json:"date"`
	}
)

var (
	ErrEmptyHeader     = errors.New("empty header")
	ErrEmptyDate       = errors.New("empty date")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidCost     = errors.New("invalid cost")
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryOperation, CategoryFinancial, CategoryOther:
		return true
	}
	return false
}

// Categories returns the fixed category set in display order.
func Categories() []Category {
	return []Category{CategoryOperation, CategoryFinancial, CategoryOther}
}

// Validate checks the fields a draft must carry before submission: a header,
// a date, and a known category. Cost is deliberately not checked here; an
// empty or malformed cost is allowed through to the transport layer and left
// to the server to reject.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Header) == "" {
		return ErrEmptyHeader
	}
	if strings.TrimSpace(d.Date) == "" {
		return ErrEmptyDate
	}
	if !d.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

// ParseDate parses a stored date string. The zero time and an error are
// returned for anything that is not a plain calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}
