package domain

import "strings"

const (
	SortAsc  = "asc"
	SortDesc = "desc"

	DefaultSortField = "payee_last_name"
)

// sortableFields are the payment fields a listing may be ordered by.
var sortableFields = map[string]bool{
	"payee_first_name":     true,
	"payee_last_name":      true,
	"payee_email":          true,
	"payee_city":           true,
	"payee_country":        true,
	"payee_payment_status": true,
	"payee_due_date":       true,
	"payee_added_date_utc": true,
	"due_amount":           true,
	"total_due":            true,
	"currency":             true,
}

// SortableField reports whether a listing may be sorted by field.
func SortableField(field string) bool {
	return sortableFields[field]
}

// TextSearchFields are covered by the full-text index.
var TextSearchFields = []string{
	"payee_first_name",
	"payee_last_name",
	"payee_email",
	"payee_address_line_1",
	"payee_address_line_2",
	"payee_city",
	"payee_country",
	"payee_province_or_state",
}

// ListQuery holds the filter, sort and page of a listing.
// Page is 1-based.
type ListQuery struct {
	Status    string
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	Size      int
}

// Skip is the number of matching records before the requested page.
func (q ListQuery) Skip() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Size
}

// Descending reports whether results are ordered high to low.
func (q ListQuery) Descending() bool {
	return q.SortOrder == SortDesc
}

// IsEmailSearch reports whether the search term targets the email field
// instead of the full-text index.
func (q ListQuery) IsEmailSearch() bool {
	return strings.Contains(q.Search, "@")
}

// ListResult is one page of payments plus the pre-pagination total.
type ListResult struct {
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Size  int        `json:"size"`
	Data  []*Payment `json:"data"`
}
