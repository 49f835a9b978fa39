package buyer

import "github.com/google/uuid"

// PageSize is the number of buyers per list page.
const PageSize = 10

// Filter narrows list and export queries. Zero values mean "any".
type Filter struct {
	Search       string
	City         City
	PropertyType PropertyType
	Status       Status
	Timeline     Timeline
	// OwnerID limits results to one owner's buyers when set.
	OwnerID uuid.UUID
}

// Page is one page of a filtered listing.
type Page struct {
	Buyers     []Buyer `json:"buyers"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	TotalPages int     `json:"totalPages"`
}

// NewPage fills the paging arithmetic for total rows.
func NewPage(buyers []Buyer, total, page int) Page {
	if buyers == nil {
		buyers = []Buyer{}
	}
	return Page{
		Buyers:     buyers,
		Total:      total,
		Page:       page,
		PageSize:   PageSize,
		TotalPages: (total + PageSize - 1) / PageSize,
	}
}

// Offset returns the row offset of a 1-based page number.
func Offset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * PageSize
}
