package buyer

import (
	"time"

	"github.com/google/uuid"
)

// Field length limits.
const (
	NameMinLength  = 2
	NameMaxLength  = 80
	NotesMaxLength = 1000
)

// Buyer is a validated lead. Optional strings use "" for absent; optional
// budgets use nil.
type Buyer struct {
	ID      uuid.UUID `json:"id"`
	OwnerID uuid.UUID `json:"ownerId"`

	FullName     string       `json:"fullName"`
	Email        string       `json:"email,omitempty"`
	Phone        string       `json:"phone"`
	City         City         `json:"city"`
	PropertyType PropertyType `json:"propertyType"`
	BHK          BHK          `json:"bhk,omitempty"`
	Purpose      Purpose      `json:"purpose"`
	BudgetMin    *int64       `json:"budgetMin,omitempty"`
	BudgetMax    *int64       `json:"budgetMax,omitempty"`
	Timeline     Timeline     `json:"timeline"`
	Source       Source       `json:"source"`
	Status       Status       `json:"status"`
	Notes        string       `json:"notes,omitempty"`
	Tags         []string     `json:"tags"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Input is an untyped record as decoded from JSON or produced by the CSV
// mapper. Keys that are missing are treated as absent.
type Input map[string]any

// Input returns b's canonical fields as an untyped record that validates back
// to the same values.
func (b Buyer) Input() Input {
	in := Input{
		"fullName":     b.FullName,
		"phone":        b.Phone,
		"city":         string(b.City),
		"propertyType": string(b.PropertyType),
		"purpose":      string(b.Purpose),
		"timeline":     string(b.Timeline),
		"source":       string(b.Source),
		"status":       string(b.Status),
	}
	if b.Email != "" {
		in["email"] = b.Email
	}
	if b.BHK != "" {
		in["bhk"] = string(b.BHK)
	}
	if b.BudgetMin != nil {
		in["budgetMin"] = *b.BudgetMin
	}
	if b.BudgetMax != nil {
		in["budgetMax"] = *b.BudgetMax
	}
	if b.Notes != "" {
		in["notes"] = b.Notes
	}
	tags := make([]any, len(b.Tags))
	for i, t := range b.Tags {
		tags[i] = t
	}
	in["tags"] = tags
	return in
}

// HistoryAction distinguishes creation entries from update entries.
type HistoryAction string

const (
	ActionCreated HistoryAction = "created"
	ActionUpdated HistoryAction = "updated"
)

// SourceCSVImport tags history entries written by bulk import.
const SourceCSVImport = "csv_import"

// Change is the before and after value of one field.
type Change struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// Diff is the payload of a history entry. Source is set only on creation;
// Changes only on update.
type Diff struct {
	Action  HistoryAction     `json:"action"`
	Source  string            `json:"source,omitempty"`
	Changes map[string]Change `json:"changes,omitempty"`
}

// HistoryEntry is an immutable record of one mutation of a buyer.
type HistoryEntry struct {
	ID        uuid.UUID `json:"id"`
	BuyerID   uuid.UUID `json:"buyerId"`
	ChangedBy uuid.UUID `json:"changedBy"`
	ChangedAt time.Time `json:"changedAt"`
	Diff      Diff      `json:"diff"`

	// Populated on reads that join the acting user.
	ChangedByName  string `json:"changedByName,omitempty"`
	ChangedByEmail string `json:"changedByEmail,omitempty"`
}
