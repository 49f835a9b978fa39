package buyer

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBuyer() Buyer {
	lo := int64(4000000)
	return Buyer{
		ID:           uuid.New(),
		OwnerID:      uuid.New(),
		FullName:     "Asha Verma",
		Phone:        "9876501234",
		City:         CityPanchkula,
		PropertyType: PropertyApartment,
		BHK:          BHKTwo,
		Purpose:      PurposeBuy,
		BudgetMin:    &lo,
		Timeline:     TimelineZeroToThree,
		Source:       SourceWebsite,
		Status:       StatusNew,
		Tags:         []string{"hot"},
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestUpdateDiff_SameValueIsNoOp(t *testing.T) {
	b := sampleBuyer()
	_, ok := UpdateDiff(b, b)
	assert.False(t, ok)

	// Equal content behind different pointers and slices is still a no-op.
	clone := b
	lo := *b.BudgetMin
	clone.BudgetMin = &lo
	clone.Tags = append([]string(nil), b.Tags...)
	clone.UpdatedAt = b.UpdatedAt.Add(time.Hour)
	_, ok = UpdateDiff(b, clone)
	assert.False(t, ok)
}

func TestUpdateDiff_ReportsOnlyChangedFields(t *testing.T) {
	old := sampleBuyer()
	next := old
	next.Status = StatusContacted
	next.Email = "asha@example.com"
	next.BudgetMin = nil
	hi := int64(6000000)
	next.BudgetMax = &hi

	diff, ok := UpdateDiff(old, next)
	require.True(t, ok)
	assert.Equal(t, ActionUpdated, diff.Action)
	assert.Empty(t, diff.Source)

	assert.Equal(t, map[string]Change{
		"status":    {Old: "NEW", New: "CONTACTED"},
		"email":     {Old: nil, New: "asha@example.com"},
		"budgetMin": {Old: int64(4000000), New: nil},
		"budgetMax": {Old: nil, New: int64(6000000)},
	}, diff.Changes)
}

func TestChanges_Tags(t *testing.T) {
	old := sampleBuyer()
	old.Tags = []string{"a", "b"}

	reordered := old
	reordered.Tags = []string{"b", "a"}
	assert.Contains(t, Changes(old, reordered), "tags")

	emptied := old
	emptied.Tags = nil
	c := Changes(old, emptied)
	require.Contains(t, c, "tags")
	assert.Equal(t, []string{}, c["tags"].New)

	nilVsEmpty := old
	nilVsEmpty.Tags = nil
	other := old
	other.Tags = []string{}
	assert.NotContains(t, Changes(nilVsEmpty, other), "tags")
}

func TestChanges_EveryField(t *testing.T) {
	old := sampleBuyer()
	hi := int64(9)
	next := Buyer{
		FullName:     "Someone Else",
		Email:        "x@example.com",
		Phone:        "1111111111",
		City:         CityOther,
		PropertyType: PropertyOffice,
		BHK:          "",
		Purpose:      PurposeRent,
		BudgetMin:    nil,
		BudgetMax:    &hi,
		Timeline:     TimelineExploring,
		Source:       SourceCall,
		Status:       StatusDropped,
		Notes:        "n",
		Tags:         []string{"cold"},
	}

	c := Changes(old, next)
	for _, field := range ExportHeaders {
		assert.Contains(t, c, field)
	}
	assert.Len(t, c, len(ExportHeaders))
}

func TestCreatedDiff(t *testing.T) {
	assert.Equal(t, Diff{Action: ActionCreated}, CreatedDiff(""))
	assert.Equal(t, Diff{Action: ActionCreated, Source: "csv_import"}, CreatedDiff(SourceCSVImport))
}
