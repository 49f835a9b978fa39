package buyer

import "slices"

// Changes compares the canonical fields of old and next and returns only
// those that differ. Identity and timestamp fields are not compared. Tags
// compare element-wise and in order.
func Changes(old, next Buyer) map[string]Change {
	changes := make(map[string]Change)
	add := func(field string, a, b any) {
		changes[field] = Change{Old: a, New: b}
	}

	if old.FullName != next.FullName {
		add("fullName", old.FullName, next.FullName)
	}
	if old.Email != next.Email {
		add("email", optString(old.Email), optString(next.Email))
	}
	if old.Phone != next.Phone {
		add("phone", old.Phone, next.Phone)
	}
	if old.City != next.City {
		add("city", string(old.City), string(next.City))
	}
	if old.PropertyType != next.PropertyType {
		add("propertyType", string(old.PropertyType), string(next.PropertyType))
	}
	if old.BHK != next.BHK {
		add("bhk", optString(string(old.BHK)), optString(string(next.BHK)))
	}
	if old.Purpose != next.Purpose {
		add("purpose", string(old.Purpose), string(next.Purpose))
	}
	if !equalBudget(old.BudgetMin, next.BudgetMin) {
		add("budgetMin", optInt(old.BudgetMin), optInt(next.BudgetMin))
	}
	if !equalBudget(old.BudgetMax, next.BudgetMax) {
		add("budgetMax", optInt(old.BudgetMax), optInt(next.BudgetMax))
	}
	if old.Timeline != next.Timeline {
		add("timeline", string(old.Timeline), string(next.Timeline))
	}
	if old.Source != next.Source {
		add("source", string(old.Source), string(next.Source))
	}
	if old.Status != next.Status {
		add("status", string(old.Status), string(next.Status))
	}
	if old.Notes != next.Notes {
		add("notes", optString(old.Notes), optString(next.Notes))
	}
	if !slices.Equal(old.Tags, next.Tags) {
		add("tags", tagsValue(old.Tags), tagsValue(next.Tags))
	}

	return changes
}

// UpdateDiff builds the history payload for an update. ok is false when
// nothing changed, in which case no history entry should be written.
func UpdateDiff(old, next Buyer) (diff Diff, ok bool) {
	changes := Changes(old, next)
	if len(changes) == 0 {
		return Diff{}, false
	}
	return Diff{Action: ActionUpdated, Changes: changes}, true
}

// CreatedDiff builds the history payload for a new buyer. source may be
// empty for interactive creation.
func CreatedDiff(source string) Diff {
	return Diff{Action: ActionCreated, Source: source}
}

func equalBudget(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func optString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func optInt(n *int64) any {
	if n == nil {
		return nil
	}
	return *n
}

func tagsValue(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
