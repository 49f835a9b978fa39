package buyer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// Dot-separated atoms on both sides: no leading, trailing or doubled dots.
	emailPattern = regexp.MustCompile(`^[^\s@.]+(\.[^\s@.]+)*@[^\s@.]+(\.[^\s@.]+)+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10,15}$`)
)

// ValidEmail reports whether s looks like a deliverable address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Messages shared with the form layer.
const (
	MsgRequired       = "Required"
	MsgNameTooShort   = "Name must be at least 2 characters"
	MsgNameTooLong    = "Name must be at most 80 characters"
	MsgInvalidEmail   = "Invalid email"
	MsgInvalidPhone   = "Phone must be 10-15 digits"
	MsgBHKRequired    = "BHK is required for Apartment and Villa"
	MsgInvalidBudget  = "Budget must be a non-negative whole number"
	MsgBudgetRange    = "Budget Max must be greater than or equal to Budget Min"
	MsgNotesTooLong   = "Notes must be at most 1000 characters"
	MsgTagsNotList    = "Tags must be a list"
	MsgExpectedString = "Expected string"
)

// ParseInput decodes a JSON object into an Input. Anything that is not a
// JSON object fails with *StructuralInputError.
func ParseInput(data []byte) (Input, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, &StructuralInputError{Reason: "empty body"}
	}
	if data[0] != '{' {
		return nil, &StructuralInputError{Reason: "body must be a JSON object"}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var in Input
	if err := dec.Decode(&in); err != nil {
		return nil, &StructuralInputError{Reason: "malformed JSON", Err: err}
	}
	if dec.More() {
		return nil, &StructuralInputError{Reason: "trailing data after JSON object"}
	}
	return in, nil
}

// validator accumulates field errors for one record.
type validator struct {
	in   Input
	errs []FieldError
}

func (v *validator) fail(field, msg string) {
	v.errs = append(v.errs, FieldError{Field: field, Message: msg})
}

// present reports whether key holds a value other than nil.
func (v *validator) present(key string) bool {
	val, ok := v.in[key]
	return ok && val != nil
}

// str reads a string field. ok is false when the field is absent or was
// rejected for having the wrong type.
func (v *validator) str(key string) (string, bool) {
	val, exists := v.in[key]
	if !exists || val == nil {
		return "", false
	}
	s, isString := val.(string)
	if !isString {
		v.fail(key, fmt.Sprintf("Expected string, received %s", typeName(val)))
		return "", false
	}
	return s, true
}

func (v *validator) requiredStr(key string) (string, bool) {
	if !v.present(key) {
		v.fail(key, MsgRequired)
		return "", false
	}
	return v.str(key)
}

// enum validates key against field's domain. Absent values are reported only
// when required is set.
func (v *validator) enum(field Field, required bool) (string, bool) {
	key := string(field)
	var (
		s  string
		ok bool
	)
	if required {
		s, ok = v.requiredStr(key)
	} else {
		s, ok = v.str(key)
	}
	if !ok {
		return "", false
	}
	if !IsValidCode(field, s) {
		v.fail(key, fmt.Sprintf("Invalid value %q. Expected one of: %s",
			s, strings.Join(CodesFor(field), ", ")))
		return "", false
	}
	return s, true
}

// budget coerces a number or digit-only string. Empty string and absent both
// yield nil without error.
func (v *validator) budget(key string) (*int64, bool) {
	val, exists := v.in[key]
	if !exists || val == nil {
		return nil, true
	}

	n, err := coerceBudget(val)
	if err != nil {
		v.fail(key, MsgInvalidBudget)
		return nil, false
	}
	return n, true
}

func coerceBudget(val any) (*int64, error) {
	var n int64
	switch x := val.(type) {
	case string:
		if x == "" {
			return nil, nil
		}
		if !isDigits(x) {
			return nil, fmt.Errorf("not digits: %q", x)
		}
		parsed, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return nil, err
		}
		n = parsed
	case json.Number:
		parsed, err := x.Int64()
		if err != nil {
			// 1000.0 and 1e3 are whole numbers too.
			f, ferr := x.Float64()
			if ferr != nil {
				return nil, err
			}
			if parsed, err = wholeNumber(f); err != nil {
				return nil, err
			}
		}
		n = parsed
	case float64:
		parsed, err := wholeNumber(x)
		if err != nil {
			return nil, err
		}
		n = parsed
	case int:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	default:
		return nil, fmt.Errorf("unsupported type %T", val)
	}
	if n < 0 {
		return nil, fmt.Errorf("negative: %d", n)
	}
	return &n, nil
}

func wholeNumber(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("not a whole number: %v", f)
	}
	return int64(f), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (v *validator) tags() []string {
	val, exists := v.in["tags"]
	if !exists || val == nil {
		return []string{}
	}

	switch list := val.(type) {
	case []string:
		return append([]string{}, list...)
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				v.fail(fmt.Sprintf("tags.%d", i), MsgExpectedString)
				continue
			}
			out = append(out, s)
		}
		return out
	default:
		v.fail("tags", MsgTagsNotList)
		return []string{}
	}
}

// Validate checks every rule against in and returns the canonical Buyer.
// All failing fields are reported together in a *FieldValidationError; the
// returned Buyer is only meaningful when err is nil. Identity and timestamp
// fields are left zero for the persistence layer to fill.
func Validate(in Input) (Buyer, error) {
	if in == nil {
		return Buyer{}, &StructuralInputError{Reason: "no input"}
	}

	v := &validator{in: in}
	var b Buyer

	if name, ok := v.requiredStr("fullName"); ok {
		switch n := utf8.RuneCountInString(name); {
		case n < NameMinLength:
			v.fail("fullName", MsgNameTooShort)
		case n > NameMaxLength:
			v.fail("fullName", MsgNameTooLong)
		default:
			b.FullName = name
		}
	}

	if email, ok := v.str("email"); ok && email != "" {
		if ValidEmail(email) {
			b.Email = email
		} else {
			v.fail("email", MsgInvalidEmail)
		}
	}

	if phone, ok := v.requiredStr("phone"); ok {
		if phonePattern.MatchString(phone) {
			b.Phone = phone
		} else {
			v.fail("phone", MsgInvalidPhone)
		}
	}

	if s, ok := v.enum(FieldCity, true); ok {
		b.City = City(s)
	}
	propertyOK := false
	if s, ok := v.enum(FieldPropertyType, true); ok {
		b.PropertyType = PropertyType(s)
		propertyOK = true
	}

	// Forms post "" for an unselected bedroom count.
	if v.present("bhk") && v.in["bhk"] != "" {
		if s, ok := v.enum(FieldBHK, false); ok {
			b.BHK = BHK(s)
		}
	} else if propertyOK && b.PropertyType.RequiresBHK() {
		v.fail("bhk", MsgBHKRequired)
	}

	if s, ok := v.enum(FieldPurpose, true); ok {
		b.Purpose = Purpose(s)
	}

	minVal, minOK := v.budget("budgetMin")
	maxVal, maxOK := v.budget("budgetMax")
	if minOK && maxOK && minVal != nil && maxVal != nil && *maxVal < *minVal {
		v.fail("budgetMax", MsgBudgetRange)
	}
	b.BudgetMin, b.BudgetMax = minVal, maxVal

	if s, ok := v.enum(FieldTimeline, true); ok {
		b.Timeline = Timeline(s)
	}
	if s, ok := v.enum(FieldSource, true); ok {
		b.Source = Source(s)
	}

	if v.present("status") {
		if s, ok := v.enum(FieldStatus, false); ok {
			b.Status = Status(s)
		}
	} else {
		b.Status = StatusNew
	}

	if notes, ok := v.str("notes"); ok {
		if utf8.RuneCountInString(notes) > NotesMaxLength {
			v.fail("notes", MsgNotesTooLong)
		} else {
			b.Notes = notes
		}
	}

	b.Tags = v.tags()

	if len(v.errs) > 0 {
		return Buyer{}, &FieldValidationError{Errors: v.errs}
	}
	return b, nil
}

func typeName(val any) string {
	switch val.(type) {
	case json.Number, float64, int, int32, int64:
		return "number"
	case bool:
		return "boolean"
	case []any, []string:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", val)
	}
}
