package buyer

// enums.go is the registry of categorical value domains. Each domain lists
// its codes in display order together with the human label shown in exports
// and forms. Changing a domain is a schema change: stored rows, CSV templates
// and the database CHECK constraints all depend on these codes.

// Field names a categorical buyer attribute.
type Field string

const (
	FieldCity         Field = "city"
	FieldPropertyType Field = "propertyType"
	FieldBHK          Field = "bhk"
	FieldPurpose      Field = "purpose"
	FieldTimeline     Field = "timeline"
	FieldSource       Field = "source"
	FieldStatus       Field = "status"
)

type City string

const (
	CityChandigarh City = "Chandigarh"
	CityMohali     City = "Mohali"
	CityZirakpur   City = "Zirakpur"
	CityPanchkula  City = "Panchkula"
	CityOther      City = "Other"
)

type PropertyType string

const (
	PropertyApartment PropertyType = "Apartment"
	PropertyVilla     PropertyType = "Villa"
	PropertyPlot      PropertyType = "Plot"
	PropertyOffice    PropertyType = "Office"
	PropertyRetail    PropertyType = "Retail"
)

// RequiresBHK reports whether a bedroom count is mandatory for the property type.
func (p PropertyType) RequiresBHK() bool {
	return p == PropertyApartment || p == PropertyVilla
}

type BHK string

const (
	BHKStudio BHK = "Studio"
	BHKOne    BHK = "One"
	BHKTwo    BHK = "Two"
	BHKThree  BHK = "Three"
	BHKFour   BHK = "Four"
)

type Purpose string

const (
	PurposeBuy  Purpose = "Buy"
	PurposeRent Purpose = "Rent"
)

type Timeline string

const (
	TimelineZeroToThree Timeline = "ZeroToThree"
	TimelineThreeToSix  Timeline = "ThreeToSix"
	TimelineMoreThanSix Timeline = "MoreThanSix"
	TimelineExploring   Timeline = "Exploring"
)

type Source string

const (
	SourceWebsite  Source = "Website"
	SourceReferral Source = "Referral"
	SourceWalkIn   Source = "WalkIn"
	SourceCall     Source = "Call"
	SourceOther    Source = "Other"
)

type Status string

const (
	StatusNew         Status = "NEW"
	StatusQualified   Status = "QUALIFIED"
	StatusContacted   Status = "CONTACTED"
	StatusVisited     Status = "VISITED"
	StatusNegotiation Status = "NEGOTIATION"
	StatusConverted   Status = "CONVERTED"
	StatusDropped     Status = "DROPPED"
)

// Option is one member of a domain.
type Option struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type domain struct {
	options []Option
	byCode  map[string]string
	byLabel map[string]string
}

func newDomain(options ...Option) domain {
	d := domain{
		options: options,
		byCode:  make(map[string]string, len(options)),
		byLabel: make(map[string]string, len(options)),
	}
	for _, o := range options {
		d.byCode[o.Code] = o.Label
		d.byLabel[o.Label] = o.Code
	}
	return d
}

var domains = map[Field]domain{
	FieldCity: newDomain(
		Option{string(CityChandigarh), "Chandigarh"},
		Option{string(CityMohali), "Mohali"},
		Option{string(CityZirakpur), "Zirakpur"},
		Option{string(CityPanchkula), "Panchkula"},
		Option{string(CityOther), "Other"},
	),
	FieldPropertyType: newDomain(
		Option{string(PropertyApartment), "Apartment"},
		Option{string(PropertyVilla), "Villa"},
		Option{string(PropertyPlot), "Plot"},
		Option{string(PropertyOffice), "Office"},
		Option{string(PropertyRetail), "Retail"},
	),
	FieldBHK: newDomain(
		Option{string(BHKStudio), "Studio"},
		Option{string(BHKOne), "1 BHK"},
		Option{string(BHKTwo), "2 BHK"},
		Option{string(BHKThree), "3 BHK"},
		Option{string(BHKFour), "4 BHK"},
	),
	FieldPurpose: newDomain(
		Option{string(PurposeBuy), "Buy"},
		Option{string(PurposeRent), "Rent"},
	),
	FieldTimeline: newDomain(
		Option{string(TimelineZeroToThree), "0-3 months"},
		Option{string(TimelineThreeToSix), "3-6 months"},
		Option{string(TimelineMoreThanSix), "6+ months"},
		Option{string(TimelineExploring), "Just Exploring"},
	),
	FieldSource: newDomain(
		Option{string(SourceWebsite), "Website"},
		Option{string(SourceReferral), "Referral"},
		Option{string(SourceWalkIn), "Walk-in"},
		Option{string(SourceCall), "Phone Call"},
		Option{string(SourceOther), "Other"},
	),
	FieldStatus: newDomain(
		Option{string(StatusNew), "New"},
		Option{string(StatusQualified), "Qualified"},
		Option{string(StatusContacted), "Contacted"},
		Option{string(StatusVisited), "Site Visited"},
		Option{string(StatusNegotiation), "In Negotiation"},
		Option{string(StatusConverted), "Converted"},
		Option{string(StatusDropped), "Dropped"},
	),
}

// Fields returns every categorical field in a stable order.
func Fields() []Field {
	return []Field{FieldCity, FieldPropertyType, FieldBHK, FieldPurpose, FieldTimeline, FieldSource, FieldStatus}
}

// CodesFor returns the valid codes for field in display order.
// An unknown field yields nil.
func CodesFor(field Field) []string {
	d, ok := domains[field]
	if !ok {
		return nil
	}
	codes := make([]string, len(d.options))
	for i, o := range d.options {
		codes[i] = o.Code
	}
	return codes
}

// OptionsFor returns code/label pairs for field, for rendering pickers.
func OptionsFor(field Field) []Option {
	d, ok := domains[field]
	if !ok {
		return nil
	}
	return append([]Option(nil), d.options...)
}

// IsValidCode reports whether code belongs to field's domain. Matching is
// case-sensitive.
func IsValidCode(field Field, code string) bool {
	_, ok := domains[field].byCode[code]
	return ok
}

// LabelFor returns the display label of code. It fails with *UnknownCodeError
// when code is not in the domain.
func LabelFor(field Field, code string) (string, error) {
	label, ok := domains[field].byCode[code]
	if !ok {
		return "", &UnknownCodeError{Field: field, Code: code}
	}
	return label, nil
}

// LabelOrCode is LabelFor with the raw code as fallback.
func LabelOrCode(field Field, code string) string {
	if label, err := LabelFor(field, code); err == nil {
		return label
	}
	return code
}

// CodeForLabel translates a display label back to its code. The second
// result is false when the label is not recognized; that is not an error.
func CodeForLabel(field Field, label string) (string, bool) {
	code, ok := domains[field].byLabel[label]
	return code, ok
}

func (c City) Label() string         { return LabelOrCode(FieldCity, string(c)) }
func (p PropertyType) Label() string { return LabelOrCode(FieldPropertyType, string(p)) }
func (b BHK) Label() string          { return LabelOrCode(FieldBHK, string(b)) }
func (p Purpose) Label() string      { return LabelOrCode(FieldPurpose, string(p)) }
func (t Timeline) Label() string     { return LabelOrCode(FieldTimeline, string(t)) }
func (s Source) Label() string       { return LabelOrCode(FieldSource, string(s)) }
func (s Status) Label() string       { return LabelOrCode(FieldStatus, string(s)) }
