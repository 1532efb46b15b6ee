package mrz

// Field is one presentable label/value pair of a scanned document.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Summary is the normalized, human-readable view of a raw MRZ field map.
type Summary struct {
	DocumentType   string
	Country        string
	Number         string
	BirthDate      string
	ExpirationDate string
	Nationality    string
	Gender         string
	FullName       string
	Surname        string
}

// defaultDate is substituted for missing date keys before resolution so the
// resolvers themselves never apply defaults.
const defaultDate = "000000"

// Summarize normalizes the raw field map produced by the MRZ engine.
// Missing keys default to "000000" (dates) or "Unknown" (strings) before
// being passed through the resolvers.
func Summarize(raw map[string]string, opts DateOptions) Summary {
	return Summary{
		DocumentType:   stringOr(raw, "type"),
		Country:        stringOr(raw, "country"),
		Number:         stringOr(raw, "number"),
		BirthDate:      ResolveDate(dateOr(raw, "date_of_birth"), BirthDate, opts),
		ExpirationDate: ResolveDate(dateOr(raw, "expiration_date"), ExpirationDate, opts),
		Nationality:    stringOr(raw, "nationality"),
		Gender:         genderLabel(raw["sex"]),
		FullName:       ResolveName(stringOr(raw, "names")),
		Surname:        stringOr(raw, "surname"),
	}
}

// Fields returns the summary as the fixed ordered label/value list used
// for presentation.
func (s Summary) Fields() []Field {
	return []Field{
		{"Document Type", s.DocumentType},
		{"Issuing Country", s.Country},
		{"Passport Number", s.Number},
		{"Date of Birth", s.BirthDate},
		{"Expiration Date", s.ExpirationDate},
		{"Nationality", s.Nationality},
		{"Gender", s.Gender},
		{"Full Name", s.FullName},
	}
}

// FormatFields is the one-call form of Summarize + Fields.
func FormatFields(raw map[string]string, opts DateOptions) []Field {
	return Summarize(raw, opts).Fields()
}

func genderLabel(sex string) string {
	if sex == "M" {
		return "Male"
	}
	return "Female"
}

func stringOr(raw map[string]string, key string) string {
	if v, ok := raw[key]; ok && v != "" {
		return v
	}
	return UnknownValue
}

func dateOr(raw map[string]string, key string) string {
	if v, ok := raw[key]; ok && v != "" {
		return v
	}
	return defaultDate
}
