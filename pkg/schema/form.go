package schema

import (
	"encoding/json"
	"maps"
	"net/url"
	"strings"
)

// Form binds field declarations to a submission.
//
// Call Process with previously saved data and/or submitted form data, then
// Validate. A non-nil formdata is a submission and is authoritative for every
// field, even when empty (an unchecked box is simply absent). A nil formdata
// pre-fills the form from the saved data.
type Form struct {
	fields Fields
	raw    map[string]string
	values map[string]any
	parsed bool
	err    error
}

// NewForm creates an unprocessed form over fields.
func NewForm(fields Fields) *Form {
	return &Form{
		fields: fields,
		raw:    make(map[string]string),
		values: make(map[string]any),
	}
}

// Fields returns the form's declarations.
func (f *Form) Fields() Fields {
	return f.fields
}

// Process loads the form state. data holds typed values (e.g. a saved step),
// formdata the raw submission (nil when nothing was submitted).
func (f *Form) Process(data map[string]any, formdata url.Values) {
	f.raw = make(map[string]string, len(f.fields))
	f.values = make(map[string]any, len(f.fields))
	f.err = nil
	f.parsed = formdata != nil

	for _, field := range f.fields {
		if f.parsed {
			f.raw[field.Name] = strings.TrimSpace(formdata.Get(field.Name))
			continue
		}
		if v, ok := data[field.Name]; ok && v != nil {
			f.values[field.Name] = v
		} else if field.Default != nil {
			f.values[field.Name] = field.Default
		}
	}
}

// Validate converts and checks the processed input. It reports whether the
// form is valid; details are available from Errors and Err.
func (f *Form) Validate() bool {
	if !f.parsed {
		f.err = Validate(f.fields, f.values)
		return f.err == nil
	}

	var errs []error
	values := make(map[string]any, len(f.fields))
	for _, field := range f.fields {
		raw := f.raw[field.Name]
		if raw == "" {
			if _, isBool := field.typ().(*BoolType); isBool {
				values[field.Name] = false
				continue
			}
			if field.Required {
				errs = append(errs, &ValidationError{Key: field.Name, Reason: "required"})
			} else if field.Default != nil {
				values[field.Name] = field.Default
			}
			continue
		}

		v, err := field.typ().Parse(raw)
		if err != nil {
			errs = append(errs, &ValidationError{Key: field.Name, Reason: err.Error(), Value: raw})
			continue
		}
		values[field.Name] = v
	}

	f.values = values
	if len(errs) > 0 {
		f.err = &AggregateError{Errors: errs}
		return false
	}
	f.err = nil
	return true
}

// Err returns the last validation failure, or nil.
func (f *Form) Err() error {
	return f.err
}

// Errors returns the validation failures grouped by field name.
func (f *Form) Errors() map[string][]string {
	return ByField(f.err)
}

// Data returns the typed values of the form (cleaned data after Validate).
func (f *Form) Data() map[string]any {
	return maps.Clone(f.values)
}

// Value returns what should be displayed for a field: the raw submission
// when there is one, the typed value otherwise.
func (f *Form) Value(name string) any {
	if f.parsed {
		return f.raw[name]
	}
	return f.values[name]
}

// MarshalJSON renders the form for the presentation layer.
func (f *Form) MarshalJSON() ([]byte, error) {
	errs := f.Errors()
	out := struct {
		Fields []json.RawMessage `json:"fields"`
		Valid  bool              `json:"valid"`
	}{Valid: f.err == nil}

	for _, field := range f.fields {
		def, err := json.Marshal(field)
		if err != nil {
			return nil, err
		}
		var merged map[string]any
		if err := json.Unmarshal(def, &merged); err != nil {
			return nil, err
		}
		if v := f.Value(field.Name); v != nil && v != "" {
			merged["value"] = v
		}
		if e := errs[field.Name]; len(e) > 0 {
			merged["errors"] = e
		}
		raw, err := json.Marshal(merged)
		if err != nil {
			return nil, err
		}
		out.Fields = append(out.Fields, raw)
	}
	return json.Marshal(out)
}
