package schema

// Validate checks typed data against the declared fields.
// Required fields must be present and non-empty; present values must conform
// to their field type. Keys not declared in fields are ignored.
// Returns an *AggregateError listing every failure, in field order.
func Validate(fields Fields, data map[string]any) error {
	var errs []error

	for _, f := range fields {
		value, exists := data[f.Name]
		if !exists || value == nil || value == "" {
			if f.Required {
				errs = append(errs, &ValidationError{
					Key:    f.Name,
					Reason: "required",
				})
			}
			continue
		}

		if err := f.typ().Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    f.Name,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
