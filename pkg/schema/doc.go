// Package schema declares form fields and validates submissions against them.
//
// It plays the role of the form library a view relies on: a Form is built from
// ordered Fields, processed with saved data and/or raw form data, then
// validated.
//
//	fields := schema.Fields{
//	    {Name: "email", Type: schema.String(), Required: true},
//	    {Name: "age", Type: schema.Int()},
//	    {Name: "plan", Type: schema.Choice("free", "pro")},
//	}
//
//	f := schema.NewForm(fields)
//	f.Process(saved, r.PostForm)
//	if !f.Validate() {
//	    return f.Errors() // map[field][]reason
//	}
//	clean := f.Data() // typed values
//
// Types can also be parsed from their names ("int", "choice(a|b)"), which is
// how definitions loaded from YAML declare them.
package schema
