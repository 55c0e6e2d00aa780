// Package registry resolves the trigger table of a view type.
//
// A table is declared once per type with Define (or Register) and built lazily
// the first time it is needed; every later lookup, from any goroutine, sees the
// same frozen table.
package registry
