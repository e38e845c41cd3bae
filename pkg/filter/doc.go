// Package filter selects numbers by one column at a time.
//
// Highlights:
// - LTE, GTE, RNG, LST and EQL filters, each with a polarity that inverts it
// - Apply filters records in memory
// - Scope turns the same filter into a gorm WHERE clause
// - Set keeps named filters, validated on Add
package filter
