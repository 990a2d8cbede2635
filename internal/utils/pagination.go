// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
//
// Used mainly for query parameters, where a missing or malformed value
// should fall back to a sane default rather than fail the request:
//
//	page := utils.AtoiDefault(c.Query("page"), 1)            // "?page=3" -> 3
//	size := utils.AtoiDefault(c.Query("page_size"), 20)      // "" -> 20
//	year := utils.AtoiDefault(c.Query("school_year"), 0)     // "abc" -> 0
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
