// Package minsan classifies products by the regulatory category encoded in
// the leading digit of their MINSAN code.
package minsan

import (
	"slices"
)

// Other is the catch-all category name for codes whose leading digit is not
// in the table. It has no code and no description.
const Other = "Other"

// Category is one entry of the fixed MINSAN category table.
type Category struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Coded is anything carrying a MINSAN code.
type Coded interface {
	MinsanCode() string
}

// Small enough that a linear scan beats a map.
var categories = [...]Category{
	{Code: "0", Name: "Human Use Medicines", Description: "Prescription and OTC drugs for human use"},
	{Code: "1", Name: "Veterinary Medicines", Description: "Drugs for animal use"},
	{Code: "8", Name: "Homeopathic / Natural Products", Description: "Homeopathic remedies and natural products"},
	{Code: "9", Name: "Parapharmaceuticals", Description: "Supplements, vitamins, cosmetics, devices, etc."},
}

// Categories returns a copy of the category table in table order.
func Categories() []Category {
	return slices.Clone(categories[:])
}

// Lookup returns the table entry for a single-character category code.
func Lookup(code string) (Category, bool) {
	for _, c := range categories {
		if c.Code == code {
			return c, true
		}
	}
	return Category{}, false
}

// Classify returns the category name for a MINSAN code. Only the first
// character is inspected; empty or unmatched codes classify as Other.
func Classify(code string) string {
	if code == "" {
		return Other
	}
	if c, ok := Lookup(code[:1]); ok {
		return c.Name
	}
	return Other
}

// AvailableCategories returns the distinct category names of the given
// products, sorted ascending.
func AvailableCategories[T Coded](products []T) []string {
	names := make([]string, 0, len(categories)+1)
	for _, p := range products {
		name := Classify(p.MinsanCode())
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Describe returns the description of a category by exact name, or an empty
// string when the name is unknown or Other.
func Describe(name string) string {
	if c, ok := byName(name); ok {
		return c.Description
	}
	return ""
}

// CodeFor returns the digit for a category name. ok is false for Other and
// for unknown names.
func CodeFor(name string) (code string, ok bool) {
	if c, ok := byName(name); ok {
		return c.Code, true
	}
	return "", false
}

// IsKnown reports whether name is a table category or Other.
func IsKnown(name string) bool {
	if name == Other {
		return true
	}
	_, ok := byName(name)
	return ok
}

func byName(name string) (Category, bool) {
	for _, c := range categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}
