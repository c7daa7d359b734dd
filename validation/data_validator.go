// Package validation checks user input and catalog data.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/giygas/minsan-api/catalog"
	"github.com/giygas/minsan-api/interfaces"
	"github.com/giygas/minsan-api/minsan"
)

// ErrInvalidMinsan is returned for codes that are not 1 to 10 digits.
var ErrInvalidMinsan = errors.New("invalid MINSAN code")

// Italian product feeds label MINSAN codes with 9 digits.
const standardMinsanLength = 9

var (
	// Letters with Italian and French accents, digits and safe punctuation
	inputRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-\.\+'/àáâäèéêëìíîïòóôöùúûüçÀÈÉÌÒÙ]+$`)

	// Plain substring checks are enough for these
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "eval(", "expression(", "url(", "@import",
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"--", "/*", "*/", "exec(", "execute(",
		"; ", "| ", "& ", "`", "$(", "${",
		"../", "..\\", "%2e%2e", "file://",
		"{$ne:", "{$gt:", "{$where:", "{$regex:",
	}
)

// Compile-time check to ensure DataValidatorImpl implements DataValidator
var _ interfaces.DataValidator = (*DataValidatorImpl)(nil)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() *DataValidatorImpl {
	return &DataValidatorImpl{}
}

// ValidateInput validates free-text search input
func (v *DataValidatorImpl) ValidateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(input) < 2 {
		return fmt.Errorf("input too short: minimum 2 characters")
	}

	if len(input) > 100 {
		return fmt.Errorf("input too long: maximum 100 characters")
	}

	if len(strings.Fields(input)) > 8 {
		return fmt.Errorf("search query too complex: maximum 8 words allowed")
	}

	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	if !inputRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters. Only letters, numbers, spaces, hyphens, apostrophes, periods, slashes and plus sign are allowed")
	}

	if hasExcessiveRepetition(input) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

// ValidateMinsan checks that a code is 1 to 10 ASCII digits with no
// surrounding whitespace and returns it unchanged.
func (v *DataValidatorImpl) ValidateMinsan(input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("%w: input cannot be empty", ErrInvalidMinsan)
	}

	if len(input) > 10 {
		return "", fmt.Errorf("%w: maximum 10 digits", ErrInvalidMinsan)
	}

	for i := 0; i < len(input); i++ {
		if input[i] < '0' || input[i] > '9' {
			return "", fmt.Errorf("%w: only numeric characters are allowed", ErrInvalidMinsan)
		}
	}

	return input, nil
}

// ValidateProduct checks a single catalog entry
func (v *DataValidatorImpl) ValidateProduct(p *catalog.Product) error {
	if p == nil {
		return fmt.Errorf("product is nil")
	}

	if _, err := v.ValidateMinsan(p.Minsan); err != nil {
		return fmt.Errorf("product %q: %w", p.Name, err)
	}

	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("empty name for MINSAN %s", p.Minsan)
	}

	if len(p.Name) > 200 {
		return fmt.Errorf("name too long for MINSAN %s: %d characters", p.Minsan, len(p.Name))
	}

	if p.Price.IsNegative() {
		return fmt.Errorf("negative price for MINSAN %s: %s", p.Minsan, p.Price)
	}

	if p.Quantity < 0 {
		return fmt.Errorf("negative quantity for MINSAN %s: %d", p.Minsan, p.Quantity)
	}

	return nil
}

// ReportDataQuality collects every issue in the catalog without failing
func (v *DataValidatorImpl) ReportDataQuality(products []catalog.Product) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{
		DuplicateCodes: []string{},
		CategoryCounts: make(map[string]int),
	}

	seen := make(map[string]bool, len(products))
	for i := range products {
		p := &products[i]

		if seen[p.Minsan] && !slices.Contains(report.DuplicateCodes, p.Minsan) {
			report.DuplicateCodes = append(report.DuplicateCodes, p.Minsan)
		}
		seen[p.Minsan] = true

		if err := v.ValidateProduct(p); err != nil {
			report.InvalidProducts++
		}

		if len(p.Minsan) != standardMinsanLength {
			report.NonStandardCodes++
		}

		if !p.Available {
			report.UnavailableProducts++
		}

		report.CategoryCounts[minsan.Classify(p.Minsan)]++
	}

	return report
}

// hasExcessiveRepetition reports a character repeated more than 10 times in a row
func hasExcessiveRepetition(input string) bool {
	run := 1
	for i := 1; i < len(input); i++ {
		if input[i] == input[i-1] {
			run++
			if run > 10 {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}
