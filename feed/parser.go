package feed

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/giygas/minsan-api/catalog"
	"github.com/giygas/minsan-api/logging"
	"github.com/shopspring/decimal"
)

// Column layout of the product feed.
const (
	colMinsan = iota
	colName
	colBrand
	colPrice
	colQuantity
	colAvailable
	columnCount
)

// ParseStats counts the lines skipped while parsing a feed.
type ParseStats struct {
	TotalLines     int
	EmptyLines     int
	MissingColumns int
	FormatErrors   int
	Parsed         int
}

func (s ParseStats) skipped() bool {
	return s.EmptyLines > 0 || s.MissingColumns > 0 || s.FormatErrors > 0
}

// Parse reads tab-separated product lines. Malformed lines are counted and
// skipped; only read errors are returned.
func Parse(r io.Reader) ([]catalog.Product, ParseStats, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1*1024*1024)

	products := make([]catalog.Product, 0)
	var stats ParseStats

	for scanner.Scan() {
		stats.TotalLines++
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.TrimSpace(line) == "" {
			stats.EmptyLines++
			continue
		}

		fields := strings.Split(line, "\t")

		if stats.TotalLines == 1 && strings.EqualFold(strings.TrimSpace(fields[0]), "minsan") {
			continue
		}

		if len(fields) < columnCount {
			stats.MissingColumns++
			continue
		}

		product, err := parseLine(fields)
		if err != nil {
			stats.FormatErrors++
			logging.Debug("Skipping malformed feed line", "line", stats.TotalLines, "error", err)
			continue
		}

		products = append(products, product)
	}

	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("scanner error: %w", err)
	}

	stats.Parsed = len(products)
	if stats.skipped() {
		logging.Info("Feed skip statistics",
			"empty_lines", stats.EmptyLines,
			"missing_columns", stats.MissingColumns,
			"format_errors", stats.FormatErrors,
			"total_lines", stats.TotalLines,
			"records_parsed", stats.Parsed)
	}

	return products, stats, nil
}

func parseLine(fields []string) (catalog.Product, error) {
	code := strings.TrimSpace(fields[colMinsan])
	if code == "" {
		return catalog.Product{}, fmt.Errorf("empty MINSAN code")
	}

	price, err := ParsePrice(fields[colPrice])
	if err != nil {
		return catalog.Product{}, err
	}

	quantity := 1
	if q := strings.TrimSpace(fields[colQuantity]); q != "" {
		quantity, err = strconv.Atoi(q)
		if err != nil {
			return catalog.Product{}, fmt.Errorf("invalid quantity %q: %w", q, err)
		}
	}

	return catalog.Product{
		Minsan:    code,
		Name:      strings.TrimSpace(fields[colName]),
		Brand:     strings.TrimSpace(fields[colBrand]),
		Price:     price,
		Quantity:  quantity,
		Available: parseAvailable(fields[colAvailable]),
	}, nil
}

// priceRegex is a normalized non-negative price: up to 9 integer digits and 4 decimals.
var priceRegex = regexp.MustCompile(`^\d{1,9}(\.\d{1,4})?$`)

// ParsePrice accepts prices written with a comma or dot decimal separator,
// optionally with thousands separators ("1.234,50", "1,234.50", "12,5").
// An empty value is zero.
func ParsePrice(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}

	// The last separator is the decimal one, every earlier one is grouping.
	if last := strings.LastIndexAny(s, ",."); last != -1 {
		intPart := strings.NewReplacer(",", "", ".", "").Replace(s[:last])
		s = intPart + "." + s[last+1:]
	}

	// NewFromString also takes exponents, which would make later rescaling unbounded.
	if !priceRegex.MatchString(s) {
		return decimal.Zero, fmt.Errorf("invalid price value %q", raw)
	}

	price, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price value %q: %w", raw, err)
	}
	return price, nil
}

func parseAvailable(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "si", "sì", "yes", "y":
		return true
	}
	return false
}
