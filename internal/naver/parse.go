package naver

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	eok = 1e8  // 억
	jo  = 1e12 // 조
)

var (
	numberCleaner = regexp.MustCompile(`[^\d.\-]`)
	joPattern     = regexp.MustCompile(`([\d,]+)\s*조`)
	eokPattern    = regexp.MustCompile(`([\d,]+)\s*억`)
)

// ParseNumber keeps only digits, '.' and '-' and parses the rest.
// Anything unparsable reads as 0.
func ParseNumber(text string) float64 {
	cleaned := numberCleaner.ReplaceAllString(text, "")
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseMarketValue converts a Korean amount such as "16조 1,100억" to KRW.
func ParseMarketValue(text string) float64 {
	var total float64
	if m := joPattern.FindStringSubmatch(text); m != nil {
		total += ParseNumber(m[1]) * jo
	}
	if m := eokPattern.FindStringSubmatch(text); m != nil {
		total += ParseNumber(m[1]) * eok
	}
	return total
}

// parsePercent reads "52.31%" style values.
func parsePercent(text string) float64 {
	return ParseNumber(strings.ReplaceAll(text, "%", ""))
}

// normalizeMarket maps the listing badge to an exchange name.
func normalizeMarket(label string) string {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case strings.Contains(l, "코스피") || strings.Contains(l, "kospi"):
		return "KOSPI"
	case strings.Contains(l, "코스닥") || strings.Contains(l, "kosdaq"):
		return "KOSDAQ"
	case strings.Contains(l, "코넥스") || strings.Contains(l, "konex"):
		return "KONEX"
	}
	return ""
}
