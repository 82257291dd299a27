package naver

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/korean"
)

var (
	stockCodePattern = regexp.MustCompile(`^\d{6}$`)
	hrefCodePattern  = regexp.MustCompile(`code=(\d{6})`)
)

// IsStockCode reports whether s is a six digit KRX code.
func IsStockCode(s string) bool {
	return stockCodePattern.MatchString(s)
}

// SearchStock resolves a stock name or code to a six digit code. Codes are
// returned unchanged without a request.
func (c *Client) SearchStock(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrStockNotFound
	}
	if IsStockCode(query) {
		return query, nil
	}

	doc, err := c.document(ctx, c.baseURL+"/search/searchList.naver?query="+encodeQuery(query))
	if err != nil {
		return "", fmt.Errorf("search %q: %w", query, err)
	}

	code := firstResultCode(doc)
	if code == "" {
		return "", fmt.Errorf("%w: %s", ErrStockNotFound, query)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("query", query).
			Str("code", code).
			Msg("Resolved stock query")
	}
	return code, nil
}

func firstResultCode(doc *goquery.Document) string {
	href, ok := doc.Find("a.tit").First().Attr("href")
	if !ok {
		return ""
	}
	if m := hrefCodePattern.FindStringSubmatch(href); m != nil {
		return m[1]
	}
	return ""
}

// encodeQuery escapes the query in EUC-KR, which the search page expects.
func encodeQuery(query string) string {
	encoded, err := korean.EUCKR.NewEncoder().String(query)
	if err != nil {
		return url.QueryEscape(query)
	}
	return url.QueryEscape(encoded)
}
