package naver

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/ternarybob/stockanalyzer/internal/models"
)

// GetPriceHistory fetches up to count daily samples, oldest first.
func (c *Client) GetPriceHistory(ctx context.Context, code string, count int) (models.PriceSeries, error) {
	if count <= 0 {
		count = DefaultChartCount
	}

	params := url.Values{}
	params.Set("symbol", code)
	params.Set("timeframe", "day")
	params.Set("count", strconv.Itoa(count))
	params.Set("requestType", "0")

	body, _, err := c.get(ctx, c.chartURL+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("price history %s: %w", code, err)
	}

	series, err := parseChart(body)
	if err != nil {
		return nil, fmt.Errorf("price history %s: %w", code, err)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("code", code).
			Int("samples", len(series)).
			Msg("Fetched price history")
	}
	return series, nil
}

func parseChart(body []byte) (models.PriceSeries, error) {
	var doc chartProtocol
	decoder := xml.NewDecoder(bytes.NewReader(body))
	decoder.CharsetReader = charset.NewReaderLabel
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode chart: %w", err)
	}

	series := make(models.PriceSeries, 0, len(doc.ChartData.Items))
	for _, item := range doc.ChartData.Items {
		fields := strings.Split(item.Data, "|")
		if len(fields) < 5 {
			continue
		}
		p := models.PricePoint{
			Date:  fields[0],
			Close: ParseNumber(fields[4]),
		}
		if len(fields) > 5 {
			p.Volume = int64(ParseNumber(fields[5]))
		}
		series = append(series, p)
	}

	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Date < series[j].Date
	})
	return series, nil
}
