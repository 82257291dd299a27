package naver

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/ternarybob/stockanalyzer/internal/models"
)

var (
	marketCapPattern    = regexp.MustCompile(`시가총액[^\d]*([\d,]+\s*조(?:\s*[\d,]+\s*억)?|[\d,]+\s*억)`)
	foreignRatioPattern = regexp.MustCompile(`외국인[^\d]*([\d.]+)\s*%`)
	percentPattern      = regexp.MustCompile(`([\d.]+)\s*%`)
)

// GetStockInfo scrapes the main item page and backfills missing fields from
// the sise page and the mobile APIs, which are fetched concurrently. Secondary
// sources never overwrite a value the main page already produced.
func (c *Client) GetStockInfo(ctx context.Context, code string) (*models.StockSnapshot, error) {
	if !IsStockCode(code) {
		return nil, fmt.Errorf("%w: invalid code %q", ErrStockNotFound, code)
	}

	doc, err := c.document(ctx, c.baseURL+"/item/main.naver?code="+url.QueryEscape(code))
	if err != nil {
		return nil, fmt.Errorf("main page %s: %w", code, err)
	}

	s := &models.StockSnapshot{Code: code}
	parseMainPage(doc, s)

	var (
		sise        models.StockSnapshot
		integration integrationResponse
		annual      annualResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sdoc, err := c.document(gctx, c.baseURL+"/item/sise.naver?code="+url.QueryEscape(code))
		if err != nil {
			return c.secondaryFailure(gctx, "sise", code, err)
		}
		parseSisePage(sdoc, &sise)
		return nil
	})
	g.Go(func() error {
		if err := c.getJSON(gctx, c.mobileURL+"/api/stock/"+code+"/integration", &integration); err != nil {
			return c.secondaryFailure(gctx, "integration", code, err)
		}
		return nil
	})
	g.Go(func() error {
		if err := c.getJSON(gctx, c.mobileURL+"/api/stock/"+code+"/finance/annual", &annual); err != nil {
			return c.secondaryFailure(gctx, "finance/annual", code, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	backfill(s, &sise)
	applyIntegration(s, integration.TotalInfos)
	if s.ROE == 0 {
		s.ROE = latestAnnual(annual.FinanceInfos, "roe")
	}

	if s.PrevClose == 0 {
		s.PrevClose = s.CurrentPrice
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("code", code).
			Str("name", s.Name).
			Float64("price", s.CurrentPrice).
			Msg("Fetched stock info")
	}
	return s, nil
}

// secondaryFailure swallows a backfill error unless the context is done.
func (c *Client) secondaryFailure(ctx context.Context, source, code string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.logger != nil {
		c.logger.Debug().
			Str("source", source).
			Str("code", code).
			Err(err).
			Msg("Backfill source unavailable")
	}
	return nil
}

func parseMainPage(doc *goquery.Document, s *models.StockSnapshot) {
	company := doc.Find("div.wrap_company")
	s.Name = strings.TrimSpace(company.Find("h2 a").First().Text())
	if img := company.Find("img").First(); img.Length() > 0 {
		alt, _ := img.Attr("alt")
		class, _ := img.Attr("class")
		s.Market = normalizeMarket(alt + " " + class)
	}

	s.CurrentPrice = ParseNumber(doc.Find("p.no_today span.blind").First().Text())

	parseDayFields(doc.Find("table.no_info"), s)
	parseMarketCap(doc, s)
	parse52Week(doc, s)
	parsePerTable(doc.Find("table.per_table"), s)
	parseForeignRatio(doc, s)
}

// parseDayFields reads the previous close, day range and volume. Cells are
// labelled either by a th or by a span.sptxt inside the cell.
func parseDayFields(table *goquery.Selection, s *models.StockSnapshot) {
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if th := tr.Find("th").First(); th.Length() > 0 {
			assignDayField(s, th.Text(), cellValue(tr.Find("td").First()))
		}
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			if label := td.Find("span.sptxt").First().Text(); label != "" {
				assignDayField(s, label, cellValue(td))
			}
		})
	})
}

func cellValue(td *goquery.Selection) float64 {
	if blind := td.Find("span.blind").First(); blind.Length() > 0 {
		return ParseNumber(blind.Text())
	}
	return ParseNumber(td.Text())
}

func assignDayField(s *models.StockSnapshot, label string, value float64) {
	label = strings.TrimSpace(label)
	switch {
	case strings.Contains(label, "전일"):
		s.PrevClose = value
	case strings.Contains(label, "거래대금"), strings.Contains(label, "시가총액"):
	case strings.Contains(label, "거래량"):
		s.Volume = int64(value)
	case strings.Contains(label, "고가"):
		s.HighPrice = value
	case strings.Contains(label, "저가"):
		s.LowPrice = value
	case strings.Contains(label, "시가"):
		s.OpenPrice = value
	}
}

func parseMarketCap(doc *goquery.Document, s *models.StockSnapshot) {
	if text := doc.Find("div.first").First().Text(); strings.Contains(text, "시가총액") {
		if m := marketCapPattern.FindStringSubmatch(text); m != nil {
			s.MarketCap = ParseMarketValue(m[1])
		}
	}
	if s.MarketCap > 0 {
		return
	}

	// _market_sum is in 억, optionally prefixed with a 조 part
	sum := strings.TrimSpace(doc.Find("em#_market_sum").First().Text())
	if sum == "" {
		return
	}
	if strings.Contains(sum, "조") {
		s.MarketCap = ParseMarketValue(sum + "억")
		return
	}
	s.MarketCap = ParseNumber(sum) * eok
}

func parse52Week(doc *goquery.Document, s *models.StockSnapshot) {
	doc.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		label := strings.ReplaceAll(tr.Find("th").Text(), " ", "")
		if !strings.Contains(label, "52주최고") {
			return true
		}
		values := tr.Find("td em")
		if values.Length() == 0 {
			values = tr.Find("td span.blind")
		}
		if values.Length() == 0 {
			return true
		}
		s.High52W = ParseNumber(values.First().Text())
		s.Low52W = ParseNumber(values.Last().Text())
		return false
	})
}

// parsePerTable prefers the element ids and falls back to position:
// PER, EPS, estimated PER, estimated EPS, PBR, BPS.
func parsePerTable(table *goquery.Selection, s *models.StockSnapshot) {
	if table.Length() == 0 {
		return
	}

	s.PER = positive(ParseNumber(table.Find("em#_per").Text()))
	s.EPS = ParseNumber(table.Find("em#_eps").Text())
	s.PBR = positive(ParseNumber(table.Find("em#_pbr").Text()))
	s.DividendYield = positive(ParseNumber(table.Find("em#_dvr").Text()))
	if pbr := table.Find("em#_pbr"); pbr.Length() > 0 {
		s.BPS = ParseNumber(pbr.Closest("td").Find("em").Last().Text())
	}
	if s.PER != 0 || s.PBR != 0 {
		return
	}

	var values []float64
	table.Find("td em").Each(func(_ int, em *goquery.Selection) {
		values = append(values, ParseNumber(em.Text()))
	})
	if len(values) < 4 {
		return
	}
	s.PER = positive(values[0])
	s.EPS = values[1]
	if len(values) >= 6 {
		s.PBR = positive(values[4])
		if s.PBR == 0 {
			s.PBR = positive(values[2])
		}
		s.BPS = values[5]
		return
	}
	s.PBR = positive(values[2])
	s.BPS = values[3]
}

func parseForeignRatio(doc *goquery.Document, s *models.StockSnapshot) {
	if m := foreignRatioPattern.FindStringSubmatch(doc.Find("div.gray").First().Text()); m != nil {
		s.ForeignRatio = ParseNumber(m[1])
		return
	}

	doc.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		if !strings.Contains(tr.Find("th").Text(), "외국인") {
			return true
		}
		m := percentPattern.FindStringSubmatch(tr.Find("td").Text())
		if m == nil {
			return true
		}
		if v := ParseNumber(m[1]); v > 0 && v < 100 {
			s.ForeignRatio = v
			return false
		}
		return true
	})
}

func parseSisePage(doc *goquery.Document, s *models.StockSnapshot) {
	doc.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		label := tr.Find("th, td.title").First()
		if !strings.Contains(label.Text(), "전일") {
			return true
		}
		if v := tr.Find("td span.blind").First(); v.Length() > 0 {
			s.PrevClose = ParseNumber(v.Text())
			return false
		}
		return true
	})

	s.Volume = int64(ParseNumber(doc.Find("td#_quant").First().Text()))

	doc.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		text := tr.Text()
		if !strings.Contains(text, "52주") || !strings.Contains(text, "최고") {
			return true
		}
		spans := tr.Find("span.blind")
		if spans.Length() < 2 {
			return true
		}
		s.High52W = ParseNumber(spans.Eq(0).Text())
		s.Low52W = ParseNumber(spans.Eq(1).Text())
		return false
	})
}

// backfill copies fields of src into dst where dst has no value.
func backfill(dst, src *models.StockSnapshot) {
	fillFloat(&dst.PrevClose, src.PrevClose)
	fillFloat(&dst.High52W, src.High52W)
	fillFloat(&dst.Low52W, src.Low52W)
	if dst.Volume == 0 {
		dst.Volume = src.Volume
	}
}

func applyIntegration(s *models.StockSnapshot, infos []totalInfo) {
	for _, info := range infos {
		switch {
		case info.Code == "highPriceOf52Weeks" || info.Key == "52주 최고":
			fillFloat(&s.High52W, ParseNumber(info.Value))
		case info.Code == "lowPriceOf52Weeks" || info.Key == "52주 최저":
			fillFloat(&s.Low52W, ParseNumber(info.Value))
		case info.Code == "accumulatedTradingVolume" || info.Key == "거래량":
			if s.Volume == 0 {
				s.Volume = int64(ParseNumber(info.Value))
			}
		case info.Code == "marketValue" || info.Key == "시총":
			fillFloat(&s.MarketCap, ParseMarketValue(info.Value))
		case info.Code == "foreignRate" || strings.Contains(info.Key, "외인"):
			fillFloat(&s.ForeignRatio, parsePercent(info.Value))
		case info.Code == "roe" || info.Key == "ROE":
			fillFloat(&s.ROE, parsePercent(info.Value))
		case info.Code == "per" || info.Key == "PER":
			fillFloat(&s.PER, positive(ParseNumber(info.Value)))
		case info.Code == "pbr" || info.Key == "PBR":
			fillFloat(&s.PBR, positive(ParseNumber(info.Value)))
		case info.Code == "eps" || info.Key == "EPS":
			fillFloat(&s.EPS, ParseNumber(info.Value))
		case info.Code == "bps" || info.Key == "BPS":
			fillFloat(&s.BPS, ParseNumber(info.Value))
		case info.Code == "dividendYieldRatio" || info.Key == "배당수익률":
			fillFloat(&s.DividendYield, parsePercent(info.Value))
		}
	}
}

// latestAnnual returns the most recent reported value for key.
func latestAnnual(infos []financeInfo, key string) float64 {
	for _, info := range infos {
		if info.Key != key {
			continue
		}
		for i := len(info.Values) - 1; i >= 0; i-- {
			v := strings.TrimSpace(info.Values[i])
			if v != "" && v != "-" {
				return ParseNumber(v)
			}
		}
	}
	return 0
}

func fillFloat(dst *float64, v float64) {
	if *dst == 0 {
		*dst = v
	}
}

func positive(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}
