// Package naver scrapes quotes, fundamentals and daily price history for KRX
// listed stocks from Naver Finance.
package naver

import (
	"errors"
	"fmt"
)

// ErrStockNotFound is returned when a query cannot be resolved to a stock code.
var ErrStockNotFound = errors.New("stock not found")

// APIError represents a non-200 response from a Naver endpoint.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("naver error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// integrationResponse is the subset of the mobile integration API we read.
type integrationResponse struct {
	TotalInfos []totalInfo `json:"totalInfos"`
}

type totalInfo struct {
	Code  string `json:"code"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// annualResponse is the subset of the mobile annual finance API we read.
type annualResponse struct {
	FinanceInfos []financeInfo `json:"financeInfos"`
}

type financeInfo struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

// chartProtocol mirrors the fchart XML document.
type chartProtocol struct {
	ChartData struct {
		Symbol string      `xml:"symbol,attr"`
		Name   string      `xml:"name,attr"`
		Items  []chartItem `xml:"item"`
	} `xml:"chartdata"`
}

type chartItem struct {
	Data string `xml:"data,attr"` // date|open|high|low|close|volume
}
